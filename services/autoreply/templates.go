package autoreply

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mazen160/go-random"

	"codemaobot/lib/store"
)

// Answer maps one keyword to its response pool. A single-response
// answer has a pool of one.
type Answer struct {
	Keyword   string
	Responses []string
}

// Templates is the reply template table: an ordered keyword-to-response
// list plus an unordered fallback pool. Placeholder substitution runs
// against the account info subtree at access time, so edits to the
// stored info take effect on the next reply without a reload.
type Templates struct {
	answers   []Answer
	fallbacks []string
	info      store.Node
}

// LoadTemplates reads the table from the user data subtree: "answers"
// holds the keyword entries in match-priority order, "replies" the
// fallback pool.
func LoadTemplates(userData, info store.Node) Templates {
	tpl := Templates{info: info}

	raw, _ := userData.Get("answers").([]any)
	for _, rawEntry := range raw {
		entry, ok := rawEntry.(map[string]any)
		if !ok {
			continue
		}
		// an entry is one {keyword: response} object; multiple keywords
		// in one object are allowed and expanded in key order
		keys := make([]string, 0, len(entry))
		for key := range entry {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			tpl.answers = append(tpl.answers, Answer{
				Keyword:   key,
				Responses: responseList(entry[key]),
			})
		}
	}

	tpl.fallbacks = userData.StringSlice("replies")
	return tpl
}

func responseList(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Respond picks the response for the given text: the first keyword in
// table order contained in the text wins; with no match a fallback is
// drawn uniformly at random. Placeholders are substituted from the
// current account info.
func (t Templates) Respond(text string) (string, bool) {
	for _, answer := range t.answers {
		if strings.Contains(text, answer.Keyword) {
			return t.substitute(choose(answer.Responses)), true
		}
	}
	if len(t.fallbacks) == 0 {
		return "", false
	}
	return t.substitute(choose(t.fallbacks)), true
}

func choose(list []string) string {
	if len(list) == 0 {
		return ""
	}
	if len(list) == 1 {
		return list[0]
	}
	idx, err := random.IntRange(0, len(list))
	if err != nil || idx >= len(list) {
		idx = 0
	}
	return list[idx]
}

// substitute fills {placeholder} fields from the account info subtree.
func (t Templates) substitute(response string) string {
	info := t.info.Map()
	for key, value := range info {
		placeholder := "{" + key + "}"
		if !strings.Contains(response, placeholder) {
			continue
		}
		response = strings.ReplaceAll(response, placeholder, fmt.Sprintf("%v", value))
	}
	return response
}
