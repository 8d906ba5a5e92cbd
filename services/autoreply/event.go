// Package autoreply answers new comment/reply notifications with
// keyword-matched templates.
package autoreply

import (
	"encoding/json"
	"strconv"

	"codemaobot/lib/jsonpath"
)

// Recognized notification types. Everything else in the feed (likes,
// forks, system notices) is silently dropped.
const (
	TypeWorkComment    = "WORK_COMMENT"
	TypeWorkReply      = "WORK_REPLY"
	TypeWorkReplyReply = "WORK_REPLY_REPLY"
	TypePostComment    = "POST_COMMENT"
	TypePostReply      = "POST_REPLY"
	TypePostReplyReply = "POST_REPLY_REPLY"
)

var recognizedTypes = map[string]bool{
	TypeWorkComment:    true,
	TypeWorkReply:      true,
	TypeWorkReplyReply: true,
	TypePostComment:    true,
	TypePostReply:      true,
	TypePostReplyReply: true,
}

// Event is one pending notification. Events are consumed exactly once
// per run and never persisted by the engine itself.
type Event struct {
	// ID is the notification record id, used by the optional ledger.
	ID   string
	Type string
	// BusinessID is the work or forum post owning the thread.
	BusinessID int64
	CommentID  int64
	// ReplyID is the reply's own id for reply-to-reply events. The feed
	// does not say which comment the reply hangs from; that has to be
	// resolved against the comment-id index.
	ReplyID   int64
	RepliedID int64
	// ReferenceID, when present, is preferred over the nested message
	// ids as the reply target.
	ReferenceID int64
	Comment     string
	Reply       string
}

// ParseEvent decodes one raw feed record. The record's "content" field
// is a JSON string holding the actual message, so it is decoded twice.
// Returns false for unrecognized or undecodable records.
func ParseEvent(record map[string]any) (Event, bool) {
	eventType := jsonpath.String(record, "type")
	if !recognizedTypes[eventType] {
		return Event{}, false
	}

	var content map[string]any
	err := json.Unmarshal([]byte(jsonpath.String(record, "content")), &content)
	if err != nil {
		return Event{}, false
	}
	message := jsonpath.Read(content, "message")

	return Event{
		ID:          idString(jsonpath.Read(record, "id")),
		Type:        eventType,
		BusinessID:  int64(jsonpath.Int(message, "business_id")),
		CommentID:   int64(jsonpath.Int(message, "comment_id")),
		ReplyID:     int64(jsonpath.Int(message, "reply_id")),
		RepliedID:   int64(jsonpath.Int(message, "replied_id")),
		ReferenceID: int64(jsonpath.Int(record, "reference_id")),
		Comment:     jsonpath.String(message, "comment"),
		Reply:       jsonpath.String(message, "reply"),
	}, true
}

// Text returns the human-authored text of the event: the comment body
// for first-level comment events, the reply body otherwise.
func (e Event) Text() string {
	if e.Type == TypeWorkComment || e.Type == TypePostComment {
		return e.Comment
	}
	return e.Reply
}

// the feed serves record ids as numbers or strings depending on the
// endpoint version
func idString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}

func (e Event) isWork() bool {
	switch e.Type {
	case TypeWorkComment, TypeWorkReply, TypeWorkReplyReply:
		return true
	}
	return false
}

func (e Event) isTopLevel() bool {
	return e.Type == TypeWorkComment || e.Type == TypePostComment
}
