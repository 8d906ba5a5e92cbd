// Package report tracks a user's engagement counters between runs and
// prints what changed.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.opentelemetry.io/otel"

	"codemaobot/lib/codemao"
	"codemaobot/lib/jsonpath"
	"codemaobot/lib/store"
)

var tracer = otel.Tracer("services/report")

// Gateway is the slice of the platform client the engine needs.
type Gateway interface {
	UserHonor(ctx context.Context, userID string) (codemao.Honor, error)
	ServerTime(ctx context.Context) int64
	UserFans(ctx context.Context, userID string, max int) ([]map[string]any, error)
	UserFollows(ctx context.Context, userID string, max int) ([]map[string]any, error)
}

// Snapshot is one observation of the user's counters. The Timestamp is
// server time in seconds.
type Snapshot struct {
	UserID    int64  `json:"user_id"`
	Nickname  string `json:"nickname"`
	Level     int    `json:"level"`
	Fans      int    `json:"fans"`
	Collected int    `json:"collected"`
	Liked     int    `json:"liked"`
	Viewed    int    `json:"view"`
	Timestamp int64  `json:"timestamp"`
}

// Engine compares fresh counters against the cached previous run.
type Engine struct {
	gateway Gateway
	cache   store.Node
}

func NewEngine(gateway Gateway, cache store.Node) *Engine {
	return &Engine{gateway: gateway, cache: cache}
}

// Run fetches the user's current counters, prints the change since the
// previous run and replaces the cached snapshot. The first run only
// seeds the cache.
func (e *Engine) Run(ctx context.Context, out io.Writer, userID string) error {
	ctx, span := tracer.Start(ctx, "engine:Run")
	defer span.End()

	honor, err := e.gateway.UserHonor(ctx, userID)
	if err != nil {
		return err
	}
	current := Snapshot{
		UserID:    honor.UserID,
		Nickname:  honor.Nickname,
		Level:     honor.AuthorLevel,
		Fans:      honor.FansTotal,
		Collected: honor.CollectedTotal,
		Liked:     honor.LikedTotal,
		Viewed:    honor.ViewTimes,
		Timestamp: e.gateway.ServerTime(ctx),
	}

	// the cache document is shared with the fan set, so the presence of
	// a previous snapshot is keyed on its timestamp
	if e.cache.Get("timestamp") != nil {
		var previous Snapshot
		err = e.cache.Decode(&previous)
		if err != nil {
			return err
		}
		RenderChanges(out, previous, current)
	}

	return e.cache.Update(map[string]any{
		"user_id":   current.UserID,
		"nickname":  current.Nickname,
		"level":     current.Level,
		"fans":      current.Fans,
		"collected": current.Collected,
		"liked":     current.Liked,
		"view":      current.Viewed,
		"timestamp": current.Timestamp,
	})
}

// Relation is one entry of the fan or follow list.
type Relation struct {
	UserID   int64
	Nickname string
}

func relationsFrom(raw []map[string]any) []Relation {
	out := make([]Relation, 0, len(raw))
	for _, item := range raw {
		out = append(out, Relation{
			UserID:   int64(jsonpath.Int(item, "id")),
			Nickname: jsonpath.String(item, "nickname"),
		})
	}
	return out
}

// Relations prints the account's fan and follow counts with the mutual
// overlap, lists which fans were gained or lost since the previous run,
// and replaces the cached fan set. The first run only seeds it.
func (e *Engine) Relations(ctx context.Context, out io.Writer, userID string) error {
	ctx, span := tracer.Start(ctx, "engine:Relations")
	defer span.End()

	rawFans, err := e.gateway.UserFans(ctx, userID, 0)
	if err != nil {
		return err
	}
	rawFollows, err := e.gateway.UserFollows(ctx, userID, 0)
	if err != nil {
		return err
	}
	fans := relationsFrom(rawFans)
	follows := relationsFrom(rawFollows)

	followed := map[int64]bool{}
	for _, relation := range follows {
		followed[relation.UserID] = true
	}
	mutual := 0
	for _, fan := range fans {
		if followed[fan.UserID] {
			mutual++
		}
	}
	fmt.Fprintf(out, "fans %d, following %d, mutual %d\n", len(fans), len(follows), mutual)

	// copy before Clear below empties the live document map
	fansNode := e.cache.Child("fans")
	previous := map[string]string{}
	for key, value := range fansNode.Map() {
		previous[key] = fmt.Sprintf("%v", value)
	}

	if len(previous) > 0 {
		renderFanChanges(out, previous, fans)
	}

	next := map[string]any{}
	for _, fan := range fans {
		next[strconv.FormatInt(fan.UserID, 10)] = fan.Nickname
	}
	err = fansNode.Clear()
	if err != nil {
		return err
	}
	return fansNode.Update(next)
}

func renderFanChanges(out io.Writer, previous map[string]string, fans []Relation) {
	current := map[string]bool{}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"change", "user", "nickname"})

	rows := 0
	for _, fan := range fans {
		key := strconv.FormatInt(fan.UserID, 10)
		current[key] = true
		if _, ok := previous[key]; !ok {
			t.AppendRow(table.Row{"new", key, fan.Nickname})
			rows++
		}
	}
	for key, nickname := range previous {
		if !current[key] {
			t.AppendRow(table.Row{"lost", key, nickname})
			rows++
		}
	}

	if rows == 0 {
		fmt.Fprintln(out, "no fan changes")
		return
	}
	t.Render()
}

// RenderChanges prints the counter deltas between two snapshots.
func RenderChanges(out io.Writer, previous, current Snapshot) {
	if previous.Timestamp > 0 && current.Timestamp > 0 {
		fmt.Fprintf(out, "%s to %s\n",
			formatTimestamp(previous.Timestamp),
			formatTimestamp(current.Timestamp),
		)
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"metric", "before", "after", "change"})
	t.AppendRow(table.Row{"fans", previous.Fans, current.Fans, current.Fans - previous.Fans})
	t.AppendRow(table.Row{"collected", previous.Collected, current.Collected, current.Collected - previous.Collected})
	t.AppendRow(table.Row{"liked", previous.Liked, current.Liked, current.Liked - previous.Liked})
	t.AppendRow(table.Row{"viewed", previous.Viewed, current.Viewed, current.Viewed - previous.Viewed})
	t.Render()
}

func formatTimestamp(ts int64) string {
	return time.Unix(ts, 0).Format("2006-01-02 15:04:05")
}
