package autoreply

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"

	"codemaobot/lib/jsonpath"
	"codemaobot/lib/store"
)

var tracer = otel.Tracer("services/autoreply")

// Gateway is the slice of the platform client the engine needs.
type Gateway interface {
	UnreadReplies(ctx context.Context) int
	MessageRecords(ctx context.Context, queryType string, max int) ([]map[string]any, error)
	WorkComments(ctx context.Context, workID int64, max int) ([]map[string]any, error)
	ReplyWork(ctx context.Context, workID, commentID, parentID int64, content string) bool
	ReplyForumComment(ctx context.Context, commentID, parentID int64, content string) bool
}

// Engine answers pending comment/reply notifications.
type Engine struct {
	gateway  Gateway
	userData store.Node
	info     store.Node
	// ledger may be nil, in which case delivery is at-least-once
	// across interrupted runs.
	ledger *Ledger
}

func NewEngine(gateway Gateway, userData, info store.Node, ledger *Ledger) *Engine {
	return &Engine{
		gateway:  gateway,
		userData: userData,
		info:     info,
		ledger:   ledger,
	}
}

// ProcessPending fetches pending notifications and answers each one.
// limit bounds the fetch; 0 means the current unread count. Returns
// false when any delivery failed; a failed delivery is not retried and
// does not stop the remaining events.
func (e *Engine) ProcessPending(ctx context.Context, limit int) bool {
	ctx, span := tracer.Start(ctx, "engine:ProcessPending")
	defer span.End()

	if limit == 0 {
		limit = e.gateway.UnreadReplies(ctx)
		if limit == 0 {
			return true
		}
	}

	records, err := e.gateway.MessageRecords(ctx, "COMMENT_REPLY", limit)
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch notifications", "err", err.Error())
		return true
	}

	templates := LoadTemplates(e.userData, e.info)

	ok := true
	for _, record := range records {
		event, recognized := ParseEvent(record)
		if !recognized {
			continue
		}
		if e.ledger != nil && event.ID != "" && e.ledger.Seen(ctx, event.ID) {
			continue
		}

		response, found := templates.Respond(event.Text())
		if !found {
			slog.WarnContext(ctx, "no template matched and no fallbacks configured",
				"event", event.Type,
			)
			continue
		}

		if !e.deliver(ctx, event, response) {
			slog.WarnContext(ctx, "failed to deliver reply",
				"event", event.Type,
				"business_id", event.BusinessID,
			)
			ok = false
			continue
		}

		if e.ledger != nil && event.ID != "" {
			err := e.ledger.Record(ctx, event.ID)
			if err != nil {
				slog.WarnContext(ctx, "failed to record replied event", "err", err.Error())
			}
		}
	}
	return ok
}

func (e *Engine) deliver(ctx context.Context, event Event, response string) bool {
	if event.isTopLevel() {
		commentID := event.ReferenceID
		if commentID == 0 {
			commentID = event.CommentID
		}
		if event.isWork() {
			return e.gateway.ReplyWork(ctx, event.BusinessID, commentID, 0, response)
		}
		return e.gateway.ReplyForumComment(ctx, commentID, 0, response)
	}

	parentID := event.ReferenceID
	if parentID == 0 {
		parentID = event.RepliedID
	}

	if event.isWork() {
		// the feed only carries the reply's own id; the comment it
		// hangs from has to be looked up in the flat comment-id index
		index, err := e.CommentIDIndex(ctx, event.BusinessID)
		if err != nil {
			return false
		}
		commentID, found := ResolveParent(index, event.ReplyID)
		if !found {
			slog.WarnContext(ctx, "reply id not present in comment index",
				"business_id", event.BusinessID,
				"reply_id", event.ReplyID,
			)
			return false
		}
		return e.gateway.ReplyWork(ctx, event.BusinessID, commentID, parentID, response)
	}

	return e.gateway.ReplyForumComment(ctx, event.CommentID, parentID, response)
}

// CommentIDIndex flattens a work's comment tree into the platform's
// compound-id list: top-level comments as "{comment_id}", replies as
// "{comment_id}.{reply_id}".
func (e *Engine) CommentIDIndex(ctx context.Context, workID int64) ([]string, error) {
	raw, err := e.gateway.WorkComments(ctx, workID, 0)
	if err != nil {
		return nil, err
	}

	var index []string
	for _, item := range raw {
		commentID := int64(jsonpath.Int(item, "id"))
		index = append(index, strconv.FormatInt(commentID, 10))
		for _, rawReply := range jsonpath.Slice(item, "replies.items") {
			replyDoc, ok := rawReply.(map[string]any)
			if !ok {
				continue
			}
			index = append(index, fmt.Sprintf("%d.%d", commentID, jsonpath.Int(replyDoc, "id")))
		}
	}
	return index, nil
}

// ResolveParent finds the comment a reply hangs from: the index entry
// whose reply-id suffix matches, read back to its comment-id prefix.
func ResolveParent(index []string, replyID int64) (int64, bool) {
	suffix := "." + strconv.FormatInt(replyID, 10)
	for _, entry := range index {
		if !strings.HasSuffix(entry, suffix) {
			continue
		}
		prefix := strings.TrimSuffix(entry, suffix)
		commentID, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			continue
		}
		return commentID, true
	}
	return 0, false
}
