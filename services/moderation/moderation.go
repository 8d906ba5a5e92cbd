// Package moderation scans the comment sections of the account's works
// for advertisement keywords and blacklisted authors, then deletes the
// confirmed hits.
package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel"

	"codemaobot/lib/jsonpath"
	"codemaobot/lib/store"
	"codemaobot/lib/textutil"
)

var tracer = otel.Tracer("services/moderation")

// Gateway is the slice of the platform client the engine needs.
type Gateway interface {
	UserWorks(ctx context.Context, userID string) ([]map[string]any, error)
	WorkComments(ctx context.Context, workID int64, max int) ([]map[string]any, error)
	DeleteWorkComment(ctx context.Context, workID, commentID int64) bool
	UserPosts(ctx context.Context, max int) ([]map[string]any, error)
	ForumPostComments(ctx context.Context, postID int64, max int) ([]map[string]any, error)
	DeleteForumComment(ctx context.Context, targetID int64, reply bool) bool
}

// Source tags which side of the platform a comment section lives on.
// Works and forum posts share the comment-tree shape but use different
// endpoints for listing and deletion.
type Source int

const (
	SourceWork Source = iota
	SourcePost
)

func (s Source) String() string {
	if s == SourcePost {
		return "post"
	}
	return "work"
}

// Confirmer asks the operator to approve the pending deletions.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Reason tags why a comment was matched.
type Reason int

const (
	ReasonAdvertisement Reason = iota
	ReasonBlacklist
)

func (r Reason) String() string {
	if r == ReasonBlacklist {
		return "blacklist"
	}
	return "advertisement"
}

// Reply is a flattened second-level comment.
type Reply struct {
	ID       int64
	UserID   int64
	Nickname string
	// Content is normalized for matching at flatten time.
	Content   string
	CreatedAt int64
}

// Comment is a flattened top-level comment with its replies. The tree
// depth is fixed at two.
type Comment struct {
	ID        int64
	UserID    int64
	Nickname  string
	Content   string
	CreatedAt int64
	// IsTop marks operator-pinned comments, which are exempt from
	// top-level scanning. Replies under them are still first-party
	// content and are scanned normally.
	IsTop   bool
	Replies []Reply
}

// Match is one comment or reply proposed for deletion. ReplyID is 0
// for a top-level comment.
type Match struct {
	Source Source
	// BusinessID is the work or forum post owning the comment section.
	BusinessID   int64
	BusinessName string
	// CommentID is the top-level comment, also the parent when ReplyID
	// is set.
	CommentID int64
	ReplyID   int64
	Reason    Reason
	Content   string
}

func (m Match) key() string {
	return fmt.Sprintf("%s.%d.%d.%d", m.Source, m.BusinessID, m.CommentID, m.ReplyID)
}

// TargetID is the id the deletion call takes: the reply when the match
// is a reply, the comment otherwise.
func (m Match) TargetID() int64 {
	if m.ReplyID != 0 {
		return m.ReplyID
	}
	return m.CommentID
}

// Engine holds the collaborators of one moderation run.
type Engine struct {
	gateway   Gateway
	userData  store.Node
	accountID string
}

// NewEngine builds a moderation engine over the account's user data
// subtree (ad keywords under "ads", blacklisted user ids under
// "black_room.user").
func NewEngine(gateway Gateway, userData store.Node, accountID string) *Engine {
	return &Engine{
		gateway:   gateway,
		userData:  userData,
		accountID: accountID,
	}
}

// FlattenComments turns raw comment documents into the two-level
// Comment shape, content normalized for matching.
func FlattenComments(raw []map[string]any) []Comment {
	comments := make([]Comment, 0, len(raw))
	for _, item := range raw {
		comment := Comment{
			ID:        int64(jsonpath.Int(item, "id")),
			UserID:    int64(jsonpath.Int(item, "user.id")),
			Nickname:  jsonpath.String(item, "user.nickname"),
			Content:   textutil.Normalize(jsonpath.String(item, "content")),
			CreatedAt: int64(jsonpath.Int(item, "created_at")),
			IsTop:     item["is_top"] == true,
		}
		for _, rawReply := range jsonpath.Slice(item, "replies.items") {
			replyDoc, ok := rawReply.(map[string]any)
			if !ok {
				continue
			}
			// work replies carry their author under "reply_user", forum
			// replies under "user"
			userID := int64(jsonpath.Int(replyDoc, "reply_user.id"))
			nickname := jsonpath.String(replyDoc, "reply_user.nickname")
			if userID == 0 {
				userID = int64(jsonpath.Int(replyDoc, "user.id"))
				nickname = jsonpath.String(replyDoc, "user.nickname")
			}
			comment.Replies = append(comment.Replies, Reply{
				ID:        int64(jsonpath.Int(replyDoc, "id")),
				UserID:    userID,
				Nickname:  nickname,
				Content:   textutil.Normalize(jsonpath.String(replyDoc, "content")),
				CreatedAt: int64(jsonpath.Int(replyDoc, "created_at")),
			})
		}
		comments = append(comments, comment)
	}
	return comments
}

// scanState carries the match lists and dedup set through one Scan.
type scanState struct {
	keywords  []string
	blocked   map[string]bool
	seen      map[string]bool
	ads       []Match
	blacklist []Match
}

func (s *scanState) record(ctx context.Context, match Match) {
	if s.seen[match.key()] {
		return
	}
	s.seen[match.key()] = true
	slog.InfoContext(ctx, "flagged comment",
		"source", match.Source.String(),
		"name", match.BusinessName,
		"reason", match.Reason.String(),
		"content", match.Content,
	)
	if match.Reason == ReasonBlacklist {
		s.blacklist = append(s.blacklist, match)
		return
	}
	s.ads = append(s.ads, match)
}

// Scan walks every comment section owned by the account, works first
// and then forum posts, and collects advertisement and blacklist
// matches, deduplicated, in discovery order. Transport failures shrink
// the result instead of failing it.
func (e *Engine) Scan(ctx context.Context) (ads []Match, blacklist []Match, err error) {
	ctx, span := tracer.Start(ctx, "engine:Scan")
	defer span.End()

	state := &scanState{
		blocked: map[string]bool{},
		seen:    map[string]bool{},
	}
	for _, keyword := range e.userData.StringSlice("ads") {
		state.keywords = append(state.keywords, textutil.Normalize(keyword))
	}
	for _, userID := range e.userData.Child("black_room").StringSlice("user") {
		state.blocked[userID] = true
	}

	works, err := e.gateway.UserWorks(ctx, e.accountID)
	if err != nil {
		return nil, nil, err
	}
	for _, work := range works {
		workID := int64(jsonpath.Int(work, "id"))
		raw, err := e.gateway.WorkComments(ctx, workID, 0)
		if err != nil {
			return nil, nil, err
		}
		e.scanSection(ctx, state, SourceWork, workID, jsonpath.String(work, "work_name"), raw)
	}

	posts, err := e.gateway.UserPosts(ctx, 0)
	if err != nil {
		return nil, nil, err
	}
	for _, post := range posts {
		postID := int64(jsonpath.Int(post, "id"))
		raw, err := e.gateway.ForumPostComments(ctx, postID, 0)
		if err != nil {
			return nil, nil, err
		}
		e.scanSection(ctx, state, SourcePost, postID, jsonpath.String(post, "title"), raw)
	}

	return state.ads, state.blacklist, nil
}

func (e *Engine) scanSection(ctx context.Context, state *scanState, source Source, businessID int64, businessName string, raw []map[string]any) {
	for _, comment := range FlattenComments(raw) {
		if !comment.IsTop {
			if _, ok := textutil.FirstMatch(comment.Content, state.keywords); ok {
				state.record(ctx, Match{
					Source:       source,
					BusinessID:   businessID,
					BusinessName: businessName,
					CommentID:    comment.ID,
					Reason:       ReasonAdvertisement,
					Content:      comment.Content,
				})
			}
			if state.blocked[strconv.FormatInt(comment.UserID, 10)] {
				state.record(ctx, Match{
					Source:       source,
					BusinessID:   businessID,
					BusinessName: businessName,
					CommentID:    comment.ID,
					Reason:       ReasonBlacklist,
					Content:      comment.Content,
				})
			}
		}

		for _, reply := range comment.Replies {
			if _, ok := textutil.FirstMatch(reply.Content, state.keywords); ok {
				state.record(ctx, Match{
					Source:       source,
					BusinessID:   businessID,
					BusinessName: businessName,
					CommentID:    comment.ID,
					ReplyID:      reply.ID,
					Reason:       ReasonAdvertisement,
					Content:      reply.Content,
				})
			}
			if state.blocked[strconv.FormatInt(reply.UserID, 10)] {
				state.record(ctx, Match{
					Source:       source,
					BusinessID:   businessID,
					BusinessName: businessName,
					CommentID:    comment.ID,
					ReplyID:      reply.ID,
					Reason:       ReasonBlacklist,
					Content:      reply.Content,
				})
			}
		}
	}
}

// Apply asks the operator to confirm one match list and deletes it in
// reverse discovery order, so a reply is always deleted before the
// comment it hangs from. The first failed deletion aborts the rest of
// the list; deletions already performed are not rolled back.
func (e *Engine) Apply(ctx context.Context, matches []Match, confirmer Confirmer) bool {
	ctx, span := tracer.Start(ctx, "engine:Apply")
	defer span.End()

	if len(matches) == 0 {
		return true
	}

	prompt := fmt.Sprintf("delete all %d %s comments?", len(matches), matches[0].Reason)
	if !confirmer.Confirm(prompt) {
		slog.InfoContext(ctx, "deletion declined by operator")
		return true
	}

	for i := len(matches) - 1; i >= 0; i-- {
		match := matches[i]
		if !e.delete(ctx, match) {
			slog.ErrorContext(ctx, "failed to delete comment, aborting list",
				"source", match.Source.String(),
				"business_id", match.BusinessID,
				"comment_id", match.CommentID,
				"reply_id", match.ReplyID,
			)
			return false
		}
		slog.InfoContext(ctx, "deleted comment",
			"source", match.Source.String(),
			"business_id", match.BusinessID,
			"target_id", match.TargetID(),
			"reason", match.Reason.String(),
		)
	}
	return true
}

func (e *Engine) delete(ctx context.Context, match Match) bool {
	if match.Source == SourcePost {
		return e.gateway.DeleteForumComment(ctx, match.TargetID(), match.ReplyID != 0)
	}
	return e.gateway.DeleteWorkComment(ctx, match.BusinessID, match.TargetID())
}
