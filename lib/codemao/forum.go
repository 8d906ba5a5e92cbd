package codemao

import (
	"context"
	"fmt"

	"codemaobot/lib/paginate"
)

// UserPosts fetches every forum post authored by the signed-in user.
func (c *Client) UserPosts(ctx context.Context, max int) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "client:UserPosts")
	defer span.End()

	return paginate.FetchAll(ctx, c, paginate.Request{
		Endpoint:  "/web/forums/posts/mine",
		Query:     map[string]string{"page": "1", "limit": "30"},
		Mode:      paginate.ModePage,
		CursorKey: "page",
		Limit:     max,
	})
}

// ForumPostComments fetches the full reply list of a forum post. The
// forum side paginates by page number, not by offset.
func (c *Client) ForumPostComments(ctx context.Context, postID int64, max int) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "client:ForumPostComments")
	defer span.End()

	return paginate.FetchAll(ctx, c, paginate.Request{
		Endpoint:  fmt.Sprintf("/web/forums/posts/%d/replies", postID),
		Query:     map[string]string{"page": "1", "limit": "30"},
		Mode:      paginate.ModePage,
		AmountKey: "limit",
		CursorKey: "page",
		Limit:     max,
	})
}

// ReplyForumComment posts a reply under a forum comment. parentID is 0
// for a direct reply to the comment itself.
func (c *Client) ReplyForumComment(ctx context.Context, commentID, parentID int64, content string) bool {
	ctx, span := tracer.Start(ctx, "client:ReplyForumComment")
	defer span.End()

	status, _ := c.ExecuteRaw(
		ctx,
		fmt.Sprintf("/web/forums/comments/%d/replies", commentID),
		"POST",
		nil,
		map[string]any{"parent_id": parentID, "content": content},
	)
	return status == 201
}

// DeleteForumComment deletes a forum comment, or one of its replies
// when reply is set. The forum addresses the two levels as separate
// resource kinds rather than by parent.
func (c *Client) DeleteForumComment(ctx context.Context, targetID int64, reply bool) bool {
	ctx, span := tracer.Start(ctx, "client:DeleteForumComment")
	defer span.End()

	kind := "comments"
	if reply {
		kind = "replies"
	}
	status, _ := c.ExecuteRaw(
		ctx,
		fmt.Sprintf("/web/forums/%s/%d", kind, targetID),
		"DELETE",
		nil, nil,
	)
	return status == 204
}
