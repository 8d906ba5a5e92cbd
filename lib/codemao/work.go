package codemao

import (
	"context"
	"fmt"

	"codemaobot/lib/paginate"
)

// commentPageSize bounds the number of comments per page. 200 keeps the
// request count low without tripping server-side limits.
const commentPageSize = 200

// WorkComments fetches the full comment list of a work, replies nested
// under each comment. max caps the result, 0 fetches everything.
func (c *Client) WorkComments(ctx context.Context, workID int64, max int) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "client:WorkComments")
	defer span.End()

	return paginate.FetchAll(ctx, c, paginate.Request{
		Endpoint:  fmt.Sprintf("/creation-tools/v1/works/%d/comments", workID),
		Query:     map[string]string{"limit": itoa(commentPageSize), "offset": "0"},
		TotalPath: "page_total",
		Limit:     max,
	})
}

// UserWorks fetches every published work of a user.
func (c *Client) UserWorks(ctx context.Context, userID string) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "client:UserWorks")
	defer span.End()

	return paginate.FetchAll(ctx, c, paginate.Request{
		Endpoint: "/creation-tools/v2/user/center/work-list",
		Query: map[string]string{
			"type":    "newest",
			"user_id": userID,
			"offset":  "0",
			"limit":   "5",
		},
	})
}

// DeleteWorkComment deletes a comment or a reply under a work. Both get
// a unique id, so the same call covers both levels.
func (c *Client) DeleteWorkComment(ctx context.Context, workID, commentID int64) bool {
	ctx, span := tracer.Start(ctx, "client:DeleteWorkComment")
	defer span.End()

	status, _ := c.ExecuteRaw(
		ctx,
		fmt.Sprintf("/creation-tools/v1/works/%d/comment/%d", workID, commentID),
		"DELETE",
		nil, nil,
	)
	return status == 204
}

// ReplyWork posts a reply under a work comment. parentID is 0 for a
// direct reply to the comment itself.
func (c *Client) ReplyWork(ctx context.Context, workID, commentID, parentID int64, content string) bool {
	ctx, span := tracer.Start(ctx, "client:ReplyWork")
	defer span.End()

	status, _ := c.ExecuteRaw(
		ctx,
		fmt.Sprintf("/creation-tools/v1/works/%d/comment/%d/reply", workID, commentID),
		"POST",
		nil,
		map[string]any{"parent_id": parentID, "content": content},
	)
	return status == 201
}

// LikeWork likes a work.
func (c *Client) LikeWork(ctx context.Context, workID int64) bool {
	ctx, span := tracer.Start(ctx, "client:LikeWork")
	defer span.End()

	status, _ := c.ExecuteRaw(
		ctx,
		fmt.Sprintf("/nemo/v2/works/%d/like", workID),
		"POST",
		nil,
		map[string]any{},
	)
	return status == 200
}
