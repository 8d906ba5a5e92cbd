package codemao

import (
	"context"

	"codemaobot/lib/jsonpath"
	"codemaobot/lib/paginate"
)

// Honor is the public engagement profile of a user.
type Honor struct {
	UserID         int64  `json:"user_id"`
	Nickname       string `json:"nickname"`
	AuthorLevel    int    `json:"author_level"`
	FansTotal      int    `json:"fans_total"`
	CollectedTotal int    `json:"collected_total"`
	LikedTotal     int    `json:"liked_total"`
	ViewTimes      int    `json:"view_times"`
}

// UserHonor fetches a user's engagement profile. The zero Honor is
// returned on transport failure.
func (c *Client) UserHonor(ctx context.Context, userID string) (Honor, error) {
	ctx, span := tracer.Start(ctx, "client:UserHonor")
	defer span.End()

	doc, err := c.Execute(
		ctx,
		"/creation-tools/v1/user/center/honor",
		"GET",
		map[string]string{"user_id": userID},
		nil,
	)
	if err != nil || doc == nil {
		return Honor{}, err
	}

	return Honor{
		UserID:         int64(jsonpath.Int(doc, "user_id")),
		Nickname:       jsonpath.String(doc, "nickname"),
		AuthorLevel:    jsonpath.Int(doc, "author_level"),
		FansTotal:      jsonpath.Int(doc, "fans_total"),
		CollectedTotal: jsonpath.Int(doc, "collected_total"),
		LikedTotal:     jsonpath.Int(doc, "liked_total"),
		ViewTimes:      jsonpath.Int(doc, "view_times"),
	}, nil
}

// UserFans fetches up to max followers of a user.
func (c *Client) UserFans(ctx context.Context, userID string, max int) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "client:UserFans")
	defer span.End()

	return paginate.FetchAll(ctx, c, paginate.Request{
		Endpoint: "/creation-tools/v1/user/fans",
		Query:    map[string]string{"user_id": userID, "offset": "0", "limit": "15"},
		Limit:    max,
	})
}

// UserFollows fetches up to max followed users of a user.
func (c *Client) UserFollows(ctx context.Context, userID string, max int) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "client:UserFollows")
	defer span.End()

	return paginate.FetchAll(ctx, c, paginate.Request{
		Endpoint: "/creation-tools/v1/user/followers",
		Query:    map[string]string{"user_id": userID, "offset": "0", "limit": "15"},
		Limit:    max,
	})
}
