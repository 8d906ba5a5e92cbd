package codemao

import (
	"context"
	"fmt"

	"codemaobot/lib/jsonpath"
	"codemaobot/lib/paginate"
)

// Source selects between the two message inboxes the platform runs:
// the community web inbox and the nemo app inbox.
type Source int

const (
	SourceWeb Source = iota
	SourceNemo
)

// ParseSource decodes a source literal at the configuration boundary.
func ParseSource(s string) (Source, error) {
	switch s {
	case "web":
		return SourceWeb, nil
	case "nemo":
		return SourceNemo, nil
	}
	return 0, fmt.Errorf("codemao: unsupported message source %q", s)
}

func (s Source) String() string {
	if s == SourceNemo {
		return "nemo"
	}
	return "web"
}

// RecordCount is one unread counter of the web inbox.
type RecordCount struct {
	QueryType string `json:"query_type"`
	Count     int    `json:"count"`
}

// WebMessageCounts fetches the unread counters of the web inbox, one
// per query type. nil on transport failure.
func (c *Client) WebMessageCounts(ctx context.Context) []RecordCount {
	ctx, span := tracer.Start(ctx, "client:WebMessageCounts")
	defer span.End()

	status, body := c.ExecuteRaw(ctx, "/web/message-record/count", "GET", nil, nil)
	if status != 200 {
		return nil
	}
	return decodeList[RecordCount](body)
}

// UnreadReplies returns the unread count of the COMMENT_REPLY counter.
func (c *Client) UnreadReplies(ctx context.Context) int {
	for _, count := range c.WebMessageCounts(ctx) {
		if count.QueryType == "COMMENT_REPLY" {
			return count.Count
		}
	}
	return 0
}

// NemoMessageCounts fetches the unread counters of the nemo inbox as a
// flat document. nil on transport failure.
func (c *Client) NemoMessageCounts(ctx context.Context) map[string]any {
	ctx, span := tracer.Start(ctx, "client:NemoMessageCounts")
	defer span.End()

	doc, _ := c.Execute(ctx, "/nemo/v2/user/message/count", "GET", nil, nil)
	return doc
}

// MessageRecords fetches up to max notification records of one query
// type (LIKE_FORK, COMMENT_REPLY or SYSTEM), newest first.
func (c *Client) MessageRecords(ctx context.Context, queryType string, max int) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "client:MessageRecords")
	defer span.End()

	return paginate.FetchAll(ctx, c, paginate.Request{
		Endpoint: "/web/message-record",
		Query: map[string]string{
			"query_type": queryType,
			"limit":      "200",
			"offset":     "0",
		},
		Limit: max,
	})
}

// TouchWebRecords fetches one page of the web inbox without decoding
// it. The platform marks every record on a fetched page as read, which
// is the only way to clear the unread counters.
func (c *Client) TouchWebRecords(ctx context.Context, queryType string, limit, offset int) bool {
	ctx, span := tracer.Start(ctx, "client:TouchWebRecords")
	defer span.End()

	status, _ := c.ExecuteRaw(ctx, "/web/message-record", "GET", map[string]string{
		"query_type": queryType,
		"limit":      itoa(int64(limit)),
		"offset":     itoa(int64(offset)),
	}, nil)
	return status == 200
}

// TouchNemoRecords is TouchWebRecords for the nemo inbox, which splits
// its feed into numbered categories instead of query types.
func (c *Client) TouchNemoRecords(ctx context.Context, category, limit, offset int) bool {
	ctx, span := tracer.Start(ctx, "client:TouchNemoRecords")
	defer span.End()

	status, _ := c.ExecuteRaw(ctx, fmt.Sprintf("/nemo/v2/user/message/%d", category), "GET", map[string]string{
		"limit":  itoa(int64(limit)),
		"offset": itoa(int64(offset)),
	}, nil)
	return status == 200
}

// ServerTime fetches the platform clock as a unix timestamp.
func (c *Client) ServerTime(ctx context.Context) int64 {
	ctx, span := tracer.Start(ctx, "client:ServerTime")
	defer span.End()

	doc, _ := c.Execute(ctx, "/coconut/clouddb/currentTime", "GET", nil, nil)
	if doc == nil {
		return 0
	}
	return int64(jsonpath.Int(doc, "data"))
}
