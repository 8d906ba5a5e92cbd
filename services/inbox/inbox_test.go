package inbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"codemaobot/lib/codemao"
)

type touch struct {
	queryType string
	category  int
	offset    int
}

type fakeGateway struct {
	webUnread  int
	nemoUnread int
	touches    []touch
	failWeb    bool
	failNemo   bool
}

func (f *fakeGateway) WebMessageCounts(ctx context.Context) []codemao.RecordCount {
	return []codemao.RecordCount{
		{QueryType: "LIKE_FORK", Count: 0},
		{QueryType: "COMMENT_REPLY", Count: f.webUnread},
		{QueryType: "SYSTEM", Count: 0},
	}
}

func (f *fakeGateway) NemoMessageCounts(ctx context.Context) map[string]any {
	return map[string]any{
		"like_collection_count": float64(f.nemoUnread),
		"comment_count":         float64(0),
		"re_create_count":       float64(0),
		"system_count":          float64(0),
	}
}

func (f *fakeGateway) TouchWebRecords(ctx context.Context, queryType string, limit, offset int) bool {
	if f.failWeb {
		return false
	}
	f.touches = append(f.touches, touch{queryType: queryType, offset: offset})
	// one full sweep of the three query types drains the counter
	if queryType == "SYSTEM" {
		f.webUnread = 0
	}
	return true
}

func (f *fakeGateway) TouchNemoRecords(ctx context.Context, category, limit, offset int) bool {
	if f.failNemo {
		return false
	}
	f.touches = append(f.touches, touch{category: category, offset: offset})
	if category == 3 {
		f.nemoUnread = 0
	}
	return true
}

func TestMarkAllReadWebAlreadyClean(t *testing.T) {
	gateway := &fakeGateway{}
	engine := NewEngine(gateway)

	require.True(t, engine.MarkAllRead(context.Background(), codemao.SourceWeb))
	require.Empty(t, gateway.touches)
}

func TestMarkAllReadWebSweepsEveryQueryType(t *testing.T) {
	gateway := &fakeGateway{webUnread: 5}
	engine := NewEngine(gateway)

	require.True(t, engine.MarkAllRead(context.Background(), codemao.SourceWeb))
	require.Equal(t, []touch{
		{queryType: "LIKE_FORK"},
		{queryType: "COMMENT_REPLY"},
		{queryType: "SYSTEM"},
	}, gateway.touches)
}

func TestMarkAllReadWebPageFailure(t *testing.T) {
	gateway := &fakeGateway{webUnread: 5, failWeb: true}
	engine := NewEngine(gateway)

	require.False(t, engine.MarkAllRead(context.Background(), codemao.SourceWeb))
}

func TestMarkAllReadNemo(t *testing.T) {
	gateway := &fakeGateway{nemoUnread: 2}
	engine := NewEngine(gateway)

	require.True(t, engine.MarkAllRead(context.Background(), codemao.SourceNemo))
	require.Equal(t, []touch{{category: 1}, {category: 3}}, gateway.touches)
}

func TestMarkAllReadNemoPageFailure(t *testing.T) {
	gateway := &fakeGateway{nemoUnread: 2, failNemo: true}
	engine := NewEngine(gateway)

	require.False(t, engine.MarkAllRead(context.Background(), codemao.SourceNemo))
}

func TestMarkAllReadGivesUpOnStuckCounter(t *testing.T) {
	gateway := &stuckGateway{}
	engine := NewEngine(gateway)

	require.False(t, engine.MarkAllRead(context.Background(), codemao.SourceWeb))
	require.Equal(t, maxSweeps*len(webQueryTypes), gateway.touched)
}

type stuckGateway struct {
	touched int
}

func (s *stuckGateway) WebMessageCounts(ctx context.Context) []codemao.RecordCount {
	return []codemao.RecordCount{{QueryType: "COMMENT_REPLY", Count: 1}}
}

func (s *stuckGateway) NemoMessageCounts(ctx context.Context) map[string]any { return nil }

func (s *stuckGateway) TouchWebRecords(ctx context.Context, queryType string, limit, offset int) bool {
	s.touched++
	return true
}

func (s *stuckGateway) TouchNemoRecords(ctx context.Context, category, limit, offset int) bool {
	return true
}
