package report

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"codemaobot/lib/codemao"
	"codemaobot/lib/store"
)

type fakeGateway struct {
	honor   codemao.Honor
	now     int64
	fans    []map[string]any
	follows []map[string]any
}

func (f *fakeGateway) UserHonor(ctx context.Context, userID string) (codemao.Honor, error) {
	return f.honor, nil
}

func (f *fakeGateway) ServerTime(ctx context.Context) int64 { return f.now }

func (f *fakeGateway) UserFans(ctx context.Context, userID string, max int) ([]map[string]any, error) {
	return f.fans, nil
}

func (f *fakeGateway) UserFollows(ctx context.Context, userID string, max int) ([]map[string]any, error) {
	return f.follows, nil
}

func user(id int64, nickname string) map[string]any {
	return map[string]any{"id": float64(id), "nickname": nickname}
}

func testCache(t *testing.T) store.Node {
	s, err := store.Open(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)
	return s.Root()
}

func TestFirstRunOnlySeedsCache(t *testing.T) {
	gateway := &fakeGateway{
		honor: codemao.Honor{UserID: 7, Nickname: "cat", FansTotal: 10, ViewTimes: 100},
		now:   1700000000,
	}
	cache := testCache(t)
	engine := NewEngine(gateway, cache)

	var out bytes.Buffer
	require.NoError(t, engine.Run(context.Background(), &out, "7"))
	require.Empty(t, out.String())

	var snapshot Snapshot
	require.NoError(t, cache.Decode(&snapshot))
	require.Equal(t, int64(7), snapshot.UserID)
	require.Equal(t, 10, snapshot.Fans)
	require.Equal(t, int64(1700000000), snapshot.Timestamp)
}

func TestSecondRunReportsDeltas(t *testing.T) {
	gateway := &fakeGateway{
		honor: codemao.Honor{UserID: 7, Nickname: "cat", FansTotal: 10, LikedTotal: 5, ViewTimes: 100},
		now:   1700000000,
	}
	cache := testCache(t)
	engine := NewEngine(gateway, cache)

	var out bytes.Buffer
	require.NoError(t, engine.Run(context.Background(), &out, "7"))

	gateway.honor.FansTotal = 13
	gateway.honor.LikedTotal = 4
	gateway.now = 1700086400

	require.NoError(t, engine.Run(context.Background(), &out, "7"))
	require.Contains(t, out.String(), "fans")
	require.Contains(t, out.String(), "13")
	require.Contains(t, out.String(), "-1")

	// cache now holds the latest observation
	var snapshot Snapshot
	require.NoError(t, cache.Decode(&snapshot))
	require.Equal(t, 13, snapshot.Fans)
	require.Equal(t, int64(1700086400), snapshot.Timestamp)
}

func TestRelationsFirstRunSeedsFanSet(t *testing.T) {
	gateway := &fakeGateway{
		fans:    []map[string]any{user(1, "alice"), user(2, "bob")},
		follows: []map[string]any{user(2, "bob")},
	}
	cache := testCache(t)
	engine := NewEngine(gateway, cache)

	var out bytes.Buffer
	require.NoError(t, engine.Relations(context.Background(), &out, "7"))
	require.Contains(t, out.String(), "fans 2, following 1, mutual 1")
	require.NotContains(t, out.String(), "new")

	require.Equal(t, map[string]any{"1": "alice", "2": "bob"}, cache.Child("fans").Map())
}

func TestRelationsReportsGainedAndLostFans(t *testing.T) {
	gateway := &fakeGateway{
		fans: []map[string]any{user(1, "alice"), user(2, "bob")},
	}
	cache := testCache(t)
	engine := NewEngine(gateway, cache)

	var out bytes.Buffer
	require.NoError(t, engine.Relations(context.Background(), &out, "7"))

	// bob unfollows, carol follows
	gateway.fans = []map[string]any{user(1, "alice"), user(3, "carol")}
	out.Reset()
	require.NoError(t, engine.Relations(context.Background(), &out, "7"))

	require.Contains(t, out.String(), "carol")
	require.Contains(t, out.String(), "bob")
	require.Contains(t, out.String(), "new")
	require.Contains(t, out.String(), "lost")
	require.NotContains(t, out.String(), "alice")

	require.Equal(t, map[string]any{"1": "alice", "3": "carol"}, cache.Child("fans").Map())
}

func TestRelationsUnchangedFanSet(t *testing.T) {
	gateway := &fakeGateway{fans: []map[string]any{user(1, "alice")}}
	cache := testCache(t)
	engine := NewEngine(gateway, cache)

	var out bytes.Buffer
	require.NoError(t, engine.Relations(context.Background(), &out, "7"))
	out.Reset()
	require.NoError(t, engine.Relations(context.Background(), &out, "7"))
	require.Contains(t, out.String(), "no fan changes")
}

func TestRunIgnoresFanSetInCache(t *testing.T) {
	gateway := &fakeGateway{
		honor: codemao.Honor{UserID: 7, FansTotal: 5},
		now:   1700000000,
		fans:  []map[string]any{user(1, "alice")},
	}
	cache := testCache(t)
	engine := NewEngine(gateway, cache)

	var out bytes.Buffer
	require.NoError(t, engine.Relations(context.Background(), &out, "7"))

	// a cached fan set alone is not a previous snapshot
	out.Reset()
	require.NoError(t, engine.Run(context.Background(), &out, "7"))
	require.Empty(t, out.String())
}

func TestRenderChanges(t *testing.T) {
	var out bytes.Buffer
	RenderChanges(&out,
		Snapshot{Fans: 1, Viewed: 50, Timestamp: 1700000000},
		Snapshot{Fans: 4, Viewed: 75, Timestamp: 1700086400},
	)
	require.Contains(t, out.String(), "before")
	require.Contains(t, out.String(), "25")
	require.Contains(t, out.String(), " to ")
}
