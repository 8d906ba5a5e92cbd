package codemao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"codemaobot/lib/telemetry"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Cleanup(telemetry.SetupForTesting(t, "codemao"))

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		BaseUrl:       server.URL,
		SessionCookie: "authorization=token",
	})
	require.NoError(t, err)
	return client
}

func TestExecuteDecodesObject(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "authorization=token", r.Header.Get("cookie"))
		fmt.Fprint(w, `{"data": 42}`)
	}))

	doc, err := client.Execute(context.Background(), "/anything", "GET", nil, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"data": float64(42)}, doc)
}

func TestExecuteFailureSentinel(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))

	doc, err := client.Execute(context.Background(), "/anything", "GET", nil, nil)
	require.NoError(t, err)
	require.Nil(t, doc)
}

func TestWorkCommentsPaginates(t *testing.T) {
	comments := make([]map[string]any, 450)
	for i := range comments {
		comments[i] = map[string]any{"id": i}
	}

	var requests int
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.Equal(t, "/creation-tools/v1/works/5/comments", r.URL.Path)
		require.Equal(t, "200", r.URL.Query().Get("limit"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := offset + 200
		if end > len(comments) {
			end = len(comments)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"page_total": len(comments),
			"items":      comments[offset:end],
		})
	}))

	items, err := client.WorkComments(context.Background(), 5, 0)
	require.NoError(t, err)
	require.Len(t, items, 450)
	// probe page plus the two remaining pages of ceil(450/200)
	require.Equal(t, 4, requests)
}

func TestDeleteWorkComment(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Path == "/creation-tools/v1/works/5/comment/9" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	require.True(t, client.DeleteWorkComment(context.Background(), 5, 9))
	require.False(t, client.DeleteWorkComment(context.Background(), 5, 10))
}

func TestReplyWork(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/creation-tools/v1/works/5/comment/9/reply", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, float64(3), body["parent_id"])
		require.Equal(t, "hi", body["content"])

		w.WriteHeader(http.StatusCreated)
	}))

	require.True(t, client.ReplyWork(context.Background(), 5, 9, 3, "hi"))
}

func TestDeleteForumComment(t *testing.T) {
	var paths []string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.True(t, client.DeleteForumComment(context.Background(), 8, false))
	require.True(t, client.DeleteForumComment(context.Background(), 9, true))
	require.Equal(t, []string{"/web/forums/comments/8", "/web/forums/replies/9"}, paths)
}

func TestWebMessageCounts(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"query_type": "LIKE_FORK", "count": 2},
			{"query_type": "COMMENT_REPLY", "count": 7},
			{"query_type": "SYSTEM", "count": 0}
		]`)
	}))

	counts := client.WebMessageCounts(context.Background())
	require.Len(t, counts, 3)
	require.Equal(t, 7, client.UnreadReplies(context.Background()))
}

func TestServerTime(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/coconut/clouddb/currentTime", r.URL.Path)
		fmt.Fprint(w, `{"data": 1700000000}`)
	}))

	require.Equal(t, int64(1700000000), client.ServerTime(context.Background()))
}
