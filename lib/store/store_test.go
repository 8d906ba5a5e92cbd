package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func reloaded(t *testing.T, path string) map[string]any {
	s, err := Open(path)
	require.NoError(t, err)
	return s.root
}

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	require.Empty(t, s.root)
}

func TestOpenEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	require.Empty(t, s.root)
}

func TestOpenMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := Open(path)
	require.Error(t, err)
}

// every mutation must leave the file equal to the in-memory document,
// not just the last one
func TestRoundTripAtEveryMutation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := Open(path)
	require.NoError(t, err)

	root := s.Root()

	require.NoError(t, root.Set("nickname", "cat"))
	require.Empty(t, cmp.Diff(s.root, reloaded(t, path)))

	user := root.Child("user_data")
	require.NoError(t, user.Set("ads", []any{"spam", "follow me"}))
	require.Empty(t, cmp.Diff(s.root, reloaded(t, path)))

	require.NoError(t, user.Update(map[string]any{"replies": []any{"hi"}}))
	require.Empty(t, cmp.Diff(s.root, reloaded(t, path)))

	require.NoError(t, user.Delete("ads"))
	require.Empty(t, cmp.Diff(s.root, reloaded(t, path)))

	require.NoError(t, root.Child("cache").Clear())
	require.Empty(t, cmp.Diff(s.root, reloaded(t, path)))
}

func TestNestedWriteThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := Open(path)
	require.NoError(t, err)

	deep := s.Root().Child("a").Child("b").Child("c")
	require.NoError(t, deep.Set("leaf", float64(1)))

	other, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, float64(1), other.Root().Child("a").Child("b").Child("c").Get("leaf"))
}

func TestReadAccessors(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)

	user := s.Root().Child("user_data")
	require.NoError(t, user.Set("ads", []any{"spam", float64(3), "ad"}))
	require.NoError(t, user.Set("nickname", "cat"))

	require.Equal(t, []string{"spam", "ad"}, user.StringSlice("ads"))
	require.Equal(t, "cat", user.GetString("nickname"))
	require.Equal(t, "", user.GetString("missing"))
	require.Nil(t, s.Root().Child("nope").Map())
}

func TestDecode(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)

	require.NoError(t, s.Root().Child("info").Update(map[string]any{
		"nickname":  "cat",
		"qq_number": float64(12345),
	}))

	var info struct {
		Nickname string `json:"nickname"`
		QQNumber int    `json:"qq_number"`
	}
	require.NoError(t, s.Root().Child("info").Decode(&info))
	require.Equal(t, "cat", info.Nickname)
	require.Equal(t, 12345, info.QQNumber)
}

func TestMaterializeThroughNonObject(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)

	require.NoError(t, s.Root().Set("scalar", "x"))
	err = s.Root().Child("scalar").Set("key", "value")
	require.Error(t, err)
}

func TestWriteFailurePropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := Open(path)
	require.NoError(t, err)

	// turn the backing path into a directory so the flush cannot succeed
	require.NoError(t, os.Mkdir(path, 0o755))

	err = s.Root().Set("a", "b")
	require.Error(t, err)
}
