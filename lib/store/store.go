// Package store is a write-through JSON document store. The whole
// document lives in memory; every mutation rewrites the backing file
// before returning, so the file is never behind the process by more
// than the mutation currently in flight.
//
// A Store is not safe for concurrent use. It is meant to be owned by
// the top-level command that constructed it and passed down explicitly.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Store holds the root document and its backing file.
type Store struct {
	path string
	root map[string]any
}

// Open loads the JSON document at path. A missing or empty file yields
// an empty document rather than an error; malformed JSON is an error.
func Open(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	root := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		err = json.Unmarshal(raw, &root)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	return &Store{path: path, root: root}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Root returns a handle on the document root.
func (s *Store) Root() Node {
	return Node{store: s}
}

// flush rewrites the entire root document. Mutations are not complete
// until this succeeds; on failure the in-memory and on-disk documents
// may disagree and the error is propagated to the mutating caller.
func (s *Store) flush() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	err := enc.Encode(s.root)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, buf.Bytes(), 0o644)
}

// Node addresses a subtree of the root document by key path. It carries
// no data of its own: reads resolve against the current document and
// mutations re-serialize the full root, so nested handles never detach
// from the file they sync to.
type Node struct {
	store *Store
	path  []string
}

// Child returns a handle one level deeper. The subtree does not need to
// exist yet; it is created on the first mutation through the handle.
func (n Node) Child(key string) Node {
	path := make([]string, len(n.path)+1)
	copy(path, n.path)
	path[len(n.path)] = key
	return Node{store: n.store, path: path}
}

// resolve walks the document to this node's subtree. Missing or
// non-object segments yield nil.
func (n Node) resolve() map[string]any {
	current := n.store.root
	for _, key := range n.path {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

// materialize walks the document to this node's subtree, creating
// intermediate objects as needed. A non-object intermediate is an
// error rather than a silent overwrite.
func (n Node) materialize() (map[string]any, error) {
	current := n.store.root
	for i, key := range n.path {
		child, exists := current[key]
		if !exists {
			next := map[string]any{}
			current[key] = next
			current = next
			continue
		}
		next, ok := child.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("store: %q is not an object", n.path[:i+1])
		}
		current = next
	}
	return current, nil
}

// Get reads a single value under this node. Missing keys yield nil.
func (n Node) Get(key string) any {
	m := n.resolve()
	if m == nil {
		return nil
	}
	return m[key]
}

// GetString reads a string value, returning "" for anything else.
func (n Node) GetString(key string) string {
	value, _ := n.Get(key).(string)
	return value
}

// StringSlice reads a list of strings. Non-string elements are skipped.
func (n Node) StringSlice(key string) []string {
	raw, _ := n.Get(key).([]any)
	if raw == nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if ok {
			out = append(out, s)
		}
	}
	return out
}

// Map returns the subtree as a plain map, or nil when absent. The map
// is the live document; callers must mutate through Set/Update/Delete,
// not through the returned map.
func (n Node) Map() map[string]any {
	return n.resolve()
}

// Decode unmarshals the subtree into a struct.
func (n Node) Decode(out any) error {
	m := n.resolve()
	if m == nil {
		return errors.New("store: subtree does not exist")
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Set writes one key under this node and flushes the root document.
func (n Node) Set(key string, value any) error {
	m, err := n.materialize()
	if err != nil {
		return err
	}
	m[key] = value
	return n.store.flush()
}

// Delete removes one key under this node and flushes the root document.
// Deleting a key that does not exist is a no-op flush.
func (n Node) Delete(key string) error {
	m, err := n.materialize()
	if err != nil {
		return err
	}
	delete(m, key)
	return n.store.flush()
}

// Update merges the given values into this node and flushes the root
// document once.
func (n Node) Update(values map[string]any) error {
	m, err := n.materialize()
	if err != nil {
		return err
	}
	for key, value := range values {
		m[key] = value
	}
	return n.store.flush()
}

// Clear removes every key under this node and flushes the root document.
func (n Node) Clear() error {
	m, err := n.materialize()
	if err != nil {
		return err
	}
	for key := range m {
		delete(m, key)
	}
	return n.store.flush()
}
