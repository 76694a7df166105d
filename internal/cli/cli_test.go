package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlstash/sqlstash/internal/cache"
	"github.com/sqlstash/sqlstash/internal/table"
)

// runCommand executes the root command with args and returns its combined
// output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// seedEntry saves one entry into the store at dir and returns its
// fingerprint.
func seedEntry(t *testing.T, store *cache.FileStore, query string) string {
	t.Helper()
	tbl := table.New([]table.Column{
		{Name: "id", Type: table.TypeInt64},
		{Name: "label", Type: table.TypeString},
	})
	for i := int64(1); i <= 10; i++ {
		require.NoError(t, tbl.AppendRow(i, "row"))
	}
	fp := cache.Fingerprint(query)
	require.NoError(t, store.Save(fp, tbl, query))
	return fp
}

func newSeededStore(t *testing.T) (*cache.FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := cache.NewFileStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestListCommand(t *testing.T) {
	store, dir := newSeededStore(t)

	t.Run("empty store", func(t *testing.T) {
		out, err := runCommand(t, "list", "--cache-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "no cache entries")
	})

	fp := seedEntry(t, store, "SELECT id, label FROM things")

	t.Run("lists entries", func(t *testing.T) {
		out, err := runCommand(t, "list", "--cache-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, fp)
		assert.Contains(t, out, "SELECT id, label FROM things")
		assert.Contains(t, out, "10")
	})
}

func TestSchemaCommand(t *testing.T) {
	store, dir := newSeededStore(t)
	fp := seedEntry(t, store, "SELECT id, label FROM things")
	seedEntry(t, store, "SELECT id, label FROM other_things")

	t.Run("all entries", func(t *testing.T) {
		out, err := runCommand(t, "schema", "--cache-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "id")
		assert.Contains(t, out, "int64")
		assert.Contains(t, out, "label")
		assert.Contains(t, out, "string")
	})

	t.Run("single entry by prefix", func(t *testing.T) {
		out, err := runCommand(t, "schema", fp[:12], "--cache-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, fp)
		assert.NotContains(t, out, "other_things")
	})

	t.Run("sample limits output", func(t *testing.T) {
		out, err := runCommand(t, "schema", "--sample", "1", "--cache-dir", dir)
		require.NoError(t, err)
		// Two entries exist but only the newest is shown.
		assert.Equal(t, 1, bytes.Count([]byte(out), []byte("int64")))
	})

	t.Run("empty store", func(t *testing.T) {
		out, err := runCommand(t, "schema", "--cache-dir", t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, out, "no cache entries")
	})
}

func TestInspectCommand(t *testing.T) {
	store, dir := newSeededStore(t)
	fp := seedEntry(t, store, "SELECT id, label FROM things")

	t.Run("shows metadata and sample", func(t *testing.T) {
		out, err := runCommand(t, "inspect", fp, "--cache-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "SELECT id, label FROM things")
		assert.Contains(t, out, "Rows:       10")
		assert.Contains(t, out, "5 of 10 rows shown")
	})

	t.Run("rows flag bounds the sample", func(t *testing.T) {
		out, err := runCommand(t, "inspect", fp, "--rows", "2", "--cache-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "2 of 10 rows shown")
	})

	t.Run("unknown fingerprint", func(t *testing.T) {
		_, err := runCommand(t, "inspect", "deadbeef", "--cache-dir", dir)
		assert.Error(t, err)
	})
}

func TestClearCommand(t *testing.T) {
	t.Run("older-than removes only aged entries", func(t *testing.T) {
		store, dir := newSeededStore(t)
		seedEntry(t, store, "SELECT fresh")

		out, err := runCommand(t, "clear", "--older-than", "1h", "--cache-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "removed 0 cache entries")

		entries, err := store.List()
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("yes clears everything without prompting", func(t *testing.T) {
		store, dir := newSeededStore(t)
		seedEntry(t, store, "SELECT a")
		seedEntry(t, store, "SELECT b")

		out, err := runCommand(t, "clear", "--yes", "--cache-dir", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "removed 2 cache entries")

		entries, err := store.List()
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("empty store", func(t *testing.T) {
		out, err := runCommand(t, "clear", "--yes", "--cache-dir", t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, out, "no cache entries")
	})

	t.Run("non-interactive without yes refuses", func(t *testing.T) {
		store, dir := newSeededStore(t)
		seedEntry(t, store, "SELECT a")

		// Test stdin is never a terminal, so this exercises the guard.
		_, err := runCommand(t, "clear", "--cache-dir", dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--yes")

		entries, listErr := store.List()
		require.NoError(t, listErr)
		assert.Len(t, entries, 1, "nothing may be deleted on refusal")
	})
}

func TestConfirmClearAll(t *testing.T) {
	cases := []struct {
		input    string
		accepted bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"anything else\n", false},
		{"", false}, // EOF defaults to decline
	}
	for _, tc := range cases {
		var out bytes.Buffer
		res := confirmClearAll(&out, bytes.NewBufferString(tc.input), 3, "/tmp/cache")
		assert.Equal(t, tc.accepted, res.Accepted, "input %q", tc.input)
		assert.False(t, res.Cancelled)
		assert.Contains(t, out.String(), "ALL 3 cache entries")
	}
}

func TestResolveFingerprint(t *testing.T) {
	store, _ := newSeededStore(t)
	fp := seedEntry(t, store, "SELECT id, label FROM things")

	got, err := resolveFingerprint(store, fp)
	require.NoError(t, err)
	assert.Equal(t, fp, got)

	got, err = resolveFingerprint(store, fp[:8])
	require.NoError(t, err)
	assert.Equal(t, fp, got)

	_, err = resolveFingerprint(store, "ff")
	assert.Error(t, err, "prefixes shorter than 4 characters are rejected")

	_, err = resolveFingerprint(store, "0000")
	assert.Error(t, err)
}

func TestQueryCommandMissingCredentials(t *testing.T) {
	t.Setenv("SQLSTASH_USER", "")
	t.Setenv("SQLSTASH_TOKEN", "")

	_, err := runCommand(t, "query", "SELECT 1", "--cache-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SQLSTASH_USER")
}

func TestListSortsNewestFirst(t *testing.T) {
	store, dir := newSeededStore(t)
	old := seedEntry(t, store, "SELECT old")
	time.Sleep(10 * time.Millisecond)
	fresh := seedEntry(t, store, "SELECT fresh")

	out, err := runCommand(t, "list", "--cache-dir", dir)
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte(fresh)), bytes.Index([]byte(out), []byte(old)))
}
