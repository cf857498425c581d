package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")

	s, err := Open(dir, "/proj", true)
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName("/proj")), s.Path())
	assert.Zero(t, s.Len())
}

func TestPutAndReload(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, "/proj", true)
	require.NoError(t, err)
	require.NoError(t, s.Put("com.a.UserViewModel#save", Approve))
	require.NoError(t, s.Put("com.a.UserViewModel#load", Reject))
	require.NoError(t, s.Put("com.a.UserViewModel#save", Reject))

	d, ok := s.Get("com.a.UserViewModel#save")
	assert.True(t, ok)
	assert.Equal(t, Reject, d)

	reopened, err := Open(dir, "/proj", true)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())

	d, ok = reopened.Get("com.a.UserViewModel#save")
	assert.True(t, ok)
	assert.Equal(t, Reject, d, "later lines override earlier ones")

	_, ok = reopened.Get("com.a.UserViewModel#missing")
	assert.False(t, ok)
}

func TestPut_RejectsUnknownDecision(t *testing.T) {
	s, err := Open(t.TempDir(), "/proj", true)
	require.NoError(t, err)
	assert.Error(t, s.Put("k", Decision("maybe")))
	assert.Zero(t, s.Len())
}

func TestProjectsAreSeparate(t *testing.T) {
	dir := t.TempDir()

	a, err := Open(dir, "/proj/a", true)
	require.NoError(t, err)
	require.NoError(t, a.Put("k", Approve))

	b, err := Open(dir, "/proj/b", true)
	require.NoError(t, err)
	_, ok := b.Get("k")
	assert.False(t, ok)
	assert.NotEqual(t, a.Path(), b.Path())
}

func TestLoad_SkipsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName("/proj"))
	content := strings.Join([]string{
		`{"key":"a#x","decision":"y"}`,
		`{"key":"a#y","decis`,
		`not json`,
		`{"key":"a#z","decision":"q"}`,
		`{"key":"a#w","decision":"n"}`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	s, err := Open(dir, "/proj", true)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	d, _ := s.Get("a#w")
	assert.Equal(t, Reject, d)
}

func TestPersistCompacts(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "/proj", true)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Put("k", Approve))
	}
	require.NoError(t, s.Put("j", Reject))
	require.NoError(t, s.Persist())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"key":"j"`)
	assert.Contains(t, lines[1], `"key":"k"`)

	_, err = os.Stat(s.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, "/proj", true)
	require.NoError(t, err)
	require.NoError(t, s.Put("k", Approve))

	require.NoError(t, s.Reset())
	assert.Zero(t, s.Len())
	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))

	// Resetting an absent log is fine.
	assert.NoError(t, s.Reset())
}

func TestDisabledStore(t *testing.T) {
	s, err := Open("", "/proj", false)
	require.NoError(t, err)
	assert.Empty(t, s.Path())

	require.NoError(t, s.Put("k", Approve))
	d, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, Approve, d)
	assert.NoError(t, s.Persist())
	assert.NoError(t, s.Reset())
}

func TestHashBytes(t *testing.T) {
	h := HashBytes([]byte("x"))
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashBytes([]byte("x")))
	assert.NotEqual(t, h, HashBytes([]byte("y")))
}
