package review

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/vmsweep/internal/cache"
	"github.com/panbanda/vmsweep/pkg/models"
)

func candidates(names ...string) []models.DeadMethod {
	out := make([]models.DeadMethod, len(names))
	for i, n := range names {
		out[i] = models.DeadMethod{ViewModel: "com.a.UserViewModel", Name: n, File: "User.java", Line: i + 1}
	}
	return out
}

func names(ms []models.DeadMethod) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

func memStore(t *testing.T) *cache.Store {
	t.Helper()
	s, err := cache.Open("", "/proj", false)
	require.NoError(t, err)
	return s
}

func TestReview_Answers(t *testing.T) {
	store := memStore(t)
	var out bytes.Buffer
	s := NewSession(strings.NewReader("y\nn\n\nYES\n"), &out, store)

	res, err := s.Review(candidates("a", "b", "c", "d"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, names(res.Approved))
	assert.Equal(t, 2, res.Rejected)
	assert.Zero(t, res.FromCache)

	d, ok := store.Get("com.a.UserViewModel#c")
	assert.True(t, ok)
	assert.Equal(t, cache.Reject, d)
	assert.Contains(t, out.String(), "com.a.UserViewModel#a")
	assert.Contains(t, out.String(), "[1/4]")
}

func TestReview_RepromptsOnInvalidAnswer(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(strings.NewReader("maybe\ny\n"), &out, memStore(t))

	res, err := s.Review(candidates("a"))
	require.NoError(t, err)
	assert.Len(t, res.Approved, 1)
	assert.Contains(t, out.String(), "please answer y, n or q")
}

func TestReview_UsesCachedDecisions(t *testing.T) {
	store := memStore(t)
	require.NoError(t, store.Put("com.a.UserViewModel#a", cache.Approve))
	require.NoError(t, store.Put("com.a.UserViewModel#b", cache.Reject))

	var out bytes.Buffer
	s := NewSession(strings.NewReader("y\n"), &out, store)
	res, err := s.Review(candidates("a", "b", "c"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, names(res.Approved))
	assert.Equal(t, 2, res.FromCache)
	assert.NotContains(t, out.String(), "UserViewModel#a")
	assert.Contains(t, out.String(), "UserViewModel#c")
}

func TestReview_QuitKeepsDecisions(t *testing.T) {
	dir := t.TempDir()
	store, err := cache.Open(dir, "/proj", true)
	require.NoError(t, err)

	s := NewSession(strings.NewReader("y\nq\n"), &bytes.Buffer{}, store)
	res, err := s.Review(candidates("a", "b", "c"))
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, []string{"a"}, names(res.Approved))

	reopened, err := cache.Open(dir, "/proj", true)
	require.NoError(t, err)
	d, ok := reopened.Get("com.a.UserViewModel#a")
	assert.True(t, ok)
	assert.Equal(t, cache.Approve, d)
	_, ok = reopened.Get("com.a.UserViewModel#b")
	assert.False(t, ok)
	assert.Equal(t, filepath.Join(dir, cache.FileName("/proj")), reopened.Path())
}

func TestReview_EOFCancels(t *testing.T) {
	s := NewSession(strings.NewReader("n\n"), &bytes.Buffer{}, memStore(t))
	res, err := s.Review(candidates("a", "b"))
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 1, res.Rejected)
}

func TestReview_FinalLineWithoutNewline(t *testing.T) {
	s := NewSession(strings.NewReader("y"), &bytes.Buffer{}, memStore(t))
	res, err := s.Review(candidates("a"))
	require.NoError(t, err)
	assert.Len(t, res.Approved, 1)
}

type failingStore struct{ *cache.Store }

func (failingStore) Put(string, cache.Decision) error { return errors.New("disk full") }

func TestReview_StoreFailureContinues(t *testing.T) {
	var failed []string
	s := NewSession(strings.NewReader("y\ny\n"), &bytes.Buffer{}, failingStore{memStore(t)},
		WithStoreErrorHandler(func(key string, err error) { failed = append(failed, key) }))

	res, err := s.Review(candidates("a", "b"))
	require.NoError(t, err)
	assert.Len(t, res.Approved, 2)
	assert.Equal(t, []string{"com.a.UserViewModel#a", "com.a.UserViewModel#b"}, failed)
}
