// Package cache persists interactive review decisions per project.
package cache

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zeebo/blake3"
)

// Decision is an operator's answer for one method.
type Decision string

const (
	Approve Decision = "y"
	Reject  Decision = "n"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == Approve || d == Reject
}

// Entry is one line of the decision log.
type Entry struct {
	Key       string    `json:"key"`
	Decision  Decision  `json:"decision"`
	Timestamp time.Time `json:"timestamp"`
}

// Store maps "<fqdn>#<method>" keys to decisions. Decisions are appended to
// the log as they are made, so an interrupted session keeps every answer
// given so far. Later lines override earlier ones.
type Store struct {
	path      string
	enabled   bool
	decisions map[string]Decision
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// FileName returns the log file name for a project root.
func FileName(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	return "decisions-" + HashBytes([]byte(abs))[:16] + ".jsonl"
}

// Open loads the decision log for projectRoot from dir. A disabled store
// keeps decisions in memory only.
func Open(dir, projectRoot string, enabled bool) (*Store, error) {
	s := &Store{
		enabled:   enabled,
		decisions: make(map[string]Decision),
	}
	if !enabled {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	s.path = filepath.Join(dir, FileName(projectRoot))

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open decision cache: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		// A torn or foreign line is skipped.
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil || e.Key == "" || !e.Decision.Valid() {
			continue
		}
		s.decisions[e.Key] = e.Decision
	}
	return sc.Err()
}

// Path returns the log file path, or "" for a disabled store.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of cached decisions.
func (s *Store) Len() int {
	return len(s.decisions)
}

// Get returns the cached decision for key.
func (s *Store) Get(key string) (Decision, bool) {
	d, ok := s.decisions[key]
	return d, ok
}

// Put records a decision and appends it to the log. The in-memory decision
// stands even when the append fails.
func (s *Store) Put(key string, d Decision) error {
	if !d.Valid() {
		return fmt.Errorf("invalid decision %q", d)
	}
	s.decisions[key] = d
	if !s.enabled {
		return nil
	}

	line, err := json.Marshal(Entry{Key: key, Decision: d, Timestamp: time.Now()})
	if err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("append decision: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append decision: %w", err)
	}
	return f.Close()
}

// Persist rewrites the log with one line per key.
func (s *Store) Persist() error {
	if !s.enabled {
		return nil
	}
	keys := make([]string, 0, len(s.decisions))
	for k := range s.decisions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("persist decisions: %w", err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	now := time.Now()
	for _, k := range keys {
		if err := enc.Encode(Entry{Key: k, Decision: s.decisions[k], Timestamp: now}); err != nil {
			f.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.path)
}

// Reset forgets every decision and deletes the log.
func (s *Store) Reset() error {
	s.decisions = make(map[string]Decision)
	if !s.enabled {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reset decision cache: %w", err)
	}
	return nil
}
