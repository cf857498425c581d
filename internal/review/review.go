// Package review runs the interactive approval loop over unused methods.
package review

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/panbanda/vmsweep/internal/cache"
	"github.com/panbanda/vmsweep/pkg/models"
)

// ErrCancelled is returned when the operator quits or input ends.
var ErrCancelled = errors.New("review cancelled")

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	methodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Store is the decision store a session reads and writes.
type Store interface {
	Get(key string) (cache.Decision, bool)
	Put(key string, d cache.Decision) error
}

// Result is the outcome of a session.
type Result struct {
	Approved  []models.DeadMethod
	Rejected  int
	FromCache int
}

// Session asks one question per candidate and records each answer in the
// store as soon as it is given.
type Session struct {
	in    *bufio.Reader
	out   io.Writer
	store Store
	onErr func(key string, err error)
}

// Option is a functional option for configuring Session.
type Option func(*Session)

// WithStoreErrorHandler is called when a decision cannot be stored. The
// session continues with the in-memory answer.
func WithStoreErrorHandler(fn func(key string, err error)) Option {
	return func(s *Session) {
		s.onErr = fn
	}
}

// NewSession creates a session reading answers from in and writing prompts
// to out.
func NewSession(in io.Reader, out io.Writer, store Store, opts ...Option) *Session {
	s := &Session{
		in:    bufio.NewReader(in),
		out:   out,
		store: store,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Review walks candidates in order. Cached decisions are applied without a
// prompt. On ErrCancelled the result still holds every approval made before
// the operator quit, and the stored decisions are kept.
func (s *Session) Review(candidates []models.DeadMethod) (*Result, error) {
	res := &Result{}
	for i, m := range candidates {
		key := m.Key()
		if d, ok := s.store.Get(key); ok {
			res.FromCache++
			s.apply(res, m, d)
			continue
		}

		d, err := s.ask(m, i+1, len(candidates))
		if err != nil {
			return res, err
		}
		if err := s.store.Put(key, d); err != nil && s.onErr != nil {
			s.onErr(key, err)
		}
		s.apply(res, m, d)
	}
	return res, nil
}

func (s *Session) apply(res *Result, m models.DeadMethod, d cache.Decision) {
	if d == cache.Approve {
		res.Approved = append(res.Approved, m)
		return
	}
	res.Rejected++
}

func (s *Session) ask(m models.DeadMethod, n, total int) (cache.Decision, error) {
	fmt.Fprintf(s.out, "\n%s %s\n",
		headerStyle.Render(fmt.Sprintf("[%d/%d]", n, total)),
		methodStyle.Render(m.Key()))
	fmt.Fprintln(s.out, hintStyle.Render(fmt.Sprintf("  %s:%d", m.File, m.Line)))
	for _, a := range m.Annotations {
		fmt.Fprintln(s.out, hintStyle.Render("  "+a))
	}

	for {
		fmt.Fprint(s.out, "Remove this method? "+hintStyle.Render("[y/N/q]")+": ")
		line, err := s.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if err != nil && answer == "" {
			if errors.Is(err, io.EOF) {
				return "", ErrCancelled
			}
			return "", fmt.Errorf("read answer: %w", err)
		}

		switch answer {
		case "y", "yes":
			return cache.Approve, nil
		case "", "n", "no":
			return cache.Reject, nil
		case "q", "quit":
			return "", ErrCancelled
		}
		fmt.Fprintln(s.out, hintStyle.Render("  please answer y, n or q"))
	}
}
