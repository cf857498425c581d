// Package template scans ZUL templates for ViewModel bindings and the
// identifiers they reference, following includes with the alias context in
// effect at the point of inclusion.
package template

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/beevik/etree"
	"github.com/panbanda/vmsweep/pkg/models"
	"github.com/panbanda/vmsweep/pkg/scanner"
)

// ErrIncludeNotFound is reported when a static include target does not exist.
var ErrIncludeNotFound = errors.New("include target not found")

// ErrNoPartialMatch is reported when a dynamic include matches no template.
var ErrNoPartialMatch = errors.New("dynamic include matched no template")

// ErrorFunc receives soft failures: unparsable templates and unresolvable
// includes. Scanning always continues.
type ErrorFunc func(path string, err error)

// Stats summarizes a scan.
type Stats struct {
	FilesScanned   int
	ParseErrors    int
	Traversals     int
	Includes       int
	DynamicMatches int
}

// Scanner builds a UsageIndex from template roots.
type Scanner struct {
	roots         []scanner.TemplateRoot
	partialMatch  bool
	fallbackAlias string
	onError       ErrorFunc
	onFile        func()

	rootOf  map[string]string
	files   []string
	docs    map[string]*document
	visited *roaring64.Bitmap
	usage   *models.UsageIndex
	stats   Stats
}

// Option is a functional option for configuring Scanner.
type Option func(*Scanner)

// WithPartialMatch enables or disables the dynamic-include heuristic.
func WithPartialMatch(enabled bool) Option {
	return func(s *Scanner) {
		s.partialMatch = enabled
	}
}

// WithFallbackAlias sets the alias commands fall back to when no enclosing
// binding claims them. An empty alias disables the fallback.
func WithFallbackAlias(alias string) Option {
	return func(s *Scanner) {
		s.fallbackAlias = alias
	}
}

// WithErrorHandler sets the callback for soft failures.
func WithErrorHandler(fn ErrorFunc) Option {
	return func(s *Scanner) {
		s.onError = fn
	}
}

// WithProgress sets a callback invoked after each top-level file.
func WithProgress(fn func()) Option {
	return func(s *Scanner) {
		s.onFile = fn
	}
}

// New creates a scanner over the given template roots.
func New(roots []scanner.TemplateRoot, opts ...Option) *Scanner {
	s := &Scanner{
		roots:         roots,
		partialMatch:  true,
		fallbackAlias: "vm",
		rootOf:        make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, r := range roots {
		for _, f := range r.Files {
			f = filepath.Clean(f)
			s.rootOf[f] = r.Dir
			s.files = append(s.files, f)
		}
	}
	sort.Strings(s.files)
	return s
}

// Scan visits every template as a top-level file with an empty context and
// returns the complete usage index.
func (s *Scanner) Scan(ctx context.Context) (*models.UsageIndex, error) {
	s.usage = models.NewUsageIndex()
	s.visited = roaring64.New()
	s.docs = make(map[string]*document)
	s.stats = Stats{}

	for _, path := range s.files {
		if err := ctx.Err(); err != nil {
			return s.usage, err
		}
		s.scanFile(path, s.rootOf[path], nil)
		if s.onFile != nil {
			s.onFile()
		}
	}
	return s.usage, nil
}

// Files returns the number of templates Scan visits at top level.
func (s *Scanner) Files() int {
	return len(s.files)
}

// Stats returns the statistics of the last Scan.
func (s *Scanner) Stats() Stats {
	return s.stats
}

// document is a parsed template with its bindings extracted once.
type document struct {
	root     *etree.Element
	elements []*etree.Element // document order
	local    Context
	err      error
}

func (s *Scanner) load(path string) *document {
	if d, ok := s.docs[path]; ok {
		return d
	}
	d := &document{}
	s.docs[path] = d

	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromFile(path); err != nil {
		d.err = err
		s.stats.ParseErrors++
		s.report(path, fmt.Errorf("parse template: %w", err))
		return d
	}
	d.root = doc.Root()
	if d.root == nil {
		d.err = errors.New("empty document")
		s.stats.ParseErrors++
		s.report(path, d.err)
		return d
	}
	s.stats.FilesScanned++

	d.local = Context{}
	collect(d.root, &d.elements)
	for _, el := range d.elements {
		if alias, fqn, ok := binding(el.SelectAttrValue("viewModel", "")); ok {
			d.local[alias] = fqn
		}
	}
	return d
}

func collect(el *etree.Element, out *[]*etree.Element) {
	*out = append(*out, el)
	for _, child := range el.ChildElements() {
		collect(child, out)
	}
}

// scanFile records the usages of one template under an inherited context
// and recurses into its includes.
func (s *Scanner) scanFile(path, root string, inherited Context) {
	key := visitKey(path, inherited)
	if !s.visited.CheckedAdd(key) {
		return
	}

	d := s.load(path)
	if d.err != nil {
		return
	}
	s.stats.Traversals++

	for _, fqn := range d.local {
		s.usage.MarkBound(fqn)
	}

	effective := inherited
	if len(d.local) > 0 {
		effective = d.local
	}

	for _, el := range d.elements {
		for _, attr := range el.Attr {
			for _, cmd := range commands(attr.Value) {
				s.attributeCommand(el, cmd, effective)
			}
			s.recordMembers(attr.Value, effective)
		}
		s.recordMembers(text(el), effective)
	}

	for _, el := range d.elements {
		if el.Tag != "include" {
			continue
		}
		src := strings.TrimSpace(el.SelectAttrValue("src", ""))
		if src == "" {
			continue
		}
		s.include(path, root, src, effective)
	}
}

// attributeCommand records cmd against the nearest enclosing binding known
// to the context, falling back to the conventional alias.
func (s *Scanner) attributeCommand(el *etree.Element, cmd string, ctx Context) {
	// The document node has no parent and carries no attributes.
	for cur := el; cur != nil && cur.Parent() != nil; cur = cur.Parent() {
		alias, ok := bindingAlias(cur.SelectAttrValue("viewModel", ""))
		if !ok {
			continue
		}
		if fqn, ok := ctx.Lookup(alias); ok {
			s.usage.Add(fqn, cmd)
			return
		}
	}
	if s.fallbackAlias == "" {
		return
	}
	if fqn, ok := ctx.Lookup(s.fallbackAlias); ok {
		s.usage.Add(fqn, cmd)
	}
}

func (s *Scanner) recordMembers(value string, ctx Context) {
	if len(ctx) == 0 || value == "" {
		return
	}
	for _, ref := range members(value) {
		if fqn, ok := ctx.Lookup(ref.alias); ok {
			s.usage.Add(fqn, ref.member)
		}
	}
}

// text concatenates the character data directly inside el, which covers
// zscript bodies and CDATA sections.
func text(el *etree.Element) string {
	var b strings.Builder
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return b.String()
}

func (s *Scanner) include(from, root, src string, ctx Context) {
	if isDynamic(src) {
		if !s.partialMatch {
			return
		}
		suffix := filepath.ToSlash(staticSuffix(src))
		matches := s.matchSuffix(suffix)
		if len(matches) == 0 {
			s.report(from, fmt.Errorf("%w: %s", ErrNoPartialMatch, src))
			return
		}
		for _, m := range matches {
			s.stats.DynamicMatches++
			s.scanFile(m, s.rootOf[m], ctx)
		}
		return
	}

	target := s.resolve(from, root, stripQuery(src))
	if _, err := os.Stat(target); err != nil {
		s.report(from, fmt.Errorf("%w: %s", ErrIncludeNotFound, src))
		return
	}
	s.stats.Includes++
	targetRoot := root
	if r, ok := s.rootOf[target]; ok {
		targetRoot = r
	}
	s.scanFile(target, targetRoot, ctx)
}

// resolve maps an include source to a file path: absolute sources against
// the template root, relative ones against the including file's directory.
func (s *Scanner) resolve(from, root, src string) string {
	src = filepath.FromSlash(src)
	if strings.HasPrefix(src, string(filepath.Separator)) {
		if root == "" {
			root = filepath.Dir(from)
		}
		return filepath.Clean(filepath.Join(root, src))
	}
	return filepath.Clean(filepath.Join(filepath.Dir(from), src))
}

// matchSuffix returns every known template whose slash path ends with
// suffix. An empty suffix matches nothing.
func (s *Scanner) matchSuffix(suffix string) []string {
	if suffix == "" || suffix == "/" {
		return nil
	}
	var out []string
	for _, f := range s.files {
		if strings.HasSuffix(filepath.ToSlash(f), suffix) {
			out = append(out, f)
		}
	}
	return out
}

func (s *Scanner) report(path string, err error) {
	if s.onError != nil {
		s.onError(path, err)
	}
}
