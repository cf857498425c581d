package template

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Context maps template aliases to ViewModel FQNs. A template passes its
// effective context down to the files it includes.
type Context map[string]string

// Lookup returns the FQN bound to alias.
func (c Context) Lookup(alias string) (string, bool) {
	fqn, ok := c[alias]
	return fqn, ok
}

// fingerprint returns a stable textual form of the bindings.
func (c Context) fingerprint() string {
	if len(c) == 0 {
		return ""
	}
	aliases := make([]string, 0, len(c))
	for a := range c {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)

	var b strings.Builder
	for _, a := range aliases {
		b.WriteString(a)
		b.WriteByte('=')
		b.WriteString(c[a])
		b.WriteByte(';')
	}
	return b.String()
}

// visitKey identifies a traversal of path under an inherited context. The
// same file reached with a different context is a different traversal, so
// the outcome does not depend on which file was scanned first.
func visitKey(path string, inherited Context) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(path)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(inherited.fingerprint())
	return d.Sum64()
}
