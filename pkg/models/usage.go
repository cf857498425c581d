package models

import "sort"

// UsageIndex maps a ViewModel FQN to the identifiers templates reference on it.
// The FQN itself is stored as an existence marker for a binding.
type UsageIndex struct {
	refs map[string]map[string]struct{}
}

// NewUsageIndex creates an empty index.
func NewUsageIndex() *UsageIndex {
	return &UsageIndex{refs: make(map[string]map[string]struct{})}
}

// Add records identifier against fqn.
func (u *UsageIndex) Add(fqn, identifier string) {
	if fqn == "" || identifier == "" {
		return
	}
	set, ok := u.refs[fqn]
	if !ok {
		set = make(map[string]struct{})
		u.refs[fqn] = set
	}
	set[identifier] = struct{}{}
}

// MarkBound records that fqn is bound by some template.
func (u *UsageIndex) MarkBound(fqn string) {
	u.Add(fqn, fqn)
}

// Has reports whether identifier was recorded against fqn.
func (u *UsageIndex) Has(fqn, identifier string) bool {
	_, ok := u.refs[fqn][identifier]
	return ok
}

// Identifiers returns the identifiers recorded for fqn, sorted.
func (u *UsageIndex) Identifiers(fqn string) []string {
	set := u.refs[fqn]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// FQNs returns every referenced FQN, sorted.
func (u *UsageIndex) FQNs() []string {
	out := make([]string, 0, len(u.refs))
	for fqn := range u.refs {
		out = append(out, fqn)
	}
	sort.Strings(out)
	return out
}

// Len returns the total number of (fqn, identifier) pairs.
func (u *UsageIndex) Len() int {
	n := 0
	for _, set := range u.refs {
		n += len(set)
	}
	return n
}

// Merge adds every pair of other into u.
func (u *UsageIndex) Merge(other *UsageIndex) {
	if other == nil {
		return
	}
	for fqn, set := range other.refs {
		for id := range set {
			u.Add(fqn, id)
		}
	}
}
