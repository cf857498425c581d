// Package inherit merges template usage into the ViewModel model and
// reconciles usage flags along inheritance chains.
package inherit

import (
	"github.com/panbanda/vmsweep/pkg/models"
)

// Attribute applies template usage to the registry. A bound ViewModel is
// marked used in templates. Each identifier marks every method of the bound
// class it matches; if none matches, the search climbs to the parent while
// the parent is a known ViewModel, stopping at the first class with a match.
// It returns the number of identifiers that matched no method.
func Attribute(reg *models.Registry, usage *models.UsageIndex) int {
	unmatched := 0
	for _, fqn := range usage.FQNs() {
		vm := reg.Get(fqn)
		if vm == nil {
			continue
		}
		vm.UsedInTemplate = true

		for _, id := range usage.Identifiers(fqn) {
			if id == fqn {
				continue
			}
			if !climb(reg, fqn, id) {
				unmatched++
			}
		}
	}
	return unmatched
}

func climb(reg *models.Registry, fqn, id string) bool {
	for _, vm := range reg.Lineage(fqn) {
		found := false
		for _, m := range vm.Methods() {
			if m.Matches(id) {
				m.UsedInTemplate = true
				found = true
			}
		}
		if found {
			return true
		}
	}
	return false
}

// Reconcile ORs usage flags between same-named methods along every known
// inheritance chain. The upward pass makes an ancestor's method used when an
// override is used, since bindings dispatch to the most-derived override.
// The downward pass makes an override used when the method it overrides is
// used, since a binding to the ancestor may run on a subclass instance.
// Reconcile is idempotent and reports whether any flag changed.
func Reconcile(reg *models.Registry) bool {
	changed := false
	all := reg.All()

	for _, vm := range all {
		for _, anc := range reg.Ancestors(vm.FQN) {
			for _, m := range vm.Methods() {
				if am := anc.Method(m.Name); am != nil && am.MergeUsage(m) {
					changed = true
				}
			}
		}
	}

	// Downward: nearest ancestor first, so a flag that reached an ancestor
	// in the upward pass flows into every descendant's override.
	for _, vm := range all {
		for _, anc := range reg.Ancestors(vm.FQN) {
			for _, m := range vm.Methods() {
				if am := anc.Method(m.Name); am != nil && m.MergeUsage(am) {
					changed = true
				}
			}
		}
	}
	return changed
}
