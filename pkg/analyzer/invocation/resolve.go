package invocation

import (
	"github.com/panbanda/vmsweep/pkg/models"
)

// SelfCall is a call a ViewModel makes on itself or an ancestor.
//
// Caller is the public method making the call. When the call is made from a
// non-public method, Caller is nil and Helper names that method; when both
// are empty the call happens in a constructor or initializer. Callee is nil
// for calls to non-public methods, which are tracked by CalleeName only.
type SelfCall struct {
	ViewModel  *models.ViewModel
	Caller     *models.Method
	Helper     string
	Owner      *models.ViewModel
	Callee     *models.Method
	CalleeName string
}

// Stats counts what Resolve attributed.
type Stats struct {
	Calls       int
	Creations   int
	SelfCalls   int
	HelperCalls int
}

// Resolve marks ViewModels and methods reached from Java call sites and
// returns the self-call edges for ApplySelfCalls. Sites whose type is not a
// known ViewModel are ignored.
func Resolve(reg *models.Registry, files []*FileSites) ([]SelfCall, Stats) {
	var edges []SelfCall
	var stats Stats

	for _, f := range files {
		if f == nil {
			continue
		}
		imports := f.Imports
		if imports == nil {
			imports = models.NewImportTable("")
		}
		for _, s := range f.Sites {
			switch s.Kind {
			case SiteCreate:
				if vm := reg.Get(imports.ResolveType(s.Type, reg.Has)); vm != nil {
					vm.UsedInJava = true
					stats.Creations++
				}
			case SiteCall:
				fqn := imports.ResolveType(s.Type, reg.Has)
				vm := reg.Get(fqn)
				if vm == nil {
					continue
				}
				vm.UsedInJava = true
				if _, m := reg.FindMethod(fqn, s.Method); m != nil {
					m.UsedInJava = true
					stats.Calls++
				}
			case SiteSelf:
				e, ok := selfCall(reg, s)
				if !ok {
					continue
				}
				edges = append(edges, e)
				if e.Callee != nil {
					stats.SelfCalls++
				} else {
					stats.HelperCalls++
				}
			}
		}
	}
	return edges, stats
}

func selfCall(reg *models.Registry, s Site) (SelfCall, bool) {
	vm := reg.Get(s.Type)
	if vm == nil {
		return SelfCall{}, false
	}

	var owner *models.ViewModel
	var callee *models.Method
	if s.Super {
		for _, anc := range reg.Ancestors(vm.FQN) {
			if m := anc.Method(s.Method); m != nil {
				owner, callee = anc, m
				break
			}
		}
	} else {
		owner, callee = reg.FindMethod(vm.FQN, s.Method)
	}
	if callee == nil && s.Super {
		return SelfCall{}, false
	}

	e := SelfCall{ViewModel: vm, Owner: owner, Callee: callee, CalleeName: s.Method}
	if s.Caller != "" {
		if e.Caller = vm.Method(s.Caller); e.Caller == nil {
			e.Helper = s.Caller
		}
	}
	return e, true
}

// ApplySelfCalls marks callees whose caller is live. A public caller is live
// when used. A non-public helper is live when a live caller reaches it. A
// call from a constructor or initializer counts when the ViewModel itself is
// otherwise used, so a class nothing refers to stays unused. It iterates to
// a fixpoint and reports whether any public method's flag changed.
func ApplySelfCalls(edges []SelfCall, keep models.AnnotationMatcher) bool {
	helpers := make(map[string]bool)
	changed := false
	for {
		round := false
		for _, e := range edges {
			if !e.live(helpers, keep) {
				continue
			}
			if e.Callee == nil {
				key := e.ViewModel.FQN + "#" + e.CalleeName
				if !helpers[key] {
					helpers[key] = true
					round = true
				}
				continue
			}
			if !e.Callee.UsedInJava {
				e.Callee.UsedInJava = true
				round = true
				changed = true
			}
		}
		if !round {
			return changed
		}
	}
}

func (e SelfCall) live(helpers map[string]bool, keep models.AnnotationMatcher) bool {
	switch {
	case e.Caller != nil:
		return e.Caller.IsUsed(keep)
	case e.Helper != "":
		return helpers[e.ViewModel.FQN+"#"+e.Helper]
	default:
		return e.ViewModel.IsUsed(keep)
	}
}
