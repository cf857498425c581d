package source

import (
	"sort"

	"github.com/panbanda/vmsweep/pkg/models"
)

// UnresolvedCommand is a command annotation argument whose constant could
// not be found. The method keeps the command names that did resolve.
type UnresolvedCommand struct {
	ViewModel string
	Method    string
	Ref       string
	File      string
}

// Duplicate is a ViewModel whose FQN was already registered by another file.
type Duplicate struct {
	FQN  string
	File string
	Kept string
}

// Index is the merged, resolved result of phase two.
type Index struct {
	Registry   *models.Registry
	Constants  *ConstantTable
	Imports    map[string]*models.ImportTable // by file path
	Unresolved []UnresolvedCommand
	Duplicates []Duplicate
}

// Build merges per-file indexes. Files are processed in path order so the
// outcome does not depend on the order parsing finished in.
func Build(files []*FileIndex) *Index {
	sorted := make([]*FileIndex, 0, len(files))
	for _, f := range files {
		if f != nil {
			sorted = append(sorted, f)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var all []Constant
	for _, f := range sorted {
		all = append(all, f.Constants...)
	}

	idx := &Index{
		Registry:  models.NewRegistry(),
		Constants: NewConstantTable(all),
		Imports:   make(map[string]*models.ImportTable, len(sorted)),
	}

	var registered []*ClassEntry
	var owners []*FileIndex
	for _, f := range sorted {
		idx.Imports[f.Path] = f.Imports
		for _, entry := range f.ViewModels {
			if !idx.Registry.Add(entry.ViewModel) {
				idx.Duplicates = append(idx.Duplicates, Duplicate{
					FQN:  entry.ViewModel.FQN,
					File: f.Path,
					Kept: idx.Registry.Get(entry.ViewModel.FQN).File,
				})
				continue
			}
			registered = append(registered, entry)
			owners = append(owners, f)
		}
	}

	// Parents and command names need the whole registry and constant table.
	for i, entry := range registered {
		imports := owners[i].Imports
		vm := entry.ViewModel
		if entry.ParentName != "" {
			vm.Parent = imports.ResolveType(entry.ParentName, idx.Registry.Has)
		}
		for _, m := range vm.Methods() {
			idx.resolveCommands(vm, m, imports)
			for _, o := range m.Overloads {
				idx.resolveCommands(vm, o, imports)
			}
		}
	}
	return idx
}

func (idx *Index) resolveCommands(vm *models.ViewModel, m *models.Method, imports *models.ImportTable) {
	m.CommandNames = m.CommandNames[:0]
	for _, a := range m.Annotations {
		if a.Kind != models.AnnotationCommand {
			continue
		}
		// A bare @Command binds by method name, which Matches already covers.
		for _, arg := range a.Args {
			if arg.IsLiteral {
				m.CommandNames = appendUnique(m.CommandNames, arg.Literal)
				continue
			}
			if v, ok := idx.Constants.Resolve(arg.Ref, imports, vm.FQN); ok {
				m.CommandNames = appendUnique(m.CommandNames, v)
				continue
			}
			idx.Unresolved = append(idx.Unresolved, UnresolvedCommand{
				ViewModel: vm.FQN,
				Method:    m.Name,
				Ref:       arg.Ref,
				File:      vm.File,
			})
		}
	}
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
