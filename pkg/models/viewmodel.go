package models

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Method is a public method declared on a ViewModel.
type Method struct {
	Name           string       `json:"name"`
	Annotations    []Annotation `json:"annotations,omitempty"`
	Line           int          `json:"line"`
	BlockStartLine int          `json:"block_start_line"`
	CommandNames   []string     `json:"command_names,omitempty"`
	UsedInJava     bool         `json:"used_in_java"`
	UsedInTemplate bool         `json:"used_in_template"`

	// Overloads holds later declarations sharing this method's name.
	// Usage is tracked per name, so they share the flags above.
	Overloads []*Method `json:"overloads,omitempty"`
}

// NewMethod creates a method whose block starts at the first annotation.
func NewMethod(name string, line int, annotations []Annotation) *Method {
	m := &Method{
		Name:           name,
		Line:           line,
		BlockStartLine: line,
		Annotations:    annotations,
	}
	for _, a := range annotations {
		if a.Line > 0 && a.Line < m.BlockStartLine {
			m.BlockStartLine = a.Line
		}
	}
	return m
}

// CommandName returns the first resolved command name, or "" when the method
// declares none.
func (m *Method) CommandName() string {
	if len(m.CommandNames) == 0 {
		return ""
	}
	return m.CommandNames[0]
}

// AnnotationTexts returns the raw source text of each annotation.
func (m *Method) AnnotationTexts() []string {
	texts := make([]string, len(m.Annotations))
	for i, a := range m.Annotations {
		texts[i] = a.Raw
	}
	return texts
}

// IsUsed reports whether the method has call-site evidence or an annotation
// that keep matches.
func (m *Method) IsUsed(keep AnnotationMatcher) bool {
	if m.UsedInJava || m.UsedInTemplate {
		return true
	}
	if keep == nil {
		return false
	}
	for _, a := range m.Annotations {
		if keep.Matches(a) {
			return true
		}
	}
	for _, o := range m.Overloads {
		if o.IsUsed(keep) {
			return true
		}
	}
	return false
}

// Matches reports whether a template identifier refers to this method by
// exact name, command name of any overload or bean accessor convention.
func (m *Method) Matches(identifier string) bool {
	if identifier == "" {
		return false
	}
	if m.Name == identifier || m.hasCommand(identifier) {
		return true
	}
	for _, o := range m.Overloads {
		if o.hasCommand(identifier) {
			return true
		}
	}
	suffix := capitalize(identifier)
	return m.Name == "get"+suffix || m.Name == "set"+suffix || m.Name == "is"+suffix
}

func (m *Method) hasCommand(name string) bool {
	for _, cmd := range m.CommandNames {
		if cmd == name {
			return true
		}
	}
	return false
}

// MergeUsage ORs other's usage flags into m and reports whether m changed.
func (m *Method) MergeUsage(other *Method) bool {
	changed := false
	if other.UsedInJava && !m.UsedInJava {
		m.UsedInJava = true
		changed = true
	}
	if other.UsedInTemplate && !m.UsedInTemplate {
		m.UsedInTemplate = true
		changed = true
	}
	return changed
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ViewModel is a presentation-layer class and its public methods.
type ViewModel struct {
	Name           string `json:"name"`
	FQN            string `json:"fqn"`
	Package        string `json:"package"`
	File           string `json:"file"`
	Parent         string `json:"parent,omitempty"`
	UsedInJava     bool   `json:"used_in_java"`
	UsedInTemplate bool   `json:"used_in_template"`

	methods []*Method
	byName  map[string]*Method
}

// NewViewModel creates an empty ViewModel.
func NewViewModel(pkg, name, file, parent string) *ViewModel {
	fqn := name
	if pkg != "" {
		fqn = pkg + "." + name
	}
	return &ViewModel{
		Name:    name,
		FQN:     fqn,
		Package: pkg,
		File:    file,
		Parent:  parent,
		byName:  make(map[string]*Method),
	}
}

// AddMethod adds m in declaration order. A second declaration of the same
// name is recorded as an overload of the first.
func (v *ViewModel) AddMethod(m *Method) {
	if existing, ok := v.byName[m.Name]; ok {
		existing.Overloads = append(existing.Overloads, m)
		return
	}
	v.byName[m.Name] = m
	v.methods = append(v.methods, m)
}

// Method returns the method with the given name, or nil.
func (v *ViewModel) Method(name string) *Method {
	return v.byName[name]
}

// Methods returns the methods in declaration order.
func (v *ViewModel) Methods() []*Method {
	return v.methods
}

// IsUsed reports whether the class or any of its methods is used.
func (v *ViewModel) IsUsed(keep AnnotationMatcher) bool {
	if v.UsedInJava || v.UsedInTemplate {
		return true
	}
	for _, m := range v.methods {
		if m.IsUsed(keep) {
			return true
		}
	}
	return false
}

// Registry holds every ViewModel discovered in a project, keyed by FQN.
type Registry struct {
	byFQN map[string]*ViewModel
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byFQN: make(map[string]*ViewModel)}
}

// Add registers vm. A duplicate FQN keeps the first registration.
func (r *Registry) Add(vm *ViewModel) bool {
	if _, exists := r.byFQN[vm.FQN]; exists {
		return false
	}
	r.byFQN[vm.FQN] = vm
	return true
}

// Get returns the ViewModel with the given FQN, or nil.
func (r *Registry) Get(fqn string) *ViewModel {
	return r.byFQN[fqn]
}

// Has reports whether fqn is a known ViewModel.
func (r *Registry) Has(fqn string) bool {
	_, ok := r.byFQN[fqn]
	return ok
}

// Len returns the number of ViewModels.
func (r *Registry) Len() int {
	return len(r.byFQN)
}

// All returns every ViewModel sorted by FQN.
func (r *Registry) All() []*ViewModel {
	out := make([]*ViewModel, 0, len(r.byFQN))
	for _, vm := range r.byFQN {
		out = append(out, vm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FQN < out[j].FQN })
	return out
}

// InPackage returns the FQNs of ViewModels declared directly in pkg.
func (r *Registry) InPackage(pkg string) []string {
	var out []string
	for fqn, vm := range r.byFQN {
		if vm.Package == pkg {
			out = append(out, fqn)
		}
	}
	sort.Strings(out)
	return out
}

// Ancestors returns the known ancestors of fqn, nearest first. The walk stops
// at the first parent outside the registry and never revisits a class, so a
// malformed cyclic hierarchy terminates.
func (r *Registry) Ancestors(fqn string) []*ViewModel {
	vm := r.byFQN[fqn]
	if vm == nil {
		return nil
	}
	seen := map[string]bool{fqn: true}
	var chain []*ViewModel
	for parent := vm.Parent; parent != "" && !seen[parent]; {
		p := r.byFQN[parent]
		if p == nil {
			break
		}
		seen[parent] = true
		chain = append(chain, p)
		parent = p.Parent
	}
	return chain
}

// Lineage returns fqn's ViewModel followed by its known ancestors.
func (r *Registry) Lineage(fqn string) []*ViewModel {
	vm := r.byFQN[fqn]
	if vm == nil {
		return nil
	}
	return append([]*ViewModel{vm}, r.Ancestors(fqn)...)
}

// FindMethod returns the nearest declaration of name along fqn's lineage.
func (r *Registry) FindMethod(fqn, name string) (*ViewModel, *Method) {
	for _, vm := range r.Lineage(fqn) {
		if m := vm.Method(name); m != nil {
			return vm, m
		}
	}
	return nil, nil
}

// SimpleName returns the last dot-separated segment of a qualified name.
func SimpleName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
