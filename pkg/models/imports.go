package models

import "strings"

// ImportTable is the per-file name resolution context: package plus imports.
type ImportTable struct {
	Package         string
	Explicit        map[string]string // simple name -> FQN
	Wildcards       []string          // "com.x" for import com.x.*
	Static          map[string]string // member name -> "com.x.C.MEMBER"
	StaticWildcards []string          // "com.x.C" for import static com.x.C.*
}

// NewImportTable creates an empty table for pkg.
func NewImportTable(pkg string) *ImportTable {
	return &ImportTable{
		Package:  pkg,
		Explicit: make(map[string]string),
		Static:   make(map[string]string),
	}
}

// AddImport records one import declaration. path excludes the trailing ".*".
func (t *ImportTable) AddImport(path string, static, wildcard bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	switch {
	case static && wildcard:
		t.StaticWildcards = append(t.StaticWildcards, path)
	case static:
		t.Static[SimpleName(path)] = path
	case wildcard:
		t.Wildcards = append(t.Wildcards, path)
	default:
		t.Explicit[SimpleName(path)] = path
	}
}

// Qualify prefixes name with the file's package.
func (t *ImportTable) Qualify(name string) string {
	if t.Package == "" {
		return name
	}
	return t.Package + "." + name
}

// ResolveType resolves a type name as written in source to an FQN.
// known reports whether a candidate FQN exists in the project; it only
// arbitrates wildcard imports and dotted names. Unimported simple names
// are assumed to live in the same package.
func (t *ImportTable) ResolveType(name string, known func(string) bool) string {
	name = BaseTypeName(name)
	if name == "" {
		return ""
	}
	if known == nil {
		known = func(string) bool { return false }
	}

	if head, rest, dotted := strings.Cut(name, "."); dotted {
		if fqn, ok := t.Explicit[head]; ok {
			return fqn + "." + rest
		}
		if local := t.Qualify(name); known(local) {
			return local
		}
		for _, w := range t.Wildcards {
			if cand := w + "." + name; known(cand) {
				return cand
			}
		}
		return name
	}

	if fqn, ok := t.Explicit[name]; ok {
		return fqn
	}
	if local := t.Qualify(name); known(local) {
		return local
	}
	for _, w := range t.Wildcards {
		if cand := w + "." + name; known(cand) {
			return cand
		}
	}
	return t.Qualify(name)
}

// BaseTypeName strips generic arguments, array brackets and annotations
// from a type as written in source.
func BaseTypeName(name string) string {
	if i := strings.Index(name, "<"); i >= 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, "[]", "")
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	// Type annotations precede the name: "@NonNull Foo".
	return fields[len(fields)-1]
}
