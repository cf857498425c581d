package source

import (
	"sort"
	"strings"

	"github.com/panbanda/vmsweep/pkg/models"
)

// Constant is a string constant declared by a class.
type Constant struct {
	Class string // FQN of the declaring class
	Field string
	Value string
}

// Key returns the "package.Class.FIELD" lookup key.
func (c Constant) Key() string {
	return c.Class + "." + c.Field
}

// ConstantTable maps fully-qualified constant names to literal values. It is
// filled completely before any lookup and is read-only afterwards.
type ConstantTable struct {
	values  map[string]string
	classes map[string]bool
}

// NewConstantTable builds a table from every collected constant.
func NewConstantTable(constants []Constant) *ConstantTable {
	t := &ConstantTable{
		values:  make(map[string]string, len(constants)),
		classes: make(map[string]bool),
	}
	for _, c := range constants {
		t.values[c.Key()] = c.Value
		t.classes[c.Class] = true
	}
	return t
}

// Lookup returns the value stored under key.
func (t *ConstantTable) Lookup(key string) (string, bool) {
	v, ok := t.values[key]
	return v, ok
}

// HasClass reports whether fqn declares at least one constant.
func (t *ConstantTable) HasClass(fqn string) bool {
	return t.classes[fqn]
}

// Len returns the number of constants.
func (t *ConstantTable) Len() int {
	return len(t.values)
}

// Keys returns every constant key, sorted.
func (t *ConstantTable) Keys() []string {
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve resolves a constant reference as written in an annotation argument.
// owner is the FQN of the class declaring the annotated method. A reference
// that cannot be resolved yields ok == false.
func (t *ConstantTable) Resolve(ref string, imports *models.ImportTable, owner string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	prefix, field, dotted := cutLast(ref, ".")
	if !dotted {
		// Bare name: the owning class, then static imports.
		if v, ok := t.Lookup(owner + "." + ref); ok {
			return v, true
		}
		if imports != nil {
			if full, ok := imports.Static[ref]; ok {
				if v, ok := t.Lookup(full); ok {
					return v, true
				}
			}
			for _, cls := range imports.StaticWildcards {
				if v, ok := t.Lookup(cls + "." + ref); ok {
					return v, true
				}
			}
		}
		return "", false
	}

	if imports == nil {
		imports = models.NewImportTable("")
	}
	class := imports.ResolveType(prefix, t.HasClass)
	if v, ok := t.Lookup(class + "." + field); ok {
		return v, true
	}
	// A class nested in the owner: Inner.CONST.
	if v, ok := t.Lookup(owner + "." + prefix + "." + field); ok {
		return v, true
	}
	// Already fully qualified.
	if v, ok := t.Lookup(ref); ok {
		return v, true
	}
	return "", false
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return "", s, false
	}
	return s[:i], s[i+len(sep):], true
}
