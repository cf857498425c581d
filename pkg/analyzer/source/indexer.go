// Package source indexes Java sources: ViewModel classes with their public
// methods, and the string constants command annotations may refer to.
//
// Indexing is two-phase. IndexFile runs per file (in any order, possibly in
// parallel) and only records what the file declares. Build then merges every
// FileIndex: the constant table is complete before any command name or
// parent class is resolved.
package source

import (
	"strings"

	"github.com/panbanda/vmsweep/pkg/models"
	"github.com/panbanda/vmsweep/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// FileIndex is everything phase one extracts from a single Java file.
type FileIndex struct {
	Path       string
	Imports    *models.ImportTable
	ViewModels []*ClassEntry
	Constants  []Constant
}

// ClassEntry is a ViewModel whose parent class is not yet resolved.
type ClassEntry struct {
	ViewModel  *models.ViewModel
	ParentName string // as written in the extends clause
}

// Indexer extracts ViewModels and constants from parsed Java files.
type Indexer struct {
	suffix    string
	lifecycle []string
}

// Option is a functional option for configuring Indexer.
type Option func(*Indexer)

// WithSuffix sets the class name suffix that identifies ViewModels.
func WithSuffix(suffix string) Option {
	return func(ix *Indexer) {
		if suffix != "" {
			ix.suffix = suffix
		}
	}
}

// WithLifecycle sets the annotation prefixes treated as lifecycle hooks.
func WithLifecycle(prefixes []string) Option {
	return func(ix *Indexer) {
		ix.lifecycle = prefixes
	}
}

// New creates an indexer.
func New(opts ...Option) *Indexer {
	ix := &Indexer{
		suffix:    "ViewModel",
		lifecycle: []string{"@Init", "@AfterCompose", "@Destroy"},
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// IndexFile extracts ViewModel declarations and string constants from a
// parsed file. It does not resolve anything across files.
func (ix *Indexer) IndexFile(result *parser.ParseResult) *FileIndex {
	root := result.Tree.RootNode()
	src := result.Source

	idx := &FileIndex{
		Path:    result.Path,
		Imports: ReadImports(root, src),
	}

	for i := range int(root.NamedChildCount()) {
		child := root.NamedChild(i)
		if isTypeDeclaration(child.Type()) {
			ix.visitType(idx, child, src, "")
		}
	}
	return idx
}

// ReadImports builds the package and import table of a compilation unit.
func ReadImports(root *sitter.Node, source []byte) *models.ImportTable {
	pkg := ""
	if decl := parser.FirstChildOfType(root, "package_declaration"); decl != nil {
		for i := range int(decl.NamedChildCount()) {
			child := decl.NamedChild(i)
			if t := child.Type(); t == "scoped_identifier" || t == "identifier" {
				pkg = parser.GetNodeText(child, source)
				break
			}
		}
	}

	table := models.NewImportTable(pkg)
	for _, imp := range parser.ChildrenOfType(root, "import_declaration") {
		text := strings.TrimSpace(parser.GetNodeText(imp, source))
		text = strings.TrimPrefix(text, "import")
		text = strings.TrimSuffix(strings.TrimSpace(text), ";")
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		static := fields[0] == "static"
		if static {
			fields = fields[1:]
		}
		path := strings.Join(fields, "")
		wildcard := strings.HasSuffix(path, ".*")
		table.AddImport(strings.TrimSuffix(path, ".*"), static, wildcard)
	}
	return table
}

func isTypeDeclaration(nodeType string) bool {
	switch nodeType {
	case "class_declaration", "interface_declaration", "enum_declaration", "annotation_type_declaration":
		return true
	}
	return false
}

func (ix *Indexer) visitType(idx *FileIndex, node *sitter.Node, src []byte, outer string) {
	name := parser.GetNodeText(node.ChildByFieldName("name"), src)
	if name == "" {
		return
	}
	fqn := idx.Imports.Qualify(name)
	if outer != "" {
		fqn = outer + "." + name
	}

	kind := node.Type()
	implicitConstants := kind == "interface_declaration" || kind == "annotation_type_declaration"

	var entry *ClassEntry
	if kind == "class_declaration" && strings.HasSuffix(name, ix.suffix) {
		entry = &ClassEntry{
			ViewModel:  models.NewViewModel(idx.Imports.Package, name, idx.Path, ""),
			ParentName: superclassName(node, src),
		}
		idx.ViewModels = append(idx.ViewModels, entry)
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	ix.visitBody(idx, entry, body, src, fqn, implicitConstants)
}

func (ix *Indexer) visitBody(idx *FileIndex, entry *ClassEntry, body *sitter.Node, src []byte, fqn string, implicitConstants bool) {
	for i := range int(body.NamedChildCount()) {
		member := body.NamedChild(i)
		switch t := member.Type(); {
		case t == "field_declaration" || t == "constant_declaration":
			idx.Constants = append(idx.Constants, stringConstants(member, src, fqn, implicitConstants || t == "constant_declaration")...)
		case t == "method_declaration":
			if entry != nil {
				if m := ix.publicMethod(member, src); m != nil {
					entry.ViewModel.AddMethod(m)
				}
			}
		case t == "enum_body_declarations":
			ix.visitBody(idx, entry, member, src, fqn, implicitConstants)
		case isTypeDeclaration(t):
			ix.visitType(idx, member, src, fqn)
		}
	}
}

// superclassName returns the extends clause type as written, or "".
func superclassName(class *sitter.Node, src []byte) string {
	super := class.ChildByFieldName("superclass")
	if super == nil {
		return ""
	}
	for i := range int(super.NamedChildCount()) {
		child := super.NamedChild(i)
		switch child.Type() {
		case "type_identifier", "scoped_type_identifier", "generic_type":
			return models.BaseTypeName(parser.GetNodeText(child, src))
		}
	}
	return ""
}

// publicMethod builds a Method for a public method declaration, or nil.
func (ix *Indexer) publicMethod(node *sitter.Node, src []byte) *models.Method {
	mods := parser.FirstChildOfType(node, "modifiers")
	if !hasModifier(mods, "public") {
		return nil
	}
	name := parser.GetNodeText(node.ChildByFieldName("name"), src)
	if name == "" {
		return nil
	}

	var annotations []models.Annotation
	if mods != nil {
		for i := range int(mods.NamedChildCount()) {
			child := mods.NamedChild(i)
			if isAnnotation(child.Type()) {
				annotations = append(annotations, parseAnnotation(child, src, ix.lifecycle))
			}
		}
	}

	return models.NewMethod(name, declarationLine(node, mods), annotations)
}

// declarationLine is the line of the first signature token that is not an
// annotation or comment.
func declarationLine(node, mods *sitter.Node) int {
	if mods != nil {
		for i := range int(mods.ChildCount()) {
			child := mods.Child(i)
			if t := child.Type(); !isAnnotation(t) && !isComment(t) {
				return parser.Line(child)
			}
		}
	}
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if t := child.Type(); t != "modifiers" && !isComment(t) {
			return parser.Line(child)
		}
	}
	return parser.Line(node)
}

// stringConstants returns the String fields of a declaration initialized
// with a literal. Unless implicit, the field must be public static final.
func stringConstants(node *sitter.Node, src []byte, class string, implicit bool) []Constant {
	if !implicit {
		mods := parser.FirstChildOfType(node, "modifiers")
		if !hasModifier(mods, "public") || !hasModifier(mods, "static") || !hasModifier(mods, "final") {
			return nil
		}
	}

	typeName := parser.GetNodeText(node.ChildByFieldName("type"), src)
	if typeName != "String" && typeName != "java.lang.String" {
		return nil
	}

	var out []Constant
	for _, decl := range parser.ChildrenOfType(node, "variable_declarator") {
		value := decl.ChildByFieldName("value")
		if value == nil || value.Type() != "string_literal" {
			continue
		}
		out = append(out, Constant{
			Class: class,
			Field: parser.GetNodeText(decl.ChildByFieldName("name"), src),
			Value: unquote(parser.GetNodeText(value, src)),
		})
	}
	return out
}

func hasModifier(mods *sitter.Node, keyword string) bool {
	if mods == nil {
		return false
	}
	for i := range int(mods.ChildCount()) {
		if mods.Child(i).Type() == keyword {
			return true
		}
	}
	return false
}

func isAnnotation(nodeType string) bool {
	return nodeType == "marker_annotation" || nodeType == "annotation"
}

func isComment(nodeType string) bool {
	return nodeType == "line_comment" || nodeType == "block_comment" || nodeType == "comment"
}
