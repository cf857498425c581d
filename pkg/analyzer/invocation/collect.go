// Package invocation finds Java-side usage of ViewModels: method calls
// through typed receivers, instantiations, method references and calls a
// ViewModel makes on itself.
package invocation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/panbanda/vmsweep/pkg/models"
	"github.com/panbanda/vmsweep/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// SiteKind distinguishes the usage sites found in a file.
type SiteKind int

const (
	// SiteCall is receiver.method() where the receiver's type is known.
	SiteCall SiteKind = iota
	// SiteCreate is new Type(...) or Type::new.
	SiteCreate
	// SiteSelf is an unqualified, this. or super. call inside a class.
	SiteSelf
)

// Site is a single usage site. Type is the type name as written for calls
// and creations, and the FQN of the enclosing class for self calls.
type Site struct {
	Kind   SiteKind
	Type   string
	Method string
	Caller string // enclosing method name for self calls, "" outside methods
	Super  bool
	Line   int
}

// FileSites holds every site found in one file, plus the import table the
// raw type names resolve through.
type FileSites struct {
	Path    string
	Imports *models.ImportTable
	Sites   []Site
}

// Collect walks a parsed file and records usage sites. Variable types are
// recorded as written; they are resolved against the registry later.
func Collect(result *parser.ParseResult, imports *models.ImportTable) *FileSites {
	if imports == nil {
		imports = models.NewImportTable("")
	}
	c := &collector{
		src:     result.Source,
		imports: imports,
		out:     &FileSites{Path: result.Path, Imports: imports},
		scope:   &scope{vars: map[string]string{}},
	}
	c.visit(result.Tree.RootNode())
	return c.out
}

type scope struct {
	vars   map[string]string // variable name -> type as written
	parent *scope
}

func (s *scope) lookup(name string) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return "", false
}

type collector struct {
	src     []byte
	imports *models.ImportTable
	out     *FileSites
	classes []string
	caller  string
	scope   *scope
}

func (c *collector) push() {
	c.scope = &scope{vars: map[string]string{}, parent: c.scope}
}

func (c *collector) pop() {
	c.scope = c.scope.parent
}

func (c *collector) text(n *sitter.Node) string {
	return parser.GetNodeText(n, c.src)
}

func (c *collector) visit(node *sitter.Node) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "class_declaration", "enum_declaration", "interface_declaration", "record_declaration":
		c.visitClass(node)
		return
	case "class_body":
		// Anonymous class: fields are visible to its methods, the enclosing
		// class stays the target of unqualified calls.
		c.push()
		c.declareFields(node)
		saved := c.caller
		c.caller = ""
		c.visitChildren(node)
		c.caller = saved
		c.pop()
		return
	case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
		c.visitCallable(node)
		return
	case "local_variable_declaration":
		c.declare(node)
	case "enhanced_for_statement":
		c.push()
		if name := c.text(node.ChildByFieldName("name")); name != "" {
			c.scope.vars[name] = c.text(node.ChildByFieldName("type"))
		}
		c.visitChildren(node)
		c.pop()
		return
	case "object_creation_expression":
		if t := node.ChildByFieldName("type"); t != nil {
			c.add(Site{Kind: SiteCreate, Type: models.BaseTypeName(c.text(t)), Line: parser.Line(node)})
		}
	case "method_invocation":
		c.invocation(node)
	case "method_reference":
		c.reference(node)
	}
	c.visitChildren(node)
}

func (c *collector) visitChildren(node *sitter.Node) {
	for i := range int(node.NamedChildCount()) {
		c.visit(node.NamedChild(i))
	}
}

func (c *collector) visitClass(node *sitter.Node) {
	name := c.text(node.ChildByFieldName("name"))
	c.classes = append(c.classes, c.imports.Qualify(name))
	saved := c.caller
	c.caller = ""
	c.push()

	body := node.ChildByFieldName("body")
	if body != nil {
		c.declareFields(body)
		c.visitChildren(body)
	}

	c.pop()
	c.caller = saved
	c.classes = c.classes[:len(c.classes)-1]
}

func (c *collector) visitCallable(node *sitter.Node) {
	saved := c.caller
	c.caller = ""
	if node.Type() == "method_declaration" {
		c.caller = c.text(node.ChildByFieldName("name"))
	}
	c.push()
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := range int(params.NamedChildCount()) {
			p := params.NamedChild(i)
			if t := p.Type(); t == "formal_parameter" || t == "spread_parameter" {
				c.scope.vars[c.text(p.ChildByFieldName("name"))] = c.text(p.ChildByFieldName("type"))
			}
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		c.visit(body)
	}
	c.pop()
	c.caller = saved
}

// declareFields makes every field of a class body visible before any of its
// members is visited.
func (c *collector) declareFields(body *sitter.Node) {
	for _, field := range parser.ChildrenOfType(body, "field_declaration") {
		c.declare(field)
	}
}

func (c *collector) declare(node *sitter.Node) {
	typeName := c.text(node.ChildByFieldName("type"))
	for _, decl := range parser.ChildrenOfType(node, "variable_declarator") {
		name := c.text(decl.ChildByFieldName("name"))
		if name == "" {
			continue
		}
		t := typeName
		if t == "var" {
			// Infer from the initializer when it is a plain instantiation.
			value := decl.ChildByFieldName("value")
			if value == nil || value.Type() != "object_creation_expression" {
				continue
			}
			t = c.text(value.ChildByFieldName("type"))
		}
		c.scope.vars[name] = t
	}
}

func (c *collector) add(s Site) {
	c.out.Sites = append(c.out.Sites, s)
}

func (c *collector) enclosingClass() string {
	if len(c.classes) == 0 {
		return ""
	}
	return c.classes[len(c.classes)-1]
}

func (c *collector) self(method string, super bool, line int) {
	class := c.enclosingClass()
	if class == "" || method == "" {
		return
	}
	c.add(Site{Kind: SiteSelf, Type: class, Method: method, Caller: c.caller, Super: super, Line: line})
}

func (c *collector) invocation(node *sitter.Node) {
	name := c.text(node.ChildByFieldName("name"))
	line := parser.Line(node)
	c.receiver(node.ChildByFieldName("object"), name, line)
}

func (c *collector) reference(node *sitter.Node) {
	if node.NamedChildCount() == 0 {
		return
	}
	recv := node.NamedChild(0)
	line := parser.Line(node)

	last := node.Child(int(node.ChildCount()) - 1)
	if last.Type() == "new" {
		c.add(Site{Kind: SiteCreate, Type: models.BaseTypeName(c.text(recv)), Line: line})
		return
	}
	if last.Type() != "identifier" || last.StartByte() == recv.StartByte() {
		return
	}
	c.receiver(recv, c.text(last), line)
}

// receiver records a call of method on recv. A nil receiver is an
// unqualified call.
func (c *collector) receiver(recv *sitter.Node, method string, line int) {
	if method == "" {
		return
	}
	if recv == nil {
		c.self(method, false, line)
		return
	}

	switch recv.Type() {
	case "this":
		c.self(method, false, line)
	case "super":
		c.self(method, true, line)
	case "identifier":
		name := c.text(recv)
		if t, ok := c.scope.lookup(name); ok {
			c.add(Site{Kind: SiteCall, Type: models.BaseTypeName(t), Method: method, Line: line})
		} else if startsUpper(name) {
			// Static call or unbound method reference through a type name.
			c.add(Site{Kind: SiteCall, Type: name, Method: method, Line: line})
		}
	case "field_access":
		// this.field.method()
		obj := recv.ChildByFieldName("object")
		if obj == nil || obj.Type() != "this" {
			return
		}
		if t, ok := c.scope.lookup(c.text(recv.ChildByFieldName("field"))); ok {
			c.add(Site{Kind: SiteCall, Type: models.BaseTypeName(t), Method: method, Line: line})
		}
	case "type_identifier", "scoped_type_identifier", "generic_type":
		c.add(Site{Kind: SiteCall, Type: models.BaseTypeName(c.text(recv)), Method: method, Line: line})
	}
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r) && !strings.Contains(s, ".")
}
