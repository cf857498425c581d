package source

import (
	"strings"

	"github.com/panbanda/vmsweep/pkg/models"
	"github.com/panbanda/vmsweep/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// commandAnnotations are the annotation simple names that declare commands.
var commandAnnotations = map[string]bool{
	"Command":              true,
	"GlobalCommand":        true,
	"DefaultCommand":       true,
	"DefaultGlobalCommand": true,
}

// parseAnnotation converts a marker_annotation or annotation node into its
// tagged form. Lifecycle wins over Other; command annotations are never
// lifecycle hooks.
func parseAnnotation(node *sitter.Node, source []byte, lifecycle []string) models.Annotation {
	raw := parser.GetNodeText(node, source)
	name := models.SimpleName(parser.GetNodeText(node.ChildByFieldName("name"), source))

	a := models.Annotation{
		Kind: models.AnnotationOther,
		Name: name,
		Raw:  raw,
		Line: parser.Line(node),
	}

	if commandAnnotations[name] {
		a.Kind = models.AnnotationCommand
		a.Args = commandArgs(node.ChildByFieldName("arguments"), source)
		return a
	}

	for _, prefix := range lifecycle {
		if a.HasPrefix(prefix) {
			a.Kind = models.AnnotationLifecycle
			break
		}
	}
	return a
}

// commandArgs extracts command names from an annotation argument list:
// @Command("a"), @Command({"a", "b"}), @Command(value = "a"), @Command(C.NAME).
func commandArgs(args *sitter.Node, source []byte) []models.CommandArg {
	if args == nil {
		return nil
	}
	var out []models.CommandArg
	for i := range int(args.NamedChildCount()) {
		child := args.NamedChild(i)
		switch child.Type() {
		case "element_value_pair":
			key := parser.GetNodeText(child.ChildByFieldName("key"), source)
			if key != "value" {
				continue
			}
			out = append(out, elementValues(child.ChildByFieldName("value"), source)...)
		case "line_comment", "block_comment":
		default:
			out = append(out, elementValues(child, source)...)
		}
	}
	return out
}

func elementValues(node *sitter.Node, source []byte) []models.CommandArg {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "element_value_array_initializer":
		var out []models.CommandArg
		for i := range int(node.NamedChildCount()) {
			out = append(out, elementValues(node.NamedChild(i), source)...)
		}
		return out
	case "string_literal":
		return []models.CommandArg{{Literal: unquote(parser.GetNodeText(node, source)), IsLiteral: true}}
	case "identifier", "field_access", "scoped_identifier":
		ref := strings.Join(strings.Fields(parser.GetNodeText(node, source)), "")
		return []models.CommandArg{{Ref: ref}}
	case "parenthesized_expression":
		if node.NamedChildCount() > 0 {
			return elementValues(node.NamedChild(0), source)
		}
	}
	return nil
}

// unquote strips the surrounding double quotes of a Java string literal.
func unquote(literal string) string {
	if len(literal) >= 2 && strings.HasPrefix(literal, `"`) && strings.HasSuffix(literal, `"`) {
		return literal[1 : len(literal)-1]
	}
	return literal
}
