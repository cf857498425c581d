package models

import "strings"

// AnnotationKind tags the parsed form of a method annotation.
type AnnotationKind int

const (
	// AnnotationOther is any annotation without special meaning to the analysis.
	AnnotationOther AnnotationKind = iota
	// AnnotationCommand declares a template-invokable command.
	AnnotationCommand
	// AnnotationLifecycle marks a hook the framework invokes on its own.
	AnnotationLifecycle
)

// String returns the string representation.
func (k AnnotationKind) String() string {
	switch k {
	case AnnotationCommand:
		return "command"
	case AnnotationLifecycle:
		return "lifecycle"
	default:
		return "other"
	}
}

// CommandArg is one command-name argument of a command annotation.
// Exactly one of Literal or Ref is meaningful: IsLiteral selects which.
type CommandArg struct {
	Literal   string `json:"literal,omitempty"`
	Ref       string `json:"ref,omitempty"`
	IsLiteral bool   `json:"is_literal"`
}

// Annotation is a method annotation parsed once at index time.
type Annotation struct {
	Kind AnnotationKind `json:"kind"`
	Name string         `json:"name"`
	Raw  string         `json:"raw"`
	Line int            `json:"line"`
	Args []CommandArg   `json:"args,omitempty"`
}

// HasPrefix reports whether the raw annotation text starts with prefix.
// A prefix without the leading '@' is accepted.
func (a Annotation) HasPrefix(prefix string) bool {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return false
	}
	if !strings.HasPrefix(prefix, "@") {
		prefix = "@" + prefix
	}
	return strings.HasPrefix(a.Raw, prefix)
}

// AnnotationMatcher decides whether an annotation keeps a method alive
// regardless of call sites.
type AnnotationMatcher interface {
	Matches(a Annotation) bool
}
