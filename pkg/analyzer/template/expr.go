package template

import (
	"regexp"
	"strings"
)

var (
	idExpr      = regexp.MustCompile(`@id\('([^']*)'\)`)
	initExpr    = regexp.MustCompile(`@init\('([^']*)'\)`)
	commandExpr = regexp.MustCompile(`@(?:global-)?command\('([^']*)'[,)]`)

	// alias.member, where alias is not itself the tail of a longer chain.
	memberExpr = regexp.MustCompile(`(?:^|[^\w.$])([A-Za-z_$][\w$]*)\.([A-Za-z_$][\w$]*)`)

	placeholderExpr = regexp.MustCompile(`[$#]\{[^}]*\}`)
)

// binding extracts alias and FQN from a viewModel attribute value.
func binding(value string) (alias, fqn string, ok bool) {
	id := idExpr.FindStringSubmatch(value)
	init := initExpr.FindStringSubmatch(value)
	if id == nil || init == nil {
		return "", "", false
	}
	return id[1], init[1], true
}

// bindingAlias extracts only the alias of a viewModel attribute value.
func bindingAlias(value string) (string, bool) {
	id := idExpr.FindStringSubmatch(value)
	if id == nil {
		return "", false
	}
	return id[1], true
}

// commands returns every command name invoked in an attribute value.
func commands(value string) []string {
	var out []string
	for _, m := range commandExpr.FindAllStringSubmatch(value, -1) {
		out = append(out, m[1])
	}
	return out
}

type memberRef struct {
	alias  string
	member string
}

// members returns every alias.member pair in text. For a.b.c only a.b is
// returned: the leftmost member is what the alias's class must declare.
func members(text string) []memberRef {
	var out []memberRef
	for _, m := range memberExpr.FindAllStringSubmatch(text, -1) {
		out = append(out, memberRef{alias: m[1], member: m[2]})
	}
	return out
}

// isDynamic reports whether an include source contains an EL placeholder.
func isDynamic(src string) bool {
	return placeholderExpr.MatchString(src)
}

// staticSuffix is the part of a dynamic include source after its last
// placeholder, e.g. "/panel.zul" for "${dir}/panel.zul".
func staticSuffix(src string) string {
	locs := placeholderExpr.FindAllStringIndex(src, -1)
	if len(locs) == 0 {
		return src
	}
	return stripQuery(src[locs[len(locs)-1][1]:])
}

// stripQuery drops include parameters: "a.zul?x=1" is "a.zul".
func stripQuery(src string) string {
	if i := strings.IndexByte(src, '?'); i >= 0 {
		return src[:i]
	}
	return src
}
