package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `package com.example;

public class UserViewModel extends BaseViewModel {
    @Command
    public void save() {
        helper();
    }

    public String getName() { return name; }
}
`

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"UserViewModel.java", LangJava},
		{"src/main/java/com/example/A.JAVA", LangJava},
		{"index.zul", LangUnknown},
		{"Makefile", LangUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectLanguage(tt.path), tt.path)
	}
}

func TestParse(t *testing.T) {
	p := New()
	defer p.Close()

	res, err := p.Parse([]byte(sample), LangJava, "UserViewModel.java")
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, LangJava, res.Language)
	assert.Equal(t, "program", res.Tree.RootNode().Type())

	class := FirstChildOfType(res.Tree.RootNode(), "class_declaration")
	require.NotNil(t, class)
	assert.Equal(t, "UserViewModel", GetNodeText(class.ChildByFieldName("name"), res.Source))
	assert.Equal(t, 3, Line(class))

	methods := ChildrenOfType(class.ChildByFieldName("body"), "method_declaration")
	require.Len(t, methods, 2)
	assert.Equal(t, 4, Line(methods[0]), "annotations belong to the declaration")
}

func TestParse_SyntaxError(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse([]byte("class A { void f( { }"), LangJava, "A.java")
	assert.ErrorContains(t, err, "syntax error in A.java")

	_, err = p.Parse([]byte("x"), LangUnknown, "x.txt")
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "UserViewModel.java")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	p := New()
	defer p.Close()

	res, err := p.ParseFile(path)
	require.NoError(t, err)
	res.Close()

	_, err = p.ParseFile(filepath.Join(dir, "missing.java"))
	assert.Error(t, err)

	other := filepath.Join(dir, "page.zul")
	require.NoError(t, os.WriteFile(other, []byte("<zk/>"), 0o644))
	_, err = p.ParseFile(other)
	assert.ErrorContains(t, err, "unsupported language")
}

func TestChildHelpers(t *testing.T) {
	p := New()
	defer p.Close()
	res, err := p.Parse([]byte(sample), LangJava, "UserViewModel.java")
	require.NoError(t, err)
	defer res.Close()

	root := res.Tree.RootNode()
	assert.NotNil(t, FirstChildOfType(root, "package_declaration"))
	assert.Nil(t, FirstChildOfType(root, "import_declaration"))
	assert.Len(t, ChildrenOfType(root, "class_declaration"), 1)
	assert.Nil(t, ChildrenOfType(nil, "class_declaration"))
	assert.Empty(t, GetNodeText(nil, res.Source))
}
