package source

import (
	"testing"

	"github.com/panbanda/vmsweep/internal/testutil"
	"github.com/panbanda/vmsweep/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func index(t *testing.T, files map[string]string) *Index {
	t.Helper()
	ix := New()
	var parsed []*FileIndex
	for path, src := range files {
		parsed = append(parsed, ix.IndexFile(testutil.ParseJava(t, path, src)))
	}
	return Build(parsed)
}

func TestIndexFile_ViewModelsAndMethods(t *testing.T) {
	src := `package com.example;

import org.zkoss.bind.annotation.Command;
import org.zkoss.bind.annotation.Init;

public class UserViewModel extends BaseViewModel {

    @Init
    public void init() {
    }

    @Command("save")
    @NotifyChange("user")
    public void doSave() {
    }

    public String getName() {
        return "";
    }

    protected void hidden() {
    }

    private void secret() {
    }

    public void overloaded() {
    }

    public void overloaded(String s) {
    }
}

class Helper {
    public void notAViewModel() {
    }
}
`
	fi := New().IndexFile(testutil.ParseJava(t, "UserViewModel.java", src))

	require.Len(t, fi.ViewModels, 1)
	entry := fi.ViewModels[0]
	vm := entry.ViewModel
	assert.Equal(t, "com.example.UserViewModel", vm.FQN)
	assert.Equal(t, "com.example", vm.Package)
	assert.Equal(t, "BaseViewModel", entry.ParentName)

	names := make([]string, 0)
	for _, m := range vm.Methods() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"init", "doSave", "getName", "overloaded"}, names)

	init := vm.Method("init")
	require.NotNil(t, init)
	require.Len(t, init.Annotations, 1)
	assert.Equal(t, models.AnnotationLifecycle, init.Annotations[0].Kind)
	assert.Equal(t, 8, init.BlockStartLine)
	assert.Equal(t, 9, init.Line)

	save := vm.Method("doSave")
	require.NotNil(t, save)
	assert.Equal(t, []string{`@Command("save")`, `@NotifyChange("user")`}, save.AnnotationTexts())
	assert.Equal(t, 12, save.BlockStartLine)
	assert.Equal(t, 14, save.Line)

	over := vm.Method("overloaded")
	require.NotNil(t, over)
	assert.Len(t, over.Overloads, 1)
}

func TestIndexFile_Imports(t *testing.T) {
	src := `package com.example.web;

import com.example.base.BaseViewModel;
import com.example.shared.*;
import static com.example.Commands.SAVE;
import static com.example.Other.*;

public class AViewModel extends BaseViewModel {}
`
	fi := New().IndexFile(testutil.ParseJava(t, "AViewModel.java", src))

	assert.Equal(t, "com.example.web", fi.Imports.Package)
	assert.Equal(t, "com.example.base.BaseViewModel", fi.Imports.Explicit["BaseViewModel"])
	assert.Equal(t, []string{"com.example.shared"}, fi.Imports.Wildcards)
	assert.Equal(t, "com.example.Commands.SAVE", fi.Imports.Static["SAVE"])
	assert.Equal(t, []string{"com.example.Other"}, fi.Imports.StaticWildcards)
}

func TestIndexFile_Constants(t *testing.T) {
	src := `package com.example;

public class Commands {
    public static final String SAVE = "saveIt";
    public static final String A = "a", B = "b";
    public static String NOT_FINAL = "x";
    private static final String PRIVATE = "p";
    public static final int NUMBER = 3;
    public static final String COMPUTED = SAVE + "!";

    public static class Inner {
        public static final String DEEP = "deep";
    }
}

interface Names {
    String IMPLICIT = "implicit";
}
`
	fi := New().IndexFile(testutil.ParseJava(t, "Commands.java", src))
	table := NewConstantTable(fi.Constants)

	assert.Equal(t, []string{
		"com.example.Commands.A",
		"com.example.Commands.B",
		"com.example.Commands.Inner.DEEP",
		"com.example.Commands.SAVE",
		"com.example.Names.IMPLICIT",
	}, table.Keys())

	v, ok := table.Lookup("com.example.Commands.SAVE")
	assert.True(t, ok)
	assert.Equal(t, "saveIt", v)
}

func TestIndexFile_CustomSuffix(t *testing.T) {
	src := `package p;
public class OrderVM { public void a() {} }
public class OrderViewModel { public void b() {} }
`
	fi := New(WithSuffix("VM")).IndexFile(testutil.ParseJava(t, "OrderVM.java", src))
	require.Len(t, fi.ViewModels, 1)
	assert.Equal(t, "p.OrderVM", fi.ViewModels[0].ViewModel.FQN)
}

func TestBuild_ResolvesParents(t *testing.T) {
	idx := index(t, map[string]string{
		"a/BaseViewModel.java": `package com.example.base;
public abstract class BaseViewModel { public void common() {} }
`,
		"b/ChildViewModel.java": `package com.example.web;
import com.example.base.BaseViewModel;
public class ChildViewModel extends BaseViewModel {}
`,
		"b/SiblingViewModel.java": `package com.example.web;
public class SiblingViewModel extends ChildViewModel {}
`,
		"b/WildViewModel.java": `package com.example.other;
import com.example.web.*;
public class WildViewModel extends SiblingViewModel {}
`,
		"b/ExternalViewModel.java": `package com.example.web;
public class ExternalViewModel extends org.zkoss.Composer<Foo> {}
`,
	})

	reg := idx.Registry
	assert.Equal(t, 5, reg.Len())
	assert.Equal(t, "com.example.base.BaseViewModel", reg.Get("com.example.web.ChildViewModel").Parent)
	assert.Equal(t, "com.example.web.ChildViewModel", reg.Get("com.example.web.SiblingViewModel").Parent)
	assert.Equal(t, "com.example.web.SiblingViewModel", reg.Get("com.example.other.WildViewModel").Parent)
	assert.Equal(t, "org.zkoss.Composer", reg.Get("com.example.web.ExternalViewModel").Parent)

	lineage := reg.Lineage("com.example.other.WildViewModel")
	assert.Len(t, lineage, 4)
}

func TestBuild_CommandNames(t *testing.T) {
	idx := index(t, map[string]string{
		"Commands.java": `package com.example;
public class Commands {
    public static final String REFRESH = "refreshOrders";
    public static class Nested { public static final String DEEP = "deepCmd"; }
}
`,
		"Keys.java": `package com.example.keys;
public interface Keys { String EXPORT = "exportAll"; }
`,
		"OrderViewModel.java": `package com.example;

import com.example.keys.Keys;
import static com.example.keys.Keys.EXPORT;

public class OrderViewModel {
    public static final String LOCAL = "localCmd";

    @Command("literal")
    public void a() {}

    @GlobalCommand(Commands.REFRESH)
    public void b() {}

    @Command(LOCAL)
    public void c() {}

    @Command(EXPORT)
    public void d() {}

    @Command({"one", Keys.EXPORT})
    public void e() {}

    @Command(value = "named")
    public void f() {}

    @Command(Commands.Nested.DEEP)
    public void g() {}

    @Command(com.example.Commands.REFRESH)
    public void h() {}

    @Command(Missing.NOPE)
    public void i() {}

    @Command
    public void j() {}
}
`,
	})

	vm := idx.Registry.Get("com.example.OrderViewModel")
	require.NotNil(t, vm)

	tests := []struct {
		method string
		want   []string
	}{
		{"a", []string{"literal"}},
		{"b", []string{"refreshOrders"}},
		{"c", []string{"localCmd"}},
		{"d", []string{"exportAll"}},
		{"e", []string{"one", "exportAll"}},
		{"f", []string{"named"}},
		{"g", []string{"deepCmd"}},
		{"h", []string{"refreshOrders"}},
		{"i", nil},
		{"j", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			m := vm.Method(tt.method)
			require.NotNil(t, m)
			if tt.want == nil {
				assert.Empty(t, m.CommandNames)
				assert.Equal(t, "", m.CommandName())
				return
			}
			assert.Equal(t, tt.want, m.CommandNames)
		})
	}

	require.Len(t, idx.Unresolved, 1)
	assert.Equal(t, "Missing.NOPE", idx.Unresolved[0].Ref)
	assert.Equal(t, "i", idx.Unresolved[0].Method)
}

func TestBuild_ConstantRoundTrip(t *testing.T) {
	idx := index(t, map[string]string{
		"SomeClass.java": `package p;
public class SomeClass { public static final String CMD_NAME = "doThing"; }
`,
		"AViewModel.java": `package p;
public class AViewModel {
    @Command(SomeClass.CMD_NAME)
    public void viaConstant() {}

    @Command("doThing")
    public void viaLiteral() {}
}
`,
	})
	vm := idx.Registry.Get("p.AViewModel")
	require.NotNil(t, vm)
	assert.Equal(t, vm.Method("viaLiteral").CommandName(), vm.Method("viaConstant").CommandName())
	assert.Equal(t, "doThing", vm.Method("viaConstant").CommandName())
}

func TestBuild_DuplicateFQNKeepsFirstPath(t *testing.T) {
	idx := index(t, map[string]string{
		"module-b/XViewModel.java": "package p;\npublic class XViewModel { public void b() {} }\n",
		"module-a/XViewModel.java": "package p;\npublic class XViewModel { public void a() {} }\n",
	})
	vm := idx.Registry.Get("p.XViewModel")
	require.NotNil(t, vm)
	assert.Equal(t, "module-a/XViewModel.java", vm.File)
	require.Len(t, idx.Duplicates, 1)
	assert.Equal(t, "module-b/XViewModel.java", idx.Duplicates[0].File)
}
