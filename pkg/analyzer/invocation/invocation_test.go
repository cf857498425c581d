package invocation

import (
	"testing"

	"github.com/panbanda/vmsweep/internal/testutil"
	"github.com/panbanda/vmsweep/pkg/analyzer/source"
	"github.com/panbanda/vmsweep/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	reg   *models.Registry
	edges []SelfCall
	stats Stats
}

func analyze(t *testing.T, files map[string]string) fixture {
	t.Helper()
	ix := source.New()
	var indexes []*source.FileIndex
	var sites []*FileSites
	for path, src := range files {
		result := testutil.ParseJava(t, path, src)
		fi := ix.IndexFile(result)
		indexes = append(indexes, fi)
		sites = append(sites, Collect(result, fi.Imports))
	}
	idx := source.Build(indexes)
	edges, stats := Resolve(idx.Registry, sites)
	return fixture{reg: idx.Registry, edges: edges, stats: stats}
}

const userVM = `package com.example;

public class UserViewModel extends BaseViewModel {
    public void processInternalData() {}
    public void unused() {}
}
`

const baseVM = `package com.example;

public abstract class BaseViewModel {
    public void inherited() {}
    public void other() {}
}
`

func TestResolve_LocalVariableCall(t *testing.T) {
	f := analyze(t, map[string]string{
		"UserViewModel.java": userVM,
		"BaseViewModel.java": baseVM,
		"Service.java": `package com.example.service;

import com.example.UserViewModel;

public class Service {
    public void run() {
        UserViewModel vm = lookup();
        vm.processInternalData();
        vm.inherited();
    }
}
`,
	})

	vm := f.reg.Get("com.example.UserViewModel")
	require.NotNil(t, vm)
	assert.True(t, vm.UsedInJava)
	assert.True(t, vm.Method("processInternalData").UsedInJava)
	assert.False(t, vm.Method("unused").UsedInJava)

	base := f.reg.Get("com.example.BaseViewModel")
	assert.True(t, base.Method("inherited").UsedInJava, "inherited method found by climbing")
	assert.False(t, base.UsedInJava)
	assert.Equal(t, 2, f.stats.Calls)
}

func TestResolve_CreationOnlyMarksClass(t *testing.T) {
	f := analyze(t, map[string]string{
		"UserViewModel.java": userVM,
		"Factory.java": `package com.example;

public class Factory {
    private final java.util.function.Supplier<UserViewModel> s = UserViewModel::new;

    public Object make() {
        return new UserViewModel();
    }
}
`,
	})

	vm := f.reg.Get("com.example.UserViewModel")
	assert.True(t, vm.UsedInJava)
	for _, m := range vm.Methods() {
		assert.False(t, m.UsedInJava, m.Name)
	}
	assert.Equal(t, 2, f.stats.Creations)
}

func TestResolve_FieldsParamsAndForLoops(t *testing.T) {
	f := analyze(t, map[string]string{
		"AViewModel.java": `package p;
public class AViewModel {
    public void viaField() {}
    public void viaThisField() {}
    public void viaParam() {}
    public void viaLoop() {}
    public void viaVar() {}
    public void viaRef() {}
    public void viaStatic() {}
    public void untouched() {}
}
`,
		"Controller.java": `package p;

import java.util.List;

public class Controller {
    private AViewModel field;

    public void run(AViewModel param, List<AViewModel> all) {
        field.viaField();
        this.field.viaThisField();
        param.viaParam();
        for (AViewModel each : all) {
            each.viaLoop();
        }
        var v = new AViewModel();
        v.viaVar();
        all.forEach(field::viaRef);
        AViewModel.viaStatic();
    }
}
`,
	})

	vm := f.reg.Get("p.AViewModel")
	require.NotNil(t, vm)
	for _, name := range []string{"viaField", "viaThisField", "viaParam", "viaLoop", "viaVar", "viaRef", "viaStatic"} {
		assert.True(t, vm.Method(name).UsedInJava, name)
	}
	assert.False(t, vm.Method("untouched").UsedInJava)
}

func TestResolve_ShadowedVariable(t *testing.T) {
	f := analyze(t, map[string]string{
		"AViewModel.java": "package p;\npublic class AViewModel { public void go() {} }\n",
		"BViewModel.java": "package p;\npublic class BViewModel { public void go() {} }\n",
		"C.java": `package p;
public class C {
    public void one() {
        AViewModel vm = null;
        vm.go();
    }
    public void two() {
        String vm = "";
        vm.length();
    }
}
`,
	})

	assert.True(t, f.reg.Get("p.AViewModel").Method("go").UsedInJava)
	assert.False(t, f.reg.Get("p.BViewModel").UsedInJava)
}

func TestSelfCalls(t *testing.T) {
	files := map[string]string{
		"BaseViewModel.java": baseVM,
		"UserViewModel.java": `package com.example;

public class UserViewModel extends BaseViewModel {
    public UserViewModel() {
        setup();
    }

    @Command
    public void save() {
        helper();
        super.inherited();
    }

    public void helper() {}
    public void setup() {}
    public void dead() {
        alsoDead();
    }
    public void alsoDead() {}
}
`,
	}

	t.Run("unused class stays unused", func(t *testing.T) {
		f := analyze(t, files)
		assert.Len(t, f.edges, 4)
		ApplySelfCalls(f.edges, nil)

		vm := f.reg.Get("com.example.UserViewModel")
		assert.False(t, vm.IsUsed(nil))
		assert.False(t, vm.Method("helper").UsedInJava)
		assert.False(t, vm.Method("setup").UsedInJava)
	})

	t.Run("used caller propagates", func(t *testing.T) {
		f := analyze(t, files)
		vm := f.reg.Get("com.example.UserViewModel")
		vm.Method("save").UsedInTemplate = true

		assert.True(t, ApplySelfCalls(f.edges, nil))

		assert.True(t, vm.Method("helper").UsedInJava)
		assert.True(t, vm.Method("setup").UsedInJava, "constructor call counts once the class is used")
		assert.True(t, f.reg.Get("com.example.BaseViewModel").Method("inherited").UsedInJava)
		assert.False(t, vm.Method("dead").UsedInJava)
		assert.False(t, vm.Method("alsoDead").UsedInJava)

		assert.False(t, ApplySelfCalls(f.edges, nil), "second application is a no-op")
	})
}

func TestSelfCalls_PrivateHelpers(t *testing.T) {
	files := map[string]string{
		"FormViewModel.java": `package p;

public class FormViewModel {
    public FormViewModel() {
        prepare();
    }

    @Command
    public void submit() {
        check();
    }

    private void check() {
        validate();
    }

    private void prepare() {
        loadDefaults();
    }

    private void orphan() {
        reset();
        abandoned();
    }

    private void abandoned() {
        clear();
    }

    public void validate() {}
    public void loadDefaults() {}
    public void reset() {}
    public void clear() {}
}
`,
	}

	f := analyze(t, files)
	assert.Equal(t, 4, f.stats.SelfCalls)
	assert.Equal(t, 3, f.stats.HelperCalls)

	vm := f.reg.Get("p.FormViewModel")
	vm.Method("submit").UsedInTemplate = true
	assert.True(t, ApplySelfCalls(f.edges, nil))

	assert.True(t, vm.Method("validate").UsedInJava, "reached through a live helper")
	assert.True(t, vm.Method("loadDefaults").UsedInJava, "reached from the constructor")
	assert.False(t, vm.Method("reset").UsedInJava, "an unreached helper keeps nothing alive")
	assert.False(t, vm.Method("clear").UsedInJava, "helper chains from dead helpers stay dead")
}
