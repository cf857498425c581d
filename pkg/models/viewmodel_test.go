package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethod_Matches(t *testing.T) {
	m := NewMethod("save", 3, nil)
	m.CommandNames = []string{"persist"}
	o := NewMethod("save", 6, nil)
	o.CommandNames = []string{"saveWithId"}
	m.Overloads = append(m.Overloads, o)

	getter := NewMethod("getTotal", 9, nil)

	tests := []struct {
		name   string
		method *Method
		id     string
		want   bool
	}{
		{"name", m, "save", true},
		{"command", m, "persist", true},
		{"overload command", m, "saveWithId", true},
		{"unknown", m, "remove", false},
		{"empty", m, "", false},
		{"bean accessor", getter, "total", true},
		{"accessor prefix only", getter, "Total", true},
		{"unrelated accessor", getter, "count", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.method.Matches(tt.id))
		})
	}
}

func TestViewModel_AddMethodFoldsOverloads(t *testing.T) {
	vm := NewViewModel("com.x", "OrderViewModel", "OrderViewModel.java", "")
	vm.AddMethod(NewMethod("save", 3, nil))
	vm.AddMethod(NewMethod("save", 6, nil))
	vm.AddMethod(NewMethod("cancel", 9, nil))

	assert.Equal(t, "com.x.OrderViewModel", vm.FQN)
	assert.Len(t, vm.Methods(), 2)
	assert.Len(t, vm.Method("save").Overloads, 1)
	assert.Nil(t, vm.Method("missing"))
}
