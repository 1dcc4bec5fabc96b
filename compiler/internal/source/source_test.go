package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileErrorFormat(t *testing.T) {
	testData := []struct {
		err      error
		expected string
	}{
		{Errorf(TypeMismatch, Position{Line: 3, Column: 7}, "Type mismatch: %s expected, %s given.", "Integer", "_Boolean"),
			"line 3, column 7: Type mismatch: Integer expected, _Boolean given."},
		{Errorf(CyclicHierarchy, Position{}, "Class hierarchy is not devoid of cycles."),
			"Class hierarchy is not devoid of cycles."},
	}
	for _, data := range testData {
		assert.Equal(t, data.expected, data.err.Error())
	}
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(Errorf(MissingCatchBlock, Position{}, "x"))
	assert.True(t, ok)
	assert.Equal(t, MissingCatchBlock, kind)
	assert.Equal(t, "MissingCatchBlock", kind.String())
	_, ok = KindOf(assert.AnError)
	assert.False(t, ok)
}
