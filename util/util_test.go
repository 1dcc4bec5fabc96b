package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifiers(t *testing.T) {
	testData := []struct {
		b              byte
		letterOrNumber bool
		labelCharacter bool
		labelStart     bool
		printable      bool
		space          bool
	}{
		{'a', true, true, true, true, false},
		{'Z', true, true, true, true, false},
		{'7', true, true, false, true, false},
		{'_', false, true, true, true, false},
		{' ', false, false, false, true, true},
		{'\n', false, false, false, false, true},
		{'~', false, false, false, true, false},
		{0x7f, false, false, false, false, false},
	}
	for _, data := range testData {
		assert.Equal(t, data.letterOrNumber, IsLetterOrNumber(data.b), "%q", data.b)
		assert.Equal(t, data.labelCharacter, IsLetterOrUnderscoreOrNumber(data.b), "%q", data.b)
		assert.Equal(t, data.labelStart, IsLetterOrUnderscore(data.b), "%q", data.b)
		assert.Equal(t, data.printable, IsPrintable(data.b), "%q", data.b)
		assert.Equal(t, data.space, IsSpace(data.b), "%q", data.b)
	}
}
