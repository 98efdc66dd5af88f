package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeInterest(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Swim", "swimming"},
		{"  swim lessons ", "swimming"},
		{"Football", "soccer"},
		{"KARATE", "martial_arts"},
		{"Chess", "chess"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeInterest(tt.input))
		})
	}
}

func TestNormalizeInterests(t *testing.T) {
	assert.Equal(t,
		[]string{"swimming", "lego", "art"},
		NormalizeInterests([]string{"Swim", "legos", "pool", "", "Drawing", "painting"}),
	)
	assert.Equal(t, []string{}, NormalizeInterests(nil))
}

func TestDedupeFold(t *testing.T) {
	assert.Equal(t, []string{"Spanish", "English"}, dedupeFold([]string{"Spanish", " spanish ", "English", ""}))
}
