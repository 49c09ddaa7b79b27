package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil stays nil", nil, nil},
		{"empty stays empty", []string{}, []string{}},
		{"risk flags keep first-seen order", []string{"gps_mismatch", "low_light", "gps_mismatch"}, []string{"gps_mismatch", "low_light"}},
		{"blanks dropped after trimming", []string{" gps_mismatch ", "", "   "}, []string{"gps_mismatch"}},
		{"case is significant", []string{"Dup", "dup"}, []string{"Dup", "dup"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
