// Test Type: Unit Test
// Description: Tests for colour validation shared by habits and timelines

package utils_test

import (
	"testing"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"#FF8800", "#FF8800"},
		{"#ff8800", "#FF8800"},
		{"ff8800", "#FF8800"},
		{"  #00aa11 ", "#00AA11"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := utils.NormalizeColor(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeColorRejects(t *testing.T) {
	for _, input := range []string{"", "#FFF", "#GG0000", "#FF88001", "red"} {
		t.Run(input, func(t *testing.T) {
			_, err := utils.NormalizeColor(input)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		})
	}
}
