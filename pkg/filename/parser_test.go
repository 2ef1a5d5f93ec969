package filename

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plateindex/internal/models"
)

func fields(col string, row, field, channel int) models.ImageFields {
	return models.ImageFields{
		WellPosition: models.WellPosition{Column: col, Row: row},
		Field:        field,
		Channel:      channel,
	}
}

func TestParseValidNames(t *testing.T) {
	tests := []struct {
		path string
		want models.ImageFields
	}{
		{"MFGTMP_220411120001_A01f00d0.TIF", fields("A", 1, 0, 0)},
		{"MFGTMP_220411120001/MFGTMP_220411120001_A01f00d0.TIF", fields("A", 1, 0, 0)},
		{filepath.Join("plate", "sub", "x_P24f15d4.TIF"), fields("P", 24, 15, 4)},
		{"B12f09d3.TIF", fields("B", 12, 9, 3)},
		{"noext_C07f01d2", fields("C", 7, 1, 2)},
		// trailing characters after the code are ignored
		{"run_D03f02d1extra.TIF", fields("D", 3, 2, 1)},
		{"run_E05f10d99.TIF", fields("E", 5, 10, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Parse(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAllTwoDigitCombinations(t *testing.T) {
	for _, col := range "AZ" {
		for row := 0; row < 100; row += 11 {
			for field := 0; field < 100; field += 33 {
				for channel := 0; channel < 10; channel++ {
					name := fmt.Sprintf("MFGTMP_1_%c%02df%02dd%d.TIF", col, row, field, channel)
					got, err := Parse(name)
					require.NoError(t, err, name)
					assert.Equal(t, fields(string(col), row, field, channel), got, name)
				}
			}
		}
	}
}

func TestParseMismatch(t *testing.T) {
	tests := []struct {
		path  string
		token string
	}{
		{"foo_bar.TIF", "bar"},
		{"MFGTMP_a01f00d0.TIF", "a01f00d0"},
		{"MFGTMP_A1f00d0.TIF", "A1f00d0"},
		{"MFGTMP_A01F00d0.TIF", "A01F00d0"},
		{"MFGTMP_A01f00d.TIF", "A01f00d"},
		{"MFGTMP_xA01f00d0.TIF", "xA01f00d0"},
		// the code must be the last token
		{"MFGTMP_A01f00d0_thumb.TIF", "thumb"},
		{"MFGTMP_.TIF", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Parse(tt.path)
			require.Error(t, err)
			assert.Equal(t, models.ImageFields{}, got)
			assert.True(t, errors.Is(err, ErrFormatMismatch))

			var mismatch *FormatMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tt.token, mismatch.Token)
			assert.Equal(t, tt.path, mismatch.Path)
			assert.Contains(t, err.Error(), tt.token)
		})
	}
}

func TestStemAndToken(t *testing.T) {
	assert.Equal(t, "MFGTMP_220411120001_A01f00d0", Stem("dir/MFGTMP_220411120001_A01f00d0.TIF"))
	assert.Equal(t, "a.b", Stem("a.b.TIF"))
	assert.Equal(t, ".TIF", Stem(".TIF"))
	assert.Equal(t, "A01f00d0", Token("dir/MFGTMP_220411120001_A01f00d0.TIF"))
	assert.Equal(t, "bar", Token("foo_bar.TIF"))
	assert.Equal(t, "single", Token("single.TIF"))
}
