// Package filename extracts plate metadata from instrument image file names.
//
// Names look like MFGTMP_220411120001_A01f00d0.TIF. The last underscore
// separated token of the stem carries the well column letter, the two digit
// row, the two digit field after "f" and the channel digit after "d".
package filename

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"plateindex/internal/models"
)

// tokenPattern is anchored at the start only: "A01f00d0x" parses as A01f00d0.
var tokenPattern = regexp.MustCompile(`^(?P<column>[A-Z])(?P<row>[0-9]{2})f(?P<field>[0-9]{2})d(?P<channel>[0-9])`)

// ErrFormatMismatch is matched by errors.Is for every *FormatMismatchError.
var ErrFormatMismatch = errors.New("filename does not match expected pattern")

// FormatMismatchError reports a file name whose trailing token is not a
// well/field/channel code.
type FormatMismatchError struct {
	Path  string
	Token string
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("filepath does not match expected pattern: %s", e.Token)
}

func (e *FormatMismatchError) Is(target error) bool { return target == ErrFormatMismatch }

// Stem returns the base name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	trimmed := strings.TrimLeft(base, ".")
	if trimmed == "" {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(trimmed))
}

// Token returns the last underscore separated piece of the stem of path.
func Token(path string) string {
	stem := Stem(path)
	return stem[strings.LastIndex(stem, "_")+1:]
}

// Parse extracts the plate fields encoded in path's file name.
func Parse(path string) (models.ImageFields, error) {
	token := Token(path)
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return models.ImageFields{}, &FormatMismatchError{Path: path, Token: token}
	}

	// the pattern guarantees ASCII digits, so Atoi cannot fail
	row, _ := strconv.Atoi(m[tokenPattern.SubexpIndex("row")])
	field, _ := strconv.Atoi(m[tokenPattern.SubexpIndex("field")])
	channel, _ := strconv.Atoi(m[tokenPattern.SubexpIndex("channel")])

	return models.ImageFields{
		WellPosition: models.WellPosition{
			Column: m[tokenPattern.SubexpIndex("column")],
			Row:    row,
		},
		Field:   field,
		Channel: channel,
	}, nil
}
