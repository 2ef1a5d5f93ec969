package models

import (
	"fmt"
	"strconv"
)

// Column names of a persisted image index, in output order.
const (
	ColumnColumn  = "column"
	ColumnRow     = "row"
	ColumnField   = "field"
	ColumnChannel = "channel"
	ColumnPath    = "rel_fp"
)

// IndexColumns is the fixed header of an image index table
var IndexColumns = []string{ColumnColumn, ColumnRow, ColumnField, ColumnChannel, ColumnPath}

// WellPosition identifies a well on a multi-well imaging plate
type WellPosition struct {
	// Column is the plate column letter, always a single uppercase letter
	Column string

	// Row is the plate row number
	Row int
}

// String renders the position the way the instrument writes it, e.g. "A01"
func (w WellPosition) String() string {
	return fmt.Sprintf("%s%02d", w.Column, w.Row)
}

// ImageFields holds the values encoded in an image file name
type ImageFields struct {
	WellPosition

	// Field is the tile imaged within the well
	Field int

	// Channel is the imaging channel (wavelength) index
	Channel int
}

// ImageRecord is one discovered image file with its parsed metadata
type ImageRecord struct {
	ImageFields

	// RelativePath is the path of the file as it was discovered under the data directory
	RelativePath string
}

// Values returns the record as table cells in IndexColumns order
func (r ImageRecord) Values() []string {
	return []string{
		r.Column,
		strconv.Itoa(r.Row),
		strconv.Itoa(r.Field),
		strconv.Itoa(r.Channel),
		r.RelativePath,
	}
}
