package dbffile

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// Column is one 32 byte field descriptor of the table header.
type Column struct {
	FieldName  [11]byte // Column name, padded with null characters (0x00)
	DataType   byte     // Column type letter
	Reserved1  [4]byte  // Reserved
	Length     uint8    // Length of the column in bytes
	Decimals   uint8    // Number of decimal places
	Reserved2  [2]byte  // Reserved
	WorkAreaID byte     // Work area id, written as 1
	Reserved3  [11]byte // Reserved
}

// Name returns the column name as a trimmed string (max length 10).
// Names are stored ISO-8859-1 encoded regardless of the data encoding.
func (c *Column) Name() string {
	raw := bytes.TrimRight(c.FieldName[:], "\x00")
	name, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(name)
}

// Type returns the type letter of the column.
func (c *Column) Type() DataType {
	return DataType(c.DataType)
}

// NewColumn returns a column descriptor for Create. Types with a fixed wire
// size ignore the length argument.
func NewColumn(name string, dataType DataType, length uint8, decimals uint8) (*Column, error) {
	column := &Column{
		DataType:   byte(dataType),
		Length:     length,
		Decimals:   decimals,
		WorkAreaID: 1,
	}
	switch dataType {
	case Logical:
		column.Length = 1
	case Integer:
		column.Length = 4
	case Date, DateTime, Double:
		column.Length = 8
	case Memo:
		column.Length = 10
	}
	raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(name))
	if err != nil || len(raw) == 0 || len(raw) > 10 {
		return nil, newError("dbffile-column-newcolumn-1", fmt.Errorf("%w: %q", ErrFieldNameInvalid, name))
	}
	copy(column.FieldName[:], raw)
	return column, nil
}

// validate enforces the per-type size constraints. Some of the rules depend
// on the file version: dBase IV allows up to 18 decimal places on numeric
// fields, Visual FoxPro stores memo references as a 4 byte integer.
func (c *Column) validate(version FileVersion) error {
	name := c.Name()
	if len(name) == 0 || len(name) > 10 {
		return newError("dbffile-column-validate-1", fmt.Errorf("%w: %q", ErrFieldNameInvalid, name))
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7F {
			return newError("dbffile-column-validate-2", fmt.Errorf("%w: %q", ErrFieldNameInvalid, name))
		}
	}
	if !c.Type().Supported() {
		return newError("dbffile-column-validate-3", fmt.Errorf("%w: %s at column field: %v", ErrUnsupportedFieldType, c.Type(), name))
	}
	switch c.Type() {
	case Character:
		if c.Length < 1 {
			return sizeError(name, c.Length, "1-255")
		}
	case Numeric, Float:
		if c.Length < 1 || c.Length > 20 {
			return sizeError(name, c.Length, "1-20")
		}
		maxDecimals := uint8(15)
		if version == DBaseIVMemo {
			maxDecimals = 18
		}
		if c.Decimals > maxDecimals {
			return newError("dbffile-column-validate-4", fmt.Errorf("%w: %v decimal places > %v at column field: %v", ErrFieldSizeInvalid, c.Decimals, maxDecimals, name))
		}
	case Logical:
		if c.Length != 1 {
			return sizeError(name, c.Length, "1")
		}
	case Date, DateTime, Double:
		if c.Length != 8 {
			return sizeError(name, c.Length, "8")
		}
	case Integer:
		if c.Length != 4 {
			return sizeError(name, c.Length, "4")
		}
	case Memo:
		if version == VisualFoxPro {
			if c.Length != 4 && c.Length != 10 {
				return sizeError(name, c.Length, "4 or 10")
			}
		} else if c.Length != 10 {
			return sizeError(name, c.Length, "10")
		}
	}
	return nil
}

func sizeError(name string, length uint8, want string) error {
	return newError("dbffile-column-validate-5", fmt.Errorf("%w: %v bytes, expected %v at column field: %v", ErrFieldSizeInvalid, length, want, name))
}

// validateColumns checks every descriptor and the cross-column invariants.
// forCreate additionally refuses memo columns, memo writes are unsupported.
func validateColumns(columns []*Column, version FileVersion, forCreate bool) error {
	seen := make(map[string]bool, len(columns))
	for _, column := range columns {
		if err := column.validate(version); err != nil {
			return err
		}
		if forCreate && column.Type() == Memo {
			return newError("dbffile-column-validatecolumns-1", ErrMemoWriteUnsupported)
		}
		name := column.Name()
		if seen[name] {
			return newError("dbffile-column-validatecolumns-2", &DuplicateFieldNameError{Field: name})
		}
		seen[name] = true
	}
	return nil
}
