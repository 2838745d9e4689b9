package dbffile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"
)

// maxCharacterRunes is the source-side limit on C field values.
const maxCharacterRunes = 255

// interpret converts raw column data to the Go value for the column type.
// For C and M columns a charset conversion is done with the field encoding.
// For M columns the data is read from the memo file.
//
// The column types with their return Go types are:
//
// | Column Type | Column Type Name | Golang type |
// | ----------- | ---------------- | ----------- |
// | B | Double | float64 |
// | C | Character | string |
// | D | Date | time.Time |
// | F | Float (0 decimals) | int64 |
// | F | Float (with decimals) | float64 |
// | I | Integer | int32 |
// | L | Logical | bool |
// | M | Memo | string |
// | N | Numeric (0 decimals) | int64 |
// | N | Numeric (with decimals) | float64 |
// | T | DateTime | time.Time |
//
// Unset values come back as nil.
func (f *File) interpret(raw []byte, column *Column, memo *memoFile) (interface{}, error) {
	if len(raw) != int(column.Length) {
		return nil, newErrorf("dbffile-interpreter-interpret-1", "invalid length %v Bytes != %v Bytes at column field: %v", len(raw), column.Length, column.Name())
	}
	switch column.Type() {
	case Character:
		return f.parseCharacter(raw, column)
	case Numeric, Float:
		return f.parseNumericColumn(raw, column)
	case Logical:
		return parseLogical(raw), nil
	case Date:
		return f.parseDateColumn(raw, column)
	case DateTime:
		if t, ok := parseDateTime(raw); ok {
			return t, nil
		}
		return nil, nil
	case Integer:
		if len(raw) != 4 {
			return nil, newErrorf("dbffile-interpreter-interpret-3", "invalid integer length %v Bytes at column field: %v", len(raw), column.Name())
		}
		return int32(binary.LittleEndian.Uint32(raw)), nil
	case Double:
		if len(raw) != 8 {
			return nil, newErrorf("dbffile-interpreter-interpret-4", "invalid double length %v Bytes at column field: %v", len(raw), column.Name())
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(raw)), nil
	case Memo:
		return f.parseMemoColumn(raw, column, memo)
	}
	return nil, newErrorf("dbffile-interpreter-interpret-2", "%v: unsupported column data type: %s", column.Name(), column.Type())
}

// parseCharacter trims the trailing blank padding and transcodes the rest
// with the field encoding.
func (f *File) parseCharacter(raw []byte, column *Column) (interface{}, error) {
	trimmed := bytes.TrimRight(raw, "\x20")
	str, err := toUTF8String(trimmed, f.encoding.Label(column.Name()), f.converter)
	if err != nil {
		return str, newError("dbffile-interpreter-parsecharacter-1", fmt.Errorf("parsing to utf8 string at column field: %v failed with error: %w", column.Name(), err))
	}
	return str, nil
}

// parseNumericColumn returns int64 for columns without decimal places and
// float64 otherwise. An all-blank field is unset.
func (f *File) parseNumericColumn(raw []byte, column *Column) (interface{}, error) {
	if column.Decimals == 0 {
		i, ok, err := parseNumericInt(raw)
		if err != nil {
			return nil, newError("dbffile-interpreter-parsenumeric-1", fmt.Errorf("parsing numeric int at column field: %v failed with error: %w", column.Name(), err))
		}
		if !ok {
			return nil, nil
		}
		return i, nil
	}
	v, ok, err := parseFloat(raw)
	if err != nil {
		return nil, newError("dbffile-interpreter-parsenumeric-2", fmt.Errorf("parsing float at column field: %v failed with error: %w", column.Name(), err))
	}
	if !ok {
		return nil, nil
	}
	return v, nil
}

// parseLogical maps T/t/Y/y to true and F/f/N/n to false; anything else is
// unset.
func parseLogical(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case 'T', 't', 'Y', 'y':
		return true
	case 'F', 'f', 'N', 'n':
		return false
	}
	return nil
}

func (f *File) parseDateColumn(raw []byte, column *Column) (interface{}, error) {
	date, ok, err := parseDate(raw)
	if err != nil {
		return nil, newError("dbffile-interpreter-parsedate-1", fmt.Errorf("parsing to date at column field: %v failed with error: %w", column.Name(), err))
	}
	if !ok {
		return nil, nil
	}
	return date, nil
}

// parseMemoColumn resolves the block reference embedded in the record frame
// and reads the memo data. The reference is a 10 byte space-padded decimal
// string, or a little-endian int32 on Visual FoxPro tables. Zero or blank
// means no memo; a missing memo file (loose mode) decodes as unset.
func (f *File) parseMemoColumn(raw []byte, column *Column, memo *memoFile) (interface{}, error) {
	var block int
	if column.Length == 4 {
		block = int(int32(binary.LittleEndian.Uint32(raw)))
	} else {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			return nil, nil
		}
		parsed, err := strconv.Atoi(string(trimmed))
		if err != nil {
			return nil, newError("dbffile-interpreter-parsememo-1", fmt.Errorf("invalid memo reference %q at column field: %v", trimmed, column.Name()))
		}
		block = parsed
	}
	if block == 0 {
		return nil, nil
	}
	if memo == nil {
		return nil, nil
	}
	data, isText, err := memo.Read(block)
	if err != nil {
		return nil, newError("dbffile-interpreter-parsememo-2", fmt.Errorf("reading memo at column field: %v failed with error: %w", column.Name(), err))
	}
	if !isText {
		return nil, nil
	}
	str, err := toUTF8String(data, f.encoding.Label(column.Name()), f.converter)
	if err != nil {
		return nil, newError("dbffile-interpreter-parsememo-3", fmt.Errorf("decoding memo at column field: %v failed with error: %w", column.Name(), err))
	}
	return str, nil
}

// represent converts a record value to the byte representation of the column
// type, exactly column.Length bytes. Memo columns always fail, even for nil;
// for every other type nil is permitted and becomes the blank form of the type.
func (f *File) represent(value interface{}, column *Column) ([]byte, error) {
	if column.Type() == Memo {
		return nil, newError("dbffile-interpreter-represent-1", ErrMemoWriteUnsupported)
	}
	if value == nil {
		return blankRepresentation(column), nil
	}
	switch column.Type() {
	case Character:
		return f.getCharacterRepresentation(value, column)
	case Numeric, Float:
		return f.getNumericRepresentation(value, column)
	case Logical:
		return getLogicalRepresentation(value, column)
	case Date:
		return getDateRepresentation(value, column)
	case DateTime:
		return getDateTimeRepresentation(value, column)
	case Integer:
		return getIntegerRepresentation(value, column)
	case Double:
		return getDoubleRepresentation(value, column)
	}
	return nil, newErrorf("dbffile-interpreter-represent-2", "%v: unsupported column data type: %s", column.Name(), column.Type())
}

// blankRepresentation is the wire form of an unset value: zero bytes for the
// integer and double types, blanks for every other type (datetime included).
func blankRepresentation(column *Column) []byte {
	switch column.Type() {
	case Integer, Double:
		return make([]byte, column.Length)
	}
	return blanks(int(column.Length))
}

// getCharacterRepresentation transcodes the string with the field encoding,
// truncates to the column size counting encoded bytes and pads with trailing
// blanks.
func (f *File) getCharacterRepresentation(value interface{}, column *Column) ([]byte, error) {
	c, ok := value.(string)
	if !ok {
		return nil, &FieldError{Field: column.Name(), Reason: "expected a string"}
	}
	if utf8.RuneCountInString(c) > maxCharacterRunes {
		return nil, &FieldError{Field: column.Name(), Reason: "text is too long (maximum length is 255 chars)"}
	}
	bin, err := fromUTF8String(c, f.encoding.Label(column.Name()), f.converter)
	if err != nil {
		return nil, newError("dbffile-interpreter-getcharacterrepresentation-1", fmt.Errorf("encoding string at column field: %v failed with error: %w", column.Name(), err))
	}
	if len(bin) > int(column.Length) {
		bin = bin[:column.Length]
	}
	return appendSpaces(bin, int(column.Length)), nil
}

// getNumericRepresentation formats the number as a decimal string, truncated
// on the right to the column size and padded with leading blanks.
func (f *File) getNumericRepresentation(value interface{}, column *Column) ([]byte, error) {
	var bin []byte
	switch v := value.(type) {
	case float64:
		if v == float64(int64(v)) && column.Decimals == 0 {
			bin = []byte(strconv.FormatInt(int64(v), 10))
		} else {
			bin = []byte(strconv.FormatFloat(v, 'f', int(column.Decimals), 64))
		}
	case int64:
		bin = []byte(strconv.FormatInt(v, 10))
	case int32:
		bin = []byte(strconv.FormatInt(int64(v), 10))
	case int:
		bin = []byte(strconv.FormatInt(int64(v), 10))
	default:
		return nil, &FieldError{Field: column.Name(), Reason: "expected a number"}
	}
	if len(bin) > int(column.Length) {
		bin = bin[:column.Length]
	}
	return prependSpaces(bin, int(column.Length)), nil
}

func getLogicalRepresentation(value interface{}, column *Column) ([]byte, error) {
	l, ok := value.(bool)
	if !ok {
		return nil, &FieldError{Field: column.Name(), Reason: "expected a boolean"}
	}
	if l {
		return []byte{'T'}, nil
	}
	return []byte{'F'}, nil
}

func getDateRepresentation(value interface{}, column *Column) ([]byte, error) {
	d, ok := value.(time.Time)
	if !ok {
		return nil, &FieldError{Field: column.Name(), Reason: "expected a date"}
	}
	if d.IsZero() {
		return blanks(int(column.Length)), nil
	}
	return []byte(d.Format("20060102")), nil
}

func getDateTimeRepresentation(value interface{}, column *Column) ([]byte, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, &FieldError{Field: column.Name(), Reason: "expected a date"}
	}
	if t.IsZero() {
		return blanks(int(column.Length)), nil
	}
	return dateTimeToRaw(t), nil
}

func getIntegerRepresentation(value interface{}, column *Column) ([]byte, error) {
	var i int32
	switch v := value.(type) {
	case int32:
		i = v
	case int:
		i = int32(v)
	case int64:
		i = int32(v)
	case float64:
		if v >= math.MinInt32 && v <= math.MaxInt32 {
			i = int32(v)
		}
	default:
		return nil, &FieldError{Field: column.Name(), Reason: "expected a number"}
	}
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, uint32(i))
	return raw, nil
}

func getDoubleRepresentation(value interface{}, column *Column) ([]byte, error) {
	var d float64
	switch v := value.(type) {
	case float64:
		d = v
	case int64:
		d = float64(v)
	case int32:
		d = float64(v)
	case int:
		d = float64(v)
	default:
		return nil, &FieldError{Field: column.Name(), Reason: "expected a number"}
	}
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, math.Float64bits(d))
	return raw, nil
}
