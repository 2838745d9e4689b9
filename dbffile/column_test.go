package dbffile

import (
	"errors"
	"testing"
)

func mustColumn(t *testing.T, name string, dataType DataType, length uint8, decimals uint8) *Column {
	t.Helper()
	column, err := NewColumn(name, dataType, length, decimals)
	if err != nil {
		t.Fatalf("NewColumn(%q) failed: %v", name, err)
	}
	return column
}

func TestNewColumn_FixedSizes(t *testing.T) {
	expected := map[DataType]uint8{
		Logical:  1,
		Integer:  4,
		Date:     8,
		DateTime: 8,
		Double:   8,
		Memo:     10,
	}
	for dataType, want := range expected {
		column := mustColumn(t, "F", dataType, 99, 0)
		if column.Length != want {
			t.Errorf("Expected type %s to have length %d, got %d", dataType, want, column.Length)
		}
	}
}

func TestNewColumn_Name(t *testing.T) {
	column := mustColumn(t, "AFCLPD", Character, 10, 0)
	if column.Name() != "AFCLPD" {
		t.Errorf("Expected AFCLPD, got %q", column.Name())
	}
	if column.WorkAreaID != 1 {
		t.Errorf("Expected work area id 1, got %d", column.WorkAreaID)
	}
	if _, err := NewColumn("", Character, 10, 0); err == nil {
		t.Error("Expected empty name to fail")
	}
	if _, err := NewColumn("TOOLONGNAME", Character, 10, 0); err == nil {
		t.Error("Expected an 11 byte name to fail")
	}
}

func TestColumn_Validate(t *testing.T) {
	cases := []struct {
		name     string
		dataType DataType
		length   uint8
		decimals uint8
		version  FileVersion
		ok       bool
	}{
		{"C_OK", Character, 255, 0, DBaseIII, true},
		{"C_ZERO", Character, 0, 0, DBaseIII, false},
		{"N_OK", Numeric, 20, 15, DBaseIII, true},
		{"N_LONG", Numeric, 21, 0, DBaseIII, false},
		{"N_DEC", Numeric, 20, 16, DBaseIII, false},
		{"N_DEC4", Numeric, 20, 18, DBaseIVMemo, true},
		{"N_DEC4X", Numeric, 20, 19, DBaseIVMemo, false},
		{"F_OK", Float, 20, 2, DBaseIII, true},
		{"L_OK", Logical, 1, 0, DBaseIII, true},
		{"L_BAD", Logical, 2, 0, DBaseIII, false},
		{"D_OK", Date, 8, 0, DBaseIII, true},
		{"D_BAD", Date, 4, 0, DBaseIII, false},
		{"I_OK", Integer, 4, 0, VisualFoxPro, true},
		{"I_BAD", Integer, 8, 0, VisualFoxPro, false},
		{"T_OK", DateTime, 8, 0, VisualFoxPro, true},
		{"B_OK", Double, 8, 0, VisualFoxPro, true},
		{"M_OK", Memo, 10, 0, DBaseIIIMemo, true},
		{"M_VFP", Memo, 4, 0, VisualFoxPro, true},
		{"M_BAD", Memo, 4, 0, DBaseIIIMemo, false},
	}
	for _, c := range cases {
		column := &Column{DataType: byte(c.dataType), Length: c.length, Decimals: c.decimals}
		copy(column.FieldName[:], c.name)
		err := column.validate(c.version)
		if c.ok && err != nil {
			t.Errorf("%s: expected valid, got %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected invalid", c.name)
		}
	}
}

func TestColumn_ValidateUnknownType(t *testing.T) {
	column := &Column{DataType: 'Y', Length: 8}
	copy(column.FieldName[:], "CURR")
	if err := column.validate(VisualFoxPro); !errors.Is(err, ErrUnsupportedFieldType) {
		t.Errorf("Expected ErrUnsupportedFieldType, got %v", err)
	}
}

func TestValidateColumns_DuplicateName(t *testing.T) {
	columns := []*Column{
		mustColumn(t, "Point_ID", Character, 10, 0),
		mustColumn(t, "Point_ID", Numeric, 10, 0),
	}
	err := validateColumns(columns, DBaseIII, false)
	if err == nil {
		t.Fatal("Expected duplicate name to fail")
	}
	var dup *DuplicateFieldNameError
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateFieldNameError, got %T", err)
	}
	if want := "Duplicate field name: 'Point_ID'"; err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestValidateColumns_MemoCreate(t *testing.T) {
	columns := []*Column{mustColumn(t, "DESC", Memo, 10, 0)}
	err := validateColumns(columns, DBaseIIIMemo, true)
	if !errors.Is(err, ErrMemoWriteUnsupported) {
		t.Fatalf("Expected ErrMemoWriteUnsupported, got %v", err)
	}
	if want := "Writing to files with memo fields is not supported."; err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
	if err := validateColumns(columns, DBaseIIIMemo, false); err != nil {
		t.Errorf("Expected memo column to be valid on read, got %v", err)
	}
}

func TestColumn_NameEncoding(t *testing.T) {
	column := &Column{}
	column.FieldName[0] = 0xC9 // É in ISO-8859-1
	if column.Name() != "É" {
		t.Errorf("Expected É, got %q", column.Name())
	}
}
