package dbffile

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func TestYMD2JD_Epoch(t *testing.T) {
	// The unix epoch is julian day 2440588.
	if jd := YMD2JD(1970, 1, 1); jd != 2440588 {
		t.Errorf("Expected julian day 2440588 for 1970-01-01, got %d", jd)
	}
}

func TestJD2YMD_RoundTrip(t *testing.T) {
	dates := [][3]int{
		{1970, 1, 1},
		{1991, 4, 15},
		{1999, 3, 25},
		{2013, 12, 12},
		{2000, 2, 29},
		{1900, 1, 1},
	}
	for _, date := range dates {
		jd := YMD2JD(date[0], date[1], date[2])
		y, m, d := JD2YMD(jd)
		if y != date[0] || m != date[1] || d != date[2] {
			t.Errorf("Round trip of %v via julian day %d gave %d-%d-%d", date, jd, y, m, d)
		}
	}
}

func TestParseDateTime(t *testing.T) {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint32(raw[:4], uint32(YMD2JD(2013, 12, 12)))
	binary.LittleEndian.PutUint32(raw[4:], uint32(((8*60+30)*60+0)*1000))
	parsed, ok := parseDateTime(raw)
	if !ok {
		t.Fatal("Expected a set datetime")
	}
	want := time.Date(2013, 12, 12, 8, 30, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Errorf("Expected %v, got %v", want, parsed)
	}
}

func TestParseDateTime_Unset(t *testing.T) {
	if _, ok := parseDateTime(blanks(8)); ok {
		t.Error("Expected blank datetime to be unset")
	}
	if _, ok := parseDateTime(make([]byte, 8)); ok {
		t.Error("Expected zero datetime to be unset")
	}
}

func TestDateTimeToRaw_RoundTrip(t *testing.T) {
	want := time.Date(1987, 6, 5, 23, 59, 58, 0, time.UTC)
	parsed, ok := parseDateTime(dateTimeToRaw(want))
	if !ok {
		t.Fatal("Expected a set datetime")
	}
	if !parsed.Equal(want) {
		t.Errorf("Expected %v, got %v", want, parsed)
	}
}

func TestParseDate(t *testing.T) {
	date, ok, err := parseDate([]byte("19990325"))
	if err != nil || !ok {
		t.Fatalf("Expected a set date, got ok=%v err=%v", ok, err)
	}
	want := time.Date(1999, 3, 25, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Errorf("Expected %v, got %v", want, date)
	}
	if _, ok, err := parseDate(blanks(8)); ok || err != nil {
		t.Errorf("Expected blank date to be unset, got ok=%v err=%v", ok, err)
	}
	if _, _, err := parseDate([]byte("1999AB25")); err == nil {
		t.Error("Expected garbage date to fail")
	}
}

func TestParseNumericInt(t *testing.T) {
	i, ok, err := parseNumericInt([]byte("       -42"))
	if err != nil || !ok || i != -42 {
		t.Errorf("Expected -42, got %d (ok=%v err=%v)", i, ok, err)
	}
	if _, ok, err := parseNumericInt(blanks(10)); ok || err != nil {
		t.Errorf("Expected blank numeric to be unset, got ok=%v err=%v", ok, err)
	}
}

func TestParseFloat(t *testing.T) {
	f, ok, err := parseFloat([]byte("   2.92308"))
	if err != nil || !ok || f != 2.92308 {
		t.Errorf("Expected 2.92308, got %v (ok=%v err=%v)", f, ok, err)
	}
}

func TestPaddingHelpers(t *testing.T) {
	if have := appendSpaces([]byte("ab"), 4); !bytes.Equal(have, []byte("ab  ")) {
		t.Errorf("appendSpaces gave %q", have)
	}
	if have := prependSpaces([]byte("ab"), 4); !bytes.Equal(have, []byte("  ab")) {
		t.Errorf("prependSpaces gave %q", have)
	}
	if have := appendSpaces([]byte("abcd"), 4); !bytes.Equal(have, []byte("abcd")) {
		t.Errorf("appendSpaces on exact size gave %q", have)
	}
	if have := blanks(3); !bytes.Equal(have, []byte("   ")) {
		t.Errorf("blanks gave %q", have)
	}
}

func TestCastingHelpers(t *testing.T) {
	if ToString("x") != "x" || ToString(nil) != "" {
		t.Error("ToString mismatch")
	}
	if ToTrimmedString(" x ") != "x" {
		t.Error("ToTrimmedString mismatch")
	}
	if ToInt64(int64(7)) != 7 || ToInt64(int32(7)) != 7 || ToInt64(nil) != 0 {
		t.Error("ToInt64 mismatch")
	}
	if ToInt32(int32(7)) != 7 || ToInt32(int64(7)) != 7 {
		t.Error("ToInt32 mismatch")
	}
	if ToFloat64(2.5) != 2.5 || ToFloat64(int64(2)) != 2 {
		t.Error("ToFloat64 mismatch")
	}
	if !ToBool(true) || ToBool(nil) {
		t.Error("ToBool mismatch")
	}
	now := time.Now()
	if !ToTime(now).Equal(now) || !ToTime(nil).IsZero() {
		t.Error("ToTime mismatch")
	}
}
