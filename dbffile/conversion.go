package dbffile

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"
)

// convert year, month and day to a julian day number
// julian day number -> days since 01-01-4712 BC
func YMD2JD(y, m, d int) int {
	return d - 32075 +
		1461*(y+4800+(m-14)/12)/4 +
		367*(m-2-(m-14)/12*12)/12 -
		3*((y+4900+(m-14)/12)/100)/4
}

// convert julian day number to year, month and day
// julian day number -> days since 01-01-4712 BC
func JD2YMD(date int) (int, int, int) {
	l := date + 68569
	n := 4 * l / 146097
	l = l - (146097*n+3)/4
	y := 4000 * (l + 1) / 1461001
	l = l - 1461*y/4 + 31
	m := 80 * l / 2447
	d := l - 2447*m/80
	l = m / 11
	m = m + 2 - 12*l
	y = 100*(n-49) + y + l
	return y, m, d
}

// parseDate decodes the 8 byte YYYYMMDD wire form. A leading blank means the
// field is unset.
func parseDate(raw []byte) (time.Time, bool, error) {
	if len(raw) == 0 || raw[0] == byte(Blank) {
		return time.Time{}, false, nil
	}
	date, err := time.Parse("20060102", string(raw))
	if err != nil {
		return time.Time{}, false, newError("dbffile-conversion-parsedate-1", err)
	}
	return date, true, nil
}

// parseDateTime decodes the Visual FoxPro wire form, two little-endian
// int32: the julian day number and the milliseconds since midnight.
// The result is interpreted as UTC with second resolution.
func parseDateTime(raw []byte) (time.Time, bool) {
	if len(raw) != 8 || raw[0] == byte(Blank) {
		return time.Time{}, false
	}
	julDat := int(int32(binary.LittleEndian.Uint32(raw[:4])))
	mSec := int(int32(binary.LittleEndian.Uint32(raw[4:])))
	if julDat == 0 && mSec == 0 {
		return time.Time{}, false
	}
	y, m, d := JD2YMD(julDat)
	if y < 0 || y > 9999 {
		return time.Time{}, false
	}
	h := mSec / 3600000
	min := (mSec % 3600000) / 60000
	sec := (mSec % 60000) / 1000
	return time.Date(y, time.Month(m), d, h, min, sec, 0, time.UTC), true
}

// dateTimeToRaw encodes a time as the Visual FoxPro julian day plus
// milliseconds since midnight pair. Sub-second precision is dropped.
func dateTimeToRaw(t time.Time) []byte {
	t = t.UTC()
	raw := make([]byte, 8)
	jd := YMD2JD(t.Year(), int(t.Month()), t.Day())
	millis := ((t.Hour()*60+t.Minute())*60 + t.Second()) * 1000
	binary.LittleEndian.PutUint32(raw[:4], uint32(jd))
	binary.LittleEndian.PutUint32(raw[4:], uint32(millis))
	return raw
}

// parseNumericInt parses the space-padded decimal string of an N field
// without decimal places.
func parseNumericInt(raw []byte) (int64, bool, error) {
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) == 0 {
		return 0, false, nil
	}
	i, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, false, newError("dbffile-conversion-parsenumericint-1", err)
	}
	return i, true, nil
}

// parseFloat parses the space-padded decimal string of an N or F field.
func parseFloat(raw []byte) (float64, bool, error) {
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) == 0 {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false, newError("dbffile-conversion-parsefloat-1", err)
	}
	return f, true, nil
}

// appendSpaces pads raw with trailing blanks up to length.
func appendSpaces(raw []byte, length int) []byte {
	if len(raw) >= length {
		return raw
	}
	out := make([]byte, length)
	copy(out, raw)
	for i := len(raw); i < length; i++ {
		out[i] = byte(Blank)
	}
	return out
}

// prependSpaces pads raw with leading blanks up to length.
func prependSpaces(raw []byte, length int) []byte {
	if len(raw) >= length {
		return raw
	}
	out := make([]byte, length)
	pad := length - len(raw)
	for i := 0; i < pad; i++ {
		out[i] = byte(Blank)
	}
	copy(out[pad:], raw)
	return out
}

// blanks returns length blank bytes.
func blanks(length int) []byte {
	out := make([]byte, length)
	for i := range out {
		out[i] = byte(Blank)
	}
	return out
}

/**
 *	################################################################
 *	#		casting helper functions for record values
 *	################################################################
 */

// ToString always returns a string
func ToString(in interface{}) string {
	if str, ok := in.(string); ok {
		return str
	}
	return ""
}

// ToTrimmedString always returns a string with spaces trimmed
func ToTrimmedString(in interface{}) string {
	if str, ok := in.(string); ok {
		return strings.TrimSpace(str)
	}
	return ""
}

// ToInt64 always returns an int64
func ToInt64(in interface{}) int64 {
	switch i := in.(type) {
	case int64:
		return i
	case int32:
		return int64(i)
	case int:
		return int64(i)
	}
	return 0
}

// ToInt32 always returns an int32
func ToInt32(in interface{}) int32 {
	switch i := in.(type) {
	case int32:
		return i
	case int64:
		return int32(i)
	case int:
		return int32(i)
	}
	return 0
}

// ToFloat64 always returns a float64
func ToFloat64(in interface{}) float64 {
	switch f := in.(type) {
	case float64:
		return f
	case int64:
		return float64(f)
	case int32:
		return float64(f)
	}
	return 0.0
}

// ToTime always returns a time.Time
func ToTime(in interface{}) time.Time {
	if t, ok := in.(time.Time); ok {
		return t
	}
	return time.Time{}
}

// ToBool always returns a boolean
func ToBool(in interface{}) bool {
	if b, ok := in.(bool); ok {
		return b
	}
	return false
}
