package dbffile

import (
	"path/filepath"
	"strings"
	"time"
)

// Header is the fixed 32 byte prelude of the table file.
// Integers are stored with the least significant byte first.
type Header struct {
	FileType     byte     // File type flag
	Year         uint8    // Last update year, stored as year - 1900
	Month        uint8    // Last update month
	Day          uint8    // Last update day
	RecordsCount uint32   // Number of records in the file
	HeaderLength uint16   // Position of the first data record
	RecordLength uint16   // Length of one record, including the delete flag
	Reserved     [20]byte // Reserved
}

// Version returns the file type flag.
func (h *Header) Version() FileVersion {
	return FileVersion(h.FileType)
}

// Modified parses the last update year, month and day to time.Time.
// The year byte holds year-1900, so 0-99 map to 1900-1999 and 100-255 map
// to 2000-2155. The month byte is passed through verbatim; files written by
// tooling that used 0-based months are not corrected.
func (h *Header) Modified() time.Time {
	return time.Date(1900+int(h.Year), time.Month(h.Month), int(h.Day), 0, 0, 0, 0, time.UTC)
}

// setModified stamps the last update date, month and day 1-based.
func (h *Header) setModified(t time.Time) {
	h.Year = uint8(t.Year() - 1900)
	h.Month = uint8(t.Month())
	h.Day = uint8(t.Day())
}

// ColumnsCount returns the number of field descriptors the header length
// accounts for, without reading the descriptors themselves.
func (h *Header) ColumnsCount() uint16 {
	if h.HeaderLength < 34 {
		return 0
	}
	return (h.HeaderLength - 34) / 32
}

// expectedRecordLength is the delete flag plus the sum of the field sizes.
func expectedRecordLength(columns []*Column) uint16 {
	length := uint16(1)
	for _, column := range columns {
		length += uint16(column.Length)
	}
	return length
}

// memoCandidates lists the possible memo file paths for a table path, in
// probing order. dBase versions use the .dbt extension. Visual FoxPro uses
// .fpt for .dbf tables; for any other extension the last character is
// replaced with a t (.pjx -> .pjt).
func memoCandidates(path string, version FileVersion) []string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	switch version {
	case DBaseIIIMemo, DBaseIVMemo:
		return []string{stem + ".dbt", stem + ".DBT"}
	case VisualFoxPro:
		if strings.EqualFold(ext, string(DBF)) {
			return []string{stem + ".fpt", stem + ".FPT"}
		}
		if len(ext) > 1 {
			base := path[:len(path)-1]
			return []string{base + "t", base + "T"}
		}
	}
	return nil
}

// resolveMemoPath locates the companion memo file on disk, or returns ""
// when none of the candidates exist.
func resolveMemoPath(path string, version FileVersion, io IO) string {
	for _, candidate := range memoCandidates(path, version) {
		if _, err := io.Stat(candidate); err == nil {
			debugf("Found memo file: %s", candidate)
			return candidate
		}
	}
	return ""
}
