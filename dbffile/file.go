package dbffile

import (
	"context"
	"fmt"
	"math"
	"time"
)

// File is an open dBase table. It owns the read cursor and the record
// count; no OS file handle is held between calls. A File is meant for one
// logical user, calls on the same File must be serialized by the caller.
// Two Files reading the same table concurrently are safe.
type File struct {
	path      string
	version   FileVersion
	header    *Header
	columns   []*Column
	memoPath  string
	config    *Config
	encoding  Encoding
	converter EncodingConverter
	cursor    uint32 // next record to return, 0-based
}

// Open opens an existing table. In strict mode (the default) an unknown
// file version, a missing memo file, a duplicate or invalid field
// descriptor and a record length mismatch are all fatal. Loose mode tolerates
// all of these: it skips descriptor validation (unknown field types are kept
// undecoded) and uses the record length computed from the field sizes.
// A missing header terminator is fatal in both modes.
func Open(path string, config *Config) (*File, error) {
	config = config.normalize()
	debugf("Opening table: %s - Mode: %v - Include deleted: %v", path, config.ReadMode, config.IncludeDeleted)
	file := &File{
		path:      path,
		config:    config,
		encoding:  config.Encoding,
		converter: config.Converter,
	}
	handle, err := config.IO.Open(path)
	if err != nil {
		return nil, newError("dbffile-file-open-1", err)
	}
	defer handle.Close()

	if err := file.readHeader(handle); err != nil {
		return nil, err
	}
	file.version = file.header.Version()
	if config.ReadMode == ReadModeStrict && !file.version.Supported() {
		return nil, newError("dbffile-file-open-2", fmt.Errorf("%w: 0x%02x", ErrUnsupportedVersion, byte(file.version)))
	}
	columns, err := file.readColumns(handle)
	if err != nil {
		return nil, err
	}
	if config.ReadMode == ReadModeStrict {
		if err := validateColumns(columns, file.version, false); err != nil {
			return nil, err
		}
	}
	file.columns = columns

	expected := expectedRecordLength(columns)
	if file.header.RecordLength != expected {
		if config.ReadMode == ReadModeStrict {
			return nil, newError("dbffile-file-open-3", fmt.Errorf("%w: header says %v, field sizes say %v", ErrWrongRecordLength, file.header.RecordLength, expected))
		}
		debugf("Overriding record length %v with computed %v", file.header.RecordLength, expected)
		file.header.RecordLength = expected
	}

	if file.version.HasMemo() {
		file.memoPath = resolveMemoPath(path, file.version, config.IO)
		if len(file.memoPath) == 0 && config.ReadMode == ReadModeStrict {
			return nil, newError("dbffile-file-open-4", fmt.Errorf("%w for table: %s", ErrMissingMemoFile, path))
		}
	}
	return file, nil
}

// Create creates a new table with the given columns. It fails when the file
// already exists, when a column is a memo field (memo writes are not
// supported) or when a descriptor violates the per-type size rules.
func Create(path string, columns []*Column, config *CreateConfig) (*File, error) {
	cfg := config.normalize()
	debugf("Creating table: %s - Version: 0x%02x", path, byte(cfg.Version))
	if len(columns) == 0 {
		return nil, newErrorf("dbffile-file-create-1", "no columns defined")
	}
	if !cfg.Version.Supported() {
		return nil, newError("dbffile-file-create-2", fmt.Errorf("%w: 0x%02x", ErrUnsupportedVersion, byte(cfg.Version)))
	}
	if err := validateColumns(columns, cfg.Version, true); err != nil {
		return nil, err
	}
	header := &Header{
		FileType:     byte(cfg.Version),
		HeaderLength: 34 + 32*uint16(len(columns)),
		RecordLength: expectedRecordLength(columns),
	}
	header.setModified(time.Now())
	file := &File{
		path:    path,
		version: cfg.Version,
		header:  header,
		columns: columns,
		config: &Config{
			Encoding:  cfg.Encoding,
			Converter: cfg.Converter,
			Exclusive: cfg.Exclusive,
			IO:        cfg.IO,
		},
		encoding:  cfg.Encoding,
		converter: cfg.Converter,
	}
	handle, err := cfg.IO.Create(path)
	if err != nil {
		return nil, newError("dbffile-file-create-3", err)
	}
	defer handle.Close()
	if err := file.writeNew(handle); err != nil {
		return nil, err
	}
	return file, nil
}

// ReadRecords returns up to max records starting at the read cursor and
// advances the cursor past the records scanned. Deleted records are
// filtered out unless the file was opened with IncludeDeleted; included
// ones carry DeletedKey. A max of zero or less reads everything remaining.
func (f *File) ReadRecords(max int) ([]Record, error) {
	if max <= 0 {
		max = math.MaxInt
	}
	return f.readRecords(max)
}

// AppendRecords validates, encodes and writes the records after the last
// record of the table, then updates the record count. Returns the File for
// chaining.
func (f *File) AppendRecords(records []Record) (*File, error) {
	if err := f.appendRecords(records); err != nil {
		return nil, err
	}
	return f, nil
}

// StreamItem is one element of the channel returned by Stream: a record or
// a terminal error.
type StreamItem struct {
	Record Record
	Err    error
}

// streamChunk is the number of records fetched per iteration step.
const streamChunk = 100

// Stream reads the remaining records in chunks and yields them on the
// returned channel until the cursor reaches the record count, an error
// occurs or the context is canceled. The channel is closed afterwards.
// The cursor advances by a whole chunk when it is read, so a cancellation
// while a chunk is being delivered leaves the cursor past records of that
// chunk that were not sent; a cancellation seen before the next read leaves
// the cursor where the last delivered chunk ended.
func (f *File) Stream(ctx context.Context) <-chan StreamItem {
	out := make(chan StreamItem)
	go func() {
		defer close(out)
		for f.cursor < f.header.RecordsCount {
			if ctx.Err() != nil {
				return
			}
			records, err := f.ReadRecords(streamChunk)
			if err != nil {
				select {
				case out <- StreamItem{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			for _, record := range records {
				select {
				case out <- StreamItem{Record: record}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Path returns the path the table was opened or created with.
func (f *File) Path() string {
	return f.path
}

// Version returns the file type flag of the table.
func (f *File) Version() FileVersion {
	return f.version
}

// Header returns the table header for inspecting.
func (f *File) Header() *Header {
	return f.header
}

// RecordCount returns the number of records in the table, including
// deleted ones.
func (f *File) RecordCount() uint32 {
	return f.header.RecordsCount
}

// LastUpdated returns the last update date from the header.
func (f *File) LastUpdated() time.Time {
	return f.header.Modified()
}

// Columns returns the field descriptors in declared order.
func (f *File) Columns() []*Column {
	return f.columns
}

// ColumnNames returns the names of all columns in declared order.
func (f *File) ColumnNames() []string {
	names := make([]string, len(f.columns))
	for i, column := range f.columns {
		names[i] = column.Name()
	}
	return names
}

// MemoPath returns the path of the companion memo file, or "" when the
// table has none (or it is missing and the file was opened loose).
func (f *File) MemoPath() string {
	return f.memoPath
}

// Pointer returns the read cursor, the 0-based position of the next record
// to return.
func (f *File) Pointer() uint32 {
	return f.cursor
}

// EOF reports whether the read cursor is past the last record.
func (f *File) EOF() bool {
	return f.cursor >= f.header.RecordsCount
}
