package dbffile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Handle is an open file supporting random access. Every public operation
// obtains a fresh handle from the IO implementation and closes it before
// returning; no handle is held across calls.
type Handle interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
}

// IO is the filesystem capability the package works through. The default is
// direct file access via OSIO; an in-memory implementation can be plugged in
// for testing.
type IO interface {
	// Open opens an existing file for reading.
	Open(name string) (Handle, error)
	// OpenFile opens an existing file for reading and writing.
	OpenFile(name string) (Handle, error)
	// Create creates a new file for reading and writing. It fails when the
	// file already exists.
	Create(name string) (Handle, error)
	// Stat returns the size of the file in bytes.
	Stat(name string) (int64, error)
}

// OSIO implements IO with direct file access. With Exclusive set, every
// handle takes an advisory whole-file lock for the duration of the call.
type OSIO struct {
	Exclusive bool
}

func (o OSIO) Open(name string) (Handle, error) {
	handle, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return o.lock(handle)
}

func (o OSIO) OpenFile(name string) (Handle, error) {
	handle, err := os.OpenFile(name, os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	return o.lock(handle)
}

func (o OSIO) Create(name string) (Handle, error) {
	handle, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}
	return o.lock(handle)
}

func (o OSIO) Stat(name string) (int64, error) {
	info, err := os.Stat(name)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (o OSIO) lock(handle *os.File) (Handle, error) {
	if !o.Exclusive {
		return handle, nil
	}
	if err := lockFile(handle); err != nil {
		handle.Close()
		return nil, newError("dbffile-io-lock-1", err)
	}
	// The lock is released when the handle is closed.
	return handle, nil
}

// recordBatch is the number of records buffered per read.
const recordBatch = 1000

// readHeader reads the fixed 32 byte prelude.
func (f *File) readHeader(handle Handle) error {
	debugf("Reading header...")
	b := make([]byte, 32)
	if _, err := handle.ReadAt(b, 0); err != nil {
		return newError("dbffile-io-readheader-1", err)
	}
	h := &Header{}
	// LittleEndian - Integers in table files are stored with the least significant byte first.
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, h); err != nil {
		return newError("dbffile-io-readheader-2", err)
	}
	f.header = h
	return nil
}

// readColumns iterates the field descriptor array until the terminator byte
// or the end of the header region. A missing terminator is an error.
func (f *File) readColumns(handle Handle) ([]*Column, error) {
	debugf("Reading columns...")
	columns := make([]*Column, 0)
	offset := int64(32)
	b := make([]byte, 1)
	buf := make([]byte, 32)
	for {
		// Check if we are at 0x0D by reading one byte ahead
		if _, err := handle.ReadAt(b, offset); err != nil {
			return nil, newError("dbffile-io-readcolumns-1", err)
		}
		if Marker(b[0]) == ColumnEnd {
			break
		}
		if f.header.HeaderLength != 0 && offset+32 > int64(f.header.HeaderLength) {
			return nil, newError("dbffile-io-readcolumns-2", ErrBadHeaderTerminator)
		}
		if _, err := handle.ReadAt(buf, offset); err != nil {
			return nil, newError("dbffile-io-readcolumns-3", err)
		}
		column := &Column{}
		if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, column); err != nil {
			return nil, newError("dbffile-io-readcolumns-4", err)
		}
		debugf("Found column %v of type %v at offset: %d", column.Name(), column.Type(), offset)
		columns = append(columns, column)
		offset += 32
	}
	return columns, nil
}

// writeNew emits the header, the field descriptors, the terminator, one
// padding byte and the end-of-file marker of a freshly created table.
func (f *File) writeNew(handle Handle) error {
	debugf("Writing header and columns: %+v", f.header)
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, f.header); err != nil {
		return newError("dbffile-io-writenew-1", err)
	}
	for _, column := range f.columns {
		debugf("Writing column: %+v", column)
		if err := binary.Write(buf, binary.LittleEndian, column); err != nil {
			return newError("dbffile-io-writenew-2", err)
		}
	}
	buf.WriteByte(byte(ColumnEnd))
	buf.WriteByte(byte(Null))
	buf.WriteByte(byte(EOFMarker))
	if _, err := handle.WriteAt(buf.Bytes(), 0); err != nil {
		return newError("dbffile-io-writenew-3", err)
	}
	return nil
}

// readRecords drives the batched read loop. The cursor advances by the
// number of records scanned; max bounds the number of records returned.
func (f *File) readRecords(max int) ([]Record, error) {
	handle, err := f.config.IO.Open(f.path)
	if err != nil {
		return nil, newError("dbffile-io-readrecords-1", err)
	}
	defer handle.Close()

	var memo *memoFile
	if f.hasMemoColumn() && len(f.memoPath) != 0 {
		memo, err = openMemo(f.config.IO, f.memoPath, f.version)
		if err != nil {
			return nil, newError("dbffile-io-readrecords-2", err)
		}
		defer memo.Close()
	}

	recordLength := int(f.header.RecordLength)
	position := int64(f.header.HeaderLength) + int64(f.cursor)*int64(recordLength)
	buf := make([]byte, recordBatch*recordLength)
	out := make([]Record, 0)
	for {
		remainingInFile := int(f.header.RecordsCount) - int(f.cursor)
		remainingInRequest := max - len(out)
		batch := min(remainingInFile, remainingInRequest, recordBatch)
		if batch <= 0 {
			break
		}
		n := batch * recordLength
		debugf("Reading %d records at offset %d", batch, position)
		if _, err := handle.ReadAt(buf[:n], position); err != nil {
			return nil, newError("dbffile-io-readrecords-3", fmt.Errorf("%w: %v", ErrIncomplete, err))
		}
		f.cursor += uint32(batch)
		position += int64(n)
		for i := 0; i < batch; i++ {
			frame := buf[i*recordLength : (i+1)*recordLength]
			deleted := Marker(frame[0]) == Deleted
			if deleted && !f.config.IncludeDeleted {
				continue
			}
			record, err := f.decodeRecord(frame, memo)
			if err != nil {
				return nil, newError("dbffile-io-readrecords-4", err)
			}
			if deleted {
				record[DeletedKey] = true
			}
			out = append(out, record)
		}
	}
	return out, nil
}

// appendRecords encodes and writes the record frames after the last record,
// rewrites the end-of-file marker and updates the record count in the
// header. The in-memory count changes only after every frame is on disk, so
// a partial append is overwritten by the next one.
func (f *File) appendRecords(records []Record) error {
	handle, err := f.config.IO.OpenFile(f.path)
	if err != nil {
		return newError("dbffile-io-appendrecords-1", err)
	}
	defer handle.Close()

	recordLength := int(f.header.RecordLength)
	position := int64(f.header.HeaderLength) + int64(f.header.RecordsCount)*int64(recordLength)
	frame := make([]byte, recordLength)
	for _, record := range records {
		if err := f.encodeRecord(record, frame); err != nil {
			return err
		}
		debugf("Writing record at offset %d", position)
		if _, err := handle.WriteAt(frame, position); err != nil {
			return newError("dbffile-io-appendrecords-2", err)
		}
		position += int64(recordLength)
	}
	if _, err := handle.WriteAt([]byte{byte(EOFMarker)}, position); err != nil {
		return newError("dbffile-io-appendrecords-3", err)
	}
	f.header.RecordsCount += uint32(len(records))
	count := make([]byte, 4)
	binary.LittleEndian.PutUint32(count, f.header.RecordsCount)
	if _, err := handle.WriteAt(count, 4); err != nil {
		return newError("dbffile-io-appendrecords-4", err)
	}
	return nil
}

func (f *File) hasMemoColumn() bool {
	for _, column := range f.columns {
		if column.Type() == Memo {
			return true
		}
	}
	return false
}
