package dbffile

// Record maps column names to typed values. The value for a column is one
// of string, int64, float64, bool, time.Time, int32 or nil for an unset
// field. Deleted records additionally carry DeletedKey set to true.
type Record map[string]interface{}

// IsDeleted reports whether the record carries the deleted marker.
func (r Record) IsDeleted() bool {
	deleted, _ := r[DeletedKey].(bool)
	return deleted
}

// decodeRecord converts one record frame to a Record. The first frame byte
// is the delete flag, the fields follow in declared order. Columns of an
// unknown type (retained in loose mode) are skipped by their declared size
// and yield no key. All values are copies, the frame buffer may be reused.
func (f *File) decodeRecord(frame []byte, memo *memoFile) (Record, error) {
	record := make(Record, len(f.columns))
	offset := 1
	for _, column := range f.columns {
		width := int(column.Length)
		if offset+width > len(frame) {
			return nil, newErrorf("dbffile-record-decoderecord-1", "record frame too short for column field: %v", column.Name())
		}
		if !column.Type().Supported() {
			offset += width
			continue
		}
		value, err := f.interpret(frame[offset:offset+width], column, memo)
		if err != nil {
			return nil, err
		}
		record[column.Name()] = value
		offset += width
	}
	return record, nil
}

// encodeRecord fills frame with the wire form of the record: the live
// delete flag followed by each field in declared order. Missing and nil
// values take the blank form of their type.
func (f *File) encodeRecord(record Record, frame []byte) error {
	frame[0] = byte(Active)
	offset := 1
	for _, column := range f.columns {
		raw, err := f.represent(record[column.Name()], column)
		if err != nil {
			return err
		}
		copy(frame[offset:offset+int(column.Length)], raw)
		offset += int(column.Length)
	}
	return nil
}
