package dbffile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// dBase IV memo blocks start with this magic followed by the total length.
const dbase4MemoMagic uint32 = 0x0008FFFF

// defaultMemoBlockSize is used when the memo header carries no block size.
const defaultMemoBlockSize = 512

// memoFile is the open state of a companion memo file for the duration of
// one ReadRecords call: the handle, the block size and a reusable block buffer.
type memoFile struct {
	handle    Handle
	version   FileVersion
	blockSize int
	size      int64
	block     []byte
}

// openMemo opens the memo file and discovers the block size from its header.
// The block size field moves with the file version: Visual FoxPro keeps a
// big-endian uint16 at offset 6, dBase IV a little-endian int32 at offset 4
// and dBase III has no field at all, its blocks are always 512 bytes.
func openMemo(fs IO, path string, version FileVersion) (*memoFile, error) {
	size, err := fs.Stat(path)
	if err != nil {
		return nil, newError("dbffile-memo-open-1", err)
	}
	handle, err := fs.Open(path)
	if err != nil {
		return nil, newError("dbffile-memo-open-2", err)
	}
	m := &memoFile{
		handle:    handle,
		version:   version,
		blockSize: defaultMemoBlockSize,
		size:      size,
	}
	switch version {
	case VisualFoxPro:
		header := make([]byte, 8)
		if _, err := handle.ReadAt(header, 0); err != nil {
			handle.Close()
			return nil, newError("dbffile-memo-open-3", err)
		}
		if blockSize := binary.BigEndian.Uint16(header[6:8]); blockSize != 0 {
			m.blockSize = int(blockSize)
		}
	case DBaseIVMemo:
		header := make([]byte, 8)
		if _, err := handle.ReadAt(header, 0); err != nil {
			handle.Close()
			return nil, newError("dbffile-memo-open-4", err)
		}
		if blockSize := int32(binary.LittleEndian.Uint32(header[4:8])); blockSize > 0 {
			m.blockSize = int(blockSize)
		}
	}
	debugf("Opened memo file %s - block size: %d", path, m.blockSize)
	m.block = make([]byte, m.blockSize)
	return m, nil
}

func (m *memoFile) Close() error {
	return m.handle.Close()
}

// Read resolves a block index into the full memo data, spanning as many
// blocks as the entry needs. The returned bytes are not transcoded; isText
// reports whether they hold text (always true for the dBase framings, the
// type word decides for Visual FoxPro).
func (m *memoFile) Read(block int) ([]byte, bool, error) {
	position := int64(block) * int64(m.blockSize)
	if position >= m.size {
		return nil, false, newError("dbffile-memo-read-1", fmt.Errorf("%w: block %d at %d >= %d", ErrMemoReadPastEnd, block, position, m.size))
	}
	debugf("Reading memo block %d at position %d", block, position)
	switch m.version {
	case DBaseIIIMemo:
		return m.readTerminated(position)
	case DBaseIVMemo:
		return m.readDBaseIV(position)
	case VisualFoxPro:
		return m.readFoxPro(position)
	}
	return nil, false, newErrorf("dbffile-memo-read-2", "no memo framing for file version 0x%02x", byte(m.version))
}

// readTerminated scans block by block for the 0x1A terminator. FoxPro-written
// dBase III files terminate with 0x1A 0x1A; searching for a single 0x1A
// subsumes both.
func (m *memoFile) readTerminated(position int64) ([]byte, bool, error) {
	data := make([]byte, 0, m.blockSize)
	for {
		n, err := m.handle.ReadAt(m.block, position)
		if err != nil && err != io.EOF {
			return nil, false, newError("dbffile-memo-readterminated-1", err)
		}
		if n == 0 {
			break
		}
		chunk := m.block[:n]
		if idx := bytes.IndexByte(chunk, byte(EOFMarker)); idx >= 0 {
			data = append(data, chunk[:idx]...)
			break
		}
		data = append(data, chunk...)
		if err == io.EOF {
			break
		}
		position += int64(n)
	}
	return data, true, nil
}

// readDBaseIV reads the magic plus length header and then length-8 payload
// bytes; the length word includes the 8 byte header itself.
func (m *memoFile) readDBaseIV(position int64) ([]byte, bool, error) {
	header := make([]byte, 8)
	if _, err := m.handle.ReadAt(header, position); err != nil {
		return nil, false, newError("dbffile-memo-readdbaseiv-1", err)
	}
	if magic := binary.LittleEndian.Uint32(header[:4]); magic != dbase4MemoMagic {
		debugf("Unexpected memo block magic 0x%08x at position %d", magic, position)
	}
	length := binary.LittleEndian.Uint32(header[4:8])
	if length <= 8 {
		return []byte{}, true, nil
	}
	data := make([]byte, length-8)
	if _, err := m.handle.ReadAt(data, position+8); err != nil {
		return nil, false, newError("dbffile-memo-readdbaseiv-2", fmt.Errorf("%w: %v", ErrIncomplete, err))
	}
	return data, true, nil
}

// readFoxPro reads the big-endian type and length words. Only text entries
// (type 1) are resolved; anything else stops immediately.
func (m *memoFile) readFoxPro(position int64) ([]byte, bool, error) {
	header := make([]byte, 8)
	if _, err := m.handle.ReadAt(header, position); err != nil {
		return nil, false, newError("dbffile-memo-readfoxpro-1", err)
	}
	sign := binary.BigEndian.Uint32(header[:4])
	length := binary.BigEndian.Uint32(header[4:8])
	debugf("Memo block header => text: %v, length: %d", sign == 1, length)
	if sign != 1 {
		return nil, false, nil
	}
	if length == 0 {
		return []byte{}, true, nil
	}
	data := make([]byte, length)
	if _, err := m.handle.ReadAt(data, position+8); err != nil {
		return nil, false, newError("dbffile-memo-readfoxpro-2", fmt.Errorf("%w: %v", ErrIncomplete, err))
	}
	return data, true, nil
}
