package dbffile

import (
	"fmt"
	"strings"

	"github.com/axgle/mahonia"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultEncodingLabel is used whenever no encoding is configured.
// Field names in the descriptor table are always ISO-8859-1, regardless of
// the data encoding.
const DefaultEncodingLabel = "ISO-8859-1"

// Encoding selects the character set of the table data, either one label for
// the whole file or a label per field with a default for the rest.
// The zero value means ISO-8859-1 everywhere.
type Encoding struct {
	def    string
	fields map[string]string
}

// NewEncoding returns an Encoding using one label for every field.
func NewEncoding(label string) Encoding {
	return Encoding{def: label}
}

// NewFieldEncoding returns an Encoding with per-field labels. Fields not
// present in the map use def.
func NewFieldEncoding(def string, fields map[string]string) Encoding {
	return Encoding{def: def, fields: fields}
}

// Label resolves the encoding label for the named field.
func (e Encoding) Label(field string) string {
	if label, ok := e.fields[field]; ok {
		return label
	}
	if len(e.def) != 0 {
		return e.def
	}
	return DefaultEncodingLabel
}

// EncodingConverter converts between the encoding named by a label and UTF-8.
// Implement it to plug in a custom transcoding backend.
type EncodingConverter interface {
	Decode(in []byte, label string) ([]byte, error)
	Encode(in []byte, label string) ([]byte, error)
}

// DefaultConverter resolves labels against the x/text encoding index, with a
// table of the charset aliases commonly found around dBase tooling, and falls
// back to mahonia for names the index does not know.
type DefaultConverter struct{}

// Decode converts a byte slice in the labeled encoding to a UTF-8 byte slice.
func (c DefaultConverter) Decode(in []byte, label string) ([]byte, error) {
	if enc := lookupEncoding(label); enc != nil {
		data, _, err := transform.Bytes(enc.NewDecoder(), in)
		if err != nil {
			return nil, newError("dbffile-encoding-decode-1", err)
		}
		return data, nil
	}
	if d := mahonia.NewDecoder(label); d != nil {
		return []byte(d.ConvertString(string(in))), nil
	}
	return nil, newError("dbffile-encoding-decode-2", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, label))
}

// Encode converts a UTF-8 byte slice to the labeled encoding.
func (c DefaultConverter) Encode(in []byte, label string) ([]byte, error) {
	if enc := lookupEncoding(label); enc != nil {
		data, _, err := transform.Bytes(enc.NewEncoder(), in)
		if err != nil {
			return nil, newError("dbffile-encoding-encode-1", err)
		}
		return data, nil
	}
	if e := mahonia.NewEncoder(label); e != nil {
		return []byte(e.ConvertString(string(in))), nil
	}
	return nil, newError("dbffile-encoding-encode-2", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, label))
}

// lookupEncoding resolves an encoding label to an x/text encoding, or nil.
func lookupEncoding(label string) encoding.Encoding {
	switch normalizeLabel(label) {
	case "latin1", "iso88591", "88591":
		return charmap.ISO8859_1
	case "cp437", "ibm437": // U.S. MS-DOS
		return charmap.CodePage437
	case "cp850", "ibm850": // International MS-DOS
		return charmap.CodePage850
	case "cp852", "ibm852": // Eastern European MS-DOS
		return charmap.CodePage852
	case "cp865", "ibm865": // Nordic MS-DOS
		return charmap.CodePage865
	case "cp866", "ibm866": // Russian MS-DOS
		return charmap.CodePage866
	case "tis620", "cp874", "windows874": // Thai Windows
		return charmap.Windows874
	case "cp1250", "windows1250": // Central European Windows
		return charmap.Windows1250
	case "cp1251", "windows1251": // Russian Windows
		return charmap.Windows1251
	case "cp1252", "windows1252", "ansi": // Windows ANSI
		return charmap.Windows1252
	case "cp1253", "windows1253": // Greek Windows
		return charmap.Windows1253
	case "cp1254", "windows1254": // Turkish Windows
		return charmap.Windows1254
	case "cp1255", "windows1255": // Hebrew Windows
		return charmap.Windows1255
	case "cp1256", "windows1256": // Arabic Windows
		return charmap.Windows1256
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil
	}
	return enc
}

func normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.ReplaceAll(label, "-", "")
	label = strings.ReplaceAll(label, "_", "")
	label = strings.ReplaceAll(label, " ", "")
	return label
}

// toUTF8String converts a byte slice in the labeled encoding to a string.
func toUTF8String(raw []byte, label string, converter EncodingConverter) (string, error) {
	utf8, err := converter.Decode(raw, label)
	if err != nil {
		return string(raw), newError("dbffile-encoding-toutf8string-1", err)
	}
	return string(utf8), nil
}

// fromUTF8String converts a string to a byte slice in the labeled encoding.
func fromUTF8String(str string, label string, converter EncodingConverter) ([]byte, error) {
	raw, err := converter.Encode([]byte(str), label)
	if err != nil {
		return nil, newError("dbffile-encoding-fromutf8string-1", err)
	}
	return raw, nil
}
