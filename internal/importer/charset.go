package importer

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding is a text encoding found in store exports.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingISO88591    Encoding = "iso-8859-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectEncoding returns UTF-8 for valid UTF-8 input (with or without BOM)
// and Windows-1252 otherwise, which is what spreadsheet exports on Windows produce.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) || utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingWindows1252
}

// Decode converts data from enc to a UTF-8 string, dropping a UTF-8 BOM.
// Valid UTF-8 is returned as is whatever enc says.
func Decode(data []byte, enc Encoding) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	var cm *charmap.Charmap
	switch enc {
	case EncodingWindows1252, EncodingUTF8, "":
		cm = charmap.Windows1252
	case EncodingISO88591:
		cm = charmap.ISO8859_1
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}
	out, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", enc, err)
	}
	return string(out), nil
}
