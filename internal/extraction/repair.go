package extraction

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// pdfHeader is the document-start marker repaired content is resynced to.
var pdfHeader = []byte("%PDF-")

// repairStrategies are tried in order, one per retry attempt: first the
// text-encoding fallbacks, then header resynchronization. Each returns
// the repaired bytes and whether anything changed.
var repairStrategies = []struct {
	name string
	fn   func([]byte) ([]byte, bool)
}{
	{"utf16-decode", decodeUTF16},
	{"latin1-decode", decodeLatin1},
	{"header-resync", resyncHeader},
}

func repairContent(data []byte, attempt int) ([]byte, bool) {
	if attempt < 0 || attempt >= len(repairStrategies) {
		return data, false
	}
	return repairStrategies[attempt].fn(data)
}

func repairStrategyName(attempt int) string {
	if attempt < 0 || attempt >= len(repairStrategies) {
		return "none"
	}
	return repairStrategies[attempt].name
}

// decodeUTF16 handles content that was round-tripped through a UTF-16
// encoding, recognizable by a byte-order mark or interleaved NULs.
func decodeUTF16(data []byte) ([]byte, bool) {
	hasBOM := len(data) >= 2 &&
		((data[0] == 0xFE && data[1] == 0xFF) || (data[0] == 0xFF && data[1] == 0xFE))
	if !hasBOM && !looksInterleaved(data) {
		return data, false
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil || len(out) == 0 {
		return data, false
	}
	return out, true
}

// decodeLatin1 reinterprets the bytes as Windows-1252, the most common
// single-byte mangling seen on re-saved statements.
func decodeLatin1(data []byte) ([]byte, bool) {
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil || bytes.Equal(out, data) {
		return data, false
	}
	return out, true
}

// resyncHeader strips NUL bytes and, when the content does not begin
// with the document-start marker, discards any junk preceding it.
func resyncHeader(data []byte) ([]byte, bool) {
	cleaned := bytes.ReplaceAll(data, []byte{0}, nil)
	changed := len(cleaned) != len(data)

	if !bytes.HasPrefix(cleaned, pdfHeader) {
		if idx := bytes.Index(cleaned, pdfHeader); idx > 0 {
			cleaned = cleaned[idx:]
			changed = true
		}
	}
	return cleaned, changed
}

// looksInterleaved reports whether at least a third of the leading bytes
// are NUL, the signature of UTF-16 encoded ASCII.
func looksInterleaved(data []byte) bool {
	n := len(data)
	if n == 0 {
		return false
	}
	if n > 512 {
		n = 512
	}
	nuls := 0
	for _, b := range data[:n] {
		if b == 0 {
			nuls++
		}
	}
	return nuls*3 >= n
}
