// Package textfix repairs the text defect found in Instagram data exports,
// where every UTF-8 byte of the original text was re-saved as a separate
// Latin-1 code point.
package textfix

import (
	"log"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Repair reverses the Latin-1-over-UTF-8 mis-encoding. Each code point of s is
// taken as one byte and the resulting byte stream is decoded as UTF-8.
//
// Text that cannot be repaired (a code point above 0xFF, or bytes that are not
// valid UTF-8) is returned unchanged and a warning is logged. Plain ASCII is
// returned as is.
func Repair(s string) string {
	if isASCII(s) {
		return s
	}

	raw, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		log.Printf("WARNING: text repair skipped, not a Latin-1 byte sequence: %v", err)
		return s
	}

	if !utf8.ValidString(raw) {
		log.Printf("WARNING: text repair skipped, bytes are not valid UTF-8: %q", s)
		return s
	}

	return raw
}

// MisEncode applies the export defect to s: every byte of its UTF-8 encoding
// becomes its own Latin-1 code point.
func MisEncode(s string) string {
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		// ISO-8859-1 maps all 256 byte values, decoding cannot fail.
		return s
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
