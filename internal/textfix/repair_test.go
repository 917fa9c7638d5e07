package textfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepair_ASCIIUnchanged(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"john_doe.99",
		"Line one\nLine two\t!@#$%^&*()",
	}

	for _, input := range inputs {
		assert.Equal(t, input, Repair(input))
	}
}

func TestRepair_RoundTrip(t *testing.T) {
	originals := []string{
		"café",
		"Łódź ❤️",
		"日本語のバイオ",
		"emoji 🎉 party",
		"naïve résumé",
	}

	for _, original := range originals {
		t.Run(original, func(t *testing.T) {
			garbled := MisEncode(original)
			assert.NotEqual(t, original, garbled)
			assert.Equal(t, original, Repair(garbled))
		})
	}
}

func TestRepair_KnownExportSample(t *testing.T) {
	// "café" as it appears in an export file
	assert.Equal(t, "café", Repair("cafÃ©"))
}

func TestRepair_CodePointAboveLatin1ReturnsOriginal(t *testing.T) {
	input := "already fine ❤"

	assert.Equal(t, input, Repair(input))
}

func TestRepair_InvalidUTF8BytesReturnsOriginal(t *testing.T) {
	// A lone Latin-1 "é" maps to byte 0xE9, which starts a multi-byte
	// sequence that never completes.
	input := "café"

	assert.Equal(t, input, Repair(input))
}

func TestMisEncode_ASCIIUnchanged(t *testing.T) {
	assert.Equal(t, "hello", MisEncode("hello"))
}
