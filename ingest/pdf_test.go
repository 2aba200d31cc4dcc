package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPages_PlainText(t *testing.T) {
	pages := ExtractPages([]byte("Renewables supplied 38% of energy."))
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "Renewables supplied 38% of energy.", pages[0].Text)
}

func TestExtractPages_Empty(t *testing.T) {
	assert.Nil(t, ExtractPages(nil))
	assert.Nil(t, ExtractPages([]byte("   \n\t ")))
}

func TestExtractPages_MalformedPDFFallsBackToPrintable(t *testing.T) {
	// Looks like a PDF but defeats the parser, so the printable scrape kicks in.
	data := []byte("%PDF-1.4\nEmissions intensity 412 tCO2e\x00\x01\x02\n%%EOF")
	pages := ExtractPages(data)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Text, "Emissions intensity 412 tCO2e")
	assert.NotContains(t, pages[0].Text, "\x00")
}

func TestExtractPrintableText(t *testing.T) {
	in := []byte("ab\x00c\n\td\xffe Größe")
	out := string(extractPrintableText(in))
	assert.Equal(t, "abc\n\tde Größe", out)
}
