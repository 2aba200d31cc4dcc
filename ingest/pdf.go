package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// PageText is the extracted text of one report page.
type PageText struct {
	Number int // 1-based page number
	Text   string
}

// ExtractPages pulls per-page text out of report bytes. PDF input is parsed
// page by page so readings keep their page provenance; plain text becomes a
// single page. PDFs that defeat the parser fall back to a printable-text
// scrape, also treated as a single page.
func ExtractPages(data []byte) []PageText {
	if len(data) == 0 {
		return nil
	}

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		text := strings.TrimSpace(string(extractPrintableText(data)))
		if text == "" {
			return nil
		}
		return []PageText{{Number: 1, Text: text}}
	}

	pages, err := extractPDFPages(data)
	if err == nil && len(pages) > 0 {
		return pages
	}

	scraped := strings.TrimSpace(string(extractPrintableText(data)))
	if scraped == "" {
		return nil
	}
	return []PageText{{Number: 1, Text: scraped}}
}

func extractPDFPages(data []byte) (pages []PageText, err error) {
	// The pdf library panics on malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, PageText{Number: i, Text: text})
	}
	return pages, nil
}

// extractPrintableText keeps printable runes and whitespace, dropping
// whatever binary structure surrounds them.
func extractPrintableText(in []byte) []byte {
	var out bytes.Buffer
	for len(in) > 0 {
		r, size := utf8.DecodeRune(in)
		if r == utf8.RuneError && size == 1 {
			b := in[0]
			if isPrintableASCII(b) {
				out.WriteByte(b)
			}
			in = in[1:]
			continue
		}
		in = in[size:]
		if isPrintableRune(r) {
			out.WriteRune(r)
		}
	}
	return out.Bytes()
}

func isPrintableASCII(b byte) bool {
	return b == '\n' || b == '\r' || b == '\t' || (b >= 32 && b < 127)
}

func isPrintableRune(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return true
	}
	if r >= 32 && r < 127 {
		return true
	}
	if r >= 127 && r <= 0x10FFFF {
		return true
	}
	return false
}
