package infrastructure

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	wordParagraphEnd = regexp.MustCompile(`</w:p>`)
	wordMarkup       = regexp.MustCompile(`<[^>]+>`)

	wordEntities = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
)

// wordExtractor reads docx containers and harvests the raw text from
// the document markup. Legacy .doc files are not a zip container, so
// they fail at open and surface as a normal extraction failure.
type wordExtractor struct{}

func (wordExtractor) Extract(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open word document: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = wordParagraphEnd.ReplaceAllString(content, "\n")
	text := wordMarkup.ReplaceAllString(content, "")
	text = wordEntities.Replace(text)
	text = strings.TrimSpace(text)

	if text == "" {
		return "", fmt.Errorf("no text could be extracted from the word document")
	}
	return text, nil
}
