package infrastructure

import (
	"fmt"
	"unicode/utf8"
)

// plainTextExtractor reads the file directly as UTF-8 text.
type plainTextExtractor struct{}

func (plainTextExtractor) Extract(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return string(data), nil
}
