package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFPreview reads the whole file and returns the first MaxTextChars
// characters of its plain text.
func PDFPreview(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := PDFText(data)
	if err != nil {
		return "", err
	}
	return Truncate(text, MaxTextChars), nil
}

// PDFText extracts plain text from an in-memory PDF. The parser panics on
// some malformed inputs, so panics are turned into errors.
func PDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return buf.String(), nil
}
