// Package preview turns a stored upload into a short human-readable text
// preview. Each supported file kind maps to one extraction strategy.
package preview

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the closed set of upload categories the relay knows about.
type Kind int

const (
	Unsupported Kind = iota
	PDF
	DOCX
	XLSX
	Image
)

const (
	// MaxTextChars bounds PDF and DOCX previews.
	MaxTextChars = 1000
	// MaxRows bounds XLSX previews.
	MaxRows = 3

	ImageMessage       = "🖼️ Image file uploaded."
	UnsupportedMessage = "Unsupported file type."
	ErrorMessage       = "Error processing file."
)

var kindNames = map[Kind]string{
	Unsupported: "unsupported",
	PDF:         "pdf",
	DOCX:        "docx",
	XLSX:        "xlsx",
	Image:       "image",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var byExtension = map[string]Kind{
	".pdf":  PDF,
	".docx": DOCX,
	".xlsx": XLSX,
	".jpg":  Image,
	".jpeg": Image,
	".png":  Image,
}

// KindOf classifies a file by its extension, case-insensitively.
func KindOf(name string) Kind {
	if k, ok := byExtension[strings.ToLower(filepath.Ext(name))]; ok {
		return k
	}
	return Unsupported
}

// Extractor produces the preview for a stored file.
type Extractor interface {
	Preview(ctx context.Context, path string) (string, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, path string) (string, error)

func (f ExtractorFunc) Preview(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// Fixed returns an Extractor that ignores the file and yields msg.
func Fixed(msg string) Extractor {
	return ExtractorFunc(func(context.Context, string) (string, error) { return msg, nil })
}

// Registry maps every Kind to its strategy.
type Registry map[Kind]Extractor

// DefaultRegistry wires the built-in strategies.
func DefaultRegistry() Registry {
	return Registry{
		PDF:         ExtractorFunc(PDFPreview),
		DOCX:        ExtractorFunc(DOCXPreview),
		XLSX:        ExtractorFunc(XLSXPreview),
		Image:       Fixed(ImageMessage),
		Unsupported: Fixed(UnsupportedMessage),
	}
}

// Preview runs the strategy registered for kind.
func (r Registry) Preview(ctx context.Context, kind Kind, path string) (string, error) {
	ex, ok := r[kind]
	if !ok {
		ex = r[Unsupported]
	}
	if ex == nil {
		return UnsupportedMessage, nil
	}
	return ex.Preview(ctx, path)
}

// Truncate returns the first n characters of s. Already short input is
// returned unchanged.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
