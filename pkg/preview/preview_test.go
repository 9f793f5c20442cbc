package preview

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cases := map[string]Kind{
		"report.pdf":     PDF,
		"REPORT.PDF":     PDF,
		"notes.docx":     DOCX,
		"Budget.XlSx":    XLSX,
		"photo.jpg":      Image,
		"photo.JPEG":     Image,
		"logo.png":       Image,
		"archive.zip":    Unsupported,
		"old.doc":        Unsupported,
		"no-extension":   Unsupported,
		"trailing.pdf.x": Unsupported,
	}
	for name, want := range cases {
		assert.Equal(t, want, KindOf(name), name)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	// counts characters, not bytes
	assert.Equal(t, "héé", Truncate("héééllo", 3))

	long := strings.Repeat("x", 1500)
	assert.Len(t, Truncate(long, MaxTextChars), MaxTextChars)
}

func TestRegistryFixedMessages(t *testing.T) {
	reg := DefaultRegistry()
	ctx := context.Background()

	got, err := reg.Preview(ctx, Image, "does-not-matter.png")
	require.NoError(t, err)
	assert.Equal(t, ImageMessage, got)

	got, err = reg.Preview(ctx, Unsupported, "archive.zip")
	require.NoError(t, err)
	assert.Equal(t, UnsupportedMessage, got)

	// unknown kinds fall back to the unsupported strategy
	got, err = reg.Preview(ctx, Kind(42), "x.bin")
	require.NoError(t, err)
	assert.Equal(t, UnsupportedMessage, got)
}

func TestRegistryCustomExtractor(t *testing.T) {
	reg := DefaultRegistry()
	reg[PDF] = ExtractorFunc(func(_ context.Context, path string) (string, error) {
		return "custom:" + filepath.Base(path), nil
	})
	got, err := reg.Preview(context.Background(), PDF, "/tmp/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "custom:a.pdf", got)
}

func TestPDFPreviewCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf at all"), 0o644))

	_, err := PDFPreview(context.Background(), path)
	assert.Error(t, err)
}

func TestPDFPreviewMissingFile(t *testing.T) {
	_, err := PDFPreview(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestPDFTextEmptyInput(t *testing.T) {
	_, err := PDFText(nil)
	assert.Error(t, err)
}
