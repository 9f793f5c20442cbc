package services

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadStoreSameNameNeverCollides(t *testing.T) {
	store, err := NewUploadStore(t.TempDir(), "")
	require.NoError(t, err)
	fixed := time.UnixMilli(1700000000000)
	store.now = func() time.Time { return fixed }

	const n = 20
	names := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := store.Save("report.pdf", strings.NewReader("data"))
			if assert.NoError(t, err) {
				names <- rec.StoredName
			}
		}()
	}
	wg.Wait()
	close(names)

	seen := map[string]bool{}
	for name := range names {
		assert.False(t, seen[name], "duplicate stored name %s", name)
		seen[name] = true
		assert.True(t, strings.HasSuffix(name, "-report.pdf"), name)
	}
	assert.Len(t, seen, n)
}

func TestUploadStoreRecord(t *testing.T) {
	dir := t.TempDir()
	store, err := NewUploadStore(dir, "https://support.example.com/")
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1700000000123) }

	rec, err := store.Save("my notes.docx", strings.NewReader("hello"))
	require.NoError(t, err)

	assert.Equal(t, "my notes.docx", rec.OriginalName)
	assert.Equal(t, "1700000000123-my notes.docx", rec.StoredName)
	assert.Equal(t, filepath.Join(dir, rec.StoredName), rec.Path)
	assert.Equal(t, "https://support.example.com/uploads/1700000000123-my%20notes.docx", rec.URL)
	assert.Equal(t, int64(5), rec.Size)
	assert.Len(t, rec.Checksum, 64)

	data, err := os.ReadFile(rec.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestUploadStoreRelativeURL(t *testing.T) {
	store, err := NewUploadStore(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1-a.png", store.URLFor("1-a.png"))
}

func TestUploadStoreSkipsExistingFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewUploadStore(dir, "")
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(5000) }
	// leftover from an earlier run with the same stamp
	require.NoError(t, os.WriteFile(filepath.Join(dir, "5000-a.txt"), []byte("old"), 0o644))

	rec, err := store.Save("a.txt", strings.NewReader("new"))
	require.NoError(t, err)
	assert.Equal(t, "5001-a.txt", rec.StoredName)

	old, err := os.ReadFile(filepath.Join(dir, "5000-a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd":    "passwd",
		`C:\Users\me\cv.docx`: "cv.docx",
		"a\x00b.png":          "a_b.png",
		"":                    "file",
		"..":                  "file",
		"   ":                 "file",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeName(in), "input %q", in)
	}
}

func TestUploadStorePrune(t *testing.T) {
	dir := t.TempDir()
	store, err := NewUploadStore(dir, "")
	require.NoError(t, err)

	oldRec, err := store.Save("old.txt", strings.NewReader("x"))
	require.NoError(t, err)
	newRec, err := store.Save("new.txt", strings.NewReader("y"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldRec.Path, past, past))

	removed, err := store.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(oldRec.Path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(newRec.Path)
	assert.NoError(t, err)
}

func TestUploadStoreRetentionLoop(t *testing.T) {
	store, err := NewUploadStore(t.TempDir(), "")
	require.NoError(t, err)
	rec, err := store.Save("stale.txt", strings.NewReader("x"))
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(rec.Path, past, past))

	stop := make(chan struct{})
	defer close(stop)
	store.StartRetention(time.Minute, 10*time.Millisecond, stop)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(rec.Path)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)
}
