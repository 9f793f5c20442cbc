package services

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"Zelvix/models"
)

// UploadStore keeps uploaded files on local disk and derives their public
// URLs. Stored names are "<unix millis>-<original name>"; the millisecond
// stamp is strictly increasing within the process so two uploads never get
// the same name.
type UploadStore struct {
	basePath string
	baseURL  string

	mu        sync.Mutex
	lastStamp int64
	now       func() time.Time
}

// NewUploadStore creates basePath if needed. publicBaseURL may be empty, in
// which case URLs are relative ("/uploads/<name>").
func NewUploadStore(basePath, publicBaseURL string) (*UploadStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &UploadStore{
		basePath: basePath,
		baseURL:  strings.TrimRight(publicBaseURL, "/") + "/uploads",
		now:      time.Now,
	}, nil
}

func (s *UploadStore) BasePath() string { return s.basePath }

// nextStamp returns a millisecond timestamp greater than every previous one.
func (s *UploadStore) nextStamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp := s.now().UnixMilli()
	if stamp <= s.lastStamp {
		stamp = s.lastStamp + 1
	}
	s.lastStamp = stamp
	return stamp
}

// SanitizeName keeps only the base name and replaces path separators and
// control characters.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '/' || r == ':' {
			return '_'
		}
		return r
	}, name)
	if name == "." || name == ".." || strings.TrimSpace(name) == "" {
		return "file"
	}
	return name
}

// Save writes r under a freshly generated name and returns its record.
func (s *UploadStore) Save(originalName string, r io.Reader) (*models.UploadRecord, error) {
	clean := SanitizeName(originalName)

	var (
		f        *os.File
		stored   string
		fullPath string
		err      error
	)
	// O_EXCL guards against files left by an earlier process run
	for attempt := 0; attempt < 5; attempt++ {
		stored = strconv.FormatInt(s.nextStamp(), 10) + "-" + clean
		fullPath = filepath.Join(s.basePath, stored)
		f, err = os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil || !errors.Is(err, fs.ErrExist) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	h, _ := blake2b.New256(nil)
	size, err := io.Copy(io.MultiWriter(f, h), r)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	rec := &models.UploadRecord{
		OriginalName: originalName,
		StoredName:   stored,
		Path:         fullPath,
		URL:          s.URLFor(stored),
		Size:         size,
		Checksum:     hex.EncodeToString(h.Sum(nil)),
		UploadedAt:   s.now(),
	}
	log.Printf("[storage] saved %q as %s (%d bytes)", originalName, stored, size)
	return rec, nil
}

// SaveMultipart stores a file received from a multipart form.
func (s *UploadStore) SaveMultipart(header *multipart.FileHeader) (*models.UploadRecord, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()
	return s.Save(header.Filename, file)
}

func (s *UploadStore) URLFor(storedName string) string {
	return s.baseURL + "/" + url.PathEscape(storedName)
}

// Prune deletes stored files whose modification time is older than maxAge.
func (s *UploadStore) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.basePath, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Printf("[storage] prune %s: %v", e.Name(), err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// StartRetention prunes every interval until stop is closed.
func (s *UploadStore) StartRetention(maxAge, interval time.Duration, stop <-chan struct{}) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if n, err := s.Prune(maxAge); err != nil {
					log.Printf("[storage] retention sweep failed: %v", err)
				} else if n > 0 {
					log.Printf("[storage] retention removed %d files", n)
				}
			}
		}
	}()
}
