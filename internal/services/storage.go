package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Allowed extensions, lowercase with dot.
var (
	attachmentExts = map[string]bool{
		".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".pdf": true,
		".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
		".zip": true, ".rar": true, ".txt": true,
	}
	imageExts = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}
)

const profilePicturesSubdir = "profile-pictures"

// BlobStore writes uploaded blobs under a base directory. Stored names are
// collision-resistant; the original client-facing filename lives on the File
// record, not on disk.
type BlobStore struct {
	Dir string
}

func NewBlobStore(dir string) (*BlobStore, error) {
	for _, d := range []string{dir, filepath.Join(dir, profilePicturesSubdir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create uploads dir %s: %w", d, err)
		}
	}
	return &BlobStore{Dir: dir}, nil
}

// AllowedAttachment reports whether the original filename has an accepted
// attachment extension.
func AllowedAttachment(name string) bool {
	return attachmentExts[strings.ToLower(filepath.Ext(name))]
}

// AllowedImage reports whether the original filename has an accepted image
// extension.
func AllowedImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// SaveAttachment stores an attachment blob as <timestamp>-<uuid><ext> and
// returns its path relative to the uploads root.
func (s *BlobStore) SaveAttachment(src io.Reader, originalName string) (string, error) {
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], strings.ToLower(filepath.Ext(originalName)))
	return s.write(name, src)
}

// SaveProfilePicture stores a profile picture as
// profile-pictures/user_<id>_<timestamp><ext>.
func (s *BlobStore) SaveProfilePicture(src io.Reader, userID uint, originalName string) (string, error) {
	name := filepath.Join(profilePicturesSubdir,
		fmt.Sprintf("user_%d_%d%s", userID, time.Now().UnixMilli(), strings.ToLower(filepath.Ext(originalName))))
	return s.write(name, src)
}

func (s *BlobStore) write(rel string, src io.Reader) (string, error) {
	dst, err := os.Create(filepath.Join(s.Dir, rel))
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		// half-written blob is useless, clean it up before reporting
		os.Remove(dst.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	return rel, nil
}

// Remove deletes a stored blob, tolerating one that is already absent.
func (s *BlobStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether the blob is present on disk.
func (s *BlobStore) Exists(rel string) bool {
	_, err := os.Stat(filepath.Join(s.Dir, rel))
	return err == nil
}
