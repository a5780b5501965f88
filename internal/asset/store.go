// Package asset validates and persists uploaded device images.
//
// The store is independent of any device: it accepts a filename and bytes,
// checks the extension against a fixed allow-list, sanitizes the name and
// writes the file into a single flat directory. The returned reference is
// the stored filename, which devices keep as their image reference.
package asset

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperr "devicemap/internal/errors"
	"devicemap/internal/domain"
)

// AllowedExtensions lists the accepted image extensions (lower case)
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// CollisionPolicy decides what happens when a sanitized name already exists
type CollisionPolicy string

const (
	// CollisionOverwrite replaces the existing file (last writer wins)
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionReject fails with a conflict error
	CollisionReject CollisionPolicy = "reject"
	// CollisionUnique suffixes the stem with a content hash
	CollisionUnique CollisionPolicy = "unique"
)

// ParseCollisionPolicy parses a policy name. Empty input yields CollisionOverwrite
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CollisionOverwrite:
		return CollisionOverwrite, nil
	case CollisionReject:
		return CollisionReject, nil
	case CollisionUnique:
		return CollisionUnique, nil
	}
	return "", fmt.Errorf("unknown asset collision policy %q (want overwrite, reject or unique)", s)
}

// DefaultURLPrefix is where stored images are served from
const DefaultURLPrefix = "/static/img/"

// Upload is a file supplied by a client
type Upload struct {
	Filename string
	Data     []byte
}

// Config configures a Store
type Config struct {
	Dir       string
	URLPrefix string
	Collision CollisionPolicy
}

// Store persists image assets in a flat directory
type Store struct {
	dir       string
	urlPrefix string
	collision CollisionPolicy
	logger    *zap.Logger
}

// NewStore creates a store. The directory is created on first write
func NewStore(cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := cfg.URLPrefix
	if prefix == "" {
		prefix = DefaultURLPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	collision := cfg.Collision
	if collision == "" {
		collision = CollisionOverwrite
	}
	return &Store{
		dir:       cfg.Dir,
		urlPrefix: prefix,
		collision: collision,
		logger:    logger.Named("asset"),
	}
}

// Dir returns the asset directory
func (s *Store) Dir() string {
	return s.dir
}

// Accept validates and stores an upload, returning the stored reference.
// A nil upload or one without a filename stores nothing and returns ""
func (s *Store) Accept(up *Upload) (string, error) {
	if up == nil || strings.TrimSpace(up.Filename) == "" {
		return "", nil
	}

	if err := checkExtension(up.Filename); err != nil {
		return "", err
	}

	name := Sanitize(up.Filename)
	if name == "" {
		return "", apperr.Validation("filename %q has no usable characters", up.Filename)
	}
	// Sanitizing can strip everything before the dot ("日本.png" -> "png").
	if err := checkExtension(name); err != nil {
		return "", apperr.Validation("filename %q has no usable name before its extension", up.Filename)
	}

	if err := s.ensureDir(); err != nil {
		return "", err
	}

	switch s.collision {
	case CollisionUnique:
		name = hashedName(name, up.Data)
	case CollisionReject:
		if s.Exists(name) {
			return "", apperr.Conflict("asset %q already exists", name)
		}
	}

	if len(name) > domain.MaxImageRefLen {
		return "", apperr.Validation("stored filename exceeds %d characters", domain.MaxImageRefLen)
	}

	if err := s.write(name, up.Data); err != nil {
		return "", err
	}

	s.logger.Info("stored asset",
		zap.String("original", up.Filename),
		zap.String("ref", name),
		zap.Int("bytes", len(up.Data)),
		zap.String("collision", string(s.collision)))
	return name, nil
}

// Exists reports whether ref names a stored asset
func (s *Store) Exists(ref string) bool {
	if !IsSanitized(ref) {
		return false
	}
	info, err := os.Stat(filepath.Join(s.dir, ref))
	return err == nil && info.Mode().IsRegular()
}

// Open opens a stored asset for reading
func (s *Store) Open(ref string) (*os.File, error) {
	if !IsSanitized(ref) {
		return nil, apperr.Validation("invalid asset reference %q", ref)
	}
	f, err := os.Open(filepath.Join(s.dir, ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NotFound("asset %q not found", ref)
	}
	if err != nil {
		return nil, apperr.Storage(err, "open asset %q", ref)
	}
	return f, nil
}

// Remove deletes a stored asset. Removing a missing asset is not an error
func (s *Store) Remove(ref string) error {
	if !IsSanitized(ref) {
		return apperr.Validation("invalid asset reference %q", ref)
	}
	err := os.Remove(filepath.Join(s.dir, ref))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Storage(err, "remove asset %q", ref)
	}
	s.logger.Info("removed asset", zap.String("ref", ref))
	return nil
}

// URL resolves a stored reference to the path it is served under
func (s *Store) URL(ref string) string {
	return s.urlPrefix + url.PathEscape(ref)
}

func (s *Store) ensureDir() error {
	if s.dir == "" {
		return apperr.Storage(errors.New("no directory configured"), "prepare asset directory")
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return apperr.Storage(err, "create asset directory %s", s.dir)
	}
	return nil
}

// write stores data under name via a temp file so readers never see a
// partial image
func (s *Store) write(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return apperr.Storage(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperr.Storage(err, "write asset %q", name)
	}
	if err := tmp.Close(); err != nil {
		return apperr.Storage(err, "close asset %q", name)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return apperr.Storage(err, "chmod asset %q", name)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return apperr.Storage(err, "store asset %q", name)
	}
	return nil
}

func checkExtension(filename string) error {
	ext := Extension(filename)
	if ext == "" {
		return apperr.Validation("filename %q has no extension", filename)
	}
	if _, ok := AllowedExtensions[ext]; !ok {
		return apperr.Validation("file extension %q not allowed (png, jpg, jpeg, gif)", ext)
	}
	return nil
}

// hashedName inserts the first 8 hex chars of the content hash before the
// extension: "switch.png" -> "switch-1a2b3c4d.png"
func hashedName(name string, data []byte) string {
	sum := sha256.Sum256(data)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s-%s%s", stem, hex.EncodeToString(sum[:4]), ext)
}

// Prepare creates the asset directory ahead of the first upload
func (s *Store) Prepare() error {
	return s.ensureDir()
}

// URLPrefix returns the path prefix stored images are served under
func (s *Store) URLPrefix() string {
	return s.urlPrefix
}
