// Package attach uploads files picked in the chat input to blob storage and
// turns them into markdown links that travel with the user message.
package attach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apierrors "github.com/diogo/foldchat/internal/errors"
)

// DefaultMaxSize is the upload limit when none is configured
const DefaultMaxSize = 20 * 1024 * 1024 // 20MB

// BlobStore stores uploaded files under a slash-separated path
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
}

// Attachment is a stored file ready to be referenced from a message
type Attachment struct {
	Name     string
	URL      string
	Path     string
	Size     int64
	MIMEType string
}

// Markdown returns the link embedded in the message content
func (a *Attachment) Markdown() string {
	return fmt.Sprintf("[Attachment: %s](%s)", a.Name, a.URL)
}

// Uploader pushes files to a BlobStore
type Uploader struct {
	store   BlobStore
	maxSize int64
	newID   func() string
	log     zerolog.Logger
}

// NewUploader creates an uploader; maxSize <= 0 means DefaultMaxSize
func NewUploader(store BlobStore, maxSize int64, log zerolog.Logger) *Uploader {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Uploader{
		store:   store,
		maxSize: maxSize,
		newID:   uuid.NewString,
		log:     log.With().Str("component", "attach").Logger(),
	}
}

// MaxSize returns the upload limit in bytes
func (u *Uploader) MaxSize() int64 {
	return u.maxSize
}

// UploadFile uploads a file from disk on behalf of userID
func (u *Uploader) UploadFile(ctx context.Context, filePath, userID string) (*Attachment, error) {
	name := filepath.Base(filePath)

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, apierrors.NewUploadError(name, fmt.Errorf("failed to stat file: %w", err))
	}
	if info.IsDir() {
		return nil, apierrors.NewUploadError(name, errors.New("is a directory"))
	}
	if info.Size() > u.maxSize {
		return nil, apierrors.NewUploadError(name, fmt.Errorf("file size exceeds maximum %d bytes", u.maxSize))
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, apierrors.NewUploadError(name, fmt.Errorf("failed to open file: %w", err))
	}
	defer file.Close()

	return u.UploadReader(ctx, file, name, userID)
}

// UploadReader uploads the content of r under the given file name
func (u *Uploader) UploadReader(ctx context.Context, r io.Reader, name, userID string) (*Attachment, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apierrors.NewUploadError(name, errors.New("no signed-in user"))
	}

	// Read one byte past the limit to detect oversized input
	data, err := io.ReadAll(io.LimitReader(r, u.maxSize+1))
	if err != nil {
		return nil, apierrors.NewUploadError(name, fmt.Errorf("failed to read data: %w", err))
	}
	if int64(len(data)) > u.maxSize {
		return nil, apierrors.NewUploadError(name, fmt.Errorf("data size exceeds maximum %d bytes", u.maxSize))
	}

	key := u.objectKey(userID, name)
	mimeType := DetectMIMEType(name)

	if err := u.store.Put(ctx, key, data, mimeType); err != nil {
		u.log.Warn().Err(err).Str("path", key).Msg("Upload failed")
		return nil, apierrors.NewUploadError(name, err)
	}

	u.log.Info().Str("path", key).Int("bytes", len(data)).Msg("Uploaded attachment")
	return &Attachment{
		Name:     name,
		URL:      u.store.PublicURL(key),
		Path:     key,
		Size:     int64(len(data)),
		MIMEType: mimeType,
	}, nil
}

// objectKey builds <userID>/<uuid>.<ext>; names without an extension get none
func (u *Uploader) objectKey(userID, name string) string {
	key := userID + "/" + u.newID()
	if ext := strings.TrimPrefix(filepath.Ext(name), "."); ext != "" {
		key += "." + strings.ToLower(ext)
	}
	return key
}

// DetectMIMEType guesses the content type from the file extension
func DetectMIMEType(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}
