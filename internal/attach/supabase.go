package attach

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	"github.com/diogo/foldchat/internal/api"
)

// SupabaseStorage stores objects in a bucket of a hosted storage service
type SupabaseStorage struct {
	client  api.HTTPDoer
	baseURL string
	anonKey string
	bucket  string
	token   func() string
}

var _ BlobStore = (*SupabaseStorage)(nil)

// NewSupabaseStorage creates a store for bucket in the project at baseURL.
// token, if set, returns the signed-in user's access token.
func NewSupabaseStorage(client api.HTTPDoer, baseURL, anonKey, bucket string, token func() string) *SupabaseStorage {
	return &SupabaseStorage{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		bucket:  bucket,
		token:   token,
	}
}

// Put uploads data as a multipart form with a single "file" part
func (s *SupabaseStorage) Put(ctx context.Context, objectPath string, data []byte, contentType string) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("cacheControl", "3600"); err != nil {
		return fmt.Errorf("failed to write form field: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, path.Base(objectPath)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	_ = writer.Close()

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	bearer := s.anonKey
	if s.token != nil {
		if t := s.token(); t != "" {
			bearer = t
		}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	respBody, err := api.ReadBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if !api.IsSuccess(resp.StatusCode) {
		msg := gjson.GetBytes(respBody, "message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		return fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, msg)
	}
	return nil
}

// PublicURL returns the public object URL; the bucket must be public
func (s *SupabaseStorage) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
}
