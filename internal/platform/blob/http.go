package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// HTTPStore uploads files to a remote blob service over multipart POST.
type HTTPStore struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPStore constructs a store pointing at the configured blob service.
func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type uploadResponse struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

// Upload sends the file to the blob service and returns the stored object.
func (s *HTTPStore) Upload(ctx context.Context, content io.Reader, filename, folder string) (Object, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Object{}, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return Object{}, err
	}
	if err := writer.WriteField("folder", folder); err != nil {
		return Object{}, err
	}
	if err := writer.Close(); err != nil {
		return Object{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/upload", body)
	if err != nil {
		return Object{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Object{}, fmt.Errorf("blob upload: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return Object{}, fmt.Errorf("blob upload failed with status %d", resp.StatusCode)
	}

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Object{}, fmt.Errorf("blob upload: decode response: %w", err)
	}
	if decoded.Format == "" {
		decoded.Format = strings.TrimPrefix(filepath.Ext(filename), ".")
	}
	return Object{URL: decoded.URL, Format: decoded.Format}, nil
}
