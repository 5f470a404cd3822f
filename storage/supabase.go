package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseStorage talks to the Storage REST API of the hosted service.
// Key must be the service role key for uploads and deletes to pass the
// bucket policies.
type SupabaseStorage struct {
	BaseURL string
	Key     string
	Client  *http.Client
}

func NewSupabaseStorage(baseURL, key string, client *http.Client) *SupabaseStorage {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &SupabaseStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Key:     key,
		Client:  client,
	}
}

type storageError struct {
	StatusCode string `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

func (s *SupabaseStorage) objectURL(bucket, path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.BaseURL + "/storage/v1/object/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

func (s *SupabaseStorage) Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(bucket, path), body)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")
	req.Header.Set("cache-control", "3600")
	var result struct {
		Key string `json:"Key"`
	}
	if err = s.do(req, &result); err != nil {
		return "", err
	}
	return path, nil
}

func (s *SupabaseStorage) PublicURL(bucket, path string) string {
	return PublicURL(s.BaseURL, bucket, path)
}

func (s *SupabaseStorage) Remove(ctx context.Context, bucket string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	payload, err := json.Marshal(map[string][]string{"prefixes": paths})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.BaseURL+"/storage/v1/object/"+url.PathEscape(bucket), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	var removed []struct {
		Name string `json:"name"`
	}
	return s.do(req, &removed)
}

func (s *SupabaseStorage) do(req *http.Request, dest any) error {
	req.Header.Set("apikey", s.Key)
	req.Header.Set("Authorization", "Bearer "+s.Key)
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var e storageError
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			return fmt.Errorf("storage %s: %s (%s)", req.Method, e.Message, e.Error)
		}
		return fmt.Errorf("storage %s: status %d", req.Method, resp.StatusCode)
	}
	if dest == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, dest)
}
