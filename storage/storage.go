package storage

import (
	"context"
	"io"
	"net/http"
)

// AssetStore is path-addressed blob storage with public URL derivation
type AssetStore interface {
	// Upload never overwrites an existing object and returns the stored path
	Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) (string, error)
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, bucket string, paths []string) error
}

// Servable stores keep their public URLs on this server and serve them
// through the local asset route
type Servable interface {
	Serve(bucket, path string, request *http.Request, writer http.ResponseWriter)
}

const (
	StorageTypeSupabase = "supabase"
	StorageTypeFile     = "disk"
	StorageTypeS3       = "s3"
)
