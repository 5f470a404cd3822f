package storage

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

// Buckets used by the site
const (
	BucketRooms   = "rooms"
	BucketDining  = "dining"
	BucketVenues  = "venues"
	BucketGallery = "gallery"
)

// PublicMarker separates the store base URL from `<bucket>/<path>` in every public URL
const PublicMarker = "/storage/v1/object/public/"

var ErrInvalidURL = errors.New("invalid public URL")

// PublicURL builds `<base>/storage/v1/object/public/<bucket>/<path>`, escaping
// every path segment
func PublicURL(base, bucket, objectPath string) string {
	segments := strings.Split(objectPath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + PublicMarker + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

// PathFromURL returns the object path of a public URL issued for bucket
func PathFromURL(bucket, publicURL string) (string, error) {
	marker := PublicMarker + bucket + "/"
	i := strings.Index(publicURL, marker)
	if i < 0 {
		return "", fmt.Errorf("%w: %q is not in bucket %q", ErrInvalidURL, publicURL, bucket)
	}
	rest := publicURL[i+len(marker):]
	if j := strings.IndexAny(rest, "?#"); j >= 0 {
		rest = rest[:j]
	}
	decoded, err := url.PathUnescape(rest)
	if err != nil || decoded == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, publicURL)
	}
	return decoded, nil
}

// ObjectPath builds `[<prefix>/]<id>/<unix millis>_<sanitised name>`
func ObjectPath(prefix, id, name string, stamp time.Time) string {
	file := fmt.Sprintf("%d_%s", stamp.UnixMilli(), SanitizeName(name))
	if prefix == "" {
		return path.Join(id, file)
	}
	return path.Join(prefix, id, file)
}

// SanitizeName keeps [A-Za-z0-9._-] and replaces everything else with `_`
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	result := []byte(name)
	for i := 0; i < len(result); i++ {
		c := result[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '.' || c == '_' || c == '-') {
			result[i] = '_'
		}
	}
	if len(result) == 0 || string(result) == "." || string(result) == ".." {
		return "file"
	}
	return string(result)
}
