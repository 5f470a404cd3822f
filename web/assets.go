package web

import (
	"net/http"
	"strings"

	"cozyvile/storage"

	"github.com/gin-gonic/gin"
)

// AssetRoute matches the public URLs of the disk and S3 stores
const AssetRoute = storage.PublicMarker + ":bucket/*path"

var knownBuckets = map[string]bool{
	storage.BucketRooms:   true,
	storage.BucketDining:  true,
	storage.BucketVenues:  true,
	storage.BucketGallery: true,
}

// AssetView serves stored images for the stores without their own public host
func AssetView(store storage.Servable) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := c.Param("bucket")
		path := strings.TrimPrefix(c.Param("path"), "/")
		if !knownBuckets[bucket] || path == "" {
			c.Status(http.StatusNotFound)
			return
		}
		store.Serve(bucket, path, c.Request, c.Writer)
	}
}
