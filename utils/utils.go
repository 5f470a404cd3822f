package utils

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"github.com/nfnt/resize"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify transliterates s to ASCII, lower-cases it and joins the alphanumeric runs with `-`
func Slugify(s string) string {
	s = strings.ToLower(unidecode.Unidecode(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

type ImageFitResult struct {
	Data        []byte
	ContentType string
	Resized     bool
	OldX        int
	OldY        int
	NewX        int
	NewY        int
}

// FitImage downscales JPEG and PNG images so that neither side exceeds size.
// Anything else (or an image already small enough) is returned untouched.
func FitImage(size uint, data []byte) (result ImageFitResult, err error) {
	result.Data = data
	result.ContentType = http.DetectContentType(data)
	if size == 0 || (result.ContentType != "image/jpeg" && result.ContentType != "image/png") {
		return
	}
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return result, err
	}
	result.OldX, result.OldY = config.Width, config.Height
	result.NewX, result.NewY = config.Width, config.Height
	if uint(config.Width) <= size && uint(config.Height) <= size {
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return result, err
	}
	var newBuf bytes.Buffer
	newImage := resize.Thumbnail(size, size, img, resize.Lanczos3)
	if result.ContentType == "image/png" {
		err = png.Encode(&newBuf, newImage)
	} else {
		err = jpeg.Encode(&newBuf, newImage, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return
	}
	imageRect := newImage.Bounds().Size()
	result.NewX = imageRect.X
	result.NewY = imageRect.Y
	result.Data = newBuf.Bytes()
	result.Resized = true
	return
}
