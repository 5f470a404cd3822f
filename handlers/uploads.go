package handlers

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"cozyvile/content"
	"cozyvile/utils"

	"github.com/gin-gonic/gin"
)

const uploadField = "images"

// ImageOptions bound the files of one admin form
type ImageOptions struct {
	MaxDimension uint  // longest side kept, larger JPEG/PNG images are downscaled
	MaxBytes     int64 // whole request body
}

// limitBody caps the request body before the form gets parsed
func (o ImageOptions) limitBody(c *gin.Context) {
	if o.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, o.MaxBytes)
	}
}

// readUploads returns the selected images in selection order. Requests that
// are not multipart carry no files.
func (o ImageOptions) readUploads(c *gin.Context) ([]content.Upload, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, &content.ValidationError{Field: uploadField, Message: err.Error()}
	}
	uploads := []content.Upload{}
	for _, header := range form.File[uploadField] {
		file, err := header.Open()
		if err != nil {
			return nil, &content.ValidationError{Field: uploadField, Message: err.Error()}
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, &content.ValidationError{Field: uploadField, Message: err.Error()}
		}
		if len(data) == 0 {
			continue
		}
		fit, err := utils.FitImage(o.MaxDimension, data)
		if err != nil {
			return nil, &content.ValidationError{Field: uploadField, Message: header.Filename + " could not be decoded: " + err.Error()}
		}
		if !strings.HasPrefix(fit.ContentType, "image/") {
			return nil, &content.ValidationError{Field: uploadField, Message: header.Filename + " is not an image"}
		}
		if fit.Resized {
			log.Printf("Resized %s from %dx%d to %dx%d", header.Filename, fit.OldX, fit.OldY, fit.NewX, fit.NewY)
		}
		uploads = append(uploads, content.Upload{
			Name:        header.Filename,
			ContentType: fit.ContentType,
			Body:        bytes.NewReader(fit.Data),
		})
	}
	return uploads, nil
}
