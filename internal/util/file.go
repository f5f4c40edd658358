package util

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
)

// MaxUploadSize caps any single uploaded file
const MaxUploadSize = 50 << 20 // 50MB

// ReadUploadedFile reads a multipart file into memory, refusing files above maxBytes.
func ReadUploadedFile(header *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if header.Size > maxBytes {
		return nil, fmt.Errorf("file %s exceeds %d bytes", header.Filename, maxBytes)
	}
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("file %s exceeds %d bytes", header.Filename, maxBytes)
	}
	return data, nil
}

// OptionalFormFile returns the named multipart file, or nil when the request has none.
func OptionalFormFile(c *gin.Context, field string) *multipart.FileHeader {
	header, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return header
}
