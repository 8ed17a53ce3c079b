package web

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	ErrFileMissing  = errors.New("file is required")
	ErrFileTooLarge = errors.New("file exceeds upload limit")
)

// FormFile opens the multipart "file" field, capping the request body at maxBytes.
func FormFile(c *gin.Context, maxBytes int64) (multipart.File, *multipart.FileHeader, error) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, ErrFileTooLarge
		}
		return nil, nil, ErrFileMissing
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, ErrFileMissing
	}
	return file, header, nil
}
