package analysis

import "errors"

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrUploadFailed    = errors.New("upload failed")
	ErrNoTask          = errors.New("no analysis task")
)
