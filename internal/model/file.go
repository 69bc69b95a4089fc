package model

import (
	"io"
)

// Upload is a file received from a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResponse is returned after a file is stored.
type UploadResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// DeleteFileRequest is the payload of DELETE /files/delete-file.
type DeleteFileRequest struct {
	Key string `json:"key"`
}

// SignedURLResponse carries a presigned GET URL.
type SignedURLResponse struct {
	URL string `json:"url"`
}
