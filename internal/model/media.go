package model

import "context"

// MediaStore uploads a local file and returns a durable public URL.
// Implementations must remove the local file when done, whether the upload
// succeeded or failed.
type MediaStore interface {
	UploadFile(ctx context.Context, localPath string) (string, error)
}
