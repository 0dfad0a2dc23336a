// Package storage uploads user media to the Firebase storage bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"

	"social-service/internal/models"
)

// maxUploadBytes caps a single media upload at 25 MiB.
const maxUploadBytes = 25 << 20

var ErrUnsupportedMedia = errors.New("unsupported media type")

// mediaTypeFor maps an upload's Content-Type onto the stored media type.
func mediaTypeFor(contentType string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.MediaTypeImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return models.MediaTypeVideo, nil
	}
	return "", ErrUnsupportedMedia
}

// MediaStore writes uploaded files into the bucket and returns their
// public URLs.
type MediaStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
	now        func() time.Time
}

// NewMediaStore constructs a MediaStore.
func NewMediaStore(bucket *gcs.BucketHandle, bucketName string) *MediaStore {
	return &MediaStore{bucket: bucket, bucketName: bucketName, now: time.Now}
}

// UploadPost stores a post attachment under posts/{uid}/{timestamp}
// and reports whether it was stored as an image or a video.
func (s *MediaStore) UploadPost(ctx context.Context, uid string, file *multipart.FileHeader) (url, mediaType string, err error) {
	contentType := file.Header.Get("Content-Type")
	mediaType, err = mediaTypeFor(contentType)
	if err != nil {
		return "", "", err
	}

	name := fmt.Sprintf("posts/%s/%d%s", uid, s.now().UnixMilli(), path.Ext(file.Filename))
	url, err = s.upload(ctx, name, contentType, file)
	return url, mediaType, err
}

// UploadAvatar stores a profile picture at a fixed path per user, so a
// new avatar replaces the old object instead of accumulating.
func (s *MediaStore) UploadAvatar(ctx context.Context, uid string, file *multipart.FileHeader) (string, error) {
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrUnsupportedMedia
	}
	return s.upload(ctx, "profile_pictures/"+uid+".jpg", contentType, file)
}

func (s *MediaStore) upload(ctx context.Context, name, contentType string, file *multipart.FileHeader) (string, error) {
	if file.Size > maxUploadBytes {
		return "", fmt.Errorf("file too large: %d bytes", file.Size)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finish upload %s: %w", name, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, name), nil
}
