package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/platewise/recipe-api/config"
)

// ErrNotImage is returned when an uploaded payload is not image data.
var ErrNotImage = errors.New("uploaded file is not an image")

const recipeImagePrefix = "uploads/recipe"

// FileStore abstracts where image attachments live. Save must be safe to
// retry: keys are generated fresh per upload so a retry never collides
// with a previous partial write.
type FileStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// RecipeImageKey derives the storage key for a new recipe image from a
// freshly generated identifier and the original file's extension. When the
// filename carries no extension the sniffed content type supplies one.
func RecipeImageKey(filename string, mime *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" && mime != nil {
		ext = mime.Extension()
	}
	return path.Join(recipeImagePrefix, uuid.NewString()+ext)
}

// DetectImage sniffs the payload and returns its type, or ErrNotImage for
// anything that is not image data.
func DetectImage(data []byte) (*mimetype.MIME, error) {
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, ErrNotImage
	}
	return mime, nil
}

// DiskStore keeps files under a root directory on the local filesystem.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

func (s *DiskStore) Save(ctx context.Context, key string, data []byte, contentType string) error {
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *DiskStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// S3Store keeps files in an S3 bucket.
type S3Store struct {
	s3 *config.S3Config
}

func NewS3Store(s3Config *config.S3Config) *S3Store {
	return &S3Store{s3: s3Config}
}

func (s *S3Store) Save(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.s3.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.s3.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
