package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSStore stores uploaded files as objects in one bucket. The logical
// bucket of a file (profile_pics/, tutor_documents/cv/, ...) becomes the
// object name prefix.
type GCSStore struct {
	Client  *storage.Client
	Bucket  string
	Timeout time.Duration
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{Client: client, Bucket: bucket, Timeout: 30 * time.Second}
}

// maxExtLen bounds the extension kept from a client filename, dot included.
const maxExtLen = 10

// SafeExt returns the lowercased extension of filename. Extensions that are
// too long or contain anything but ASCII letters and digits are dropped.
func SafeExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// ObjectKey builds "<prefix><uuid><ext>" for an uploaded filename.
func ObjectKey(prefix, filename string) string {
	return prefix + uuid.NewString() + SafeExt(filename)
}

// Put uploads r and returns the object key.
func (s *GCSStore) Put(ctx context.Context, prefix, filename, contentType string, r io.Reader) (string, error) {
	if s.Client == nil || s.Bucket == "" {
		return "", errors.New("gcs not configured")
	}
	key := ObjectKey(prefix, filename)
	c, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := UploadObject(c, s.Client, s.Bucket, key, contentType, r); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if s.Client == nil || s.Bucket == "" {
		return errors.New("gcs not configured")
	}
	c, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	err := s.Client.Bucket(s.Bucket).Object(key).Delete(c)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

func (s *GCSStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return PublicURL(s.Bucket, key)
}

// UploadObject uploads bytes from r into bucket/objectPath with the provided contentType
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) error {
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

// PublicURL builds a public URL for an object (assuming public read access or signed URLs)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
