package application

import (
	"context"
	"io"
)

// Logical buckets. A blob key starts with the bucket it was stored under.
const (
	BucketProfilePics    = "profile_pics/"
	BucketCV             = "tutor_documents/cv/"
	BucketResume         = "tutor_documents/resume/"
	BucketIdentity       = "tutor_documents/identity/"
	BucketEducation      = "tutor_documents/education/"
	BucketCertifications = "tutor_documents/certifications/"
)

// BlobStore is where uploaded files live.
type BlobStore interface {
	Put(ctx context.Context, bucket, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// FileUpload is one submitted file.
type FileUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

func (s *Service) upload(ctx context.Context, bucket string, f *FileUpload) (string, error) {
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	key, err := s.Blobs.Put(ctx, bucket, f.Filename, ct, f.Body)
	s.Metrics.ObserveUpload(bucket, err)
	return key, err
}

// discard removes blobs written by a request that did not complete.
func (s *Service) discard(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, k := range keys {
		if err := s.Blobs.Delete(ctx, k); err != nil {
			s.Logger.WithError(err).WithField("key", k).Warn("blob cleanup failed")
		}
	}
}
