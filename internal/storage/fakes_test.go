package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"SpeakShift/internal/model"
	"SpeakShift/internal/repo"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// fakeRecords: in-memory StorageRepository.
type fakeRecords struct {
	mu   sync.Mutex
	recs []*model.Storage
	err  error
}

func (f *fakeRecords) Create(_ context.Context, s *model.Storage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, s)
	return nil
}

func (f *fakeRecords) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Storage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Storage
	for _, r := range f.recs {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRecords) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recs)
}

var _ repo.StorageRepository = (*fakeRecords)(nil)

// fakeS3 реализует manager.UploadAPIClient. Части загружаются конкурентно, поэтому под мьютексом.
type fakeS3 struct {
	mu          sync.Mutex
	putCalls    int
	partCalls   int
	aborted     bool
	completed   bool
	received    int64
	location    string
	partErr     error
	completeOut *s3.CompleteMultipartUploadOutput
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	n, _ := io.Copy(io.Discard, in.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	f.received += n
	return &s3.PutObjectOutput{ETag: aws.String("etag")}, nil
}

func (f *fakeS3) UploadPart(_ context.Context, in *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	n, _ := io.Copy(io.Discard, in.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partCalls++
	if f.partErr != nil {
		return nil, f.partErr
	}
	f.received += n
	return &s3.UploadPartOutput{ETag: aws.String("etag")}, nil
}

func (f *fakeS3) CreateMultipartUpload(_ context.Context, _ *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String("upload-1")}, nil
}

func (f *fakeS3) CompleteMultipartUpload(_ context.Context, _ *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = true
	if f.completeOut != nil {
		return f.completeOut, nil
	}
	return &s3.CompleteMultipartUploadOutput{Location: aws.String(f.location)}, nil
}

func (f *fakeS3) AbortMultipartUpload(_ context.Context, _ *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = true
	return &s3.AbortMultipartUploadOutput{}, nil
}

var _ manager.UploadAPIClient = (*fakeS3)(nil)

// fakeBucket реализует Bucket.
type fakeBucket struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	writeErr error
	closeErr error
	signErr  error
	expires  time.Time
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *fakeBucket) NewWriter(_ context.Context, key, contentType string) io.WriteCloser {
	return &fakeWriter{b: b, key: key, ct: contentType}
}

func (b *fakeBucket) SignedURL(key string, expires time.Time) (string, error) {
	if b.signErr != nil {
		return "", b.signErr
	}
	b.mu.Lock()
	b.expires = expires
	b.mu.Unlock()
	return "https://storage.googleapis.com/signed/" + key + "?Signature=abc", nil
}

func (b *fakeBucket) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

type fakeWriter struct {
	b   *fakeBucket
	key string
	ct  string
	buf bytes.Buffer
}

func (w *fakeWriter) Write(p []byte) (int, error) {
	if w.b.writeErr != nil {
		return 0, w.b.writeErr
	}
	return w.buf.Write(p)
}

// Close фиксирует объект только при успешном завершении потока.
func (w *fakeWriter) Close() error {
	if w.b.writeErr != nil {
		return errors.New("writer aborted")
	}
	if w.b.closeErr != nil {
		return w.b.closeErr
	}
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	w.b.objects[w.key] = w.buf.Bytes()
	w.b.types[w.key] = w.ct
	return nil
}
