package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"SpeakShift/internal/config"
	"SpeakShift/internal/model"
	"SpeakShift/internal/repo"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// SignedURLTTL срок действия подписанной ссылки.
const SignedURLTTL = 365 * 24 * time.Hour

// Bucket: минимальный доступ к бакету GCS, нужный адаптеру.
type Bucket interface {
	NewWriter(ctx context.Context, key, contentType string) io.WriteCloser
	SignedURL(key string, expires time.Time) (string, error)
}

// GCS загружает файлы в Google Cloud Storage одним потоком.
type GCS struct {
	bucket  Bucket
	name    string
	records repo.StorageRepository
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewGCS(bucket Bucket, bucketName string, records repo.StorageRepository, logger *zap.SugaredLogger) *GCS {
	return &GCS{
		bucket:  bucket,
		name:    bucketName,
		records: records,
		logger:  logger,
		now:     time.Now,
	}
}

// Upload пишет файл в объект key и после закрытия потока создаёт запись.
// signed=true — дополнительно выпускается подписанная ссылка V2 на чтение,
// а в записи хранится gs:// адрес объекта.
func (g *GCS) Upload(ctx context.Context, file File, key string, userID uuid.UUID, signed bool) (res *Result, err error) {
	defer func() { observe(ProviderGCS, err) }()

	w := g.bucket.NewWriter(ctx, key, file.MimeType)
	if _, err := w.Write(file.Body); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("gcs write %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gcs finish %q: %w", key, err)
	}

	fileURL := fmt.Sprintf("https://storage.cloud.google.com/%s/%s", g.name, key)
	var signedURL *string
	if signed {
		u, err := g.bucket.SignedURL(key, g.now().Add(SignedURLTTL))
		if err != nil {
			return nil, fmt.Errorf("gcs sign %q: %w", key, err)
		}
		signedURL = &u
		fileURL = fmt.Sprintf("gs://%s/%s", g.name, key)
	}

	size := file.Size
	rec := &model.Storage{
		UserID:   userID,
		Bucket:   g.name,
		FileURL:  fileURL,
		FileID:   key,
		FileName: file.Name,
		FileSize: &size,
		MimeType: file.MimeType,
	}
	if err := g.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("save storage record: %w", err)
	}
	g.logger.Infow("file uploaded to gcs", "key", key, "url", fileURL, "signed", signed)
	return &Result{FileUploaded: rec, SignedURL: signedURL}, nil
}

type gcsBucket struct {
	h *gcs.BucketHandle
}

// NewGCSBucket создаёт клиент GCS из JSON сервисного аккаунта.
// Клиент возвращается вызывающему для Close при остановке.
func NewGCSBucket(ctx context.Context, cfg *config.Config) (Bucket, *gcs.Client, error) {
	opts := []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.GCSCredentials))}
	if cfg.GCSProjectID != "" {
		opts = append(opts, option.WithQuotaProject(cfg.GCSProjectID))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &gcsBucket{h: client.Bucket(cfg.GCSBucketName)}, client, nil
}

func (b *gcsBucket) NewWriter(ctx context.Context, key, contentType string) io.WriteCloser {
	w := b.h.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

func (b *gcsBucket) SignedURL(key string, expires time.Time) (string, error) {
	return b.h.SignedURL(key, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV2,
		Method:  "GET",
		Expires: expires,
	})
}
