package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"SpeakShift/internal/config"
	"SpeakShift/internal/model"
	"SpeakShift/internal/repo"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Параметры multipart-загрузки.
const (
	AWSPartSize    = 5 * 1024 * 1024
	AWSConcurrency = 4
)

// AWS загружает файлы в S3 multipart-загрузкой.
type AWS struct {
	uploader *manager.Uploader
	bucket   string
	records  repo.StorageRepository
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewAWS(client manager.UploadAPIClient, bucket string, records repo.StorageRepository, logger *zap.SugaredLogger) *AWS {
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.Concurrency = AWSConcurrency
		u.PartSize = AWSPartSize
		u.LeavePartsOnError = false
	})
	return &AWS{
		uploader: uploader,
		bucket:   bucket,
		records:  records,
		logger:   logger,
		now:      time.Now,
	}
}

// NewS3Client создаёт клиент S3. Ключи необязательны: без них используется цепочка AWS по умолчанию.
// AWS_ENDPOINT включает S3-совместимое хранилище (path-style адресация).
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Upload загружает файл под ключом key и создаёт ровно одну запись о нём.
// Ошибка SDK возвращается без повторов, запись при этом не создаётся.
func (a *AWS) Upload(ctx context.Context, file File, key string, userID uuid.UUID) (res *Result, err error) {
	defer func() { observe(ProviderAWS, err) }()

	body := &progressReader{
		r:      bytes.NewReader(file.Body),
		total:  int64(len(file.Body)),
		key:    key,
		logger: a.logger,
	}
	out, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(file.MimeType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload %q: %w", key, err)
	}
	if out == nil || out.Location == "" {
		return nil, ErrUploadIncomplete
	}

	size := file.Size
	rec := &model.Storage{
		UserID:   userID,
		Bucket:   a.bucket, // UploadOutput не возвращает бакет
		FileURL:  out.Location,
		FileID:   fmt.Sprintf("%d-%s", a.now().UnixMilli(), file.Name),
		FileName: file.Name,
		FileSize: &size,
		MimeType: file.MimeType,
	}
	if err := a.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("save storage record: %w", err)
	}
	a.logger.Infow("file uploaded to s3", "key", key, "location", out.Location, "parts", len(out.CompletedParts))
	return &Result{FileUploaded: rec}, nil
}

// progressReader пишет в лог прогресс отправки тела, не влияя на результат.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	next   int64
	key    string
	logger *zap.SugaredLogger
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.read >= p.next || err == io.EOF {
		p.logger.Debugw("s3 upload progress", "key", p.key, "loaded", p.read, "total", p.total)
		p.next = p.read + AWSPartSize
	}
	return n, err
}
