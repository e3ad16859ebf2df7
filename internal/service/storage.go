package service

import (
	"context"

	"SpeakShift/internal/apperr"
	"SpeakShift/internal/model"
	"SpeakShift/internal/naming"
	"SpeakShift/internal/repo"
	"SpeakShift/internal/storage"

	"github.com/google/uuid"
)

type AWSUploader interface {
	Upload(ctx context.Context, file storage.File, key string, userID uuid.UUID) (*storage.Result, error)
}

type GCSUploader interface {
	Upload(ctx context.Context, file storage.File, key string, userID uuid.UUID, signed bool) (*storage.Result, error)
}

var (
	_ AWSUploader = (*storage.AWS)(nil)
	_ GCSUploader = (*storage.GCS)(nil)
)

// StorageService выбирает адаптер хранилища и имя объекта.
type StorageService struct {
	aws     AWSUploader
	gcs     GCSUploader
	records repo.StorageRepository
	names   *naming.Generator
}

func NewStorageService(aws AWSUploader, gcs GCSUploader, records repo.StorageRepository) *StorageService {
	return &StorageService{aws: aws, gcs: gcs, records: records, names: naming.New()}
}

func (s *StorageService) UploadAWS(ctx context.Context, userID uuid.UUID, file *storage.File) (*storage.Result, error) {
	if err := checkFile(file); err != nil {
		return nil, err
	}
	return s.aws.Upload(ctx, *file, s.names.Unique(file.Name), userID)
}

// UploadGCS загружает в GCS; signed=true — вернуть подписанную ссылку.
func (s *StorageService) UploadGCS(ctx context.Context, userID uuid.UUID, file *storage.File, signed bool) (*storage.Result, error) {
	if err := checkFile(file); err != nil {
		return nil, err
	}
	return s.gcs.Upload(ctx, *file, s.names.Unique(file.Name), userID, signed)
}

// ListFiles возвращает файлы, загруженные пользователем.
func (s *StorageService) ListFiles(ctx context.Context, userID uuid.UUID) ([]model.Storage, error) {
	return s.records.ListByUser(ctx, userID)
}

func checkFile(file *storage.File) error {
	if file == nil || file.Size == 0 {
		return apperr.BadRequest("Please upload a file")
	}
	return nil
}
