// Package storage загружает файлы в объектные хранилища (AWS S3, Google Cloud Storage)
// и фиксирует каждую успешную загрузку записью model.Storage.
package storage

import (
	"errors"

	"SpeakShift/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrUploadIncomplete: провайдер не подтвердил завершение загрузки.
var ErrUploadIncomplete = errors.New("upload did not complete")

const (
	ProviderAWS = "aws"
	ProviderGCS = "gcs"
)

var uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "speakshift_uploads_total",
	Help: "Uploads to object storage by provider and outcome",
}, []string{"provider", "outcome"})

func observe(provider string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	uploadsTotal.WithLabelValues(provider, outcome).Inc()
}

// File: загруженный клиентом файл, целиком в памяти.
type File struct {
	Name     string
	MimeType string
	Size     int64
	Body     []byte
}

// Result: результат загрузки. SignedURL заполняется только для подписанных ссылок GCS.
type Result struct {
	FileUploaded *model.Storage `json:"fileUploaded"`
	SignedURL    *string        `json:"signedUrl,omitempty"`
}
