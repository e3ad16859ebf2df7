package handlers

import (
	"errors"
	"io"
	"net/http"

	"SpeakShift/internal/apperr"
	"SpeakShift/internal/config"
	"SpeakShift/internal/middleware"
	"SpeakShift/internal/response"
	"SpeakShift/internal/service"
	"SpeakShift/internal/storage"

	"go.uber.org/zap"
)

// formFileField имя поля multipart с файлом.
const formFileField = "file"

// StorageHandler загрузка файлов в объектные хранилища.
type StorageHandler struct {
	StorageService *service.StorageService
	Logger         *zap.SugaredLogger
	Config         *config.Config
}

func NewStorageHandler(storageService *service.StorageService, logger *zap.SugaredLogger, cfg *config.Config) *StorageHandler {
	return &StorageHandler{StorageService: storageService, Logger: logger, Config: cfg}
}

// UploadAWS загрузка файла в S3
func (h *StorageHandler) UploadAWS(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	file, err := h.readFile(w, r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	res, err := h.StorageService.UploadAWS(r.Context(), user.ID, file)
	if err != nil {
		h.Logger.Errorw("UploadAWS: upload failed", "user_id", user.ID, "file", file.Name, "error", err)
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, "File uploaded successfully", res)
}

// UploadGCS загрузка файла в GCS, ссылка https://storage.cloud.google.com
func (h *StorageHandler) UploadGCS(w http.ResponseWriter, r *http.Request) {
	h.uploadGCS(w, r, false)
}

// UploadGCSSigned загрузка файла в GCS с подписанной ссылкой
func (h *StorageHandler) UploadGCSSigned(w http.ResponseWriter, r *http.Request) {
	h.uploadGCS(w, r, true)
}

func (h *StorageHandler) uploadGCS(w http.ResponseWriter, r *http.Request, signed bool) {
	user, _ := middleware.UserFromContext(r.Context())
	file, err := h.readFile(w, r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	res, err := h.StorageService.UploadGCS(r.Context(), user.ID, file, signed)
	if err != nil {
		h.Logger.Errorw("UploadGCS: upload failed", "user_id", user.ID, "file", file.Name, "signed", signed, "error", err)
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, "File uploaded successfully", res)
}

// ListFiles файлы текущего пользователя
func (h *StorageHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	files, err := h.StorageService.ListFiles(r.Context(), user.ID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "Files fetched successfully", files)
}

// readFile читает файл из multipart-формы целиком в память с учётом лимита UPLOAD_MAX_MB.
func (h *StorageHandler) readFile(w http.ResponseWriter, r *http.Request) (*storage.File, error) {
	maxFile := int64(h.Config.UploadMaxSizeMB) * 1024 * 1024
	// Лимит общего тела запроса: файл плюс служебные части формы
	r.Body = http.MaxBytesReader(w, r.Body, maxFile+1*1024*1024)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.New(http.StatusRequestEntityTooLarge, "File too large")
		}
		h.Logger.Warnw("upload: invalid multipart form", "error", err)
		return nil, apperr.BadRequest("Please upload a file")
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	f, header, err := r.FormFile(formFileField)
	if err != nil {
		return nil, apperr.BadRequest("Please upload a file")
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return nil, apperr.Wrap(err, http.StatusBadRequest, "Failed to read file")
	}
	if int64(len(body)) > maxFile {
		return nil, apperr.New(http.StatusRequestEntityTooLarge, "File too large")
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(body)
	}
	return &storage.File{
		Name:     header.Filename,
		MimeType: mimeType,
		Size:     int64(len(body)),
		Body:     body,
	}, nil
}
