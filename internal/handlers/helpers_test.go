package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"SpeakShift/internal/audit"
	"SpeakShift/internal/auth"
	"SpeakShift/internal/config"
	"SpeakShift/internal/handlers"
	"SpeakShift/internal/mailer"
	"SpeakShift/internal/model"
	"SpeakShift/internal/repo"
	"SpeakShift/internal/service"
	"SpeakShift/internal/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

const s3Location = "https://media.s3.us-east-1.amazonaws.com/object"

// fakeS3: manager.UploadAPIClient в памяти.
type fakeS3 struct {
	mu        sync.Mutex
	partCalls int
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	_, _ = io.Copy(io.Discard, in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) UploadPart(_ context.Context, in *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	_, _ = io.Copy(io.Discard, in.Body)
	f.mu.Lock()
	f.partCalls++
	f.mu.Unlock()
	return &s3.UploadPartOutput{ETag: aws.String("etag")}, nil
}

func (f *fakeS3) CreateMultipartUpload(_ context.Context, _ *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String("u1")}, nil
}

func (f *fakeS3) CompleteMultipartUpload(_ context.Context, _ *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return &s3.CompleteMultipartUploadOutput{Location: aws.String(s3Location)}, nil
}

func (f *fakeS3) AbortMultipartUpload(_ context.Context, _ *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}

// memBucket: storage.Bucket в памяти.
type memBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

type memWriter struct {
	b   *memBucket
	key string
	buf bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memWriter) Close() error {
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	w.b.objects[w.key] = w.buf.Bytes()
	return nil
}

func (b *memBucket) NewWriter(_ context.Context, key, _ string) io.WriteCloser {
	return &memWriter{b: b, key: key}
}

func (b *memBucket) SignedURL(key string, _ time.Time) (string, error) {
	return "https://storage.googleapis.com/gcs-media/" + key + "?X-Signature=1", nil
}

type testEnv struct {
	db     *gorm.DB
	router http.Handler
	rec    *audit.Recorder
	mail   *mailer.Noop
	s3     *fakeS3
	bucket *memBucket
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// одно соединение: записи аудита идут из фоновых горутин
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repo.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := zap.NewNop().Sugar()
	cfg := &config.Config{
		Env:              "test",
		AuthSecret:       "test-secret",
		JWTExpire:        time.Hour,
		ResetTokenExpire: 10 * time.Minute,
		FrontendURL:      "https://app.example.com",
		UploadMaxSizeMB:  8,
		AWSBucketName:    "media",
		GCSBucketName:    "gcs-media",
		UserCacheTTL:     time.Minute,
	}

	issuer := auth.NewIssuer(cfg.AuthSecret, cfg.JWTExpire)
	mail := mailer.NewNoop(log)
	userSvc := service.NewUserService(
		repo.NewUserRepository(db),
		repo.NewAddressRepository(db),
		issuer,
		mail,
		service.UserServiceConfig{FrontendURL: cfg.FrontendURL, ResetTokenExpire: cfg.ResetTokenExpire, CacheTTL: cfg.UserCacheTTL},
		log,
	)

	records := repo.NewStorageRepository(db)
	fs3 := &fakeS3{}
	bucket := &memBucket{objects: map[string][]byte{}}
	storageSvc := service.NewStorageService(
		storage.NewAWS(fs3, cfg.AWSBucketName, records, log),
		storage.NewGCS(bucket, cfg.GCSBucketName, records, log),
		records,
	)

	rec := audit.NewRecorder(repo.NewLogRepository(db), log)
	h := handlers.NewHandler(userSvc, storageSvc, rec, issuer, func(ctx context.Context) error {
		return repo.Ping(ctx, db)
	}, log, cfg)

	return &testEnv{db: db, router: h.Router, rec: rec, mail: mail, s3: fs3, bucket: bucket}
}

// do выполняет запрос и дожидается записи аудита.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.serve(req, token)
}

func (e *testEnv) upload(t *testing.T, path, fileName string, content []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.serve(req, token)
}

func (e *testEnv) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	e.rec.Wait()
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), rr.Body.String())
	return m
}

// register + login, возвращает токен.
func (e *testEnv) signUp(t *testing.T, username, email, password string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return e.login(t, email, password)
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	tok, _ := decode(t, rr)["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func (e *testEnv) createAdmin(t *testing.T, email, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.NewUserRepository(e.db).Create(context.Background(), &model.User{
		Name: "Admin", Username: "admin", Email: email, Password: string(hash),
		Role: model.RoleAdmin, Status: model.StatusActive,
	}))
}

func (e *testEnv) logs(t *testing.T, function string) []model.Log {
	t.Helper()
	var out []model.Log
	require.NoError(t, e.db.Where("function_name = ?", function).Order("created_at").Find(&out).Error)
	return out
}
