package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"github.com/Niketw/secure-file-vault/internal/config"
	"github.com/Niketw/secure-file-vault/internal/model"
	"github.com/Niketw/secure-file-vault/internal/repo"
	"github.com/Niketw/secure-file-vault/internal/service"
	"github.com/Niketw/secure-file-vault/internal/storage"
)

// testServer — полный роутер поверх in-memory SQLite и временного хранилища.
type testServer struct {
	handler *Handler
	cfg     *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: "file:" + name + "?mode=memory&cache=shared"}
	db, err := gorm.Open(dial, &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.File{}))

	blobs, err := storage.NewBlobStore(t.TempDir())
	require.NoError(t, err)

	users := repo.NewUserRepository(db)
	files := repo.NewFileRepository(db)
	logger := zap.NewNop().Sugar()
	cfg := &config.Config{AuthSecret: "test-secret", BlobMaxSizeMB: 1}

	h := NewHandler(
		service.NewUserService(users, blobs),
		service.NewVaultService(users, files, blobs, logger),
		logger,
		cfg,
	)
	return &testServer{handler: h, cfg: cfg}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.handler.Router.ServeHTTP(w, req)
	return w
}

// registerUser регистрирует пользователя и возвращает его id и auth cookie.
func (s *testServer) registerUser(t *testing.T, username string) (string, *http.Cookie) {
	t.Helper()
	body, _ := json.Marshal(RegisterRequest{
		Username:  username,
		Name:      "Test " + username,
		Password:  "secret",
		PublicKey: "deadbeef",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	w := s.do(t, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["userId"])

	cookie := authCookie(t, w)
	return resp["userId"], cookie
}

func authCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			return c
		}
	}
	t.Fatal("auth_token cookie not set")
	return nil
}
