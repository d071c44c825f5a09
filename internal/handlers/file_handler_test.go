package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadReq(userID string, payload []byte, cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload/"+userID, bytes.NewReader(payload))
	req.Header.Set(headerEncryptedKey, "aabb")
	req.Header.Set(headerEncryptedMetadata, "ccdd")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestUpload(t *testing.T) {
	s := newTestServer(t)
	userID, cookie := s.registerUser(t, "alice")

	t.Run("created", func(t *testing.T) {
		w := s.do(t, uploadReq(userID, []byte("iv-and-ciphertext"), cookie))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp["fileId"])
	})

	t.Run("unauthorized without cookie", func(t *testing.T) {
		w := s.do(t, uploadReq(userID, []byte("data"), nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("forbidden for foreign path", func(t *testing.T) {
		otherID, _ := s.registerUser(t, "mallory")
		// токен mallory не даёт писать в пространство alice, и наоборот
		w := s.do(t, uploadReq(otherID, []byte("data"), cookie))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing headers rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/files/upload/"+userID, bytes.NewReader([]byte("data")))
		req.AddCookie(cookie)
		w := s.do(t, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		w := s.do(t, uploadReq(userID, nil, cookie))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized payload rejected", func(t *testing.T) {
		big := make([]byte, int(s.cfg.BlobMaxSizeMB)*1024*1024+1)
		w := s.do(t, uploadReq(userID, big, cookie))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestListFiles(t *testing.T) {
	s := newTestServer(t)
	userID, cookie := s.registerUser(t, "alice")
	otherID, otherCookie := s.registerUser(t, "bob")

	w := s.do(t, uploadReq(userID, []byte("one"), cookie))
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, uploadReq(otherID, []byte("two"), otherCookie))
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("only own files", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/files/"+userID, nil)
		req.AddCookie(cookie)
		w := s.do(t, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp []FileDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "aabb", resp[0].WrappedKey)
		assert.Equal(t, "ccdd", resp[0].EncryptedMetadata)
		assert.NotEmpty(t, resp[0].CreatedAt)
	})

	t.Run("unauthorized without cookie", func(t *testing.T) {
		w := s.do(t, httptest.NewRequest(http.MethodGet, "/api/files/"+userID, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("forbidden for foreign listing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/files/"+userID, nil)
		req.AddCookie(otherCookie)
		w := s.do(t, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDownload(t *testing.T) {
	s := newTestServer(t)
	userID, cookie := s.registerUser(t, "alice")

	payload := []byte{0x01, 0x02, 0x03, 0xFF}
	w := s.do(t, uploadReq(userID, payload, cookie))
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	fileID := created["fileId"]

	t.Run("roundtrip bytes intact", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/files/download/"+userID+"/"+fileID, nil)
		req.AddCookie(cookie)
		w := s.do(t, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
		assert.Equal(t, payload, w.Body.Bytes())
	})

	t.Run("unknown file not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/files/download/"+userID+"/no-such-file", nil)
		req.AddCookie(cookie)
		w := s.do(t, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("foreign path forbidden", func(t *testing.T) {
		_, otherCookie := s.registerUser(t, "bob")
		req := httptest.NewRequest(http.MethodGet, "/api/files/download/"+userID+"/"+fileID, nil)
		req.AddCookie(otherCookie)
		w := s.do(t, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDelete(t *testing.T) {
	s := newTestServer(t)
	userID, cookie := s.registerUser(t, "alice")

	w := s.do(t, uploadReq(userID, []byte("data"), cookie))
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	fileID := created["fileId"]

	t.Run("foreign path forbidden and file survives", func(t *testing.T) {
		_, otherCookie := s.registerUser(t, "bob")
		req := httptest.NewRequest(http.MethodDelete, "/api/files/"+userID+"/"+fileID, nil)
		req.AddCookie(otherCookie)
		w := s.do(t, req)
		assert.Equal(t, http.StatusForbidden, w.Code)

		// файл на месте
		req = httptest.NewRequest(http.MethodGet, "/api/files/download/"+userID+"/"+fileID, nil)
		req.AddCookie(cookie)
		assert.Equal(t, http.StatusOK, s.do(t, req).Code)
	})

	t.Run("owner deletes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/files/"+userID+"/"+fileID, nil)
		req.AddCookie(cookie)
		w := s.do(t, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp map[string]bool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp["deleted"])

		// после удаления download — 404
		req = httptest.NewRequest(http.MethodGet, "/api/files/download/"+userID+"/"+fileID, nil)
		req.AddCookie(cookie)
		assert.Equal(t, http.StatusNotFound, s.do(t, req).Code)

		// повторное удаление — 404
		req = httptest.NewRequest(http.MethodDelete, "/api/files/"+userID+"/"+fileID, nil)
		req.AddCookie(cookie)
		assert.Equal(t, http.StatusNotFound, s.do(t, req).Code)
	})
}
