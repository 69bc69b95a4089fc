package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, target, field, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFileHandler_UploadProfile(t *testing.T) {
	id := testIdentity()
	svc := new(MockFileService)
	handler := NewFileHandler(svc, zerolog.Nop())

	var got model.Upload
	svc.On("UploadProfilePicture", mock.Anything, id, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(2).(model.Upload)
		data, _ := io.ReadAll(got.Body)
		assert.Equal(t, "png-bytes", string(data))
	}).Return("https://bucket.s3.amazonaws.com/users/x/profile-1-me.png", nil)

	req := withIdentity(multipartRequest(t, "/files/upload-profile", "file", "me.png", "png-bytes"), id)
	rec := httptest.NewRecorder()
	handler.UploadProfile(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "me.png", got.Filename)
	assert.Equal(t, int64(len("png-bytes")), got.Size)
	assert.Contains(t, rec.Body.String(), "Profile picture updated successfully")
}

func TestFileHandler_UploadProfile_NoFile(t *testing.T) {
	id := testIdentity()
	svc := new(MockFileService)
	handler := NewFileHandler(svc, zerolog.Nop())

	req := withIdentity(multipartRequest(t, "/files/upload-profile", "", "", ""), id)
	rec := httptest.NewRecorder()
	handler.UploadProfile(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrFileRequired.Message, decodeMessage(t, rec))
	svc.AssertNotCalled(t, "UploadProfilePicture", mock.Anything, mock.Anything, mock.Anything)
}

func TestFileHandler_UploadProduct_Forbidden(t *testing.T) {
	id := testIdentity()
	productID := uuid.New()
	svc := new(MockFileService)
	handler := NewFileHandler(svc, zerolog.Nop())
	svc.On("UploadProductImage", mock.Anything, id, productID, mock.Anything).Return("", model.ErrForbidden)

	req := multipartRequest(t, "/files/upload-product/"+productID.String(), "file", "a.png", "x")
	req = withParams(withIdentity(req, id), "productId", productID.String())
	rec := httptest.NewRecorder()
	handler.UploadProduct(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFileHandler_Delete(t *testing.T) {
	id := testIdentity()
	svc := new(MockFileService)
	handler := NewFileHandler(svc, zerolog.Nop())
	svc.On("Delete", mock.Anything, id, "users/x/profile-1-a.png").Return(nil)
	svc.On("Delete", mock.Anything, id, "").Return(model.ErrFileKeyRequired)

	rec := httptest.NewRecorder()
	handler.Delete(rec, withIdentity(httptest.NewRequest(http.MethodDelete, "/files/delete-file", strings.NewReader(`{"key":"users/x/profile-1-a.png"}`)), id))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Delete(rec, withIdentity(httptest.NewRequest(http.MethodDelete, "/files/delete-file", strings.NewReader(`{}`)), id))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrFileKeyRequired.Message, decodeMessage(t, rec))
}

func TestFileHandler_SignedURL_StorageDisabled(t *testing.T) {
	id := testIdentity()
	svc := new(MockFileService)
	handler := NewFileHandler(svc, zerolog.Nop())
	svc.On("SignedURL", mock.Anything, "users/x/a.png").Return("", model.ErrStorageDisabled)

	rec := httptest.NewRecorder()
	handler.SignedURL(rec, withIdentity(httptest.NewRequest(http.MethodGet, "/files/signed-url?key=users/x/a.png", nil), id))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
