package handler

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"
	serviceMocks "cryptoinvest/internal/service/mocks"
)

func avatarRequest(t *testing.T, field, contentType string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="me.png"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/avatar", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadAvatar(t *testing.T) {
	mockSvc := new(serviceMocks.MockProfileService)
	app := newApp()
	app.Post("/avatar", asUser(testUserID), UploadAvatar(mockSvc))

	png := []byte("\x89PNG\r\n\x1a\nfake")

	t.Run("success", func(t *testing.T) {
		readsPNG := mock.MatchedBy(func(r io.Reader) bool { return r != nil })
		mockSvc.On("UploadAvatar", mock.Anything, testUserID, readsPNG, "image/png", int64(len(png))).
			Return(&service.Profile{User: model.User{ID: testUserID}, AvatarURL: "https://cdn/x.png"}, nil).Once()

		resp, err := app.Test(avatarRequest(t, "file", "image/png", png))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing file", func(t *testing.T) {
		resp, err := app.Test(avatarRequest(t, "other", "image/png", png))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", errorCode(t, resp))
	})

	t.Run("rejected type", func(t *testing.T) {
		mockSvc.On("UploadAvatar", mock.Anything, testUserID, mock.Anything, "text/plain", mock.Anything).
			Return(nil, service.ErrInvalidInput).Once()

		resp, err := app.Test(avatarRequest(t, "file", "text/plain", []byte("hello")))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", errorCode(t, resp))
	})

	t.Run("storage failure", func(t *testing.T) {
		mockSvc.On("UploadAvatar", mock.Anything, testUserID, mock.Anything, "image/png", mock.Anything).
			Return(nil, errors.New("minio down")).Once()

		resp, err := app.Test(avatarRequest(t, "file", "image/png", png))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestProfileUpdates(t *testing.T) {
	mockSvc := new(serviceMocks.MockProfileService)
	app := newApp()
	app.Get("/profile", asUser(testUserID), GetProfile(mockSvc))
	app.Put("/profile", asUser(testUserID), UpdateProfile(mockSvc))
	app.Put("/profile/preferences", asUser(testUserID), UpdatePreferences(mockSvc))
	app.Put("/profile/notifications", asUser(testUserID), UpdateNotifications(mockSvc))
	app.Put("/profile/password", asUser(testUserID), ChangePassword(mockSvc))

	profile := &service.Profile{User: model.User{ID: testUserID}}

	t.Run("get", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, testUserID).Return(profile, nil).Once()
		resp, err := app.Test(jsonRequest(http.MethodGet, "/profile", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("info", func(t *testing.T) {
		in := model.ProfileUpdate{Name: "Ana", Phone: "+34 600", Country: "ES", City: "Madrid"}
		mockSvc.On("UpdateInfo", mock.Anything, testUserID, in).Return(profile, nil).Once()
		resp, err := app.Test(jsonRequest(http.MethodPut, "/profile", in))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invalid preferences", func(t *testing.T) {
		in := model.Preferences{Timezone: "GMT", Language: "en", Currency: "USD", Theme: "dark"}
		mockSvc.On("UpdatePreferences", mock.Anything, testUserID, in).Return(nil, service.ErrInvalidInput).Once()
		resp, err := app.Test(jsonRequest(http.MethodPut, "/profile/preferences", in))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("notifications", func(t *testing.T) {
		in := model.NotificationSettings{Email: true, Push: true}
		mockSvc.On("UpdateNotifications", mock.Anything, testUserID, in).Return(profile, nil).Once()
		resp, err := app.Test(jsonRequest(http.MethodPut, "/profile/notifications", in))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("password changed", func(t *testing.T) {
		in := service.PasswordChange{CurrentPassword: "old123", NewPassword: "new456", ConfirmPassword: "new456"}
		mockSvc.On("ChangePassword", mock.Anything, testUserID, in).Return(nil).Once()
		resp, err := app.Test(jsonRequest(http.MethodPut, "/profile/password", in))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("wrong current password", func(t *testing.T) {
		in := service.PasswordChange{CurrentPassword: "nope", NewPassword: "new456", ConfirmPassword: "new456"}
		mockSvc.On("ChangePassword", mock.Anything, testUserID, in).Return(service.ErrWrongPassword).Once()
		resp, err := app.Test(jsonRequest(http.MethodPut, "/profile/password", in))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "WRONG_PASSWORD", errorCode(t, resp))
	})

	mockSvc.AssertExpectations(t)
}
