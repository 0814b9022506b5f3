package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"
	serviceMocks "cryptoinvest/internal/service/mocks"
)

func TestRegister(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := newApp()
	app.Post("/register", Register(mockSvc))

	t.Run("created", func(t *testing.T) {
		in := service.RegisterInput{Email: "ana@example.com", Password: "secret1", Name: "Ana", ReferralCode: "ABCD1234"}
		res := &service.AuthResult{User: &model.User{ID: testUserID, Email: in.Email}, Token: "jwt", ExpiresAt: time.Now().Add(time.Hour)}
		mockSvc.On("Register", mock.Anything, in).Return(res, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/register", in))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body service.AuthResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "jwt", body.Token)
		assert.Equal(t, testUserID, body.User.ID)
	})

	t.Run("email taken", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrEmailTaken).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/register", map[string]string{"email": "x@example.com", "password": "secret1"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "EMAIL_TAKEN", errorCode(t, resp))
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/register", "{not json"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", errorCode(t, resp))
	})

	mockSvc.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := newApp()
	app.Post("/login", Login(mockSvc))

	t.Run("ok", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "ana@example.com", "secret1").
			Return(&service.AuthResult{Token: "jwt"}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/login", loginRequest{Email: "ana@example.com", Password: "secret1"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad credentials", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "ana@example.com", "wrong").
			Return(nil, service.ErrInvalidCredentials).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/login", loginRequest{Email: "ana@example.com", Password: "wrong"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, resp))
	})

	t.Run("blocked", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "blocked@example.com", "secret1").
			Return(nil, service.ErrUserBlocked).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/login", loginRequest{Email: "blocked@example.com", Password: "secret1"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestMe(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := newApp()
	app.Get("/me", asUser(testUserID), Me(mockSvc))

	mockSvc.On("Me", mock.Anything, testUserID).Return(&model.User{ID: testUserID, PasswordHash: "hash"}, nil).Once()

	resp, err := app.Test(jsonRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["id"])
	assert.NotContains(t, body, "password_hash")
	mockSvc.AssertExpectations(t)
}
