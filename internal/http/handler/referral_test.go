package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cryptoinvest/internal/model"
	"cryptoinvest/internal/service"
	serviceMocks "cryptoinvest/internal/service/mocks"
)

func TestReferralHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockReferralService)
	app := newApp()
	app.Get("/referrals", asUser(testUserID), ReferralSummary(mockSvc))
	app.Get("/referrals/users", asUser(testUserID), ListReferrals(mockSvc))
	app.Get("/referrals/levels", ReferralLevels(mockSvc))

	t.Run("summary", func(t *testing.T) {
		mockSvc.On("Summary", mock.Anything, testUserID).Return(&service.ReferralSummary{
			Code:           "ABCD1234",
			Link:           "https://app.example.com/register?ref=ABCD1234",
			TotalReferrals: 3,
			TotalEarnings:  decimal.NewFromInt(15),
			Level:          service.ReferralLevel{Name: "Principiante"},
			ToNextLevel:    2,
		}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodGet, "/referrals", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ABCD1234", body["code"])
		assert.Equal(t, float64(2), body["referrals_to_next_level"])
	})

	t.Run("users", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, testUserID).Return([]model.Referral{{ReferredEmail: "bo@example.com"}}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodGet, "/referrals/users", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, testUserID).Return(nil, service.ErrNotFound).Once()

		resp, err := app.Test(jsonRequest(http.MethodGet, "/referrals/users", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("levels", func(t *testing.T) {
		mockSvc.On("Levels").Return([]service.ReferralLevel{{Name: "Principiante"}, {Name: "Bronce"}}).Once()

		resp, err := app.Test(jsonRequest(http.MethodGet, "/referrals/levels", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}
