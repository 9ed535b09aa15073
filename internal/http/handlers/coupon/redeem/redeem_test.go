package redeem

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/http/middlewarectx"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

const testCouponCode = "9f86d081884c7d659a2feaa0c55ad015"

// MockService реализует интерфейс redeem.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Redeem(ctx context.Context, user models.SessionUser, code string) (string, error) {
	args := m.Called(ctx, user, code)
	return args.String(0), args.Error(1)
}

func TestRedeemHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	user := models.SessionUser{ID: "user-1", Username: "resourcerer", Email: "user@example.com"}

	tests := []struct {
		name           string
		body           string
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное погашение купона",
			body:     fmt.Sprintf(`{"code":"%s"}`, testCouponCode),
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Redeem", mock.Anything, user, testCouponCode).
					Return("Coupon successfully used for 250 cubes", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"message":"Coupon successfully used for 250 cubes"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"code":`,
			withUser:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "код не 32-символьный hex",
			body:           `{"code":"short"}`,
			withUser:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:           "запрос без пользователя в контексте",
			body:           fmt.Sprintf(`{"code":"%s"}`, testCouponCode),
			withUser:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:     "использованный купон — 404",
			body:     fmt.Sprintf(`{"code":"%s"}`, testCouponCode),
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Redeem", mock.Anything, user, testCouponCode).
					Return("", fmt.Errorf("coupon.Redeem: %w", apperr.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"could not redeem coupon"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/coupons/use", strings.NewReader(tt.body))
			if tt.withUser {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.User, user))
			}

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
