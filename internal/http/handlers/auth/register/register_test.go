package register

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
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, name, username, email, password string) (string, error) {
	args := m.Called(ctx, name, username, email, password)
	return args.String(0), args.Error(1)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация",
			body: `{"name":"Rishi","username":"resourcerer","email":"user@example.com","password":"qwerty123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Rishi", "resourcerer", "user@example.com", "qwerty123").
					Return("token-1", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"token-1"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"name":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "слишком короткий пароль",
			body:           `{"name":"Rishi","username":"resourcerer","email":"user@example.com","password":"short"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:           "некорректная почта",
			body:           `{"name":"Rishi","username":"resourcerer","email":"not-an-email","password":"qwerty123"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Email must be a valid email`,
		},
		{
			name: "занятая почта — 400",
			body: `{"name":"Rishi","username":"resourcerer","email":"user@example.com","password":"qwerty123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Rishi", "resourcerer", "user@example.com", "qwerty123").
					Return("", fmt.Errorf("auth.Register: email already registered: %w", apperr.ErrConflict))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"could not register user"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
