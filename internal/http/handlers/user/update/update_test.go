package update

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/auth-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/auth-service/internal/models"
	userservice "github.com/magabrotheeeer/auth-service/internal/services/user"
)

type UserServiceMock struct{ mock.Mock }

func (m *UserServiceMock) UpdateUser(ctx context.Context, u models.User, allowRoleChange bool) (bool, error) {
	args := m.Called(ctx, u, allowRoleChange)
	return args.Bool(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func validRequest() Request {
	return Request{
		ID:        1,
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "ivan@example.com",
		Username:  "ivan",
		Password:  "secret123",
		Role:      models.RoleUser,
	}
}

func TestUpdateHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		principal      *models.Principal
		wantRoleChange bool
		mockOK         bool
		mockErr        error
		wantStatusCode int
	}{
		{
			name:           "success as regular user",
			requestBody:    validRequest(),
			principal:      &models.Principal{Username: "ivan", Authorities: []string{models.RoleUser}},
			wantRoleChange: false,
			mockOK:         true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "admin may change role",
			requestBody:    validRequest(),
			principal:      &models.Principal{Username: "root", Authorities: []string{models.RoleAdmin}},
			wantRoleChange: true,
			mockOK:         true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "unknown id",
			requestBody:    validRequest(),
			principal:      &models.Principal{Username: "ivan", Authorities: []string{models.RoleUser}},
			mockErr:        userservice.ErrUpdateUserNotFound,
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "role change denied",
			requestBody:    validRequest(),
			principal:      &models.Principal{Username: "ivan", Authorities: []string{models.RoleUser}},
			mockErr:        userservice.ErrRoleChangeNotAllowed,
			wantStatusCode: http.StatusConflict,
		},
		{
			name:           "username taken",
			requestBody:    validRequest(),
			principal:      &models.Principal{Username: "ivan", Authorities: []string{models.RoleUser}},
			mockErr:        userservice.ErrUsernameTaken,
			wantStatusCode: http.StatusConflict,
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "validation error - missing id",
			requestBody: Request{
				FirstName: "Ivan",
				LastName:  "Petrov",
				Email:     "ivan@example.com",
				Username:  "ivan",
				Password:  "secret123",
				Role:      models.RoleUser,
			},
			wantStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usersMock := new(UserServiceMock)
			if tt.mockOK || tt.mockErr != nil {
				usersMock.On("UpdateUser", mock.Anything, mock.Anything, tt.wantRoleChange).
					Return(tt.mockOK, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), usersMock)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPut, "/users", bytes.NewReader(bodyBytes))
			if tt.principal != nil {
				ctx := context.WithValue(req.Context(), middlewarectx.PrincipalKey, tt.principal)
				req = req.WithContext(ctx)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			usersMock.AssertExpectations(t)
		})
	}
}
