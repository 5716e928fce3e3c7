package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecturelab/study-api/internal/config"
	"github.com/lecturelab/study-api/internal/domain"
	"github.com/lecturelab/study-api/internal/service/auth"
	"github.com/lecturelab/study-api/internal/store"
)

// mockUserStore is an in-memory implementation of store.UserStore.
type mockUserStore struct {
	usersByEmail map[string]*domain.User

	createErr error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{usersByEmail: make(map[string]*domain.User)}
}

func (m *mockUserStore) Create(_ context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.usersByEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	m.usersByEmail[user.Email] = user
	return nil
}

func (m *mockUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.usersByEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func newTestJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   "test-secret-key-thats-at-least-32-chars",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	})
	require.NoError(t, err)
	return jwtService
}

func newTestAuthHandler(t *testing.T, users store.UserStore) *AuthHandler {
	t.Helper()
	return NewAuthHandler(
		users,
		newTestJWTService(t),
		auth.NewBcryptHasher(4), // minimum cost to keep tests fast
		auth.NewBcryptVerifier(),
		0,
		nil,
	)
}

func postJSON(handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestRegister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           `{"email": "student@example.com", "password": "correct-horse-battery"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Invalid Email",
			body:           `{"email": "not-an-email", "password": "correct-horse-battery"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Password Too Short",
			body:           `{"email": "student@example.com", "password": "short"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed Body",
			body:           `{"email": `,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := newTestAuthHandler(t, newMockUserStore())
			rr := postJSON(handler.Register, "/api/auth/register", tc.body)

			require.Equal(t, tc.expectedStatus, rr.Code, "body: %s", rr.Body.String())

			if tc.expectedStatus == http.StatusCreated {
				var response AuthResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
				assert.NotEqual(t, uuid.Nil, response.UserID)
				assert.NotEmpty(t, response.AccessToken)
				assert.NotEmpty(t, response.RefreshToken)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	users := newMockUserStore()
	handler := newTestAuthHandler(t, users)
	body := `{"email": "student@example.com", "password": "correct-horse-battery"}`

	rr := postJSON(handler.Register, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = postJSON(handler.Register, "/api/auth/register", body)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegister_NeverStoresPlaintextPassword(t *testing.T) {
	t.Parallel()

	users := newMockUserStore()
	handler := newTestAuthHandler(t, users)

	rr := postJSON(handler.Register, "/api/auth/register",
		`{"email": "student@example.com", "password": "correct-horse-battery"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	user := users.usersByEmail["student@example.com"]
	require.NotNil(t, user)
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.HashedPassword)
	assert.NotEqual(t, "correct-horse-battery", user.HashedPassword)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	users := newMockUserStore()
	handler := newTestAuthHandler(t, users)

	rr := postJSON(handler.Register, "/api/auth/register",
		`{"email": "student@example.com", "password": "correct-horse-battery"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           `{"email": "student@example.com", "password": "correct-horse-battery"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Wrong Password",
			body:           `{"email": "student@example.com", "password": "wrong-password"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown Email",
			body:           `{"email": "nobody@example.com", "password": "correct-horse-battery"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Password",
			body:           `{"email": "student@example.com"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rr := postJSON(handler.Login, "/api/auth/login", tc.body)
			require.Equal(t, tc.expectedStatus, rr.Code, "body: %s", rr.Body.String())

			if tc.expectedStatus == http.StatusOK {
				var response AuthResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
				assert.NotEmpty(t, response.AccessToken)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	users := newMockUserStore()
	handler := newTestAuthHandler(t, users)

	rr := postJSON(handler.Register, "/api/auth/register",
		`{"email": "student@example.com", "password": "correct-horse-battery"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var registered AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&registered))

	t.Run("Success", func(t *testing.T) {
		body, err := json.Marshal(RefreshTokenRequest{RefreshToken: registered.RefreshToken})
		require.NoError(t, err)

		rr := postJSON(handler.Refresh, "/api/auth/refresh", string(body))
		require.Equal(t, http.StatusOK, rr.Code, "body: %s", rr.Body.String())

		var response RefreshTokenResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
		assert.NotEmpty(t, response.AccessToken)
		assert.NotEmpty(t, response.RefreshToken)
	})

	t.Run("Access Token Rejected", func(t *testing.T) {
		// An access token must not work as a refresh token.
		body, err := json.Marshal(RefreshTokenRequest{RefreshToken: registered.AccessToken})
		require.NoError(t, err)

		rr := postJSON(handler.Refresh, "/api/auth/refresh", string(body))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		rr := postJSON(handler.Refresh, "/api/auth/refresh", `{"refresh_token": "garbage"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Missing Token", func(t *testing.T) {
		rr := postJSON(handler.Refresh, "/api/auth/refresh", `{}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
