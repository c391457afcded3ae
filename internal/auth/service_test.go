package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/infowows/trg-crm-sub000/internal/shared"
)

type mockRepo struct {
	byEmail map[string]*User
}

func (m *mockRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func newTestAuth(t *testing.T) (*Service, *TokenManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockRepo{byEmail: map[string]*User{
		"an@example.com": {
			ID: 1, Email: "an@example.com", Name: "An",
			PasswordHash: string(hash), IsActive: true,
		},
		"off@example.com": {
			ID: 2, Email: "off@example.com", Name: "Off",
			PasswordHash: string(hash), IsActive: false,
		},
	}}
	tokens := NewTokenManager("test-secret", time.Hour, rdb)
	return NewService(repo, tokens), tokens
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, tokens := newTestAuth(t)

	token, user, err := svc.Login(context.Background(), "an@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "An", user.Name)

	claims, err := tokens.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, "an@example.com", claims.Email)
}

func TestLoginFailuresCollapse(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, _, err := svc.Login(context.Background(), "an@example.com", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, _, err = svc.Login(context.Background(), "off@example.com", "correct horse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, tokens := newTestAuth(t)
	token, _, err := svc.Login(context.Background(), "an@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token))

	_, err = tokens.Verify(context.Background(), token)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	_, tokens := newTestAuth(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	other := NewTokenManager("other-secret", time.Hour, rdb)

	forged, err := other.Issue(&User{ID: 9, Email: "mallory@example.com"})
	require.NoError(t, err)

	_, err = tokens.Verify(context.Background(), forged)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestMiddlewareSetsActor(t *testing.T) {
	svc, tokens := newTestAuth(t)
	token, _, err := svc.Login(context.Background(), "an@example.com", "correct horse")
	require.NoError(t, err)

	var got *shared.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = shared.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(tokens)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "An", got.Name)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
