package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbook/booking-api/internal/model"
	"github.com/medbook/booking-api/pkg/apperror"
	"github.com/medbook/booking-api/pkg/query"
	"github.com/medbook/booking-api/pkg/token"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
	gets  int
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	f.gets++
	user, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user")
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, apperror.NotFound("user")
}

func (f *fakeUserRepo) UpdateSparse(ctx context.Context, id uuid.UUID, role model.Role, base, profile *query.Patch) (*model.User, error) {
	return nil, apperror.NotFound("user")
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return nil
}

func newTestGate(t *testing.T, users *fakeUserRepo) (*AuthMiddleware, *token.Issuer) {
	t.Helper()
	issuer := token.NewIssuer("test-secret", time.Hour)
	return NewAuthMiddleware(issuer, users), issuer
}

func performRequest(gate *AuthMiddleware, roles []model.Role, header string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := []gin.HandlerFunc{gate.Authenticate()}
	if len(roles) > 0 {
		handlers = append(handlers, gate.RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		principal, _ := PrincipalFromContext(c)
		c.JSON(http.StatusOK, principal)
	})
	router.GET("/protected", handlers...)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticateMissingToken(t *testing.T) {
	gate, _ := newTestGate(t, &fakeUserRepo{users: map[uuid.UUID]*model.User{}})

	w := performRequest(gate, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "please log in")
}

func TestAuthenticateBadToken(t *testing.T) {
	gate, _ := newTestGate(t, &fakeUserRepo{users: map[uuid.UUID]*model.User{}})

	w := performRequest(gate, nil, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateDeletedUser(t *testing.T) {
	gate, issuer := newTestGate(t, &fakeUserRepo{users: map[uuid.UUID]*model.User{}})

	raw, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	w := performRequest(gate, nil, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateValidToken(t *testing.T) {
	id := uuid.New()
	repo := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		id: {ID: id, Role: model.RolePatient},
	}}
	gate, issuer := newTestGate(t, repo)

	raw, err := issuer.Issue(id)
	require.NoError(t, err)

	w := performRequest(gate, nil, "Bearer "+raw)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
}

func TestAuthenticateCachesPrincipal(t *testing.T) {
	id := uuid.New()
	repo := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		id: {ID: id, Role: model.RoleDoctor},
	}}
	gate, issuer := newTestGate(t, repo)

	raw, err := issuer.Issue(id)
	require.NoError(t, err)

	performRequest(gate, nil, "Bearer "+raw)
	performRequest(gate, nil, "Bearer "+raw)
	assert.Equal(t, 1, repo.gets)
}

func TestAuthenticateCookieFallback(t *testing.T) {
	id := uuid.New()
	repo := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		id: {ID: id, Role: model.RolePatient},
	}}
	gate, issuer := newTestGate(t, repo)

	raw, err := issuer.Issue(id)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", gate.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: raw})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoles(t *testing.T) {
	id := uuid.New()
	repo := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		id: {ID: id, Role: model.RolePatient},
	}}
	gate, issuer := newTestGate(t, repo)

	raw, err := issuer.Issue(id)
	require.NoError(t, err)

	w := performRequest(gate, []model.Role{model.RolePatient}, "Bearer "+raw)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(gate, []model.Role{model.RoleAdmin}, "Bearer "+raw)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "permission")
}
