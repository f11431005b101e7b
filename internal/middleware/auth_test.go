package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"online-bookstore/internal/models"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserLoader serves users from a map
type fakeUserLoader struct {
	users map[int]*models.User
}

func (f *fakeUserLoader) GetUser(id int) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func newTestAuth(users ...*models.User) (*AuthMiddleware, sessions.Store) {
	loader := &fakeUserLoader{users: make(map[int]*models.User)}
	for _, user := range users {
		loader.users[user.ID] = user
	}
	store := sessions.NewCookieStore([]byte("test-secret"))
	return NewAuthMiddleware(loader, store), store
}

// sessionRequest builds a request carrying a session cookie for userID
func sessionRequest(t *testing.T, store sessions.Store, userID int) *http.Request {
	t.Helper()

	setup := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	session, _ := store.Get(setup, SessionName)
	session.Values["user_id"] = userID
	require.NoError(t, session.Save(setup, rec))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestLoadUserPopulatesContext(t *testing.T) {
	auth, store := newTestAuth(&models.User{ID: 7, Email: "buyer@example.com", Role: models.RoleBuyer})

	var got *models.User
	handler := auth.LoadUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), sessionRequest(t, store, 7))

	require.NotNil(t, got)
	assert.Equal(t, "buyer@example.com", got.Email)
}

func TestLoadUserAnonymousWithoutSession(t *testing.T) {
	auth, _ := newTestAuth()

	var got *models.User
	handler := auth.LoadUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, got)
}

func TestLoadUserClearsBlockedAccount(t *testing.T) {
	auth, store := newTestAuth(&models.User{ID: 7, IsBlocked: true})

	var got *models.User
	handler := auth.LoadUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), sessionRequest(t, store, 7))
	assert.Nil(t, got, "blocked users continue anonymously")
}

func TestRequireAuth(t *testing.T) {
	auth, store := newTestAuth(&models.User{ID: 7, Role: models.RoleBuyer})

	handler := auth.LoadUser(auth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, sessionRequest(t, store, 7))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireManagerAndAdmin(t *testing.T) {
	buyer := &models.User{ID: 1, Role: models.RoleBuyer}
	manager := &models.User{ID: 2, Role: models.RoleManager}
	admin := &models.User{ID: 3, Role: models.RoleAdmin}
	auth, store := newTestAuth(buyer, manager, admin)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		wrap   func(http.Handler) http.Handler
		userID int
		expect int
	}{
		{"buyer blocked from manager route", auth.RequireManager, 1, http.StatusForbidden},
		{"manager passes manager route", auth.RequireManager, 2, http.StatusOK},
		{"admin passes manager route", auth.RequireManager, 3, http.StatusOK},
		{"manager blocked from admin route", auth.RequireAdmin, 2, http.StatusForbidden},
		{"admin passes admin route", auth.RequireAdmin, 3, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := auth.LoadUser(tt.wrap(ok))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, sessionRequest(t, store, tt.userID))
			assert.Equal(t, tt.expect, rec.Code)
		})
	}
}
