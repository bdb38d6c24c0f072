package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kariqs/goutam-store/accounts"
	"github.com/Kariqs/goutam-store/cart"
	"github.com/Kariqs/goutam-store/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type memorySessions struct {
	saved map[string]cart.Session
}

func (m *memorySessions) Load(_ context.Context, id string) (*cart.Session, error) {
	if s, ok := m.saved[id]; ok {
		return &s, nil
	}
	return cart.NewSession(id), nil
}

func (m *memorySessions) Save(_ context.Context, s *cart.Session) error {
	m.saved[s.ID] = *s
	return nil
}

type fakeAccounts struct {
	users map[string]models.UserProfile
}

func (f fakeAccounts) Authenticate(ctx context.Context, token string) (models.UserProfile, error) {
	return f.CurrentUser(ctx, strings.TrimPrefix(token, "token-"))
}

func (f fakeAccounts) CurrentUser(_ context.Context, userID string) (models.UserProfile, error) {
	u, ok := f.users[userID]
	if !ok {
		return u, accounts.ErrInvalidToken
	}
	if u.Disabled {
		return u, accounts.ErrAccountDisabled
	}
	return u, nil
}

func (f fakeAccounts) AuthorizeAdmin(ctx context.Context, userID string) (models.UserProfile, error) {
	u, err := f.CurrentUser(ctx, userID)
	if err != nil || !u.IsAdmin() {
		return u, accounts.ErrAccessDenied
	}
	return u, nil
}

func newEngine(sessions SessionStore, auth fakeAccounts) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(sessions, time.Hour, false, nil))
	r.GET("/whoami", RequireAuth(auth, sessions, nil), func(ctx *gin.Context) {
		u, _ := CurrentUser(ctx)
		ctx.String(http.StatusOK, u.ID)
	})
	r.GET("/admin", RequireAuth(auth, sessions, nil), RequireAdmin(auth), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionIssuesIDForUnknownCallers(t *testing.T) {
	r := newEngine(&memorySessions{saved: map[string]cart.Session{}}, fakeAccounts{})

	w := get(r, "/whoami", map[string]string{SessionHeader: "not-a-uuid"})
	id := w.Header().Get(SessionHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected a fresh session id, got %q", id)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), SessionCookie+"="+id) {
		t.Fatalf("cookie not set: %q", w.Header().Get("Set-Cookie"))
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous caller got %d", w.Code)
	}
}

func TestRequireAuthSignsSessionIn(t *testing.T) {
	sessions := &memorySessions{saved: map[string]cart.Session{}}
	auth := fakeAccounts{users: map[string]models.UserProfile{"u1": {ID: "u1", Role: models.RoleUser}}}
	r := newEngine(sessions, auth)

	w := get(r, "/whoami", map[string]string{"Authorization": "Bearer token-u1"})
	if w.Code != http.StatusOK || w.Body.String() != "u1" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
	id := w.Header().Get(SessionHeader)
	if s := sessions.saved[id]; !s.Authenticated || s.UserID != "u1" {
		t.Fatalf("session not signed in: %+v", s)
	}

	// The session alone is now enough.
	if w := get(r, "/whoami", map[string]string{SessionHeader: id}); w.Code != http.StatusOK {
		t.Fatalf("session auth failed with %d", w.Code)
	}
}

func TestDisabledUserIsSignedOut(t *testing.T) {
	sessions := &memorySessions{saved: map[string]cart.Session{}}
	users := map[string]models.UserProfile{"u1": {ID: "u1", Role: models.RoleUser}}
	r := newEngine(sessions, fakeAccounts{users: users})

	id := get(r, "/whoami", map[string]string{"Authorization": "Bearer token-u1"}).Header().Get(SessionHeader)
	users["u1"] = models.UserProfile{ID: "u1", Role: models.RoleUser, Disabled: true}

	w := get(r, "/whoami", map[string]string{SessionHeader: id})
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), `"redirect":"/login"`) {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if s := sessions.saved[id]; s.Authenticated || s.Notice != cart.NoticeAccountDisabled {
		t.Fatalf("session should be signed out with a notice: %+v", s)
	}
}

func TestRequireAdmin(t *testing.T) {
	auth := fakeAccounts{users: map[string]models.UserProfile{
		"admin": {ID: "admin", Role: models.RoleAdmin},
		"user":  {ID: "user", Role: models.RoleUser},
	}}
	r := newEngine(&memorySessions{saved: map[string]cart.Session{}}, auth)

	if w := get(r, "/admin", map[string]string{"Authorization": "Bearer token-admin"}); w.Code != http.StatusNoContent {
		t.Fatalf("admin got %d", w.Code)
	}
	w := get(r, "/admin", map[string]string{"Authorization": "Bearer token-user"})
	if w.Code != http.StatusForbidden || !strings.Contains(w.Body.String(), `"redirect":"/"`) {
		t.Fatalf("user got %d %s", w.Code, w.Body.String())
	}
}

func TestMetricsInstrumentUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics("test")
	r := gin.New()
	r.Use(m.Instrument())
	r.GET("/products/:id", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	get(r, "/products/a", nil)
	get(r, "/products/b", nil)
	get(r, "/missing", nil)

	if n := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/products/:id", "200")); n != 2 {
		t.Fatalf("route counter = %v, want 2", n)
	}
	if n := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")); n != 1 {
		t.Fatalf("unmatched counter = %v, want 1", n)
	}

	m.OrderPlaced(context.Background(), models.Order{Status: models.OrderStatusCash, Total: 140})
	if v := testutil.ToFloat64(m.OrderValue.WithLabelValues("Cash")); v != 140 {
		t.Fatalf("order value = %v", v)
	}
}
