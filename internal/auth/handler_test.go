package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopebridge/hopebridge/internal/auth"
	"github.com/hopebridge/hopebridge/internal/backend"
	"github.com/hopebridge/hopebridge/internal/shared"
	"github.com/hopebridge/hopebridge/internal/view"
	_ "github.com/hopebridge/hopebridge/testing"
)

func platformLogin(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch {
		case body["email"] == "ada@hopebridge.org" && body["password"] == "correct-horse":
			_, _ = w.Write([]byte(`{"token":"jwt-admin","user":{"_id":"u1","name":"Ada","email":"ada@hopebridge.org","role":"Admin"}}`))
		case body["email"] == "vol@hopebridge.org":
			_, _ = w.Write([]byte(`{"token":"jwt-vol","role":"volunteer","user":{"_id":"u2","name":"Vol"}}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type authFixture struct {
	router   http.Handler
	sessions *shared.SessionManager
	last     *shared.Session
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	templates, err := view.NewEngine()
	require.NoError(t, err)

	api := backend.NewClient(platformLogin(t).URL, time.Second, nil)
	handler := auth.NewHandler(nil, auth.NewService(api), templates, shared.NewCSRFManager("csrfsecret"))

	f := &authFixture{sessions: shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := f.sessions.Load(req.Context(), req)
			require.NoError(t, err)
			f.last = sess
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(&committer{ResponseWriter: w, commit: func() {
				require.NoError(t, f.sessions.Commit(context.Background(), w, req, sess))
			}}, req.WithContext(ctx))
		})
	})
	r.Route("/auth", handler.MountRoutes)
	f.router = r
	return f
}

type committer struct {
	http.ResponseWriter
	commit func()
	done   bool
}

func (c *committer) WriteHeader(status int) {
	if !c.done {
		c.done = true
		c.commit()
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *committer) Write(b []byte) (int, error) {
	if !c.done {
		c.WriteHeader(http.StatusOK)
	}
	return c.ResponseWriter.Write(b)
}

func (f *authFixture) login(form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestLoginPage(t *testing.T) {
	f := newAuthFixture(t)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/login?next=%2Fadmin%2Fblogs&expired=1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<form")
	assert.Contains(t, body, `value="/admin/blogs"`)
	assert.Contains(t, body, "Your session has expired")
	assert.NotEmpty(t, f.last.Get(shared.CSRFSessionKey))
}

func TestLoginValidation(t *testing.T) {
	f := newAuthFixture(t)
	rr := f.login(url.Values{"email": {"not-an-email"}, "password": {"short"}})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Enter a valid email address.")
	assert.Contains(t, rr.Body.String(), "Must be at least 8 characters.")
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	rr := f.login(url.Values{"email": {"ada@hopebridge.org"}, "password": {"wrong-password"}})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid email or password.")
	assert.Empty(t, f.last.Token())
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	f := newAuthFixture(t)
	rr := f.login(url.Values{"email": {"vol@hopebridge.org"}, "password": {"whatever-pass"}})
	require.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, f.last.Token())
}

func TestLoginStoresTokenAndHonoursNext(t *testing.T) {
	f := newAuthFixture(t)
	rr := f.login(url.Values{"email": {"ada@hopebridge.org"}, "password": {"correct-horse"}, "next": {"/admin/blogs?q=water"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/blogs?q=water", rr.Header().Get("Location"))
	assert.Equal(t, "jwt-admin", f.last.Token())
	assert.Equal(t, shared.RoleAdmin, f.last.Role())
	assert.Equal(t, "Ada", f.last.DisplayName())
	assert.Equal(t, "u1", f.last.User())
}

func TestLoginIgnoresForeignNext(t *testing.T) {
	f := newAuthFixture(t)
	rr := f.login(url.Values{"email": {"ada@hopebridge.org"}, "password": {"correct-horse"}, "next": {"//evil.example/phish"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/campaigns", rr.Header().Get("Location"))
}

func TestLogoutClearsSession(t *testing.T) {
	f := newAuthFixture(t)
	rr := f.login(url.Values{"email": {"ada@hopebridge.org"}, "password": {"correct-horse"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	out := httptest.NewRecorder()
	f.router.ServeHTTP(out, req)
	require.Equal(t, http.StatusSeeOther, out.Code)
	assert.Equal(t, "/auth/login", out.Header().Get("Location"))
	assert.Empty(t, f.last.Token())

	var cleared bool
	for _, c := range out.Result().Cookies() {
		if c.Name == "test_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestLanding(t *testing.T) {
	assert.Equal(t, "/admin/campaigns", auth.Landing(shared.RoleAdmin))
	assert.Equal(t, "/donor/campaigns", auth.Landing(shared.RoleDonor))
	assert.Equal(t, "/", auth.Landing(""))
}
