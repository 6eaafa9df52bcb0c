package shared

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
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "hb_session", "secret", time.Hour, false), mr
}

func roundTrip(t *testing.T, sm *SessionManager, sess *Session) *Session {
	t.Helper()
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range res.Result().Cookies() {
		next.AddCookie(c)
	}
	loaded, err := sm.Load(ctx, next)
	require.NoError(t, err)
	return loaded
}

func TestSessionCarriesPrincipal(t *testing.T) {
	sm, _ := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.False(t, SignedIn(sess))

	sess.SignIn("42", "tok-abc", RoleAdmin, "Asha")
	loaded := roundTrip(t, sm, sess)

	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "tok-abc", loaded.Token())
	assert.Equal(t, RoleAdmin, loaded.Role())
	assert.Equal(t, "Asha", loaded.DisplayName())
	assert.Equal(t, "42", loaded.User())
	assert.True(t, HasRole(loaded, RoleDonor), "admins hold every role")
}

func TestFlashSurvivesRedirectOnce(t *testing.T) {
	sm, _ := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.AddFlash(FlashMessage{Kind: "success", Message: "Deleted"})

	loaded := roundTrip(t, sm, sess)
	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Deleted", flash.Message)

	again := roundTrip(t, sm, loaded)
	assert.Nil(t, again.PopFlash())
}

func TestClearDestroysSession(t *testing.T) {
	sm, mr := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SignIn("7", "tok", RoleDonor, "")
	_ = roundTrip(t, sm, sess)
	require.True(t, mr.Exists(sm.redisKey(sess.ID)))

	sess.Clear()
	assert.Empty(t, sess.Token())
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), res, httptest.NewRequest(http.MethodGet, "/", nil), sess))
	assert.False(t, mr.Exists(sm.redisKey(sess.ID)))
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSignInRotatesSessionID(t *testing.T) {
	sm, mr := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.Set("note", "before")
	sess = roundTrip(t, sm, sess)
	before := sess.ID
	sess.Set(CSRFSessionKey, "pre-login")

	sess.SignIn("9", "tok", RoleAdmin, "Ravi")
	loaded := roundTrip(t, sm, sess)

	assert.NotEqual(t, before, loaded.ID)
	assert.False(t, mr.Exists(sm.redisKey(before)))
	assert.Equal(t, "before", loaded.Get("note"))
	assert.Empty(t, loaded.Get(CSRFSessionKey))
	assert.Equal(t, "tok", loaded.Token())
}

func TestAnonymousUntouchedSessionIsNotStored(t *testing.T) {
	sm, mr := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), res, httptest.NewRequest(http.MethodGet, "/", nil), sess))
	assert.Empty(t, res.Result().Cookies())
	assert.Empty(t, mr.Keys())
}

func TestForgedCookieStartsFreshSession(t *testing.T) {
	sm, _ := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SignIn("1", "tok", RoleDonor, "")
	stored := roundTrip(t, sm, sess)
	require.Equal(t, "tok", stored.Token())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "hb_session", Value: stored.ID + ".forged"})
	forged, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, stored.ID, forged.ID)
	assert.False(t, SignedIn(forged))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "hb_session", Value: stored.ID})
	unsigned, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, SignedIn(unsigned))
}

func TestCommitExtendsStoredSession(t *testing.T) {
	sm, mr := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SignIn("1", "tok", RoleDonor, "")
	loaded := roundTrip(t, sm, sess)

	mr.FastForward(50 * time.Minute)
	require.Less(t, mr.TTL(sm.redisKey(loaded.ID)), 15*time.Minute)

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), res, httptest.NewRequest(http.MethodGet, "/", nil), loaded))
	assert.Equal(t, time.Hour, mr.TTL(sm.redisKey(loaded.ID)))
	require.Len(t, res.Result().Cookies(), 1)
	assert.Equal(t, 3600, res.Result().Cookies()[0].MaxAge)
}

func TestRequestPrincipalWithoutSession(t *testing.T) {
	p := RequestPrincipal(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, SignedIn(p))
	assert.False(t, HasRole(p, RoleAdmin))
	p.Clear()
}

func TestCSRFTokenLifecycle(t *testing.T) {
	sm, _ := newTestManager(t)
	csrf := NewCSRFManager("csrf")
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	token, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	again, err := csrf.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	assert.NoError(t, csrf.VerifyToken(context.Background(), sess, token))
	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, "forged"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), nil, token), ErrCSRFTokenMissing)
}

func TestCSRFTokenIsBoundToSession(t *testing.T) {
	sm, _ := newTestManager(t)
	csrf := NewCSRFManager("csrf")
	first, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	second, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	token, err := csrf.EnsureToken(context.Background(), first)
	require.NoError(t, err)
	second.Set(CSRFSessionKey, token)
	assert.ErrorIs(t, csrf.VerifyToken(context.Background(), second, token), ErrCSRFTokenMismatch)

	other := NewCSRFManager("other-secret")
	assert.ErrorIs(t, other.VerifyToken(context.Background(), first, token), ErrCSRFTokenMismatch)
}
