package shared

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionTokenKey  = "api_token"
	sessionRoleKey   = "role"
	sessionNameKey   = "display_name"
	sessionKeyPrefix = "hopebridge:session:"
)

// FlashMessage represents a one-time notification stored in session.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SessionManager stores sessions in Redis behind a signed cookie.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-request session data. It implements Principal.
type Session struct {
	ID        string
	values    map[string]string
	userID    string
	flashes   []FlashMessage
	stored    bool
	dirty     bool
	rotate    bool
	destroyed bool
}

type sessionPayload struct {
	Values  map[string]string `json:"values"`
	UserID  string            `json:"user_id"`
	Flashes []FlashMessage    `json:"flashes,omitempty"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load returns the session named by the request cookie. A missing, forged or
// expired cookie yields a fresh session that is only stored once written to.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return sm.newSession(), nil
	}
	id, ok := sm.verify(cookie.Value)
	if !ok {
		return sm.newSession(), nil
	}

	payload, err := sm.client.Get(ctx, sm.redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return sm.newSession(), nil
	}
	if err != nil {
		return nil, err
	}
	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}
	if stored.Values == nil {
		stored.Values = make(map[string]string)
	}
	return &Session{
		ID:      id,
		values:  stored.Values,
		userID:  stored.UserID,
		flashes: stored.Flashes,
		stored:  true,
	}, nil
}

// Commit persists the session and writes the cookie. Untouched anonymous
// sessions leave no trace; stored sessions get their expiry extended.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, _ *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}
	if sess.destroyed {
		if sess.stored {
			if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil {
				return err
			}
		}
		http.SetCookie(w, sm.cookie("", -1))
		return nil
	}

	if sess.rotate {
		if sess.stored {
			if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil {
				return err
			}
		}
		sess.ID = newSessionID()
		delete(sess.values, CSRFSessionKey)
		sess.stored, sess.rotate, sess.dirty = false, false, true
	}

	switch {
	case sess.dirty:
		data, err := json.Marshal(sessionPayload{Values: sess.values, UserID: sess.userID, Flashes: sess.flashes})
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.ttl).Err(); err != nil {
			return err
		}
		sess.stored, sess.dirty = true, false
	case sess.stored:
		if err := sm.client.Expire(ctx, sm.redisKey(sess.ID), sm.ttl).Err(); err != nil {
			return err
		}
	default:
		return nil
	}
	http.SetCookie(w, sm.cookie(sm.sign(sess.ID), int(sm.ttl.Seconds())))
	return nil
}

func (sm *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (sm *SessionManager) sign(id string) string {
	mac := hmac.New(sha256.New, sm.secret)
	_, _ = mac.Write([]byte(id))
	return id + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (sm *SessionManager) verify(value string) (string, bool) {
	id, _, found := strings.Cut(value, ".")
	if !found || id == "" {
		return "", false
	}
	return id, hmac.Equal([]byte(value), []byte(sm.sign(id)))
}

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	if s == nil || s.values == nil {
		return ""
	}
	return s.values[key]
}

// SignIn stores the API credentials returned by the backend login and
// issues a new session id on commit.
func (s *Session) SignIn(userID, token, role, name string) {
	s.userID = userID
	s.Set(sessionTokenKey, token)
	s.Set(sessionRoleKey, role)
	s.Set(sessionNameKey, name)
	s.rotate = true
}

// Token returns the bearer token for backend calls.
func (s *Session) Token() string {
	return s.Get(sessionTokenKey)
}

// Role returns the role granted by the backend.
func (s *Session) Role() string {
	return s.Get(sessionRoleKey)
}

// DisplayName returns the signed-in user's name.
func (s *Session) DisplayName() string {
	return s.Get(sessionNameKey)
}

// Clear drops credentials and marks the session for deletion.
func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.values = make(map[string]string)
	s.userID = ""
	s.flashes = nil
	s.destroyed = true
}

// User returns the current user ID.
func (s *Session) User() string {
	if s == nil {
		return ""
	}
	return s.userID
}

// AddFlash queues a flash message.
func (s *Session) AddFlash(msg FlashMessage) {
	s.flashes = append(s.flashes, msg)
	s.dirty = true
}

// PopFlash retrieves and clears the oldest flash message.
func (s *Session) PopFlash() *FlashMessage {
	if s == nil || len(s.flashes) == 0 {
		return nil
	}
	msg := s.flashes[0]
	s.flashes = s.flashes[1:]
	s.dirty = true
	return &msg
}

func (sm *SessionManager) newSession() *Session {
	return &Session{ID: newSessionID(), values: make(map[string]string)}
}

func (sm *SessionManager) redisKey(id string) string {
	return sessionKeyPrefix + id
}

func newSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
