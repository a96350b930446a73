// Package session keeps the browser's session state in sealed cookies: the
// bearer credential, a profile snapshot and a one-time flash message.
package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/noah-isme/peerconnect-portal/pkg/config"
)

// Cookie names mirror the storage keys used by the browser client.
const (
	TokenCookie = "peerconnect_auth_token"
	UserCookie  = "peerconnect_user"
	FlashCookie = "peerconnect_flash"
)

const nonceSize = 24

// ErrInvalidCookie is returned when a cookie cannot be opened.
var ErrInvalidCookie = errors.New("session: invalid cookie")

// Flash is a message shown once on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Store seals and opens session cookies with a key derived from the configured secret.
type Store struct {
	key    [32]byte
	secure bool
	ttl    time.Duration
}

// NewStore builds a Store from configuration.
func NewStore(cfg config.SessionConfig) *Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{key: sha256.Sum256([]byte(cfg.Secret)), secure: cfg.Secure, ttl: ttl}
}

// Seal encrypts and authenticates plain, returning a cookie-safe string.
func (s *Store) Seal(plain []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("session nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], plain, &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (s *Store) Open(value string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return nil, ErrInvalidCookie
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrInvalidCookie
	}
	return plain, nil
}

// SetToken stores the bearer credential.
func (s *Store) SetToken(w http.ResponseWriter, token string) error {
	return s.set(w, TokenCookie, []byte(token), s.ttl)
}

// Token returns the stored bearer credential, if any.
func (s *Store) Token(r *http.Request) (string, bool) {
	plain, err := s.get(r, TokenCookie)
	if err != nil || len(plain) == 0 {
		return "", false
	}
	return string(plain), true
}

// SetUser stores a profile snapshot as JSON.
func (s *Store) SetUser(w http.ResponseWriter, user interface{}) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user snapshot: %w", err)
	}
	return s.set(w, UserCookie, payload, s.ttl)
}

// User decodes the profile snapshot into dest.
func (s *Store) User(r *http.Request, dest interface{}) error {
	plain, err := s.get(r, UserCookie)
	if err != nil {
		return err
	}
	return json.Unmarshal(plain, dest)
}

// Clear removes the credential and profile snapshot.
func (s *Store) Clear(w http.ResponseWriter) {
	s.expire(w, TokenCookie)
	s.expire(w, UserCookie)
}

// SetFlash queues a message for the next page render.
func (s *Store) SetFlash(w http.ResponseWriter, flash Flash) error {
	payload, err := json.Marshal(flash)
	if err != nil {
		return err
	}
	return s.set(w, FlashCookie, payload, 5*time.Minute)
}

// PopFlash returns the queued message and clears it.
func (s *Store) PopFlash(w http.ResponseWriter, r *http.Request) (Flash, bool) {
	plain, err := s.get(r, FlashCookie)
	if err != nil {
		return Flash{}, false
	}
	s.expire(w, FlashCookie)
	var flash Flash
	if err := json.Unmarshal(plain, &flash); err != nil || flash.Message == "" {
		return Flash{}, false
	}
	return flash, true
}

func (s *Store) set(w http.ResponseWriter, name string, plain []byte, ttl time.Duration) error {
	value, err := s.Seal(plain)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Store) get(r *http.Request, name string) ([]byte, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return nil, err
	}
	return s.Open(cookie.Value)
}

func (s *Store) expire(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
