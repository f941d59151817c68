package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GSIScriptURL is the Google Identity Services client library.
const GSIScriptURL = "https://accounts.google.com/gsi/client"

// ErrNotConfigured is returned when no Google client ID is configured.
var ErrNotConfigured = errors.New("google sign-in not configured")

// Config is the static sign-in configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// LoginURI is where Google Identity Services posts credentials.
	LoginURI string
}

// Settings is the initialized provider, ready to render and use.
type Settings struct {
	ClientID  string
	ScriptURL string
	LoginURI  string
	// OAuth is nil when no client secret/redirect is configured; only the
	// Identity Services button is offered then.
	OAuth *oauth2.Config
}

// Provider initializes Google sign-in once per process and serves the
// OAuth redirect flow.
type Provider struct {
	cfg Config

	once     sync.Once
	settings *Settings
	err      error

	stateTTL   time.Duration
	stateStore *stateStore
}

// NewProvider constructs a Provider. Nothing is validated until Ensure.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		cfg:        cfg,
		stateTTL:   5 * time.Minute,
		stateStore: newStateStore(),
	}
}

// Ensure initializes the provider on first call and returns the memoized
// settings or error on every later call.
func (p *Provider) Ensure(ctx context.Context) (*Settings, error) {
	_ = ctx
	p.once.Do(func() {
		p.settings, p.err = p.init()
	})
	return p.settings, p.err
}

func (p *Provider) init() (*Settings, error) {
	clientID := strings.TrimSpace(p.cfg.ClientID)
	if clientID == "" {
		return nil, ErrNotConfigured
	}
	s := &Settings{
		ClientID:  clientID,
		ScriptURL: GSIScriptURL,
		LoginURI:  p.cfg.LoginURI,
	}
	if strings.TrimSpace(p.cfg.ClientSecret) != "" && strings.TrimSpace(p.cfg.RedirectURL) != "" {
		s.OAuth = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: p.cfg.ClientSecret,
			RedirectURL:  p.cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return s, nil
}

// AuthCodeURL starts the OAuth redirect flow.
func (p *Provider) AuthCodeURL(ctx context.Context) (string, error) {
	s, err := p.Ensure(ctx)
	if err != nil {
		return "", err
	}
	if s.OAuth == nil {
		return "", ErrNotConfigured
	}
	state := uuid.NewString()
	p.stateStore.put(state, time.Now().Add(p.stateTTL))
	return s.OAuth.AuthCodeURL(state), nil
}

// ErrInvalidState is returned for unknown, reused or expired OAuth states.
var ErrInvalidState = errors.New("invalid or expired state")

// Exchange completes the OAuth redirect flow and decodes the returned ID
// token into a profile.
func (p *Provider) Exchange(ctx context.Context, state, code string) (Profile, error) {
	s, err := p.Ensure(ctx)
	if err != nil {
		return Profile{}, err
	}
	if s.OAuth == nil {
		return Profile{}, ErrNotConfigured
	}
	if !p.stateStore.consume(state) {
		return Profile{}, ErrInvalidState
	}
	token, err := s.OAuth.Exchange(ctx, code)
	if err != nil {
		return Profile{}, err
	}
	raw, _ := token.Extra("id_token").(string)
	return Decode(raw)
}

type stateStore struct {
	items map[string]time.Time
	mu    sync.Mutex
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]time.Time)}
}

func (s *stateStore) put(state string, exp time.Time) {
	s.mu.Lock()
	s.pruneLocked(time.Now())
	s.items[state] = exp
	s.mu.Unlock()
}

// pruneLocked drops states whose redirect was never completed.
func (s *stateStore) pruneLocked(now time.Time) {
	for state, exp := range s.items {
		if now.After(exp) {
			delete(s.items, state)
		}
	}
}

func (s *stateStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	exp, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	return !time.Now().After(exp)
}
