package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/cartsync"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
)

const subscriberBuffer = 16

type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type persisted struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Profile   Profile   `json:"profile"`
}

// Manager holds the bearer credential for the client and announces every
// login, logout and expiry to its subscribers. The credential is kept in a
// file so separate processes share one session.
type Manager struct {
	client    *cartsync.Client
	tokenFile string
	log       logger.Logger
	now       func() time.Time

	mu      sync.RWMutex
	current *persisted
	subs    []chan cartsync.SessionEvent
}

// NewManager restores a saved, unexpired session from tokenFile if present.
func NewManager(apiCfg cartsync.ClientConfig, tokenFile string, httpClient *http.Client, log logger.Logger) *Manager {
	m := &Manager{tokenFile: tokenFile, log: log, now: time.Now}
	m.client = cartsync.NewClient(apiCfg, m, httpClient)
	m.restore()
	return m
}

func (m *Manager) restore() {
	data, err := os.ReadFile(m.tokenFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.log.Warnf("session: cannot read token file %s: %v", m.tokenFile, err)
		}
		return
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil || p.Token == "" {
		m.log.Warnf("session: ignoring unreadable token file %s", m.tokenFile)
		_ = os.Remove(m.tokenFile)
		return
	}
	if !p.ExpiresAt.IsZero() && !m.now().Before(p.ExpiresAt) {
		m.log.Debug("session: saved token expired")
		_ = os.Remove(m.tokenFile)
		return
	}
	m.current = &p
}

// Client returns the API client that authenticates with this session.
func (m *Manager) Client() *cartsync.Client { return m.client }

// Token implements cartsync.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

func (m *Manager) Profile() (Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Profile{}, false
	}
	return m.current.Profile, true
}

// Subscribe returns a channel receiving every later transition. Slow
// subscribers lose events once their buffer is full.
func (m *Manager) Subscribe() <-chan cartsync.SessionEvent {
	ch := make(chan cartsync.SessionEvent, subscriberBuffer)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Close ends every subscription.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
}

func (m *Manager) publish(ev cartsync.SessionEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
			m.log.Warnf("session: dropped %s event for a slow subscriber", ev.Kind)
		}
	}
}

func (m *Manager) Login(ctx context.Context, email, password string) (Profile, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var p persisted
	if err := m.client.Do(ctx, "login", http.MethodPost, "/api/auth/login", body, &p); err != nil {
		return Profile{}, err
	}
	if p.Token == "" {
		return Profile{}, &cartsync.NetworkError{Op: "login", Err: errors.New("response carried no token")}
	}
	if err := m.save(&p); err != nil {
		return Profile{}, err
	}

	m.mu.Lock()
	m.current = &p
	m.mu.Unlock()

	m.log.Debugf("session: logged in as %s", p.Profile.ID)
	m.publish(cartsync.SessionEvent{Kind: cartsync.SessionLoggedIn, UserID: p.Profile.ID})
	return p.Profile, nil
}

// Logout revokes the token on the server when it can and always ends the
// local session.
func (m *Manager) Logout(ctx context.Context) error {
	if !m.IsAuthenticated() {
		return nil
	}
	err := m.client.Do(ctx, "logout", http.MethodPost, "/api/auth/logout", nil, nil)
	if err != nil && !errors.Is(err, cartsync.ErrUnauthorized) {
		m.log.Warnf("session: server logout failed, ending local session anyway: %v", err)
	}
	m.end(cartsync.SessionLoggedOut)
	return nil
}

// Expire drops a credential the server no longer accepts. No network call.
func (m *Manager) Expire() {
	if !m.IsAuthenticated() {
		return
	}
	m.end(cartsync.SessionExpired)
}

func (m *Manager) end(kind cartsync.SessionEventKind) {
	m.mu.Lock()
	var userID string
	if m.current != nil {
		userID = m.current.Profile.ID
	}
	m.current = nil
	m.mu.Unlock()

	if err := os.Remove(m.tokenFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.log.Warnf("session: failed to remove token file: %v", err)
	}
	m.log.Debugf("session: %s", kind)
	m.publish(cartsync.SessionEvent{Kind: kind, UserID: userID})
}

func (m *Manager) save(p *persisted) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.tokenFile), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(m.tokenFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
