// Package session holds the client-side auth state: a customer session and
// an admin session, persisted independently in the kv store. Signing out of
// one never touches the other.
package session

import (
	"context"
	"encoding/json"

	"autocare/internal/api"
	"autocare/internal/domain"
	"autocare/internal/kv"
	applog "autocare/internal/log"
)

const (
	keyUser       = "/user"
	keyUserToken  = "/token"
	keyAdmin      = "/admin"
	keyAdminToken = "/admin_token"
)

type Manager struct {
	KV  *kv.Store
	API *api.Client
}

func NewManager(store *kv.Store, client *api.Client) *Manager {
	return &Manager{KV: store, API: client}
}

// Current rehydrates the customer session for a sid. A corrupt persisted
// blob is discarded and both customer keys are cleared; the caller just
// sees a logged-out visitor.
func (m *Manager) Current(sid string) *domain.User {
	raw, err := m.KV.Get(sid + keyUser)
	if err != nil || raw == "" {
		return nil
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		applog.Degrade("session.user.corrupt", err, map[string]any{"sid": sid})
		_ = m.KV.Delete(sid + keyUser)
		_ = m.KV.Delete(sid + keyUserToken)
		return nil
	}
	if tok, err := m.KV.Get(sid + keyUserToken); err == nil && tok != "" {
		u.Token = tok
	}
	return &u
}

// CurrentAdmin rehydrates the admin session for a sid.
func (m *Manager) CurrentAdmin(sid string) *domain.AdminProfile {
	raw, err := m.KV.Get(sid + keyAdmin)
	if err != nil || raw == "" {
		return nil
	}
	var a domain.AdminProfile
	if err := json.Unmarshal([]byte(raw), &a); err != nil || a.Name == "" {
		applog.Degrade("session.admin.corrupt", err, map[string]any{"sid": sid})
		_ = m.KV.Delete(sid + keyAdmin)
		_ = m.KV.Delete(sid + keyAdminToken)
		return nil
	}
	if tok, err := m.KV.Get(sid + keyAdminToken); err == nil && tok != "" {
		a.Token = tok
	}
	return &a
}

func (m *Manager) SignIn(ctx context.Context, sid string, creds api.Credentials) (*domain.User, error) {
	u, err := m.API.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}
	return u, m.persistUser(sid, u)
}

func (m *Manager) SignUp(ctx context.Context, sid string, in api.SignUpInput) (*domain.User, error) {
	u, err := m.API.SignUp(ctx, in)
	if err != nil {
		return nil, err
	}
	return u, m.persistUser(sid, u)
}

func (m *Manager) SignOut(sid string) {
	_ = m.KV.Delete(sid + keyUser)
	_ = m.KV.Delete(sid + keyUserToken)
}

func (m *Manager) AdminSignIn(ctx context.Context, sid string, creds api.Credentials) (*domain.AdminProfile, error) {
	a, err := m.API.AdminSignIn(ctx, creds)
	if err != nil {
		return nil, err
	}
	tok := a.Token
	blob := domain.AdminProfile{Name: a.Name}
	b, err := json.Marshal(blob)
	if err != nil {
		return nil, err
	}
	if err := m.KV.Set(sid+keyAdmin, string(b)); err != nil {
		return nil, err
	}
	return a, m.KV.Set(sid+keyAdminToken, tok)
}

func (m *Manager) AdminSignOut(sid string) {
	_ = m.KV.Delete(sid + keyAdmin)
	_ = m.KV.Delete(sid + keyAdminToken)
}

// persistUser writes the profile blob and token under separate keys so
// the token never travels inside the profile JSON.
func (m *Manager) persistUser(sid string, u *domain.User) error {
	tok := u.Token
	blob := *u
	blob.Token = ""
	b, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	if err := m.KV.Set(sid+keyUser, string(b)); err != nil {
		return err
	}
	return m.KV.Set(sid+keyUserToken, tok)
}
