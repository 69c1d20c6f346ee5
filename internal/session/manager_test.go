package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"autocare/internal/api"
	"autocare/internal/domain"
	"autocare/internal/kv"
	"autocare/internal/session"
)

func newManager(t *testing.T, backend http.Handler) (*session.Manager, *kv.Store) {
	t.Helper()
	kvs, err := kv.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kvs.Close() })

	url := "http://127.0.0.1:1" // unreachable unless a backend is given
	if backend != nil {
		srv := httptest.NewServer(backend)
		t.Cleanup(srv.Close)
		url = srv.URL
	}
	return session.NewManager(kvs, api.New(url)), kvs
}

func authBackend(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var creds api.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "hunter22" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.User{
			ID: "u1", Name: "Alice", Email: creds.Email, Phone: "5550001111", Token: "tok-abc",
		})
	})
	mux.HandleFunc("POST /auth/admin/signin", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(domain.AdminProfile{Name: "Boss", Token: "admin-tok"})
	})
	return mux
}

func TestSignInPersistsProfileAndTokenSeparately(t *testing.T) {
	m, kvs := newManager(t, authBackend(t))

	u, err := m.SignIn(context.Background(), "sid1", api.Credentials{Email: "a@b.com", Password: "hunter22"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Token != "tok-abc" {
		t.Fatalf("token missing from returned user: %+v", u)
	}

	blob, _ := kvs.Get("sid1/user")
	if blob == "" {
		t.Fatal("profile blob not persisted")
	}
	var stored domain.User
	if err := json.Unmarshal([]byte(blob), &stored); err != nil {
		t.Fatal(err)
	}
	if stored.Token != "" {
		t.Fatal("token must not live inside the profile blob")
	}
	if tok, _ := kvs.Get("sid1/token"); tok != "tok-abc" {
		t.Fatalf("token key: got %q", tok)
	}

	cur := m.Current("sid1")
	if cur == nil || cur.Name != "Alice" || cur.Token != "tok-abc" {
		t.Fatalf("rehydrated session wrong: %+v", cur)
	}
}

func TestSignInRejectedLeavesNoSession(t *testing.T) {
	m, kvs := newManager(t, authBackend(t))

	if _, err := m.SignIn(context.Background(), "sid1", api.Credentials{Email: "a@b.com", Password: "wrong"}); err == nil {
		t.Fatal("bad credentials should error")
	}
	if blob, _ := kvs.Get("sid1/user"); blob != "" {
		t.Fatal("rejected sign-in persisted a session")
	}
	if m.Current("sid1") != nil {
		t.Fatal("rejected sign-in produced a session")
	}
}

func TestCorruptUserBlobClearsBothKeys(t *testing.T) {
	m, kvs := newManager(t, nil)

	if err := kvs.Set("sid1/user", "{not json"); err != nil {
		t.Fatal(err)
	}
	if err := kvs.Set("sid1/token", "tok-abc"); err != nil {
		t.Fatal(err)
	}

	if u := m.Current("sid1"); u != nil {
		t.Fatalf("corrupt blob should read as logged out, got %+v", u)
	}
	if v, _ := kvs.Get("sid1/user"); v != "" {
		t.Fatal("corrupt user key not cleared")
	}
	if v, _ := kvs.Get("sid1/token"); v != "" {
		t.Fatal("orphaned token key not cleared")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	m, _ := newManager(t, authBackend(t))
	ctx := context.Background()

	if _, err := m.SignIn(ctx, "sid1", api.Credentials{Email: "a@b.com", Password: "hunter22"}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AdminSignIn(ctx, "sid1", api.Credentials{Email: "root@b.com", Password: "hunter22"}); err != nil {
		t.Fatal(err)
	}

	// Both sessions coexist under one sid.
	if m.Current("sid1") == nil || m.CurrentAdmin("sid1") == nil {
		t.Fatal("sessions should coexist")
	}

	// Customer sign-out must not touch the admin session.
	m.SignOut("sid1")
	if m.Current("sid1") != nil {
		t.Fatal("customer still signed in")
	}
	if a := m.CurrentAdmin("sid1"); a == nil || a.Token != "admin-tok" {
		t.Fatalf("admin session lost: %+v", a)
	}

	m.AdminSignOut("sid1")
	if m.CurrentAdmin("sid1") != nil {
		t.Fatal("admin still signed in")
	}
}

func TestSidsDoNotShareSessions(t *testing.T) {
	m, _ := newManager(t, authBackend(t))
	if _, err := m.SignIn(context.Background(), "sid1", api.Credentials{Email: "a@b.com", Password: "hunter22"}); err != nil {
		t.Fatal(err)
	}
	if m.Current("sid2") != nil {
		t.Fatal("session leaked across sids")
	}
}
