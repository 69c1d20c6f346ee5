package handlers_test

import (
	"net/http"
	"strings"
	"testing"
)

func TestGuestBookNowRedirectsToSignIn(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.get("/book/SV-OIL")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("want redirect, got %d", resp.StatusCode)
	}
	loc := location(resp)
	if !strings.HasPrefix(loc, "/signin?") {
		t.Fatalf("want sign-in redirect, got %q", loc)
	}
	if !strings.Contains(loc, "msg=Please+sign+in+to+book+a+service") {
		t.Fatalf("message missing from %q", loc)
	}
	if !strings.Contains(loc, "return=%2Fservices") {
		t.Fatalf("return path missing from %q", loc)
	}
}

func TestMyBookingsRequiresSignIn(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.get("/my-bookings")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("want redirect, got %d", resp.StatusCode)
	}
	loc := location(resp)
	if !strings.Contains(loc, "/signin?") || !strings.Contains(loc, "return=%2Fmy-bookings") {
		t.Fatalf("got %q", loc)
	}
}

func TestAdminAreaRequiresAdminSession(t *testing.T) {
	e := newEnv(t, nil)

	for _, path := range []string{"/admin/", "/admin/notifications"} {
		resp := e.get(path)
		if resp.StatusCode != http.StatusFound || location(resp) != "/admin/signin" {
			t.Fatalf("%s: got %d -> %q", path, resp.StatusCode, location(resp))
		}
	}
}

func TestCustomerSessionDoesNotOpenAdmin(t *testing.T) {
	e := newEnv(t, fakeBackend(t))
	e.signIn()

	resp := e.get("/admin/")
	if resp.StatusCode != http.StatusFound || location(resp) != "/admin/signin" {
		t.Fatalf("got %d -> %q", resp.StatusCode, location(resp))
	}
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.get("/no/such/page")
	if resp.StatusCode != http.StatusFound || location(resp) != "/" {
		t.Fatalf("got %d -> %q", resp.StatusCode, location(resp))
	}
}

func TestTamperedSidCookieReadsAsGuest(t *testing.T) {
	e := newEnv(t, nil)
	e.jar["sid"] = "not-a-signed-token"

	resp := e.get("/my-bookings")
	if resp.StatusCode != http.StatusFound || !strings.Contains(location(resp), "/signin?") {
		t.Fatalf("got %d -> %q", resp.StatusCode, location(resp))
	}
}
