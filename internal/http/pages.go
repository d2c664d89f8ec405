package httpx

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
)

// Minimal page handlers behind the session gate. The real frontend
// renders these views; the server keeps placeholder pages so the gate,
// redirects, and cookies are exercised end to end.

func writePage(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!doctype html><html><head><title>%s</title></head><body>%s</body></html>", title, body)
}

func homePage(w http.ResponseWriter, _ *http.Request) {
	writePage(w, "CampusHub", "<h1>CampusHub</h1>")
}

func signInPage(w http.ResponseWriter, r *http.Request) {
	redirect := sameSitePath(r.URL.Query().Get("redirect"))
	writePage(w, "Sign in", fmt.Sprintf("<h1>Sign in</h1><!-- redirect=%s -->", html.EscapeString(redirect)))
}

// sameSitePath accepts only local paths for post-sign-in redirects.
// Anything absolute or protocol-relative collapses to the home page.
func sameSitePath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return "/"
	}
	return p
}

func signUpPage(w http.ResponseWriter, _ *http.Request) {
	writePage(w, "Sign up", "<h1>Sign up</h1>")
}

func profilePage(w http.ResponseWriter, r *http.Request) {
	if principal, ok := PrincipalFromContext(r.Context()); ok {
		writePage(w, "Profile", fmt.Sprintf("<h1>Profile</h1><p>%s</p>", principal.Email))
		return
	}
	writePage(w, "Profile", "<h1>Profile</h1>")
}

func myActivitiesPage(w http.ResponseWriter, _ *http.Request) {
	writePage(w, "My Activities", "<h1>My Activities</h1>")
}

func adminPage(w http.ResponseWriter, r *http.Request) {
	if principal, ok := PrincipalFromContext(r.Context()); ok && principal.Role != domainauth.RoleAdmin {
		http.Error(w, "Access Denied", http.StatusForbidden)
		return
	}
	writePage(w, "Admin", "<h1>Admin</h1>")
}
