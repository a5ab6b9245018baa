package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kidala/auth"

	"github.com/gin-gonic/gin"
)

func newTestRouter(issuer *auth.TokenIssuer, policy string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", TokenCheck(issuer, policy), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": CallerID(c),
			"domain":  CallerDomain(c),
		})
	})
	return r
}

func probe(t *testing.T, r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenCheckDefaultPolicy(t *testing.T) {
	issuer := auth.NewTokenIssuer("user-secret", "admin-secret")
	r := newTestRouter(issuer, AccessDefault)

	// No token: anonymous pass-through.
	w := probe(t, r, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous caller, got %d", w.Code)
	}

	// Garbage token: still anonymous.
	w = probe(t, r, "Bearer not-a-token")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for invalid token, got %d", w.Code)
	}

	// Valid user token: identity is resolved.
	token, err := issuer.IssueUserToken("user-1")
	if err != nil {
		t.Fatalf("IssueUserToken returned error: %v", err)
	}
	w = probe(t, r, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"user_id":"user-1"`) || !strings.Contains(body, `"domain":"user"`) {
		t.Fatalf("identity not resolved, body: %s", body)
	}
}

func TestTokenCheckBareToken(t *testing.T) {
	issuer := auth.NewTokenIssuer("user-secret", "admin-secret")
	r := newTestRouter(issuer, AccessDefault)

	token, err := issuer.IssueUserToken("user-1")
	if err != nil {
		t.Fatalf("IssueUserToken returned error: %v", err)
	}

	// Older clients send the raw token without the Bearer prefix.
	w := probe(t, r, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"user_id":"user-1"`) {
		t.Fatalf("bare token not accepted, body: %s", w.Body.String())
	}
}

func TestTokenCheckAdminPolicy(t *testing.T) {
	issuer := auth.NewTokenIssuer("user-secret", "admin-secret")
	r := newTestRouter(issuer, AccessAdmin)

	// Missing token is rejected.
	w := probe(t, r, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", w.Code)
	}

	// Invalid token is rejected.
	w = probe(t, r, "Bearer garbage")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", w.Code)
	}

	// A user-domain token does not open admin routes.
	userToken, err := issuer.IssueUserToken("user-1")
	if err != nil {
		t.Fatalf("IssueUserToken returned error: %v", err)
	}
	w = probe(t, r, "Bearer "+userToken)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for user-domain token, got %d", w.Code)
	}

	// An admin-domain token does.
	adminToken, err := issuer.IssueAdminToken("admin-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("IssueAdminToken returned error: %v", err)
	}
	w = probe(t, r, "Bearer "+adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin token, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"domain":"admin"`) {
		t.Fatalf("admin domain not resolved, body: %s", w.Body.String())
	}
}

