package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loanvault-backend/pkg/auth"

	"github.com/labstack/echo/v4"
)

func authEcho(secret []byte) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(JWTAuth(secret))
	e.GET("/whoami", func(c echo.Context) error {
		a, ok := ActorFrom(c)
		if !ok {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "no actor"})
		}
		return c.JSON(http.StatusOK, map[string]any{"actor_id": a.ID, "roles": a.Roles})
	})
	return e
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	e := authEcho(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestJWTAuth_BadToken(t *testing.T) {
	e := authEcho(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	e := authEcho(testSecret)
	tok, err := auth.Mint([]byte("other-secret"), auth.Actor{ID: testActorID}, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestJWTAuth_SeedsActor(t *testing.T) {
	e := authEcho(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", bearerFor(t, testActorID))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); !strings.Contains(got, testActorID) {
		t.Fatalf("actor id not in response: %s", got)
	}
}
