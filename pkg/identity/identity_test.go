package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "super-secret-signing-key-for-tests"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL, AnonKey: "anon", JWTSecret: testSecret})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestSignInWithPassword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("grant_type"); got != "password" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.Header.Get("apikey"); got != "anon" {
			t.Errorf("apikey = %q", got)
		}
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600,"user":{"id":"u1","email":"doc@clinic.example"}}`))
	})

	sess, err := c.SignInWithPassword(context.Background(), "doc@clinic.example", "pw")
	if err != nil {
		t.Fatalf("SignInWithPassword failed: %v", err)
	}
	if sess.AccessToken != "at" || sess.RefreshToken != "rt" {
		t.Errorf("unexpected session: %+v", sess)
	}
	if sess.User.Email != "doc@clinic.example" {
		t.Errorf("user email = %q", sess.User.Email)
	}
}

func TestSignInWithPassword_BadCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := c.SignInWithPassword(context.Background(), "doc@clinic.example", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	valid := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7b1e33c4-34db-4b21-9f1d-2b19a3a5d3f1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "doc@clinic.example",
		Role:  "authenticated",
	})

	claims, err := c.VerifyToken(valid)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if claims.Email != "doc@clinic.example" {
		t.Errorf("email = %q", claims.Email)
	}
	if _, err := claims.UserID(); err != nil {
		t.Errorf("UserID failed: %v", err)
	}
}

func TestVerifyToken_Rejections(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	expired := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7b1e33c4-34db-4b21-9f1d-2b19a3a5d3f1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	wrongKey := signToken(t, "some-other-secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7b1e33c4-34db-4b21-9f1d-2b19a3a5d3f1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noSubject := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong signature", wrongKey},
		{"missing subject", noSubject},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.VerifyToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
