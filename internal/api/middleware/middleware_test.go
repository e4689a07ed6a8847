package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webhooksandbox/internal/platform/auth"
	"webhooksandbox/internal/platform/config"
)

func TestAuthMiddleware(t *testing.T) {
	tokenSvc := auth.NewTokenService(config.AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour})
	middleware := NewAuthMiddleware(tokenSvc, "development")
	token, err := tokenSvc.GenerateAccessToken("merchant_1", "development")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	prodToken, err := tokenSvc.GenerateAccessToken("merchant_1", "production")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	tests := []struct {
		name     string
		header   string
		expected int
	}{
		{name: "Valid Token", header: "Bearer " + token, expected: http.StatusOK},
		{name: "Missing Header", header: "", expected: http.StatusUnauthorized},
		{name: "Wrong Scheme", header: "Basic " + token, expected: http.StatusUnauthorized},
		{name: "Lowercase Scheme", header: "bearer " + token, expected: http.StatusOK},
		{name: "Empty Token", header: "Bearer ", expected: http.StatusUnauthorized},
		{name: "Bad Token", header: "Bearer nope", expected: http.StatusUnauthorized},
		{name: "Other Environment", header: "Bearer " + prodToken, expected: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rr := httptest.NewRecorder()
			handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := ClaimsFrom(r.Context())
				if !ok || claims.MerchantID != "merchant_1" {
					t.Errorf("Expected claims for merchant_1, got %+v", claims)
				}
				w.WriteHeader(http.StatusOK)
			})

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expected {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expected)
			}
			if tt.expected == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("Expected WWW-Authenticate challenge on 401")
			}
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("Expected first two requests to be allowed")
	}
	if rl.Allow("a") {
		t.Error("Expected third request to be limited")
	}
	if !rl.Allow("b") {
		t.Error("Expected separate key to have its own bucket")
	}

	now = now.Add(30 * time.Second)
	if !rl.Allow("a") {
		t.Error("Expected a token to refill after 30s")
	}

	now = now.Add(time.Hour)
	rl.Cleanup(10 * time.Minute)
	if _, ok := rl.store.Load("a"); ok {
		t.Error("Expected idle bucket to be cleaned up")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		if !rl.Allow("a") {
			t.Fatal("Expected disabled limiter to allow everything")
		}
	}
}

func TestRateLimiter_Handle(t *testing.T) {
	rl := NewRateLimiter(1)
	handler := rl.Handle(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	codes := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("Expected [200 429], got %v", codes)
	}
}
