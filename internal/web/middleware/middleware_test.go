package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/facility-export/internal/config"
	"github.com/JonMunkholm/facility-export/internal/core"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.SecurityConfig
		key        string
		wantStatus int
	}{
		{"disabled", config.SecurityConfig{}, "", http.StatusOK},
		{"missing key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "", http.StatusUnauthorized},
		{"invalid key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "nope", http.StatusForbidden},
		{"valid second key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}, "k2", http.StatusOK},
		{"no keys configured", config.SecurityConfig{RequireAPIKey: true}, "k1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := APIKeyAuth(&tt.cfg)(http.HandlerFunc(okHandler))
			req := httptest.NewRequest(http.MethodGet, "/api/export/fields", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestUserIdentity(t *testing.T) {
	var gotID int64
	var gotOK bool
	h := UserIdentity("X-User-ID")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = core.GetUserIDFromContext(r.Context())
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantID     int64
	}{
		{"valid", "42", http.StatusOK, 42},
		{"padded", " 7 ", http.StatusOK, 7},
		{"missing", "", http.StatusUnauthorized, 0},
		{"not a number", "abc", http.StatusUnauthorized, 0},
		{"zero", "0", http.StatusUnauthorized, 0},
		{"negative", "-3", http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotOK = 0, false
			req := httptest.NewRequest(http.MethodGet, "/api/export/favorites", nil)
			if tt.header != "" {
				req.Header.Set("X-User-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantID != 0 && (!gotOK || gotID != tt.wantID) {
				t.Errorf("user id = %d (%v), want %d", gotID, gotOK, tt.wantID)
			}
			if tt.wantID == 0 && gotOK {
				t.Errorf("handler ran for rejected request")
			}
		})
	}
}

func TestLogger_CapturesUser(t *testing.T) {
	h := Logger(UserIdentity("X-User-ID")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/export/fields", nil)
	req.Header.Set("X-User-ID", "9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "hello" {
		t.Errorf("response = %d %q", rec.Code, rec.Body.String())
	}
}

func TestResponseWriter_CountsBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	ww.WriteHeader(http.StatusCreated)
	ww.WriteHeader(http.StatusInternalServerError)
	ww.Write([]byte("abc"))
	ww.Write([]byte("de"))

	if ww.status != http.StatusCreated {
		t.Errorf("status = %d, want first WriteHeader to win", ww.status)
	}
	if ww.bytes != 5 {
		t.Errorf("bytes = %d, want 5", ww.bytes)
	}
}

func TestTrustedRealIP(t *testing.T) {
	var seen string
	h := TrustedRealIP([]string{"10.0.0.0/8", "192.168.1.5", "not-a-cidr"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	tests := []struct {
		name   string
		remote string
		realIP string
		xff    string
		want   string
	}{
		{"trusted proxy real ip", "10.1.2.3:5000", "203.0.113.9", "", "203.0.113.9"},
		{"trusted single address", "192.168.1.5:80", "", "198.51.100.1, 10.1.1.1", "198.51.100.1"},
		{"untrusted client spoofing", "203.0.113.50:1234", "1.2.3.4", "", "203.0.113.50:1234"},
		{"trusted but invalid header", "10.1.2.3:5000", "garbage", "", "10.1.2.3:5000"},
		{"trusted without headers", "10.1.2.3:5000", "", "", "10.1.2.3:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if seen != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", seen, tt.want)
			}
		})
	}
}
