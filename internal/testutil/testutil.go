package testutil

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateTestKeyPair generates an RSA key pair for testing.
// Returns (keyID, privateKey, publicKey).
func GenerateTestKeyPair(t *testing.T) (string, *rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	kid := fmt.Sprintf("test-key-%d", time.Now().UnixNano())
	return kid, priv, &priv.PublicKey
}

// IssueTestToken creates a signed JWT for subject. Tests send it as a
// bearer credential and then assert it never shows up in log output.
// A negative ttl produces an already-expired token.
func IssueTestToken(t *testing.T, kid string, priv *rsa.PrivateKey, subject string, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "reqtrace-test",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid

	signed, err := token.SignedString(priv)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

// SessionCookie is the Set-Cookie value MockBackendHandler returns.
const SessionCookie = "session=upstream-secret; Path=/; HttpOnly"

// MockBackendHandler returns an http.Handler that echoes request details
// and sets a session cookie, standing in for the upstream service.
func MockBackendHandler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"backend":           name,
			"method":            r.Method,
			"path":              r.URL.Path,
			"request_id":        r.Header.Get("X-Request-Id"),
			"authorization_set": r.Header.Get("Authorization") != "",
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Set-Cookie", SessionCookie)
		json.NewEncoder(w).Encode(resp)
	})
}

// LogSink collects JSON log lines written by a slog.Logger.
// It is safe for concurrent use.
type LogSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// NewLogger returns a debug-level JSON logger writing into a fresh LogSink.
func NewLogger() (*slog.Logger, *LogSink) {
	sink := &LogSink{}
	return slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: slog.LevelDebug})), sink
}

func (s *LogSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

// String returns everything logged so far.
func (s *LogSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Entries decodes every logged line.
func (s *LogSink) Entries(t *testing.T) []map[string]any {
	t.Helper()
	var entries []map[string]any
	sc := bufio.NewScanner(bytes.NewBufferString(s.String()))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var e map[string]any
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("parsing log line: %v\nraw: %s", err, sc.Text())
		}
		entries = append(entries, e)
	}
	return entries
}

// Messages returns the entries whose msg equals msg, in order.
func (s *LogSink) Messages(t *testing.T, msg string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, e := range s.Entries(t) {
		if e["msg"] == msg {
			out = append(out, e)
		}
	}
	return out
}
