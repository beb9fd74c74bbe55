package kalshi

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func testSigner(t *testing.T) *Signer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return NewSignerFromKey("test-key-id", key)
}

func TestHeadersContainSignatureScheme(t *testing.T) {
	s := testSigner(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	headers, err := s.Headers("GET", "https://api.example.com/trade-api/v2/portfolio/balance", now)
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	if headers["KALSHI-ACCESS-KEY"] != "test-key-id" {
		t.Fatalf("key header %q", headers["KALSHI-ACCESS-KEY"])
	}
	wantTS := strconv.FormatInt(now.UnixMilli(), 10)
	if headers["KALSHI-ACCESS-TIMESTAMP"] != wantTS {
		t.Fatalf("timestamp %q, want %q", headers["KALSHI-ACCESS-TIMESTAMP"], wantTS)
	}

	msg := wantTS + "GET" + "/trade-api/v2/portfolio/balance"
	if err := s.Verify(msg, headers["KALSHI-ACCESS-SIGNATURE"]); err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
}

func TestHeadersExcludeQueryFromSignature(t *testing.T) {
	s := testSigner(t)
	now := time.Now()

	headers, err := s.Headers("GET", "https://api.example.com/trade-api/v2/markets?event_ticker=X&limit=100", now)
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	msg := headers["KALSHI-ACCESS-TIMESTAMP"] + "GET" + "/trade-api/v2/markets"
	if err := s.Verify(msg, headers["KALSHI-ACCESS-SIGNATURE"]); err != nil {
		t.Fatalf("query string must not participate in the signature: %v", err)
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	s := testSigner(t)
	headers, err := s.Headers("POST", "https://api.example.com/trade-api/v2/portfolio/orders", time.Now())
	if err != nil {
		t.Fatalf("headers: %v", err)
	}
	msg := headers["KALSHI-ACCESS-TIMESTAMP"] + "GET" + "/trade-api/v2/portfolio/orders"
	if err := s.Verify(msg, headers["KALSHI-ACCESS-SIGNATURE"]); err == nil {
		t.Fatal("wrong method must fail verification")
	}
}

func TestNewSignerLoadsPEMKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "key.pem")
	raw := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	s, err := NewSigner("kid", path)
	if err != nil {
		t.Fatalf("load signer: %v", err)
	}
	if _, err := s.Headers("GET", "https://api.example.com/x", time.Now()); err != nil {
		t.Fatalf("sign with loaded key: %v", err)
	}
}

func TestNewSignerRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(path, []byte("not a pem"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewSigner("kid", path); err == nil {
		t.Fatal("expected parse failure")
	}
}
