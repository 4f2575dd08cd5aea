package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func withAPIServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	origURL, origTimeout := baseURL, timeout
	baseURL = srv.URL
	timeout = 5 * time.Second
	t.Cleanup(func() {
		baseURL = origURL
		timeout = origTimeout
	})
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(struct {
			A int `json:"a"`
		}{A: 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestCheckReconciliationPassed(t *testing.T) {
	withAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/wallets/w-1/reconcile" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"wallet_id":"w-1","balance":"100","escrow_held":"25","is_reconciled":true}`))
	})

	out := captureOutput(t, func() {
		checkReconciliation("w-1")
	})

	if !strings.Contains(out, "PASSED") {
		t.Fatalf("expected PASSED, got:\n%s", out)
	}
	if !strings.Contains(out, "Balance: 100") || !strings.Contains(out, "Escrow held: 25") {
		t.Fatalf("missing amounts in output:\n%s", out)
	}
}

func TestCheckReconciliationFailed(t *testing.T) {
	withAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"wallet_id":"w-1","balance":"100","escrow_held":"999","is_reconciled":false,"invariant_error":"escrow held exceeds balance"}`))
	})

	out := captureOutput(t, func() {
		checkReconciliation("w-1")
	})

	if !strings.Contains(out, "FAILED") {
		t.Fatalf("expected FAILED, got:\n%s", out)
	}
	if !strings.Contains(out, "escrow held exceeds balance") {
		t.Fatalf("expected invariant error in output:\n%s", out)
	}
}
