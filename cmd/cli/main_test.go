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

func TestEscalateOverdue(t *testing.T) {
	var gotActor string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/disputes/escalate-overdue" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotActor = r.Header.Get("X-Actor-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"escalated":3}`))
	}))
	defer server.Close()

	baseURL = server.URL
	timeout = 5 * time.Second
	actorID = "ops-1"

	output := captureOutput(t, escalateOverdue)

	if !strings.Contains(output, "Escalated 3 dispute(s)") {
		t.Fatalf("unexpected output: %q", output)
	}
	if gotActor != "ops-1" {
		t.Fatalf("expected X-Actor-ID ops-1, got %q", gotActor)
	}
}

func TestListPendingEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/snapshots/pending" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	baseURL = server.URL
	timeout = 5 * time.Second

	output := captureOutput(t, listPending)

	if !strings.Contains(output, "No snapshots pending approval") {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestListPendingPrintsSnapshots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"snap-1","deal_id":"deal-7","version":2,"pool_amount_minor":"1000000","maker_id":"maker-1"}]`))
	}))
	defer server.Close()

	baseURL = server.URL
	timeout = 5 * time.Second

	output := captureOutput(t, listPending)

	if !strings.Contains(output, "snap-1") || !strings.Contains(output, "deal=deal-7 v2") {
		t.Fatalf("unexpected output: %q", output)
	}
}

func TestCheckConsistencyPasses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/ledger/consistency" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"consistent":true,"violations":[]}`))
	}))
	defer server.Close()

	baseURL = server.URL
	timeout = 5 * time.Second

	output := captureOutput(t, checkConsistency)

	if !strings.Contains(output, "Consistency check PASSED") {
		t.Fatalf("unexpected output: %q", output)
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String()
}
