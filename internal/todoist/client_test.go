package todoist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/connradolisboa/todoist-vault-sync/internal/vaultmodel"
)

type staticToken struct{}

func (staticToken) Token(ctx context.Context) (string, error) { return "test-token", nil }

func TestFetchSnapshot_MapsProjectsSectionsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Fatalf("expected bearer token header, got %q", auth)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"projects": []map[string]any{{"id": "P1", "name": "Personal"}},
			"sections": []map[string]any{{"id": "S1", "project_id": "P1", "name": "Errands"}},
			"items": []map[string]any{{
				"id": "T1", "content": "Buy milk", "project_id": "P1", "section_id": "S1",
				"priority": 1, "due": map[string]any{"date": "2026-08-01", "string": "tomorrow"},
			}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, srv.Client(), staticToken{}, nil)

	snap, err := c.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snap.Projects) != 1 || snap.Projects[0].Name != "Personal" {
		t.Fatalf("unexpected projects: %v", snap.Projects)
	}

	if len(snap.Items) != 1 || snap.Items[0].Content != "Buy milk" {
		t.Fatalf("unexpected items: %v", snap.Items)
	}

	if snap.Items[0].Due.Date != "2026-08-01" {
		t.Fatalf("unexpected due date: %v", snap.Items[0].Due)
	}
}

func TestFetchSnapshot_MapsUserAndResponsibleUID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"id": "U1"},
			"items": []map[string]any{{
				"id": "T1", "content": "Buy milk", "responsible_uid": "U1",
			}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, srv.Client(), staticToken{}, nil)

	snap, err := c.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.UserID != "U1" {
		t.Fatalf("expected snapshot UserID %q, got %q", "U1", snap.UserID)
	}

	if len(snap.Items) != 1 || snap.Items[0].ResponsibleUID != "U1" {
		t.Fatalf("unexpected items: %v", snap.Items)
	}
}

func TestFetchSnapshot_SkipsDeletedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"projects": []map[string]any{{"id": "P1", "name": "Gone", "is_deleted": true}},
			"items":    []map[string]any{},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, srv.Client(), staticToken{}, nil)

	snap, err := c.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(snap.Projects) != 0 {
		t.Fatalf("expected deleted project filtered out, got %v", snap.Projects)
	}
}

func TestCreateTask_ReturnsServerAssignedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}

		json.NewEncoder(w).Encode(map[string]string{"id": "T99"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, srv.Client(), staticToken{}, nil)

	id, err := c.CreateTask(context.Background(), vaultmodel.TaskPayload{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if id != "T99" {
		t.Fatalf("expected T99, got %q", id)
	}
}

func TestUpdateTask_SendsOnlyPresentFields(t *testing.T) {
	var sawContentCall bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tasks/T1" {
			sawContentCall = true

			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)

			if _, ok := body["priority"]; ok {
				t.Fatalf("did not expect priority field in request: %v", body)
			}
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, srv.Client(), staticToken{}, nil)

	title := "New title"

	err := c.UpdateTask(context.Background(), vaultmodel.TaskPatch{ID: "T1", Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sawContentCall {
		t.Fatalf("expected a call to /tasks/T1")
	}
}

func TestUpdateTask_MoveDispatchesSyncCommand(t *testing.T) {
	var sawSyncCall bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sync" {
			sawSyncCall = true
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, srv.Client(), staticToken{}, nil)

	projectID := "P2"

	err := c.UpdateTask(context.Background(), vaultmodel.TaskPatch{ID: "T1", ProjectID: &projectID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sawSyncCall {
		t.Fatalf("expected a sync command for project move")
	}
}

func TestDoJSON_RetriesOn500ThenSucceeds(t *testing.T) {
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(map[string]string{"id": "T1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, srv.Client(), staticToken{}, nil).WithBackoffBase(1 * time.Millisecond)

	id, err := c.CreateTask(context.Background(), vaultmodel.TaskPayload{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if id != "T1" || attempts < 2 {
		t.Fatalf("expected retried success, got id=%q attempts=%d", id, attempts)
	}
}

func TestDoJSON_NonRetryable4xxReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, srv.Client(), staticToken{}, nil)

	_, err := c.CreateTask(context.Background(), vaultmodel.TaskPayload{Title: "Buy milk"})
	if err == nil {
		t.Fatalf("expected an error for 400 response")
	}
}
