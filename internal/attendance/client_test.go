package attendance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Fetch(t *testing.T) {
	t.Run("decodes counts and sends the token", func(t *testing.T) {
		var gotToken string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotToken = r.URL.Query().Get("token")
			w.Header().Set("Content-Type", "application/json")
			if _, err := w.Write([]byte(`{"attendance":{"S001":40,"S002":12}}`)); err != nil {
				t.Errorf("write response: %v", err)
			}
		}))
		defer server.Close()

		client := NewClient(server.URL, "conf2024")
		counts, err := client.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch returned error: %v", err)
		}

		if gotToken != "conf2024" {
			t.Fatalf("expected token query parameter, got %q", gotToken)
		}
		if counts["S001"] != 40 || counts["S002"] != 12 {
			t.Fatalf("unexpected counts: %v", counts)
		}
	})

	t.Run("non-2xx status is a FetchError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := NewClient(server.URL, "").Fetch(context.Background())

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *FetchError, got %v", err)
		}
		if fetchErr.Status != http.StatusBadGateway {
			t.Fatalf("expected status 502, got %d", fetchErr.Status)
		}
	})

	t.Run("malformed body is a FetchError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := w.Write([]byte(`{"attendance": not-json`)); err != nil {
				t.Errorf("write response: %v", err)
			}
		}))
		defer server.Close()

		_, err := NewClient(server.URL, "").Fetch(context.Background())

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *FetchError, got %v", err)
		}
	})

	t.Run("unreachable endpoint is a FetchError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		_, err := NewClient(server.URL, "").Fetch(context.Background())

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected *FetchError, got %v", err)
		}
	})
}
