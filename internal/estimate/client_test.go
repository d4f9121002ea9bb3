package estimate

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"plan-takeoff/internal/export"
)

func TestClientHandoff(t *testing.T) {
	var got export.Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/handoffs" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"x"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 5*time.Second)
	if err := c.Handoff(samplePayload()); err != nil {
		t.Fatal(err)
	}
	if got.Drawing.Name != "A-101" || len(got.Measurements) != 3 {
		t.Errorf("server got %+v", got)
	}
}

func TestClientReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "drawing name is required", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, 5*time.Second).Handoff(samplePayload())
	if err == nil || !strings.Contains(err.Error(), "422") {
		t.Errorf("err = %v", err)
	}
}
