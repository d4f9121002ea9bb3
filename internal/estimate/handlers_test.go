package estimate

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func newTestApp(t *testing.T) (*fiber.App, *Store) {
	t.Helper()
	s := openStore(t)
	return NewApp(NewHandler(s), AppConfig{}), s
}

func do(t *testing.T, app *fiber.App, method, path string, body []byte) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		if code, body := do(t, app, http.MethodGet, path, nil); code != http.StatusOK {
			t.Errorf("%s = %d %s", path, code, body)
		}
	}
}

func TestPostAndFetchHandoff(t *testing.T) {
	app, _ := newTestApp(t)
	body, _ := json.Marshal(samplePayload())

	code, resp := do(t, app, http.MethodPost, "/handoffs", body)
	if code != http.StatusCreated {
		t.Fatalf("POST = %d %s", code, resp)
	}
	var created struct{ ID string }
	if err := json.Unmarshal(resp, &created); err != nil || created.ID == "" {
		t.Fatalf("response %s: %v", resp, err)
	}

	code, resp = do(t, app, http.MethodGet, "/handoffs/"+created.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("GET = %d %s", code, resp)
	}
	var got struct {
		Handoff Handoff            `json:"handoff"`
		Totals  map[string]float64 `json:"totals"`
	}
	if err := json.Unmarshal(resp, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Handoff.Payload.Measurements) != 3 || got.Totals["ft"] != 15 {
		t.Errorf("handoff = %+v totals = %v", got.Handoff.Payload.Measurements, got.Totals)
	}

	code, resp = do(t, app, http.MethodGet, "/handoffs", nil)
	var list []Summary
	if code != http.StatusOK || json.Unmarshal(resp, &list) != nil || len(list) != 1 {
		t.Errorf("list = %d %s", code, resp)
	}
}

func TestPostRejectsBadInput(t *testing.T) {
	app, _ := newTestApp(t)
	if code, _ := do(t, app, http.MethodPost, "/handoffs", nil); code != http.StatusBadRequest {
		t.Errorf("empty body = %d", code)
	}
	if code, _ := do(t, app, http.MethodPost, "/handoffs", []byte("{")); code != http.StatusBadRequest {
		t.Errorf("bad json = %d", code)
	}
	p := samplePayload()
	p.Measurements = nil
	body, _ := json.Marshal(p)
	if code, _ := do(t, app, http.MethodPost, "/handoffs", body); code != http.StatusUnprocessableEntity {
		t.Errorf("empty payload = %d", code)
	}
}

func TestGetUnknownHandoff(t *testing.T) {
	app, _ := newTestApp(t)
	if code, _ := do(t, app, http.MethodGet, "/handoffs/missing", nil); code != http.StatusNotFound {
		t.Errorf("GET missing = %d", code)
	}
}
