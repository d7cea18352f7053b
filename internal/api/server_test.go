package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/copextract/internal/record"
	"github.com/dgallion1/copextract/internal/writer"
)

func writeOutput(t *testing.T, withManifest bool) string {
	t.Helper()
	dir := t.TempDir()
	w, err := writer.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	set := &record.Set{
		Details: []record.Detail{
			{Code: "F01", Name: "Apron", Category: "flashings"},
			{Code: "P01", Name: "Pipe", Category: "penetrations"},
		},
		Standards: []record.Standard{{Code: "NZS 3604", Title: "Timber-framed Buildings"}},
		Warnings: []record.Warning{
			{DetailCode: "F01", Level: record.LevelWarning, Message: "Seal laps"},
			{DetailCode: "F01", Level: record.LevelFailure, Message: "Do not cut ribs"},
			{Level: record.LevelCaution, Message: "Do not seal the ridge vent"},
		},
	}
	if _, err := w.WriteSet(set); err != nil {
		t.Fatal(err)
	}
	if withManifest {
		if _, err := w.WriteJSON(writer.ManifestFile, map[string]string{"run_id": "abc", "status": "completed"}); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestServer(t *testing.T, apiKey string, withManifest bool) *httptest.Server {
	t.Helper()
	cat, err := LoadCatalog(writeOutput(t, withManifest))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	srv := httptest.NewServer(NewServer(cat, nil, apiKey))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path, token string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp, body
}

func count(t *testing.T, body map[string]json.RawMessage) int {
	t.Helper()
	var n int
	if err := json.Unmarshal(body["count"], &n); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	return n
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, "secret", false)
	resp, body := get(t, srv, "/health", "")
	if resp.StatusCode != http.StatusOK || string(body["status"]) != `"ok"` {
		t.Errorf("unexpected health response %d %v", resp.StatusCode, body)
	}
}

func TestServer_Details(t *testing.T) {
	srv := newTestServer(t, "", false)

	_, body := get(t, srv, "/api/details", "")
	if n := count(t, body); n != 2 {
		t.Errorf("expected 2 details, got %d", n)
	}
	_, body = get(t, srv, "/api/details?category=penetrations", "")
	if n := count(t, body); n != 1 {
		t.Errorf("expected 1 penetration, got %d", n)
	}

	resp, body := get(t, srv, "/api/details/F01", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var d record.Detail
	if err := json.Unmarshal(body["detail"], &d); err != nil {
		t.Fatal(err)
	}
	if d.Name != "Apron" || d.Substrate != record.DefaultSubstrate {
		t.Errorf("unexpected detail %+v", d)
	}
	var ws []record.Warning
	if err := json.Unmarshal(body["warnings"], &ws); err != nil {
		t.Fatal(err)
	}
	if len(ws) != 2 {
		t.Errorf("expected 2 linked warnings, got %d", len(ws))
	}

	resp, _ = get(t, srv, "/api/details/X99", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestServer_WarningsFilter(t *testing.T) {
	srv := newTestServer(t, "", false)

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?level=failure", 1},
		{"?level=critical", 1},
		{"?level=caution", 1},
		{"?detail_code=F01", 2},
		{"?detail_code=F01&level=warning", 1},
		{"?detail_code=P01", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := get(t, srv, "/api/warnings"+tt.query, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			if n := count(t, body); n != tt.want {
				t.Errorf("expected %d warnings, got %d", tt.want, n)
			}
		})
	}

	resp, _ := get(t, srv, "/api/warnings?level=severe", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown level, got %d", resp.StatusCode)
	}
}

func TestServer_StandardsAndRun(t *testing.T) {
	srv := newTestServer(t, "", true)

	_, body := get(t, srv, "/api/standards", "")
	if n := count(t, body); n != 1 {
		t.Errorf("expected 1 standard, got %d", n)
	}
	resp, body := get(t, srv, "/api/run", "")
	if resp.StatusCode != http.StatusOK || string(body["run_id"]) != `"abc"` {
		t.Errorf("unexpected run response %d %v", resp.StatusCode, body)
	}

	noRun := newTestServer(t, "", false)
	resp, _ = get(t, noRun, "/api/run", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 without manifest, got %d", resp.StatusCode)
	}
}

func TestServer_Auth(t *testing.T) {
	srv := newTestServer(t, "secret", false)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"valid", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := get(t, srv, "/api/standards", tt.token)
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestLoadCatalog_Errors(t *testing.T) {
	if _, err := LoadCatalog(t.TempDir()); err == nil {
		t.Error("expected error for empty directory")
	}

	dir := writeOutput(t, false)
	if err := os.WriteFile(filepath.Join(dir, writer.ManifestFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(dir); err == nil {
		t.Error("expected error for corrupt manifest")
	}
}
