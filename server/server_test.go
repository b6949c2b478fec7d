package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ByLCY/pricelabel/config"
	"github.com/ByLCY/pricelabel/internal/app"
	"github.com/ByLCY/pricelabel/layout"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	settings := config.Defaults()
	settings.Export.OutputDir = t.TempDir()
	svc, err := app.New(settings)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	return New(svc, nil)
}

func do(t *testing.T, s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestConfigListsSliders(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/config", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp ConfigResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Sliders) != 8 || resp.Sliders[0].Field != "nameFontSize" {
		t.Fatalf("unexpected sliders %+v", resp.Sliders)
	}
	if resp.Page != [2]float64{72, 22} || resp.Label != [2]float64{35, 22} {
		t.Fatalf("unexpected sizes %v %v", resp.Label, resp.Page)
	}
}

func TestLayoutReturnsZones(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/layout", "application/json", `{"content":{"name":"Bánh quy"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var spec layout.VisualSpec
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(spec.Zones) != 3 || spec.Width != layout.LabelWidth {
		t.Fatalf("unexpected spec %+v", spec)
	}
	name, _ := spec.Zone(layout.ZoneName)
	if name.Text == nil || name.Text.Content != "Bánh quy" {
		t.Fatalf("name zone should carry the request content: %+v", name.Text)
	}
}

func TestLayoutRejectsUnknownFields(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/layout", "application/json", `{"colour":"red"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPreviewFormats(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/api/preview", "application/json", `{}`)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("png preview failed: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("body is not a PNG")
	}

	rec = do(t, s, http.MethodPost, "/api/preview?format=pdf", "application/json", `{}`)
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("pdf preview failed: %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/preview?format=svg", "application/json", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for svg, got %d", rec.Code)
	}
}

func TestExportJSON(t *testing.T) {
	body := `{"products":[
		{"name":"Bánh","price":"15000","barcode":"111","quantity":3},
		{"name":"Sữa","price":"32000","barcode":"222","quantity":1}
	]}`
	rec := do(t, newTestServer(t), http.MethodPost, "/api/export", "application/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a PDF")
	}
	if got := rec.Header().Get("X-Pages"); got != "2" {
		t.Fatalf("expected 2 pages, got %q", got)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "Tem_GMart_Pro_") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
}

func TestExportSheetText(t *testing.T) {
	body := `sheet "tuần 12" { product "Nước mắm" price "45000" barcode "8934563138165" qty 1 }`
	rec := do(t, newTestServer(t), http.MethodPost, "/api/export", "text/plain; charset=utf-8", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Pages"); got != "1" {
		t.Fatalf("expected 1 page, got %q", got)
	}
}

func TestExportErrors(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name        string
		contentType string
		body        string
	}{
		{"empty queue", "application/json", `{"products":[]}`},
		{"missing barcode", "application/json", `{"products":[{"name":"A","price":"1"}]}`},
		{"bad sheet", "text/plain", `sheet {`},
		{"quantity too large", "application/json", `{"products":[{"name":"A","price":"1","barcode":"2","quantity":1000000000}]}`},
		{"sheet quantity too large", "text/plain", `sheet "x" { product "A" price "1" barcode "2" qty 1000000000 }`},
	}
	for _, tc := range cases {
		rec := do(t, s, http.MethodPost, "/api/export", tc.contentType, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d (%s)", tc.name, rec.Code, rec.Body.String())
		}
		var msg Message
		if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil || msg.Type != "error" {
			t.Fatalf("%s: expected JSON error body, got %s", tc.name, rec.Body.String())
		}
	}
}
