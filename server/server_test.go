package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"ipscope/config"
	"ipscope/lookups"
	"ipscope/model"

	"github.com/gin-gonic/gin"
)

// testTemplates is a minimal stand-in for the embedded template tree.
var testTemplates = fstest.MapFS{
	"templates/index.html": &fstest.MapFile{
		Data: []byte(`<html><head><title>{{ .App.Name }}</title></head></html>`),
	},
}

// fakeProvider serves canned documents so handler tests never touch the
// network.
type fakeProvider struct {
	raw model.RawData
	err error
}

func (f *fakeProvider) Lookup(_ context.Context, ip string) (model.RawData, error) {
	return f.raw, f.err
}

func (f *fakeProvider) TestConnection(context.Context) error { return f.err }

func (f *fakeProvider) Name() string { return "fake" }

// setupTestRouter installs a fake provider and builds the full router.
func setupTestRouter(t *testing.T, p lookups.Provider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.Cfg = &config.Config{}
	config.Cfg.Application.Name = "TestApp"
	config.Cfg.Export.Dir = t.TempDir()

	lookups.SetProvider(p)
	t.Cleanup(func() { lookups.SetProvider(nil) })

	return NewRouter(testTemplates)
}

func sampleRaw() model.RawData {
	return model.RawData{
		"ip_address": "8.8.8.8",
		"city":       "Mountain View",
		"security": map[string]any{
			"is_vpn": true,
		},
	}
}

type apiResponse struct {
	Success bool                `json:"success"`
	Data    *model.LookupResult `json:"data"`
	Error   string              `json:"error"`
	Message string              `json:"message"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("could not marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var parsed apiResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("response was not JSON: %v (body: %s)", err, rr.Body.String())
	}
	return rr, parsed
}

func TestLookupIPSuccess(t *testing.T) {
	router := setupTestRouter(t, &fakeProvider{raw: sampleRaw()})

	rr, resp := doJSON(t, router, "POST", "/api/lookup-ip", map[string]string{"ip_address": "8.8.8.8"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rr.Code, http.StatusOK, rr.Body.String())
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("response did not carry a successful result")
	}
	if got := resp.Data.Basic["City"]; got != "Mountain View" {
		t.Errorf("City = %v, want Mountain View", got)
	}
	if got := resp.Data.Security["Threat Level"]; got != "Low (VPN detected)" {
		t.Errorf("Threat Level = %v, want Low (VPN detected)", got)
	}
}

func TestLookupIPTrimsInput(t *testing.T) {
	router := setupTestRouter(t, &fakeProvider{raw: sampleRaw()})

	rr, _ := doJSON(t, router, "POST", "/api/lookup-ip", map[string]string{"ip_address": "  8.8.8.8  "})
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d for padded input", rr.Code, http.StatusOK)
	}
}

func TestLookupIPValidationFailures(t *testing.T) {
	// The provider panics if reached: an invalid literal must be rejected
	// before any upstream call.
	router := setupTestRouter(t, &fakeProvider{err: fmt.Errorf("provider must not be called")})

	cases := []struct {
		name string
		ip   string
	}{
		{"Empty", ""},
		{"OctetTooLarge", "999.1.1.1"},
		{"TooFewGroups", "1.2.3"},
		{"HextetTooLong", "12345::1"},
		{"Garbage", "not-an-ip"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rr, resp := doJSON(t, router, "POST", "/api/lookup-ip", map[string]string{"ip_address": c.ip})
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
			}
			if resp.Error == "" {
				t.Error("response carries no error message")
			}
		})
	}
}

func TestLookupIPUpstreamFailure(t *testing.T) {
	router := setupTestRouter(t, &fakeProvider{err: fmt.Errorf("API rate limit exceeded")})

	rr, resp := doJSON(t, router, "POST", "/api/lookup-ip", map[string]string{"ip_address": "8.8.8.8"})
	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadGateway)
	}
	if !strings.Contains(resp.Error, "rate limit") {
		t.Errorf("error %q does not surface the upstream failure", resp.Error)
	}
	if resp.Success {
		t.Error("upstream failure was reported as success")
	}
}

func TestCurrentIP(t *testing.T) {
	router := setupTestRouter(t, &fakeProvider{raw: sampleRaw()})

	rr, resp := doJSON(t, router, "GET", "/api/current-ip", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := resp.Data.Basic["IP Address"]; got != "8.8.8.8" {
		t.Errorf("IP Address = %v, want 8.8.8.8", got)
	}
}

func TestTestConnection(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router := setupTestRouter(t, &fakeProvider{})
		rr, resp := doJSON(t, router, "GET", "/api/test-connection", nil)
		if rr.Code != http.StatusOK || !resp.Success {
			t.Errorf("status = %d success = %v, want 200/true", rr.Code, resp.Success)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		router := setupTestRouter(t, &fakeProvider{err: fmt.Errorf("no route to host")})
		rr, resp := doJSON(t, router, "GET", "/api/test-connection", nil)
		if rr.Code != http.StatusBadGateway || resp.Success {
			t.Errorf("status = %d success = %v, want 502/false", rr.Code, resp.Success)
		}
	})
}

func TestExport(t *testing.T) {
	router := setupTestRouter(t, &fakeProvider{})
	result := &model.LookupResult{
		Basic: model.FieldMap{"IP Address": "8.8.8.8"},
	}

	t.Run("JSON", func(t *testing.T) {
		rr, _ := doJSON(t, router, "POST", "/api/export", map[string]any{"format": "json", "data": result})
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body: %s)", rr.Code, http.StatusOK, rr.Body.String())
		}
		var body struct {
			Filename string `json:"filename"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("response was not JSON: %v", err)
		}
		data, err := os.ReadFile(body.Filename)
		if err != nil {
			t.Fatalf("export file was not written: %v", err)
		}
		if !strings.Contains(string(data), "8.8.8.8") {
			t.Error("export file does not contain the result data")
		}
	})

	t.Run("Text", func(t *testing.T) {
		rr, _ := doJSON(t, router, "POST", "/api/export", map[string]any{"format": "text", "data": result})
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body: %s)", rr.Code, http.StatusOK, rr.Body.String())
		}
		var body struct {
			Filename string `json:"filename"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("response was not JSON: %v", err)
		}
		if filepath.Ext(body.Filename) != ".txt" {
			t.Errorf("text export filename %q does not end in .txt", body.Filename)
		}
	})

	t.Run("NoData", func(t *testing.T) {
		rr, resp := doJSON(t, router, "POST", "/api/export", map[string]any{"format": "json"})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
		if resp.Error == "" {
			t.Error("response carries no error message")
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		rr, _ := doJSON(t, router, "POST", "/api/export", map[string]any{"format": "xml", "data": result})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})
}

func TestIndexPage(t *testing.T) {
	router := setupTestRouter(t, &fakeProvider{})

	req, _ := http.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "TestApp") {
		t.Error("index page does not render the application name")
	}
}
