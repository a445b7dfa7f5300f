package static

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"storelocator/platform/logger"

	"github.com/gin-gonic/gin"
)

type testStaticConfig struct {
	dir string
}

func (c testStaticConfig) GetStaticDir() string  { return c.dir }
func (testStaticConfig) GetIndexFile() string    { return "index.html" }
func (testStaticConfig) GetNotFoundFile() string { return "404.html" }

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	full := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestEngine(dir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.NoRoute(New(testStaticConfig{dir: dir}, logger.Nop()).Handle)
	return engine
}

func serve(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServesFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", "<h1>locator</h1>")
	writeFile(t, dir, "js/store-locator.js", "console.log(1)")
	writeFile(t, dir, "data.json", "{}")
	writeFile(t, dir, "logo.png", "png")
	writeFile(t, dir, "README", "plain")
	engine := newTestEngine(dir)

	tests := []struct {
		target string
		body   string
		ctype  string
	}{
		{"/", "<h1>locator</h1>", "text/html"},
		{"/?storeCode=A1", "<h1>locator</h1>", "text/html"},
		{"/js/store-locator.js", "console.log(1)", "text/javascript"},
		{"/data.json", "{}", "application/json"},
		{"/logo.png", "png", "image/png"},
		{"/README", "plain", "text/html"},
	}
	for _, tt := range tests {
		rec := serve(engine, tt.target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tt.target, rec.Code)
		}
		if rec.Body.String() != tt.body {
			t.Fatalf("%s: body %q", tt.target, rec.Body.String())
		}
		if got := rec.Header().Get("Content-Type"); got != tt.ctype {
			t.Fatalf("%s: content type %q, want %q", tt.target, got, tt.ctype)
		}
	}
}

func TestNotFoundPage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "404.html", "<p>gone</p>")
	rec := serve(newTestEngine(dir), "/missing.css")
	if rec.Code != http.StatusNotFound || rec.Body.String() != "<p>gone</p>" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html" {
		t.Fatalf("content type %q", got)
	}
}

func TestNotFoundFallbackText(t *testing.T) {
	rec := serve(newTestEngine(t.TempDir()), "/missing.html")
	if rec.Code != http.StatusNotFound || rec.Body.String() != "404 Not Found" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestTraversalStaysInsideDir(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "web")
	writeFile(t, parent, "secret.txt", "secret")
	writeFile(t, dir, "index.html", "index")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = "/../secret.txt"
	rec := httptest.NewRecorder()
	newTestEngine(dir).ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("traversal returned %d %q", rec.Code, rec.Body.String())
	}
}

func TestReadErrorIs500(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	rec := serve(newTestEngine(dir), "/assets")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Body.String() != "Server Error: EISDIR" {
		t.Fatalf("body %q", rec.Body.String())
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType("STYLE.CSS"); got != "text/css" {
		t.Fatalf("ContentType = %q", got)
	}
	if got := ContentType("photo.jpg"); got != "image/jpg" {
		t.Fatalf("ContentType = %q", got)
	}
}
