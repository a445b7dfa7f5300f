// Package static serves the front-end files from a base directory.
package static

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	apphttp "storelocator/internal/http"
	"storelocator/platform/config"
	"storelocator/platform/logger"

	"github.com/gin-gonic/gin"
)

const (
	defaultContentType = "text/html"
	notFoundText       = "404 Not Found"
)

var contentTypes = map[string]string{
	".js":   "text/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpg",
}

var errnoCodes = map[syscall.Errno]string{
	syscall.EISDIR:  "EISDIR",
	syscall.ENOTDIR: "ENOTDIR",
	syscall.EACCES:  "EACCES",
	syscall.EPERM:   "EPERM",
	syscall.EMFILE:  "EMFILE",
	syscall.EIO:     "EIO",
}

// Server reads files from dir on every request.
type Server struct {
	dir      string
	index    string
	notFound string
	log      *logger.Logger
}

// New creates a file server rooted at the configured directory.
func New(cfg config.StaticConfig, log *logger.Logger) *Server {
	return &Server{
		dir:      cfg.GetStaticDir(),
		index:    cfg.GetIndexFile(),
		notFound: cfg.GetNotFoundFile(),
		log:      log,
	}
}

// ContentType maps a file extension to its Content-Type. Unknown
// extensions are served as HTML.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return defaultContentType
}

// Handle serves the request path. It is meant for gin's NoRoute.
func (s *Server) Handle(c *gin.Context) {
	s.log.Info("static request", slog.String("url", c.Request.URL.RequestURI()))

	name := s.resolve(c.Request.URL.Path)
	content, err := os.ReadFile(name)
	if err == nil {
		c.Data(http.StatusOK, ContentType(name), content)
		return
	}

	if errors.Is(err, fs.ErrNotExist) {
		page, pageErr := os.ReadFile(filepath.Join(s.dir, s.notFound))
		if pageErr != nil {
			c.Data(http.StatusNotFound, defaultContentType, []byte(notFoundText))
			return
		}
		c.Data(http.StatusNotFound, defaultContentType, page)
		return
	}

	code := errorCode(err)
	s.log.Error("static read failed", slog.String("path", name), slog.String("code", code), slog.String("error", err.Error()))
	c.String(http.StatusInternalServerError, "Server Error: %s", code)
}

// resolve maps a URL path to a file below dir. Cleaning against "/" keeps
// dot-dot segments from escaping the base directory.
func (s *Server) resolve(urlPath string) string {
	clean := path.Clean("/" + urlPath)
	if clean == "/" {
		clean = "/" + s.index
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean))
}

func errorCode(err error) string {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if code, ok := errnoCodes[errno]; ok {
			return code
		}
		return errno.Error()
	}
	return "UNKNOWN"
}

// Module mounts the file server as the fallback route.
type Module struct {
	server *Server
}

func NewModule(cfg config.StaticConfig, log *logger.Logger) *Module {
	return &Module{server: New(cfg, log)}
}

func (m *Module) Name() string {
	return "static"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.NoRoute(m.server.Handle)
}

var _ apphttp.Module = (*Module)(nil)
