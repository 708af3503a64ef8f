package fileserver

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"html/template"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Carbon-X-DAO/AvatarMix/editor"
	"github.com/Carbon-X-DAO/AvatarMix/templates"
)

var reThumb = regexp.MustCompile(`^/thumbs/(?P<slice>[a-z]+)/(?P<index>[0-9]+)\.png$`)

type Server struct {
	assetRoot string
	*http.Server
	db               *sql.DB
	stmtInsertExport *sql.Stmt
	editor           *editor.Editor
	now              func() time.Time
}

// tlsConfig may be nil, in which case an HTTP server will serve without TLS.
// db may be nil, in which case exports are not recorded.
func New(addr string, assetRoot string, tlsConfig *tls.Config, db *sql.DB, ed *editor.Editor) (*Server, error) {
	server := &Server{
		assetRoot: assetRoot,
		db:        db,
		editor:    ed,
		now:       time.Now,
	}

	if db != nil {
		stmt, err := db.Prepare(queryInsertExport)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare statement for storing exports: %w", err)
		}
		server.stmtInsertExport = stmt
	}

	mux := http.NewServeMux()
	mux.Handle("/", server)

	httpServer := http.Server{
		Addr:      addr,
		TLSConfig: tlsConfig,
		Handler:   mux,
	}

	server.Server = &httpServer

	return server, nil
}

func (server *Server) Listen() error {
	if server.Server.TLSConfig != nil {
		if err := server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("TLS HTTP server failed: %s", err)
		}
	} else {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server failed: %s", err)
		}
	}

	return nil
}

func (server *Server) Shutdown(ctx context.Context) error {
	if err := server.Server.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to shut down HTTP server: %s", err)
	}
	if server.db == nil {
		return nil
	}
	if err := server.stmtInsertExport.Close(); err != nil {
		log.Printf("failed to close export statement: %s", err)
	}
	if err := server.db.Close(); err != nil {
		return fmt.Errorf("failed to close DB connection: %s", err)
	}

	return nil
}

func (server *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	get := r.Method == http.MethodGet || r.Method == http.MethodHead
	post := r.Method == http.MethodPost

	switch {
	case r.URL.Path == "/" && get:
		server.handleEditor(w, r)
	case r.URL.Path == "/select" && post:
		server.handleSelect(w, r)
	case r.URL.Path == "/randomize" && post:
		server.handleRandomize(w, r)
	case r.URL.Path == "/composite.png" && get:
		server.handleComposite(w, r)
	case reThumb.MatchString(r.URL.Path) && get:
		server.handleThumb(w, r)
	case r.URL.Path == "/export" && get:
		server.handleExport(w, r)
	case r.URL.Path == "/export/badge" && get:
		server.handleBadge(w, r)
	case r.URL.Path == "/state" && get:
		server.handleState(w, r)
	case strings.HasPrefix(r.URL.Path, "/assets/") && get:
		server.handleAssetsPath(w, r)
	default:
		server.serveNotFound(w)
	}
}

func (server *Server) serveFile(file string, res http.ResponseWriter) {
	fp, err := os.Open(file)
	if err != nil {
		writeErr(err, res)
		return
	}
	defer fp.Close()

	if ctype := mime.TypeByExtension(filepath.Ext(file)); ctype != "" {
		res.Header().Set("Content-Type", ctype)
	}

	_, err = io.Copy(res, fp)
	if err != nil {
		log.Printf("failed to write file %s: %s", file, err)
	}
}

func (server *Server) serveNotFound(res http.ResponseWriter) {
	res.WriteHeader(http.StatusNotFound)
	writeTemplate(templates.NotFound, nil, res)
}

func writeTemplate(tmpl *template.Template, ctx interface{}, res http.ResponseWriter) {
	err := tmpl.Execute(res, ctx)
	if err != nil {
		log.Printf("failed to render template %s: %s", tmpl.Name(), err)
	}
}

func writeErr(err error, res http.ResponseWriter) {
	res.WriteHeader(http.StatusInternalServerError)
	templates.Error.Execute(res, err)
	log.Printf("err: %s", err.Error())
}
