// Package canvas serves markup documents as editable element trees. A GET request returns the
// parsed tree of a markup file as JSON; a WebSocket connection to the same URL opens an edit
// session on it.
package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dpotapov/go-canvas/catalog"
	"github.com/dpotapov/go-canvas/markup"
)

// markupExt is the extension of the markup files served by the Handler.
const markupExt = ".jsx"

// contextLines is the number of source lines shown on each side of a diagnostic.
const contextLines = 2

// wsUpgrader is a Gorilla WebSocket instance, used to respond HTTP requests with WebSocket.
var wsUpgrader = websocket.Upgrader{}

type Handler struct {
	// FileSystem to serve markup files from.
	FileSystem fs.FS

	// Catalog resolves tag names to element types. If nil, tags are used as types.
	Catalog *catalog.Catalog

	// OnError is a callback that is called when an error occurs while serving a request.
	OnError func(*http.Request, error)

	// Logger configures logging for internal events.
	Logger *slog.Logger

	// init is used to initialize the handler only once.
	init sync.Once

	// logger is a private logger instance that is used to log internal events.
	logger *slog.Logger
}

// Document is the response to a GET request.
type Document struct {
	Path      string         `json:"path"`
	Roots     []*markup.Node `json:"roots"`
	Markup    string         `json:"markup"`
	Symbols   []string       `json:"symbols"`
	Warnings  []Diagnostic   `json:"warnings,omitempty"`
	Errors    []Diagnostic   `json:"errors,omitempty"`
	NodeCount int            `json:"nodeCount"`
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.init.Do(func() {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		if h.Logger != nil {
			h.logger = h.Logger
		}
	})

	if err := h.handleRequest(w, r); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		h.logger.Error("Serve HTTP request", "url", r.URL.Redacted(), "error", err)

		if h.OnError != nil {
			h.OnError(r, err)
		}
	}
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return nil
	}

	fsPath := matchFile(cleanPath(r.URL.Path))
	if fsPath == "" {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return nil
	}

	src, err := fs.ReadFile(h.FileSystem, fsPath)
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", fsPath, err)
	}

	if websocket.IsWebSocketUpgrade(r) {
		return h.serveSession(w, r, fsPath, string(src))
	}
	return h.serveDocument(w, fsPath, string(src))
}

func (h *Handler) serveDocument(w http.ResponseWriter, fsPath, src string) error {
	r, inv := h.resolvers()
	res := markup.Parse(src, r, nil)

	for _, warn := range res.Warnings {
		h.logger.Debug("Parse warning", "path", fsPath, "warning", warn)
	}

	doc := Document{
		Path:      fsPath,
		Roots:     res.Roots,
		Markup:    markup.Serialize(res.Roots, inv),
		Symbols:   markup.Symbols(res.Roots),
		Warnings:  diagnostics(src, res.Warnings, contextLines),
		Errors:    diagnostics(src, res.Errors, contextLines),
		NodeCount: markup.Count(res.Roots),
	}

	status := http.StatusOK
	if len(res.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// serveSession runs an edit session over a WebSocket connection. Requests are applied one at a
// time in the order they are received; each one is answered with the resulting state.
func (h *Handler) serveSession(w http.ResponseWriter, r *http.Request, fsPath, src string) error {
	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	res, inv := h.resolvers()
	sess := NewSession(src, res, inv)

	h.logger.Info("Edit session started", "path", fsPath, "nodes", markup.Count(sess.Roots()))
	defer h.logger.Info("Edit session closed", "path", fsPath)

	reqs := make(chan Request)
	done := make(chan error, 1)

	go func() {
		defer close(reqs)
		for {
			var req Request
			if err := ws.ReadJSON(&req); err != nil {
				if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					err = nil
				} else {
					err = fmt.Errorf("read websocket message: %w", err)
				}
				done <- err
				return
			}
			select {
			case reqs <- req:
			case <-r.Context().Done():
				return
			}
		}
	}()

	if err := ws.WriteJSON(sess.Apply(Request{Op: OpSerialize})); err != nil {
		return fmt.Errorf("write websocket message: %w", err)
	}

	for {
		select {
		case req, ok := <-reqs:
			if !ok {
				return <-done
			}
			resp := sess.Apply(req)
			if resp.Error != "" {
				h.logger.Warn("Edit operation failed", "path", fsPath, "op", req.Op, "error", resp.Error)
			}
			if err := ws.WriteJSON(resp); err != nil {
				return fmt.Errorf("write websocket message: %w", err)
			}
		case <-r.Context().Done():
			return nil
		}
	}
}

// resolvers returns the catalog as resolver interfaces, or nils when no catalog is configured.
func (h *Handler) resolvers() (markup.Resolver, markup.InverseResolver) {
	if h.Catalog == nil {
		return nil, nil
	}
	return h.Catalog, h.Catalog
}

// matchFile maps a clean URL path to a markup file in the FileSystem:
// - /foo/bar.jsx -> foo/bar.jsx
// - /foo/bar -> foo/bar.jsx
// - /foo/ -> foo/index.jsx
// - / -> index.jsx
//
// Hidden files and directories, and files of other types, are not matched.
func matchFile(urlPath string) string {
	p := strings.TrimPrefix(urlPath, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index"
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg[0] == '.' {
			return ""
		}
	}
	switch path.Ext(p) {
	case markupExt:
	case "":
		p += markupExt
	default:
		return ""
	}
	if !fs.ValidPath(p) {
		return ""
	}
	return p
}

// cleanPath returns the canonical path for p, eliminating . and .. elements.
//
// Copied from net/http/server.go
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	// path.Clean removes trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == '/' && np != "/" {
		// Fast path for common case of p being the string we want:
		if len(p) == len(np)+1 && strings.HasPrefix(p, np) {
			np = p
		} else {
			np += "/"
		}
	}
	return np
}
