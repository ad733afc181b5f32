package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/acklang/ack/internal/codegen"
	"github.com/acklang/ack/pkg/core"
	"github.com/go-chi/chi/v5"
)

// componentInfo is one entry of /api/components.
type componentInfo struct {
	Path     string                `json:"path"`
	Name     string                `json:"name"`
	Errors   []core.CompileError   `json:"errors"`
	Warnings []core.CompileWarning `json:"warnings"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	paths, err := s.components()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var b strings.Builder
	b.WriteString("<!doctype html>\n<html><head><meta charset=\"utf-8\"><title>ack components</title></head><body>\n<h1>Components</h1>\n<ul>\n")
	for _, p := range paths {
		name := core.ComponentName(p)
		fmt.Fprintf(&b, "<li><a href=\"/preview/%s\">%s</a> <small>%s</small></li>\n",
			html.EscapeString(p), html.EscapeString(name), html.EscapeString(p))
	}
	b.WriteString("</ul>\n")
	b.WriteString(reloadScript)
	b.WriteString("</body></html>\n")

	noCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	paths, err := s.components()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	infos := make([]componentInfo, 0, len(paths))
	for _, p := range paths {
		result, err := s.compile(r.Context(), p)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		infos = append(infos, componentInfo{
			Path:     p,
			Name:     core.ComponentName(p),
			Errors:   orEmpty(result.Errors),
			Warnings: orEmpty(result.Warnings),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(infos)
}

func (s *Server) handleComponent(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	result, err := s.compile(r.Context(), rel)
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	noCache(w)
	if result.HasErrors() {
		var b strings.Builder
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "%s:%d:%d: %s\n", rel, e.Line, e.Column, e.Message)
		}
		s.logger.Warn("compile failed", "component", rel, "errors", len(result.Errors))
		http.Error(w, b.String(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("X-Ack-Warnings", strconv.Itoa(len(result.Warnings)))
	_, _ = w.Write([]byte(result.Code))
}

// handlePreview serves a page that mounts one component. An optional
// state query parameter holds JSON initial values.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimSuffix(chi.URLParam(r, "*"), core.FileExtension)
	path, err := s.resolve(rel)
	if err == nil {
		_, err = os.Stat(path)
	}
	if err != nil {
		http.NotFound(w, r)
		return
	}

	values := map[string]any{}
	if raw := r.URL.Query().Get("state"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			http.Error(w, "invalid state: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	stateTag, err := codegen.StateScript(values)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	importMap, _ := json.Marshal(map[string]map[string]string{
		"imports": {"@ack/runtime": s.cfg.RuntimeURL},
	})
	module, _ := json.Marshal("/components/" + rel + core.FileExtension)
	target, _ := json.Marshal(codegen.DefaultHydrationTarget)
	name := core.ComponentName(path)

	var b strings.Builder
	b.WriteString("<!doctype html>\n<html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(name))
	fmt.Fprintf(&b, "<script type=\"importmap\">%s</script>\n", importMap)
	b.WriteString("</head><body>\n<div id=\"app\"></div>\n")
	b.WriteString(stateTag)
	b.WriteString("\n<script type=\"module\">\n")
	fmt.Fprintf(&b, "import Component from %s;\n", module)
	b.WriteString("const initial = JSON.parse(document.querySelector('script[data-ack-state]').textContent);\n")
	fmt.Fprintf(&b, "Component({ initial }).mount(%s);\n", target)
	b.WriteString("</script>\n")
	b.WriteString(reloadScript)
	b.WriteString("</body></html>\n")

	noCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// handleReload streams reload events to the browser.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	_, _ = fmt.Fprint(w, "event: connected\ndata: ok\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case files := <-ch:
			_, _ = fmt.Fprintf(w, "event: reload\ndata: %s\n\n", files)
			flusher.Flush()
		}
	}
}

func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// reloadScript reloads the page when the server reports changed components.
const reloadScript = `<script>
(function () {
  var es = new EventSource('/__reload');
  es.addEventListener('reload', function () { window.location.reload(); });
})();
</script>
`
