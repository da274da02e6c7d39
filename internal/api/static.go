// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/text/unicode/norm"

	"github.com/ManuGH/vidgate/internal/log"
)

var staticRequestsDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vidgate_static_requests_denied_total",
	Help: "Static file requests denied by reason",
}, []string{"reason"})

// staticHandler serves the web root. Directory listings are never produced;
// "/" maps to index.html through http.FileServer.
func staticHandler(root string) http.Handler {
	files := http.FileServer(noListingFS{http.Dir(root)})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			staticRequestsDeniedTotal.WithLabelValues("method_not_allowed").Inc()
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if isPathTraversal(r.URL.RawPath) || isPathTraversal(r.URL.Path) {
			logger := log.WithComponentFromContext(r.Context(), "static")
			logger.Warn().
				Str("event", "file_req.denied").
				Str("path", r.URL.Path).
				Str("reason", "path_escape").
				Msg("detected traversal sequence")
			staticRequestsDeniedTotal.WithLabelValues("path_escape").Inc()
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// noListingFS hides directories that have no index.html.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := n.fs.Open(strings.TrimSuffix(name, "/") + "/index.html")
		if err != nil {
			_ = f.Close()
			staticRequestsDeniedTotal.WithLabelValues("directory_listing").Inc()
			return nil, err
		}
		_ = index.Close()
	}
	return f, nil
}

// isPathTraversal decodes p up to three times and looks for dot-dot and NUL
// sequences, including overlong and Unicode-normalized forms.
func isPathTraversal(p string) bool {
	decoded := p
	for range 3 {
		prev := decoded
		if d, err := url.PathUnescape(decoded); err == nil {
			decoded = d
		} else if d2, err2 := url.QueryUnescape(decoded); err2 == nil {
			decoded = d2
		}
		if decoded == prev {
			break
		}
	}

	lower := strings.ToLower(decoded)
	for _, pat := range []string{"..", "%00", "\x00", "%c0%ae", "%e0%80%ae"} {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return strings.Contains(norm.NFC.String(lower), "..")
}
