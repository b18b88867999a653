// Package demosite serves a handful of sample pages, legitimate and
// fraudulent, whose content can be switched between versions at runtime.
// It gives trustlens something realistic to analyse and re-analyse locally.
package demosite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/trustlens/trustlens/internal/logging"
)

// DemoSite is a simple HTTP server with versioned pages.
type DemoSite struct {
	cfg      Config
	logger   logging.Logger
	pages    map[string]PageDefinition
	versions map[string]int // path -> current version
	mu       sync.RWMutex
}

// PageInfo describes a page and its current version.
type PageInfo struct {
	Path              string `json:"path"`
	Description       string `json:"description"`
	CurrentVersion    int    `json:"current_version"`
	AvailableVersions []int  `json:"available_versions"`
}

// NewDemoSite creates a new demo site instance.
func NewDemoSite(cfg Config, logger logging.Logger) *DemoSite {
	if cfg.InitialVersion <= 0 {
		cfg.InitialVersion = 1
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	pageMap := make(map[string]PageDefinition)
	versions := make(map[string]int)
	for _, p := range AllPages() {
		pageMap[p.Path] = p
		versions[p.Path] = cfg.InitialVersion
	}

	return &DemoSite{
		cfg:      cfg,
		logger:   logger.With(logging.F("component", "demosite")),
		pages:    pageMap,
		versions: versions,
	}
}

// Handler returns the site's routes.
func (s *DemoSite) Handler() http.Handler {
	mux := http.NewServeMux()

	for path := range s.pages {
		mux.HandleFunc(path, s.pageHandler(path))
	}

	mux.HandleFunc("/demo/set-version", s.setVersionHandler)
	mux.HandleFunc("/demo/versions", s.getVersionsHandler)
	mux.HandleFunc("/demo/bump-all", s.bumpAllVersionsHandler)
	mux.HandleFunc("/demo/reset", s.resetVersionsHandler)

	// Static file placeholder
	mux.HandleFunc("/static/", s.staticHandler)
	return mux
}

// Start listens on the configured port until the server fails.
func (s *DemoSite) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("demo site starting", logging.F("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

// SetVersion switches path to version. It reports whether the page exists.
func (s *DemoSite) SetVersion(path string, version int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pages[path]; !ok {
		return false
	}
	s.versions[path] = version
	return true
}

// Pages lists every page sorted by path.
func (s *DemoSite) Pages() []PageInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PageInfo, 0, len(s.pages))
	for path, def := range s.pages {
		available := make([]int, 0, len(def.Versions))
		for v := range def.Versions {
			available = append(available, v)
		}
		sort.Ints(available)
		out = append(out, PageInfo{
			Path:              path,
			Description:       def.Description,
			CurrentVersion:    s.versions[path],
			AvailableVersions: available,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// current returns the version to serve, falling back to the closest lower one.
func (s *DemoSite) current(path string) (PageVersion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.pages[path]
	if !ok {
		return PageVersion{}, false
	}
	for v := s.versions[path]; v >= 1; v-- {
		if pv, exists := def.Versions[v]; exists {
			return pv, true
		}
	}
	pv, ok := def.Versions[1]
	return pv, ok
}

func (s *DemoSite) pageHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		page, ok := s.current(path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(page.HTML))
	}
}

// staticHandler serves a 1x1 GIF for any asset.
func (s *DemoSite) staticHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/gif")
	_, _ = w.Write(pixelGIF)
}

var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00,
	0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02,
	0x44, 0x01, 0x00, 0x3b,
}

// setVersionHandler sets the version for a specific page.
func (s *DemoSite) setVersionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.FormValue("path")
	version, err := strconv.Atoi(r.FormValue("version"))
	if err != nil || version < 1 {
		http.Error(w, "Invalid version number", http.StatusBadRequest)
		return
	}
	if !s.SetVersion(path, version) {
		http.Error(w, "Unknown page", http.StatusNotFound)
		return
	}
	s.logger.Info("page version changed", logging.F("path", path), logging.F("version", version))

	writeJSON(w, map[string]any{
		"success": true,
		"path":    path,
		"version": version,
	})
}

// getVersionsHandler returns the current versions of all pages.
func (s *DemoSite) getVersionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Pages())
}

// bumpAllVersionsHandler moves every page to its next version, when it has one.
func (s *DemoSite) bumpAllVersionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	for path, def := range s.pages {
		if _, ok := def.Versions[s.versions[path]+1]; ok {
			s.versions[path]++
		}
	}
	s.mu.Unlock()
	writeJSON(w, s.Pages())
}

func (s *DemoSite) resetVersionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	for path := range s.versions {
		s.versions[path] = s.cfg.InitialVersion
	}
	s.mu.Unlock()
	writeJSON(w, s.Pages())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
