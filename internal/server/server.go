// Package server wires the study area, raster store and HTTP routes together.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-dtw/internal/api"
	"github.com/joeblew999/plat-dtw/internal/api/viewer"
	"github.com/joeblew999/plat-dtw/internal/config"
	"github.com/joeblew999/plat-dtw/internal/db"
	"github.com/joeblew999/plat-dtw/internal/geo"
	"github.com/joeblew999/plat-dtw/internal/metrics"
	"github.com/joeblew999/plat-dtw/internal/raster"
	"github.com/joeblew999/plat-dtw/internal/raster/duckstore"
	"github.com/joeblew999/plat-dtw/internal/service"
	"github.com/joeblew999/plat-dtw/internal/templates"
	"github.com/joeblew999/plat-dtw/internal/tiler"
)

// Raster store backends.
const (
	StoreMemory = "memory"
	StoreDuckDB = "duckdb"
)

// Config holds the server configuration.
type Config struct {
	Host       string
	Port       string
	ConfigPath string // study area file
	DataDir    string
	WebDir     string // Path to web/ directory for static files and templates
	Store      string // "memory" or "duckdb"
}

// Server is the depth-to-water HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	services *api.Services
	renderer *templates.Renderer
	bus      *service.EventBus
	closeDB  bool
}

// New loads the study area and rasters and registers every route.
func New(ctx context.Context, cfg Config) (*Server, error) {
	area, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	s := &Server{config: cfg, bus: service.NewEventBus()}

	store, err := s.openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := service.LoadRasters(ctx, area, store); err != nil {
		s.closeStore(store)
		return nil, err
	}

	proj := geo.NewReprojector()
	study, err := service.NewStudyService(area, proj, store)
	if err != nil {
		s.closeStore(store)
		return nil, err
	}

	renderer, err := templates.New()
	if err != nil {
		s.closeStore(store)
		return nil, err
	}
	if cfg.WebDir != "" {
		fragmentsDir := filepath.Join(cfg.WebDir, "templates", "fragments")
		if _, err := os.Stat(fragmentsDir); err == nil {
			if err := renderer.Reload(fragmentsDir); err != nil {
				slog.Warn("keeping built-in fragments", "dir", fragmentsDir, "error", err)
			} else {
				slog.Info("loaded fragment templates", "dir", fragmentsDir)
			}
		}
	}
	s.renderer = renderer

	location, err := service.NewLocationService(ctx, study, proj, store, renderer, s.bus)
	if err != nil {
		s.closeStore(store)
		return nil, err
	}

	s.services = &api.Services{
		Study:       study,
		Location:    location,
		Coordinates: service.NewCoordinateService(study, proj, location.Header()),
		Basemap:     service.NewBasemapService(),
		Tiles:       service.NewTileService(cfg.DataDir, location, study.Extent()),
		Store:       store,
		StoreKind:   s.storeKind(),
		Projector:   proj,
	}

	s.mux = http.NewServeMux()
	s.humaAPI = newAPI(s.mux, cfg)
	s.routes()
	return s, nil
}

// OpenAPI returns the API description without loading a study area.
func OpenAPI(cfg Config) *huma.OpenAPI {
	humaAPI := newAPI(http.NewServeMux(), cfg)
	api.RegisterRoutes(humaAPI, &api.Services{})
	viewer.NewHandler(nil, nil, nil).RegisterRoutes(humaAPI)
	return humaAPI.OpenAPI()
}

func newAPI(mux *http.ServeMux, cfg Config) huma.API {
	humaConfig := huma.DefaultConfig("plat-dtw API", api.Version)
	humaConfig.Info.Description = "Depth-to-groundwater map API: point queries over model rasters, map extent, color ramps and basemaps."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, api.LinkTransformer())

	return humago.New(mux, humaConfig)
}

func (s *Server) storeKind() string {
	if s.config.Store == StoreDuckDB {
		return StoreDuckDB
	}
	return StoreMemory
}

func (s *Server) openStore(ctx context.Context) (raster.Store, error) {
	switch s.config.Store {
	case "", StoreMemory:
		return raster.NewMemoryStore(), nil
	case StoreDuckDB:
		conn, err := db.Get(db.Config{DataDir: s.config.DataDir, DBName: "dtw"})
		if err != nil {
			return nil, err
		}
		s.closeDB = true
		return duckstore.New(ctx, conn)
	default:
		return nil, fmt.Errorf("unknown raster store %q (want %s or %s)", s.config.Store, StoreMemory, StoreDuckDB)
	}
}

func (s *Server) closeStore(store raster.Store) {
	if err := store.Close(); err != nil {
		slog.Warn("close raster store", "error", err)
	}
	if s.closeDB {
		db.Close()
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the server's API description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Study returns the loaded study area service.
func (s *Server) Study() *service.StudyService {
	return s.services.Study
}

// TilesDir is where depth tile archives are written and served from.
func (s *Server) TilesDir() string {
	return s.services.Tiles.TilesDir()
}

// ExportTiles writes the classified depth cells as a PMTiles archive.
func (s *Server) ExportTiles(ctx context.Context, path string, opts tiler.Options) error {
	return s.services.Tiles.WriteFile(ctx, path, opts)
}

// Close closes server resources.
func (s *Server) Close() error {
	err := s.services.Store.Close()
	if s.closeDB {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (s *Server) routes() {
	// Huma REST API routes (OpenAPI-documented JSON endpoints)
	api.RegisterRoutes(s.humaAPI, s.services)

	// Viewer SSE routes using Huma + Datastar SDK
	viewer.NewHandler(s.services.Location, s.renderer, s.bus).RegisterRoutes(s.humaAPI)

	s.mux.Handle("/metrics", metrics.Handler())

	if s.config.DataDir != "" {
		s.mux.Handle("/tiles/", http.StripPrefix("/tiles/", s.handleTiles(s.TilesDir())))
	}

	if s.config.WebDir != "" {
		staticDir := filepath.Join(s.config.WebDir, "static")
		s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
		s.mux.HandleFunc("/viewer", s.handleViewer)
	}

	s.mux.HandleFunc("/", s.handleRoot)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-dtw",
		"status":  "running",
		"title":   s.services.Study.Area().Title,
	})
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	templatePath := filepath.Join(s.config.WebDir, "templates", "viewer.html")
	http.ServeFile(w, r, templatePath)
}

func (s *Server) handleTiles(tilesDir string) http.Handler {
	files := http.FileServer(http.Dir(tilesDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		files.ServeHTTP(w, r)
	})
}
