package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/binpack3d/packview/pkg/buildinfo"
	"github.com/binpack3d/packview/pkg/cache"
	"github.com/binpack3d/packview/pkg/document"
	"github.com/binpack3d/packview/pkg/engine"
	pkgerrors "github.com/binpack3d/packview/pkg/errors"
	"github.com/binpack3d/packview/pkg/observability"
	"github.com/binpack3d/packview/pkg/render/sink"
	"github.com/binpack3d/packview/pkg/scene"
	"github.com/binpack3d/packview/pkg/scene/camera"
)

// serveCommand creates the serve command, which exposes the viewer over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		doc  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the viewer over HTTP",
		Long: `Serve the viewer over HTTP.

The server keeps one live scene. POST a packing document to /api/v1/documents
to replace it; GET /api/v1/scene or /api/v1/scene.svg to read the current
rendering. The scene updates at frame boundaries, so a document posted while
a render is in flight takes effect on the next frame.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Serve.Addr
			}
			return c.runServe(cmd.Context(), addr, doc)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&doc, "document", "", "document to load at startup")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, docPath string) error {
	surface := engine.NewOffscreen()
	eng, err := engine.New(surface,
		engine.WithLogger(c.Logger),
		engine.WithSceneOptions(
			scene.WithCellSize(c.Config.Scene.CellSize),
			scene.WithItemsPerRow(c.Config.Scene.ItemsPerRow),
		),
	)
	if err != nil {
		return err
	}
	defer eng.Close()

	if docPath != "" {
		doc, err := document.ReadFile(docPath)
		if err != nil {
			return err
		}
		eng.Submit(doc)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := eng.Run(runCtx); err != nil {
			c.Logger.Error("engine stopped", "error", err)
		}
	}()

	backend := c.newCache(ctx, false)
	defer backend.Close()
	// Scope keys so serve can share a redis backend with the CLI commands.
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "serve")

	srv := &http.Server{
		Addr: addr,
		Handler: newServer(eng, c.Logger,
			withServerCache(backend, keyer, cache.SceneKeyOpts{
				CellSize:    c.Config.Scene.CellSize,
				ItemsPerRow: c.Config.Scene.ItemsPerRow,
			}),
		).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// server holds the HTTP handler state.
type server struct {
	eng       *engine.Engine
	logger    *log.Logger
	cache     cache.Cache
	keyer     cache.Keyer
	sceneOpts cache.SceneKeyOpts
}

type serverOption func(*server)

// withServerCache enables export caching for the scene endpoints. Exports
// are keyed by the document fingerprint, so a cached entry is never served
// after a new document replaces the scene.
func withServerCache(backend cache.Cache, keyer cache.Keyer, sceneOpts cache.SceneKeyOpts) serverOption {
	return func(s *server) {
		s.cache = backend
		s.keyer = keyer
		s.sceneOpts = sceneOpts
	}
}

func newServer(eng *engine.Engine, logger *log.Logger, opts ...serverOption) *server {
	s := &server{
		eng:    eng,
		logger: logger,
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", s.handleSubmit)
		r.Get("/scene", s.handleSceneJSON)
		r.Get("/scene.svg", s.handleSceneSVG)
		r.Get("/scene.txt", s.handleSceneText)
		r.Get("/scene/graph.svg", s.handleSceneGraphSVG)
		r.Get("/stats", s.handleStats)
		r.Get("/view", s.handleGetView)
		r.Put("/view", s.handleSetView)
		r.Post("/view/reset", s.handleResetView)
		r.Post("/holding-area/toggle", s.handleToggleArea)
	})
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleSubmit replaces the live document. The scene itself rebuilds at the
// next frame boundary; the response reports the accepted fingerprint.
func (s *server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	doc, err := document.Read(http.MaxBytesReader(w, r.Body, 16<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.eng.Submit(doc)
	s.eng.Step()
	s.logger.Info("document accepted",
		"fingerprint", doc.Fingerprint()[:12],
		"packed", len(doc.Items), "unpacked", len(doc.Unpacked))

	writeJSON(w, http.StatusAccepted, map[string]any{
		"fingerprint": doc.Fingerprint(),
		"stats":       document.ComputeStats(doc),
	})
}

func (s *server) handleSceneJSON(w http.ResponseWriter, r *http.Request) {
	gen := s.generation(w)
	if gen == nil {
		return
	}
	key := s.keyer.SceneKey(gen.Fingerprint, s.sceneOpts)
	data, err := s.cachedExport(r.Context(), "scene", key, cache.TTLScene, func() ([]byte, error) {
		return sink.RenderJSON(gen, sink.WithJSONDecorations())
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *server) handleSceneSVG(w http.ResponseWriter, r *http.Request) {
	gen := s.generation(w)
	if gen == nil {
		return
	}
	key := s.keyer.ArtifactKey(gen.Fingerprint, cache.ArtifactKeyOpts{Format: "svg"})
	data, err := s.cachedExport(r.Context(), "artifact", key, cache.TTLArtifact, func() ([]byte, error) {
		return sink.RenderSVG(gen), nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(data)
}

// handleSceneGraphSVG renders the scene-graph diagram. Rendering runs DOT
// through graphviz, so the result is always cached by document fingerprint.
func (s *server) handleSceneGraphSVG(w http.ResponseWriter, r *http.Request) {
	gen := s.generation(w)
	if gen == nil {
		return
	}
	key := s.keyer.ArtifactKey(gen.Fingerprint, cache.ArtifactKeyOpts{Format: "graph.svg"})
	data, err := s.cachedExport(r.Context(), "artifact", key, cache.TTLArtifact, func() ([]byte, error) {
		return sink.RenderDOTSVG(sink.ToDOT(gen, sink.DOTOptions{}))
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(data)
}

// cachedExport serves an export from the cache, building and storing it on a
// miss. Cache failures are logged and degrade to a plain rebuild.
func (s *server) cachedExport(ctx context.Context, class, key string, ttl time.Duration, build func() ([]byte, error)) ([]byte, error) {
	if data, ok, _ := s.cache.Get(ctx, key); ok {
		observability.Cache().OnCacheHit(ctx, class)
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, class)

	data, err := build()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn("failed to cache export", "class", class, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, class, len(data))
	}
	return data, nil
}

func (s *server) handleSceneText(w http.ResponseWriter, r *http.Request) {
	gen := s.generation(w)
	if gen == nil {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(sink.RenderText(gen))
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Stats())
}

func (s *server) handleGetView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"mode": s.eng.ViewMode().String()})
}

func (s *server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	mode, err := camera.ParseViewMode(body.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.eng.SetViewMode(mode)
	s.eng.Step()
	writeJSON(w, http.StatusOK, map[string]string{"mode": mode.String()})
}

func (s *server) handleResetView(w http.ResponseWriter, r *http.Request) {
	s.eng.ResetView()
	s.eng.Step()
	writeJSON(w, http.StatusOK, map[string]string{"mode": s.eng.ViewMode().String()})
}

func (s *server) handleToggleArea(w http.ResponseWriter, r *http.Request) {
	visible := s.eng.ToggleHoldingArea()
	s.eng.Step()
	writeJSON(w, http.StatusOK, map[string]bool{"visible": visible})
}

// generation returns the current scene generation, writing 404 when no
// document has been submitted yet.
func (s *server) generation(w http.ResponseWriter) *scene.Generation {
	gen := s.eng.Snapshot().Generation
	if gen == nil {
		writeError(w, http.StatusNotFound, pkgerrors.New(pkgerrors.ErrCodeDocumentNotFound, "no document loaded"))
		return nil
	}
	return gen
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"error": pkgerrors.UserMessage(err),
		"code":  string(pkgerrors.GetCode(err)),
	})
}
