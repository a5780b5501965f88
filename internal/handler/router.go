package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"devicemap/internal/asset"
	"devicemap/internal/observability"
)

// RouterOptions configures NewRouter. Only Handler is required.
type RouterOptions struct {
	Handler  *Handler
	Assets   *asset.Store
	Events   http.Handler
	Metrics  *observability.Collector
	Logger   *zap.Logger
	Username string
	// PasswordHash enables basic auth on write methods when set
	PasswordHash string
	CORSOrigins  []string
}

// NewRouter wires every route and middleware
func NewRouter(opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := opts.Handler

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover(logger))
	r.Use(Logger(logger.Named("access")))
	r.Use(opts.Metrics.Middleware)
	if len(opts.CORSOrigins) > 0 {
		r.Use(CORS(opts.CORSOrigins))
	}

	r.NotFound(h.apiNotFound)
	r.MethodNotAllowed(h.methodNotAllowed)

	r.Get("/healthz", h.Health)
	r.Get("/data", h.GetData)

	r.Route("/api", func(r chi.Router) {
		r.Use(BasicAuth(opts.Username, opts.PasswordHash, logger))

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", h.ListDevices)
			r.Post("/", h.CreateDevice)
			r.Get("/{id}", h.GetDevice)
			r.Delete("/{id}", h.DeleteDevice)
			r.Get("/{id}/connections", h.DeviceConnections)
		})

		r.Route("/connection-types", func(r chi.Router) {
			r.Get("/", h.ListConnectionTypes)
			r.Post("/", h.CreateConnectionType)
		})

		r.Route("/connections", func(r chi.Router) {
			r.Get("/", h.ListConnections)
			r.Post("/", h.CreateConnection)
			r.Get("/{id}", h.GetConnection)
		})

		r.Get("/export/{format}", h.Export)
		r.Post("/import/yaml", h.ImportYAML)
	})

	if opts.Assets != nil {
		prefix := "/" + strings.Trim(opts.Assets.URLPrefix(), "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", assetServer(opts.Assets)))
	}
	if opts.Events != nil {
		r.Handle("/events", opts.Events)
	}
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	return r
}

// assetServer serves stored images by reference. Directory listings and
// unsanitized names are refused.
func assetServer(store *asset.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		f, err := store.Open(r.URL.Path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	})
}
