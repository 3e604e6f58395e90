// Package api exposes the codec over REST: type registration, ad hoc
// encode/decode, and a persistent message vault. Authentication is a
// shared API key in the X-API-Key header; Prometheus metrics are served
// unauthenticated on /metrics.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ssargent/protostruct/pkg/schema"
)

// NewRouter builds the full route table for a server.
func NewRouter(server *Server, metrics *Metrics, apiKey string) chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(metrics, apiKey))

		// Health check
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Type registry
		r.Post("/types", metrics.InstrumentHandler("POST", "/api/v1/types", server.handleRegisterType))
		r.Get("/types", metrics.InstrumentHandler("GET", "/api/v1/types", server.handleListTypes))
		r.Get("/types/{name}", metrics.InstrumentHandler("GET", "/api/v1/types/{name}", server.handleGetType))

		// Ad hoc encode/decode
		r.Post("/types/{name}/encode", metrics.InstrumentHandler("POST", "/api/v1/types/{name}/encode", server.handleEncode))
		r.Post("/types/{name}/decode", metrics.InstrumentHandler("POST", "/api/v1/types/{name}/decode", server.handleDecode))

		// Stored messages
		r.Post("/messages/{name}", metrics.InstrumentHandler("POST", "/api/v1/messages/{name}", server.handleCreateMessage))
		r.Get("/messages/{name}", metrics.InstrumentHandler("GET", "/api/v1/messages/{name}", server.handleListMessages))
		r.Get("/messages/{name}/{id}", metrics.InstrumentHandler("GET", "/api/v1/messages/{name}/{id}", server.handleGetMessage))
		r.Delete("/messages/{name}/{id}", metrics.InstrumentHandler("DELETE", "/api/v1/messages/{name}/{id}", server.handleDeleteMessage))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured. When the
// config names a schema file, its types are registered before serving.
func StartServer(registry *schema.DynamicRegistry, vault IVault, config ServerConfig) error {
	if config.SchemaFile != "" {
		loaded, err := schema.LoadFile(config.SchemaFile)
		if err != nil {
			return fmt.Errorf("failed to load schema file: %w", err)
		}
		for _, name := range loaded.Names() {
			desc, _ := loaded.Lookup(name)
			specs := make([]schema.FieldSpec, len(desc.Fields))
			for i, fd := range desc.Fields {
				specs[i] = fieldSpecFromDescriptor(fd)
			}
			if _, err := registry.Register(name, specs); err != nil {
				return fmt.Errorf("failed to preload type %s: %w", name, err)
			}
		}
	}

	// Initialize metrics
	metrics := NewMetrics()
	metrics.SetRegisteredTypes(len(registry.Names()))

	server := NewServer(registry, vault, config, metrics)
	r := NewRouter(server, metrics, config.APIKey)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting protostruct REST API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://%s/metrics\n", addr)
	return http.ListenAndServe(addr, r)
}

// fieldSpecFromDescriptor reverses a built descriptor back into the
// FieldSpec form Register accepts, for copying types between registries.
func fieldSpecFromDescriptor(fd *schema.FieldDescriptor) schema.FieldSpec {
	spec := schema.FieldSpec{
		Name:     fd.Name,
		Optional: fd.Optional,
	}
	target := fd
	if fd.Kind == schema.KindRepeated {
		spec.Repeated = true
		target = fd.Elem
	}
	switch target.Kind {
	case schema.KindMap:
		spec.Type = "map"
		spec.Key = scalarName(target.Key)
		spec.Value = elementName(target.Elem)
	case schema.KindMessage:
		spec.Type = target.Message.Name
	default:
		spec.Type = scalarName(target.Scalar)
	}
	return spec
}

func elementName(fd *schema.FieldDescriptor) string {
	if fd.Kind == schema.KindMessage {
		return fd.Message.Name
	}
	return scalarName(fd.Scalar)
}

func scalarName(s schema.ScalarType) string {
	return s.String()
}
