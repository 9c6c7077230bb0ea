// Package app wires the feed service together.
package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/abgdnv/meiasjamais/internal/config"
	"github.com/abgdnv/meiasjamais/internal/model"
	"github.com/abgdnv/meiasjamais/internal/store"
	grpcImpl "github.com/abgdnv/meiasjamais/internal/transport/grpc"
	"github.com/abgdnv/meiasjamais/internal/transport/rest"
	"github.com/abgdnv/meiasjamais/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"google.golang.org/grpc"
)

var (
	_ rest.Repository[model.Post]    = (*store.Collection[model.Post])(nil)
	_ rest.Repository[model.Product] = (*store.Collection[model.Product])(nil)
	_ rest.Repository[model.Contact] = (*store.Collection[model.Contact])(nil)
	_ rest.CollectionLister          = (*store.Catalog)(nil)
	_ grpcImpl.Pinger                = (*mongo.Client)(nil)
)

type Dependencies struct {
	Posts          *store.Collection[model.Post]
	Products       *store.Collection[model.Product]
	Contacts       *store.Collection[model.Contact]
	Catalog        *store.Catalog
	Health         *grpcImpl.HealthServer
	MetricsHandler http.Handler
	MetricsPath    string
	Logger         *slog.Logger
}

// SetupDependencies binds every document type to its collection in db.
// breaker may be nil to disable circuit breaking. metrics may be nil, in which case no metrics endpoint is served.
func SetupDependencies(client *mongo.Client, dbName string, queryTimeout time.Duration, breaker *gobreaker.CircuitBreaker[any], metrics http.Handler, metricsPath string, logger *slog.Logger) *Dependencies {
	db := client.Database(dbName)
	opts := []store.Option{store.WithTimeout(queryTimeout)}
	if breaker != nil {
		opts = append(opts, store.WithCircuitBreaker(breaker))
	}
	return &Dependencies{
		Posts:          store.NewCollection(db, model.PostDescriptor, opts...),
		Products:       store.NewCollection(db, model.ProductDescriptor, opts...),
		Contacts:       store.NewCollection(db, model.ContactDescriptor, opts...),
		Catalog:        store.NewCatalog(db, opts...),
		Health:         grpcImpl.NewHealthServer(client, queryTimeout, logger),
		MetricsHandler: metrics,
		MetricsPath:    metricsPath,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the routes and middleware of the feed service.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes mounts one resource per document type, plus the system endpoints.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	rest.NewHandler[model.Post]("post", deps.Posts, deps.Logger).RegisterRoutes(mux)
	rest.NewHandler[model.Product]("product", deps.Products, deps.Logger).RegisterRoutes(mux)
	rest.NewHandler[model.Contact]("contact", deps.Contacts, deps.Logger).RegisterRoutes(mux)
	rest.NewSystemHandler(deps.Catalog, deps.Logger).RegisterRoutes(mux)
	if deps.MetricsHandler != nil {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures the HTTP server of the feed service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux, config.ServiceName)
}

// SetupGrpcServer initializes the gRPC server, which serves the health service only.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, deps.Health.Register)
}
