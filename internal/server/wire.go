package server

import (
	"context"
	"fmt"

	"orgregistry/internal/auth"
	"orgregistry/internal/config"
	"orgregistry/internal/handler"
	"orgregistry/internal/metrics"
	"orgregistry/internal/repository"
	"orgregistry/internal/service"
	"orgregistry/pkg/util"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Services bundles everything the handlers depend on
type Services struct {
	Orgs   *service.OrgService
	Auth   *service.AuthService
	Audit  *service.AuditService
	Tokens *auth.Issuer
}

// Handlers bundles the HTTP handlers
type Handlers struct {
	Org    *handler.OrgHandler
	Auth   *handler.AuthHandler
	Health *handler.HealthHandler
}

// Connect opens and pings a Mongo client using the configured timeouts
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	timeout := cfg.Mongo.Timeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// InitRepositories builds the storage context for the configured store
// type. The returned client is nil for the memory store.
func InitRepositories(ctx context.Context, cfg *config.Config) (*repository.Store, *mongo.Client, error) {
	switch cfg.StoreType {
	case config.StoreMemory:
		return repository.NewMemoryStore(), nil, nil
	case config.StoreMongo, "":
		client, err := Connect(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewMongoStore(client, cfg.Mongo.Database)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("failed to ensure indexes: %w", err)
		}
		return store, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}
}

// InitServices wires the registry, login and audit services over store
func InitServices(cfg *config.Config, store *repository.Store, m *metrics.Metrics) (*Services, error) {
	tokens, err := auth.NewIssuer(cfg.Token.Secret, cfg.Token.Algorithm, cfg.Token.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	hasher := util.NewBcryptHasher(cfg.BcryptCost)
	orgs := service.NewOrgService(store, hasher)
	login := service.NewAuthService(store, hasher, tokens, cfg.Token.TTL())
	if m != nil {
		orgs.WithRecorder(m)
		login.WithRecorder(m)
	}

	return &Services{
		Orgs:   orgs,
		Auth:   login,
		Audit:  service.NewAuditService(store),
		Tokens: tokens,
	}, nil
}

func InitHandlers(s *Services, store *repository.Store) *Handlers {
	return &Handlers{
		Org:    handler.NewOrgHandler(s.Orgs),
		Auth:   handler.NewAuthHandler(s.Auth, s.Orgs),
		Health: handler.NewHealthHandler(store),
	}
}
