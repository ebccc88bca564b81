package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"admindash/internal/app"
	"admindash/internal/auth"
	"admindash/internal/config"
	apperr "admindash/internal/errors"
	"admindash/internal/logging"
	"admindash/internal/model"
	"admindash/internal/repository"
	"admindash/internal/service"
	"admindash/internal/validation"
)

var demoProducts = []service.ProductInput{
	{Name: "Standing Desk", Description: "Electric height-adjustable desk", Price: decimal.RequireFromString("499.00"), Category: "furniture", Stock: 12},
	{Name: "Ergonomic Chair", Description: "Mesh back, lumbar support", Price: decimal.RequireFromString("289.50"), Category: "furniture", Stock: 30},
	{Name: "USB-C Dock", Description: "Dual display, 100W passthrough", Price: decimal.RequireFromString("149.90"), Category: "electronics", Stock: 45},
	{Name: "Mechanical Keyboard", Description: "Hot-swappable switches", Price: decimal.RequireFromString("119.00"), Category: "electronics", Stock: 60},
	{Name: "Desk Lamp", Description: "Dimmable LED", Price: decimal.RequireFromString("39.99"), Category: "home", Stock: 80},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logging.NewJSON(false).Error(ctx, "config", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSON(!cfg.IsProduction()).With("component", "seed")

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	stores, err := app.OpenStores(openCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error(ctx, "storage init failed", "error", err)
		os.Exit(1)
	}
	defer stores.Close(ctx)

	if err := run(ctx, cfg, logger, stores); err != nil {
		logger.Error(ctx, "seed failed", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "seed completed")
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger, stores *app.Stores) error {
	validate := validation.New()
	store := service.NewCredentialStore(stores.Users, auth.NewPasswordHasher(cfg.BcryptCost), validate)

	admin, err := seedAdmin(ctx, logger, store)
	if err != nil {
		return err
	}

	_, total, err := stores.Products.List(ctx, repository.ListOptions{Page: 1, Limit: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		logger.Info(ctx, "products already present, skipping", "count", total)
		return nil
	}

	products := service.NewProductService(stores.Products, nil, validate)
	for _, in := range demoProducts {
		p, err := products.CreateProduct(ctx, admin.ID, in)
		if err != nil {
			return err
		}
		logger.Info(ctx, "product created", "id", p.ID, "name", p.Name)
	}
	return nil
}

func seedAdmin(ctx context.Context, logger logging.Logger, store *service.CredentialStore) (*model.User, error) {
	email := getEnv("SEED_ADMIN_EMAIL", "admin@example.com")

	user, err := store.Create(ctx, service.NewUser{
		Name:     getEnv("SEED_ADMIN_NAME", "Admin"),
		Email:    email,
		Password: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
	})
	if errors.Is(err, apperr.ErrDuplicateEmail) {
		logger.Info(ctx, "admin already exists", "email", email)
		return store.FindByEmail(ctx, email, false)
	}
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "admin created", "id", user.ID, "email", user.Email)
	return user, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
