package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/joho/godotenv"

	"github.com/KyleRui0202/acme-wines/internal/config"
	"github.com/KyleRui0202/acme-wines/internal/database"
	"github.com/KyleRui0202/acme-wines/internal/kafka"
	orderspostgres "github.com/KyleRui0202/acme-wines/internal/orders/adapters/postgres"
	"github.com/KyleRui0202/acme-wines/internal/orders/app/commands"
	"github.com/KyleRui0202/acme-wines/internal/orders/domain"
	"github.com/KyleRui0202/acme-wines/internal/orders/ports"
)

func main() {
	count := flag.Int("orders", 20, "number of fake orders to insert")
	seed := flag.Int64("seed", 0, "random seed, 0 picks one")
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	gofakeit.Seed(*seed)

	rules := domain.DefaultRules()
	handler := commands.NewCreateOrderCommandHandler(
		orderspostgres.NewRepository(pool),
		kafka.NewNoopEventBus(),
		rules,
	)

	inserted, valid, skipped := 0, 0, 0
	for i := 0; i < *count; i++ {
		cmd := fakeOrder(rules)

		rec, err := handler.Handle(ctx, cmd)
		if err != nil {
			if errors.Is(err, ports.ErrDuplicateID) {
				skipped++
				continue
			}
			logger.Error("failed to insert order", "id", cmd.ID, "error", err)
			os.Exit(1)
		}

		inserted++
		if rec.Valid != nil && *rec.Valid {
			valid++
		}
	}

	logger.Info("seeding complete",
		"inserted", inserted,
		"valid", valid,
		"invalid", inserted-valid,
		"skipped_duplicates", skipped,
	)
}

// fakeOrder produces a plausible intake payload. Validation is left to the
// command handler, so no-ship states and heavy zipcodes show up as invalid
// orders the same way they would from real traffic.
func fakeOrder(rules domain.Rules) commands.CreateOrderCommand {
	name := gofakeit.Name()
	email := gofakeit.Email()
	state := gofakeit.StateAbr()

	zipcode := gofakeit.Zip()
	if gofakeit.Bool() {
		zipcode = gofakeit.Numerify("#####-####")
	}

	now := time.Now()
	birthday := gofakeit.DateRange(now.AddDate(-80, 0, 0), now.AddDate(-16, 0, 0)).
		Format(rules.BirthdayLayout)

	return commands.CreateOrderCommand{
		ID:       int64(gofakeit.Number(1, 2147483647)),
		Name:     &name,
		Email:    &email,
		State:    &state,
		Zipcode:  &zipcode,
		Birthday: &birthday,
	}
}
