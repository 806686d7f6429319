package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	handler "github.com/zdziszkee/product-rates/internal/api/handlers"
	"github.com/zdziszkee/product-rates/internal/api/router"
	config "github.com/zdziszkee/product-rates/internal/configurations"
	"github.com/zdziszkee/product-rates/internal/database"
	"github.com/zdziszkee/product-rates/internal/logging"
	parser "github.com/zdziszkee/product-rates/internal/parsers"
	"github.com/zdziszkee/product-rates/internal/readers/csv"
	repository "github.com/zdziszkee/product-rates/internal/repositories"
	service "github.com/zdziszkee/product-rates/internal/services"
)

// importDepositRates reads a rate sheet and stores its rates through the service
func importDepositRates(ctx context.Context, filePath string, svc service.RateService, logger *zap.Logger) (int, error) {
	startTime := time.Now()

	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := &csv.CSVDepositRatesReader{}
	records, err := reader.ReadDepositRates(file)
	if err != nil {
		return 0, fmt.Errorf("failed to read rate sheet: %w", err)
	}

	rates, err := parser.NewDepositRatesParser(logger).ParseDepositRates(records)
	if err != nil {
		return 0, fmt.Errorf("failed to parse rate sheet: %w", err)
	}

	count, err := svc.ImportDepositRates(ctx, rates)
	if err != nil {
		logger.Warn("some deposit rates were not imported", zap.Error(err))
	}

	logger.Info("rate sheet imported",
		zap.String("file", filePath),
		zap.Int("rows", len(records)),
		zap.Int("rates", count),
		zap.Duration("took", time.Since(startTime)),
	)
	return count, nil
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	loadFile := flag.String("load", "", "Path to a deposit rates CSV file to import")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *loadFile != "" {
		cfg.Data.DepositRatesFile = *loadFile
		cfg.Data.AutoLoad = true
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("app", cfg.AppName))

	db, err := database.New(cfg.Database, logger.Named("database"))
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	rates := repository.NewSQLDepositRateRepository(db, logger.Named("deposit-rates"))
	tiers := repository.NewSQLRateTierRepository(db, logger.Named("rate-tiers"))
	rateService := service.NewRateService(rates, tiers, cfg.Rates.EnforceTierPartition, logger.Named("rate-service"))

	if cfg.Data.AutoLoad && cfg.Data.DepositRatesFile != "" {
		logger.Info("importing deposit rates", zap.String("file", cfg.Data.DepositRatesFile))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if _, err := importDepositRates(ctx, cfg.Data.DepositRatesFile, rateService, logger.Named("import")); err != nil {
			logger.Warn("failed to import deposit rates", zap.Error(err))
		}
		cancel()
	}

	rateHandler := handler.NewRateHandler(rateService, logger.Named("http"))
	app := router.SetupRoutes(rateHandler, logger.Named("http"))

	go func() {
		logger.Info("starting server", zap.String("address", cfg.Server.Address))
		if err := app.Listen(cfg.Server.Address); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
