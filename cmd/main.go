package main

import (
	"context"
	"log"
	"time"

	"medrec-verification/internal/app"
	"medrec-verification/internal/config"
	"medrec-verification/internal/hashing"
	"medrec-verification/internal/ports/http"
	"medrec-verification/internal/registry"
	"medrec-verification/internal/repository/mongodb"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	logger, err := getLogger()
	if err != nil {
		log.Fatalln("setting up the logger failed: ", err)
		return
	}
	defer logger.Sync()

	logger.Info("application started")

	hashing.Initialize(logger)

	db, err := mongodb.NewConnection(logger, config.GetDbConnectionURI(), config.GetDatabaseName())
	if err != nil {
		logger.Fatal("failed to connect to the database: " + err.Error())
		return
	}
	defer db.Disconnect()

	directory := registry.NewDirectoryClient(config.GetDirectoryAddr(), nil)
	cache := registry.NewCache(logger, directory)
	if err := refreshRegistry(cache); err != nil {
		logger.Error("initial registry refresh failed, lookups start empty: " + err.Error())
	}
	stopRefresh := startRegistryRefresh(logger, cache)
	defer stopRefresh()

	application := app.NewApp(logger, cache, db)
	ser := http.NewServer(logger, &application, config.GetPort())
	if err := ser.Run(); err != nil {
		logger.Error("failed to run the server: " + err.Error())
	}

	logger.Info("application finished")
}

func refreshRegistry(cache *registry.Cache) error {
	ctx, cancel := context.WithTimeout(context.Background(), config.GetRequestTimeout())
	defer cancel()

	return cache.Refresh(ctx)
}

func startRegistryRefresh(logger *zap.Logger, cache *registry.Cache) (stop func()) {
	ticker := time.NewTicker(config.GetRegistryRefreshInterval())
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := refreshRegistry(cache); err != nil {
					logger.Error("registry refresh failed, keeping the previous snapshot: " + err.Error())
				}
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}

func getLogger() (*zap.Logger, error) {
	options := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zap.FatalLevel),
	}

	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	config.Development = true
	config.Level.SetLevel(zap.DebugLevel)

	logger, err := config.Build()
	return logger.WithOptions(options...), err
}
