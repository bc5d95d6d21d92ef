package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/GoArmGo/CatalogApp/internal/di"
)

func main() {
	mode := flag.String("mode", "server", "Режим запуска приложения: server или worker")
	flag.Parse()

	// bootstrap-логгер нужен только до того, как контейнер соберёт основной
	bootstrapLogger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	bootstrapLogger.Info("bootstrapping application", "mode", *mode)

	application, err := di.BuildApp()
	if err != nil {
		bootstrapLogger.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background(), *mode); err != nil {
		application.Logger.Error("application run failed", "error", err)
		os.Exit(1)
	}

	application.Logger.Info("application stopped gracefully")
}
