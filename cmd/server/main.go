/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tiffy-rewards-go/internal/common"
	"tiffy-rewards-go/internal/config"
	"tiffy-rewards-go/internal/server"

	"go.uber.org/zap"
)

func main() {
	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	logger.Info("Starting reward ledger service")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	// The flusher outlives the signal so the final snapshot includes requests
	// drained during shutdown; Close stops it.
	services.Persister.Start(context.WithoutCancel(ctx))

	srv := server.New(services.Rewards, cfg.Server)

	logger.Info("Reward ledger service started",
		zap.Int("port", cfg.Server.Port),
		zap.String("data_file", cfg.Ledger.DataFile),
		zap.Duration("flush_interval", cfg.Ledger.FlushInterval),
		zap.Bool("journal_enabled", services.DbService != nil))

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	logger.Info("Reward ledger service shutting down")
}
