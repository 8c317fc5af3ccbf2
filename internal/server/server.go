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

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tiffy-rewards-go/internal/metrics"
	"tiffy-rewards-go/internal/models"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RewardAPI is the set of operations exposed over HTTP
type RewardAPI interface {
	SubmitAction(ctx context.Context, req models.ActionRequest) (*models.ActionResult, error)
	ReportShareState(ctx context.Context, req models.ShareStateRequest) (*models.ActionResult, error)
	GetWallet(ctx context.Context, address string) (*models.WalletBalance, error)
	GetWalletHistory(ctx context.Context, address string, limit, offset int) ([]models.JournalEntry, error)
	ResetUser(ctx context.Context, req models.AdminResetRequest) (*models.ActionResult, error)
	FundWallet(ctx context.Context, req models.AdminFundRequest) (*models.ActionResult, error)
	HealthCheck(ctx context.Context) error
}

// Server is the HTTP front of the reward service
type Server struct {
	service         RewardAPI
	router          *mux.Router
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

func New(service RewardAPI, cfg models.ServerConfig) *Server {
	s := &Server{
		service:         service,
		router:          mux.NewRouter(),
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 30 * time.Second
	}

	s.routes(cfg)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(cfg models.ServerConfig) {
	s.router.Use(
		requestLogging,
		requestMetrics,
		cors(cfg.CorsOrigin),
		newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Handler,
	)

	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	s.router.HandleFunc("/wallets", s.handleGetWallet).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/wallets/history", s.handleWalletHistory).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/trades", s.handleSubmitAction).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/share-state", s.handleShareState).Methods(http.MethodPost, http.MethodOptions)

	admin := s.router.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/reset", s.handleAdminReset).Methods(http.MethodPost, http.MethodOptions)
	admin.HandleFunc("/fund", s.handleAdminFund).Methods(http.MethodPost, http.MethodOptions)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		zap.L().Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("Shutting down HTTP server", zap.Duration("timeout", s.shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	zap.L().Info("HTTP server stopped")
	return nil
}
