package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"memberportal/web-service/internal/assets"
	"memberportal/web-service/internal/config"
	"memberportal/web-service/internal/httpapi"
	"memberportal/web-service/internal/session"
	"memberportal/web-service/internal/telemetry"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.Load())
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg)
	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: serviceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		logger.Warn(ctx, "tracing disabled", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	st, err := openStores(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer st.close()

	authService, err := newAuthService(cfg, st.users, logger)
	if err != nil {
		return err
	}
	codec, err := session.NewCodec(cfg.SessionStoreSecret)
	if err != nil {
		return err
	}
	if !codec.Encrypted() {
		logger.Warn(ctx, "SESSION_STORE_SECRET not set, sessions stored unencrypted")
	}
	if cfg.SessionSecret == "" {
		logger.Warn(ctx, "SESSION_SECRET not set, cookies will not survive a restart")
	}
	signer, err := session.NewCookieSigner(cfg.SessionSecret)
	if err != nil {
		return err
	}
	sessions := session.NewManager(st.sessions, codec, signer, session.Options{
		TTL:          cfg.SessionTTL,
		CookieName:   cfg.SessionCookieName,
		CookieSecure: cfg.SessionCookieSecure,
	}, logger)

	catalog, err := newCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	var metrics *httpapi.Metrics
	if cfg.MetricsEnabled {
		metrics = httpapi.NewMetrics()
	}
	handler, err := httpapi.NewHandler(authService, sessions, assets.NewPicker(catalog), logger, metrics)
	if err != nil {
		return err
	}

	go sessions.PurgeLoop(ctx, cfg.SessionPurgeInterval)

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(logger, metrics, handler.Routes()), serviceName)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info(context.Background(), "server stopped")
	return nil
}
