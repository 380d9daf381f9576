package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/diagnostics"
	"storefront/logging"
	"storefront/router"
	"storefront/services"
	"storefront/tracing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const serviceName = "storefront"

// Upstream settings (read on every request, never from the config file):
//
//	WC_URL / WOOCOMMERCE_URL        store site root
//	WC_KEY / WOOCOMMERCE_KEY        REST API consumer key
//	WC_SECRET / WOOCOMMERCE_SECRET  REST API consumer secret

var configPath string

var rootCmd = &cobra.Command{
	Use:           serviceName,
	Short:         "Storefront API in front of a WooCommerce/WordPress site",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the config file and report which upstream settings are present",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Get(configPath)
		if err != nil {
			return err
		}
		if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
			return fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
		}
		env := config.EnvSource{}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "api_port=%s diagnostics_port=%d tracing=%q\n", cfg.ApiPort, cfg.DiagnosticsPort, cfg.TracingExporter)
		base, urlErr := config.StoreBaseURL(env)
		_, credErr := config.APICredentials(env)
		fmt.Fprintf(out, "store_url=%q credentials_ok=%t\n", base, credErr == nil)
		return errors.Join(urlErr, credErr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("STOREFRONT_CONFIG"), "path to a JSON or YAML config file")
	rootCmd.AddCommand(serveCmd, checkConfigCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Get(configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	tracer, err := tracing.FromConfig(serviceName, cfg.TracingExporter, os.Stdout)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() { _ = tracer.Shutdown() }()

	env := config.EnvSource{}
	if _, err := config.StoreBaseURL(env); err != nil {
		log.Warn("store is not configured, upstream calls will fail", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	router.Initialize(engine, cfg, services.New(env, cfg, log), tracer)

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		return ignoreClosed(srv.ListenAndServe())
	})

	var diag *diagnostics.Server
	if cfg.DiagnosticsPort > 0 {
		diag = diagnostics.NewServer(cfg.DiagnosticsPort)
		g.Go(func() error {
			log.Info("diagnostics listening", zap.Int("port", cfg.DiagnosticsPort))
			return ignoreClosed(diag.Start())
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if diag != nil {
			_ = diag.Shutdown(shutdownCtx)
		}
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
