package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sdfactory/internal/assemble"
	"sdfactory/internal/credential"
	"sdfactory/internal/dispatch"
	jwttoken "sdfactory/internal/jwt_token"
	"sdfactory/internal/pipeline"
	pipelinemetrics "sdfactory/internal/pipeline/metrics"
	"sdfactory/internal/platform/config"
	"sdfactory/internal/platform/httpserver"
	"sdfactory/internal/platform/logger"
	httpmetrics "sdfactory/internal/platform/metrics"
	"sdfactory/internal/proof"
	"sdfactory/internal/terms"
	httptransport "sdfactory/internal/transport/http"
	"sdfactory/internal/wallet"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in internal packages.
func main() {
	configPath := os.Getenv("SDFACTORY_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fallback := logger.New("text")
		fallback.Error("configuration rejected", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogFormat)

	svc, err := buildPipeline(cfg, log)
	if err != nil {
		log.Error("building pipeline failed", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.Server.JWT.SigningKey, cfg.Server.JWT.Issuer, cfg.Server.JWT.Audience)
	handler := httptransport.New(svc, jwttoken.NewJWTServiceAdapter(jwtService), cfg.Server.EnforceAuth, log, httpmetrics.New())
	router := httptransport.NewRouter(handler)

	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting sd-factory",
		"addr", cfg.Server.Addr,
		"profile", cfg.Profile,
		"dispatch_target", cfg.Dispatch.Target)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildPipeline assembles the full document-to-credential pipeline from a
// validated configuration: converter, optional signer, and the single
// dispatch sink.
func buildPipeline(cfg config.Config, log *slog.Logger) (*pipeline.Service, error) {
	profile := cfg.ConversionProfile()

	builder := credential.NewBuilder(cfg.Issuance.BaseURI, cfg.Issuance.DurationDays,
		credential.WithIssuer(cfg.Issuance.Issuer))

	walletClient := wallet.NewClient(cfg.Wallet.URL, wallet.Credentials{
		TokenURL:     cfg.Wallet.TokenURL,
		ClientID:     cfg.Wallet.ClientID,
		ClientSecret: cfg.Wallet.ClientSecret,
	}, cfg.Wallet.Timeout())

	converter, err := assemble.New(profile, assemble.Deps{
		Wallet:   walletClient,
		Terms:    terms.New(cfg.Terms.Timeout(), cfg.Terms.MaxRedirects),
		Builder:  builder,
		Contexts: cfg.AssembleContexts(),
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	dispatchCfg, err := cfg.DispatchConfig()
	if err != nil {
		return nil, err
	}
	sink, err := dispatch.New(dispatchCfg)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(log),
		pipeline.WithMetrics(pipelinemetrics.New()),
	}
	var signer proof.Signer
	if profile.Signs() {
		signer, err = loadSigner(cfg.Signing)
		if err != nil {
			return nil, err
		}
		if cfg.Signing.SelfVerify {
			verify, err := loadVerifier(cfg.Signing)
			if err != nil {
				return nil, err
			}
			opts = append(opts, pipeline.WithSelfVerification(verify))
		}
	}

	return pipeline.New(converter, signer, sink, opts...)
}
