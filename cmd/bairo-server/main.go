package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/bairolabs/bairo/bot/contract"
	flowx "github.com/bairolabs/bairo/bot/flow"
	gatewayx "github.com/bairolabs/bairo/bot/gateway"
	storex "github.com/bairolabs/bairo/bot/store"
	configx "github.com/bairolabs/bairo/pkg/config"
	logx "github.com/bairolabs/bairo/pkg/logger"
	serverx "github.com/bairolabs/bairo/server"
)

type AppConfig struct {
	Addr           string `envconfig:"ADDR" split_words:"true" default:":8080"`
	StoreBackend   string `envconfig:"STORE_BACKEND" split_words:"true" default:"sqlite"`
	DBPath         string `envconfig:"DB_PATH" split_words:"true" default:"data/enquiry_data.db"`
	JSONStorePath  string `envconfig:"JSON_STORE_PATH" split_words:"true" default:"data/inquiry_database.json"`
	GatewayEnabled bool   `envconfig:"GATEWAY_ENABLED" split_words:"true" default:"false"`
}

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	appCfg := configx.MustNew[AppConfig]("")

	store, closer, err := buildStore(appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize store")
	}
	if closer != nil {
		defer closer()
	}

	opts := []flowx.Option{}
	if appCfg.GatewayEnabled {
		gwCfg := configx.MustNew[gatewayx.Config]("GATEWAY")
		responder, err := gatewayx.NewClient(*gwCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize gateway")
		}
		opts = append(opts, flowx.WithResponder(responder))
		log.Info().Str("model", gwCfg.Model).Msg("fallback responder enabled")
	}

	flow, err := flowx.New(store, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize flow")
	}

	srv := &http.Server{
		Addr:              appCfg.Addr,
		Handler:           serverx.NewHandler(flow, store).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", appCfg.Addr).Str("store", appCfg.StoreBackend).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
		os.Exit(1)
	}
	log.Info().Msg("server stopped cleanly")
}

func buildStore(cfg *AppConfig) (contractx.InquiryStore, func(), error) {
	switch cfg.StoreBackend {
	case "json":
		s, err := storex.NewJSONFile(cfg.JSONStorePath)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		s, err := storex.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Error().Err(err).Msg("close store")
			}
		}, nil
	}
}
