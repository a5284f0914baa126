package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/leih-lokal/kiosk-service/config"
	"github.com/leih-lokal/kiosk-service/internal/handler"
	"github.com/leih-lokal/kiosk-service/internal/server"
	"github.com/leih-lokal/kiosk-service/internal/service/catalog"
	"github.com/leih-lokal/kiosk-service/internal/service/customer"
	"github.com/leih-lokal/kiosk-service/internal/service/reservation"
	"github.com/leih-lokal/kiosk-service/internal/session"
	"github.com/leih-lokal/kiosk-service/internal/store"
	"github.com/leih-lokal/kiosk-service/pkg/logger"
)

func Run(cfg config.Config) {
	log := logger.NewLogger(cfg.Log, "kiosk")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := store.New(log, cfg.Store)
	// no retry here: an unauthenticated kiosk must not serve patrons
	if err := st.Authenticate(ctx); err != nil {
		log.Fatal("store authenticate", zap.Error(err))
	}
	st.StartRefreshLoop(ctx)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis ping", zap.Error(err))
	}
	sessions := session.NewStore(rdb, cfg.Redis.SessionTTL, cfg.Kiosk.MaxItems)

	catalogSvc := catalog.NewService(st, log)
	customerSvc := customer.NewService(st, log)
	reservationSvc := reservation.NewService(st, catalogSvc, cfg.Kiosk, log)

	h := handler.New(catalogSvc, customerSvc, reservationSvc, sessions, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err := srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		log.Error("redis close", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}
