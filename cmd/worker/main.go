package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iFredsz/nikhu-booking/internal/cache"
	"github.com/iFredsz/nikhu-booking/internal/consumer"
	"github.com/iFredsz/nikhu-booking/internal/repository"
	"github.com/iFredsz/nikhu-booking/internal/service"
	"github.com/iFredsz/nikhu-booking/pkg/config"
	"github.com/iFredsz/nikhu-booking/pkg/db"
	"github.com/iFredsz/nikhu-booking/pkg/mq"
	"github.com/iFredsz/nikhu-booking/pkg/obs"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[worker] no .env file, using system environment")
	}
	cfg := must(config.Load())

	shutdownTracer := obs.InitTracer("nikhu-worker")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	gdb := db.Open(cfg.PGDSN)
	orderRepo := repository.NewOrderRepo(gdb)

	calCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisDB, time.Duration(cfg.CalendarTTLSec)*time.Second)
	defer calCache.Close()

	pub := must(mq.NewPublisher(cfg.RabbitURL, cfg.OrdersExchange))
	defer pub.Close()
	cons := must(mq.NewConsumer(cfg.RabbitURL, cfg.OrdersExchange, cfg.RecheckQueue,
		[]string{service.EventOrderPaid, service.EventOrderExpired, service.EventOrderFailed}))
	defer cons.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rc := consumer.NewRecheckConsumer(orderRepo, cons, pub, calCache)
	must(0, rc.Run(ctx))
	log.Println("[worker] recheck consumer started")

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	cancel()
	log.Println("[worker] stopped")
}
