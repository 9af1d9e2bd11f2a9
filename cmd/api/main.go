package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/iFredsz/nikhu-booking/internal/cache"
	"github.com/iFredsz/nikhu-booking/internal/gateway"
	"github.com/iFredsz/nikhu-booking/internal/handlers"
	"github.com/iFredsz/nikhu-booking/internal/middlewares"
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
		log.Println("[api] no .env file, using system environment")
	}
	cfg := must(config.Load())

	shutdownTracer := obs.InitTracer("nikhu-api")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	// DB
	gdb := db.Open(cfg.PGDSN)
	orderRepo := repository.NewOrderRepo(gdb)
	catalogRepo := repository.NewCatalogRepo(gdb)
	voucherRepo := repository.NewVoucherRepo(gdb)
	userRepo := repository.NewUserRepo(gdb)
	must(0, orderRepo.Migrate())
	must(0, catalogRepo.Migrate())
	must(0, voucherRepo.Migrate())
	must(0, userRepo.Migrate())

	// Cache + events
	calCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisDB, time.Duration(cfg.CalendarTTLSec)*time.Second)
	defer calCache.Close()
	pub := must(mq.NewPublisher(cfg.RabbitURL, cfg.OrdersExchange))
	defer pub.Close()

	// Services
	avail := service.NewAvailability(orderRepo)
	snap := gateway.NewSnapClient(cfg.SnapBaseURL, cfg.SnapServerKey)
	bookingSvc := service.NewBookingSvc(orderRepo, catalogRepo, voucherRepo, avail, snap, pub,
		time.Duration(cfg.PendingTTLMin)*time.Minute)
	sweeper := service.NewSweeper(orderRepo, pub)
	authSvc := service.NewAuthSvc(userRepo, time.Duration(cfg.JWTExpireMin)*time.Minute)

	// Background sweep in addition to the /internal/sweep trigger.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx, time.Duration(cfg.SweepIntervalMin)*time.Minute)

	r := gin.Default()

	ah := handlers.NewAuthHandler(authSvc)
	vh := handlers.NewAvailabilityHandler(avail, calCache)
	bh := handlers.NewBookingHandler(bookingSvc)
	ch := handlers.NewCatalogHandler(catalogRepo, voucherRepo)
	wh := handlers.NewWebhookHandler(bookingSvc, cfg.SnapServerKey)
	oh := handlers.NewOpsHandler(sweeper)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/register", ah.Register)
		v1.POST("/auth/login", ah.Login)

		v1.GET("/slots", vh.Slots)
		v1.POST("/availability/check", vh.Check)
		v1.GET("/availability/calendar", vh.Calendar)

		v1.GET("/products", ch.ListProducts)
		v1.GET("/addons", ch.ListAddOns)
		v1.GET("/portfolio", ch.ListPortfolio)
		v1.GET("/testimonials", ch.ListTestimonials)
		v1.POST("/testimonials", ch.CreateTestimonial)
		v1.POST("/vouchers/check", ch.CheckVoucher)

		v1.POST("/payments/webhook", wh.Handle)

		secured := v1.Group("")
		secured.Use(middlewares.JWTAuth())
		{
			secured.POST("/orders", bh.Create)
			secured.GET("/orders", bh.List)
			secured.GET("/orders/:id", bh.Get)
			secured.GET("/orders/:id/recheck", bh.Recheck)
		}

		admin := v1.Group("")
		admin.Use(middlewares.JWTAuth(), middlewares.RequireRole("ADMIN"))
		{
			admin.POST("/products", ch.CreateProduct)
			admin.PUT("/products/:id", ch.UpdateProduct)
			admin.DELETE("/products/:id", ch.DeleteProduct)
			admin.POST("/addons", ch.CreateAddOn)
			admin.DELETE("/addons/:id", ch.DeleteAddOn)
			admin.POST("/vouchers", ch.CreateVoucher)
			admin.DELETE("/vouchers/:code", ch.DeleteVoucher)
			admin.POST("/portfolio", ch.CreatePortfolioItem)
			admin.DELETE("/portfolio/:id", ch.DeletePortfolioItem)
			admin.PUT("/testimonials/:id", ch.UpdateTestimonial)
			admin.DELETE("/testimonials/:id", ch.DeleteTestimonial)
		}
	}

	r.POST("/internal/sweep", oh.Sweep)

	log.Println("[api] listening on", cfg.HTTPAddr)
	log.Fatal(r.Run(cfg.HTTPAddr))
}
