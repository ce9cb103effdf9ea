package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/cafe-venue/cache"
	"github.com/yeremiapane/cafe-venue/config"
	"github.com/yeremiapane/cafe-venue/controllers"
	"github.com/yeremiapane/cafe-venue/database"
	"github.com/yeremiapane/cafe-venue/events"
	"github.com/yeremiapane/cafe-venue/hub"
	"github.com/yeremiapane/cafe-venue/models"
	"github.com/yeremiapane/cafe-venue/repository"
	"github.com/yeremiapane/cafe-venue/router"
	"github.com/yeremiapane/cafe-venue/services"
	"github.com/yeremiapane/cafe-venue/utils"
)

const (
	loopBuffer      = 1024
	shutdownTimeout = 5 * time.Second
	seatCacheTTL    = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	store := repository.NewGormStore(db)
	if err := database.SeedSeats(ctx, store, cfg.SeatRows, cfg.SeatColumns); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed seats: %v", err)
	}

	var seatCache cache.SeatCache = cache.NewMemory(services.SeatMapLoader(store))
	if rdb := config.NewRedisClient(cfg); rdb != nil {
		defer rdb.Close()
		seatCache = cache.NewRedis(rdb, cache.DefaultSeatKey, seatCacheTTL, services.SeatMapLoader(store))
		utils.InfoLogger.Printf("Seat cache backed by redis at %s", cfg.RedisAddr)
	} else if cfg.RedisAddr != "" {
		utils.ErrorLogger.Warnf("Redis at %s unreachable, using in-memory seat cache", cfg.RedisAddr)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			utils.ErrorLogger.Warnf("Event feed disabled: %v", err)
		} else {
			defer amqpPub.Close()
			publisher = amqpPub
			utils.InfoLogger.Printf("Publishing venue events to queue %s", cfg.AMQPQueue)
		}
	}

	registry := hub.NewRegistry()
	venue := services.NewVenue(services.Options{
		Store:     store,
		Registry:  registry,
		Seats:     seatCache,
		Menu:      models.DefaultMenu(),
		Publisher: publisher,
		Accrual: services.AccrualPolicy{
			OpenHour:  cfg.OpenHour,
			CloseHour: cfg.CloseHour,
			Cooldown:  cfg.AccrualCooldown,
			Reward:    cfg.AccrualReward,
		},
		AccrualInterval:  cfg.AccrualInterval,
		DeliveryInterval: cfg.DeliveryInterval,
		DeliveryJitter:   cfg.DeliveryJitter,
	})

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	loop := services.NewLoop(loopBuffer)
	loopDone := make(chan struct{})
	go func() {
		loop.Run(loopCtx)
		close(loopDone)
	}()
	venue.Start(loop)

	page, err := controllers.NewPageController(cfg.IndexHTMLPath, cfg.WSSURL)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load client page: %v", err)
	}
	dispatcher := controllers.NewDispatcher(venue)
	pageRouter := router.SetupPageRouter(page, controllers.NewVenueController(loop, venue), cfg.CORSOrigin, cfg.HTTPRateLimit)
	socketRouter := router.SetupSocketRouter(controllers.NewSocketController(loop, dispatcher, cfg.WSMessageRate, cfg.WSMessageBurst))

	servers := []*http.Server{
		{Addr: ":" + cfg.Port, Handler: pageRouter},
		{Addr: ":" + cfg.SocketPort, Handler: socketRouter},
	}
	for _, srv := range servers {
		go func(srv *http.Server) {
			utils.InfoLogger.Printf("Listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				utils.ErrorLogger.Errorf("Server %s stopped: %v", srv.Addr, err)
				stop()
			}
		}(srv)
	}

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down")

	venue.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			utils.ErrorLogger.Errorf("Shutdown %s: %v", srv.Addr, err)
		}
	}
	cancelLoop()
	<-loopDone
}
