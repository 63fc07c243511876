package main

import (
	"database/sql"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/wichananm65/hvmc-store-backend/internal/cart"
	"github.com/wichananm65/hvmc-store-backend/internal/category"
	"github.com/wichananm65/hvmc-store-backend/internal/config"
	"github.com/wichananm65/hvmc-store-backend/internal/delivery"
	"github.com/wichananm65/hvmc-store-backend/internal/events"
	"github.com/wichananm65/hvmc-store-backend/internal/order"
	"github.com/wichananm65/hvmc-store-backend/internal/product"
	"github.com/wichananm65/hvmc-store-backend/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()

	if err := ensureSchema(db); err != nil {
		log.Fatalf("%v", err)
	}

	publisher := newPublisher(cfg)
	if closer, ok := publisher.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	setupCORS(app, cfg.CORSOrigins)

	secret := []byte(cfg.JWTSecret)

	userRepo := user.NewPostgresRepository(db)
	userHandler := user.NewHandler(user.NewService(userRepo), user.TokenConfig{Secret: secret, TTL: cfg.JWTTTL})

	productRepo := product.NewPostgresRepository(db)
	productHandler := product.NewHandler(product.NewService(productRepo))

	deliveryService := delivery.NewService(delivery.NewPostgresRepository(db))
	deliveryHandler := delivery.NewHandler(deliveryService)

	categoryHandler := category.NewHandler(category.NewService(category.NewPostgresRepository(db)))
	cartHandler := cart.NewHandler(cart.NewService(productRepo, deliveryService))

	orderService := order.NewService(order.NewPostgresRepository(db), productRepo, deliveryService, userRepo, publisher)
	orderHandler := order.NewHandler(orderService)

	userHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	deliveryHandler.RegisterPublicRoutes(app)
	cartHandler.RegisterPublicRoutes(app)
	orderHandler.RegisterPublicRoutes(app, user.OptionalAuth(secret))

	app.Use(jwtware.New(jwtware.Config{SigningKey: secret}))

	userHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)

	adminGroup := app.Group("/api/v1/admin", user.RequireStaff)
	productHandler.RegisterAdminRoutes(adminGroup)
	deliveryHandler.RegisterAdminRoutes(adminGroup)
	orderHandler.RegisterAdminRoutes(adminGroup, cfg.Admin)

	log.Printf("[app] listening on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

// newPublisher returns a Kafka publisher when brokers are configured.
func newPublisher(cfg config.Config) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Printf("[app] KAFKA_BROKERS not set, order events disabled")
		return events.Nop{}
	}
	p, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	return p
}
