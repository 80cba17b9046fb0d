package main

import (
	"log"
	"os"

	"autoshop/internal/database"
	"autoshop/internal/handler"
	"autoshop/internal/middleware"
	"autoshop/internal/repository"
	"autoshop/internal/service"
	"autoshop/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Auto Service API
// @version         1.0
// @description     Work order lifecycle, line item ledger and financial reporting for an auto service shop.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "autoshop"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// WebSocket hub for pushing order/request changes to staff dashboards
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	partRepo := repository.NewSparePartRepository(db)
	requestRepo := repository.NewServiceRequestRepository(db)
	orderRepo := repository.NewWorkOrderRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo)
	vehicleService := service.NewVehicleService(vehicleRepo, userRepo)
	catalogService := service.NewCatalogService(serviceRepo, partRepo, auditRepo)
	requestService := service.NewServiceRequestService(requestRepo, vehicleRepo, serviceRepo, auditRepo, wsHub)
	workOrderService := service.NewWorkOrderService(orderRepo, requestRepo, userRepo, serviceRepo, partRepo, auditRepo, txManager, wsHub)
	reportService := service.NewReportService(orderRepo, requestRepo)
	auditService := service.NewAuditService(auditRepo)

	userHandler := handler.NewUserHandler(userService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	requestHandler := handler.NewServiceRequestHandler(requestService)
	workOrderHandler := handler.NewWorkOrderHandler(workOrderService)
	reportHandler := handler.NewReportHandler(reportService)
	auditHandler := handler.NewAuditHandler(auditService)

	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	vehicleHandler.RegisterRoutes(api)
	catalogHandler.RegisterRoutes(api)
	requestHandler.RegisterRoutes(api)
	workOrderHandler.RegisterRoutes(api)
	reportHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
