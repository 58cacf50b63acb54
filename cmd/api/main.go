package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tresmarias-build/procure-backend/api/routes"
	"github.com/tresmarias-build/procure-backend/internal/auth"
	"github.com/tresmarias-build/procure-backend/internal/boq"
	"github.com/tresmarias-build/procure-backend/internal/clients"
	"github.com/tresmarias-build/procure-backend/internal/inventory"
	"github.com/tresmarias-build/procure-backend/internal/invoices"
	"github.com/tresmarias-build/procure-backend/internal/materialrequests"
	"github.com/tresmarias-build/procure-backend/internal/notifications"
	"github.com/tresmarias-build/procure-backend/internal/projects"
	"github.com/tresmarias-build/procure-backend/internal/purchaseorders"
	"github.com/tresmarias-build/procure-backend/internal/receiving"
	"github.com/tresmarias-build/procure-backend/internal/rfqs"
	"github.com/tresmarias-build/procure-backend/internal/suppliers"
	"github.com/tresmarias-build/procure-backend/internal/users"
	"github.com/tresmarias-build/procure-backend/internal/workflow"
	"github.com/tresmarias-build/procure-backend/pkg/auth/session"
	"github.com/tresmarias-build/procure-backend/pkg/config"
	"github.com/tresmarias-build/procure-backend/pkg/db"
	"github.com/tresmarias-build/procure-backend/pkg/logger"
	"github.com/tresmarias-build/procure-backend/pkg/migrate"
	"github.com/tresmarias-build/procure-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	services, err := buildServices(cfg, dbClient, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, registry, services),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildServices wires every repository and service behind the router. The
// wiring mirrors the document flow: BOQ feeds material requests, requests
// feed RFQs, awarded quotations feed orders, orders feed receiving and
// invoices.
func buildServices(cfg *config.Config, dbClient *db.Client, sessions *session.Manager) (routes.Services, error) {
	gdb := dbClient.DB()

	userRepo := users.NewRepository(gdb)
	clientRepo := clients.NewRepository(gdb)
	projectRepo := projects.NewRepository(gdb)
	supplierRepo := suppliers.NewRepository(gdb)
	boqRepo := boq.NewRepository(gdb)
	workflowRepo := workflow.NewRepository(gdb)
	requestRepo := materialrequests.NewRepository(gdb)
	rfqRepo := rfqs.NewRepository(gdb)
	orderRepo := purchaseorders.NewRepository(gdb)
	receivingRepo := receiving.NewRepository(gdb)
	inventoryRepo := inventory.NewRepository(gdb)
	invoiceRepo := invoices.NewRepository(gdb)
	notificationRepo := notifications.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}

	userService, err := users.NewService(users.ServiceParams{
		Repo:           userRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	clientService, err := clients.NewService(clientRepo)
	if err != nil {
		return routes.Services{}, err
	}

	projectService, err := projects.NewService(projectRepo, clientRepo)
	if err != nil {
		return routes.Services{}, err
	}

	supplierService, err := suppliers.NewService(supplierRepo)
	if err != nil {
		return routes.Services{}, err
	}

	boqService, err := boq.NewService(boqRepo, projectRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	workflowService, err := workflow.NewService(workflowRepo)
	if err != nil {
		return routes.Services{}, err
	}

	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		return routes.Services{}, err
	}

	inventoryService, err := inventory.NewService(inventoryRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	requestService, err := materialrequests.NewService(materialrequests.ServiceParams{
		Repo:     requestRepo,
		Projects: projectRepo,
		Notifier: notificationService,
		Tx:       dbClient,
	})
	if err != nil {
		return routes.Services{}, err
	}

	rfqService, err := rfqs.NewService(rfqs.ServiceParams{
		Repo:      rfqRepo,
		Requests:  requestRepo,
		Suppliers: supplierRepo,
		Approvals: workflowService,
		Notifier:  notificationService,
		Tx:        dbClient,
	})
	if err != nil {
		return routes.Services{}, err
	}

	orderService, err := purchaseorders.NewService(purchaseorders.ServiceParams{
		Repo:       orderRepo,
		Quotations: rfqRepo,
		Approvals:  workflowService,
		Notifier:   notificationService,
		Tx:         dbClient,
	})
	if err != nil {
		return routes.Services{}, err
	}

	receivingService, err := receiving.NewService(receiving.ServiceParams{
		Repo:     receivingRepo,
		Orders:   orderRepo,
		Stock:    inventoryService,
		Notifier: notificationService,
		Tx:       dbClient,
	})
	if err != nil {
		return routes.Services{}, err
	}

	invoiceService, err := invoices.NewService(invoices.ServiceParams{
		Repo:     invoiceRepo,
		Orders:   orderRepo,
		Workflow: workflowService,
		Notifier: notificationService,
		Tx:       dbClient,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:             authService,
		Users:            userService,
		Clients:          clientService,
		Projects:         projectService,
		Suppliers:        supplierService,
		Boq:              boqService,
		Workflow:         workflowService,
		MaterialRequests: requestService,
		RFQs:             rfqService,
		PurchaseOrders:   orderService,
		Receiving:        receivingService,
		Inventory:        inventoryService,
		Invoices:         invoiceService,
		Notifications:    notificationService,
	}, nil
}
