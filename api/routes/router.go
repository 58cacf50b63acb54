package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tresmarias-build/procure-backend/api/controllers"
	"github.com/tresmarias-build/procure-backend/api/middleware"
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
	"github.com/tresmarias-build/procure-backend/pkg/enums"
	"github.com/tresmarias-build/procure-backend/pkg/logger"
	"github.com/tresmarias-build/procure-backend/pkg/metrics"
	"github.com/tresmarias-build/procure-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services groups every domain service the router wires.
type Services struct {
	Auth             auth.Service
	Users            users.Service
	Clients          clients.Service
	Projects         projects.Service
	Suppliers        suppliers.Service
	Boq              boq.Service
	Workflow         workflow.Service
	MaterialRequests materialrequests.Service
	RFQs             rfqs.Service
	PurchaseOrders   purchaseorders.Service
	Receiving        receiving.Service
	Inventory        inventory.Service
	Invoices         invoices.Service
	Notifications    notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *redis.Client,
	sessions sessionManager,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(registry)

	// A typed nil *redis.Client must not become a non-nil interface.
	var idemStore redis.IdempotencyStore
	var redisPinger controllers.Pinger
	if redisClient != nil {
		idemStore = redisClient
		redisPinger = redisClient
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisPinger,
		}))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		admin := middleware.RequireRole(logg, string(enums.UserRoleAdmin))
		planners := middleware.RequireRole(logg,
			string(enums.UserRoleAdmin),
			string(enums.UserRoleProjectManager),
		)
		stockKeepers := middleware.RequireRole(logg,
			string(enums.UserRoleAdmin),
			string(enums.UserRoleWarehouse),
			string(enums.UserRoleSiteEngineer),
		)
		receivers := middleware.RequireRole(logg,
			string(enums.UserRoleAdmin),
			string(enums.UserRoleWarehouse),
			string(enums.UserRoleProcurementStaff),
		)
		payers := middleware.RequireRole(logg,
			string(enums.UserRoleAdmin),
			string(enums.UserRoleFinance),
		)

		r.Route("/users", func(r chi.Router) {
			r.Use(admin)
			r.Post("/", controllers.CreateUser(svcs.Users, logg))
			r.Get("/", controllers.ListUsers(svcs.Users, logg))
			r.Patch("/{id}/role", controllers.ChangeUserRole(svcs.Users, logg))
			r.Patch("/{id}/active", controllers.SetUserActive(svcs.Users, logg))
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ListClients(svcs.Clients, logg))
			r.Get("/{id}", controllers.GetClient(svcs.Clients, logg))
			r.With(planners).Post("/", controllers.CreateClient(svcs.Clients, logg))
			r.With(planners).Put("/{id}", controllers.UpdateClient(svcs.Clients, logg))
			r.With(admin).Delete("/{id}", controllers.DeleteClient(svcs.Clients, logg))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", controllers.ListProjects(svcs.Projects, logg))
			r.Get("/{id}", controllers.GetProject(svcs.Projects, logg))
			r.With(planners).Post("/", controllers.CreateProject(svcs.Projects, logg))
			r.With(planners).Put("/{id}", controllers.UpdateProject(svcs.Projects, logg))
			r.With(admin).Delete("/{id}", controllers.DeleteProject(svcs.Projects, logg))

			r.Route("/{projectID}/boq", func(r chi.Router) {
				r.Get("/", controllers.ListBoqItems(svcs.Boq, logg))
				r.Get("/summary", controllers.BoqSummary(svcs.Boq, logg))
			})
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.ListSuppliers(svcs.Suppliers, logg))
			r.Get("/{id}", controllers.GetSupplier(svcs.Suppliers, logg))
			r.With(planners).Post("/", controllers.CreateSupplier(svcs.Suppliers, logg))
			r.With(planners).Put("/{id}", controllers.UpdateSupplier(svcs.Suppliers, logg))
			r.With(planners).Patch("/{id}/active", controllers.SetSupplierActive(svcs.Suppliers, logg))
		})

		r.Route("/boq", func(r chi.Router) {
			r.Use(planners)
			r.Post("/items", controllers.UpsertBoqItem(svcs.Boq, logg))
			r.Delete("/items/{id}", controllers.DeleteBoqItem(svcs.Boq, logg))
			r.Post("/import", controllers.ImportBoq(svcs.Boq, logg))
		})

		r.Route("/workflow-rules", func(r chi.Router) {
			r.Post("/resolve", controllers.ResolveApprover(svcs.Workflow, logg))
			r.With(admin).Get("/", controllers.ListWorkflowRules(svcs.Workflow, logg))
			r.With(admin).Post("/", controllers.CreateWorkflowRule(svcs.Workflow, logg))
			r.With(admin).Put("/{id}", controllers.UpdateWorkflowRule(svcs.Workflow, logg))
			r.With(admin).Delete("/{id}", controllers.DeleteWorkflowRule(svcs.Workflow, logg))
		})

		r.Route("/material-requests", func(r chi.Router) {
			r.Post("/", controllers.CreateMaterialRequest(svcs.MaterialRequests, logg))
			r.Get("/", controllers.ListMaterialRequests(svcs.MaterialRequests, logg))
			r.Get("/{id}", controllers.GetMaterialRequest(svcs.MaterialRequests, logg))
			r.Post("/{id}/approve", controllers.ApproveMaterialRequest(svcs.MaterialRequests, logg))
			r.Post("/{id}/decline", controllers.DeclineMaterialRequest(svcs.MaterialRequests, logg))
			r.Post("/{id}/fulfill", controllers.FulfillMaterialRequest(svcs.MaterialRequests, logg))
		})

		r.Route("/rfqs", func(r chi.Router) {
			r.Post("/", controllers.CreateRFQ(svcs.RFQs, logg))
			r.Get("/", controllers.ListRFQs(svcs.RFQs, logg))
			r.Get("/{id}", controllers.GetRFQ(svcs.RFQs, logg))
			r.Post("/{id}/quotations", controllers.SubmitQuotation(svcs.RFQs, logg))
			r.Post("/{id}/close", controllers.CloseRFQ(svcs.RFQs, logg))
		})
		r.Post("/quotations/{id}/award", controllers.AwardQuotation(svcs.RFQs, logg))

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Post("/", controllers.CreatePurchaseOrder(svcs.PurchaseOrders, logg))
			r.Get("/", controllers.ListPurchaseOrders(svcs.PurchaseOrders, logg))
			r.Get("/{id}", controllers.GetPurchaseOrder(svcs.PurchaseOrders, logg))
			r.Post("/{id}/approve", controllers.ApprovePurchaseOrder(svcs.PurchaseOrders, logg))
			r.Post("/{id}/decline", controllers.DeclinePurchaseOrder(svcs.PurchaseOrders, logg))
			r.Post("/{id}/cancel", controllers.CancelPurchaseOrder(svcs.PurchaseOrders, logg))
		})

		r.Route("/receiving", func(r chi.Router) {
			r.Get("/", controllers.ListReceivingReports(svcs.Receiving, logg))
			r.Get("/{id}", controllers.GetReceivingReport(svcs.Receiving, logg))
			r.With(receivers).Post("/", controllers.CreateReceivingReport(svcs.Receiving, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/stock", controllers.ListStock(svcs.Inventory, logg))
			r.Get("/stock/{id}/movements", controllers.ListStockMovements(svcs.Inventory, logg))
			r.With(stockKeepers).Post("/issues", controllers.IssueStock(svcs.Inventory, logg))
			r.With(stockKeepers).Post("/adjustments", controllers.AdjustStock(svcs.Inventory, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", controllers.CreateInvoice(svcs.Invoices, logg))
			r.Get("/", controllers.ListInvoices(svcs.Invoices, logg))
			r.Get("/{id}", controllers.GetInvoice(svcs.Invoices, logg))
			r.Post("/{id}/match", controllers.MatchInvoice(svcs.Invoices, logg))
			r.Post("/{id}/approve-payment", controllers.ApproveInvoicePayment(svcs.Invoices, logg))
			r.With(payers).Post("/{id}/disbursements", controllers.RecordDisbursement(svcs.Invoices, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{id}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	return r
}
