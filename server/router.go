package server

import (
	"github.com/UlybinDA/scxrd-sac/internal/controllers"
	"github.com/cyverse-de/echo-middleware/v2/redoc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echolog "github.com/spirosoik/echo-logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func InitRouter() *echo.Echo {
	log := log.WithFields(logrus.Fields{"context": "router"})

	// Create the web server.
	e := echo.New()

	// Set a custom logger.
	echoLogger := echolog.NewLoggerMiddleware(log)
	e.Logger = echoLogger

	// Add middleware.
	e.Use(otelecho.Middleware("SAC"))
	e.Use(echoLogger.Hook())
	e.Use(middleware.Recover())
	e.Use(redoc.Serve(redoc.Opts{Title: "Structure Analysis Center Application Service"}))

	return e
}

func registerApplicationEndpoints(applications *echo.Group, s *controllers.Server) {
	// Submits a new application.
	applications.POST("", s.AddApplication)

	// Lists the submitted applications in processing order.
	applications.GET("/worklist", s.GetWorklist)

	// Lists the completed applications whose data still needs reduction.
	applications.GET("/reduction", s.GetReductionWorklist)

	// Gets an application's details, probes included.
	applications.GET("/:application_code", s.GetApplication)

	// Runs one round trip of the operator processing workflow.
	applications.POST("/:application_code/processing", s.ProcessApplication)

	// Releases the processing lock.
	applications.DELETE("/:application_code/lock", s.ReleaseApplicationLock)

	// Marks every probe of the application reduced.
	applications.POST("/:application_code/reduced", s.MarkApplicationReduced)

	// Records that the sample has left the facility.
	applications.POST("/:application_code/sample-returned", s.MarkSampleReturned)
}

func registerQuotaGroupEndpoints(quotaGroups *echo.Group, s *controllers.Server) {
	// Lists the quota groups and their balances.
	quotaGroups.GET("", s.GetAllQuotaGroups)

	// Moves instrument time between two quota groups.
	quotaGroups.POST("/transfers", s.TransferQuotaTime)

	// Manually grants every periodic group its period time.
	quotaGroups.POST("/refresh", s.RefreshPeriodTime)

	// Gets a quota group's details.
	quotaGroups.GET("/:quota_group_id", s.GetQuotaGroupByID)

	// Lists the transfers a quota group took part in.
	quotaGroups.GET("/:quota_group_id/transfers", s.GetQuotaTransfers)

	// Grants a single quota group its period time.
	quotaGroups.POST("/:quota_group_id/reset", s.ResetQuotaGroup)
}

func registerNotificationEndpoints(notifications *echo.Group, s *controllers.Server) {
	// Lists a user's pending notifications.
	notifications.GET("", s.GetPendingNotifications)

	// Accepts a pending notification, running the gated action if the gates complete.
	notifications.POST("/:notification_id/accept", s.AcceptNotification)

	// Rejects a pending notification.
	notifications.POST("/:notification_id/reject", s.RejectNotification)
}

func RegisterHandlers(s controllers.Server) {

	// The base URL acts as a health check endpoint.
	s.Router.GET("/", s.RootHandler)

	// API version 1 endpoints.
	v1 := s.Router.Group("/v1")
	v1.GET("", s.V1RootHandler)

	applications := v1.Group("/applications")
	registerApplicationEndpoints(applications, &s)

	quotaGroups := v1.Group("/quota-groups")
	registerQuotaGroupEndpoints(quotaGroups, &s)

	notifications := v1.Group("/notifications")
	registerNotificationEndpoints(notifications, &s)

	// The posting pipeline's export/import contract.
	postFiles := v1.Group("/post-files")
	postFiles.GET("", s.ExportPostFiles)
	postFiles.POST("", s.ImportPostFiles)
}
