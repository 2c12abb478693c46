package controllers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/UlybinDA/scxrd-sac/internal/model"
	"github.com/UlybinDA/scxrd-sac/logging"
	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "controllers"})

// Server defines the REST API of the service-application-center.
type Server struct {
	Router        *echo.Echo
	DB            *sql.DB
	GORMDB        *gorm.DB
	Service       string
	Title         string
	Version       string
	NATSConn      *nats.EncodedConn
	BaseSubject   string
	BaseQueueName string
}

// ServiceInfo describes this service.
type ServiceInfo struct {
	Service     string `json:"service"`
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// natsSubject builds the full subject to publish an event under from the configured base subject.
func (s Server) natsSubject(fields ...string) string {
	trimmed := strings.TrimSuffix(
		strings.TrimSuffix(s.BaseSubject, ".*"),
		".>",
	)
	return fmt.Sprintf("%s.%s", trimmed, strings.Join(fields, "."))
}

// publishEvent publishes an event payload to NATS. Event delivery is best-effort; a publish
// failure is logged and does not fail the operation that produced the event.
func (s Server) publishEvent(payload interface{}, fields ...string) {
	if s.NATSConn == nil {
		return
	}

	subject := s.natsSubject(fields...)
	if err := s.NATSConn.Publish(subject, payload); err != nil {
		log.Errorf("unable to publish to %s: %s", subject, err)
	}
}

// RootHandler handles GET requests to the / endpoint.
func (s Server) RootHandler(ctx echo.Context) error {
	resp := ServiceInfo{
		Service:     s.Service,
		Title:       s.Title,
		Version:     s.Version,
		Description: "experiment request management for the X-ray diffraction facility",
	}
	return model.Success(ctx, resp, http.StatusOK)
}

// V1RootHandler handles GET requests to the /v1 endpoint.
func (s Server) V1RootHandler(ctx echo.Context) error {
	resp := ServiceInfo{
		Service:     s.Service,
		Title:       s.Title,
		Version:     "v1",
		Description: "experiment request management for the X-ray diffraction facility",
	}
	return model.Success(ctx, resp, http.StatusOK)
}
