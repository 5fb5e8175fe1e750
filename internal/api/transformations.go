// Package api contains the HTTP handlers of the runtime utilities.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"revision-runtime/backend/internal/doctest"
	"revision-runtime/backend/internal/repository"
	"revision-runtime/backend/internal/services"
	"revision-runtime/backend/pkg/models"
)

// TransformationService is the part of services.TransformationService the API uses.
type TransformationService interface {
	Documentation(ctx context.Context, id uuid.UUID) (string, error)
	ExecuteDoctest(ctx context.Context, id uuid.UUID, dir string) (*models.DoctestResponse, error)
}

// Server holds the dependencies for the API server.
type Server struct {
	Service TransformationService
	DB      Pinger
}

// NewServer creates a new Server. db may be nil.
func NewServer(service TransformationService, db Pinger) *Server {
	return &Server{Service: service, DB: db}
}

// RegisterHandlers mounts the routes on g.
func RegisterHandlers(g *echo.Group, s *Server) {
	g.GET("/health", s.HandleHealth)
	g.GET("/transformations/:id/documentation", s.GetDocumentation)
	g.POST("/transformations/:id/doctest", s.ExecuteDoctest)
}

// GetDocumentation returns the Markdown documentation of a revision
// (GET /api/v1/transformations/:id/documentation)
func (s *Server) GetDocumentation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, "Invalid id", err.Error())
	}

	doc, err := s.Service.Documentation(c.Request().Context(), id)
	if err != nil {
		return s.serviceError(c, err)
	}

	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc))
}

// ExecuteDoctest runs the embedded examples of a component
// (POST /api/v1/transformations/:id/doctest)
func (s *Server) ExecuteDoctest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, "Invalid id", err.Error())
	}

	res, err := s.Service.ExecuteDoctest(c.Request().Context(), id, "")
	if err != nil {
		return s.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, res)
}

func (s *Server) serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return writeError(c, http.StatusNotFound, "Transformation revision not found", err.Error())
	case errors.Is(err, services.ErrOutsideCodeDir):
		return writeError(c, http.StatusBadRequest, "Invalid directory", err.Error())
	case errors.Is(err, doctest.ErrNotComponent):
		return writeError(c, http.StatusUnprocessableEntity, "Not a component", err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "Internal error", err.Error())
	}
}
