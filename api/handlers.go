package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/braidhq/braid/pkg/memory"
	"github.com/braidhq/braid/pkg/utils"
)

// AddEventRequest is the body for POST /events.
type AddEventRequest struct {
	EffectText string `json:"effect_text"`
}

// AddEventResponse is the success body for POST /events.
type AddEventResponse struct {
	EventID int64 `json:"event_id"`
	Success bool  `json:"success"`
}

// AddEventsBatchRequest is the body for POST /events/batch.
type AddEventsBatchRequest struct {
	Events []string `json:"events"`
}

// QueryRequest is the body for POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the success body for POST /query.
type QueryResponse struct {
	Narrative string `json:"narrative"`
	Success   bool   `json:"success"`
}

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status            string `json:"status"`
	Version           string `json:"version"`
	DatabaseConnected bool   `json:"database_connected"`
}

// StatsResponse is the body for GET /stats.
type StatsResponse struct {
	TotalEvents   int64   `json:"total_events"`
	LinkedEvents  int64   `json:"linked_events"`
	OrphanEvents  int64   `json:"orphan_events"`
	ChainCoverage float64 `json:"chain_coverage"`
}

// handleRoot returns the service banner.
func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":        "braid",
		"version":     utils.Version,
		"description": "causal event memory service",
		"endpoints": fiber.Map{
			"health":    "/health",
			"add_event": "/events (POST)",
			"batch":     "/events/batch (POST)",
			"query":     "/query (POST)",
			"stats":     "/stats",
		},
	})
}

// handleHealth reports store reachability for monitors and load balancers.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	connected := s.core.Healthy(c.Context())

	status := "healthy"
	code := fiber.StatusOK
	if !connected {
		status = "unhealthy"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(HealthResponse{
		Status:            status,
		Version:           utils.Version,
		DatabaseConnected: connected,
	})
}

// handleAddEvent ingests a single event.
func (s *Server) handleAddEvent(c *fiber.Ctx) error {
	var req AddEventRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, memory.KindValidation, "invalid_body", "request body must be JSON with effect_text")
	}

	id, err := s.core.AddEvent(c.Context(), req.EffectText)
	if err != nil {
		s.logger.Warn("add event failed", zap.Error(err))
		return writeEngineError(c, err)
	}

	s.logger.Info("event added", zap.Int64("event_id", id))

	return c.JSON(AddEventResponse{
		EventID: id,
		Success: true,
	})
}

// handleAddEventsBatch ingests many events, never aborting on per-item
// failures.
func (s *Server) handleAddEventsBatch(c *fiber.Ctx) error {
	var req AddEventsBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, memory.KindValidation, "invalid_body", "request body must be JSON with an events list")
	}
	if req.Events == nil {
		return writeError(c, memory.KindValidation, "missing_events", "events list is required")
	}

	result := s.core.AddEventsBatch(c.Context(), req.Events)

	s.logger.Info("batch ingest finished",
		zap.Int("total", result.Total),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
	)

	return c.JSON(result)
}

// handleQuery retrieves the causal narrative for a query.
func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, memory.KindValidation, "invalid_body", "request body must be JSON with query")
	}

	narrative, err := s.core.Query(c.Context(), req.Query)
	if err != nil {
		s.logger.Warn("query failed", zap.Error(err))
		return writeEngineError(c, err)
	}

	return c.JSON(QueryResponse{
		Narrative: narrative,
		Success:   true,
	})
}

// handleStats reports aggregate store counts.
func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.core.Stats(c.Context())
	if err != nil {
		s.logger.Warn("stats failed", zap.Error(err))
		return writeEngineError(c, err)
	}

	return c.JSON(StatsResponse{
		TotalEvents:   stats.TotalEvents,
		LinkedEvents:  stats.LinkedEvents,
		OrphanEvents:  stats.OrphanEvents(),
		ChainCoverage: stats.ChainCoverage(),
	})
}
