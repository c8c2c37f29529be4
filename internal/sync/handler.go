package sync

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/occuhealth/capture/internal/domain/record"
	"github.com/occuhealth/capture/internal/domain/validation"
	"github.com/occuhealth/capture/internal/offline"
)

// Handler exposes the capture workspace API over HTTP. A thin web client
// posts section states here; assembly, validation, and the save/submit
// state machine all run server-side in the orchestrator.
type Handler struct {
	orch  *Orchestrator
	store offline.Store
	net   Connectivity
}

// NewHandler creates a workspace handler.
func NewHandler(orch *Orchestrator, store offline.Store, net Connectivity) *Handler {
	return &Handler{orch: orch, store: store, net: net}
}

// RegisterRoutes mounts the workspace routes on the supplied Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/encounters/:localId/save", h.Save)
	g.POST("/encounters/:localId/submit", h.Submit)
	g.POST("/encounters/:localId/validate", h.Validate)
	g.GET("/encounters/:key", h.ReadEnvelope)
	g.GET("/queue", h.QueueStatus)
	g.POST("/replay", h.Replay)
}

// captureRequest carries one workspace action: the identifiers known to the
// client plus the section-local edit states to assemble.
type captureRequest struct {
	ServerID string          `json:"server_id"`
	Status   string          `json:"status"`
	Sections record.Sections `json:"sections"`
}

func (h *Handler) assemble(c echo.Context) (*record.Record, error) {
	var req captureRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	localID := c.Param("localId")
	if localID == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "local id is required")
	}
	return record.Assemble(localID, req.ServerID, req.Status, req.Sections), nil
}

// Save handles POST /encounters/:localId/save.
func (h *Handler) Save(c echo.Context) error {
	rec, err := h.assemble(c)
	if err != nil {
		return err
	}
	res, err := h.orch.Save(c.Request().Context(), rec)
	if err != nil {
		// Local write failure is the one hard-failure path; it must never
		// read as "saved, sync pending".
		return echo.NewHTTPError(http.StatusInsufficientStorage, "failed to save encounter locally, please retry")
	}
	return c.JSON(http.StatusOK, res)
}

// Submit handles POST /encounters/:localId/submit.
func (h *Handler) Submit(c echo.Context) error {
	rec, err := h.assemble(c)
	if err != nil {
		return err
	}
	res, err := h.orch.Submit(c.Request().Context(), rec)
	if err != nil {
		if errors.Is(err, ErrSubmitInFlight) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInsufficientStorage, "failed to save encounter locally, please retry")
	}
	status := http.StatusOK
	if len(res.Errors) > 0 && !res.ServerRejected {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, res)
}

// Validate handles POST /encounters/:localId/validate, the speculative
// completeness check. It never counts as an attempted submission.
func (h *Handler) Validate(c echo.Context) error {
	rec, err := h.assemble(c)
	if err != nil {
		return err
	}
	verdict := validation.Validate(rec)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"is_valid":              verdict.IsValid,
		"errors":                verdict.Errors,
		"completion_percentage": verdict.CompletionPercentage,
		"first_invalid_section": validation.FirstInvalidSection(rec),
	})
}

// ReadEnvelope handles GET /encounters/:key.
func (h *Handler) ReadEnvelope(c echo.Context) error {
	env, err := h.store.Read(c.Request().Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, offline.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "encounter not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, env)
}

// QueueStatus handles GET /queue.
func (h *Handler) QueueStatus(c echo.Context) error {
	count, err := h.store.Count(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":   count,
		"has_any": count > 0,
		"online":  h.net.Online(),
		"queued":  h.net.QueuedCount(),
	})
}

// Replay handles POST /replay, the explicit resubmission of queued envelopes.
func (h *Handler) Replay(c echo.Context) error {
	n, err := h.orch.ReplayPending(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"replayed": n})
}
