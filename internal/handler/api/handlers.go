package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"TempQuant/internal/domain/models"
	"TempQuant/internal/domain/repository"
	"TempQuant/internal/usecase"
	xhttp "TempQuant/pkg/http"
	"TempQuant/pkg/logger"
)

// Handler exposes the engine over HTTP: status, opportunities, runtime
// config, calibration diagnostics, paper state, and the trade confirmation
// endpoint of the two-phase flow.
type Handler struct {
	scheduler   *usecase.Scheduler
	calibrator  *usecase.Calibrator
	paper       *usecase.PaperTrader
	proposals   *usecase.ProposalStore
	configStore repository.ConfigStore
	log         *logger.Logger
}

func NewHandler(
	scheduler *usecase.Scheduler,
	calibrator *usecase.Calibrator,
	paper *usecase.PaperTrader,
	proposals *usecase.ProposalStore,
	configStore repository.ConfigStore,
	log *logger.Logger,
) *Handler {
	return &Handler{
		scheduler:   scheduler,
		calibrator:  calibrator,
		paper:       paper,
		proposals:   proposals,
		configStore: configStore,
		log:         log,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/status", h.Status)
	g.GET("/opportunities", h.Opportunities)
	g.GET("/config", h.GetConfig)
	g.PUT("/config", h.UpdateConfig)
	g.GET("/calibration", h.Calibration)
	g.GET("/paper", h.Paper)
	g.POST("/trades/confirm", h.ConfirmTrade)
}

// Status returns the last scan report plus pending proposals.
func (h *Handler) Status(c echo.Context) error {
	report := h.scheduler.LastReport()
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"mode":        report.Mode,
		"last_scan":   report,
		"proposals":   h.proposals.Pending(),
		"observed_at": time.Now().UTC(),
	})
}

// Opportunities returns the opportunity list from the last scan.
func (h *Handler) Opportunities(c echo.Context) error {
	report := h.scheduler.LastReport()
	opps := report.Opportunities
	if opps == nil {
		opps = []models.Opportunity{}
	}
	return xhttp.SuccessResponse(c, opps)
}

func (h *Handler) GetConfig(c echo.Context) error {
	cfg, err := h.configStore.Load(c.Request().Context())
	if err != nil {
		h.log.Error("config load failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, cfg)
}

// UpdateConfig replaces the runtime-mutable tunables. The next scan cycle
// picks the new values up automatically.
func (h *Handler) UpdateConfig(c echo.Context) error {
	var req models.UpdateConfigRequest
	if resp := xhttp.ReadAndValidateRequest(c, &req); resp != nil {
		return xhttp.BadRequestResponse(c, resp)
	}

	ctx := c.Request().Context()
	cfg, err := h.configStore.Load(ctx)
	if err != nil {
		h.log.Error("config load failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	cfg.Mode = models.Mode(req.Mode)
	cfg.MinEdge = req.MinEdge
	cfg.MaxTradeCents = req.MaxTradeCents
	cfg.MaxDailySpendCents = req.MaxDailyCents
	cfg.KellyMultiplier = req.KellyMultiplier
	cfg.ScanIntervalMin = req.ScanIntervalMin
	cfg.MaxTradesPerScan = req.MaxTradesPerScan
	cfg.Normalize()

	if err := h.configStore.Save(ctx, cfg); err != nil {
		h.log.Error("config save failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	h.log.Info("config updated", logger.String("mode", string(cfg.Mode)))
	return xhttp.SuccessResponse(c, cfg)
}

func (h *Handler) Calibration(c echo.Context) error {
	report, err := h.calibrator.Report(c.Request().Context())
	if err != nil {
		h.log.Error("calibration report failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *Handler) Paper(c echo.Context) error {
	st, err := h.paper.State(c.Request().Context())
	if err != nil {
		h.log.Error("paper state load failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, st)
}

// ConfirmTrade commits a pending proposal by token.
func (h *Handler) ConfirmTrade(c echo.Context) error {
	var req models.ConfirmTradeRequest
	if resp := xhttp.ReadAndValidateRequest(c, &req); resp != nil {
		return xhttp.BadRequestResponse(c, resp)
	}

	out, err := h.scheduler.ConfirmTrade(c.Request().Context(), req.Token)
	switch {
	case errors.Is(err, usecase.ErrProposalNotFound):
		return xhttp.NotFoundResponse(c, map[string]string{"error": "proposal not found"})
	case errors.Is(err, usecase.ErrProposalExpired):
		return xhttp.ConflictResponse(c, map[string]string{"error": "proposal expired"})
	case err != nil:
		h.log.Error("trade confirmation failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if out.Declined {
		return xhttp.DataResponse(c, http.StatusUnprocessableEntity, out)
	}
	return xhttp.SuccessResponse(c, out)
}
