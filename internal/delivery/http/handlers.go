package http

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/swfm/backend/internal/domain"
	"github.com/swfm/backend/internal/service"
	"github.com/swfm/backend/internal/timeseries"
	"github.com/swfm/backend/pkg/utils"
)

// Handler contains all HTTP handlers
type Handler struct {
	repo        domain.DataRepository
	charts      *service.ChartService
	dashboard   *service.DashboardService
	forecasts   *service.ForecastService
	bridge      *service.ForecastBridge
	logger      *slog.Logger
	loc         *time.Location
	defaultDays int
}

// NewHandler creates a new handler
func NewHandler(repo domain.DataRepository, charts *service.ChartService, dashboard *service.DashboardService, forecasts *service.ForecastService, bridge *service.ForecastBridge, logger *slog.Logger, loc *time.Location, defaultDays int) *Handler {
	if loc == nil {
		loc = time.Local
	}
	if defaultDays < 1 {
		defaultDays = 1
	}
	return &Handler{
		repo:        repo,
		charts:      charts,
		dashboard:   dashboard,
		forecasts:   forecasts,
		bridge:      bridge,
		logger:      logger,
		loc:         loc,
		defaultDays: defaultDays,
	}
}

// HealthCheck reports service, database and forecast service health.
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx := c.Context()

	dbStatus := "ok"
	if err := h.repo.Health(ctx); err != nil {
		dbStatus = "unavailable"
	}

	return c.JSON(fiber.Map{
		"status":     "ok",
		"service":    "swfm-backend",
		"database":   dbStatus,
		"ml_service": h.bridge.Health(ctx),
	})
}

// GetDashboard returns the dashboard tallies and health indicators.
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	summary := h.dashboard.GetSummary(c.Context())
	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}

// ListStations returns all monitoring stations.
func (h *Handler) ListStations(c *fiber.Ctx) error {
	stations, err := h.repo.ListStations(c.Context())
	if err != nil {
		// Read paths degrade to an empty list instead of failing the page.
		h.logger.Error("listing stations failed", "error", err)
		stations = []domain.Station{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    stations,
		"count":   len(stations),
	})
}

// GetStation returns one station by id.
func (h *Handler) GetStation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid station id")
	}

	station, err := h.repo.GetStation(c.Context(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch station")
	}
	if station == nil {
		return fiber.NewError(fiber.StatusNotFound, "station not found")
	}

	latest, err := h.repo.LatestMeasurement(c.Context(), id)
	if err != nil {
		h.logger.Warn("fetching latest measurement failed", "station_id", id, "error", err)
		latest = nil
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    station,
		"latest":  latest,
	})
}

// NearestStation returns the station closest to the given coordinates.
func (h *Handler) NearestStation(c *fiber.Ctx) error {
	if c.Query("lat") == "" || c.Query("lon") == "" {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon are required")
	}
	lat := c.QueryFloat("lat")
	lon := c.QueryFloat("lon")
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid coordinates")
	}

	stations, err := h.repo.ListStations(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch stations")
	}
	if len(stations) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no stations registered")
	}

	nearest := stations[0]
	best := utils.Haversine(lat, lon, nearest.Latitude, nearest.Longitude)
	for _, s := range stations[1:] {
		if d := utils.Haversine(lat, lon, s.Latitude, s.Longitude); d < best {
			best = d
			nearest = s
		}
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"data":        nearest,
		"distance_km": utils.RoundTo(best, 2),
	})
}

func validateStation(s domain.Station) error {
	if s.Name == "" {
		return errors.New("station name is required")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return errors.New("latitude out of range")
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return errors.New("longitude out of range")
	}
	return nil
}

// CreateStation registers a new monitoring station.
func (h *Handler) CreateStation(c *fiber.Ctx) error {
	var station domain.Station
	if err := c.BodyParser(&station); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStation(station); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	id, err := h.repo.CreateStation(c.Context(), station)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	station.ID = id
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    station,
	})
}

// UpdateStation replaces an existing station.
func (h *Handler) UpdateStation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid station id")
	}

	var station domain.Station
	if err := c.BodyParser(&station); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateStation(station); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	station.ID = id

	if err := h.repo.UpdateStation(c.Context(), station); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    station,
	})
}

// DeleteStation removes a station.
func (h *Handler) DeleteStation(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid station id")
	}
	if err := h.repo.DeleteStation(c.Context(), id); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetMeasurements returns the aggregated water level series for a station.
func (h *Handler) GetMeasurements(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid station id")
	}
	days := int(utils.Clamp(float64(c.QueryInt("days", h.defaultDays)), 1, 365))

	to := time.Now()
	from := to.AddDate(0, 0, -days)
	measurements, err := h.repo.FetchMeasurements(c.Context(), domain.MeasurementQuery{
		StationID: id,
		From:      from,
		To:        to,
	})
	if err != nil {
		h.logger.Error("fetching measurements failed", "station_id", id, "error", err)
		measurements = nil
	}

	granularity := timeseries.GranularityForDays(days)
	points := timeseries.Aggregate(measurements, granularity, h.loc)

	return c.JSON(fiber.Map{
		"success":     true,
		"granularity": string(granularity),
		"data":        points,
		"count":       len(points),
	})
}

// IngestMeasurements accepts a batch of telemetry rows for a station.
func (h *Handler) IngestMeasurements(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid station id")
	}

	var rows []domain.Measurement
	if err := c.BodyParser(&rows); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(rows) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "empty measurement batch")
	}
	for i := range rows {
		rows[i].StationID = id
		if rows[i].MeasuredAt.IsZero() {
			return fiber.NewError(fiber.StatusBadRequest, "measurement without timestamp")
		}
	}

	inserted, err := h.repo.InsertMeasurements(c.Context(), rows)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"inserted": inserted,
	})
}

// GetChart returns the merged actual and forecast series for a station.
func (h *Handler) GetChart(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid station id")
	}
	days := int(utils.Clamp(float64(c.QueryInt("days", h.defaultDays)), 1, 365))
	horizon := c.QueryInt("horizon", 24)

	mode := service.ChartModeLabeled
	if c.Query("mode") == string(service.ChartModeRaw) {
		mode = service.ChartModeRaw
	}

	series, err := h.charts.BuildSeries(c.Context(), service.ChartRequest{
		StationID:    id,
		Days:         days,
		HorizonHours: horizon,
		Mode:         mode,
	})
	if errors.Is(err, service.ErrSuperseded) {
		// A newer request for this station is already in flight; tell the
		// client to drop this response.
		return fiber.NewError(fiber.StatusConflict, "superseded by a newer request")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    series,
	})
}

// ListConfigs returns preprocessing configurations.
func (h *Handler) ListConfigs(c *fiber.Ctx) error {
	enabledOnly := c.QueryBool("enabled", false)
	configs, err := h.repo.ListConfigs(c.Context(), enabledOnly)
	if err != nil {
		h.logger.Error("listing configs failed", "error", err)
		configs = []domain.PreprocessingConfig{}
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    configs,
	})
}

// GetConfig returns one preprocessing configuration by method id.
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	methodID := c.Params("method_id")
	cfg, err := h.repo.GetConfig(c.Context(), methodID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch config")
	}
	if cfg == nil {
		return fiber.NewError(fiber.StatusNotFound, "config not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    cfg,
	})
}

// UpsertConfig writes a preprocessing configuration keyed by method id.
func (h *Handler) UpsertConfig(c *fiber.Ctx) error {
	var cfg domain.PreprocessingConfig
	if err := c.BodyParser(&cfg); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	cfg.MethodID = c.Params("method_id")
	if cfg.MethodID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "method_id is required")
	}

	if err := h.repo.UpsertConfig(c.Context(), cfg); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    cfg,
	})
}

// DeleteStaleForecasts prunes forecasts generated before the cutoff.
func (h *Handler) DeleteStaleForecasts(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 24)
	if hours < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "hours must be positive")
	}

	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)
	deleted, err := h.repo.DeleteForecastsOlderThan(c.Context(), cutoff)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"deleted": deleted,
	})
}
