package http

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/swfm/backend/internal/domain"
)

// Proxy handlers forward model, training, weather and evaluation calls to
// the forecast service. Payloads stay opaque where this system has no
// stake in their shape; upstream errors are surfaced, never masked.

// Predict requests a forecast from a named model.
func (h *Handler) Predict(c *fiber.Ctx) error {
	model := c.Params("model")
	if model == "" {
		return fiber.NewError(fiber.StatusBadRequest, "model name is required")
	}

	var req domain.PredictionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	prediction, err := h.bridge.Predict(c.Context(), model, req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    prediction,
	})
}

// GenerateForecasts triggers forecast generation for one station.
func (h *Handler) GenerateForecasts(c *fiber.Ctx) error {
	var req domain.GenerateForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	out, err := h.bridge.GenerateForecasts(c.Context(), req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}

// GenerateAllForecasts runs forecast generation across stations as a
// batch; individual failures are tallied, not fatal.
func (h *Handler) GenerateAllForecasts(c *fiber.Ctx) error {
	var body struct {
		StationIDs      []int `json:"station_ids"`
		HorizonsMinutes []int `json:"horizons_minutes"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	stations := body.StationIDs
	if len(stations) == 0 {
		ids, err := h.forecasts.AllStationIDs(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		stations = ids
	}

	result := h.forecasts.GenerateAll(c.Context(), stations, body.HorizonsMinutes)
	return c.JSON(fiber.Map{
		"success": result.FailCount == 0,
		"data":    result,
	})
}

// Train starts a training run on the forecast service.
func (h *Handler) Train(c *fiber.Ctx) error {
	raw, err := h.bridge.Train(c.Context(), json.RawMessage(c.Body()))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return sendRaw(c, raw)
}

// TrainingStatus reports the state of the current training run.
func (h *Handler) TrainingStatus(c *fiber.Ctx) error {
	raw, err := h.bridge.TrainingStatus(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return sendRaw(c, raw)
}

// TrainedModels lists trained models for one station.
func (h *Handler) TrainedModels(c *fiber.Ctx) error {
	stationID, err := c.ParamsInt("station_id")
	if err != nil || stationID < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid station id")
	}
	raw, err := h.bridge.TrainedModels(c.Context(), stationID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return sendRaw(c, raw)
}

// TrainAllStations starts a training run covering every station.
func (h *Handler) TrainAllStations(c *fiber.Ctx) error {
	raw, err := h.bridge.TrainAllStations(c.Context(), json.RawMessage(c.Body()))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return sendRaw(c, raw)
}

// ListModels returns the model registry contents.
func (h *Handler) ListModels(c *fiber.Ctx) error {
	raw, err := h.bridge.ListModels(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return sendRaw(c, raw)
}

// UploadModel streams an uploaded model file to the registry.
func (h *Handler) UploadModel(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "model file is required")
	}
	name := c.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(fileHeader.Filename, ".zip")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot read uploaded file")
	}
	defer file.Close()

	raw, err := h.bridge.UploadModel(c.Context(), name, fileHeader.Filename, file)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return sendRaw(c, raw)
}

// PromoteModel moves a model version to a registry stage.
func (h *Handler) PromoteModel(c *fiber.Ctx) error {
	stage := c.Query("stage", "Production")
	raw, err := h.bridge.PromoteModel(c.Context(), c.Params("name"), c.Params("version"), stage)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return sendRaw(c, raw)
}

// DeleteModel removes a model from the registry.
func (h *Handler) DeleteModel(c *fiber.Ctx) error {
	raw, err := h.bridge.DeleteModel(c.Context(), c.Params("name"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return sendRaw(c, raw)
}

// WeatherForecast fetches the weather forecast for coordinates.
func (h *Handler) WeatherForecast(c *fiber.Ctx) error {
	if c.Query("latitude") == "" || c.Query("longitude") == "" {
		return fiber.NewError(fiber.StatusBadRequest, "latitude and longitude are required")
	}
	lat := c.QueryFloat("latitude")
	lon := c.QueryFloat("longitude")

	var minutes []int
	for _, raw := range strings.Split(c.Query("minutes"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		m, err := strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid minutes value")
		}
		minutes = append(minutes, m)
	}

	raw, err := h.bridge.WeatherForecast(c.Context(), lat, lon, minutes)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return sendRaw(c, raw)
}

// FeatureImportance returns the evaluation feature ranking.
func (h *Handler) FeatureImportance(c *fiber.Ctx) error {
	raw, err := h.bridge.FeatureImportance(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return sendRaw(c, raw)
}

// sendRaw relays an upstream JSON body without re-encoding it.
func sendRaw(c *fiber.Ctx, raw json.RawMessage) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}
