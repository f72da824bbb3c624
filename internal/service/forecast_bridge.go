package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/swfm/backend/internal/domain"
	"github.com/swfm/backend/internal/observability"
)

// ForecastBridge handles communication with the external ML forecast
// service. All call sites share the one configured base URL. Upstream
// failures are returned as errors, never replaced with fabricated data;
// the caller decides how to degrade.
type ForecastBridge struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
}

// NewForecastBridge creates a new forecast service bridge
func NewForecastBridge(baseURL string, metrics *observability.Metrics) *ForecastBridge {
	return &ForecastBridge{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		metrics: metrics,
	}
}

// Health maps the forecast service's /health reply onto the three-state
// indicator: unreachable on transport failure, unhealthy on a non-2xx or
// undecodable reply, healthy otherwise.
func (b *ForecastBridge) Health(ctx context.Context) domain.MLHealthStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/health", nil)
	if err != nil {
		return domain.MLHealthStatus{Status: domain.MLUnreachable}
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.count("health", "error")
		return domain.MLHealthStatus{Status: domain.MLUnreachable}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b.count("health", "error")
		return domain.MLHealthStatus{Status: domain.MLUnhealthy}
	}

	var body struct {
		Status string `json:"status"`
		MLflow string `json:"mlflow"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		b.count("health", "error")
		return domain.MLHealthStatus{Status: domain.MLUnhealthy}
	}

	b.count("health", "success")
	return domain.MLHealthStatus{Status: domain.MLHealthy, MLflow: body.MLflow}
}

// Predict calls POST /predict/{model_name} for a station and horizon.
func (b *ForecastBridge) Predict(ctx context.Context, modelName string, req domain.PredictionRequest) (domain.PredictionResponse, error) {
	var out domain.PredictionResponse
	err := b.postJSON(ctx, "/predict/"+url.PathEscape(modelName), "predict", req, &out)
	if err != nil {
		return domain.PredictionResponse{}, fmt.Errorf("bridge: predict with %s: %w", modelName, err)
	}
	return out, nil
}

// GenerateForecasts triggers server-side forecast generation; when
// SaveToDB is set the forecast service writes the rows into the store.
func (b *ForecastBridge) GenerateForecasts(ctx context.Context, req domain.GenerateForecastRequest) (domain.GenerateForecastResponse, error) {
	var out domain.GenerateForecastResponse
	err := b.postJSON(ctx, "/predict/generate-forecasts", "predict/generate-forecasts", req, &out)
	if err != nil {
		return domain.GenerateForecastResponse{}, fmt.Errorf("bridge: generate forecasts: %w", err)
	}
	return out, nil
}

// ListModels returns the registry contents as reported by the forecast service.
func (b *ForecastBridge) ListModels(ctx context.Context) (json.RawMessage, error) {
	return b.getRaw(ctx, "/models", "models")
}

// Train starts a training run. The payload is opaque to this system.
func (b *ForecastBridge) Train(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	return b.postRaw(ctx, "/training/train", "training/train", payload)
}

// TrainingStatus reports the state of the current training run.
func (b *ForecastBridge) TrainingStatus(ctx context.Context) (json.RawMessage, error) {
	return b.getRaw(ctx, "/training/status", "training/status")
}

// TrainedModels lists trained models for one station.
func (b *ForecastBridge) TrainedModels(ctx context.Context, stationID int) (json.RawMessage, error) {
	return b.getRaw(ctx, "/training/models/"+strconv.Itoa(stationID), "training/models")
}

// TrainAllStations starts a training run covering every station.
func (b *ForecastBridge) TrainAllStations(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	return b.postRaw(ctx, "/training/train-all-stations", "training/train-all-stations", payload)
}

// UploadModel streams a model file to the registry as multipart form data.
func (b *ForecastBridge) UploadModel(ctx context.Context, name, filename string, file io.Reader) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("bridge: upload model: %w", err)
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("bridge: upload model: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("bridge: upload model: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("bridge: upload model: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/models/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("bridge: upload model: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return b.do(req, "models/upload")
}

// PromoteModel moves a model version to the given registry stage.
func (b *ForecastBridge) PromoteModel(ctx context.Context, name, version, stage string) (json.RawMessage, error) {
	path := fmt.Sprintf("/models/%s/promote/%s?stage=%s",
		url.PathEscape(name), url.PathEscape(version), url.QueryEscape(stage))
	return b.postRaw(ctx, path, "models/promote", nil)
}

// DeleteModel removes a model from the registry.
func (b *ForecastBridge) DeleteModel(ctx context.Context, name string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, b.baseURL+"/models/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, fmt.Errorf("bridge: delete model: %w", err)
	}
	return b.do(req, "models/delete")
}

// WeatherForecast fetches the per-horizon weather forecast for coordinates.
func (b *ForecastBridge) WeatherForecast(ctx context.Context, latitude, longitude float64, minutes []int) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	for _, m := range minutes {
		q.Add("minutes", strconv.Itoa(m))
	}
	return b.getRaw(ctx, "/weather/forecast?"+q.Encode(), "weather/forecast")
}

// FeatureImportance fetches the ranked feature list from model evaluation.
func (b *ForecastBridge) FeatureImportance(ctx context.Context) (json.RawMessage, error) {
	return b.getRaw(ctx, "/evaluation/feature-importance", "evaluation/feature-importance")
}

func (b *ForecastBridge) postJSON(ctx context.Context, path, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := b.do(req, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (b *ForecastBridge) getRaw(ctx context.Context, path, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("bridge: create request: %w", err)
	}
	return b.do(req, endpoint)
}

func (b *ForecastBridge) postRaw(ctx context.Context, path, endpoint string, payload json.RawMessage) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("bridge: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return b.do(req, endpoint)
}

func (b *ForecastBridge) do(req *http.Request, endpoint string) (json.RawMessage, error) {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.count(endpoint, "error")
		return nil, fmt.Errorf("forecast service unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		b.count(endpoint, "error")
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b.count(endpoint, "error")
		return nil, fmt.Errorf("forecast service returned status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	b.count(endpoint, "success")
	return raw, nil
}

func (b *ForecastBridge) count(endpoint, outcome string) {
	if b.metrics != nil {
		b.metrics.BridgeRequests.WithLabelValues(endpoint, outcome).Inc()
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
