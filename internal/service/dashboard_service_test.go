package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swfm/backend/internal/domain"
	"github.com/swfm/backend/internal/repository/postgres"
)

func TestGetSummaryJoinsAllParts(t *testing.T) {
	repo := postgres.NewMockRepository()
	ctx := context.Background()

	_, err := repo.CreateStation(ctx, domain.Station{Name: "P.1", River: "Ping"})
	require.NoError(t, err)
	_, err = repo.CreateStation(ctx, domain.Station{Name: "P.67", River: "Ping"})
	require.NoError(t, err)

	now := time.Now()
	_, err = repo.InsertMeasurements(ctx, []domain.Measurement{
		{StationID: 1, MeasuredAt: now, WaterLevel: level(1.2)},
		{StationID: 1, MeasuredAt: now.Add(time.Hour), WaterLevel: level(1.3)},
		{StationID: 2, MeasuredAt: now, WaterLevel: level(0.8)},
	})
	require.NoError(t, err)
	_, err = repo.InsertForecasts(ctx, []domain.ForecastRow{
		{StationID: 1, TargetDate: now.Add(2 * time.Hour), WaterLevel: level(1.4), ForecastDate: now},
	})
	require.NoError(t, err)

	bridge, _ := newBridge(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))

	svc := NewDashboardService(repo, bridge, testLogger())
	summary := svc.GetSummary(ctx)

	assert.Equal(t, 2, summary.StationCount)
	assert.Equal(t, 3, summary.MeasurementCount)
	assert.Equal(t, 1, summary.ForecastCount)
	assert.Equal(t, domain.MLHealthy, summary.MLService.Status)
	assert.False(t, summary.Timestamp.IsZero())
}

// failingCountRepo breaks the measurement tally only.
type failingCountRepo struct {
	*postgres.MockRepository
}

func (r *failingCountRepo) CountMeasurements(ctx context.Context) (int, error) {
	return 0, errors.New("measurement table unavailable")
}

func TestGetSummarySurvivesBrokenParts(t *testing.T) {
	repo := &failingCountRepo{postgres.NewMockRepository()}
	_, err := repo.CreateStation(context.Background(), domain.Station{Name: "P.1"})
	require.NoError(t, err)

	srvURL := "http://127.0.0.1:0" // nothing listening
	svc := NewDashboardService(repo, NewForecastBridge(srvURL, nil), testLogger())
	summary := svc.GetSummary(context.Background())

	assert.Equal(t, 1, summary.StationCount)
	assert.Equal(t, 0, summary.MeasurementCount, "broken fetch leaves a zero tally")
	assert.Equal(t, domain.MLUnreachable, summary.MLService.Status)
}
