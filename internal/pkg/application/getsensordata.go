package application

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/diwise/sensor-gateway/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const isoTimestampLayout string = "2006-01-02T15:04:05.000Z07:00"

// SensorDataResult holds either the readings exactly as the upstream service
// returned them, or the not found marker if the upstream request failed.
type SensorDataResult struct {
	Readings json.RawMessage
	NotFound *domain.SensorDataNotFound
}

func (r SensorDataResult) Found() bool {
	return r.NotFound == nil
}

func (r SensorDataResult) MarshalJSON() ([]byte, error) {
	if r.NotFound != nil {
		return json.Marshal(r.NotFound)
	}
	if len(r.Readings) == 0 {
		return []byte("null"), nil
	}
	return r.Readings, nil
}

func sensorDataNotFound() SensorDataResult {
	return SensorDataResult{
		NotFound: &domain.SensorDataNotFound{Error: domain.SensorDataNotFoundMessage},
	}
}

func (s *sensorService) GetSensorData(ctx context.Context, fuseID string, from, to time.Time) (SensorDataResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "get-sensor-data")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	span.SetAttributes(attribute.String("fuse_id", fuseID))

	query := url.Values{}
	query.Set("fuse_id", fuseID)
	query.Set("start", from.UTC().Format(isoTimestampLayout))
	query.Set("end", to.UTC().Format(isoTimestampLayout))
	query.Set("interval_ms", strconv.FormatInt(ReadingInterval.Milliseconds(), 10))

	var resp *http.Response
	resp, err = s.get(ctx, "/sensor/data", query)
	if err != nil {
		err = fmt.Errorf("failed to retrieve sensor data: %w", err)
		return SensorDataResult{}, err
	}

	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		logger := logging.GetFromContext(ctx)
		logger.Info().Str("fuse_id", fuseID).Int("status_code", resp.StatusCode).Msg("sensor data not found")
		sensorDataNotFoundTotal.Inc()
		return sensorDataNotFound(), nil
	}

	var respBytes []byte
	respBytes, err = io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read response body as bytes: %w", err)
		return SensorDataResult{}, err
	}

	if !json.Valid(respBytes) {
		err = fmt.Errorf("failed to parse sensor data, response is not valid json")
		return SensorDataResult{}, err
	}

	return SensorDataResult{Readings: respBytes}, nil
}
