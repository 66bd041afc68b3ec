package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diwise/sensor-gateway/domain"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel/attribute"
)

func (s *sensorService) GetSensorsByFuseIDs(ctx context.Context, fuseIDs []string) ([]domain.Sensor, error) {
	var err error

	ctx, span := tracer.Start(ctx, "get-sensors-by-fuse-ids")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if len(fuseIDs) == 0 {
		err = fmt.Errorf("cannot retrieve sensors as no fuse ids have been provided")
		return nil, err
	}

	ids := strings.Join(fuseIDs, ",")
	span.SetAttributes(attribute.String("fuse_ids", ids))

	var response *http.Response
	response, err = s.get(ctx, "/sensors", url.Values{"ids": {ids}})
	if err != nil {
		err = fmt.Errorf("failed to retrieve list of sensors: %w", err)
		return nil, err
	}

	defer response.Body.Close()

	if !isSuccess(response.StatusCode) {
		err = fmt.Errorf("%w: %s", ErrFetchSensors, http.StatusText(response.StatusCode))
		return nil, err
	}

	var responseBytes []byte
	responseBytes, err = io.ReadAll(response.Body)
	if err != nil {
		err = fmt.Errorf("failed to read response body as bytes: %w", err)
		return nil, err
	}

	responseBytes = bytes.TrimSpace(responseBytes)
	if len(responseBytes) == 0 || bytes.Equal(responseBytes, []byte("null")) {
		return []domain.Sensor{}, nil
	}

	sensorsResponse := []domain.SensorResponse{}

	err = json.Unmarshal(responseBytes, &sensorsResponse)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal response: %s,\ndue to: %w", string(responseBytes), err)
		return nil, err
	}

	sensors := make([]domain.Sensor, 0, len(sensorsResponse))

	for _, sr := range sensorsResponse {
		var sensor domain.Sensor
		sensor, err = toSensor(sr)
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, sensor)
	}

	return sensors, nil
}

func toSensor(sr domain.SensorResponse) (domain.Sensor, error) {
	createdAt, err := parseTimestamp(sr.CreatedAt)
	if err != nil {
		return domain.Sensor{}, fmt.Errorf("sensor %s has an invalid created_at: %w", sr.FuseID, err)
	}

	lastSeen, err := parseTimestamp(sr.LastSeen)
	if err != nil {
		return domain.Sensor{}, fmt.Errorf("sensor %s has an invalid last_seen: %w", sr.FuseID, err)
	}

	return domain.Sensor{
		ID:             sr.ID,
		FuseID:         sr.FuseID,
		Name:           sr.Name,
		Type:           sr.Type,
		Location:       sr.Location,
		WifiStrength:   sr.WifiStrength,
		BatteryPercent: sr.BatteryPercent,
		Description:    sr.Description,
		CreatedAt:      createdAt,
		LastSeen:       lastSeen,
	}, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02",
}

// parseTimestamp accepts the ISO 8601 variants the upstream service has been
// seen to emit. Zone-less values are read as UTC.
func parseTimestamp(value string) (time.Time, error) {
	var err error

	for _, layout := range timestampLayouts {
		var t time.Time
		t, err = time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp %q: %w", value, err)
}
