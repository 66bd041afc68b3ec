package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/diwise/sensor-gateway/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

// ReadingInterval is the bucket size the upstream service aggregates
// readings into. It is fixed and not exposed to callers.
const ReadingInterval time.Duration = 5 * time.Minute

var ErrFetchSensors = errors.New("error fetching sensors")

type SensorService interface {
	GetSensorsByFuseIDs(ctx context.Context, fuseIDs []string) ([]domain.Sensor, error)
	GetSensorData(ctx context.Context, fuseID string, from, to time.Time) (SensorDataResult, error)
}

type sensorService struct {
	baseUrl    string
	httpClient http.Client
}

var tracer = otel.Tracer("sensor-gateway/app")

func New(baseUrl string) SensorService {
	return &sensorService{
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (s *sensorService) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	endpoint, err := url.Parse(s.baseUrl + path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse endpoint url: %w", err)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	start := time.Now()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		upstreamRequestLatencySeconds.WithLabelValues(path, "error").Observe(time.Since(start).Seconds())
		return nil, err
	}

	upstreamRequestLatencySeconds.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	return resp, nil
}

func isSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
