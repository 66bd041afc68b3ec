package application

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diwise/sensor-gateway/domain"
)

var (
	ErrSensorDataNotFound = errors.New(domain.SensorDataNotFoundMessage)
	ErrUnknownSensorType  = errors.New("unknown sensor type")
)

// ReadingsAs decodes the readings into the shape T. Nothing checks that T
// matches the type of the sensor the readings belong to.
func ReadingsAs[T domain.Reading](result SensorDataResult) ([]T, error) {
	if !result.Found() {
		return nil, ErrSensorDataNotFound
	}

	readings := []T{}

	err := json.Unmarshal(result.Readings, &readings)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal readings: %w", err)
	}

	return readings, nil
}

// DecodeReadings selects the reading shape from the sensor type and decodes
// into it. The returned value is either a []domain.HydroponicManagerReading
// or a []domain.WaterLevelMeterReading.
func DecodeReadings(sensorType domain.SensorType, result SensorDataResult) (any, error) {
	switch sensorType {
	case domain.HydroponicManager:
		return ReadingsAs[domain.HydroponicManagerReading](result)
	case domain.WaterLevelMeter:
		return ReadingsAs[domain.WaterLevelMeterReading](result)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSensorType, sensorType)
	}
}
