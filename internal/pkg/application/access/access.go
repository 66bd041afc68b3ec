package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/diwise/sensor-gateway/domain"
	"github.com/diwise/sensor-gateway/internal/pkg/application"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrAccessDenied = errors.New("access denied to the requested sensor data")
)

// UserSensors exposes the sensors of the current user and their readings.
type UserSensors interface {
	GetUserSensors(ctx context.Context) ([]domain.Sensor, error)
	GetUserSensorData(ctx context.Context, query SensorDataQuery) (application.SensorDataResult, error)
}

type userSensors struct {
	sensors application.SensorService
	policy  Policy
}

var tracer = otel.Tracer("sensor-gateway/access")

func New(sensors application.SensorService, policy Policy) UserSensors {
	return &userSensors{
		sensors: sensors,
		policy:  policy,
	}
}

func (u *userSensors) GetUserSensors(ctx context.Context) ([]domain.Sensor, error) {
	var err error

	ctx, span := tracer.Start(ctx, "get-user-sensors")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	fuseIDs := u.policy.AccessibleSensors(ctx)
	if len(fuseIDs) == 0 {
		return []domain.Sensor{}, nil
	}

	var sensors []domain.Sensor
	sensors, err = u.sensors.GetSensorsByFuseIDs(ctx, fuseIDs)
	if err != nil {
		return nil, err
	}

	return sensors, nil
}

func (u *userSensors) GetUserSensorData(ctx context.Context, query SensorDataQuery) (application.SensorDataResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "get-user-sensor-data")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

	err = query.Validate()
	if err != nil {
		return application.SensorDataResult{}, err
	}

	span.SetAttributes(attribute.String("fuse_id", query.FuseID))

	if !u.policy.CanAccess(ctx, query.FuseID) {
		logger.Warn().Str("fuse_id", query.FuseID).Msg("denied access to sensor data")
		err = fmt.Errorf("%w: %s", ErrAccessDenied, query.FuseID)
		return application.SensorDataResult{}, err
	}

	var result application.SensorDataResult
	result, err = u.sensors.GetSensorData(ctx, query.FuseID, query.From, query.To)
	if err != nil {
		return application.SensorDataResult{}, err
	}

	return result, nil
}
