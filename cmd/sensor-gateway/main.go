package main

import (
	"context"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/go-chi/chi"

	"github.com/diwise/sensor-gateway/internal/pkg/application"
	"github.com/diwise/sensor-gateway/internal/pkg/application/access"
	"github.com/diwise/sensor-gateway/internal/pkg/infrastructure/router"
)

const serviceName string = "sensor-gateway"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	_, logger, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion)
	defer cleanup()

	baseUrl := env.GetVariableOrDie(logger, "SERVICE_BASE_URL", "sensor service base url")
	port := env.GetVariableOrDefault(logger, "SERVICE_PORT", "8080")
	userSensors := env.GetVariableOrDefault(logger, "USER_SENSOR_IDS", strings.Join(access.DefaultUserSensors, ","))

	sensorService := application.New(baseUrl)
	policy := access.ParseStaticAllowlist(userSensors)

	r := router.SetupRouter(chi.NewRouter(), logger, access.New(sensorService, policy))

	err := r.Start(port)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start router")
	}
}
