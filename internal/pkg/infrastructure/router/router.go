package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/diwise/sensor-gateway/internal/pkg/application/access"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Router interface {
	Start(port string) error
}

type routerStruct struct {
	router  chi.Router
	log     zerolog.Logger
	sensors access.UserSensors
}

func SetupRouter(chiRouter chi.Router, log zerolog.Logger, sensors access.UserSensors) *routerStruct {
	r := &routerStruct{
		router:  chiRouter,
		log:     log,
		sensors: sensors,
	}

	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)

	chiRouter.Get("/health", r.health)
	chiRouter.Handle("/metrics", promhttp.Handler())

	chiRouter.Route("/api/user/sensors", func(sr chi.Router) {
		sr.Get("/", r.getUserSensors)
		sr.Post("/data", r.getUserSensorData)
	})

	return r
}

func (r *routerStruct) Start(port string) error {
	r.log.Info().Str("port", port).Msg("starting to listen for connections")
	return http.ListenAndServe(fmt.Sprintf(":%s", port), r.router)
}

func (router *routerStruct) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (router *routerStruct) getUserSensors(w http.ResponseWriter, r *http.Request) {
	logger := router.requestLogger(r)
	ctx := logging.NewContextWithLogger(r.Context(), logger)

	sensors, err := router.sensors.GetUserSensors(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to get user sensors")
		replyError(w, statusFromError(err), err)
		return
	}

	replyJSON(w, http.StatusOK, sensors)
}

func (router *routerStruct) getUserSensorData(w http.ResponseWriter, r *http.Request) {
	logger := router.requestLogger(r)
	ctx := logging.NewContextWithLogger(r.Context(), logger)

	query := access.SensorDataQuery{}

	err := json.NewDecoder(r.Body).Decode(&query)
	if err != nil {
		err = fmt.Errorf("%w: %w", access.ErrValidation, err)
		replyError(w, http.StatusBadRequest, err)
		return
	}

	result, err := router.sensors.GetUserSensorData(ctx, query)
	if err != nil {
		status := statusFromError(err)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("fuse_id", query.FuseID).Msg("failed to get user sensor data")
		}
		replyError(w, status, err)
		return
	}

	replyJSON(w, http.StatusOK, result)
}

func (router *routerStruct) requestLogger(r *http.Request) zerolog.Logger {
	return router.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, access.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, access.ErrAccessDenied):
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}

func replyError(w http.ResponseWriter, status int, err error) {
	replyJSON(w, status, map[string]string{"error": err.Error()})
}

func replyJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
