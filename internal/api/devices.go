// Copyright (c) 2026 Gritsos. All rights reserved.

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gritsos/gritsos-api/internal/platform/middleware"
	requestutil "github.com/gritsos/gritsos-api/internal/platform/request"
	"github.com/gritsos/gritsos-api/internal/platform/respond"
)

// DeviceHandler serves the device and sensor routes.
//
// Readings are not stored yet; the handlers only enforce access and input rules.
type DeviceHandler struct {
	authenticator middleware.Authenticator
}

// NewDeviceHandler constructs a new [DeviceHandler].
func NewDeviceHandler(authenticator middleware.Authenticator) *DeviceHandler {
	return &DeviceHandler{authenticator: authenticator}
}

// Register adds the device routes to router.
func (handler *DeviceHandler) Register(router chi.Router) {
	router.Group(func(protected chi.Router) {
		protected.Use(middleware.Authenticate(handler.authenticator, 0))

		protected.Get("/devices", handler.listDevices)
		protected.Get("/sensors", handler.listSensors)
		protected.Post("/sensor", handler.postReadings)
	})

	router.Get("/sensor/{id}", handler.getSensor)
}

/*
GET /devices.

Description: Lists the registered physical devices.
*/
func (handler *DeviceHandler) listDevices(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, []any{})
}

/*
GET /sensors.

Description: Lists the sensors available through devices.
*/
func (handler *DeviceHandler) listSensors(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, []any{})
}

/*
GET /sensor/{id}.

Description: Public sensor readings.

Response:
  - 200: Readings for the sensor
  - 400: ErrBadRequest: Non-numeric id
*/
func (handler *DeviceHandler) getSensor(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{"id": id, "readings": []any{}})
}

/*
POST /sensor.

Description: Accepts new sensor readings.
*/
func (handler *DeviceHandler) postReadings(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}
