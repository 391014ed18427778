package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	pkgerrors "github.com/nekruzvatanshoev/carshop/pkg/carshop/errors"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/search"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports liveness and, when the session store can be pinged, its
// reachability.
func (h *httpServer) Healthz(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.sessions.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(r.Context(), h.log, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "session store unavailable"))
			return
		}
	}
	writeSuccess(w, map[string]string{"status": "ok"})
}

// GetVehicles defines a GET handler to search the vehicle catalog
func (h *httpServer) GetVehicles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := validateFilter(r.URL.Query())
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}

	vehicles, err := h.vehicles.Vehicles(ctx)
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}

	result, err := search.Search(ctx, vehicles, filter)
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}
	writeSuccess(w, result)
}

// GetVehicle defines a GET handler for a single vehicle
func (h *httpServer) GetVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vehicle, err := h.vehicles.Vehicle(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	writeSuccess(w, vehicle)
}

func (h *httpServer) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(r.Context(), h.log, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
}

func (h *httpServer) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{Error: apiError{
		Code:    "METHOD_NOT_ALLOWED",
		Message: "method not allowed",
	}})
}
