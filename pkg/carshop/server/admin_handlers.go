package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	pkgerrors "github.com/nekruzvatanshoev/carshop/pkg/carshop/errors"
)

const (
	maxImageBytes  = 10 << 20
	imageFormField = "image"
)

// CreateVehicle adds a vehicle to the catalog.
func (h *httpServer) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var input dal.VehicleInput
	if err := decodeJSONBody(w, r, &input); err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	vehicle, err := h.vehicles.CreateVehicle(ctx, input)
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusCreated, vehicle)
}

// UpdateVehicle replaces the editable fields of a vehicle.
func (h *httpServer) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var input dal.VehicleInput
	if err := decodeJSONBody(w, r, &input); err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	vehicle, err := h.vehicles.UpdateVehicle(ctx, mux.Vars(r)["id"], input)
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	writeSuccess(w, vehicle)
}

// DeleteVehicle removes a vehicle from the catalog.
func (h *httpServer) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	if err := h.vehicles.DeleteVehicle(ctx, id); err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	writeSuccess(w, map[string]any{"id": id, "deleted": true})
}

// UploadVehicleImage forwards a multipart image upload to the vehicle service.
func (h *httpServer) UploadVehicleImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(ctx, h.log, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
		return
	}
	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		writeError(ctx, h.log, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file is required").
			WithDetails(map[string]any{"field": imageFormField}))
		return
	}
	defer file.Close()

	vehicle, err := h.vehicles.UploadVehicleImage(ctx, mux.Vars(r)["id"], header.Filename, file)
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusCreated, vehicle)
}
