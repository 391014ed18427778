package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/cart"
	pkgerrors "github.com/nekruzvatanshoev/carshop/pkg/carshop/errors"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/session"
)

type addCartItemRequest struct {
	VehicleID string   `json:"vehicle_id" validate:"required"`
	OptionIDs []string `json:"option_ids"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// GetCart returns the priced session cart.
func (h *httpServer) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := h.sessions.Get(ctx, sessionID(ctx))
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}
	writeSuccess(w, h.checkout.Summary(sess))
}

// AddCartItem prices the selected vehicle and options and adds the bundle to
// the cart. Adding the same bundle again bumps its quantity.
func (h *httpServer) AddCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addCartItemRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(ctx, h.log, w, err)
		return
	}

	vehicle, err := h.vehicles.Vehicle(ctx, req.VehicleID)
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	if !vehicle.InStock() {
		writeError(ctx, h.log, w, domainError(fmt.Errorf("%w: %s", errOutOfStock, vehicle.Name)))
		return
	}
	product, err := cart.NewProduct(vehicle, req.OptionIDs)
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}

	sess, err := h.sessions.Update(ctx, sessionID(ctx), func(s *session.Session) error {
		s.Cart.Add(product)
		return nil
	})
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}
	writeSuccessStatus(w, http.StatusCreated, h.checkout.Summary(sess))
}

// UpdateCartItem sets the quantity of a cart line. Quantities below one
// leave the line unchanged.
func (h *httpServer) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := mux.Vars(r)["productId"]

	var req updateCartItemRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(ctx, h.log, w, err)
		return
	}

	sess, err := h.sessions.Update(ctx, sessionID(ctx), func(s *session.Session) error {
		if !s.Cart.Contains(productID) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		s.Cart.UpdateQuantity(productID, *req.Quantity)
		return nil
	})
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}
	writeSuccess(w, h.checkout.Summary(sess))
}

// RemoveCartItem drops a cart line. Removing an absent line succeeds.
func (h *httpServer) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := mux.Vars(r)["productId"]

	sess, err := h.sessions.Update(ctx, sessionID(ctx), func(s *session.Session) error {
		s.Cart.Remove(productID)
		return nil
	})
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}
	writeSuccess(w, h.checkout.Summary(sess))
}

// ClearCart empties the cart.
func (h *httpServer) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := h.sessions.Update(ctx, sessionID(ctx), func(s *session.Session) error {
		s.Cart.Clear()
		return nil
	})
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}
	writeSuccess(w, h.checkout.Summary(sess))
}
