package server

import (
	"net/http"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/pricing"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/session"
	"github.com/shopspring/decimal"
)

type financingRequest struct {
	DurationMonths int              `json:"duration_months" validate:"omitempty,gt=0"`
	InitialDeposit *decimal.Decimal `json:"initial_deposit"`
}

type financingResponse struct {
	Quote     pricing.FinancingQuote `json:"quote"`
	Durations []int                  `json:"durations"`
}

type placeOrderRequest struct {
	Kind dal.OrderKind `json:"kind" validate:"required,oneof=cash credit"`
}

// GetCheckoutSummary returns subtotal, tax, shipping and total for the cart.
func (h *httpServer) GetCheckoutSummary(w http.ResponseWriter, r *http.Request) {
	h.GetCart(w, r)
}

// GetFinancing returns the credit simulation stored on the session.
func (h *httpServer) GetFinancing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := h.sessions.Get(ctx, sessionID(ctx))
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}
	quote, err := h.checkout.Financing(sess)
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}
	writeSuccess(w, financingResponse{Quote: quote, Durations: h.checkout.Durations()})
}

// PutFinancing changes the credit duration and/or deposit. A refused
// deposit leaves the stored simulation untouched.
func (h *httpServer) PutFinancing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req financingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(ctx, h.log, w, err)
		return
	}

	var quote pricing.FinancingQuote
	_, err := h.sessions.Update(ctx, sessionID(ctx), func(s *session.Session) error {
		q, err := h.checkout.SetFinancing(s, req.DurationMonths, req.InitialDeposit)
		if err != nil {
			return err
		}
		quote = q
		return nil
	})
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}
	writeSuccess(w, financingResponse{Quote: quote, Durations: h.checkout.Durations()})
}

// PlaceOrder submits the cart as a cash or credit order for the caller.
func (h *httpServer) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, err := h.identity(r)
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}

	var req placeOrderRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(ctx, h.log, w, err)
		return
	}

	sess, err := h.sessions.Get(ctx, sessionID(ctx))
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}

	order, err := h.checkout.PlaceOrder(ctx, caller, sess, req.Kind)
	if err != nil {
		writeError(ctx, h.log, w, domainError(err))
		return
	}

	logCtx := h.log.WithFields(ctx, map[string]any{
		"order_id":    order.ID,
		"customer_id": caller.CustomerID,
		"kind":        string(order.Kind),
	})
	h.log.Info(logCtx, "order.placed")
	writeSuccessStatus(w, http.StatusCreated, order)
}

// GetOrders lists the caller's orders.
func (h *httpServer) GetOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.identity(r)
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	orders, err := h.orders.Orders(ctx, caller.Token, caller.CustomerID)
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	writeSuccess(w, orders)
}

// GetCustomer returns the caller's profile.
func (h *httpServer) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.identity(r)
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	customer, err := h.customers.Customer(ctx, caller.Token, caller.CustomerID)
	if err != nil {
		writeError(ctx, h.log, w, err)
		return
	}
	writeSuccess(w, customer)
}
