package server

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/auth"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/cart"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/checkout"
	pkgerrors "github.com/nekruzvatanshoev/carshop/pkg/carshop/errors"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/pricing"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/session"
)

var errOutOfStock = errors.New("vehicle is out of stock")

// domainError maps package sentinel errors onto API error codes. Errors
// that already carry a code pass through.
func domainError(err error) error {
	if err == nil || pkgerrors.As(err) != nil {
		return err
	}

	var code pkgerrors.Code
	switch {
	case errors.Is(err, cart.ErrUnknownOption),
		errors.Is(err, cart.ErrIncompatibleOptions),
		errors.Is(err, pricing.ErrUnknownDuration),
		errors.Is(err, pricing.ErrInvalidDeposit),
		errors.Is(err, pricing.ErrDepositBelowPayment),
		errors.Is(err, checkout.ErrInvalidOrderKind),
		errors.Is(err, checkout.ErrMissingAddress):
		code = pkgerrors.CodeValidation
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrOutOfStock),
		errors.Is(err, errOutOfStock):
		code = pkgerrors.CodeConflict
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrAdminPassword):
		code = pkgerrors.CodeUnauthorized
	case errors.Is(err, auth.ErrAdminDisabled):
		code = pkgerrors.CodeForbidden
	case errors.Is(err, session.ErrNotFound):
		code = pkgerrors.CodeNotFound
	case errors.Is(err, context.DeadlineExceeded):
		code = pkgerrors.CodeDependency
	default:
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	return pkgerrors.Wrap(code, err, err.Error())
}
