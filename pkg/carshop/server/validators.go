package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
	pkgerrors "github.com/nekruzvatanshoev/carshop/pkg/carshop/errors"
	"github.com/nekruzvatanshoev/carshop/pkg/carshop/search"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

var validate = dal.NewValidator()

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dest any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return "is invalid"
}

// validateFilter reads the catalog search parameters.
func validateFilter(vars url.Values) (search.Filter, error) {
	minPrice, err := validatePrice(vars, "min_price")
	if err != nil {
		return search.Filter{}, err
	}
	maxPrice, err := validatePrice(vars, "max_price")
	if err != nil {
		return search.Filter{}, err
	}
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		return search.Filter{}, pkgerrors.New(pkgerrors.CodeValidation, "min_price must not exceed max_price").
			WithDetails(map[string]any{"min_price": minPrice.String(), "max_price": maxPrice.String()})
	}

	sort, err := validateSort(vars)
	if err != nil {
		return search.Filter{}, err
	}

	return search.Filter{
		Query:     vars.Get("q"),
		Category:  strings.TrimSpace(vars.Get("category")),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		OptionIDs: validateOptions(vars),
		Sort:      sort,
	}, nil
}

func validatePrice(vars url.Values, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(vars.Get(key))
	if raw == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("%s must be a number", key)).
			WithDetails(map[string]any{"field": key})
	}
	if price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a positive number", key)).
			WithDetails(map[string]any{"field": key})
	}
	return &price, nil
}

func validateSort(vars url.Values) (search.SortOrder, error) {
	order := search.SortOrder(strings.ToLower(strings.TrimSpace(vars.Get("sort"))))
	if !order.Valid() {
		return search.SortNone, pkgerrors.New(pkgerrors.CodeValidation, "sort must be asc or desc").
			WithDetails(map[string]any{"field": "sort"})
	}
	return order, nil
}

// validateOptions accepts repeated or comma separated option ids.
func validateOptions(vars url.Values) []string {
	var ids []string
	for _, raw := range vars["options"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
