// Package search filters and sorts the vehicle catalog for the storefront.
package search

import (
	"strings"

	"github.com/nekruzvatanshoev/carshop/pkg/carshop/dal"
)

// Operator tells how the terms of a query combine.
type Operator string

const (
	OperatorNone Operator = "NONE"
	OperatorAnd  Operator = "AND"
	OperatorOr   Operator = "OR"
)

const (
	orConnective  = " ou "
	andConnective = " et "
)

// Query is a parsed free-text search.
type Query struct {
	Terms    []string
	Operator Operator
}

// ParseQuery lowercases raw and splits it on " ou " or, failing that, on
// " et ". The OR connective is checked first, so a query containing both is
// an OR query whose terms may still contain " et ". Terms are not trimmed.
func ParseQuery(raw string) Query {
	q := strings.ToLower(raw)
	switch {
	case strings.Contains(q, orConnective):
		return Query{Terms: strings.Split(q, orConnective), Operator: OperatorOr}
	case strings.Contains(q, andConnective):
		return Query{Terms: strings.Split(q, andConnective), Operator: OperatorAnd}
	default:
		return Query{Terms: []string{q}, Operator: OperatorNone}
	}
}

// Matches evaluates the query against the vehicle's searchable fields.
func (q Query) Matches(v dal.Vehicle) bool {
	fields := searchableFields(v)
	switch q.Operator {
	case OperatorOr:
		for _, term := range q.Terms {
			if anyFieldContains(fields, term) {
				return true
			}
		}
		return false
	case OperatorAnd:
		for _, term := range q.Terms {
			if !anyFieldContains(fields, term) {
				return false
			}
		}
		return true
	default:
		if len(q.Terms) == 0 {
			return true
		}
		return anyFieldContains(fields, q.Terms[0])
	}
}

func searchableFields(v dal.Vehicle) []string {
	fields := make([]string, 0, 3+len(v.Options))
	fields = append(fields,
		strings.ToLower(v.Name),
		strings.ToLower(v.Specification),
		strings.ToLower(v.Price.String()),
	)
	for _, opt := range v.Options {
		fields = append(fields, strings.ToLower(opt.Name))
	}
	return fields
}

func anyFieldContains(fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}
