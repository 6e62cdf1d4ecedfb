// internal/app/system/query/query.go
//
// Package query is a small typed predicate builder covering the fixed set
// of match operations the stores and composed views actually use: equals,
// not-equals, one-of, and date-range. Predicates compile to bson filters;
// there is intentionally no open-ended expression language.
package query

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Predicate is one field condition.
type Predicate struct {
	field string
	expr  any
}

// Eq matches field == value. Eq(field, nil) matches null/missing, which
// is how "not soft-deleted" is expressed against deleted_at.date.
func Eq(field string, value any) Predicate {
	return Predicate{field: field, expr: value}
}

// Ne matches field != value.
func Ne(field string, value any) Predicate {
	return Predicate{field: field, expr: bson.M{"$ne": value}}
}

// In matches field ∈ values.
func In[T any](field string, values []T) Predicate {
	return Predicate{field: field, expr: bson.M{"$in": values}}
}

// DateRange matches from <= field < until. A zero bound is open.
func DateRange(field string, from, until time.Time) Predicate {
	rng := bson.M{}
	if !from.IsZero() {
		rng["$gte"] = from
	}
	if !until.IsZero() {
		rng["$lt"] = until
	}
	return Predicate{field: field, expr: rng}
}

// And combines predicates into one bson filter. Duplicate fields overwrite
// earlier ones; callers never need $or in this domain.
func And(preds ...Predicate) bson.M {
	m := bson.M{}
	for _, p := range preds {
		m[p.field] = p.expr
	}
	return m
}

// Alive matches records that are not soft-deleted.
func Alive() Predicate {
	return Eq("deleted_at.date", nil)
}

// Active matches records that are operationally on and not soft-deleted.
func Active() bson.M {
	return And(Eq("is_active", true), Alive())
}
