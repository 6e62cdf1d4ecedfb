// internal/app/system/compose/compose.go
//
// Package compose builds the aggregation pipelines that turn normalized
// entity collections into nested, display-ready views. A composition is a
// match over the starting collection plus an ordered tree of JoinSpecs;
// each spec becomes a $lookup whose sub-pipeline applies the active-record
// filter, any nested joins, and (for one-to-one relationships) first-or-
// null singularization. Joins are emitted in declared order because later
// specs may reference fields attached by earlier ones.
package compose

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// JoinSpec describes one lookup from the current document set into From.
type JoinSpec struct {
	From         string // target collection
	LocalField   string // key on the source document
	ForeignField string // key on the target document
	As           string // field the joined records are attached under

	// ActiveOnly keeps only currently-valid rows inside the joined set:
	// is_active == true and deleted_at.date == null.
	ActiveOnly bool

	// Single reduces the joined array to its first element, or null when
	// nothing matched. First-match-wins follows store iteration order;
	// no sort is applied, deliberately.
	Single bool

	// Nested joins are applied to the joined records before they are
	// attached, enabling recursive composition (team → user → role).
	Nested []JoinSpec
}

// activeMatch is the in-pipeline form of "join only to currently-valid
// rows".
func activeMatch() bson.D {
	return bson.D{{Key: "$match", Value: bson.M{
		"is_active":       true,
		"deleted_at.date": nil,
	}}}
}

// Stages compiles one JoinSpec into its pipeline stages: the $lookup
// (with filter and nested joins in the sub-pipeline) followed by the
// optional singularize stage.
func (j JoinSpec) Stages() []bson.D {
	var sub []bson.D
	if j.ActiveOnly {
		sub = append(sub, activeMatch())
	}
	for _, n := range j.Nested {
		sub = append(sub, n.Stages()...)
	}

	lookup := bson.M{
		"from":         j.From,
		"localField":   j.LocalField,
		"foreignField": j.ForeignField,
		"as":           j.As,
	}
	if len(sub) > 0 {
		lookup["pipeline"] = sub
	}

	stages := []bson.D{{{Key: "$lookup", Value: lookup}}}
	if j.Single {
		stages = append(stages, bson.D{{Key: "$set", Value: bson.M{
			j.As: bson.M{"$ifNull": bson.A{
				bson.M{"$first": "$" + j.As},
				nil,
			}},
		}}})
	}
	return stages
}

// Pipeline assembles a full composition: match, joins in declared order,
// then sort. A nil sort applies the default listing order, created_at
// descending with _id as tiebreaker.
func Pipeline(match bson.M, sort bson.D, joins ...JoinSpec) mongo.Pipeline {
	var pipe mongo.Pipeline
	if match != nil {
		pipe = append(pipe, bson.D{{Key: "$match", Value: match}})
	}
	for _, j := range joins {
		pipe = append(pipe, j.Stages()...)
	}
	if sort == nil {
		sort = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
	pipe = append(pipe, bson.D{{Key: "$sort", Value: sort}})
	return pipe
}

// Flatten expands the embedded array at path into one document per
// element so cross-collection joins can match per element. Roots whose
// array is empty drop out here and are reassembled as empty by the
// caller.
func Flatten(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: "$" + path}}
}

// KeepActive filters flattened child documents to currently-valid ones.
func KeepActive(path string) bson.D {
	return bson.D{{Key: "$match", Value: bson.M{
		path + ".is_active":       true,
		path + ".deleted_at.date": nil,
	}}}
}

// Regroup reassembles flattened children under their root document. carry
// maps root-level field names to keep (value ignored, kept via $first);
// the children land back under path in encounter order, preserving any
// per-element fields attached between Flatten and Regroup.
func Regroup(path string, carry ...string) bson.D {
	group := bson.M{
		"_id": "$_id",
		path:  bson.M{"$push": "$" + path},
	}
	for _, f := range carry {
		group[f] = bson.M{"$first": "$" + f}
	}
	return bson.D{{Key: "$group", Value: group}}
}
