package query

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAndCombines(t *testing.T) {
	id := primitive.NewObjectID()
	got := And(Eq("_id", id), Ne("status", "archived"))
	want := bson.M{
		"_id":    id,
		"status": bson.M{"$ne": "archived"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIn(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	got := And(In("_id", ids))
	if !reflect.DeepEqual(got["_id"], bson.M{"$in": ids}) {
		t.Errorf("got %v", got["_id"])
	}
}

func TestDateRange(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	got := And(DateRange("created_at", from, until))
	want := bson.M{"created_at": bson.M{"$gte": from, "$lt": until}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	open := And(DateRange("created_at", from, time.Time{}))
	if !reflect.DeepEqual(open["created_at"], bson.M{"$gte": from}) {
		t.Errorf("open upper bound: got %v", open["created_at"])
	}
}

func TestActiveFilter(t *testing.T) {
	got := Active()
	want := bson.M{"is_active": true, "deleted_at.date": nil}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
