// Package storeutil holds the query pieces the list stores share.
package storeutil

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewestFirst returns find options for 1-based page of size pageSize, newest
// created_at first with _id breaking ties so pages never overlap.
func NewestFirst(pageSize, page int64) *options.FindOptions {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page < 1 {
		page = 1
	}
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)
}

// Contains matches field values containing s literally.
func Contains(field, s string) bson.M {
	return bson.M{field: bson.M{"$regex": regexp.QuoteMeta(s)}}
}

// WithIDMatch appends an _id clause to or when q is an ObjectID hex, so an id
// pasted into a search box finds its document.
func WithIDMatch(or bson.A, q string) bson.A {
	if oid, err := primitive.ObjectIDFromHex(q); err == nil {
		or = append(or, bson.M{"_id": oid})
	}
	return or
}
