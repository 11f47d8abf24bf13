// Package validators attaches JSON-Schema validators to the collections the
// console shares with the reviewer app. Validation is moderate: documents the
// app wrote before a rule existed are checked only when next updated.
package validators

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	number      = bson.A{"double", "int", "long", "decimal"}
	numberOrNil = bson.A{"double", "int", "long", "decimal", "null"}
	countOrNil  = bson.M{"bsonType": bson.A{"int", "long", "null"}, "minimum": 0}
	objectID    = bson.M{"bsonType": "objectId"}
)

func schema(required []string, props bson.M) bson.M {
	s := bson.M{"bsonType": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return bson.M{"$jsonSchema": s}
}

// collections in creation order. A nil validator only ensures existence.
var collections = []struct {
	name      string
	validator bson.M
}{
	{"profiles", schema(nil, bson.M{
		"email":           bson.M{"bsonType": bson.A{"string", "null"}},
		"display_name":    bson.M{"bsonType": bson.A{"string", "null"}},
		"password_hash":   bson.M{"bsonType": bson.A{"string", "null"}},
		"is_admin":        bson.M{"bsonType": "bool"},
		"is_blocked":      bson.M{"bsonType": "bool"},
		"balance":         bson.M{"bsonType": numberOrNil},
		"withdrawal_goal": bson.M{"bsonType": numberOrNil},
		"current_streak":  countOrNil,
		"total_reviews":   countOrNil,
	})},
	{"videos", schema([]string{"title", "youtube_id", "is_active"}, bson.M{
		"title":          bson.M{"bsonType": "string", "pattern": `\S`},
		"title_ci":       bson.M{"bsonType": "string"},
		"youtube_id":     bson.M{"bsonType": "string", "pattern": `^[A-Za-z0-9_-]{11}$`},
		"earning_amount": bson.M{"bsonType": number, "minimum": 0},
		"is_active":      bson.M{"bsonType": "bool"},
	})},
	{"reviews", schema([]string{"user_id", "video_id"}, bson.M{
		"user_id":  objectID,
		"video_id": objectID,
		"rating":   bson.M{"bsonType": bson.A{"int", "long", "null"}, "minimum": 1, "maximum": 5},
	})},
	{"daily_video_lists", schema([]string{"user_id", "list_date"}, bson.M{
		"user_id":      objectID,
		"list_date":    bson.M{"bsonType": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"is_completed": bson.M{"bsonType": "bool"},
	})},
	{"balance_adjustments", schema([]string{"user_id", "actor_id", "amount", "reason", "created_at"}, bson.M{
		"user_id":  objectID,
		"actor_id": objectID,
		"amount":   bson.M{"bsonType": number},
		"reason":   bson.M{"bsonType": "string", "minLength": 1},
	})},
	{"audit_logs", nil},
	{"rate_limits", nil},
}

// EnsureAll creates missing collections with their validators and updates
// the validators of existing ones. Servers without collMod or schema
// validation (some DocumentDB versions) get the collections only.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	var errs []error
	for _, c := range collections {
		if err := ensure(ctx, db, c.name, c.validator, present[c.name]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}

func ensure(ctx context.Context, db *mongo.Database, name string, validator bson.M, exists bool) error {
	log := zap.L().With(zap.String("collection", name))

	if !exists {
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator).SetValidationLevel("moderate").SetValidationAction("error")
		}
		err := db.CreateCollection(ctx, name, opts)
		switch {
		case err == nil:
			log.Info("collection created")
			return nil
		case alreadyExists(err):
			// created concurrently; fall through to collMod
		case validator != nil && unsupported(err):
			log.Info("schema validation unsupported, creating plain collection")
			if err := db.CreateCollection(ctx, name); err != nil && !alreadyExists(err) {
				return err
			}
			return nil
		default:
			return err
		}
	}
	if validator == nil {
		return nil
	}

	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		if unsupported(err) {
			log.Info("validator skipped, collMod unsupported")
			return nil
		}
		return err
	}
	return nil
}

func codeOrText(err error, codes []int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		for _, c := range codes {
			if ce.Code == c {
				return true
			}
		}
	}
	msg := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// NamespaceExists.
func alreadyExists(err error) bool {
	return codeOrText(err, []int32{48}, "already exists", "namespace exists")
}

// CommandNotFound or NotImplemented.
func unsupported(err error) bool {
	return codeOrText(err, []int32{59, 115}, "no such command", "not implemented", "not supported")
}
