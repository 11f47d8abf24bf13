// Package indexes declares the console's Mongo indexes and reconciles them at
// startup.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type index struct {
	name    string
	keys    bson.D
	unique  bool
	partial bson.M
	ttl     time.Duration
}

func (ix index) model() mongo.IndexModel {
	o := options.Index().SetName(ix.name)
	if ix.unique {
		o.SetUnique(true)
	}
	if ix.partial != nil {
		o.SetPartialFilterExpression(ix.partial)
	}
	if ix.ttl > 0 {
		o.SetExpireAfterSeconds(int32(ix.ttl / time.Second))
	}
	return mongo.IndexModel{Keys: ix.keys, Options: o}
}

func asc(fields ...string) bson.D {
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if strings.HasPrefix(f, "-") {
			d = append(d, bson.E{Key: f[1:], Value: -1})
		} else {
			d = append(d, bson.E{Key: f, Value: 1})
		}
	}
	return d
}

// catalog lists every index by collection. A leading "-" sorts descending.
var catalog = []struct {
	coll    string
	indexes []index
}{
	{"profiles", []index{
		// reviewer profiles created by the app may lack an email
		{name: "uniq_profiles_email", keys: asc("email"), unique: true, partial: bson.M{"email": bson.M{"$type": "string"}}},
		{name: "idx_profiles_created_id", keys: asc("-created_at", "-_id")},
		{name: "idx_profiles_admin_blocked_created", keys: asc("is_admin", "is_blocked", "-created_at")},
		{name: "idx_profiles_displaynameci", keys: asc("display_name_ci")},
	}},
	{"videos", []index{
		{name: "idx_videos_created_id", keys: asc("-created_at", "-_id")},
		{name: "idx_videos_active_created", keys: asc("is_active", "-created_at")},
		{name: "idx_videos_titleci", keys: asc("title_ci")},
		{name: "idx_videos_youtube", keys: asc("youtube_id")},
	}},
	{"reviews", []index{
		{name: "idx_reviews_completed", keys: asc("-completed_at")},
		{name: "idx_reviews_user_completed", keys: asc("user_id", "-completed_at")},
		{name: "idx_reviews_video", keys: asc("video_id")},
	}},
	{"daily_video_lists", []index{
		{name: "uniq_lists_user_date", keys: asc("user_id", "list_date"), unique: true},
		{name: "idx_lists_user_created", keys: asc("user_id", "-created_at")},
		{name: "idx_lists_completed", keys: asc("is_completed")},
	}},
	{"balance_adjustments", []index{
		{name: "idx_adjustments_user_created", keys: asc("user_id", "-created_at")},
	}},
	{"audit_logs", []index{
		{name: "idx_audit_created", keys: asc("-created_at")},
		{name: "idx_audit_category_created", keys: asc("category", "-created_at")},
		{name: "idx_audit_user_created", keys: asc("user_id", "-created_at")},
		{name: "idx_audit_actor_created", keys: asc("actor_id", "-created_at")},
	}},
	{"rate_limits", []index{
		{name: "uniq_ratelimit_email", keys: asc("email"), unique: true},
		{name: "idx_ratelimit_ttl", keys: asc("last_attempt"), ttl: 24 * time.Hour},
	}},
}

// EnsureAll creates missing indexes and rebuilds any whose uniqueness
// changed. It is idempotent. Failures are collected across collections so
// startup reports all of them at once.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var errs []error
	for _, c := range catalog {
		if err := reconcile(ctx, db.Collection(c.coll), c.indexes); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.coll, err))
		}
	}
	return errors.Join(errs...)
}

type existing struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique"`
}

func signature(keys bson.D) string {
	var b strings.Builder
	for i, e := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%v", e.Key, e.Value)
	}
	return b.String()
}

func reconcile(ctx context.Context, coll *mongo.Collection, want []index) error {
	log := zap.L().With(zap.String("collection", coll.Name()))

	have := map[string]existing{}
	var list []existing
	cur, err := coll.Indexes().List(ctx)
	if err == nil {
		err = cur.All(ctx, &list)
	}
	if err != nil {
		// create everything; CreateOne is a no-op for an identical index
		log.Warn("could not read existing indexes", zap.Error(err))
	}
	for _, ex := range list {
		have[signature(ex.Key)] = ex
	}

	var errs []error
	for _, ix := range want {
		sig := signature(ix.keys)
		if ex, ok := have[sig]; ok {
			if ex.Unique == ix.unique {
				continue
			}
			log.Info("rebuilding index", zap.String("name", ex.Name), zap.Bool("unique", ix.unique))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Errorf("drop %s: %w", ex.Name, err))
				continue
			}
		}
		if _, err := coll.Indexes().CreateOne(ctx, ix.model()); err != nil {
			if ix.unique && mongo.IsDuplicateKeyError(err) {
				err = errors.New("duplicate values prevent a unique index")
			}
			errs = append(errs, fmt.Errorf("create %s: %w", ix.name, err))
			continue
		}
		log.Info("index created", zap.String("name", ix.name), zap.String("keys", sig))
	}
	return errors.Join(errs...)
}
