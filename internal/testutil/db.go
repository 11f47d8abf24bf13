// Package testutil holds the Mongo, HTTP and template helpers shared by the
// package tests.
package testutil

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/stratareview/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Tests use STRATAREVIEW_TEST_MONGO_URI when set, else a local server.
const defaultTestURI = "mongodb://localhost:27017"

var (
	mongoOnce   sync.Once
	mongoClient *mongo.Client
	mongoErr    error

	unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

func sharedClient() (*mongo.Client, error) {
	mongoOnce.Do(func() {
		uri := os.Getenv("STRATAREVIEW_TEST_MONGO_URI")
		if uri == "" {
			uri = defaultTestURI
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Client().ApplyURI(uri).
			SetMaxPoolSize(100).
			SetServerSelectionTimeout(5 * time.Second)
		if mongoClient, mongoErr = mongo.Connect(ctx, opts); mongoErr != nil {
			return
		}
		mongoErr = mongoClient.Ping(ctx, nil)
	})
	return mongoClient, mongoErr
}

// SetupTestDB returns an empty database private to t, with the production
// indexes in place. Schema validators are left off so tests can plant
// malformed documents. It is dropped when t finishes.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	client, err := sharedClient()
	if err != nil {
		t.Fatalf("connect test MongoDB: %v", err)
	}

	db := client.Database(dbName(t.Name()))
	ctx, cancel := TestContext()
	defer cancel()

	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop %s: %v", db.Name(), err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("drop %s: %v", db.Name(), err)
		}
	})
	return db
}

// dbName fits Mongo's 63 byte limit. Long subtest names keep a readable
// prefix and a hash of the whole name so siblings stay distinct.
func dbName(testName string) string {
	name := "srv_" + unsafeName.ReplaceAllString(testName, "_")
	if len(name) <= 63 {
		return name
	}
	sum := sha1.Sum([]byte(testName))
	return name[:50] + "_" + hex.EncodeToString(sum[:6])
}

// TestContext bounds one test's database calls.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
