// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/stratareview/internal/app/system/dashcache"
	"github.com/dalemusser/stratareview/internal/app/system/events"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backend connections created in ConnectDB and closed in
// Shutdown.
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Cache holds computed dashboards. Nil when Redis is not configured;
	// a nil *dashcache.Cache is safe to use.
	Cache *dashcache.Cache

	// Publisher emits operator actions and catalog changes. events.Nop
	// when no Kafka brokers are configured.
	Publisher events.Publisher
}
