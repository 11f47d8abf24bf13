// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires the console into the WAFFLE lifecycle. app.Run calls each in
// order, from configuration loading through graceful shutdown.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "stratareview",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,    // MongoDB, optional Redis and Kafka
	EnsureSchema:   EnsureSchema, // validators, indexes, bootstrap operator
	Startup:        Startup,      // templates, timeouts, background jobs
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
