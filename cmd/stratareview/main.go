// cmd/stratareview/main.go
package main

import (
	"context"
	"log"

	"github.com/dalemusser/stratareview/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
	"github.com/joho/godotenv"
)

func main() {
	// Local overrides for development; missing files are fine.
	_ = godotenv.Load(".env.local")

	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
