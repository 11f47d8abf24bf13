// internal/app/features/errors/templates.go
package errors

import (
	"embed"

	"github.com/dalemusser/stratareview/internal/app/resources"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func init() { resources.RegisterPages("errors", templateFS) }
