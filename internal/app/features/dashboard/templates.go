// internal/app/features/dashboard/templates.go
package dashboard

import (
	"embed"

	"github.com/dalemusser/stratareview/internal/app/resources"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func init() { resources.RegisterPages("dashboard", templateFS) }
