// internal/app/features/login/templates.go
package login

import (
	"embed"

	"github.com/dalemusser/stratareview/internal/app/resources"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func init() { resources.RegisterPages("login", templateFS) }
