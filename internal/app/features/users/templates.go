// internal/app/features/users/templates.go
package users

import (
	"embed"

	"github.com/dalemusser/stratareview/internal/app/resources"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func init() { resources.RegisterPages("users", templateFS) }
