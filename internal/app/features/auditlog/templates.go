// internal/app/features/auditlog/templates.go
package auditlog

import (
	"embed"

	"github.com/dalemusser/stratareview/internal/app/resources"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func init() { resources.RegisterPages("auditlog", templateFS) }
