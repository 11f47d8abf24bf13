// internal/testutil/templates.go
package testutil

import (
	"sync"
	"testing"

	"github.com/dalemusser/stratareview/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var (
	engineOnce sync.Once
	engineErr  error
)

// MustBootTemplates installs a template engine with the shared layout and
// every feature template registered so far. Feature packages register theirs
// from init, so importing the package under test is enough. Only the first
// call boots; later calls report that result.
func MustBootTemplates(t testing.TB) {
	t.Helper()
	engineOnce.Do(func() {
		resources.LoadSharedTemplates()
		eng := templates.New(false)
		if engineErr = eng.Boot(zap.NewNop()); engineErr == nil {
			templates.UseEngine(eng, zap.NewNop())
		}
	})
	if engineErr != nil {
		t.Fatalf("boot templates: %v", engineErr)
	}
}
