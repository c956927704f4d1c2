package directory

import (
	"github.com/reglet-dev/reglet-idb/manager"
)

// KindName names the interface directory kind in logs and stats.
const KindName = "interface-directory"

// Default is the process-wide interface directory kind.
var Default = NewKind()

// NewKind returns an independent interface directory kind. Hosts that need
// isolation, and tests, use their own instead of Default.
func NewKind(opts ...manager.KindOption) *manager.Kind[Item] {
	return manager.NewKind(KindName, func() manager.Record[Item] { return New() }, opts...)
}
