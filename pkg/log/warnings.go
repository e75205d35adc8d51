package log

import (
	"github.com/cedricrommel/AISIP-MBDA-1/pkg/errors"
)

// CaptureWarnings routes the pkg/errors warning system through the global
// structured logger. Typed warnings with zerolog marshalers render as
// structured objects instead of flat strings.
//
// CLI entry points call this once at startup.
func CaptureWarnings() {
	errors.SetZerologWarnFunc(func(warning error) {
		GetLoggerWithName("warnings").Warn(warning.Error(), ErrAttrKey, warning)
	})
}
