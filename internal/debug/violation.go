// Package debug reports caller contract violations. Build with -tags debug to
// turn every violation into a panic.
package debug

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/momentics/ccio/api"
)

// Violation reports a broken caller contract. It panics in debug builds;
// otherwise it logs at error level and returns an error wrapping
// api.ErrContract so the caller can fail the operation.
func Violation(log logrus.FieldLogger, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if Enabled {
		panic("ccio: contract violation: " + msg)
	}
	if log != nil {
		log.Error("contract violation: " + msg)
	}
	return fmt.Errorf("%w: %s", api.ErrContract, msg)
}
