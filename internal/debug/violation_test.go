//go:build !debug

package debug

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/ccio/api"
)

func TestViolationReturnsContractError(t *testing.T) {
	var out bytes.Buffer
	log := logrus.New()
	log.SetOutput(&out)

	err := Violation(log, "double return of %s", "conn")
	require.ErrorIs(t, err, api.ErrContract)
	assert.Contains(t, err.Error(), "double return of conn")
	assert.Contains(t, out.String(), "contract violation")
}

func TestViolationNilLogger(t *testing.T) {
	assert.ErrorIs(t, Violation(nil, "x"), api.ErrContract)
}
