// control/logging_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLogrusLevel(t *testing.T) {
	assert.Equal(t, logrus.FatalLevel, LogrusLevel(LevelCrit))
	assert.Equal(t, logrus.WarnLevel, LogrusLevel(LevelWarn))
	assert.Equal(t, logrus.InfoLevel, LogrusLevel(LevelNotice))
	assert.Equal(t, logrus.InfoLevel, LogrusLevel(LevelInfo))
	assert.Equal(t, logrus.DebugLevel, LogrusLevel(LevelDebug))
	assert.Equal(t, logrus.TraceLevel, LogrusLevel(LevelVVerb))
	assert.Equal(t, logrus.TraceLevel, LogrusLevel(99))
}

func TestModuleLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LevelInfo, &buf)
	ModuleLogger(l, "ccio::tcp").Info("listening")
	ModuleLogger(l, "ccio::tcp").Debug("hidden")
	assert.Contains(t, buf.String(), "module=\"ccio::tcp\"")
	assert.Contains(t, buf.String(), "listening")
	assert.NotContains(t, buf.String(), "hidden")

	ModuleLogger(nil, "ccio::event").Error("dropped")
}
