package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
}

func TestDefaultLoggerRoutesByLevel(t *testing.T) {
	color.NoColor = true
	var stdout, stderr bytes.Buffer
	l := NewLogger(&stdout, &stderr)

	l.Debug("hidden")
	l.Info("indexed", Fields{"entries": 3})
	l.Error(errors.New("boom"), "query failed", Fields{"pattern": "UD"})

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "[INFO] indexed entries=3")
	assert.Contains(t, stderr.String(), "[ERROR] query failed: boom pattern=UD")
}

func TestWithFieldsMergesAndSorts(t *testing.T) {
	color.NoColor = true
	var stdout bytes.Buffer
	l := NewLogger(&stdout, &stdout).WithFields(Fields{"component": "index"})
	l.SetLevel(DebugLevel)

	l.Debug("insert", Fields{"id": "a"})
	assert.Contains(t, stdout.String(), "[DEBUG] insert component=index id=a")
}

func TestSetGlobalLoggerNil(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	_, ok := GetGlobalLogger().(*NoOpLogger)
	assert.True(t, ok)
}
