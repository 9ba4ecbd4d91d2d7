package logging

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	Init("warn", "text")

	assert.Same(t, os.Stderr, Log.Out)
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	_, ok := Log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	Init("", "")

	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
	_, ok := Log.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
}
