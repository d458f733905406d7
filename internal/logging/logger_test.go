package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelError, ParseLevel(" error "))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLevelsFilterOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWithWriters("info", &out, &errOut)

	l.Info("mapped %d", 3)
	l.Debug("hidden")
	l.Error("boom")

	assert.Contains(t, out.String(), "INFO: ")
	assert.Contains(t, out.String(), "mapped 3")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, errOut.String(), "ERROR: ")
	assert.Contains(t, errOut.String(), "boom")
}

func TestDebugLevelAndPrintf(t *testing.T) {
	var out bytes.Buffer
	l := NewWithWriters("debug", &out, &out)

	l.Debugf("score %.3f", 0.5)
	l.Printf("done")

	assert.Contains(t, out.String(), "DEBUG: ")
	assert.Contains(t, out.String(), "score 0.500")
	assert.Contains(t, out.String(), "INFO: ")
}

func TestErrorLevelSuppressesInfo(t *testing.T) {
	var out bytes.Buffer
	l := NewWithWriters("error", &out, &out)
	l.Printf("quiet")
	assert.Empty(t, out.String())
}
