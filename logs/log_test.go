package logs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	prev := GetLevel()
	defer func() {
		SetLevel(prev)
		SetOutput(&bytes.Buffer{})
	}()

	SetLevel(LevelWarning)
	Info("[Test] hidden %d", 1)
	Warn("[Test] shown %d", 2)

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.True(t, strings.Contains(out, "[WARN]"))
	assert.True(t, strings.Contains(out, "[Test] shown 2"))
	assert.True(t, strings.Contains(out, "log_test.go"))
}
