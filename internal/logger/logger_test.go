package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestInitWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", "json")
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestInitWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "chatty", "json")

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
