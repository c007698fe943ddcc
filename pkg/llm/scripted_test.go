package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/guidegen/pkg/llm"
)

func TestScriptedGenerator_SplitsText(t *testing.T) {
	text := "# Magnifier\n\nZoom in with **Control + Plus**.\n"
	gen := llm.NewScriptedGenerator(llm.ScriptedConfig{Text: text, FragmentSize: 5})

	chunks, err := gen.Stream(context.Background(), llm.Prompt{})
	require.NoError(t, err)

	count := 0
	var got strings.Builder
	for c := range chunks {
		require.NoError(t, c.Err)
		assert.LessOrEqual(t, len([]rune(c.Text)), 5)
		got.WriteString(c.Text)
		count++
	}
	assert.Equal(t, text, got.String())
	assert.Greater(t, count, 1)

	full, err := gen.Generate(context.Background(), llm.Prompt{})
	require.NoError(t, err)
	assert.Equal(t, text, full)
}

func TestScriptedGenerator_Offline(t *testing.T) {
	gen, err := llm.NewFromConfig(llm.ProviderConfig{Provider: llm.ProviderOffline})
	require.NoError(t, err)

	text, err := gen.Generate(context.Background(), llm.Prompt{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "# Offline Learning Guide"))
}

func TestScriptedGenerator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := llm.NewScriptedGenerator(llm.ScriptedConfig{})
	_, err := gen.Generate(ctx, llm.Prompt{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFromConfig_UnknownProvider(t *testing.T) {
	_, err := llm.NewFromConfig(llm.ProviderConfig{Provider: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestScriptedGenerator_StreamError(t *testing.T) {
	boom := errors.New("boom")
	gen := llm.NewScriptedGenerator(llm.ScriptedConfig{Fragments: []string{"a", "b", "c"}, StreamErr: boom, FailAfter: 2})

	chunks, err := gen.Stream(context.Background(), llm.Prompt{})
	require.NoError(t, err)

	text, err := collect(t, chunks)
	assert.Equal(t, "ab", text)
	assert.ErrorIs(t, err, boom)
}
