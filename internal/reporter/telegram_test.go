package reporter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-skyscout-automation/internal/models"
)

func TestNewBot_UnconfiguredReturnsNil(t *testing.T) {
	bot, err := NewBot("", 0)
	require.NoError(t, err)
	assert.Nil(t, bot)
}

func TestNilBotIsSafe(t *testing.T) {
	var bot *Bot
	assert.NoError(t, bot.SendRunSummary([]*models.RunRecord{{Source: "avjobsearch"}}))
	assert.NoError(t, bot.SendError(fmt.Errorf("boom")))
}

func TestEscapeMarkdown(t *testing.T) {
	b := &Bot{}
	assert.Equal(t, `First Officer \- A320 \(Dublin\)`, b.escapeMarkdown("First Officer - A320 (Dublin)"))
	assert.Equal(t, `score 4\.0 \| new`, b.escapeMarkdown("score 4.0 | new"))
}
