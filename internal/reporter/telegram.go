package reporter

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-skyscout-automation/internal/models"
)

// Bot posts run summaries to a Telegram chat. Optional: a nil *Bot is safe
// to call, so unconfigured deployments just skip reporting.
type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

func (b *Bot) escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// SendRunSummary posts one line per terminal run plus totals.
func (b *Bot) SendRunSummary(records []*models.RunRecord) error {
	if b == nil || len(records) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("📊 *Scrape run summary*\n")

	var found, created, updated, duplicate, errs int
	for _, r := range records {
		icon := "✅"
		if r.Status == models.RunFailed {
			icon = "❌"
		}
		sb.WriteString(fmt.Sprintf("%s %s: %s\n", icon, b.escapeMarkdown(r.Source), r.Status))
		sb.WriteString(b.escapeMarkdown(fmt.Sprintf(
			"   found %d | new %d | updated %d | dup %d | err %d (%.1fs)",
			r.Found, r.New, r.Updated, r.Duplicate, r.Errors,
			float64(r.DurationMs)/1000.0)))
		sb.WriteString("\n")
		if r.ErrorDetail != "" {
			sb.WriteString(fmt.Sprintf("⚠️ %s\n", b.escapeMarkdown(r.ErrorDetail)))
		}
		found += r.Found
		created += r.New
		updated += r.Updated
		duplicate += r.Duplicate
		errs += r.Errors
	}

	sb.WriteString(b.escapeMarkdown(fmt.Sprintf(
		"Total: found %d, new %d, updated %d, duplicate %d, errors %d",
		found, created, updated, duplicate, errs)))

	msg := tgbotapi.NewMessage(b.chatID, sb.String())
	msg.ParseMode = "MarkdownV2"
	_, err := b.api.Send(msg)
	return err
}

// SendError reports a fatal failure (engine unavailable, config broken).
func (b *Bot) SendError(err error) error {
	if b == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}
