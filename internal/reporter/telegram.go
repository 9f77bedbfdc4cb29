package reporter

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-founder-sourcing/internal/models"
)

type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	return NewTelegramReporterWithEndpoint(token, chatID, tgbotapi.APIEndpoint)
}

// NewTelegramReporterWithEndpoint talks to a custom Bot API server. endpoint
// is a format string taking the token and the method name.
func NewTelegramReporterWithEndpoint(token string, chatID int64, endpoint string) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return &TelegramReporter{
		bot:    bot,
		chatID: chatID,
	}, nil
}

func (t *TelegramReporter) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// NotifyProspect announces a newly stored high-priority candidate.
func (t *TelegramReporter) NotifyProspect(_ context.Context, c *models.Candidate) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatProspect(c))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if kb, ok := profileKeyboard(c); ok {
		msg.ReplyMarkup = kb
	}
	_, err := t.bot.Send(msg)
	return err
}

func (t *TelegramReporter) NotifySummary(_ context.Context, stats models.RunStats) error {
	return t.SendMessage(FormatSummary(stats))
}

func (t *TelegramReporter) SendError(errReq error) error {
	text := fmt.Sprintf("⚠️ <b>Founder sourcing error</b>:\n%s", html.EscapeString(errReq.Error()))
	return t.SendMessage(text)
}

func FormatProspect(c *models.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 <b>%s</b>\n", html.EscapeString(c.Name))
	if s := c.Score; s != nil {
		fmt.Fprintf(&b, "⭐ %d/100 (%s)\n", s.OverallScore, s.Priority)
	}
	role := strings.TrimSpace(strings.Join(nonEmpty(c.Title, c.Company), " @ "))
	if role != "" {
		fmt.Fprintf(&b, "🏢 %s\n", html.EscapeString(role))
	}
	if c.Location != "" {
		fmt.Fprintf(&b, "📍 %s\n", html.EscapeString(c.Location))
	}
	if c.Email != "" {
		fmt.Fprintf(&b, "✉️ %s\n", html.EscapeString(c.Email))
	}
	fmt.Fprintf(&b, "🔖 Source: %s\n", html.EscapeString(string(c.Source)))
	if c.Score != nil && c.Score.Reasoning != "" {
		fmt.Fprintf(&b, "\n<i>%s</i>", html.EscapeString(c.Score.Reasoning))
	}
	return b.String()
}

func FormatSummary(s models.RunStats) string {
	var b strings.Builder
	b.WriteString("📊 <b>Founder sourcing run</b>\n")
	fmt.Fprintf(&b, "Collected: %d\nNew: %d\nDuplicates: %d\nHigh priority: %d\n", s.Total, s.New, s.Duplicates, s.HighPriority)
	if s.StoreFailures > 0 || s.SourceFailures > 0 {
		fmt.Fprintf(&b, "Store failures: %d\nSource failures: %d\n", s.StoreFailures, s.SourceFailures)
	}
	if len(s.PerSource) > 0 {
		names := make([]string, 0, len(s.PerSource))
		for name := range s.PerSource {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "• %s: %d\n", html.EscapeString(name), s.PerSource[name])
		}
	}
	fmt.Fprintf(&b, "⏱ %s", s.Duration.Round(time.Second))
	return b.String()
}

func profileKeyboard(c *models.Candidate) (tgbotapi.InlineKeyboardMarkup, bool) {
	links := []struct{ label, url string }{
		{"GitHub", c.GitHubURL},
		{"Twitter", c.TwitterURL},
		{"LinkedIn", c.LinkedInURL},
		{"HN", c.HNURL},
		{"Product", c.ProductURL},
	}
	var row []tgbotapi.InlineKeyboardButton
	for _, l := range links {
		if strings.HasPrefix(l.url, "http://") || strings.HasPrefix(l.url, "https://") {
			row = append(row, tgbotapi.NewInlineKeyboardButtonURL(l.label, l.url))
		}
	}
	if len(row) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(row), true
}

func nonEmpty(vals ...string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
