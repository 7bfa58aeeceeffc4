// Package notify delivers finished digests by chat and email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bilgisen/aidigest/internal/models"
)

// maxMessageRunes is Telegram's limit for a text message.
const maxMessageRunes = 4096

// Notice is what gets announced for one digest edition.
type Notice struct {
	Title     string
	Intro     string
	Articles  models.ArticleSet
	HTMLName  string
	HTML      []byte
	CSVName   string
	CSV       []byte
	Locations []string
}

// Notifier announces a published digest.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// Multi notifies every channel and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sender is the part of tgbotapi.BotAPI used for delivery.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	api    Sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return NewTelegramWithSender(api, chatID), nil
}

func NewTelegramWithSender(api Sender, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID}
}

// Notify sends the digest text and, when present, the CSV as a document.
func (t *Telegram) Notify(ctx context.Context, n Notice) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, FormatMessage(n))
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	if len(n.CSV) == 0 {
		return nil
	}
	doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FileBytes{Name: n.CSVName, Bytes: n.CSV})
	if _, err := t.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send telegram document: %w", err)
	}
	return nil
}

// FormatMessage renders a plain-text digest that fits one Telegram message.
func FormatMessage(n Notice) string {
	var b strings.Builder
	b.WriteString(n.Title)
	b.WriteString("\n\n")
	b.WriteString(n.Intro)
	b.WriteString("\n")

	for i, a := range n.Articles.Items() {
		fmt.Fprintf(&b, "\n%d. %s (%s)", i+1, a.Title, a.SourceName)
		if a.Link != "" {
			b.WriteString("\n" + a.Link)
		}
	}
	for _, loc := range n.Locations {
		if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
			b.WriteString("\n\n" + loc)
		}
	}

	text := b.String()
	if utf8.RuneCountInString(text) > maxMessageRunes {
		text = string([]rune(text)[:maxMessageRunes-1]) + "…"
	}
	return text
}
