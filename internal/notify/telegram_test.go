package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bilgisen/aidigest/internal/models"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func notice() Notice {
	return Notice{
		Title: "AI Weekly Digest",
		Intro: "Intro text.",
		Articles: models.NewArticleSet([]models.Article{
			{Title: "First", Link: "https://x.test/1", SourceName: "A"},
			{Title: "Second", SourceName: "B"},
		}),
		CSVName: "newsletter.csv",
		CSV:     []byte("title\n"),
	}
}

func TestTelegramNotify(t *testing.T) {
	fake := &fakeSender{}
	if err := NewTelegramWithSender(fake, 42).Notify(context.Background(), notice()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if len(fake.sent) != 2 {
		t.Fatalf("expected message and document, got %d sends", len(fake.sent))
	}

	msg, ok := fake.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected MessageConfig, got %T", fake.sent[0])
	}
	if msg.ChatID != 42 || !strings.Contains(msg.Text, "1. First (A)\nhttps://x.test/1") {
		t.Errorf("unexpected message %+v", msg)
	}

	doc, ok := fake.sent[1].(tgbotapi.DocumentConfig)
	if !ok {
		t.Fatalf("expected DocumentConfig, got %T", fake.sent[1])
	}
	if file, ok := doc.File.(tgbotapi.FileBytes); !ok || file.Name != "newsletter.csv" {
		t.Errorf("unexpected document %+v", doc.File)
	}
}

func TestTelegramNotifyError(t *testing.T) {
	boom := errors.New("boom")
	err := NewTelegramWithSender(&fakeSender{err: boom}, 1).Notify(context.Background(), notice())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestFormatMessageFitsLimit(t *testing.T) {
	n := notice()
	n.Intro = strings.Repeat("long ", 2000)
	if got := utf8.RuneCountInString(FormatMessage(n)); got > maxMessageRunes {
		t.Fatalf("message has %d runes, limit %d", got, maxMessageRunes)
	}
}

func TestMultiNotifiesEveryChannel(t *testing.T) {
	boom := errors.New("boom")
	ok, failing := &fakeSender{}, &fakeSender{err: boom}
	m := Multi{NewTelegramWithSender(failing, 1), NewTelegramWithSender(ok, 2)}

	err := m.Notify(context.Background(), notice())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(ok.sent) != 2 {
		t.Fatalf("expected the second channel to still be notified, got %d sends", len(ok.sent))
	}
}
