// Package bot is the Telegram front end: vocabulary sheets, tuition debit
// notes and a chat passthrough to the LLM.
package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tutornotes/internal/codes"
	applog "tutornotes/internal/log"
	"tutornotes/internal/services"
	"tutornotes/internal/vocab"
)

// telegramAPI is the part of *tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

type (
	NoteGenerator interface {
		Generate(ctx context.Context, req services.NoteRequest) (*services.NoteResult, error)
	}

	VocabWriter interface {
		WriteVocabulary(ctx context.Context, student string, entries []vocab.Entry, at time.Time) (string, error)
	}

	MeaningFiller interface {
		Fill(ctx context.Context, entries []vocab.Entry) ([]vocab.Entry, error)
	}

	Chatter interface {
		Chat(ctx context.Context, message string) (string, error)
	}
)

// Options wires the bot. Filler and Chatter are optional.
type Options struct {
	Notes    NoteGenerator
	Vocab    VocabWriter
	Filler   MeaningFiller
	Chatter  Chatter
	Codes    *codes.Table
	InputDir string
	Logger   *applog.Logger

	// ChatPerMinute caps chat requests per Telegram chat; zero means 10.
	ChatPerMinute int
}

type Bot struct {
	api      telegramAPI
	opts     Options
	fetch    func(ctx context.Context, url string) (io.ReadCloser, error)
	now      func() time.Time
	limiter  *chatLimiter
	logger   *applog.Logger
	mu       sync.Mutex
	sessions map[int64]*session
}

func New(api telegramAPI, opts Options) *Bot {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard(applog.ComponentBot)
	}
	return &Bot{
		api:      api,
		opts:     opts,
		fetch:    httpFetch,
		now:      time.Now,
		limiter:  newChatLimiter(opts.ChatPerMinute),
		logger:   logger,
		sessions: map[int64]*session{},
	}
}

// Run handles updates one at a time until ctx ends or the channel closes.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	b.logger.InfoContext(ctx, "Bot started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, u)
		}
	}
}

func httpFetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download failed: %s", resp.Status)
	}
	return resp.Body, nil
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.ErrorContext(ctx, "Failed to send message", applog.FieldChatID, chatID, applog.FieldError, err)
	}
}

func (b *Bot) sendDocument(ctx context.Context, chatID int64, path, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := b.api.Send(doc); err != nil {
		b.logger.ErrorContext(ctx, "Failed to send document", applog.FieldChatID, chatID, applog.FieldPath, path, applog.FieldError, err)
		return err
	}
	return nil
}
