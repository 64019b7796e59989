package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tutornotes/internal/codes"
	"tutornotes/internal/core"
	"tutornotes/internal/services"
	"tutornotes/internal/vocab"
)

const chatID int64 = 42

type fakeAPI struct {
	sent []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("nothing sent")
	}
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("last sent is %T, want MessageConfig", f.sent[len(f.sent)-1])
	}
	return msg.Text
}

func (f *fakeAPI) lastDocument(t *testing.T) tgbotapi.DocumentConfig {
	t.Helper()
	doc, ok := f.sent[len(f.sent)-1].(tgbotapi.DocumentConfig)
	if !ok {
		t.Fatalf("last sent is %T, want DocumentConfig", f.sent[len(f.sent)-1])
	}
	return doc
}

type fakeNotes struct {
	req services.NoteRequest
	err error
}

func (f *fakeNotes) Generate(_ context.Context, req services.NoteRequest) (*services.NoteResult, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &services.NoteResult{
		Path: "/tmp/Emma_Nov_2025.pdf",
		Note: core.IssuedNote{Student: "Emma", Total: 3375},
	}, nil
}

type fakeVocab struct {
	student string
	entries []vocab.Entry
}

func (f *fakeVocab) WriteVocabulary(_ context.Context, student string, entries []vocab.Entry, _ time.Time) (string, error) {
	f.student, f.entries = student, entries
	return "/tmp/review_notes_" + student + ".pdf", nil
}

type fakeChatter struct{ err error }

func (f fakeChatter) Chat(_ context.Context, msg string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "echo: " + msg, nil
}

func newTestBot(t *testing.T, opts Options) (*Bot, *fakeAPI) {
	t.Helper()
	table, err := codes.Default()
	if err != nil {
		t.Fatal(err)
	}
	opts.Codes = table
	if opts.InputDir == "" {
		opts.InputDir = t.TempDir()
	}
	api := &fakeAPI{}
	b := New(api, opts)
	b.now = func() time.Time { return time.Date(2025, 11, 24, 10, 0, 0, 0, time.UTC) }
	b.fetch = func(_ context.Context, url string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("Date,Amount\n1 Nov,1500\n")), nil
	}
	return b, api
}

func text(s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: s}}
}

func command(s string) tgbotapi.Update {
	u := text(s)
	name := strings.SplitN(s, " ", 2)[0]
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}}
	return u
}

func document(name string) tgbotapi.Update {
	u := text("")
	u.Message.Document = &tgbotapi.Document{FileID: "id-" + name, FileName: name, FileSize: 64}
	return u
}

func TestTuitionConversation(t *testing.T) {
	notes := &fakeNotes{}
	b, api := newTestBot(t, Options{Notes: notes})
	ctx := context.Background()

	b.HandleUpdate(ctx, command("/tuition"))
	b.HandleUpdate(ctx, document("JS-Emma-11.csv"))
	if got := api.lastText(t); !strings.Contains(got, "JS-Emma-11.csv") {
		t.Fatalf("reply = %q", got)
	}
	if _, err := os.Stat(filepath.Join(b.opts.InputDir, "JS-Emma-11.csv")); err != nil {
		t.Fatalf("file not saved: %v", err)
	}

	b.HandleUpdate(ctx, document("XX-Emma-11.csv"))
	if got := api.lastText(t); !strings.Contains(got, "Cannot use") {
		t.Fatalf("reply = %q", got)
	}
	b.HandleUpdate(ctx, document("JS-Emma-9.csv"))

	b.HandleUpdate(ctx, command("/done"))
	b.HandleUpdate(ctx, text("Thanks|See you"))

	if len(notes.req.Files) != 2 || notes.req.Notes[1] != "See you" {
		t.Fatalf("request = %+v", notes.req)
	}
	doc := api.lastDocument(t)
	if doc.Caption != "Emma: $3,375 HKD" {
		t.Fatalf("caption = %q", doc.Caption)
	}
	if b.session(chatID).state != stateIdle {
		t.Fatalf("state = %v, want idle", b.session(chatID).state)
	}
}

func TestDocumentSizeLimit(t *testing.T) {
	tests := []struct {
		name     string
		fileSize int
		body     int
		wantSave bool
	}{
		{"reported size over limit", maxUploadBytes + 1, 64, false},
		{"unreported size over limit", 0, maxUploadBytes + 1, false},
		{"unreported size at limit", 0, maxUploadBytes, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, api := newTestBot(t, Options{Notes: &fakeNotes{}})
			b.fetch = func(_ context.Context, _ string) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(strings.Repeat("x", tt.body))), nil
			}
			ctx := context.Background()
			b.HandleUpdate(ctx, command("/tuition"))

			u := document("JS-Emma-11.csv")
			u.Message.Document.FileSize = tt.fileSize
			b.HandleUpdate(ctx, u)

			_, statErr := os.Stat(filepath.Join(b.opts.InputDir, "JS-Emma-11.csv"))
			if saved := statErr == nil; saved != tt.wantSave {
				t.Fatalf("file saved = %v, want %v", saved, tt.wantSave)
			}
			if saved := len(b.session(chatID).files) == 1; saved != tt.wantSave {
				t.Fatalf("session files = %v", b.session(chatID).files)
			}
			if !tt.wantSave && !strings.Contains(api.lastText(t), "too large") {
				t.Fatalf("reply = %q", api.lastText(t))
			}
		})
	}
}

func TestTuitionGenerateFailure(t *testing.T) {
	notes := &fakeNotes{err: &core.FileError{File: "SS-Emma-10.csv", Stage: core.StageTotal, Err: core.ErrInvalidAmount}}
	b, api := newTestBot(t, Options{Notes: notes})
	ctx := context.Background()

	b.HandleUpdate(ctx, command("/tuition"))
	b.HandleUpdate(ctx, command("/done"))
	if got := api.lastText(t); got != "No files received yet." {
		t.Fatalf("reply = %q", got)
	}
	b.HandleUpdate(ctx, document("SS-Emma-10.csv"))
	b.HandleUpdate(ctx, command("/done"))
	b.HandleUpdate(ctx, command("/skip"))

	if got := api.lastText(t); !strings.Contains(got, "SS-Emma-10.csv") {
		t.Fatalf("reply = %q", got)
	}
	if s := b.session(chatID); s.state != stateTuitionFiles || len(s.files) != 0 {
		t.Fatalf("session = %+v", s)
	}
	if notes.req.Notes != nil {
		t.Fatalf("skip should send no notes, got %v", notes.req.Notes)
	}
}

func TestVocabConversation(t *testing.T) {
	writer := &fakeVocab{}
	b, api := newTestBot(t, Options{Vocab: writer})
	ctx := context.Background()

	b.HandleUpdate(ctx, command("/vocab"))
	b.HandleUpdate(ctx, text("Emma"))
	b.HandleUpdate(ctx, text("apple"))
	if got := api.lastText(t); !strings.Contains(got, "Format:") {
		t.Fatalf("reply = %q", got)
	}
	if b.session(chatID).state != stateVocabList {
		t.Fatal("invalid list should keep the session waiting for a list")
	}

	b.HandleUpdate(ctx, text("apple,n,蘋果;run,v"))
	if writer.student != "Emma" || len(writer.entries) != 2 {
		t.Fatalf("writer got %q %+v", writer.student, writer.entries)
	}
	if doc := api.lastDocument(t); doc.Caption != "Emma: Nov 2025 Week 5" {
		t.Fatalf("caption = %q", doc.Caption)
	}
}

func TestChat(t *testing.T) {
	tests := []struct {
		name    string
		chatter Chatter
		input   tgbotapi.Update
		want    string
	}{
		{"not configured", nil, command("/chat hello"), "Chat is not configured."},
		{"reply", fakeChatter{}, command("/chat hello there"), "echo: hello there"},
		{"idle text", fakeChatter{}, text("hi"), "echo: hi"},
		{"failure", fakeChatter{err: errors.New("quota")}, command("/chat hi"), "Sorry, I could not answer that right now."},
		{"usage", fakeChatter{}, command("/chat"), "Usage: /chat <message>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, api := newTestBot(t, Options{Chatter: tt.chatter})
			b.HandleUpdate(context.Background(), tt.input)
			if got := api.lastText(t); got != tt.want {
				t.Fatalf("reply = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCancelResetsSession(t *testing.T) {
	b, api := newTestBot(t, Options{})
	ctx := context.Background()
	b.HandleUpdate(ctx, command("/vocab"))
	b.HandleUpdate(ctx, command("/cancel"))
	if b.session(chatID).state != stateIdle {
		t.Fatal("cancel should reset the session")
	}
	b.HandleUpdate(ctx, document("JS-Emma-11.csv"))
	if got := api.lastText(t); got != "Use /tuition before sending files." {
		t.Fatalf("reply = %q", got)
	}
}

func TestRunStopsOnClosedChannel(t *testing.T) {
	b, api := newTestBot(t, Options{})
	updates := make(chan tgbotapi.Update, 1)
	updates <- command("/start")
	close(updates)
	if err := b.Run(context.Background(), updates); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := api.lastText(t); got != helpText {
		t.Fatalf("reply = %q", got)
	}
}

func TestDescribeError(t *testing.T) {
	err := fmt.Errorf("wrap: %w", core.ErrNoFiles)
	if got := describeError(err); got != "No files to process." {
		t.Fatalf("describeError() = %q", got)
	}
}
