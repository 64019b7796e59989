package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tutornotes/internal/core"
	applog "tutornotes/internal/log"
	"tutornotes/internal/services"
	"tutornotes/internal/tuition"
	"tutornotes/internal/vocab"
)

const maxUploadBytes = 5 << 20

var errFileTooLarge = errors.New("file too large")

const helpText = `Commands:
/vocab - make a vocabulary review sheet
/tuition - send tuition CSV files and get a debit note
/chat <message> - talk to Molly
/cancel - start over`

// HandleUpdate routes one update to the chat's session.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	ctx = applog.WithLogger(ctx, b.logger.With(applog.FieldChatID, chatID))
	s := b.session(chatID)

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, s, msg)
		return
	}
	if msg.Document != nil {
		b.handleDocument(ctx, chatID, s, msg.Document)
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch s.state {
	case stateVocabName:
		if text == "" {
			b.reply(ctx, chatID, "Please send the student's name.")
			return
		}
		s.student = text
		s.state = stateVocabList
		b.reply(ctx, chatID, "Send the word list as word,pos[,meaning]; separated by semicolons.")
	case stateVocabList:
		b.handleVocabList(ctx, chatID, s, text)
	case stateTuitionFiles:
		b.reply(ctx, chatID, "Send CSV files as documents, then /done.")
	case stateTuitionNotes:
		b.generateNote(ctx, chatID, s, services.ParseNotes(text))
	default:
		if b.opts.Chatter != nil && text != "" {
			b.chat(ctx, chatID, text)
			return
		}
		b.reply(ctx, chatID, helpText)
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, s *session, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		s.reset()
		b.reply(ctx, chatID, helpText)
	case "cancel":
		s.reset()
		b.reply(ctx, chatID, "Cancelled.")
	case "vocab":
		s.reset()
		s.state = stateVocabName
		b.reply(ctx, chatID, "Student name?")
	case "tuition":
		s.reset()
		s.state = stateTuitionFiles
		b.reply(ctx, chatID, "Send the tuition CSV files (CODE-Student-Month.csv), then /done.")
	case "done":
		if s.state != stateTuitionFiles {
			b.reply(ctx, chatID, "Nothing to finish. Use /tuition first.")
			return
		}
		if len(s.files) == 0 {
			b.reply(ctx, chatID, "No files received yet.")
			return
		}
		s.state = stateTuitionNotes
		b.reply(ctx, chatID, "Any notes? Separate pages with |, or /skip.")
	case "skip":
		if s.state != stateTuitionNotes {
			b.reply(ctx, chatID, helpText)
			return
		}
		b.generateNote(ctx, chatID, s, nil)
	case "chat":
		text := strings.TrimSpace(msg.CommandArguments())
		if text == "" {
			b.reply(ctx, chatID, "Usage: /chat <message>")
			return
		}
		b.chat(ctx, chatID, text)
	default:
		b.reply(ctx, chatID, helpText)
	}
}

func (b *Bot) handleDocument(ctx context.Context, chatID int64, s *session, doc *tgbotapi.Document) {
	if s.state != stateTuitionFiles {
		b.reply(ctx, chatID, "Use /tuition before sending files.")
		return
	}
	name := filepath.Base(doc.FileName)
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		b.reply(ctx, chatID, fmt.Sprintf("%s is not a CSV file.", name))
		return
	}
	if _, err := tuition.ParseFilename(name, b.opts.Codes); err != nil {
		b.reply(ctx, chatID, fmt.Sprintf("Cannot use %s: %v", name, err))
		return
	}
	if doc.FileSize > maxUploadBytes {
		b.reply(ctx, chatID, fmt.Sprintf("%s is too large.", name))
		return
	}
	if err := b.download(ctx, doc.FileID, name); err != nil {
		if errors.Is(err, errFileTooLarge) {
			b.reply(ctx, chatID, fmt.Sprintf("%s is too large.", name))
			return
		}
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to download file",
			applog.FieldOperation, applog.OpDownload, applog.FieldFile, name, applog.FieldError, err)
		b.reply(ctx, chatID, fmt.Sprintf("Could not download %s, please send it again.", name))
		return
	}
	s.addFile(name)
	b.reply(ctx, chatID, fmt.Sprintf("Got %s (%d file(s)). Send more or /done.", name, len(s.files)))
}

func (b *Bot) download(ctx context.Context, fileID, name string) error {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("file url: %w", err)
	}
	body, err := b.fetch(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(b.opts.InputDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(b.opts.InputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	// Telegram may report a zero FileSize, so the byte count is checked here too.
	n, err := io.Copy(f, io.LimitReader(body, maxUploadBytes+1))
	if err == nil && n > maxUploadBytes {
		err = errFileTooLarge
	}
	if err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (b *Bot) generateNote(ctx context.Context, chatID int64, s *session, notes map[int]string) {
	res, err := b.opts.Notes.Generate(ctx, services.NoteRequest{Files: s.files, Notes: notes})
	if err != nil {
		// Files stay on disk; a corrected upload under the same name replaces them.
		s.state = stateTuitionFiles
		s.files = nil
		b.reply(ctx, chatID, describeError(err)+"\nSend the files again, then /done.")
		return
	}
	s.reset()
	caption := fmt.Sprintf("%s: %s", res.Note.Student, core.FormatTotal(res.Note.Total))
	if err := b.sendDocument(ctx, chatID, res.Path, caption); err != nil {
		b.reply(ctx, chatID, "The debit note was created but could not be sent.")
	}
}

func (b *Bot) handleVocabList(ctx context.Context, chatID int64, s *session, text string) {
	entries, err := vocab.ParseList(text)
	if err != nil {
		b.reply(ctx, chatID, fmt.Sprintf("%v\nFormat: word,pos[,meaning]; word,pos; ...", err))
		return
	}
	if b.opts.Filler != nil {
		entries, err = b.opts.Filler.Fill(ctx, entries)
		if err != nil {
			b.reply(ctx, chatID, "Looking up meanings was interrupted, please send the list again.")
			return
		}
	}
	path, err := b.opts.Vocab.WriteVocabulary(ctx, s.student, entries, b.now())
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to write vocabulary sheet",
			applog.FieldOperation, applog.OpRender, applog.FieldStudent, s.student, applog.FieldError, err)
		b.reply(ctx, chatID, "Could not create the review sheet, please try again.")
		return
	}
	student := s.student
	s.reset()
	_ = b.sendDocument(ctx, chatID, path, fmt.Sprintf("%s: %s", student, vocab.Title(b.now())))
}

func (b *Bot) chat(ctx context.Context, chatID int64, text string) {
	if b.opts.Chatter == nil {
		b.reply(ctx, chatID, "Chat is not configured.")
		return
	}
	if !b.limiter.Allow(chatID) {
		b.reply(ctx, chatID, "Too many messages, please wait a minute.")
		return
	}
	answer, err := b.opts.Chatter.Chat(ctx, text)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Chat failed", applog.FieldOperation, applog.OpChat, applog.FieldError, err)
		b.reply(ctx, chatID, "Sorry, I could not answer that right now.")
		return
	}
	b.reply(ctx, chatID, answer)
}

// describeError turns pipeline failures into a message for the tutor.
func describeError(err error) string {
	var fe *core.FileError
	if errors.As(err, &fe) {
		return fmt.Sprintf("Problem with %s (%s): %v", fe.File, fe.Stage, fe.Err)
	}
	if errors.Is(err, core.ErrNoFiles) {
		return "No files to process."
	}
	return fmt.Sprintf("Could not create the debit note: %v", err)
}
