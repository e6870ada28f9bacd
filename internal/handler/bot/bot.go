// Package bot turns Telegram commands into subscriber registrations and
// report requests.
package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"MarketClose/internal/domain/models"
	drepo "MarketClose/internal/domain/repository"
	"MarketClose/internal/service/telegram"
	"MarketClose/internal/usecase"
	"MarketClose/pkg/logger"
)

const (
	ReplyStart     = "Bot started, usage: /send ddmmyy"
	ReplyHelp      = "Usage: /send ddmmyy"
	ReplyAccepted  = "Thank you. Your request is being processed."
	ReplyWrongDate = "Oops! Wrong date format - please use ddmmyy."

	TextDocumentName = "market_close.txt"
)

// UpdateSource is the long-polling side of the Bot API.
type UpdateSource interface {
	Updates(ctx context.Context, offset int64) ([]telegram.Update, error)
}

// Bot dispatches incoming commands.
type Bot struct {
	messenger   drepo.Messenger
	subscribers drepo.SubscriberRepository
	dispatcher  usecase.Dispatcher
	artifacts   drepo.ArtifactStore
	allowed     map[string]struct{}
	logger      *logger.Logger
}

type Option func(*Bot)

// WithAllowedChats restricts registration and requests to the given chat ids.
// An empty list allows every chat.
func WithAllowedChats(ids []string) Option {
	return func(b *Bot) {
		if len(ids) == 0 {
			return
		}
		b.allowed = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			b.allowed[strings.TrimSpace(id)] = struct{}{}
		}
	}
}

func New(
	messenger drepo.Messenger,
	subscribers drepo.SubscriberRepository,
	dispatcher usecase.Dispatcher,
	artifacts drepo.ArtifactStore,
	l *logger.Logger,
	opts ...Option,
) *Bot {
	b := &Bot{
		messenger:   messenger,
		subscribers: subscribers,
		dispatcher:  dispatcher,
		artifacts:   artifacts,
		logger:      l.Component("bot"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// HandleUpdate processes one update. Failures are logged; nothing is returned
// to the transport so an update is never redelivered.
func (b *Bot) HandleUpdate(ctx context.Context, u telegram.Update) {
	if u.Message == nil || u.Message.Text == "" {
		return
	}
	chatID := strconv.FormatInt(u.Message.Chat.ID, 10)
	cmd, args := parseCommand(u.Message.Text)
	if cmd == "" {
		return
	}
	if !b.isAllowed(chatID) {
		b.logger.Warn("command from chat outside allow-list",
			logger.String("chat_id", chatID), logger.String("command", cmd))
		return
	}

	switch cmd {
	case "start":
		b.start(ctx, chatID)
	case "help":
		b.reply(ctx, chatID, ReplyHelp)
	case "send":
		b.send(ctx, chatID, args)
	case "txt":
		b.txt(ctx, chatID)
	default:
		b.logger.Debug("unknown command", logger.String("command", cmd))
	}
}

func (b *Bot) start(ctx context.Context, chatID string) {
	b.reply(ctx, chatID, ReplyStart)
	added, err := b.subscribers.Add(ctx, chatID)
	if err != nil {
		b.logger.Error("register subscriber", logger.String("chat_id", chatID), logger.Error(err))
		return
	}
	if added {
		b.logger.Info("subscriber registered", logger.String("chat_id", chatID))
	}
}

func (b *Bot) send(ctx context.Context, chatID string, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, ReplyWrongDate)
		return
	}
	date, err := models.ParseReportDate(args[0])
	if err != nil {
		b.reply(ctx, chatID, ReplyWrongDate)
		return
	}
	b.reply(ctx, chatID, ReplyAccepted)

	req := models.ReportRequest{Date: date, RequestedBy: chatID, Send: true}
	if err := b.dispatcher.Dispatch(ctx, req); err != nil {
		b.logger.Error("dispatch report request",
			logger.String("chat_id", chatID), logger.Date("date", date), logger.Error(err))
		return
	}
	b.logger.Info("report requested", logger.String("chat_id", chatID), logger.Date("date", date))
}

func (b *Bot) txt(ctx context.Context, chatID string) {
	rc, err := b.artifacts.OpenText(ctx)
	if err != nil {
		b.logger.Warn("no text artifact", logger.Error(err))
		return
	}
	defer rc.Close()
	if err := b.messenger.SendDocument(ctx, chatID, TextDocumentName, rc); err != nil {
		b.logger.Error("send text artifact", logger.String("chat_id", chatID), logger.Error(err))
	}
}

func (b *Bot) reply(ctx context.Context, chatID, text string) {
	if err := b.messenger.SendText(ctx, chatID, text); err != nil {
		b.logger.Error("reply failed", logger.String("chat_id", chatID), logger.Error(err))
	}
}

func (b *Bot) isAllowed(chatID string) bool {
	if b.allowed == nil {
		return true
	}
	_, ok := b.allowed[chatID]
	return ok
}

// parseCommand splits "/send@SomeBot 120522" into ("send", ["120522"]).
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd), fields[1:]
}

// Poll long-polls updates until ctx is done, waiting interval between polls.
func (b *Bot) Poll(ctx context.Context, src UpdateSource, interval time.Duration) {
	var offset int64
	t := time.NewTicker(interval)
	defer t.Stop()

	b.logger.Info("polling updates", logger.Duration("interval_ms", interval))
	for {
		updates, err := src.Updates(ctx, offset)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			b.logger.Warn("get updates failed", logger.Error(err))
		default:
			for _, u := range updates {
				b.HandleUpdate(ctx, u)
				if u.ID >= offset {
					offset = u.ID + 1
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
