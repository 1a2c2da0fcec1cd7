package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jheinrich-dev/campusplan/internal/logger"
	"github.com/jheinrich-dev/campusplan/internal/markalert"
	"github.com/jheinrich-dev/campusplan/internal/metrics"
)

// Commands registered with Telegram on startup.
var botCommands = []tgbotapi.BotCommand{
	{Command: "show", Description: "Alle Prüfungen anzeigen"},
	{Command: "add", Description: "Eine Prüfung hinzufügen"},
	{Command: "remove", Description: "Eine Prüfung entfernen"},
	{Command: "clear", Description: "Alle Prüfungen entfernen"},
	{Command: "cancel", Description: "Command abbrechen"},
}

// How long one long poll for updates may block, in seconds.
const updateTimeout = 30

// Bot runs the Telegram update loop and sends result notifications.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	metrics *metrics.Metrics
	log     *logger.Logger
}

// New connects to the Telegram API and registers the command menu.
func New(token string, handler *Handler, m *metrics.Metrics, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to Telegram: %w", err)
	}

	bot := &Bot{
		api:     api,
		handler: handler,
		metrics: m,
		log:     log.WithModule("bot"),
	}
	if _, err := api.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		return nil, fmt.Errorf("registering bot commands: %w", err)
	}
	return bot, nil
}

// Run processes incoming updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(cfg)

	b.log.Info("Bot launched")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				b.log.Info("Update channel closed")
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorf("Panic while handling update: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.Message == nil {
			return
		}
		// Acknowledge the press so the client stops its spinner.
		if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			b.log.WithError(err).Warn("Callback couldn't be acknowledged")
		}

		chatID := query.Message.Chat.ID
		b.metrics.RecordBotEvent("callback")
		resp := b.handler.HandleCallback(ctx, chatID, query.Data)
		b.send(chatID, resp, query.Message.MessageID)

	case update.Message != nil && update.Message.IsCommand():
		chatID := update.Message.Chat.ID
		b.metrics.RecordBotEvent("command")
		resp := b.handler.HandleCommand(ctx, chatID, update.Message.Command())
		b.send(chatID, resp, update.Message.MessageID)

	case update.Message != nil && update.Message.Text != "":
		chatID := update.Message.Chat.ID
		b.metrics.RecordBotEvent("text")
		resp := b.handler.HandleText(ctx, chatID, update.Message.Text)
		b.send(chatID, resp, update.Message.MessageID)
	}
}

// send delivers the response messages and, when requested, deletes the
// triggering message. Deletion is best effort; in group chats the bot may
// lack the right to delete foreign messages.
func (b *Bot) send(chatID int64, resp Response, triggerMessageID int) {
	for _, msg := range resp.Messages {
		if _, err := b.api.Send(msg); err != nil {
			b.log.WithError(err).WithChatID(chatID).Error("Message couldn't be sent")
		}
	}
	if resp.DeleteTrigger {
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, triggerMessageID)); err != nil {
			b.log.WithError(err).WithChatID(chatID).Warn("Message couldn't be deleted")
		}
	}
}

// NotifyChanges sends one chart per changed exam to the subscribed chat.
func (b *Bot) NotifyChanges(chatID int64, changes []markalert.Change) {
	for _, change := range changes {
		png, err := markalert.RenderChart(change)
		if err != nil {
			b.log.WithError(err).WithChatID(chatID).Error("Result chart couldn't be rendered")
			b.metrics.RecordNotification("error")
			continue
		}

		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
			Name:  change.Exam.Key() + ".png",
			Bytes: png,
		})
		photo.Caption = fmt.Sprintf("Neues Ergebnis für %s!", change.Exam.Key())

		if _, err := b.api.Send(photo); err != nil {
			b.log.WithError(err).WithChatID(chatID).Error("Notification couldn't be sent")
			b.metrics.RecordNotification("error")
			continue
		}
		b.metrics.RecordNotification("success")
	}
}
