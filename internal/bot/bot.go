package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskflow/internal/apperr"
	"taskflow/internal/client"
	"taskflow/internal/datasync"
	"taskflow/internal/model"
)

const (
	cbTogglePrefix = "toggle:"
	cbDeletePrefix = "delete:"
)

// messenger is the part of tgbotapi.BotAPI the bot sends through.
type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type subscriberStore interface {
	Upsert(ctx context.Context, chatID int64, firstName, username string) (*model.Subscriber, error)
	Remove(ctx context.Context, chatID int64) (bool, error)
	ListAll(ctx context.Context) ([]model.Subscriber, error)
}

type digester interface {
	Summary(ctx context.Context, now time.Time) (string, error)
}

type statsSource interface {
	Stats(ctx context.Context) (*model.Stats, error)
}

// Deps are the collaborators of a Bot. Task and category state goes through
// the task and category collections, subscribers and digests through the local store.
type Deps struct {
	Tasks       *datasync.Tasks
	Categories  *datasync.Categories
	Stats       statsSource
	Subscribers subscriberStore
	Digest      digester
	Logger      *slog.Logger
}

// Bot aggregates Telegram API with the TaskFlow collections.
type Bot struct {
	api *tgbotapi.BotAPI
	out messenger
	Deps
}

func New(token string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	b := newBot(api, deps)
	b.api = api
	b.Logger.Info("bot authorized", "account", api.Self.UserName)
	return b, nil
}

func newBot(out messenger, deps Deps) *Bot {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Bot{out: out, Deps: deps}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.Logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.Logger.Error("handle callback", "error", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.Logger.Error("handle message", "error", err)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands. Try /help.")
	}

	b.Logger.Info("command", "chat", msg.Chat.ID, "command", msg.Command(), "args", msg.CommandArguments())
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "stop":
		return b.handleStop(ctx, chatID)
	case "help":
		return b.sendText(chatID, helpText)
	case "tasks":
		return b.handleTasks(ctx, chatID)
	case "add":
		return b.handleAdd(ctx, chatID, args)
	case "done":
		return b.handleDone(ctx, chatID, args)
	case "delete":
		return b.handleDelete(ctx, chatID, args)
	case "categories":
		return b.handleCategories(ctx, chatID)
	case "stats":
		return b.handleStats(ctx, chatID)
	case "digest":
		return b.handleDigest(ctx, chatID)
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /tasks — list tasks\n" +
	"• /add &lt;categoryId&gt; &lt;title&gt; — add a task\n" +
	"• /done &lt;id&gt; — mark a task completed\n" +
	"• /delete &lt;id&gt; — delete a task\n" +
	"• /categories — list categories\n" +
	"• /stats — dashboard numbers\n" +
	"• /digest — send the digest now\n" +
	"• /stop — stop the periodic digest"

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.Subscribers.Upsert(ctx, msg.Chat.ID, msg.From.FirstName, msg.From.UserName); err != nil {
		return err
	}
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("👋 Hi, %s! You will get a periodic TaskFlow digest here.\n\n%s", escape(name), helpText))
}

func (b *Bot) handleStop(ctx context.Context, chatID int64) error {
	removed, err := b.Subscribers.Remove(ctx, chatID)
	if err != nil {
		return err
	}
	if !removed {
		return b.sendText(chatID, "You were not subscribed.")
	}
	return b.sendText(chatID, "🔕 Digest stopped. Send /start to subscribe again.")
}

func (b *Bot) handleTasks(ctx context.Context, chatID int64) error {
	if err := b.Tasks.Refresh(ctx); err != nil {
		return b.sendText(chatID, escape(b.Tasks.Err()))
	}
	tasks := b.Tasks.Items()
	if len(tasks) == 0 {
		return b.sendText(chatID, "No tasks yet. Add one with /add &lt;categoryId&gt; &lt;title&gt;.")
	}

	msg := tgbotapi.NewMessage(chatID, renderTaskList(tasks))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = taskKeyboard(tasks)
	_, err := b.out.Send(msg)
	return err
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) error {
	idPart, title, _ := strings.Cut(args, " ")
	categoryID, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || strings.TrimSpace(title) == "" {
		return b.sendText(chatID, "Usage: /add &lt;categoryId&gt; &lt;title&gt;")
	}

	task, err := b.Tasks.Create(ctx, model.TaskInput{Title: title, CategoryID: uint(categoryID)})
	if err != nil {
		return b.sendText(chatID, failureText(b.Tasks.Err(), err))
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Added #%d %s", task.ID, escape(task.Title)))
}

func (b *Bot) handleDone(ctx context.Context, chatID int64, args string) error {
	id, ok := parseID(args)
	if !ok {
		return b.sendText(chatID, "Usage: /done &lt;id&gt;")
	}
	task, err := b.lookupTask(ctx, id)
	if err != nil {
		return b.sendText(chatID, failureText(b.Tasks.Err(), err))
	}
	if task.Completed {
		return b.sendText(chatID, fmt.Sprintf("#%d is already completed.", id))
	}
	return b.toggle(ctx, chatID, task)
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, args string) error {
	id, ok := parseID(args)
	if !ok {
		return b.sendText(chatID, "Usage: /delete &lt;id&gt;")
	}
	if err := b.Tasks.Delete(ctx, id); err != nil {
		return b.sendText(chatID, failureText(b.Tasks.Err(), err))
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Task #%d deleted.", id))
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64) error {
	if err := b.Categories.Refresh(ctx); err != nil {
		return b.sendText(chatID, escape(b.Categories.Err()))
	}
	categories := b.Categories.Items()
	if len(categories) == 0 {
		return b.sendText(chatID, "No categories yet.")
	}
	return b.sendText(chatID, renderCategories(categories))
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) error {
	stats, err := b.Stats.Stats(ctx)
	if err != nil {
		b.Logger.Error("fetch stats", "error", err)
		return b.sendText(chatID, "Failed to fetch statistics")
	}
	return b.sendText(chatID, renderStats(stats))
}

func (b *Bot) handleDigest(ctx context.Context, chatID int64) error {
	text, err := b.Digest.Summary(ctx, time.Now())
	if err != nil {
		b.Logger.Error("build digest", "error", err)
		return b.sendText(chatID, "Failed to build the digest.")
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if _, err := b.out.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.Logger.Warn("callback ack", "error", err)
	}

	chatID := cb.Message.Chat.ID
	switch {
	case strings.HasPrefix(cb.Data, cbTogglePrefix):
		id, ok := parseID(strings.TrimPrefix(cb.Data, cbTogglePrefix))
		if !ok {
			return nil
		}
		task, err := b.lookupTask(ctx, id)
		if err != nil {
			return b.sendText(chatID, failureText(b.Tasks.Err(), err))
		}
		return b.toggle(ctx, chatID, task)
	case strings.HasPrefix(cb.Data, cbDeletePrefix):
		return b.handleDelete(ctx, chatID, strings.TrimPrefix(cb.Data, cbDeletePrefix))
	}
	return nil
}

// SendDigests sends the current digest to every subscriber.
func (b *Bot) SendDigests(ctx context.Context) error {
	subs, err := b.Subscribers.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return nil
	}
	text, err := b.Digest.Summary(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(sub.ChatID, text); err != nil {
			b.Logger.Warn("send digest", "chat", sub.ChatID, "error", err)
		}
	}
	return nil
}

func (b *Bot) toggle(ctx context.Context, chatID int64, task model.Task) error {
	updated, err := b.Tasks.ToggleComplete(ctx, task)
	if err != nil {
		return b.sendText(chatID, failureText(b.Tasks.Err(), err))
	}
	state := "reopened"
	if updated.Completed {
		state = "completed"
	}
	return b.sendText(chatID, fmt.Sprintf("%s #%d %s", taskIcon(updated), updated.ID, state))
}

// lookupTask returns the cached task, refreshing once when it is missing.
func (b *Bot) lookupTask(ctx context.Context, id uint) (model.Task, error) {
	if task, ok := b.Tasks.Get(id); ok {
		return task, nil
	}
	if err := b.Tasks.Refresh(ctx); err != nil {
		return model.Task{}, err
	}
	if task, ok := b.Tasks.Get(id); ok {
		return task, nil
	}
	return model.Task{}, apperr.NotFound("Task not found")
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.out.Send(msg)
	return err
}

// failureText prefers the server's message for a client error and otherwise
// shows the collection's fixed failure message.
func failureText(collectionErr string, err error) string {
	var apiErr *client.APIError
	var appErr *apperr.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < 500 && apiErr.Message != "":
		return "⚠️ " + escape(apiErr.Message)
	case errors.As(err, &appErr) && !errors.Is(err, apperr.ErrPersistence):
		return "⚠️ " + escape(appErr.Message)
	}
	if collectionErr == "" {
		collectionErr = "Request failed"
	}
	return "⚠️ " + escape(collectionErr)
}

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
