// Package telegram is an optional chat front end: a Telegram chat linked
// to an account talks to the same pipeline as the HTTP chat endpoint.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/auth"
	"github.com/xaenox/taskchat/internal/chat"
	"github.com/xaenox/taskchat/internal/storage"
	"github.com/xaenox/taskchat/internal/tasks"
	"go.uber.org/zap"
)

// session binds a Telegram chat to an account and remembers the running
// conversation. Bindings live in process memory only; a restart requires
// a new /link.
type session struct {
	userID         uuid.UUID
	conversationID *int64
}

type Bot struct {
	api     *tgbotapi.BotAPI
	store   storage.Storage
	chat    *chat.Service
	logger  *zap.Logger
	mu      sync.Mutex
	session map[int64]*session
}

func New(token string, store storage.Storage, chatService *chat.Service, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:     api,
		store:   store,
		chat:    chatService,
		logger:  logger,
		session: make(map[int64]*session),
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	sess, linked := b.sessionFor(message.Chat.ID)
	if !linked {
		b.sendMessage(message.Chat.ID, "You're not linked to an account yet. Use /link email password first.")
		return
	}

	result, _, err := b.chat.ProcessMessage(ctx, sess.userID, sess.conversationID, message.Text)
	if err != nil {
		b.logger.Error("Failed to process chat message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendMessage(message.Chat.ID, "⚠️ Sorry, I couldn't process that. Please try again.")
		return
	}

	b.setConversation(message.Chat.ID, result.ConversationID)

	b.sendMessage(message.Chat.ID, result.Response)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "link":
		b.handleLink(ctx, message)
	case "unlink":
		b.handleUnlink(message)
	case "tasks":
		b.handleTasks(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	welcome := `Welcome to the Todo Assistant! ✅
Link your account with /link email password, then just tell me things like
'add task buy bread' or 'show my tasks'.

Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start the bot
/help - Show this help message
/link email password - Link this chat to your account
/unlink - Unlink this chat
/tasks - Show your latest tasks

Anything else you type is handled by the assistant:
'add task buy milk', 'remember to call mom', 'show my tasks'.`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleLink(ctx context.Context, message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())
	if len(args) != 2 {
		b.sendMessage(message.Chat.ID, "Usage: /link email password")
		return
	}
	email := strings.ToLower(args[0])

	user, err := b.store.GetUserByEmail(ctx, email)
	if err != nil || !auth.VerifyPassword(args[1], user.HashedPassword) {
		b.sendMessage(message.Chat.ID, "Invalid email or password.")
		return
	}

	b.mu.Lock()
	b.session[message.Chat.ID] = &session{userID: user.ID}
	b.mu.Unlock()

	b.logger.Info("Telegram chat linked",
		zap.Int64("chat_id", message.Chat.ID),
		zap.String("user_id", user.ID.String()))
	b.sendMessage(message.Chat.ID, fmt.Sprintf("Linked to %s. You can talk to me now!", user.Email))
}

func (b *Bot) handleUnlink(message *tgbotapi.Message) {
	b.mu.Lock()
	delete(b.session, message.Chat.ID)
	b.mu.Unlock()
	b.sendMessage(message.Chat.ID, "This chat is no longer linked to an account.")
}

func (b *Bot) handleTasks(ctx context.Context, message *tgbotapi.Message) {
	sess, linked := b.sessionFor(message.Chat.ID)
	if !linked {
		b.sendMessage(message.Chat.ID, "You're not linked to an account yet. Use /link email password first.")
		return
	}

	recent, err := tasks.NewService(b.store, sess.userID, b.logger).ListRecent(ctx, 5)
	if err != nil {
		b.logger.Error("Failed to list tasks",
			zap.Error(err),
			zap.String("user_id", sess.userID.String()))
		b.sendMessage(message.Chat.ID, "⚠️ Sorry, I couldn't retrieve your tasks.")
		return
	}

	if len(recent) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any tasks in your list yet.")
		return
	}

	lines := make([]string, len(recent))
	for i, task := range recent {
		lines[i] = fmt.Sprintf("• %s [%s]", task.Title, task.Status)
	}
	b.sendMessage(message.Chat.ID, "Here are your latest tasks:\n"+strings.Join(lines, "\n"))
}

// sessionFor snapshots the binding under the lock. Handlers run one
// goroutine per update, so callers work on the copy and write back via
// setConversation instead of mutating the shared entry.
func (b *Bot) sessionFor(chatID int64) (session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sess, ok := b.session[chatID]; ok {
		return *sess, true
	}
	return session{}, false
}

// setConversation records the running conversation for a linked chat. A
// no-op when the chat was unlinked in the meantime.
func (b *Bot) setConversation(chatID, conversationID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sess, ok := b.session[chatID]; ok {
		sess.conversationID = &conversationID
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
