package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/models"
)

// ErrNotFound is returned for rows that do not exist or are owned by a
// different user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when registering an email that is taken.
var ErrDuplicateEmail = errors.New("email already exists")

type Storage interface {
	UserStorage
	TaskStorage
	CategoryStorage
	ConversationStorage
	Close() error
}

type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type TaskStorage interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, userID uuid.UUID, filter models.TaskFilter) ([]*models.Task, int, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
}

type CategoryStorage interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, userID, categoryID uuid.UUID) (*models.Category, error)
	ListCategories(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Category, int, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, userID, categoryID uuid.UUID) error
	CountTasksInCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}

type ConversationStorage interface {
	CreateConversation(ctx context.Context, userID uuid.UUID) (*models.Conversation, error)
	// GetConversation filters by id AND owner; a wrong owner looks exactly
	// like a missing row.
	GetConversation(ctx context.Context, id int64, userID uuid.UUID) (*models.Conversation, error)
	TouchConversation(ctx context.Context, id int64) error
	CreateMessage(ctx context.Context, message *models.Message) error
	// ListMessages returns a conversation's messages ordered by creation
	// time ascending, ties broken by id ascending.
	ListMessages(ctx context.Context, conversationID int64) ([]*models.Message, error)
}
