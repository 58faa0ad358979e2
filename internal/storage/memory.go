package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/taskchat/internal/models"
)

// MemoryStorage is a mutex-guarded in-memory Storage, used for local runs
// and tests. Slices keep insertion order, which equals creation order, so
// time-ordered listings stay deterministic even when timestamps collide.
type MemoryStorage struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]*models.User
	usersByEmail  map[string]uuid.UUID
	tasks         []*models.Task
	categories    []*models.Category
	conversations map[int64]*models.Conversation
	messages      []*models.Message
	nextConvID    int64
	nextMsgID     int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:         make(map[uuid.UUID]*models.User),
		usersByEmail:  make(map[string]uuid.UUID),
		conversations: make(map[int64]*models.Conversation),
	}
}

func (s *MemoryStorage) Close() error {
	return nil
}

// Users

func (s *MemoryStorage) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = user
	s.usersByEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.usersByEmail[email]
	if !exists {
		return nil, ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, exists := s.users[id]; exists {
		return user, nil
	}
	return nil, ErrNotFound
}

// Tasks

func (s *MemoryStorage) CreateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *MemoryStorage) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, task := range s.tasks {
		if task.ID == taskID && task.UserID == userID {
			return task, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) ListTasks(ctx context.Context, userID uuid.UUID, filter models.TaskFilter) ([]*models.Task, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Task
	// Newest first: reverse insertion order.
	for i := len(s.tasks) - 1; i >= 0; i-- {
		task := s.tasks[i]
		if task.UserID != userID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		if filter.CategoryID != nil &&
			(task.CategoryID == nil || *task.CategoryID != *filter.CategoryID) {
			continue
		}
		matched = append(matched, task)
	}

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}

func (s *MemoryStorage) UpdateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.tasks {
		if existing.ID == task.ID && existing.UserID == task.UserID {
			task.UpdatedAt = time.Now().UTC()
			s.tasks[i] = task
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, task := range s.tasks {
		if task.ID == taskID && task.UserID == userID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Categories

func (s *MemoryStorage) CreateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now
	s.categories = append(s.categories, category)
	return nil
}

func (s *MemoryStorage) GetCategory(ctx context.Context, userID, categoryID uuid.UUID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, category := range s.categories {
		if category.ID == categoryID && category.UserID == userID {
			return category, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) ListCategories(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Category, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Category
	for i := len(s.categories) - 1; i >= 0; i-- {
		if s.categories[i].UserID == userID {
			matched = append(matched, s.categories[i])
		}
	}

	total := len(matched)
	if offset > 0 {
		if offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[offset:]
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, total, nil
}

func (s *MemoryStorage) UpdateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.categories {
		if existing.ID == category.ID && existing.UserID == category.UserID {
			category.UpdatedAt = time.Now().UTC()
			s.categories[i] = category
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) DeleteCategory(ctx context.Context, userID, categoryID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, category := range s.categories {
		if category.ID == categoryID && category.UserID == userID {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStorage) CountTasksInCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, task := range s.tasks {
		if task.CategoryID != nil && *task.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// Conversations

func (s *MemoryStorage) CreateConversation(ctx context.Context, userID uuid.UUID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextConvID++
	now := time.Now().UTC()
	conversation := &models.Conversation{
		ID:        s.nextConvID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[conversation.ID] = conversation
	return conversation, nil
}

func (s *MemoryStorage) GetConversation(ctx context.Context, id int64, userID uuid.UUID) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, exists := s.conversations[id]
	if !exists || conversation.UserID != userID {
		return nil, ErrNotFound
	}
	return conversation, nil
}

func (s *MemoryStorage) TouchConversation(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conversation, exists := s.conversations[id]; exists {
		conversation.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (s *MemoryStorage) CreateMessage(ctx context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.conversations[message.ConversationID]; !exists {
		return fmt.Errorf("conversation %d does not exist", message.ConversationID)
	}

	s.nextMsgID++
	message.ID = s.nextMsgID
	message.CreatedAt = time.Now().UTC()
	s.messages = append(s.messages, message)
	return nil
}

func (s *MemoryStorage) ListMessages(ctx context.Context, conversationID int64) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var messages []*models.Message
	for _, message := range s.messages {
		if message.ConversationID == conversationID {
			messages = append(messages, message)
		}
	}
	return messages, nil
}
