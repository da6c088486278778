// Package memory provides in-process implementations of the server
// repositories. They are used for the "memory" DSN and in tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
)

// Store holds every table behind a single lock. Values are copied in and
// out so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	users      map[int64]models.User
	emails     map[string]int64
	nextUserID int64

	tasks      map[int64]models.Task
	nextTaskID int64

	tokens      map[string]models.RefreshToken
	nextTokenID int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:  make(map[int64]models.User),
		emails: make(map[string]int64),
		tasks:  make(map[int64]models.Task),
		tokens: make(map[string]models.RefreshToken),
		now:    time.Now,
	}
}

type UserRepository struct{ s *Store }

type TaskRepository struct{ s *Store }

type RefreshTokenRepository struct{ s *Store }

func (s *Store) Users() *UserRepository                 { return &UserRepository{s: s} }
func (s *Store) Tasks() *TaskRepository                 { return &TaskRepository{s: s} }
func (s *Store) RefreshTokens() *RefreshTokenRepository { return &RefreshTokenRepository{s: s} }

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[user.Email]; ok {
		return nil, common.ErrDuplicateIdentity
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.now()
	s.users[user.ID] = *user
	s.emails[user.Email] = user.ID
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *UserRepository) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

// SetLocked flips the administrative lock on a user.
func (r *UserRepository) SetLocked(_ context.Context, id int64, locked bool) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Locked = locked
	s.users[id] = u
	return nil
}

func (r *TaskRepository) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[task.OwnerID]; !ok {
		return nil, common.ErrIdentityNotFound
	}
	s.nextTaskID++
	now := s.now()
	task.ID = s.nextTaskID
	task.CreatedAt = now
	task.UpdatedAt = now
	s.tasks[task.ID] = cloneTask(*task)
	return task, nil
}

func (r *TaskRepository) FindByIDAndOwner(_ context.Context, id, ownerID int64) (*models.Task, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	t = cloneTask(t)
	return &t, nil
}

// FindByIDAndOwnerForUpdate relies on Manager.WithTx for serialization.
func (r *TaskRepository) FindByIDAndOwnerForUpdate(ctx context.Context, id, ownerID int64) (*models.Task, error) {
	return r.FindByIDAndOwner(ctx, id, ownerID)
}

func (r *TaskRepository) Update(_ context.Context, task *models.Task) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.tasks[task.ID]
	if !ok || cur.OwnerID != task.OwnerID {
		return common.ErrorNotFound
	}
	task.CreatedAt = cur.CreatedAt
	task.UpdatedAt = s.now()
	s.tasks[task.ID] = cloneTask(*task)
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id, ownerID int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (r *TaskRepository) SetCompleted(_ context.Context, id, ownerID int64, completed bool) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	t.Completed = completed
	t.UpdatedAt = s.now()
	s.tasks[id] = t
	return nil
}

func (r *TaskRepository) List(_ context.Context, ownerID int64, filter models.TaskFilter, page models.PageRequest) ([]models.Task, int64, error) {
	s := r.s
	s.mu.RLock()
	matched := make([]*models.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerID != ownerID || !matches(&t, filter) {
			continue
		}
		c := cloneTask(t)
		matched = append(matched, &c)
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, page.CompareTasks)

	total := int64(len(matched))
	result := make([]models.Task, 0, page.Size)
	start := page.Offset()
	if start >= len(matched) {
		return result, total, nil
	}
	end := min(start+page.Size, len(matched))
	for _, t := range matched[start:end] {
		result = append(result, *t)
	}
	return result, total, nil
}

func matches(t *models.Task, f models.TaskFilter) bool {
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	if f.Keyword != nil {
		kw := strings.ToLower(*f.Keyword)
		inTitle := strings.Contains(strings.ToLower(t.Title), kw)
		inDesc := t.Description != nil && strings.Contains(strings.ToLower(*t.Description), kw)
		if !inTitle && !inDesc {
			return false
		}
	}
	return true
}

func cloneTask(t models.Task) models.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

func (r *RefreshTokenRepository) Create(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTokenID++
	s.tokens[token] = models.RefreshToken{
		ID:        s.nextTokenID,
		UserID:    userID,
		Token:     token,
		Expires:   expiresAt,
		CreatedAt: s.now(),
	}
	return nil
}

func (r *RefreshTokenRepository) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rt, ok := s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rt, nil
}

func (r *RefreshTokenRepository) Delete(_ context.Context, token string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[token]; !ok {
		return common.ErrorNotFound
	}
	delete(s.tokens, token)
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, rt := range s.tokens {
		if rt.Expired(now) {
			delete(s.tokens, k)
			n++
		}
	}
	return n, nil
}
