package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/online-school/internal/domain/entity"
	"github.com/oksasatya/online-school/internal/domain/repository"
)

// UserRepository keeps accounts in process memory. It mirrors the
// constraints of the SQL schema (unique usernames, one profile per user,
// cascading deletes) and is used by tests and local runs without Postgres.
type UserRepository struct {
	mu       sync.RWMutex
	accounts map[string]*entity.Account
	byName   map[string]string
	nextID   int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		accounts: make(map[string]*entity.Account),
		byName:   make(map[string]string),
	}
}

func (r *UserRepository) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *UserRepository) CreateAccount(ctx context.Context, a *entity.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[a.User.Username]; taken {
		return repository.ErrUsernameTaken
	}
	if a.User.ID == "" {
		a.User.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.User.CreatedAt, a.User.UpdatedAt = now, now

	switch p := a.Profile.(type) {
	case *entity.StudentProfile:
		p.ID, p.UserID = r.id(), a.User.ID
	case *entity.TutorProfile:
		p.ID, p.UserID = r.id(), a.User.ID
	case *entity.AdminProfile:
		p.ID, p.UserID = r.id(), a.User.ID
	}

	r.accounts[a.User.ID] = cloneAccount(a)
	r.byName[a.User.Username] = a.User.ID
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := a.User
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.RLock()
	id, ok := r.byName[username]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[username]
	return ok, nil
}

func (r *UserRepository) GetAccount(ctx context.Context, userID string) (*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *UserRepository) tutor(userID string) (*entity.TutorProfile, error) {
	a, ok := r.accounts[userID]
	if !ok {
		return nil, repository.ErrNotTutor
	}
	t, ok := a.Tutor()
	if !ok {
		return nil, repository.ErrNotTutor
	}
	return t, nil
}

func (r *UserRepository) AddEducation(ctx context.Context, userID string, e *entity.TutorEducation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.tutor(userID)
	if err != nil {
		return err
	}
	e.ID, e.TutorID, e.CreatedAt = r.id(), t.ID, time.Now().UTC()
	t.Education = append(t.Education, *e)
	return nil
}

func (r *UserRepository) AddCertification(ctx context.Context, userID string, c *entity.TutorCertification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.tutor(userID)
	if err != nil {
		return err
	}
	c.ID, c.TutorID, c.CreatedAt = r.id(), t.ID, time.Now().UTC()
	t.Certifications = append(t.Certifications, *c)
	return nil
}

func (r *UserRepository) SetTutorVerified(ctx context.Context, userID string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.tutor(userID)
	if err != nil {
		return err
	}
	t.IsVerified = verified
	r.accounts[userID].User.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byName, a.User.Username)
	delete(r.accounts, id)
	return nil
}

// Len reports how many users are stored.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

func cloneAccount(a *entity.Account) *entity.Account {
	out := &entity.Account{User: a.User}
	switch p := a.Profile.(type) {
	case *entity.StudentProfile:
		cp := *p
		out.Profile = &cp
	case *entity.TutorProfile:
		cp := *p
		cp.Education = append([]entity.TutorEducation(nil), p.Education...)
		cp.Certifications = append([]entity.TutorCertification(nil), p.Certifications...)
		out.Profile = &cp
	case *entity.AdminProfile:
		cp := *p
		out.Profile = &cp
	}
	return out
}

var _ repository.UserRepository = (*UserRepository)(nil)
