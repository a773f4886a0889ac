package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/online-school/internal/domain/entity"
	"github.com/oksasatya/online-school/pkg/helpers"
)

var ErrNoSession = errors.New("no active session")

// Identity is the authenticated user attached to a request.
type Identity struct {
	UserID    string
	Username  string
	Role      entity.Role
	SessionID string
}

// Session is what the cookie carries back to the browser.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionStore keeps every login as its own Redis hash
// (user:session:<uid>:<sid>), so a user may be signed in on several devices.
// The set user:sessions:<uid> indexes the open sids for DestroyUser.
type SessionStore struct {
	Redis  *redis.Client
	Tokens *helpers.SessionTokens
}

func NewSessionStore(rdb *redis.Client, tokens *helpers.SessionTokens) *SessionStore {
	return &SessionStore{Redis: rdb, Tokens: tokens}
}

func (s *SessionStore) Start(ctx context.Context, u *entity.User) (Session, error) {
	sid := uuid.NewString()
	token, exp, err := s.Tokens.Issue(u.ID, sid)
	if err != nil {
		return Session{}, fmt.Errorf("issue session token: %w", err)
	}

	key, index := helpers.KeySession(u.ID, sid), helpers.KeyUserSessions(u.ID)
	pipe := s.Redis.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    u.ID,
		"username":   u.Username,
		"role":       string(u.Role),
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.Tokens.TTL)
	pipe.SAdd(ctx, index, sid)
	pipe.Expire(ctx, index, s.Tokens.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return Session{Token: token, ExpiresAt: exp}, nil
}

func (s *SessionStore) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, ErrNoSession
	}
	data, err := s.Redis.HGetAll(ctx, helpers.KeySession(claims.UserID, claims.SessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoSession
	}
	return &Identity{
		UserID:    data["user_id"],
		Username:  data["username"],
		Role:      entity.Role(data["role"]),
		SessionID: claims.SessionID,
	}, nil
}

// Destroy ends the session named by token. Other sessions of the user stay
// open. Unknown or expired tokens are not an error.
func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil
	}
	pipe := s.Redis.TxPipeline()
	pipe.Del(ctx, helpers.KeySession(claims.UserID, claims.SessionID))
	pipe.SRem(ctx, helpers.KeyUserSessions(claims.UserID), claims.SessionID)
	_, err = pipe.Exec(ctx)
	return err
}

// DestroyUser ends every session of the user.
func (s *SessionStore) DestroyUser(ctx context.Context, userID string) error {
	index := helpers.KeyUserSessions(userID)
	sids, err := s.Redis.SMembers(ctx, index).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(sids)+1)
	for _, sid := range sids {
		keys = append(keys, helpers.KeySession(userID, sid))
	}
	keys = append(keys, index)
	return helpers.RedisDel(ctx, s.Redis, keys...)
}
