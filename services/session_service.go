package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pawhome_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// sessionLifetime bounds how long a token stays valid. Expired sessions
// are rejected and removed on the next guarded call.
const sessionLifetime = 24 * time.Hour

// SessionService owns the token -> principal mapping in the Sessions
// table. Every protected operation revalidates against the store, so a
// session deleted mid-lifetime is rejected on the very next call.
type SessionService struct {
	Dynamo DynamoAPI
}

// sessionExpired reports whether the session's lifetime has elapsed.
// Rows written before expiresAt existed fall back to createdAt; a row
// with neither timestamp parseable is treated as expired.
func sessionExpired(s *models.Session, now time.Time) bool {
	if t, err := time.Parse(time.RFC3339, s.ExpiresAt); err == nil {
		return now.After(t)
	}
	if t, err := time.Parse(time.RFC3339, s.CreatedAt); err == nil {
		return now.After(t.Add(sessionLifetime))
	}
	return true
}

func sessionKey(token string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"token": &types.AttributeValueMemberS{Value: token},
	}
}

// CreateSession binds a fresh token to a snapshot of the user and stores it.
func (ss *SessionService) CreateSession(ctx context.Context, user *models.User) (*models.Session, error) {
	now := time.Now()
	session := models.Session{
		Token:     uuid.New().String(),
		Principal: user.Snapshot(),
		CreatedAt: now.Format(time.RFC3339),
		ExpiresAt: now.Add(sessionLifetime).Format(time.RFC3339),
	}

	ctx, cancel := storeContext(ctx)
	defer cancel()
	if err := ss.Dynamo.PutItem(ctx, models.SessionsTable, session); err != nil {
		return nil, translateStoreErr(err)
	}
	return &session, nil
}

// ValidateSession is the guard in front of every protected operation.
// No bound principal -> ErrUnauthenticated; a non-empty allowedRoles set
// that excludes the principal's role -> ErrForbidden. Read-only: nothing
// is cached between calls.
func (ss *SessionService) ValidateSession(ctx context.Context, token string, allowedRoles ...models.Role) (*models.Principal, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	ctx, cancel := storeContext(ctx)
	defer cancel()
	item, err := ss.Dynamo.GetItem(ctx, models.SessionsTable, sessionKey(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, translateStoreErr(err)
	}

	var session models.Session
	if err := attributevalue.UnmarshalMap(item, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	if sessionExpired(&session, time.Now()) {
		if err := ss.Dynamo.DeleteItem(ctx, models.SessionsTable, sessionKey(token)); err != nil {
			log.Printf("Failed to delete expired session: %v", err)
		}
		return nil, ErrUnauthenticated
	}

	if len(allowedRoles) > 0 {
		allowed := false
		for _, role := range allowedRoles {
			if session.Principal.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, ErrForbidden
		}
	}

	return &session.Principal, nil
}

// RefreshPrincipal re-puts the session with a fresh snapshot of the user.
// Called after a profile update so the next guarded call sees the new
// attributes without forcing a re-login.
func (ss *SessionService) RefreshPrincipal(ctx context.Context, token string, user *models.User) error {
	if token == "" {
		return ErrUnauthenticated
	}

	ctx, cancel := storeContext(ctx)
	defer cancel()
	item, err := ss.Dynamo.GetItem(ctx, models.SessionsTable, sessionKey(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnauthenticated
		}
		return translateStoreErr(err)
	}

	var session models.Session
	if err := attributevalue.UnmarshalMap(item, &session); err != nil {
		return fmt.Errorf("failed to parse session: %w", err)
	}
	if sessionExpired(&session, time.Now()) {
		return ErrUnauthenticated
	}

	session.Principal = user.Snapshot()
	if err := ss.Dynamo.PutItem(ctx, models.SessionsTable, session); err != nil {
		return translateStoreErr(err)
	}
	return nil
}

// DestroySession removes the token from the store. Destroying an unknown
// token is not an error; logout is idempotent.
func (ss *SessionService) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	ctx, cancel := storeContext(ctx)
	defer cancel()
	if err := ss.Dynamo.DeleteItem(ctx, models.SessionsTable, sessionKey(token)); err != nil {
		return translateStoreErr(err)
	}
	return nil
}
