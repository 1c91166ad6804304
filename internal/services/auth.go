// Package services holds the application services between the HTTP layer
// and the store ports.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wey/internal/core"
	applog "wey/internal/log"
	"wey/internal/store"
	"wey/internal/token"
)

const credentialPrefix = "wey_"

// Auth handles registration and credential login.
type Auth struct {
	users store.UserDirectory
}

func NewAuth(users store.UserDirectory) *Auth {
	return &Auth{users: users}
}

// Register creates a user with a fresh wey id. When credential is empty a
// random one is generated. The directory enforces uniqueness atomically; a
// wey id collision regenerates and retries, a credential collision surfaces
// to the caller.
func (a *Auth) Register(ctx context.Context, name, credential string, target decimal.Decimal) (*core.User, error) {
	if credential == "" {
		credential = token.Generate(credentialPrefix, 32)
	}

	u := &core.User{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(name),
		Credential:    credential,
		MonthlyTarget: target,
		CreatedAt:     time.Now(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	for {
		u.WeyID = token.GenerateWeyID()
		err := a.users.Create(ctx, u)
		if err == nil {
			break
		}
		if err == core.ErrWeyIDTaken {
			// Practically negligible at 36^8; just draw again.
			slog.InfoContext(ctx, "Wey id collision, regenerating", applog.FieldWeyID, u.WeyID)
			continue
		}
		return nil, err
	}

	slog.InfoContext(ctx, "User registered", applog.FieldUserID, u.ID, applog.FieldWeyID, u.WeyID)
	return u, nil
}

// Authenticate resolves a credential by exact match.
func (a *Auth) Authenticate(ctx context.Context, credential string) (*core.User, error) {
	if credential == "" {
		return nil, core.ErrEmptyCredential
	}
	u, err := a.users.ByCredential(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("lookup credential: %w", err)
	}
	if u == nil {
		return nil, core.ErrUnknownCredential
	}
	return u, nil
}
