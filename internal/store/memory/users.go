// Package memory provides the default in-memory implementations of the
// store ports. Data lives for the process lifetime only.
package memory

import (
	"context"
	"sync"

	"wey/internal/core"
)

type UserDirectory struct {
	mu    sync.Mutex
	users []core.User
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{}
}

// Create checks credential and wey id uniqueness and inserts under one lock,
// closing the check-then-act window between concurrent registrations.
func (d *UserDirectory) Create(_ context.Context, u *core.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].Credential == u.Credential {
			return core.ErrCredentialTaken
		}
		if d.users[i].WeyID == u.WeyID {
			return core.ErrWeyIDTaken
		}
	}
	d.users = append(d.users, *u)
	return nil
}

func (d *UserDirectory) ByCredential(_ context.Context, credential string) (*core.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].Credential == credential {
			u := d.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (d *UserDirectory) ByID(_ context.Context, id string) (*core.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == id {
			u := d.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (d *UserDirectory) ByWeyID(_ context.Context, weyID string) (*core.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].WeyID == weyID {
			u := d.users[i]
			return &u, nil
		}
	}
	return nil, nil
}
