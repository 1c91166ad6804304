// Package backend builds the store implementations the process runs on.
package backend

import (
	"wey/internal/store"
)

type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

func (t Type) Valid() bool {
	return t == Memory || t == SQLite
}

type Config struct {
	Type         Type
	SQLiteDBPath string
}

// Stores bundles the three ports plus an optional cleanup for the backend's
// resources.
type Stores struct {
	Users        store.UserDirectory
	Transactions store.TransactionStore
	Messages     store.MessageStore
	Cleanup      func() error
}
