// Package models defines the server-side domain types shared by the service,
// repository and transport layers.
package models

import "time"

// User is a registered identity. Email is the login key and is stored as given.
type User struct {
	ID           int64
	FullName     string
	Email        string
	PasswordHash string
	// Locked marks an administratively disabled account.
	Locked    bool
	CreatedAt time.Time
}
