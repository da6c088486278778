package models

// Principal is the authenticated caller of a request. It is produced by
// login or token verification and is never persisted.
type Principal struct {
	UserID int64
	Email  string
}
