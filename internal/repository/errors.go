// Package repository implements the durable store for users, subscriptions
// and watch history over MySQL.  Sentinel errors defined here let the
// service layer distinguish failure scenarios without string matching.
package repository

import "errors"

// ErrDuplicate is returned when an insert or update violates a unique key
// (username or email).  Services translate this into a conflict response.
var ErrDuplicate = errors.New("duplicate key")
