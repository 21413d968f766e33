// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

// Entities in this file represent the "truth" of the identity subsystem.
// They have no dependencies on outer layers (databases, HTTP, libraries),
// which keeps the core rules testable and resilient to technology changes.

package auth

import (
	"slices"
	"time"
)

// Role names known to the platform.
//
// Roles are plain strings stored on the account row; an account may hold
// several. They travel inside the access token as the "roles" claim.
const (
	// RoleAdmin grants unrestricted system access.
	RoleAdmin = "admin"

	// RoleUser is the default role granted at registration.
	RoleUser = "user"
)

// User represents a registered member of the Forkful platform.
//
// # Rules
//   - Email is unique and validated at the boundary.
//   - PasswordHash is produced exclusively via bcrypt in the auth service.
//   - Enabled is false until the email address is confirmed; disabled
//     accounts cannot log in.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Enabled      bool      `json:"enabled"`
	Roles        []string  `json:"roles"`
	Bio          string    `json:"bio,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}
