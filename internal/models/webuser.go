// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package models

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used by NewWebUser.
var PasswordCost = 12

// WebUser is an account of the reporting web interface.
type WebUser struct {
	ID              int64  `json:"id"`
	Username        string `json:"username" validate:"required,max=100"`
	LinkedTo        string `json:"linked_to_uuid,omitempty" validate:"omitempty,uuid"`
	PassHash        string `json:"-" validate:"required"`
	PermissionLevel int    `json:"permission_level" validate:"gte=0,lte=100"`
}

// NewWebUser hashes password with bcrypt.
func NewWebUser(username, password, linkedTo string, permissionLevel int) (*WebUser, error) {
	if password == "" {
		return nil, errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &WebUser{
		Username:        username,
		LinkedTo:        linkedTo,
		PassHash:        string(hash),
		PermissionLevel: permissionLevel,
	}, nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *WebUser) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PassHash), []byte(password)) == nil
}
