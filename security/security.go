// Copyright 2023 The OmniDB Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	apierrors "github.com/omnipro/omniprodb/errors"
	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16

	minPasswordLen = 8
	maxNameLen     = 50
)

// Manager validates user input and handles password hashing. Hashes are
// stored in PHC string format so parameters can change without
// invalidating existing records.
type Manager struct {
	emailRegex *regexp.Regexp
	nameRegex  *regexp.Regexp
	roleRegex  *regexp.Regexp
}

func NewManager() *Manager {
	return &Manager{
		emailRegex: regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`),
		nameRegex:  regexp.MustCompile(`^[a-zA-Z\s]{1,50}$`),
		roleRegex:  regexp.MustCompile(`^(admin|user|guest)$`),
	}
}

func (m *Manager) HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
	return encoded, nil
}

func (m *Manager) VerifyPassword(password, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, fmt.Errorf("malformed password hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("malformed password hash version: %w", err)
	}
	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("malformed password hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("malformed password hash salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("malformed password hash key: %w", err)
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func (m *Manager) IsValidEmail(email string) bool {
	return m.emailRegex.MatchString(email)
}

// IsValidPassword requires at least 8 alphanumeric characters with both
// a letter and a digit present.
func (m *Manager) IsValidPassword(password string) bool {
	if len(password) < minPasswordLen {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}

func (m *Manager) IsValidRole(role string) bool {
	return m.roleRegex.MatchString(role)
}

func (m *Manager) IsValidName(name string) bool {
	return m.nameRegex.MatchString(name)
}

// ValidateUserInput checks the credential pair of a new user.
func (m *Manager) ValidateUserInput(email, password string) error {
	if !m.IsValidEmail(email) {
		return apierrors.ErrInvalidEmail
	}
	if !m.IsValidPassword(password) {
		return apierrors.ErrInvalidPassword
	}
	return nil
}
