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
	"fmt"
	"regexp"
	"strings"

	apierrors "github.com/omnipro/omniprodb/errors"
)

// Sanitizer screens raw query text and identifiers before they reach
// the engine. Identifiers get a strict charset check; query text is
// additionally scanned for statement patterns the gateway refuses to
// forward.
type Sanitizer struct {
	allowedChars    *regexp.Regexp
	identifierChars *regexp.Regexp
	blockedPatterns []string
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		allowedChars:    regexp.MustCompile(`^[a-zA-Z0-9_\-\.@\s\(\)\*,='$]+$`),
		identifierChars: regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`),
		blockedPatterns: []string{"DROP", "DELETE", "--", ";"},
	}
}

// SanitizeInput validates free-form query text. The returned string is
// the input unchanged; violations come back as errors so the caller can
// surface them in the response.
func (s *Sanitizer) SanitizeInput(input string) (string, error) {
	upper := strings.ToUpper(input)
	for _, pattern := range s.blockedPatterns {
		if strings.Contains(upper, pattern) {
			return "", fmt.Errorf("input contains blocked pattern: %s", pattern)
		}
	}

	if !s.allowedChars.MatchString(input) {
		return "", fmt.Errorf("input contains invalid characters")
	}
	return input, nil
}

// SanitizeIdentifier validates a table, column or index name.
func (s *Sanitizer) SanitizeIdentifier(identifier string) (string, error) {
	if !s.identifierChars.MatchString(identifier) {
		return "", apierrors.ErrInvalidIdentifier
	}
	return identifier, nil
}
