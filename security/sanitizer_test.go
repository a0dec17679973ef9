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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	s := NewSanitizer()

	got, err := s.SanitizeInput("SELECT name FROM users WHERE role = @role")
	require.NoError(t, err)
	require.Equal(t, "SELECT name FROM users WHERE role = @role", got)

	_, err = s.SanitizeInput("SELECT 1; DROP TABLE users")
	require.Error(t, err)

	_, err = s.SanitizeInput("SELECT 1 -- comment")
	require.Error(t, err)

	// blocked patterns are matched case-insensitively
	_, err = s.SanitizeInput("delete from users")
	require.Error(t, err)
}

func TestSanitizeIdentifier(t *testing.T) {
	s := NewSanitizer()

	got, err := s.SanitizeIdentifier("user_events")
	require.NoError(t, err)
	require.Equal(t, "user_events", got)

	_, err = s.SanitizeIdentifier("user-events")
	require.Error(t, err)

	_, err = s.SanitizeIdentifier("1users")
	require.Error(t, err)

	_, err = s.SanitizeIdentifier(`users"; DROP TABLE x`)
	require.Error(t, err)
}
