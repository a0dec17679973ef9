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

package errors

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")

	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidPassword = errors.New("password must be at least 8 characters long and contain both letters and numbers")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidName     = errors.New("invalid name")

	ErrInvalidIdentifier = errors.New("identifier contains invalid characters")

	ErrTableAlreadyExists = errors.New("table already exists")

	ErrEmptyTableName   = errors.New("table name can't be empty")
	ErrNoTableFields    = errors.New("table definition has no fields")
	ErrUnknownFieldType = errors.New("unknown field type")
	ErrEmptyIndexFields = errors.New("index definition has no fields")

	ErrDatasetDoesNotExist = errors.New("dataset does not exist")
	ErrModelDoesNotExist   = errors.New("model does not exist")

	ErrBackupPathNotAbsolute = errors.New("backup path must be absolute")
	ErrBackupManifestMissing = errors.New("backup manifest not found")

	ErrNotConnected = errors.New("engine is not connected")
)
