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

package proto

// Message types for the omnipro.db services. The wire definitions live
// under proto/idl; the Go types are maintained by hand and exchanged
// through the json codec registered in codec.go.

type User struct {
	Id        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type CreateUserResponse struct {
	Success bool   `json:"success"`
	UserId  string `json:"user_id"`
}

type GetUserRequest struct {
	UserId string `json:"user_id"`
}

type GetUserResponse struct {
	User *User `json:"user,omitempty"`
}

// UpdateUserRequest carries the new field values; empty fields keep
// their stored value.
type UpdateUserRequest struct {
	UserId string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

type UpdateUserResponse struct {
	Success bool `json:"success"`
}

type DeleteUserRequest struct {
	UserId string `json:"user_id"`
}

type DeleteUserResponse struct {
	Success bool `json:"success"`
}

type ConnectRequest struct {
	Url       string `json:"url"`
	Namespace string `json:"namespace"`
	Database  string `json:"database"`
}

type ConnectResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type QueryRequest struct {
	Query      string            `json:"query"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type QueryResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

type FieldDefinition struct {
	Name      string `json:"name"`
	FieldType string `json:"field_type"`
	Required  bool   `json:"required"`
}

type IndexDefinition struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
	Unique bool     `json:"unique"`
}

type CreateTableRequest struct {
	Name    string             `json:"name"`
	Fields  []*FieldDefinition `json:"fields"`
	Indexes []*IndexDefinition `json:"indexes,omitempty"`
}

type CreateTableResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type HealthCheckRequest struct{}

type HealthCheckResponse struct {
	Healthy bool   `json:"healthy"`
	Status  string `json:"status,omitempty"`
}

type BackupRequest struct {
	Path string `json:"path"`
}

type BackupResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type RestoreRequest struct {
	Path string `json:"path"`
}

type RestoreResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
