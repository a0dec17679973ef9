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

package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	apierrors "github.com/omnipro/omniprodb/errors"
	"github.com/omnipro/omniprodb/proto"
	"github.com/omnipro/omniprodb/security"
)

func TestBuildCreateTable(t *testing.T) {
	san := security.NewSanitizer()

	stmts, err := BuildCreateTable(san, &proto.CreateTableRequest{
		Name: "events",
		Fields: []*proto.FieldDefinition{
			{Name: "id", FieldType: "uuid", Required: true},
			{Name: "payload", FieldType: "object"},
			{Name: "created_at", FieldType: "datetime", Required: true},
		},
		Indexes: []*proto.IndexDefinition{
			{Name: "events_id", Fields: []string{"id"}, Unique: true},
			{Name: "events_created", Fields: []string{"created_at", "id"}},
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"CREATE TABLE events (id uuid NOT NULL, payload jsonb, created_at timestamptz NOT NULL)",
		"CREATE UNIQUE INDEX events_id ON events (id)",
		"CREATE INDEX events_created ON events (created_at, id)",
	}, stmts)
}

func TestBuildCreateTableFieldOrderPreserved(t *testing.T) {
	san := security.NewSanitizer()

	stmts, err := BuildCreateTable(san, &proto.CreateTableRequest{
		Name: "t",
		Fields: []*proto.FieldDefinition{
			{Name: "zeta", FieldType: "string"},
			{Name: "alpha", FieldType: "int"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "CREATE TABLE t (zeta text, alpha bigint)", stmts[0])
}

func TestBuildCreateTableRejectsBadInput(t *testing.T) {
	san := security.NewSanitizer()

	_, err := BuildCreateTable(san, &proto.CreateTableRequest{Name: ""})
	require.ErrorIs(t, err, apierrors.ErrEmptyTableName)

	_, err = BuildCreateTable(san, &proto.CreateTableRequest{Name: "t"})
	require.ErrorIs(t, err, apierrors.ErrNoTableFields)

	_, err = BuildCreateTable(san, &proto.CreateTableRequest{
		Name:   "t",
		Fields: []*proto.FieldDefinition{{Name: "f", FieldType: "geometry"}},
	})
	require.ErrorIs(t, err, apierrors.ErrUnknownFieldType)

	_, err = BuildCreateTable(san, &proto.CreateTableRequest{
		Name:   `t"; DROP TABLE users`,
		Fields: []*proto.FieldDefinition{{Name: "f", FieldType: "string"}},
	})
	require.ErrorIs(t, err, apierrors.ErrInvalidIdentifier)

	_, err = BuildCreateTable(san, &proto.CreateTableRequest{
		Name:    "t",
		Fields:  []*proto.FieldDefinition{{Name: "f", FieldType: "string"}},
		Indexes: []*proto.IndexDefinition{{Name: "idx"}},
	})
	require.ErrorIs(t, err, apierrors.ErrEmptyIndexFields)
}
