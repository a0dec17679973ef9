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
	"context"
	"fmt"
	"strings"

	apierrors "github.com/omnipro/omniprodb/errors"
	"github.com/omnipro/omniprodb/proto"
	"github.com/omnipro/omniprodb/security"
)

// field type tags accepted on the wire, mapped to engine column types
var fieldTypes = map[string]string{
	"string":   "text",
	"text":     "text",
	"int":      "bigint",
	"integer":  "bigint",
	"float":    "double precision",
	"number":   "double precision",
	"bool":     "boolean",
	"datetime": "timestamptz",
	"bytes":    "bytea",
	"object":   "jsonb",
	"uuid":     "uuid",
}

// BuildCreateTable renders the DDL statements for a table definition:
// one CREATE TABLE followed by a CREATE INDEX per index definition.
// Fields and indexes keep their request order. Every identifier must
// pass the sanitizer.
func BuildCreateTable(san *security.Sanitizer, req *proto.CreateTableRequest) ([]string, error) {
	if req.Name == "" {
		return nil, apierrors.ErrEmptyTableName
	}
	if len(req.Fields) == 0 {
		return nil, apierrors.ErrNoTableFields
	}

	table, err := san.SanitizeIdentifier(req.Name)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", req.Name, err)
	}

	cols := make([]string, 0, len(req.Fields))
	for _, f := range req.Fields {
		name, err := san.SanitizeIdentifier(f.Name)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		colType, ok := fieldTypes[strings.ToLower(f.FieldType)]
		if !ok {
			return nil, fmt.Errorf("field %q type %q: %w", f.Name, f.FieldType, apierrors.ErrUnknownFieldType)
		}
		col := fmt.Sprintf("%s %s", name, colType)
		if f.Required {
			col += " NOT NULL"
		}
		cols = append(cols, col)
	}

	stmts := []string{
		fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", ")),
	}

	for _, idx := range req.Indexes {
		name, err := san.SanitizeIdentifier(idx.Name)
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", idx.Name, err)
		}
		if len(idx.Fields) == 0 {
			return nil, fmt.Errorf("index %q: %w", idx.Name, apierrors.ErrEmptyIndexFields)
		}
		fields := make([]string, 0, len(idx.Fields))
		for _, f := range idx.Fields {
			fname, err := san.SanitizeIdentifier(f)
			if err != nil {
				return nil, fmt.Errorf("index %q field %q: %w", idx.Name, f, err)
			}
			fields = append(fields, fname)
		}
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		stmts = append(stmts, fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
			unique, name, table, strings.Join(fields, ", ")))
	}

	return stmts, nil
}

// CreateTable builds and executes the DDL for a table definition.
func (c *Client) CreateTable(ctx context.Context, san *security.Sanitizer, req *proto.CreateTableRequest) error {
	stmts, err := BuildCreateTable(san, req)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err = c.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
