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
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Result is the JSON shape returned to ExecuteQuery callers.
type Result struct {
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	RowsAffected int64    `json:"rows_affected"`
}

// RunQuery executes a statement with optional named parameters
// (@name placeholders) and renders the outcome as a JSON document.
// The number of affected rows is also returned for metrics.
func (c *Client) RunQuery(ctx context.Context, query string, params map[string]string) (string, int64, error) {
	var args []any
	if len(params) > 0 {
		named := make(pgx.NamedArgs, len(params))
		for k, v := range params {
			named[k] = v
		}
		args = append(args, named)
	}

	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return "", 0, err
	}
	defer rows.Close()

	columns := make([]string, 0, len(rows.FieldDescriptions()))
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, string(fd.Name))
	}

	var values [][]any
	for rows.Next() {
		row, err := rows.Values()
		if err != nil {
			return "", 0, err
		}
		values = append(values, row)
	}
	if err = rows.Err(); err != nil {
		return "", 0, err
	}
	affected := rows.CommandTag().RowsAffected()

	out, err := renderResult(columns, values, affected)
	if err != nil {
		return "", 0, err
	}
	return string(out), affected, nil
}

// renderResult normalizes driver values into JSON-friendly ones before
// marshaling: byte slices become hex (16-byte ones a uuid string) and
// timestamps RFC 3339.
func renderResult(columns []string, rows [][]any, affected int64) ([]byte, error) {
	norm := make([][]any, len(rows))
	for i, row := range rows {
		norm[i] = make([]any, len(row))
		for j, val := range row {
			norm[i][j] = normalizeValue(val)
		}
	}
	return json.Marshal(Result{
		Columns:      columns,
		Rows:         norm,
		RowsAffected: affected,
	})
}

func normalizeValue(val any) any {
	switch v := val.(type) {
	case [16]byte:
		return uuid.UUID(v).String()
	case []byte:
		if len(v) == 16 {
			id, err := uuid.FromBytes(v)
			if err == nil {
				return id.String()
			}
		}
		return fmt.Sprintf("\\x%x", v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return val
	}
}
