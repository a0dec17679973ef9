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
	"os"
	"path/filepath"
	"time"

	"github.com/cubefs/cubefs/blobstore/common/trace"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	apierrors "github.com/omnipro/omniprodb/errors"
	"github.com/omnipro/omniprodb/util/limiter"
)

const (
	manifestFile  = "manifest.json"
	copySuffix    = ".copy"
	dumpParallel  = 4
	manifestPerms = 0o644
)

// Manifest describes one logical dump directory.
type Manifest struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Namespace string    `json:"namespace"`
	Database  string    `json:"database"`
	Tables    []string  `json:"tables"`
}

// Backup writes a logical dump of every table in the active schema to
// path: one COPY stream per table plus a manifest. The manifest is
// written last so a partial dump never looks complete.
func (c *Client) Backup(ctx context.Context, path string, lim limiter.Limiter) (*Manifest, error) {
	span := trace.SpanFromContextSafe(ctx)

	if !filepath.IsAbs(path) {
		return nil, apierrors.ErrBackupPathNotAbsolute
	}
	if err := lim.Acquire(); err != nil {
		return nil, err
	}
	defer lim.Release()

	tables, err := c.listTables(ctx)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(dumpParallel)
	for _, table := range tables {
		table := table
		eg.Go(func() error {
			return c.dumpTable(gctx, path, table, lim)
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, err
	}

	cfg := c.Config()
	manifest := &Manifest{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Namespace: cfg.Namespace,
		Database:  cfg.Database,
		Tables:    tables,
	}
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	if err = os.WriteFile(filepath.Join(path, manifestFile), raw, manifestPerms); err != nil {
		return nil, err
	}

	span.Infof("backup %s finished: %d tables", manifest.ID, len(tables))
	return manifest, nil
}

// Restore loads a dump directory produced by Backup. Each table is
// truncated before its COPY stream is replayed.
func (c *Client) Restore(ctx context.Context, path string, lim limiter.Limiter) (*Manifest, error) {
	span := trace.SpanFromContextSafe(ctx)

	if !filepath.IsAbs(path) {
		return nil, apierrors.ErrBackupPathNotAbsolute
	}
	if err := lim.Acquire(); err != nil {
		return nil, err
	}
	defer lim.Release()

	raw, err := os.ReadFile(filepath.Join(path, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierrors.ErrBackupManifestMissing
		}
		return nil, err
	}
	manifest := &Manifest{}
	if err = json.Unmarshal(raw, manifest); err != nil {
		return nil, err
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(dumpParallel)
	for _, table := range manifest.Tables {
		table := table
		eg.Go(func() error {
			return c.loadTable(gctx, path, table, lim)
		})
	}
	if err = eg.Wait(); err != nil {
		return nil, err
	}

	span.Infof("restore of backup %s finished: %d tables", manifest.ID, len(manifest.Tables))
	return manifest, nil
}

func (c *Client) listTables(ctx context.Context) ([]string, error) {
	rows, err := c.Query(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		 ORDER BY table_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (c *Client) dumpTable(ctx context.Context, path, table string, lim limiter.Limiter) error {
	pool, err := c.getPool()
	if err != nil {
		return err
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	f, err := os.Create(filepath.Join(path, table+copySuffix))
	if err != nil {
		return err
	}
	defer f.Close()

	ident := pgx.Identifier{table}.Sanitize()
	_, err = conn.Conn().PgConn().CopyTo(ctx, lim.Writer(ctx, f),
		fmt.Sprintf("COPY %s TO STDOUT", ident))
	if err != nil {
		return fmt.Errorf("dump table %s: %w", table, err)
	}
	return f.Sync()
}

func (c *Client) loadTable(ctx context.Context, path, table string, lim limiter.Limiter) error {
	pool, err := c.getPool()
	if err != nil {
		return err
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	f, err := os.Open(filepath.Join(path, table+copySuffix))
	if err != nil {
		return err
	}
	defer f.Close()

	ident := pgx.Identifier{table}.Sanitize()
	if _, err = conn.Exec(ctx, fmt.Sprintf("TRUNCATE %s", ident)); err != nil {
		return fmt.Errorf("truncate table %s: %w", table, err)
	}
	_, err = conn.Conn().PgConn().CopyFrom(ctx, lim.Reader(ctx, f),
		fmt.Sprintf("COPY %s FROM STDIN", ident))
	if err != nil {
		return fmt.Errorf("load table %s: %w", table, err)
	}
	return nil
}
