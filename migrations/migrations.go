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

package migrations

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cubefs/cubefs/blobstore/common/trace"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/omnipro/omniprodb/metrics"
)

type Migration struct {
	Version     int    `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Up          string `json:"up"`
	Down        string `json:"down"`

	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

// Execer is the slice of the engine client the manager needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Manager applies registered migrations in version order and records
// them in the schema_migrations table.
type Manager struct {
	db         Execer
	migrations []Migration
}

func NewManager(db Execer) *Manager {
	return &Manager{db: db}
}

func (m *Manager) Register(migration Migration) {
	m.migrations = append(m.migrations, migration)
}

// Pending returns the registered migrations above current, sorted by
// version ascending.
func (m *Manager) Pending(current int) []Migration {
	pending := make([]Migration, 0, len(m.migrations))
	for _, mig := range m.migrations {
		if mig.Version > current {
			pending = append(pending, mig)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})
	return pending
}

// rollbackable returns the migrations above target, sorted descending,
// i.e. in the order their down scripts must run.
func (m *Manager) rollbackable(target int) []Migration {
	applied := make([]Migration, 0, len(m.migrations))
	for _, mig := range m.migrations {
		if mig.Version > target {
			applied = append(applied, mig)
		}
	}
	sort.Slice(applied, func(i, j int) bool {
		return applied[i].Version > applied[j].Version
	})
	return applied
}

func (m *Manager) RunPending(ctx context.Context) error {
	span := trace.SpanFromContextSafe(ctx)

	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.Pending(current) {
		if err = m.apply(ctx, mig); err != nil {
			return err
		}
	}
	span.Infof("migrations are up to date from version %d", current)
	return nil
}

func (m *Manager) apply(ctx context.Context, mig Migration) error {
	span := trace.SpanFromContextSafe(ctx)
	span.Infof("applying migration %d - %s", mig.Version, mig.Name)

	if _, err := m.db.Exec(ctx, mig.Up); err != nil {
		return fmt.Errorf("apply migration %d: %w", mig.Version, err)
	}
	if _, err := m.db.Exec(ctx,
		`INSERT INTO schema_migrations (version, name, description, applied_at)
		 VALUES ($1, $2, $3, now())`,
		mig.Version, mig.Name, mig.Description); err != nil {
		return fmt.Errorf("record migration %d: %w", mig.Version, err)
	}

	metrics.MigrationsApplied.Inc()
	span.Infof("migration %d applied", mig.Version)
	return nil
}

// Rollback runs down scripts until the schema is back at target.
func (m *Manager) Rollback(ctx context.Context, target int) error {
	span := trace.SpanFromContextSafe(ctx)

	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	span.Infof("rolling back from version %d to %d", current, target)

	for _, mig := range m.rollbackable(target) {
		if mig.Version > current {
			continue
		}
		if _, err = m.db.Exec(ctx, mig.Down); err != nil {
			return fmt.Errorf("rollback migration %d: %w", mig.Version, err)
		}
		if _, err = m.db.Exec(ctx,
			`DELETE FROM schema_migrations WHERE version = $1`, mig.Version); err != nil {
			return fmt.Errorf("unrecord migration %d: %w", mig.Version, err)
		}
		span.Infof("migration %d rolled back", mig.Version)
	}
	return nil
}

func (m *Manager) CurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := m.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (m *Manager) ensureTable(ctx context.Context) error {
	_, err := m.db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version bigint PRIMARY KEY,
			name text NOT NULL,
			description text NOT NULL DEFAULT '',
			applied_at timestamptz NOT NULL DEFAULT now()
		)`)
	return err
}
