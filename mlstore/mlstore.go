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

// Package mlstore keeps ML artifacts: dataset and model metadata lives
// in the engine catalog tables, the binary payloads (dataset blobs,
// model weights) in the local kvstore. The payload is written before
// its metadata row so a listed artifact always has its bytes.
package mlstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/omnipro/omniprodb/common/kvstore"
	apierrors "github.com/omnipro/omniprodb/errors"
)

const (
	DatasetCF = kvstore.CF("dataset")
	ModelCF   = kvstore.CF("model")
)

type Dataset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

type Model struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Querier is the slice of the engine client the storage needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Storage struct {
	db Querier
	kv kvstore.Store
}

func NewStorage(db Querier, kv kvstore.Store) (*Storage, error) {
	for _, cf := range []kvstore.CF{DatasetCF, ModelCF} {
		if kv.CheckColumns(cf) {
			continue
		}
		if err := kv.CreateColumn(cf); err != nil {
			return nil, err
		}
	}
	return &Storage{db: db, kv: kv}, nil
}

func (s *Storage) StoreDataset(ctx context.Context, ds Dataset, data []byte) error {
	if err := s.kv.Set(ctx, DatasetCF, blobKey(ds.ID), data); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO ml_datasets (id, name, description, size_bytes, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		ds.ID, ds.Name, ds.Description, int64(len(data)), ds.CreatedAt)
	return err
}

func (s *Storage) GetDataset(ctx context.Context, id string) (*Dataset, []byte, error) {
	ds := &Dataset{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, description, size_bytes, created_at FROM ml_datasets WHERE id = $1`, id).
		Scan(&ds.ID, &ds.Name, &ds.Description, &ds.SizeBytes, &ds.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apierrors.ErrDatasetDoesNotExist
	}
	if err != nil {
		return nil, nil, err
	}

	data, err := s.kv.Get(ctx, DatasetCF, blobKey(id))
	if err != nil {
		return nil, nil, err
	}
	return ds, data, nil
}

func (s *Storage) ListDatasets(ctx context.Context, limit, offset int64) ([]Dataset, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, description, size_bytes, created_at
		 FROM ml_datasets ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []Dataset
	for rows.Next() {
		var ds Dataset
		if err = rows.Scan(&ds.ID, &ds.Name, &ds.Description, &ds.SizeBytes, &ds.CreatedAt); err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

func (s *Storage) DeleteDataset(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM ml_datasets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apierrors.ErrDatasetDoesNotExist
	}
	return s.kv.Delete(ctx, DatasetCF, blobKey(id))
}

func (s *Storage) StoreModel(ctx context.Context, m Model, weights []byte) error {
	if err := s.kv.Set(ctx, ModelCF, blobKey(m.ID), weights); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO ml_models (id, name, description, size_bytes, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.Name, m.Description, int64(len(weights)), m.CreatedAt)
	return err
}

func (s *Storage) GetModel(ctx context.Context, id string) (*Model, []byte, error) {
	m := &Model{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, description, size_bytes, created_at FROM ml_models WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Description, &m.SizeBytes, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apierrors.ErrModelDoesNotExist
	}
	if err != nil {
		return nil, nil, err
	}

	weights, err := s.kv.Get(ctx, ModelCF, blobKey(id))
	if err != nil {
		return nil, nil, err
	}
	return m, weights, nil
}

func (s *Storage) ListModels(ctx context.Context, limit, offset int64) ([]Model, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, description, size_bytes, created_at
		 FROM ml_models ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []Model
	for rows.Next() {
		var m Model
		if err = rows.Scan(&m.ID, &m.Name, &m.Description, &m.SizeBytes, &m.CreatedAt); err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

func (s *Storage) DeleteModel(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM ml_models WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apierrors.ErrModelDoesNotExist
	}
	return s.kv.Delete(ctx, ModelCF, blobKey(id))
}

func blobKey(id string) []byte {
	return []byte("blob/" + id)
}
