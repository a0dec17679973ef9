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

package kvstore

import (
	"context"
	"errors"
	"os"
	"sync"

	rdb "github.com/tecbot/gorocksdb"
)

type rocksdb struct {
	path      string
	db        *rdb.DB
	opt       *rdb.Options
	readOpt   *rdb.ReadOptions
	writeOpt  *rdb.WriteOptions
	flushOpt  *rdb.FlushOptions
	cfHandles map[CF]*rdb.ColumnFamilyHandle
	lock      sync.RWMutex
}

func newRocksdb(ctx context.Context, path string, option *Option) (Store, error) {
	if path == "" {
		return nil, errors.New("path is empty")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}

	dbOpt := genRocksdbOpts(option)

	cfNum := len(option.ColumnFamily) + 1
	cols := make([]CF, 0, cfNum)
	cols = append(cols, defaultCF)
	cols = append(cols, option.ColumnFamily...)

	cfNames := make([]string, 0, cfNum)
	cfOpts := make([]*rdb.Options, 0, cfNum)
	for i := 0; i < cfNum; i++ {
		cfNames = append(cfNames, cols[i].String())
		cfOpts = append(cfOpts, dbOpt)
	}

	db, cfhs, err := rdb.OpenDbColumnFamilies(dbOpt, path, cfNames, cfOpts)
	if err != nil {
		return nil, err
	}

	cfhMap := make(map[CF]*rdb.ColumnFamilyHandle)
	for i, h := range cfhs {
		cfhMap[cols[i]] = h
	}

	wo := rdb.NewDefaultWriteOptions()
	if option.Sync {
		wo.SetSync(option.Sync)
	}

	return &rocksdb{
		path:      path,
		db:        db,
		opt:       dbOpt,
		readOpt:   rdb.NewDefaultReadOptions(),
		writeOpt:  wo,
		flushOpt:  rdb.NewDefaultFlushOptions(),
		cfHandles: cfhMap,
	}, nil
}

func genRocksdbOpts(option *Option) *rdb.Options {
	opt := rdb.NewDefaultOptions()
	opt.SetCreateIfMissing(option.CreateIfMissing)
	opt.SetCreateIfMissingColumnFamilies(true)
	if option.MaxOpenFiles > 0 {
		opt.SetMaxOpenFiles(option.MaxOpenFiles)
	}
	if option.WriteBufferSize > 0 {
		opt.SetWriteBufferSize(option.WriteBufferSize)
	}
	return opt
}

func (s *rocksdb) CreateColumn(col CF) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.cfHandles[col]; ok {
		return nil
	}
	h, err := s.db.CreateColumnFamily(s.opt, col.String())
	if err != nil {
		return err
	}
	s.cfHandles[col] = h
	return nil
}

func (s *rocksdb) CheckColumns(col CF) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	_, ok := s.cfHandles[col]
	return ok
}

func (s *rocksdb) Get(ctx context.Context, col CF, key []byte) ([]byte, error) {
	h, err := s.cfHandle(col)
	if err != nil {
		return nil, err
	}

	slice, err := s.db.GetCF(s.readOpt, h, key)
	if err != nil {
		return nil, err
	}
	defer slice.Free()
	if !slice.Exists() {
		return nil, ErrNotFound
	}

	value := make([]byte, slice.Size())
	copy(value, slice.Data())
	return value, nil
}

func (s *rocksdb) Set(ctx context.Context, col CF, key []byte, value []byte) error {
	h, err := s.cfHandle(col)
	if err != nil {
		return err
	}
	return s.db.PutCF(s.writeOpt, h, key, value)
}

func (s *rocksdb) Delete(ctx context.Context, col CF, key []byte) error {
	h, err := s.cfHandle(col)
	if err != nil {
		return err
	}
	return s.db.DeleteCF(s.writeOpt, h, key)
}

// List walks keys with the given prefix in order; fn returning false
// stops the walk.
func (s *rocksdb) List(ctx context.Context, col CF, prefix []byte, fn func(key, value []byte) bool) error {
	h, err := s.cfHandle(col)
	if err != nil {
		return err
	}

	it := s.db.NewIteratorCF(s.readOpt, h)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		k, v := it.Key(), it.Value()
		key := make([]byte, k.Size())
		copy(key, k.Data())
		value := make([]byte, v.Size())
		copy(value, v.Data())
		k.Free()
		v.Free()
		if !fn(key, value) {
			break
		}
	}
	return it.Err()
}

func (s *rocksdb) Flush(ctx context.Context) error {
	return s.db.Flush(s.flushOpt)
}

func (s *rocksdb) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, h := range s.cfHandles {
		h.Destroy()
	}
	s.db.Close()
	s.readOpt.Destroy()
	s.writeOpt.Destroy()
	s.flushOpt.Destroy()
	s.opt.Destroy()
}

func (s *rocksdb) cfHandle(col CF) (*rdb.ColumnFamilyHandle, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	h, ok := s.cfHandles[col]
	if !ok {
		return nil, errors.New("column family not found: " + col.String())
	}
	return h, nil
}
