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
)

const (
	defaultCF = CF("default")

	RocksdbLsmKVType = LsmKVType("rocksdb")
)

var (
	ErrNotFound       = errors.New("key not found")
	ErrKVTypeNotFound = errors.New("kv type not found")
)

type (
	CF        string
	LsmKVType string

	// Store is the local artifact store of the gateway. Blob payloads
	// (ML datasets, model weights) live here, keyed per column family.
	Store interface {
		CreateColumn(col CF) error
		CheckColumns(col CF) bool
		Get(ctx context.Context, col CF, key []byte) (value []byte, err error)
		Set(ctx context.Context, col CF, key []byte, value []byte) error
		Delete(ctx context.Context, col CF, key []byte) error
		List(ctx context.Context, col CF, prefix []byte, fn func(key, value []byte) bool) error
		Flush(ctx context.Context) error
		Close()
	}

	Option struct {
		CreateIfMissing bool `json:"create_if_missing"`
		Sync            bool `json:"sync"`
		ColumnFamily    []CF `json:"column_family"`
		MaxOpenFiles    int  `json:"max_open_files"`
		WriteBufferSize int  `json:"write_buffer_size"`
	}
)

func (c CF) String() string {
	return string(c)
}

func NewKVStore(ctx context.Context, path string, lsmType LsmKVType, option *Option) (Store, error) {
	if option == nil {
		option = &Option{CreateIfMissing: true}
	}
	switch lsmType {
	case RocksdbLsmKVType:
		return newRocksdb(ctx, path, option)
	default:
		return nil, ErrKVTypeNotFound
	}
}
