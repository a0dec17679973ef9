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

package server

import (
	"context"

	"github.com/cubefs/cubefs/blobstore/util/log"

	"github.com/omnipro/omniprodb/anomaly"
	"github.com/omnipro/omniprodb/common/kvstore"
	"github.com/omnipro/omniprodb/engine"
	"github.com/omnipro/omniprodb/migrations"
	"github.com/omnipro/omniprodb/mlstore"
	"github.com/omnipro/omniprodb/proto"
	"github.com/omnipro/omniprodb/security"
	"github.com/omnipro/omniprodb/users"
	"github.com/omnipro/omniprodb/util/limiter"
)

type Config struct {
	EngineConfig engine.Config `json:"engine_config"`

	KVPath   string          `json:"kv_path"`
	KVOption *kvstore.Option `json:"kv_option"`

	LimiterConfig limiter.Config `json:"limiter_config"`

	AnomalyWindowSize int     `json:"anomaly_window_size"`
	AnomalyThreshold  float64 `json:"anomaly_threshold"`
}

// dbEngine is the slice of the engine client the rpc layer depends on,
// narrowed so handler tests can run against a fake.
type dbEngine interface {
	Reconnect(ctx context.Context, cfg engine.Config) error
	Config() engine.Config
	RunQuery(ctx context.Context, query string, params map[string]string) (string, int64, error)
	CreateTable(ctx context.Context, san *security.Sanitizer, req *proto.CreateTableRequest) error
	TableExists(ctx context.Context, name string) (bool, error)
	HealthCheck(ctx context.Context) error
	Backup(ctx context.Context, path string, lim limiter.Limiter) (*engine.Manifest, error)
	Restore(ctx context.Context, path string, lim limiter.Limiter) (*engine.Manifest, error)
	Close()
}

type userStore interface {
	Create(ctx context.Context, u *users.User) error
	Get(ctx context.Context, id string) (*users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	Update(ctx context.Context, u *users.User) error
	Delete(ctx context.Context, id string) error
}

type Server struct {
	engine    dbEngine
	users     userStore
	security  *security.Manager
	sanitizer *security.Sanitizer
	mlstore   *mlstore.Storage
	anomaly   *anomaly.Detector
	limiter   limiter.Limiter

	kv kvstore.Store
}

func NewServer(ctx context.Context, cfg *Config) (*Server, error) {
	eng, err := engine.Open(ctx, cfg.EngineConfig)
	if err != nil {
		return nil, err
	}

	mgr := migrations.NewManager(eng)
	for _, mig := range migrations.Builtin() {
		mgr.Register(mig)
	}
	if err := mgr.RunPending(ctx); err != nil {
		eng.Close()
		return nil, err
	}

	kv, err := kvstore.NewKVStore(ctx, cfg.KVPath, kvstore.RocksdbLsmKVType, cfg.KVOption)
	if err != nil {
		eng.Close()
		return nil, err
	}
	mls, err := mlstore.NewStorage(eng, kv)
	if err != nil {
		kv.Close()
		eng.Close()
		return nil, err
	}

	version, err := mgr.CurrentVersion(ctx)
	if err != nil {
		kv.Close()
		eng.Close()
		return nil, err
	}
	log.Infof("server initialized, schema version %d", version)

	return &Server{
		engine:    eng,
		users:     users.NewStore(eng),
		security:  security.NewManager(),
		sanitizer: security.NewSanitizer(),
		mlstore:   mls,
		anomaly:   anomaly.NewDetector(cfg.AnomalyWindowSize, cfg.AnomalyThreshold),
		limiter:   limiter.NewLimiter(cfg.LimiterConfig),
		kv:        kv,
	}, nil
}

func (s *Server) Close() {
	if s.kv != nil {
		s.kv.Close()
	}
	s.engine.Close()
}
