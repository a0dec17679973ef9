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
	"path/filepath"
	"testing"

	"github.com/cubefs/cubefs/blobstore/common/trace"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/omnipro/omniprodb/anomaly"
	"github.com/omnipro/omniprodb/engine"
	apierrors "github.com/omnipro/omniprodb/errors"
	"github.com/omnipro/omniprodb/proto"
	"github.com/omnipro/omniprodb/security"
	"github.com/omnipro/omniprodb/users"
	"github.com/omnipro/omniprodb/util/limiter"
)

type fakeEngine struct {
	cfg       engine.Config
	reconnect []engine.Config
	healthErr error
	queryErr  error
	result    string
	affected  int64
	tables    map[string]bool
}

func (f *fakeEngine) Reconnect(_ context.Context, cfg engine.Config) error {
	f.reconnect = append(f.reconnect, cfg)
	f.cfg = cfg
	return nil
}

func (f *fakeEngine) Config() engine.Config { return f.cfg }

func (f *fakeEngine) RunQuery(_ context.Context, query string, params map[string]string) (string, int64, error) {
	if f.queryErr != nil {
		return "", 0, f.queryErr
	}
	return f.result, f.affected, nil
}

func (f *fakeEngine) CreateTable(ctx context.Context, san *security.Sanitizer, req *proto.CreateTableRequest) error {
	if _, err := engine.BuildCreateTable(san, req); err != nil {
		return err
	}
	if f.tables == nil {
		f.tables = map[string]bool{}
	}
	f.tables[req.Name] = true
	return nil
}

func (f *fakeEngine) TableExists(_ context.Context, name string) (bool, error) {
	return f.tables[name], nil
}

func (f *fakeEngine) HealthCheck(context.Context) error { return f.healthErr }

func (f *fakeEngine) Backup(_ context.Context, path string, _ limiter.Limiter) (*engine.Manifest, error) {
	if !filepath.IsAbs(path) {
		return nil, apierrors.ErrBackupPathNotAbsolute
	}
	return &engine.Manifest{Tables: []string{"users"}}, nil
}

func (f *fakeEngine) Restore(_ context.Context, path string, _ limiter.Limiter) (*engine.Manifest, error) {
	if !filepath.IsAbs(path) {
		return nil, apierrors.ErrBackupPathNotAbsolute
	}
	return &engine.Manifest{Tables: []string{"users"}}, nil
}

func (f *fakeEngine) Close() {}

type fakeUserStore struct {
	byID map[string]*users.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[string]*users.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, u *users.User) error {
	for _, stored := range f.byID {
		if stored.Email == u.Email {
			return apierrors.ErrEmailAlreadyUsed
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) Get(_ context.Context, id string) (*users.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apierrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*users.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apierrors.ErrUserNotFound
}

func (f *fakeUserStore) Update(_ context.Context, u *users.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return apierrors.ErrUserNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return apierrors.ErrUserNotFound
	}
	delete(f.byID, id)
	return nil
}

func newTestRPCServer(eng *fakeEngine) (*RPCServer, *fakeUserStore) {
	store := newFakeUserStore()
	srv := &Server{
		engine:    eng,
		users:     store,
		security:  security.NewManager(),
		sanitizer: security.NewSanitizer(),
		anomaly:   anomaly.NewDetector(0, 0),
		limiter:   limiter.NewLimiter(limiter.Config{}),
	}
	return &RPCServer{Server: srv}, store
}

func TestCreateUser(t *testing.T) {
	r, store := newTestRPCServer(&fakeEngine{})
	ctx := context.Background()

	resp, err := r.CreateUser(ctx, &proto.CreateUserRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "passw0rd1",
		Role:     proto.RoleAdmin,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.UserId)

	stored := store.byID[resp.UserId]
	require.NotNil(t, stored)
	require.NotEqual(t, "passw0rd1", stored.PasswordHash)
}

func TestCreateUserRejectsBadInput(t *testing.T) {
	r, _ := newTestRPCServer(&fakeEngine{})
	ctx := context.Background()

	cases := []*proto.CreateUserRequest{
		{Email: "not-an-email", Name: "Alice", Password: "passw0rd1"},
		{Email: "alice@example.com", Name: "Alice", Password: "short"},
		{Email: "alice@example.com", Name: "Alice", Password: "lettersonly"},
		{Email: "alice@example.com", Name: "Alice", Password: "passw0rd1", Role: "superuser"},
	}
	for _, req := range cases {
		_, err := r.CreateUser(ctx, req)
		require.Error(t, err)
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	r, _ := newTestRPCServer(&fakeEngine{})
	ctx := context.Background()

	req := &proto.CreateUserRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "passw0rd1",
		Role:     proto.RoleUser,
	}
	_, err := r.CreateUser(ctx, req)
	require.NoError(t, err)

	_, err = r.CreateUser(ctx, req)
	require.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestGetUserNotFound(t *testing.T) {
	r, _ := newTestRPCServer(&fakeEngine{})

	_, err := r.GetUser(context.Background(), &proto.GetUserRequest{UserId: "missing"})
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestUpdateUserKeepsEmptyFields(t *testing.T) {
	r, store := newTestRPCServer(&fakeEngine{})
	ctx := context.Background()

	created, err := r.CreateUser(ctx, &proto.CreateUserRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "passw0rd1",
		Role:     proto.RoleUser,
	})
	require.NoError(t, err)

	resp, err := r.UpdateUser(ctx, &proto.UpdateUserRequest{
		UserId: created.UserId,
		Name:   "Alice Cooper",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	stored := store.byID[created.UserId]
	require.Equal(t, "Alice Cooper", stored.Name)
	require.Equal(t, "alice@example.com", stored.Email)
	require.Equal(t, proto.RoleUser, stored.Role)
}

func TestDeleteUser(t *testing.T) {
	r, _ := newTestRPCServer(&fakeEngine{})
	ctx := context.Background()

	created, err := r.CreateUser(ctx, &proto.CreateUserRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "passw0rd1",
		Role:     proto.RoleUser,
	})
	require.NoError(t, err)

	resp, err := r.DeleteUser(ctx, &proto.DeleteUserRequest{UserId: created.UserId})
	require.NoError(t, err)
	require.True(t, resp.Success)

	_, err = r.GetUser(ctx, &proto.GetUserRequest{UserId: created.UserId})
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestConnectDbSwapsEngineTarget(t *testing.T) {
	eng := &fakeEngine{cfg: engine.Config{URL: "postgres://old", MaxConns: 8}}
	r, _ := newTestRPCServer(eng)

	resp, err := r.ConnectDb(context.Background(), &proto.ConnectRequest{
		Url:       "postgres://new",
		Namespace: "analytics",
		Database:  "prod",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	require.Len(t, eng.reconnect, 1)
	require.Equal(t, "postgres://new", eng.reconnect[0].URL)
	require.Equal(t, "analytics", eng.reconnect[0].Namespace)
	require.Equal(t, "prod", eng.reconnect[0].Database)
	// untouched pool settings survive the swap
	require.Equal(t, int32(8), eng.reconnect[0].MaxConns)
}

func TestExecuteQuery(t *testing.T) {
	eng := &fakeEngine{result: `{"columns":["n"],"rows":[[1]]}`, affected: 1}
	r, _ := newTestRPCServer(eng)

	resp, err := r.ExecuteQuery(context.Background(), &proto.QueryRequest{
		Query: "SELECT n FROM numbers",
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, eng.result, resp.Result)
	require.Empty(t, resp.Error)
}

func TestExecuteQueryBlocksDangerousInput(t *testing.T) {
	r, _ := newTestRPCServer(&fakeEngine{})

	resp, err := r.ExecuteQuery(context.Background(), &proto.QueryRequest{
		Query: "DROP TABLE users",
	})
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Error)
}

func TestExecuteQueryRecordsAnomalySamples(t *testing.T) {
	eng := &fakeEngine{result: "{}"}
	r, _ := newTestRPCServer(eng)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.ExecuteQuery(ctx, &proto.QueryRequest{Query: "SELECT 1"})
		require.NoError(t, err)
	}
	require.Equal(t, 3, r.anomaly.WindowLen())
}

func TestCreateTableValidation(t *testing.T) {
	r, _ := newTestRPCServer(&fakeEngine{})
	ctx := context.Background()

	resp, err := r.CreateTable(ctx, &proto.CreateTableRequest{
		Name: "events",
		Fields: []*proto.FieldDefinition{
			{Name: "id", FieldType: "uuid", Required: true},
		},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)

	resp, err = r.CreateTable(ctx, &proto.CreateTableRequest{Name: "events"})
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, apierrors.ErrNoTableFields.Error(), resp.Error)
}

func TestCreateTableAlreadyExists(t *testing.T) {
	r, _ := newTestRPCServer(&fakeEngine{})
	ctx := context.Background()

	req := &proto.CreateTableRequest{
		Name: "events",
		Fields: []*proto.FieldDefinition{
			{Name: "id", FieldType: "uuid", Required: true},
		},
	}
	resp, err := r.CreateTable(ctx, req)
	require.NoError(t, err)
	require.True(t, resp.Success)

	resp, err = r.CreateTable(ctx, req)
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, apierrors.ErrTableAlreadyExists.Error(), resp.Error)
}

func TestHealthCheck(t *testing.T) {
	eng := &fakeEngine{}
	r, _ := newTestRPCServer(eng)
	ctx := context.Background()

	resp, err := r.HealthCheck(ctx, &proto.HealthCheckRequest{})
	require.NoError(t, err)
	require.True(t, resp.Healthy)
	require.Equal(t, "serving", resp.Status)

	eng.healthErr = apierrors.ErrNotConnected
	resp, err = r.HealthCheck(ctx, &proto.HealthCheckRequest{})
	require.NoError(t, err)
	require.False(t, resp.Healthy)
	require.Equal(t, apierrors.ErrNotConnected.Error(), resp.Status)
}

func TestBackupRequiresAbsolutePath(t *testing.T) {
	r, _ := newTestRPCServer(&fakeEngine{})
	ctx := context.Background()

	resp, err := r.Backup(ctx, &proto.BackupRequest{Path: "relative/dir"})
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, apierrors.ErrBackupPathNotAbsolute.Error(), resp.Error)

	resp, err = r.Backup(ctx, &proto.BackupRequest{Path: "/var/backups/omnidb"})
	require.NoError(t, err)
	require.True(t, resp.Success)
}

func TestRestore(t *testing.T) {
	r, _ := newTestRPCServer(&fakeEngine{})
	ctx := context.Background()

	resp, err := r.Restore(ctx, &proto.RestoreRequest{Path: "/var/backups/omnidb"})
	require.NoError(t, err)
	require.True(t, resp.Success)

	resp, err = r.Restore(ctx, &proto.RestoreRequest{Path: "backups"})
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Error)
}

func TestTracerInterceptorPropagatesReqId(t *testing.T) {
	r, _ := newTestRPCServer(&fakeEngine{})

	md := metadata.Pairs(proto.ReqIdKey, "req-123")
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: "/omnipro.db.DbService/HealthCheck"}

	called := false
	_, err := r.unaryInterceptorWithTracer(ctx, &proto.HealthCheckRequest{}, info,
		func(ctx context.Context, req interface{}) (interface{}, error) {
			called = true
			require.Equal(t, "req-123", trace.SpanFromContextSafe(ctx).TraceID())
			return &proto.HealthCheckResponse{Healthy: true}, nil
		})
	require.NoError(t, err)
	require.True(t, called)
}

func TestAuditRecordRedactsCredentials(t *testing.T) {
	req := &proto.CreateUserRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "passw0rd1",
	}
	rec := auditRecord("/omnipro.db.DatabaseService/CreateUser", req,
		&proto.CreateUserResponse{Success: true, UserId: "u1"}, 2)
	require.NotContains(t, rec, "passw0rd1")
	require.Contains(t, rec, "alice@example.com")
	// the request itself is left intact
	require.Equal(t, "passw0rd1", req.Password)

	connect := &proto.ConnectRequest{Url: "postgres://admin:s3cret@db:5432/app"}
	rec = auditRecord("/omnipro.db.DbService/ConnectDb", connect,
		&proto.ConnectResponse{Success: true}, 1)
	require.NotContains(t, rec, "s3cret")
	require.Contains(t, rec, "db:5432")
	require.Equal(t, "postgres://admin:s3cret@db:5432/app", connect.Url)
}

func TestStatusMapping(t *testing.T) {
	require.Equal(t, codes.NotFound, status.Code(statusFromErr(apierrors.ErrUserNotFound)))
	require.Equal(t, codes.AlreadyExists, status.Code(statusFromErr(apierrors.ErrEmailAlreadyUsed)))
	require.Equal(t, codes.InvalidArgument, status.Code(statusFromErr(apierrors.ErrInvalidEmail)))
	require.Equal(t, codes.Internal, status.Code(statusFromErr(context.DeadlineExceeded)))
}
