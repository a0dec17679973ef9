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
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cubefs/cubefs/blobstore/common/trace"
	"github.com/cubefs/cubefs/blobstore/util/errors"
	"github.com/cubefs/cubefs/blobstore/util/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/omnipro/omniprodb/anomaly"
	apierrors "github.com/omnipro/omniprodb/errors"
	"github.com/omnipro/omniprodb/metrics"
	"github.com/omnipro/omniprodb/proto"
	"github.com/omnipro/omniprodb/users"
)

var auditLogPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

type RPCServer struct {
	*Server

	grpcServer *grpc.Server
}

func NewRPCServer(server *Server) *RPCServer {
	rs := &RPCServer{Server: server}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			rs.unaryInterceptorWithTracer,
			rs.unaryInterceptorWithAuditLog,
			metrics.GRPCMetrics.UnaryServerInterceptor(),
		),
		grpc.ForceServerCodec(proto.Codec{}),
	)
	proto.RegisterDatabaseServiceServer(s, rs)
	proto.RegisterDbServiceServer(s, rs)
	metrics.GRPCMetrics.InitializeMetrics(s)

	rs.grpcServer = s
	return rs
}

func (r *RPCServer) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		if err := r.grpcServer.Serve(lis); err != nil {
			log.Fatal("grpc server exits:", err)
		}
	}()

	log.Info("grpc server is running at:", addr)
	return nil
}

func (r *RPCServer) Stop() {
	r.grpcServer.GracefulStop()
}

// DatabaseService API

func (r *RPCServer) CreateUser(ctx context.Context, req *proto.CreateUserRequest) (*proto.CreateUserResponse, error) {
	span := trace.SpanFromContextSafe(ctx)

	if err := r.security.ValidateUserInput(req.Email, req.Password); err != nil {
		return nil, statusFromErr(err)
	}
	if !r.security.IsValidName(req.Name) {
		return nil, statusFromErr(apierrors.ErrInvalidName)
	}
	role := req.Role
	if role == "" {
		role = proto.RoleUser
	}
	if !r.security.IsValidRole(role) {
		return nil, statusFromErr(apierrors.ErrInvalidRole)
	}

	if _, err := r.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, statusFromErr(apierrors.ErrEmailAlreadyUsed)
	} else if !stderrors.Is(err, apierrors.ErrUserNotFound) {
		span.Errorf("lookup email failed: %s", errors.Detail(err))
		return nil, statusFromErr(err)
	}

	hash, err := r.security.HashPassword(req.Password)
	if err != nil {
		span.Errorf("hash password failed: %s", errors.Detail(err))
		return nil, statusFromErr(err)
	}

	u := users.New(req.Email, req.Name, hash, role)
	if err := r.users.Create(ctx, u); err != nil {
		span.Errorf("create user failed: %s", errors.Detail(err))
		return nil, statusFromErr(err)
	}

	return &proto.CreateUserResponse{Success: true, UserId: u.ID}, nil
}

func (r *RPCServer) GetUser(ctx context.Context, req *proto.GetUserRequest) (*proto.GetUserResponse, error) {
	u, err := r.users.Get(ctx, req.UserId)
	if err != nil {
		return nil, statusFromErr(err)
	}

	return &proto.GetUserResponse{User: u.ToProto()}, nil
}

func (r *RPCServer) UpdateUser(ctx context.Context, req *proto.UpdateUserRequest) (*proto.UpdateUserResponse, error) {
	span := trace.SpanFromContextSafe(ctx)

	if req.Email != "" && !r.security.IsValidEmail(req.Email) {
		return nil, statusFromErr(apierrors.ErrInvalidEmail)
	}
	if req.Name != "" && !r.security.IsValidName(req.Name) {
		return nil, statusFromErr(apierrors.ErrInvalidName)
	}
	if req.Role != "" && !r.security.IsValidRole(req.Role) {
		return nil, statusFromErr(apierrors.ErrInvalidRole)
	}

	u, err := r.users.Get(ctx, req.UserId)
	if err != nil {
		return nil, statusFromErr(err)
	}
	u.ApplyUpdate(req.Name, req.Email, req.Role)

	if err := r.users.Update(ctx, u); err != nil {
		span.Errorf("update user[%s] failed: %s", req.UserId, errors.Detail(err))
		return nil, statusFromErr(err)
	}

	return &proto.UpdateUserResponse{Success: true}, nil
}

func (r *RPCServer) DeleteUser(ctx context.Context, req *proto.DeleteUserRequest) (*proto.DeleteUserResponse, error) {
	if err := r.users.Delete(ctx, req.UserId); err != nil {
		return nil, statusFromErr(err)
	}

	return &proto.DeleteUserResponse{Success: true}, nil
}

// DbService API

func (r *RPCServer) ConnectDb(ctx context.Context, req *proto.ConnectRequest) (*proto.ConnectResponse, error) {
	span := trace.SpanFromContextSafe(ctx)

	cfg := r.engine.Config()
	cfg.URL = req.Url
	cfg.Namespace = req.Namespace
	cfg.Database = req.Database

	if err := r.engine.Reconnect(ctx, cfg); err != nil {
		span.Errorf("connect to %s/%s failed: %s", req.Namespace, req.Database, errors.Detail(err))
		return &proto.ConnectResponse{Success: false, Error: err.Error()}, nil
	}

	span.Infof("connected to namespace %s database %s", req.Namespace, req.Database)
	return &proto.ConnectResponse{Success: true}, nil
}

func (r *RPCServer) ExecuteQuery(ctx context.Context, req *proto.QueryRequest) (*proto.QueryResponse, error) {
	span := trace.SpanFromContextSafe(ctx)

	query, err := r.sanitizer.SanitizeInput(req.Query)
	if err != nil {
		return &proto.QueryResponse{Success: false, Error: err.Error()}, nil
	}

	start := time.Now()
	result, affected, err := r.engine.RunQuery(ctx, query, req.Parameters)
	elapsed := time.Since(start)
	metrics.QueryDuration.Observe(elapsed.Seconds())
	if err != nil {
		span.Errorf("query failed: %s", errors.Detail(err))
		return &proto.QueryResponse{Success: false, Error: err.Error()}, nil
	}

	sample := anomaly.QueryMetrics{
		Duration:     elapsed,
		RowsAffected: affected,
		At:           start,
	}
	findings := r.anomaly.Detect(sample)
	r.anomaly.Record(sample)
	for _, finding := range findings {
		metrics.AnomaliesDetected.Inc()
		span.Warnf("%s: duration %s, affected %d", finding, elapsed, affected)
	}

	return &proto.QueryResponse{Success: true, Result: result}, nil
}

func (r *RPCServer) CreateTable(ctx context.Context, req *proto.CreateTableRequest) (*proto.CreateTableResponse, error) {
	span := trace.SpanFromContextSafe(ctx)

	if exists, err := r.engine.TableExists(ctx, req.Name); err == nil && exists {
		return &proto.CreateTableResponse{Success: false, Error: apierrors.ErrTableAlreadyExists.Error()}, nil
	}

	if err := r.engine.CreateTable(ctx, r.sanitizer, req); err != nil {
		span.Errorf("create table[%s] failed: %s", req.Name, errors.Detail(err))
		return &proto.CreateTableResponse{Success: false, Error: err.Error()}, nil
	}

	return &proto.CreateTableResponse{Success: true}, nil
}

func (r *RPCServer) HealthCheck(ctx context.Context, req *proto.HealthCheckRequest) (*proto.HealthCheckResponse, error) {
	if err := r.engine.HealthCheck(ctx); err != nil {
		return &proto.HealthCheckResponse{Healthy: false, Status: err.Error()}, nil
	}

	return &proto.HealthCheckResponse{Healthy: true, Status: "serving"}, nil
}

func (r *RPCServer) Backup(ctx context.Context, req *proto.BackupRequest) (*proto.BackupResponse, error) {
	span := trace.SpanFromContextSafe(ctx)

	manifest, err := r.engine.Backup(ctx, req.Path, r.limiter)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("backup", "error").Inc()
		span.Errorf("backup to %s failed: %s", req.Path, errors.Detail(err))
		return &proto.BackupResponse{Success: false, Error: err.Error()}, nil
	}

	metrics.BackupsTotal.WithLabelValues("backup", "ok").Inc()
	span.Infof("backup %s finished, %d tables", manifest.ID, len(manifest.Tables))
	return &proto.BackupResponse{Success: true}, nil
}

func (r *RPCServer) Restore(ctx context.Context, req *proto.RestoreRequest) (*proto.RestoreResponse, error) {
	span := trace.SpanFromContextSafe(ctx)

	manifest, err := r.engine.Restore(ctx, req.Path, r.limiter)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("restore", "error").Inc()
		span.Errorf("restore from %s failed: %s", req.Path, errors.Detail(err))
		return &proto.RestoreResponse{Success: false, Error: err.Error()}, nil
	}

	metrics.BackupsTotal.WithLabelValues("restore", "ok").Inc()
	span.Infof("restore %s finished, %d tables", manifest.ID, len(manifest.Tables))
	return &proto.RestoreResponse{Success: true}, nil
}

// util function

func statusFromErr(err error) error {
	switch {
	case stderrors.Is(err, apierrors.ErrUserNotFound):
		return status.Error(codes.NotFound, err.Error())
	case stderrors.Is(err, apierrors.ErrEmailAlreadyUsed):
		return status.Error(codes.AlreadyExists, err.Error())
	case stderrors.Is(err, apierrors.ErrInvalidEmail),
		stderrors.Is(err, apierrors.ErrInvalidPassword),
		stderrors.Is(err, apierrors.ErrInvalidRole),
		stderrors.Is(err, apierrors.ErrInvalidName):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func (r *RPCServer) unaryInterceptorWithTracer(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Internal, "failed to get metadata")
	}
	reqId, ok := md[proto.ReqIdKey]
	if ok {
		var span trace.Span
		span, ctx = trace.StartSpanFromContextWithTraceID(ctx, info.FullMethod, reqId[0])
		defer span.Finish()
	} else {
		trace.SpanFromContextSafe(ctx)
	}

	resp, err = handler(ctx, req)
	return
}

func (r *RPCServer) unaryInterceptorWithAuditLog(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	start := time.Now()

	resp, err = handler(ctx, req)

	duration := int64(time.Since(start) / time.Millisecond)
	log.Info(auditRecord(info.FullMethod, req, resp, duration))

	return
}

func auditRecord(method string, req, resp interface{}, duration int64) string {
	in, _ := json.Marshal(redactForAudit(req))
	out, _ := json.Marshal(resp)
	bw := auditLogPool.Get().(*bytes.Buffer)
	defer auditLogPool.Put(bw)
	bw.Reset()
	bw.Write([]byte(method))
	bw.Write([]byte("\t"))
	bw.Write(in)
	bw.Write([]byte("\t"))
	bw.Write(out)
	bw.Write([]byte("\t"))
	bw.Write([]byte(strconv.FormatInt(duration, 10)))
	return bw.String()
}

// redactForAudit strips credentials from request bodies so they never
// reach the audit log.
func redactForAudit(req interface{}) interface{} {
	switch v := req.(type) {
	case *proto.CreateUserRequest:
		cp := *v
		cp.Password = "<redacted>"
		return &cp
	case *proto.ConnectRequest:
		if u, err := url.Parse(v.Url); err == nil && u.User != nil {
			cp := *v
			cp.Url = u.Redacted()
			return &cp
		}
	}
	return req
}
