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
	"net/http"
	"strconv"
	"time"

	"github.com/cubefs/cubefs/blobstore/common/profile"
	"github.com/cubefs/cubefs/blobstore/common/rpc"
	"github.com/cubefs/cubefs/blobstore/util/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omnipro/omniprodb/metrics"
	"github.com/omnipro/omniprodb/util/limiter"
)

const (
	defaultShutdownTimeoutS      = 10
	defaultReadRequestTimeoutS   = 30
	defaultWriteResponseTimeoutS = 30
)

type HttpServer struct {
	httpServer *http.Server

	*Server
}

func NewHttpServer(server *Server) *HttpServer {
	return &HttpServer{Server: server}
}

func (h *HttpServer) Serve(addr string) {
	ph := profile.NewProfileHandler(addr)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      rpc.MiddlewareHandlerWith(h.newHandler(), ph),
		ReadTimeout:  defaultReadRequestTimeoutS * time.Second,
		WriteTimeout: defaultWriteResponseTimeoutS * time.Second,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server exits:", err)
		}
	}()
	h.httpServer = httpServer

	log.Info("http server is running at:", addr)
}

func (h *HttpServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeoutS*time.Second)
	defer cancel()

	h.httpServer.Shutdown(ctx)
}

func (h *HttpServer) newHandler() *rpc.Router {
	rpc.GET("/stats", h.Stats, rpc.OptArgsQuery())
	rpc.GET("/metrics", h.Metrics, rpc.OptArgsQuery())
	rpc.GET("/ml/datasets", h.ListDatasets, rpc.OptArgsQuery())
	rpc.GET("/ml/models", h.ListModels, rpc.OptArgsQuery())

	return rpc.DefaultRouter
}

type statsRet struct {
	Healthy bool           `json:"healthy"`
	Status  string         `json:"status"`
	Limiter limiter.Status `json:"limiter"`
}

func (h *HttpServer) Stats(c *rpc.Context) {
	ret := statsRet{
		Healthy: true,
		Status:  "ok",
		Limiter: h.limiter.Status(),
	}
	if err := h.engine.HealthCheck(c.Request.Context()); err != nil {
		ret.Healthy = false
		ret.Status = err.Error()
	}

	c.RespondJSON(ret)
}

func (h *HttpServer) Metrics(c *rpc.Context) {
	promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}).
		ServeHTTP(c.Writer, c.Request)
}

func (h *HttpServer) ListDatasets(c *rpc.Context) {
	limit, offset := pageArgs(c.Request)
	datasets, err := h.mlstore.ListDatasets(c.Request.Context(), limit, offset)
	if err != nil {
		c.RespondError(err)
		return
	}
	c.RespondJSON(datasets)
}

func (h *HttpServer) ListModels(c *rpc.Context) {
	limit, offset := pageArgs(c.Request)
	models, err := h.mlstore.ListModels(c.Request.Context(), limit, offset)
	if err != nil {
		c.RespondError(err)
		return
	}
	c.RespondJSON(models)
}

const defaultPageLimit = 100

func pageArgs(r *http.Request) (limit, offset int64) {
	q := r.URL.Query()
	limit, _ = strconv.ParseInt(q.Get("limit"), 10, 64)
	if limit <= 0 || limit > 1000 {
		limit = defaultPageLimit
	}
	offset, _ = strconv.ParseInt(q.Get("offset"), 10, 64)
	if offset < 0 {
		offset = 0
	}
	return
}
