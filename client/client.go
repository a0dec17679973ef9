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

package client

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"

	"github.com/omnipro/omniprodb/proto"
)

// Client talks to a single gateway node and exposes both service
// surfaces over one connection.
type Client struct {
	proto.DatabaseServiceClient
	proto.DbServiceClient
	conn *grpc.ClientConn
}

func NewClient(address string) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(proto.CodecName),
		),
		grpc.WithKeepaliveParams(
			keepalive.ClientParameters{
				Time:                1 * time.Second,
				Timeout:             5 * time.Second,
				PermitWithoutStream: true,
			},
		),
	}

	dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))

	conn, err := grpc.Dial(address, dialOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		DatabaseServiceClient: proto.NewDatabaseServiceClient(conn),
		DbServiceClient:       proto.NewDbServiceClient(conn),
		conn:                  conn,
	}, nil
}

// WithReqId stamps an outgoing context with a request id the server
// picks up as its trace id. Callers may pass their own id through
// metadata instead.
func WithReqId(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, proto.ReqIdKey, uuid.NewString())
}

func (c *Client) Address() string {
	return c.conn.Target()
}

func (c *Client) Close() error {
	return c.conn.Close()
}
