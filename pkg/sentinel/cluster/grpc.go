/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cluster

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"mosn.io/sentinel/pkg/sentinel/base"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonCodec lets the cluster token RPC ride over grpc's framing without a
// .proto/protoc step: the wire format is intentionally left unmandated,
// so a JSON codec is a legitimate substitute for generated
// protobuf, registered the same way any other grpc.Codec would be.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error)      { return jsonAPI.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return jsonAPI.Unmarshal(data, v) }
func (jsonCodec) Name() string                               { return "sentinel-json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

const serviceName = "sentinel.cluster.TokenService"

// TokenRequest/TokenResponse are the wire types for the RequestToken RPC.
type TokenRequest struct {
	FlowID       uint64 `json:"flow_id"`
	AcquireCount int64  `json:"acquire_count"`
	Prioritized  bool   `json:"prioritized"`
}

type TokenResponse struct {
	Status     int32 `json:"status"`
	Remaining  int64 `json:"remaining"`
	WaitMillis int64 `json:"wait_millis"`
}

// RegisterServer wires an EmbeddedServer into a *grpc.Server under the
// hand-written ServiceDesc below.
func RegisterServer(s *grpc.Server, impl TokenService) {
	s.RegisterService(&serviceDesc, impl)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TokenService)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RequestToken",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				req := new(TokenRequest)
				if err := dec(req); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return requestTokenHandler(srv, ctx, req)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/RequestToken"}
				return interceptor(ctx, req, info, func(ctx context.Context, req interface{}) (interface{}, error) {
					return requestTokenHandler(srv, ctx, req.(*TokenRequest))
				})
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sentinel/cluster/token.proto",
}

func requestTokenHandler(srv interface{}, ctx context.Context, req *TokenRequest) (interface{}, error) {
	result, err := srv.(TokenService).RequestToken(req.FlowID, req.AcquireCount, req.Prioritized)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{Status: int32(result.Status), Remaining: result.Remaining, WaitMillis: result.WaitMillis}, nil
}

// RemoteClient talks to a remote EmbeddedServer over grpc using jsonCodec.
type RemoteClient struct {
	conn *grpc.ClientConn
}

// NewRemoteClient wraps an already-dialed connection (dial with
// grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})) at minimum).
func NewRemoteClient(conn *grpc.ClientConn) *RemoteClient {
	return &RemoteClient{conn: conn}
}

func (c *RemoteClient) RequestToken(flowID uint64, acquireCount int64, prioritized bool) (*base.TokenResult, error) {
	req := &TokenRequest{FlowID: flowID, AcquireCount: acquireCount, Prioritized: prioritized}
	resp := new(TokenResponse)
	if err := c.conn.Invoke(context.Background(), "/"+serviceName+"/RequestToken", req, resp, grpc.ForceCodec(jsonCodec{})); err != nil {
		return nil, err
	}
	return &base.TokenResult{Status: base.TokenStatus(resp.Status), Remaining: resp.Remaining, WaitMillis: resp.WaitMillis}, nil
}
