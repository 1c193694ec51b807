package in

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"trafficwatch/internal/modules/monitor/dto"
	"trafficwatch/internal/platform/grpcjson"
)

const (
	historyServiceName = "trafficwatch.history.v1.HistoryService"
	methodListSamples  = "/" + historyServiceName + "/ListSamples"
	methodLatest       = "/" + historyServiceName + "/Latest"
	methodStats        = "/" + historyServiceName + "/Stats"
)

type Empty struct{}

type ListSamplesRequest struct {
	Limit int32  `json:"limit"`
	Since string `json:"since,omitempty"`
}

type ListSamplesResponse struct {
	Samples []dto.SampleOutput `json:"samples"`
}

type StatsRequest struct {
	Since string `json:"since,omitempty"`
	Until string `json:"until,omitempty"`
}

type HistoryServiceServer interface {
	ListSamples(ctx context.Context, in *ListSamplesRequest) (*ListSamplesResponse, error)
	Latest(ctx context.Context, in *Empty) (*dto.SampleOutput, error)
	Stats(ctx context.Context, in *StatsRequest) (*dto.StatsOutput, error)
}

type HistoryServiceClient interface {
	ListSamples(ctx context.Context, in *ListSamplesRequest) (*ListSamplesResponse, error)
	Latest(ctx context.Context) (*dto.SampleOutput, error)
	Stats(ctx context.Context, in *StatsRequest) (*dto.StatsOutput, error)
}

type historyServiceClient struct {
	conn grpc.ClientConnInterface
}

func NewHistoryServiceClient(conn grpc.ClientConnInterface) HistoryServiceClient {
	return &historyServiceClient{conn: conn}
}

func (c *historyServiceClient) ListSamples(ctx context.Context, in *ListSamplesRequest) (*ListSamplesResponse, error) {
	out := &ListSamplesResponse{}
	if err := c.conn.Invoke(ctx, methodListSamples, in, out, grpcjson.CallOption()); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *historyServiceClient) Latest(ctx context.Context) (*dto.SampleOutput, error) {
	out := &dto.SampleOutput{}
	if err := c.conn.Invoke(ctx, methodLatest, &Empty{}, out, grpcjson.CallOption()); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *historyServiceClient) Stats(ctx context.Context, in *StatsRequest) (*dto.StatsOutput, error) {
	out := &dto.StatsOutput{}
	if err := c.conn.Invoke(ctx, methodStats, in, out, grpcjson.CallOption()); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterHistoryServiceServer(server grpc.ServiceRegistrar, impl HistoryServiceServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: historyServiceName,
		HandlerType: (*HistoryServiceServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "ListSamples",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &ListSamplesRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.ListSamples(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodListSamples}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*ListSamplesRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.ListSamples(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Latest",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Latest(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodLatest}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Latest(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Stats",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &StatsRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Stats(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodStats}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*StatsRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Stats(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "trafficwatch/history/v1",
	}, impl)
}
