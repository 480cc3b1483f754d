package starter

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "sprintstart.v1.StarterService"

// Full method names.
const (
	MethodStart      = "/" + ServiceName + "/Start"
	MethodReset      = "/" + ServiceName + "/Reset"
	MethodGetStatus  = "/" + ServiceName + "/GetStatus"
	MethodWatch      = "/" + ServiceName + "/Watch"
	MethodGetConfig  = "/" + ServiceName + "/GetConfig"
	MethodSaveConfig = "/" + ServiceName + "/SaveConfig"
)

// StarterServiceServer is the server API of the starter service.
type StarterServiceServer interface {
	Start(ctx context.Context, req *StartRequest) (*StartResponse, error)
	Reset(ctx context.Context, req *ResetRequest) (*StatusResponse, error)
	GetStatus(ctx context.Context, req *StatusRequest) (*StatusResponse, error)
	Watch(req *WatchRequest, stream grpc.ServerStreamingServer[StatusResponse]) error
	GetConfig(ctx context.Context, req *ConfigRequest) (*ConfigResponse, error)
	SaveConfig(ctx context.Context, req *SaveConfigRequest) (*ConfigResponse, error)
}

// StarterServiceClient is the client API of the starter service.
type StarterServiceClient interface {
	Start(ctx context.Context, req *StartRequest, opts ...grpc.CallOption) (*StartResponse, error)
	Reset(ctx context.Context, req *ResetRequest, opts ...grpc.CallOption) (*StatusResponse, error)
	GetStatus(ctx context.Context, req *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error)
	Watch(ctx context.Context, req *WatchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[StatusResponse], error)
	GetConfig(ctx context.Context, req *ConfigRequest, opts ...grpc.CallOption) (*ConfigResponse, error)
	SaveConfig(ctx context.Context, req *SaveConfigRequest, opts ...grpc.CallOption) (*ConfigResponse, error)
}

// ServiceDesc describes the starter service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StarterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Start",
			Handler:    unaryHandler(MethodStart, StarterServiceServer.Start),
		},
		{
			MethodName: "Reset",
			Handler:    unaryHandler(MethodReset, StarterServiceServer.Reset),
		},
		{
			MethodName: "GetStatus",
			Handler:    unaryHandler(MethodGetStatus, StarterServiceServer.GetStatus),
		},
		{
			MethodName: "GetConfig",
			Handler:    unaryHandler(MethodGetConfig, StarterServiceServer.GetConfig),
		},
		{
			MethodName: "SaveConfig",
			Handler:    unaryHandler(MethodSaveConfig, StarterServiceServer.SaveConfig),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "sprintstart/v1/starter",
}

// RegisterStarterServiceServer registers srv on s.
func RegisterStarterServiceServer(s grpc.ServiceRegistrar, srv StarterServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(StarterServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(StarterServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StarterServiceServer), ctx, req.(*Req))
		}

		return interceptor(ctx, in, info, handler)
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(WatchRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	return srv.(StarterServiceServer).Watch(in, &grpc.GenericServerStream[WatchRequest, StatusResponse]{ServerStream: stream})
}

// starterServiceClient invokes the service over a connection.
type starterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewStarterServiceClient creates a client over cc. Calls use the CBOR codec.
func NewStarterServiceClient(cc grpc.ClientConnInterface) StarterServiceClient {
	return &starterServiceClient{cc: cc}
}

func (c *starterServiceClient) Start(ctx context.Context, req *StartRequest, opts ...grpc.CallOption) (*StartResponse, error) {
	return invoke[StartResponse](ctx, c.cc, MethodStart, req, opts)
}

func (c *starterServiceClient) Reset(ctx context.Context, req *ResetRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, MethodReset, req, opts)
}

func (c *starterServiceClient) GetStatus(ctx context.Context, req *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, MethodGetStatus, req, opts)
}

func (c *starterServiceClient) GetConfig(ctx context.Context, req *ConfigRequest, opts ...grpc.CallOption) (*ConfigResponse, error) {
	return invoke[ConfigResponse](ctx, c.cc, MethodGetConfig, req, opts)
}

func (c *starterServiceClient) SaveConfig(ctx context.Context, req *SaveConfigRequest, opts ...grpc.CallOption) (*ConfigResponse, error) {
	return invoke[ConfigResponse](ctx, c.cc, MethodSaveConfig, req, opts)
}

func (c *starterServiceClient) Watch(
	ctx context.Context,
	req *WatchRequest,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[StatusResponse], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], MethodWatch, callOptions(opts)...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[WatchRequest, StatusResponse]{ClientStream: stream}

	if err = x.SendMsg(req); err != nil {
		return nil, err
	}

	if err = x.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, req any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, req, out, callOptions(opts)...); err != nil {
		return nil, err
	}

	return out, nil
}

// callOptions selects the CBOR codec ahead of caller options.
func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
