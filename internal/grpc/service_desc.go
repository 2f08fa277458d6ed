package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "fantasydraft.v1.DraftService"

// DraftServiceServer is the server API for the draft service. Messages are
// protobuf well-known types; payload shapes match the HTTP JSON API.
type DraftServiceServer interface {
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Step(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitPick(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AutoPick(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Recommendations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Results(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	StreamEvents(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
}

// RegisterDraftServiceServer registers srv on s
func RegisterDraftServiceServer(s grpc.ServiceRegistrar, srv DraftServiceServer) {
	s.RegisterService(&DraftServiceDesc, srv)
}

func unary[Req any](name string, call func(DraftServiceServer, context.Context, *Req) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DraftServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(DraftServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// DraftServiceDesc is the grpc.ServiceDesc for the draft service
var DraftServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DraftServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetState", DraftServiceServer.GetState),
		unary("Step", DraftServiceServer.Step),
		unary("SubmitPick", DraftServiceServer.SubmitPick),
		unary("AutoPick", DraftServiceServer.AutoPick),
		unary("Recommendations", DraftServiceServer.Recommendations),
		unary("Results", DraftServiceServer.Results),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName: "StreamEvents",
			Handler: func(srv interface{}, stream grpc.ServerStream) error {
				in := new(emptypb.Empty)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(DraftServiceServer).StreamEvents(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
			},
			ServerStreams: true,
		},
	},
	Metadata: "fantasydraft/v1/draft.proto",
}

// DraftServiceClient calls the draft service
type DraftServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDraftServiceClient wraps a client connection
func NewDraftServiceClient(cc grpc.ClientConnInterface) *DraftServiceClient {
	return &DraftServiceClient{cc: cc}
}

func (c *DraftServiceClient) invoke(ctx context.Context, method string, in interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DraftServiceClient) GetState(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetState", &emptypb.Empty{}, opts...)
}

func (c *DraftServiceClient) Step(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Step", in, opts...)
}

func (c *DraftServiceClient) SubmitPick(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SubmitPick", in, opts...)
}

func (c *DraftServiceClient) AutoPick(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "AutoPick", &emptypb.Empty{}, opts...)
}

func (c *DraftServiceClient) Recommendations(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Recommendations", in, opts...)
}

func (c *DraftServiceClient) Results(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Results", &emptypb.Empty{}, opts...)
}

// StreamEvents opens the server-side event stream
func (c *DraftServiceClient) StreamEvents(ctx context.Context, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &DraftServiceDesc.Streams[0], "/"+ServiceName+"/StreamEvents", opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
