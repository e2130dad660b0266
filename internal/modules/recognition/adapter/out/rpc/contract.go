package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "recognizer"
	serviceName       = "distracted.recognizer.v1.Recognizer"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodRecognize   = "/" + serviceName + "/Recognize"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DISTRACTED_RECOGNIZER",
	MagicCookieValue: "distracted",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name       string   `json:"name"`
	Version    string   `json:"version"`
	Vocabulary []string `json:"vocabulary"`
}

type RecognizeRequest struct {
	Sequence int64 `json:"sequence"`
}

type Label struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type Frame struct {
	Sequence         int64   `json:"sequence"`
	Labels           []Label `json:"labels"`
	CapturedAtUnixMS int64   `json:"captured_at_unix_ms"`
}

type RecognizerServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Recognize(ctx context.Context, in *RecognizeRequest) (*Frame, error)
}

type RecognizerClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Recognize(ctx context.Context, in *RecognizeRequest) (*Frame, error)
}

type recognizerClient struct {
	conn *grpc.ClientConn
}

func NewRecognizerClient(conn *grpc.ClientConn) RecognizerClient {
	return &recognizerClient{conn: conn}
}

func (c *recognizerClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *recognizerClient) Recognize(ctx context.Context, in *RecognizeRequest) (*Frame, error) {
	out := &Frame{}
	if err := c.conn.Invoke(ctx, methodRecognize, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterRecognizerServer(server grpc.ServiceRegistrar, impl RecognizerServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*RecognizerServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "Recognize",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &RecognizeRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Recognize(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodRecognize}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*RecognizeRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Recognize(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/recognizer-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl RecognizerServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterRecognizerServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewRecognizerClient(conn), nil
}

func PluginMap(impl RecognizerServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
