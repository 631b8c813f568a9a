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
	PluginMapKey    = "scanner"
	serviceName     = "faceclass.device.v1.ScannerDevice"
	jsonCodecName   = "json"
	methodDescribe  = "/" + serviceName + "/Describe"
	methodRecognize = "/" + serviceName + "/Recognize"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "FACECLASS_DEVICE",
	MagicCookieValue: "faceclass",
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
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Model        string   `json:"model"`
	Capabilities []string `json:"capabilities"`
}

type RecognizeRequest struct {
	Hint string `json:"hint"`
	// CapturedAtUnixMS is zero when the host did not timestamp the frame.
	CapturedAtUnixMS int64 `json:"captured_at_unix_ms"`
}

type RecognizeResponse struct {
	Matched     bool    `json:"matched"`
	StudentID   string  `json:"student_id"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence"`
}

type ScannerDeviceServer interface {
	Describe(ctx context.Context, in *Empty) (*Metadata, error)
	Recognize(ctx context.Context, in *RecognizeRequest) (*RecognizeResponse, error)
}

type ScannerDeviceClient interface {
	Describe(ctx context.Context) (*Metadata, error)
	Recognize(ctx context.Context, in *RecognizeRequest) (*RecognizeResponse, error)
}

type scannerDeviceClient struct {
	conn *grpc.ClientConn
}

func NewScannerDeviceClient(conn *grpc.ClientConn) ScannerDeviceClient {
	return &scannerDeviceClient{conn: conn}
}

func (c *scannerDeviceClient) Describe(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodDescribe, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *scannerDeviceClient) Recognize(ctx context.Context, in *RecognizeRequest) (*RecognizeResponse, error) {
	out := &RecognizeResponse{}
	if err := c.conn.Invoke(ctx, methodRecognize, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterScannerDeviceServer(server grpc.ServiceRegistrar, impl ScannerDeviceServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*ScannerDeviceServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Describe",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Describe(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDescribe}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Describe(ctx, empty)
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
		Metadata: "faceclass/device/v1/scanner.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl ScannerDeviceServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterScannerDeviceServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewScannerDeviceClient(conn), nil
}

func PluginMap(impl ScannerDeviceServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
