package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	devicerpc "faceclass/internal/modules/device/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

// server pretends to run face recognition: it trusts the hint and derives a
// stable confidence from it. Hints starting with "unknown" never match.
type server struct{}

func (s *server) Describe(_ context.Context, _ *devicerpc.Empty) (*devicerpc.Metadata, error) {
	return &devicerpc.Metadata{
		Name:         "simdevice",
		Version:      "1.0.0",
		Model:        "FaceScan SIM-1",
		Capabilities: []string{"recognize", "liveness"},
	}, nil
}

func (s *server) Recognize(_ context.Context, in *devicerpc.RecognizeRequest) (*devicerpc.RecognizeResponse, error) {
	hint := strings.TrimSpace(in.Hint)
	if hint == "" {
		return nil, fmt.Errorf("empty hint")
	}
	if strings.HasPrefix(strings.ToLower(hint), "unknown") {
		return &devicerpc.RecognizeResponse{Matched: false}, nil
	}
	return &devicerpc.RecognizeResponse{
		Matched:     true,
		DisplayName: hint,
		Confidence:  confidence(hint),
	}, nil
}

// confidence maps name onto [0.85, 0.99].
func confidence(name string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(name)))
	return 0.85 + float64(h.Sum32()%15)/100
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: devicerpc.HandshakeConfig,
		Plugins:         devicerpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
