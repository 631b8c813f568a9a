package out

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	devicerpc "faceclass/internal/modules/device/adapter/out/rpc"
	"faceclass/internal/modules/device/domain"
	"faceclass/internal/platform/logging"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// GRPCHost keeps one plugin process per device alive between calls, so a
// scan does not pay the process start cost. Close kills them all.
type GRPCHost struct {
	logger hclog.Logger

	mu      sync.Mutex
	clients map[string]*plugin.Client
}

func NewGRPCHost(logger hclog.Logger) *GRPCHost {
	return &GRPCHost{
		logger:  logging.OrDiscard(logger).Named("device-host"),
		clients: map[string]*plugin.Client{},
	}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.Describe(ctx, manifest)
	return err
}

func (h *GRPCHost) Describe(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.Describe(callCtx)
	if err != nil {
		h.drop(manifest.Name)
		return domain.Metadata{}, fmt.Errorf("describe device: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Model: meta.Model, Capabilities: capabilities}, nil
}

func (h *GRPCHost) Recognize(ctx context.Context, manifest domain.Manifest, req domain.RecognizeRequest) (domain.Recognition, error) {
	client, err := h.connect(manifest)
	if err != nil {
		return domain.Recognition{}, err
	}
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()

	in := &devicerpc.RecognizeRequest{Hint: req.Hint}
	if !req.CapturedAt.IsZero() {
		in.CapturedAtUnixMS = req.CapturedAt.UnixMilli()
	}
	response, err := client.Recognize(callCtx, in)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.Recognition{}, fmt.Errorf("%w: %s", domain.ErrDeviceTimeout, manifest.Name)
		}
		return domain.Recognition{}, fmt.Errorf("recognize: %w", err)
	}
	return domain.Recognition{
		Matched:     response.Matched,
		StudentID:   response.StudentID,
		DisplayName: response.DisplayName,
		Confidence:  response.Confidence,
	}, nil
}

// Close stops every plugin process started by the host.
func (h *GRPCHost) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for name, client := range h.clients {
		client.Kill()
		delete(h.clients, name)
	}
}

func (h *GRPCHost) connect(manifest domain.Manifest) (devicerpc.ScannerDeviceClient, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[manifest.Name]
	if ok && client.Exited() {
		client.Kill()
		delete(h.clients, manifest.Name)
		ok = false
	}
	if !ok {
		client = plugin.NewClient(&plugin.ClientConfig{
			HandshakeConfig:  devicerpc.HandshakeConfig,
			AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
			Plugins:          devicerpc.PluginMap(nil),
			Cmd:              exec.Command(manifest.Binary),
			Managed:          true,
			StartTimeout:     defaultStartTimeout,
			Logger:           h.logger.With("device", manifest.Name),
		})
		h.clients[manifest.Name] = client
	}

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		delete(h.clients, manifest.Name)
		return nil, fmt.Errorf("start device client: %w", err)
	}
	raw, err := rpcClient.Dispense(devicerpc.PluginMapKey)
	if err != nil {
		client.Kill()
		delete(h.clients, manifest.Name)
		return nil, fmt.Errorf("dispense device: %w", err)
	}
	typed, ok := raw.(devicerpc.ScannerDeviceClient)
	if !ok {
		client.Kill()
		delete(h.clients, manifest.Name)
		return nil, fmt.Errorf("device rpc client type mismatch")
	}
	return typed, nil
}

func (h *GRPCHost) drop(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[name]; ok {
		client.Kill()
		delete(h.clients, name)
	}
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
