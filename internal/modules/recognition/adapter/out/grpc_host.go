package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"distracted/internal/modules/recognition/adapter/out/rpc"
	"distracted/internal/modules/recognition/domain"
	recognitionout "distracted/internal/modules/recognition/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

type GRPCHost struct {
	logger hclog.Logger
}

// NewGRPCHost runs recognizers through go-plugin. A nil logger discards the
// plugin process output.
func NewGRPCHost(logger hclog.Logger) *GRPCHost {
	if logger == nil {
		logger = hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel})
	}
	return &GRPCHost{logger: logger}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	conn, err := h.Connect(ctx, manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer conn.Close()
	return conn.Metadata(ctx)
}

func (h *GRPCHost) Connect(_ context.Context, manifest domain.Manifest) (recognitionout.Connection, error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  rpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          rpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           h.logger.Named(manifest.Name),
	})
	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start recognizer client: %w", err)
	}
	raw, err := rpcClient.Dispense(rpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense recognizer: %w", err)
	}
	typed, ok := raw.(rpc.RecognizerClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("recognizer rpc client type mismatch")
	}
	return &grpcConnection{client: client, rpc: typed}, nil
}

type grpcConnection struct {
	client *plugin.Client
	rpc    rpc.RecognizerClient
}

func (c *grpcConnection) Metadata(ctx context.Context) (domain.Metadata, error) {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := c.rpc.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Vocabulary: meta.Vocabulary}, nil
}

func (c *grpcConnection) Recognize(ctx context.Context, sequence int64) (domain.Frame, error) {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	frame, err := c.rpc.Recognize(callCtx, &rpc.RecognizeRequest{Sequence: sequence})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.Frame{}, fmt.Errorf("%w: frame %d", domain.ErrRecognizerTimeout, sequence)
		}
		return domain.Frame{}, fmt.Errorf("recognize: %w", err)
	}
	out := domain.Frame{Sequence: frame.Sequence, CapturedAt: time.UnixMilli(frame.CapturedAtUnixMS).UTC()}
	for _, label := range frame.Labels {
		out.Labels = append(out.Labels, domain.Label{Name: label.Name, Confidence: label.Confidence})
	}
	return out, nil
}

func (c *grpcConnection) Close() error {
	c.client.Kill()
	return nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
