package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"distracted/internal/modules/recognition/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

var vocabulary = []string{
	"cup", "spoon", "plate", "bowl", "bottle", "book", "pen", "keys",
	"phone", "remote", "chair", "couch", "tv", "laptop", "clock", "potted plant",
}

// server replays frames from RECOGNIZER_FRAMES, one frame per line with
// comma-separated labels, each optionally suffixed with :confidence. Without
// a frames file it reports random labels from the vocabulary.
type server struct {
	mu     sync.Mutex
	frames [][]rpc.Label
	rng    *rand.Rand
}

func (s *server) GetMetadata(_ context.Context, _ *rpc.Empty) (*rpc.Metadata, error) {
	return &rpc.Metadata{Name: "reference", Version: "1.0.0", Vocabulary: vocabulary}, nil
}

func (s *server) Recognize(_ context.Context, in *rpc.RecognizeRequest) (*rpc.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := &rpc.Frame{Sequence: in.Sequence, CapturedAtUnixMS: time.Now().UnixMilli()}
	if len(s.frames) > 0 {
		idx := int((in.Sequence - 1) % int64(len(s.frames)))
		if idx < 0 {
			idx = 0
		}
		frame.Labels = s.frames[idx]
		return frame, nil
	}
	for i := 0; i < 1+s.rng.Intn(3); i++ {
		frame.Labels = append(frame.Labels, rpc.Label{
			Name:       vocabulary[s.rng.Intn(len(vocabulary))],
			Confidence: 0.3 + 0.7*s.rng.Float64(),
		})
	}
	return frame, nil
}

func loadFrames(path string) ([][]rpc.Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var frames [][]rpc.Label
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var labels []rpc.Label
		for _, part := range strings.Split(line, ",") {
			name, conf, hasConf := strings.Cut(strings.TrimSpace(part), ":")
			label := rpc.Label{Name: strings.TrimSpace(name), Confidence: 1}
			if hasConf {
				value, err := strconv.ParseFloat(strings.TrimSpace(conf), 64)
				if err != nil {
					return nil, fmt.Errorf("parse confidence %q: %w", part, err)
				}
				label.Confidence = value
			}
			if label.Name != "" {
				labels = append(labels, label)
			}
		}
		frames = append(frames, labels)
	}
	return frames, scanner.Err()
}

func main() {
	impl := &server{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	if path := os.Getenv("RECOGNIZER_FRAMES"); path != "" {
		frames, err := loadFrames(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load frames: %v\n", err)
			os.Exit(1)
		}
		impl.frames = frames
	}
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: rpc.HandshakeConfig,
		Plugins:         rpc.PluginMap(impl),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
