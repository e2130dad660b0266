package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"distracted/internal/modules/recognition/domain"
	"distracted/internal/modules/recognition/dto"
	recognitionout "distracted/internal/modules/recognition/port/out"
	apperrors "distracted/internal/platform/errors"
)

type RecognitionService struct {
	store recognitionout.ManifestStore
	host  recognitionout.Host
}

func NewRecognitionService(store recognitionout.ManifestStore, host recognitionout.Host) *RecognitionService {
	return &RecognitionService{store: store, host: host}
}

func (s *RecognitionService) List(ctx context.Context) ([]dto.RecognizerInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecognizerInfo, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, dto.RecognizerInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, MinConfidence: m.MinConfidence})
	}
	return out, nil
}

func (s *RecognitionService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			meta, err := s.host.CheckLifecycle(ctx, m)
			if err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
				result.Vocabulary = meta.Vocabulary
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

// Open starts the named recognizer and returns a stream of frames filtered
// by the manifest's minimum confidence.
func (s *RecognitionService) Open(ctx context.Context, name string) (*FrameStream, error) {
	manifest, err := s.getRunnableManifest(ctx, name)
	if err != nil {
		return nil, err
	}
	if s.host == nil {
		return nil, fmt.Errorf("recognizer host is not configured")
	}
	conn, err := s.host.Connect(ctx, manifest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRecognizerTimeout, name)
		}
		return nil, err
	}
	return &FrameStream{name: manifest.Name, minConfidence: manifest.MinConfidence, conn: conn}, nil
}

func (s *RecognitionService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate recognizer name: %s", apperrors.ErrInvalidInput, manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func (s *RecognitionService) getRunnableManifest(ctx context.Context, name string) (domain.Manifest, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	for _, item := range manifests {
		if item.Name != name {
			continue
		}
		if !item.Enabled {
			return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrRecognizerDisabled, name)
		}
		if err := checksumMatches(item.Binary, item.SHA256); err != nil {
			return domain.Manifest{}, err
		}
		return item, nil
	}
	return domain.Manifest{}, fmt.Errorf("%w: recognizer %q", apperrors.ErrNotFound, name)
}

// FrameStream numbers requests and filters what comes back. Calls are
// serialized; a recognizer handles one frame at a time.
type FrameStream struct {
	name          string
	minConfidence float64
	conn          recognitionout.Connection

	mu       sync.Mutex
	sequence int64
	closed   bool
}

func (f *FrameStream) Name() string {
	return f.name
}

func (f *FrameStream) Next(ctx context.Context) (dto.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return dto.Frame{}, fmt.Errorf("recognizer %s is closed", f.name)
	}
	f.sequence++
	frame, err := f.conn.Recognize(ctx, f.sequence)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return dto.Frame{}, fmt.Errorf("%w: %s", domain.ErrRecognizerTimeout, f.name)
		}
		return dto.Frame{}, err
	}
	filtered := frame.Filter(f.minConfidence)
	out := dto.Frame{Sequence: filtered.Sequence, CapturedAt: filtered.CapturedAt}
	for _, label := range filtered.Labels {
		out.Labels = append(out.Labels, dto.Label{Name: label.Name, Confidence: label.Confidence})
	}
	return out, nil
}

func (f *FrameStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.conn.Close()
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read recognizer binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
