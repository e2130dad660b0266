package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	recognitionout "distracted/internal/modules/recognition/adapter/out"
	"distracted/internal/modules/recognition/domain"
	recognitionport "distracted/internal/modules/recognition/port/out"
	"distracted/internal/modules/recognition/service"
	apperrors "distracted/internal/platform/errors"
)

type fakeConnection struct {
	frames []domain.Frame
	closed bool
}

func (c *fakeConnection) Metadata(context.Context) (domain.Metadata, error) {
	return domain.Metadata{Name: "fake", Version: "1", Vocabulary: []string{"cup"}}, nil
}

func (c *fakeConnection) Recognize(_ context.Context, sequence int64) (domain.Frame, error) {
	frame := c.frames[int(sequence-1)%len(c.frames)]
	frame.Sequence = sequence
	return frame, nil
}

func (c *fakeConnection) Close() error {
	c.closed = true
	return nil
}

type fakeHost struct {
	conn *fakeConnection
}

func (h fakeHost) CheckLifecycle(ctx context.Context, _ domain.Manifest) (domain.Metadata, error) {
	return h.conn.Metadata(ctx)
}

func (h fakeHost) Connect(context.Context, domain.Manifest) (recognitionport.Connection, error) {
	return h.conn, nil
}

func writeBinary(t *testing.T, dir string) (string, string) {
	t.Helper()
	binPath := filepath.Join(dir, "recognizer-bin")
	payload := []byte("not-a-real-recognizer")
	if err := os.WriteFile(binPath, payload, 0o755); err != nil {
		t.Fatalf("write recognizer binary: %v", err)
	}
	hash := sha256.Sum256(payload)
	return binPath, hex.EncodeToString(hash[:])
}

func writeManifestFile(t *testing.T, base string, manifests []domain.Manifest) {
	t.Helper()
	dir := filepath.Join(base, "recognizers")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir recognizers: %v", err)
	}
	raw, _ := json.Marshal(manifests)
	if err := os.WriteFile(filepath.Join(dir, "recognizers.json"), raw, 0o644); err != nil {
		t.Fatalf("write recognizers.json: %v", err)
	}
}

func TestDoctorDetectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	binPath, _ := writeBinary(t, tmp)
	writeManifestFile(t, tmp, []domain.Manifest{{
		Name:    "demo",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  strings.Repeat("0", 64),
		Enabled: true,
	}})

	svc := service.NewRecognitionService(recognitionout.NewFileManifestStore(tmp, ""), nil)
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	if results[0].ChecksumValid || !results[0].BinaryReachable {
		t.Fatalf("expected checksum mismatch: %+v", results[0])
	}
}

func TestDoctorChecksLifecycle(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	binPath, checksum := writeBinary(t, tmp)
	writeManifestFile(t, tmp, []domain.Manifest{{Name: "demo", Version: "1.0.0", Binary: binPath, SHA256: checksum, Enabled: true}})

	svc := service.NewRecognitionService(recognitionout.NewFileManifestStore(tmp, ""), fakeHost{conn: &fakeConnection{}})
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !results[0].LifecycleOK || len(results[0].Vocabulary) != 1 {
		t.Fatalf("expected healthy recognizer: %+v", results[0])
	}
}

func TestOpenFiltersFramesByMinConfidence(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	binPath, checksum := writeBinary(t, tmp)
	writeManifestFile(t, tmp, []domain.Manifest{{Name: "demo", Version: "1.0.0", Binary: binPath, SHA256: checksum, Enabled: true, MinConfidence: 0.6}})
	conn := &fakeConnection{frames: []domain.Frame{{Labels: []domain.Label{{Name: "Cup", Confidence: 0.7}, {Name: "chair", Confidence: 0.4}}}}}

	svc := service.NewRecognitionService(recognitionout.NewFileManifestStore(tmp, ""), fakeHost{conn: conn})
	stream, err := svc.Open(context.Background(), "demo")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	frame, err := stream.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if frame.Sequence != 1 || len(frame.Labels) != 1 || frame.Labels[0].Name != "cup" {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	if second, _ := stream.Next(context.Background()); second.Sequence != 2 {
		t.Fatalf("sequence must increase: %+v", second)
	}
	if err := stream.Close(); err != nil || !conn.closed {
		t.Fatalf("close: %v closed=%v", err, conn.closed)
	}
	if _, err := stream.Next(context.Background()); err == nil {
		t.Fatalf("closed stream must refuse frames")
	}
}

func TestOpenRefusesDisabledMismatchedAndUnknown(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	binPath, checksum := writeBinary(t, tmp)
	writeManifestFile(t, tmp, []domain.Manifest{
		{Name: "off", Version: "1", Binary: binPath, SHA256: checksum, Enabled: false},
		{Name: "tampered", Version: "1", Binary: binPath, SHA256: strings.Repeat("b", 64), Enabled: true},
	})
	svc := service.NewRecognitionService(recognitionout.NewFileManifestStore(tmp, ""), fakeHost{conn: &fakeConnection{}})
	ctx := context.Background()
	if _, err := svc.Open(ctx, "off"); !errors.Is(err, domain.ErrRecognizerDisabled) {
		t.Fatalf("disabled err = %v", err)
	}
	if _, err := svc.Open(ctx, "tampered"); !errors.Is(err, domain.ErrChecksumMismatch) {
		t.Fatalf("tampered err = %v", err)
	}
	if _, err := svc.Open(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestListRejectsDuplicateNames(t *testing.T) {
	t.Parallel()
	tmp := t.TempDir()
	sha := strings.Repeat("a", 64)
	writeManifestFile(t, tmp, []domain.Manifest{
		{Name: "dup", Version: "1", Binary: "/tmp/a", SHA256: sha},
		{Name: "dup", Version: "2", Binary: "/tmp/b", SHA256: sha},
	})
	svc := service.NewRecognitionService(recognitionout.NewFileManifestStore(tmp, ""), nil)
	if _, err := svc.List(context.Background()); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("duplicate err = %v", err)
	}
}
