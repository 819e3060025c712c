package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jobrunner/meridian/internal/domain"
	"github.com/jobrunner/meridian/internal/ports/output"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// countingSource implements output.DefinitionSource for testing and counts
// lookups per requested key.
type countingSource struct {
	defs  []*domain.RawDefinition
	delay time.Duration
	err   error
	block chan struct{} // when set, Lookup waits for it and ignores ctx

	mu    sync.Mutex
	calls map[string]int
	total atomic.Int64
}

func newCountingSource(defs ...*domain.RawDefinition) *countingSource {
	return &countingSource{defs: defs, calls: make(map[string]int)}
}

func (s *countingSource) Lookup(ctx context.Context, code domain.CRSCode) (*domain.RawDefinition, error) {
	s.mu.Lock()
	s.calls[code.Key()]++
	s.mu.Unlock()
	s.total.Add(1)

	if s.block != nil {
		<-s.block
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.defs {
		if d.Matches(code) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, code)
}

func (s *countingSource) add(def *domain.RawDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs = append(s.defs, def)
}

func (s *countingSource) callsFor(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

func dhdnDatum() *domain.RawDatum {
	return &domain.RawDatum{
		Code: "EPSG:6314",
		Name: "Deutsches Hauptdreiecksnetz",
		Ellipsoid: domain.RawEllipsoid{
			Code:              "EPSG:7004",
			Name:              "Bessel 1841",
			SemiMajorAxis:     6377397.155,
			InverseFlattening: 299.1528128,
		},
		ToWGS84: &domain.RawHelmert{
			Code: "EPSG:1777",
			DX:   598.1, DY: 73.7, DZ: 418.2,
			EX: 0.202, EY: 0.045, EZ: -2.455,
			PPM: 6.7,
		},
	}
}

func geographicDef(code, name string, datum *domain.RawDatum) *domain.RawDefinition {
	return &domain.RawDefinition{
		Code:  code,
		Name:  name,
		Kind:  domain.KindGeographic,
		Datum: datum,
		Axes: []domain.RawAxis{
			{Name: "Geodetic latitude", Direction: "north", Unit: "degree"},
			{Name: "Geodetic longitude", Direction: "east", Unit: "degree"},
		},
	}
}

func gaussKrugerDef(zone int) *domain.RawDefinition {
	return &domain.RawDefinition{
		Code: fmt.Sprintf("EPSG:%d", 31464+zone),
		Name: fmt.Sprintf("DHDN / 3-degree Gauss-Kruger zone %d", zone),
		Kind: domain.KindProjected,
		Base: "EPSG:4314",
		Projection: &domain.RawProjection{
			Method: []string{"Transverse Mercator", "EPSG:9807"},
			Parameters: []domain.RawParameter{
				{Codes: []string{"EPSG:8801", "latitude_of_origin"}, Value: 0, Unit: "degree"},
				{Codes: []string{"EPSG:8802", "central_meridian"}, Value: float64(3 * zone), Unit: "degree"},
				{Codes: []string{"EPSG:8805", "scale_factor"}, Value: 1},
				{Codes: []string{"EPSG:8806", "false_easting"}, Value: float64(zone)*1000000 + 500000, Unit: "metre"},
				{Codes: []string{"EPSG:8807", "false_northing"}, Value: 0, Unit: "metre"},
			},
		},
		Axes: []domain.RawAxis{
			{Name: "Northing", Direction: "north", Unit: "metre"},
			{Name: "Easting", Direction: "east", Unit: "metre"},
		},
	}
}

func wgs84Def() *domain.RawDefinition {
	def := geographicDef("EPSG:4326", "WGS 84", &domain.RawDatum{
		Code: "EPSG:6326",
		Name: "World Geodetic System 1984",
		Ellipsoid: domain.RawEllipsoid{
			Code: "EPSG:7030", Name: "WGS 84",
			SemiMajorAxis: 6378137, InverseFlattening: 298.257223563,
		},
	})
	def.Identifiers = []string{"OGC:4326"}
	return def
}

func testDefinitions() []*domain.RawDefinition {
	return []*domain.RawDefinition{
		wgs84Def(),
		geographicDef("EPSG:4314", "DHDN", dhdnDatum()),
		gaussKrugerDef(2),
		gaussKrugerDef(3),
	}
}

// mockMetrics implements output.MetricsCollector and records what the
// services report.
type mockMetrics struct {
	output.NoOpMetrics

	mu         sync.Mutex
	lookups    map[string]int
	transforms map[string]int
	cached     int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{lookups: make(map[string]int), transforms: make(map[string]int)}
}

func (m *mockMetrics) IncCacheLookup(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups[outcome]++
}

func (m *mockMetrics) SetCRSCached(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cached = n
}

func (m *mockMetrics) IncTransformCount(kind string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transforms[fmt.Sprintf("%s:%t", kind, success)]++
}

func (m *mockMetrics) lookupCount(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookups[outcome]
}

func (m *mockMetrics) transformCount(kind string, success bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transforms[fmt.Sprintf("%s:%t", kind, success)]
}

// mockStorage implements output.ObjectStorage for testing. Download writes the
// content registered for a key.
type mockStorage struct {
	objects     []output.StorageObject
	content     map[string]string
	listErr     error
	failures    int // number of downloads that fail before succeeding
	downloadErr error
	blocking    chan struct{} // when set, downloads signal here and wait for cancellation

	mu        sync.Mutex
	downloads int
}

func (m *mockStorage) List(_ context.Context) ([]output.StorageObject, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.objects, nil
}

func (m *mockStorage) Download(ctx context.Context, key, dest string) error {
	m.mu.Lock()
	m.downloads++
	n := m.downloads
	m.mu.Unlock()

	if m.blocking != nil {
		select {
		case m.blocking <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}
	if m.downloadErr != nil {
		return m.downloadErr
	}
	if n <= m.failures {
		return fmt.Errorf("transient failure %d", n)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(m.content[key]), 0o644)
}

func (m *mockStorage) GetReader(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m.content[key])), nil
}

func (m *mockStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.content[key]
	return ok, nil
}

func (m *mockStorage) downloadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.downloads
}

// mockReloader implements output.DefinitionReloader for testing.
type mockReloader struct {
	count int
	err   error
	calls atomic.Int64
}

func (m *mockReloader) Reload(_ context.Context) (int, error) {
	m.calls.Add(1)
	return m.count, m.err
}
