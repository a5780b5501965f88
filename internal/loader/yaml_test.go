package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"devicemap/internal/asset"
	apperr "devicemap/internal/errors"
	"devicemap/internal/repository/sqlite"
	"devicemap/internal/service"
)

const seedDoc = `
connection_types: [Ethernet]
devices:
  - name: Router1
    device_type: router
  - name: Switch1
    device_type: switch
connections:
  - from: Router1
    to: Switch1
    type: Ethernet
  - from: Switch1
    to: Switch1
    type: Fiber
  - from: Switch1
    to: Router1
`

func newServices(t *testing.T) *service.Services {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := zaptest.NewLogger(t)
	return service.New(service.Deps{
		Repository: repo,
		Assets:     asset.NewStore(asset.Config{Dir: t.TempDir()}, logger),
		Logger:     logger,
	})
}

func TestParseRejectsBadSeeds(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "hosts: {}\n"},
		{"duplicate device", "devices:\n  - {name: A, device_type: x}\n  - {name: A, device_type: y}\n"},
		{"blank device", "devices:\n  - {name: ' ', device_type: x}\n"},
		{"blank endpoint", "connections:\n  - {from: A}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.CodeValidation))
		})
	}
}

func TestParseEmptyDocument(t *testing.T) {
	seed, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, seed.Devices)
}

func TestApply(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()

	seed, err := Parse(strings.NewReader(seedDoc))
	require.NoError(t, err)

	result, err := Apply(ctx, svc, seed)
	require.NoError(t, err)
	assert.Equal(t, &Result{
		ConnectionTypesCreated: 2,
		ConnectionTypesReused:  0,
		DevicesCreated:         2,
		ConnectionsCreated:     3,
	}, result)

	g, err := svc.Graph.Export(ctx)
	require.NoError(t, err)
	require.Len(t, g.Edges, 3)
	assert.Equal(t, "Ethernet", g.Edges[0].Label)
	assert.Equal(t, "Fiber", g.Edges[1].Label)
	assert.Equal(t, "Undefined", g.Edges[2].Label)

	// A second run reuses types and devices but adds connections again.
	again, err := Apply(ctx, svc, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, again.DevicesReused)
	assert.Zero(t, again.DevicesCreated)
	assert.Zero(t, again.ConnectionTypesCreated)
	// Ethernet is listed and referenced, Fiber referenced twice; each counts once.
	assert.Equal(t, 2, again.ConnectionTypesReused)
	assert.Equal(t, 3, again.ConnectionsCreated)
}

func TestApplyUnknownDevice(t *testing.T) {
	svc := newServices(t)

	seed, err := Parse(strings.NewReader("connections:\n  - {from: Ghost, to: Ghost}\n"))
	require.NoError(t, err)

	_, err = Apply(context.Background(), svc, seed)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestApplyAmbiguousDevice(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := svc.Devices.Create(ctx, "Twin", "server", "")
		require.NoError(t, err)
	}

	seed, err := Parse(strings.NewReader("connections:\n  - {from: Twin, to: Twin}\n"))
	require.NoError(t, err)

	_, err = Apply(ctx, svc, seed)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

func TestApplyAmbiguousDeviceEntryWritesNothing(t *testing.T) {
	svc := newServices(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := svc.Devices.Create(ctx, "Twin", "server", "")
		require.NoError(t, err)
	}

	seed, err := Parse(strings.NewReader(`
connection_types: [Ethernet]
devices:
  - {name: Twin, device_type: server}
connections:
  - {from: Twin, to: Twin, type: Ethernet}
`))
	require.NoError(t, err)

	result, err := Apply(ctx, svc, seed)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Equal(t, &Result{}, result)

	devices, err := svc.Devices.List(ctx)
	require.NoError(t, err)
	assert.Len(t, devices, 2)

	types, err := svc.ConnectionTypes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, types)

	conns, err := svc.Connections.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, conns)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedDoc), 0644))

	seed, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, seed.Devices, 2)
	assert.Len(t, seed.Connections, 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
