package codec

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"devicemap/internal/domain"
)

func sampleInventory() *domain.Inventory {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ethID := int64(1)
	inv := domain.NewInventory()
	inv.TakenAt = created
	inv.Devices = []domain.Device{
		{ID: 1, Name: "Router1", DeviceType: "router", CreatedAt: created},
		{ID: 2, Name: "Switch1", DeviceType: "switch", ImageRef: "switch.png", CreatedAt: created},
	}
	inv.ConnectionTypes = []domain.ConnectionType{{ID: ethID, Name: "Ethernet", CreatedAt: created}}
	inv.Connections = []domain.Connection{
		{ID: 1, SourceID: 1, DestinationID: 2, ConnectionTypeID: &ethID, ConnectionType: &inv.ConnectionTypes[0], CreatedAt: created},
		{ID: 2, SourceID: 2, DestinationID: 2, CreatedAt: created},
	}
	return inv
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"json", "json", false},
		{"YAML", "yaml", false},
		{"yml", "yaml", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			exp, err := ForFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, exp.Format())
		})
	}
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Export(sampleInventory(), &buf))

	var got struct {
		Devices []struct {
			ID         int64  `json:"id"`
			Name       string `json:"name"`
			DeviceType string `json:"device_type"`
			ImageRef   string `json:"image_ref"`
		} `json:"devices"`
		Connections []struct {
			ConnectionTypeID *int64 `json:"connection_type_id"`
		} `json:"connections"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	require.Len(t, got.Devices, 2)
	assert.Equal(t, "Router1", got.Devices[0].Name)
	assert.Equal(t, "switch.png", got.Devices[1].ImageRef)
	require.Len(t, got.Connections, 2)
	assert.NotNil(t, got.Connections[0].ConnectionTypeID)
	assert.Nil(t, got.Connections[1].ConnectionTypeID)
}

func TestJSONExportNilInventory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Export(nil, &buf))
	assert.Contains(t, buf.String(), `"devices": []`)
}

func TestYAMLExportLabelsConnections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLCodec().Export(sampleInventory(), &buf))

	var doc yamlInventory
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	require.Len(t, doc.Devices, 2)
	assert.Equal(t, "switch", doc.Devices[1].DeviceType)
	require.Len(t, doc.Connections, 2)
	assert.Equal(t, "Ethernet", doc.Connections[0].Label)
	assert.Equal(t, domain.UndefinedConnectionLabel, doc.Connections[1].Label)
	assert.Nil(t, doc.Connections[1].ConnectionTypeID)
	assert.True(t, doc.TakenAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
}
