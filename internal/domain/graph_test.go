package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGraphEncodesEmptyArrays(t *testing.T) {
	data, err := json.Marshal(NewGraph())
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
}

func TestBuildGraphEmpty(t *testing.T) {
	graph := BuildGraph(nil, nil, nil)

	data, err := json.Marshal(graph)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(data))
}

func TestBuildGraphNodes(t *testing.T) {
	devices := []Device{
		{ID: 1, Name: "Router1", DeviceType: "router"},
		{ID: 2, Name: "Switch1", DeviceType: "switch", ImageRef: "switch.png"},
	}
	resolve := func(ref string) string { return "/static/img/" + ref }

	graph := BuildGraph(devices, nil, resolve)
	require.Len(t, graph.Nodes, 2)

	router := graph.Nodes[0]
	assert.Equal(t, int64(1), router.ID)
	assert.Equal(t, "Router1", router.Label)
	assert.Equal(t, "router", router.Group)
	assert.Nil(t, router.Image)
	assert.Equal(t, ShapeDot, router.Shape)

	sw := graph.Nodes[1]
	require.NotNil(t, sw.Image)
	assert.Equal(t, "/static/img/switch.png", *sw.Image)
	assert.Equal(t, ShapeImage, sw.Shape)
}

func TestBuildGraphNodeJSON(t *testing.T) {
	graph := BuildGraph([]Device{{ID: 5, Name: "AP", DeviceType: "wifi"}}, nil, nil)

	data, err := json.Marshal(graph.Nodes[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5,"label":"AP","group":"wifi","image":null,"shape":"dot"}`, string(data))
}

func TestBuildGraphEdges(t *testing.T) {
	ethernet := &ConnectionType{ID: 1, Name: "Ethernet"}
	typeID := int64(1)
	missingTypeID := int64(99)
	connections := []Connection{
		{ID: 1, SourceID: 1, DestinationID: 2, ConnectionTypeID: &typeID, ConnectionType: ethernet},
		{ID: 2, SourceID: 2, DestinationID: 1},
		{ID: 3, SourceID: 2, DestinationID: 3, ConnectionTypeID: &missingTypeID},
	}

	graph := BuildGraph(nil, connections, nil)
	require.Len(t, graph.Edges, 3)

	assert.Equal(t, GraphEdge{From: 1, To: 2, Label: "Ethernet"}, graph.Edges[0])
	assert.Equal(t, GraphEdge{From: 2, To: 1, Label: "Undefined"}, graph.Edges[1])
	assert.Equal(t, GraphEdge{From: 2, To: 3, Label: "Undefined"}, graph.Edges[2])

	data, err := json.Marshal(graph.Edges[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":1,"to":2,"label":"Ethernet"}`, string(data))
}

func TestBuildGraphDoesNotMutateInputs(t *testing.T) {
	devices := []Device{{ID: 1, Name: "A", DeviceType: "x", ImageRef: "a.png"}}
	connections := []Connection{{ID: 1, SourceID: 1, DestinationID: 1}}

	BuildGraph(devices, connections, func(ref string) string { return "/img/" + ref })

	assert.Equal(t, "a.png", devices[0].ImageRef)
	assert.Nil(t, connections[0].ConnectionType)
}
