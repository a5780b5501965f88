package domain

// Node shapes understood by vis-network
const (
	ShapeImage = "image"
	ShapeDot   = "dot"
)

// Graph is the derived view for vis-network visualization
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// GraphNode is a device as seen by the visualization
type GraphNode struct {
	ID    int64   `json:"id"`
	Label string  `json:"label"`
	Group string  `json:"group"`
	Image *string `json:"image"`
	Shape string  `json:"shape"`
}

// GraphEdge is a connection as seen by the visualization
type GraphEdge struct {
	From  int64  `json:"from"`
	To    int64  `json:"to"`
	Label string `json:"label"`
}

// ImageResolver maps a stored image reference to a URL
type ImageResolver func(ref string) string

// NewGraph creates an empty graph whose collections encode as [] not null
func NewGraph() *Graph {
	return &Graph{
		Nodes: []GraphNode{},
		Edges: []GraphEdge{},
	}
}

// BuildGraph projects devices and connections into a Graph. Inputs are not
// modified. Connections whose type was not resolved are labelled "Undefined".
func BuildGraph(devices []Device, connections []Connection, resolve ImageResolver) *Graph {
	graph := &Graph{
		Nodes: make([]GraphNode, 0, len(devices)),
		Edges: make([]GraphEdge, 0, len(connections)),
	}

	for _, d := range devices {
		node := GraphNode{
			ID:    d.ID,
			Label: d.Name,
			Group: d.DeviceType,
			Shape: ShapeDot,
		}
		if d.HasImage() {
			url := d.ImageRef
			if resolve != nil {
				url = resolve(d.ImageRef)
			}
			node.Image = &url
			node.Shape = ShapeImage
		}
		graph.Nodes = append(graph.Nodes, node)
	}

	for i := range connections {
		c := &connections[i]
		graph.Edges = append(graph.Edges, GraphEdge{
			From:  c.SourceID,
			To:    c.DestinationID,
			Label: c.Label(),
		})
	}

	return graph
}
