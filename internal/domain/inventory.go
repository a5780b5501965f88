package domain

import "time"

// Inventory is a consistent snapshot of every stored entity
type Inventory struct {
	Devices         []Device         `json:"devices" yaml:"devices"`
	ConnectionTypes []ConnectionType `json:"connection_types" yaml:"connection_types"`
	Connections     []Connection     `json:"connections" yaml:"connections"`
	TakenAt         time.Time        `json:"taken_at" yaml:"taken_at"`
}

// NewInventory creates an empty inventory
func NewInventory() *Inventory {
	return &Inventory{
		Devices:         []Device{},
		ConnectionTypes: []ConnectionType{},
		Connections:     []Connection{},
		TakenAt:         time.Now().UTC(),
	}
}

// DanglingConnections returns connections whose source or destination is
// not among the inventory's devices
func (inv *Inventory) DanglingConnections() []Connection {
	known := make(map[int64]struct{}, len(inv.Devices))
	for _, d := range inv.Devices {
		known[d.ID] = struct{}{}
	}

	var dangling []Connection
	for _, c := range inv.Connections {
		_, src := known[c.SourceID]
		_, dst := known[c.DestinationID]
		if !src || !dst {
			dangling = append(dangling, c)
		}
	}
	return dangling
}
