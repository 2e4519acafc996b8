package model

// SwitchType is the normal operating state of a switch.
type SwitchType string

const (
	SwitchNormallyOpen   SwitchType = "NO"
	SwitchNormallyClosed SwitchType = "NC"
)

// SwitchStatus is the current operational status of a switch.
type SwitchStatus string

const (
	SwitchOpen        SwitchStatus = "OPEN"
	SwitchClosed      SwitchStatus = "CLOSED"
	SwitchFault       SwitchStatus = "FAULT"
	SwitchMaintenance SwitchStatus = "MAINTENANCE"
)

// Switch controls power flow on a tie line between two circuits.
type Switch struct {
	Name     string       `json:"name"`
	Type     SwitchType   `json:"switch_type"`
	Location string       `json:"location,omitempty"`
	Status   SwitchStatus `json:"status"`
}

// Link is a directed tie line between two transformers over which load can be
// transferred, bounded by a maximum transfer capacity and optionally gated by
// a switch. A bidirectional tie is modelled as a pair of reverse links.
type Link struct {
	FromUnit      string  `json:"from_unit"`
	ToUnit        string  `json:"to_unit"`
	MaxTransferKW float64 `json:"max_transfer_kw"`
	SwitchName    string  `json:"switch_name,omitempty"`
	Active        bool    `json:"active"`
}

// SwitchLabel returns the switch name or "direct" for an unswitched tie.
func (l Link) SwitchLabel() string {
	if l.SwitchName == "" {
		return "direct"
	}
	return l.SwitchName
}
