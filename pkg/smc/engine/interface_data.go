package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Interface type names as they appear in the engine payload and in the
// engine's link list.
const (
	TypePhysicalInterface        = "physical_interface"
	TypeTunnelInterface          = "tunnel_interface"
	TypeVirtualPhysicalInterface = "virtual_physical_interface"
)

// CVI packet dispatch modes for cluster interfaces.
const (
	CVIModePacketDispatch = "packetdispatch"
	CVIModeNone           = "none"
)

// Inline failure modes.
const (
	FailureModeNormal = "normal"
	FailureModeBypass = "bypass"
)

// Aggregate link modes.
const (
	AggregateModeLB = "lb"
	AggregateModeHA = "ha"
)

// ArpEntry is one static ARP entry on a physical interface.
type ArpEntry struct {
	IPAddress  string `json:"ipaddress"`
	MacAddress string `json:"macaddress"`
	Netmask    string `json:"netmask,omitempty"`
}

// InterfaceData is the wire form of one interface. VLAN interfaces nest the
// same shape under vlanInterfaces with a dotted interface_id such as
// "1.100".
type InterfaceData struct {
	InterfaceID         string           `json:"interface_id"`
	Interfaces          []*SubInterface  `json:"interfaces,omitempty"`
	VlanInterfaces      []*InterfaceData `json:"vlanInterfaces,omitempty"`
	ZoneRef             string           `json:"zone_ref,omitempty"`
	MacAddress          string           `json:"macaddress,omitempty"`
	CviMode             string           `json:"cvi_mode,omitempty"`
	MTU                 int              `json:"mtu,omitempty"`
	AggregateMode       string           `json:"aggregate_mode,omitempty"`
	SecondInterfaceID   string           `json:"second_interface_id,omitempty"`
	VirtualMapping      *int             `json:"virtual_mapping,omitempty"`
	VirtualResourceName string           `json:"virtual_resource_name,omitempty"`
	ArpEntries          []ArpEntry       `json:"arp_entry,omitempty"`
	Comment             string           `json:"comment,omitempty"`
}

// VlanID returns the VLAN part of a dotted interface id, or "" for a
// top-level interface.
func (d *InterfaceData) VlanID() string {
	if i := strings.Index(d.InterfaceID, "."); i >= 0 {
		return d.InterfaceID[i+1:]
	}
	return ""
}

// findVlan returns the nested VLAN entry with the exact dotted id, or nil.
func (d *InterfaceData) findVlan(dottedID string) *InterfaceData {
	for _, v := range d.VlanInterfaces {
		if v.InterfaceID == dottedID {
			return v
		}
	}
	return nil
}

// allSubInterfaces returns the direct sub-interfaces followed by those
// nested under VLANs, in payload order.
func (d *InterfaceData) allSubInterfaces() []*SubInterface {
	subs := make([]*SubInterface, 0, len(d.Interfaces))
	subs = append(subs, d.Interfaces...)
	for _, v := range d.VlanInterfaces {
		subs = append(subs, v.Interfaces...)
	}
	return subs
}

// TypedInterface wraps InterfaceData with its type tag for the engine
// payload, where each entry is a single-key object such as
// {"physical_interface": {...}}.
type TypedInterface struct {
	Typeof string
	Data   *InterfaceData
}

func (t *TypedInterface) MarshalJSON() ([]byte, error) {
	if t.Typeof == "" {
		return nil, fmt.Errorf("interface %s has no type tag", t.Data.InterfaceID)
	}
	return json.Marshal(map[string]*InterfaceData{t.Typeof: t.Data})
}

func (t *TypedInterface) UnmarshalJSON(data []byte) error {
	var tagged map[string]*InterfaceData
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("interface entry must be a single-key tagged object, got %d keys", len(tagged))
	}
	for typeof, d := range tagged {
		t.Typeof = typeof
		t.Data = d
	}
	return nil
}
