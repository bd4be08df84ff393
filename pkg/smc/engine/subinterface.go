package engine

import (
	"encoding/json"
	"fmt"
)

// SubKind names the sub-interface variants as they appear on the wire.
// Each sub-interface in an engine payload is a single-key object keyed by
// one of these tags.
type SubKind string

const (
	KindSingleNode  SubKind = "single_node_interface"
	KindNode        SubKind = "node_interface"
	KindClusterCVI  SubKind = "cluster_virtual_interface"
	KindInline      SubKind = "inline_interface"
	KindInlineL2FW  SubKind = "inline_l2fw_interface"
	KindInlineIPS   SubKind = "inline_ips_interface"
	KindCapture     SubKind = "capture_interface"
	KindLoopback    SubKind = "loopback_node_dedicated_interface"
	KindLoopbackCVI SubKind = "loopback_cluster_virtual_interface"
)

// RoleFlag is one of the engine-wide role assignments carried on
// sub-interfaces. Wire names match the tag values.
type RoleFlag string

const (
	PrimaryMgt       RoleFlag = "primary_mgt"
	BackupMgt        RoleFlag = "backup_mgt"
	PrimaryHeartbeat RoleFlag = "primary_heartbeat"
	BackupHeartbeat  RoleFlag = "backup_heartbeat"
	Outgoing         RoleFlag = "outgoing"
	AuthRequest      RoleFlag = "auth_request"
)

// allRoleFlags in wire order, used when sweeping roles across an engine.
var allRoleFlags = []RoleFlag{
	PrimaryMgt, BackupMgt, PrimaryHeartbeat, BackupHeartbeat, Outgoing, AuthRequest,
}

// SubInterface is the uniform in-memory form of every sub-interface
// variant. Kind selects which fields are meaningful and which appear on the
// wire; accessing a flag a kind does not carry reports false and writes are
// dropped.
type SubInterface struct {
	Kind SubKind

	Address      string
	NetworkValue string
	NicID        string
	NodeID       int

	// DHCP addressing, single firewalls only.
	Dynamic               bool
	DynamicIndex          int
	AutomaticDefaultRoute bool
	ReverseConnection     bool

	PrimaryMgtFlag       bool
	BackupMgtFlag        bool
	PrimaryHeartbeatFlag bool
	BackupHeartbeatFlag  bool
	OutgoingFlag         bool
	AuthRequestFlag      bool

	// Layer 2 fields, inline and capture kinds only.
	LogicalInterfaceRef     string
	FailureMode             string
	InspectUnspecifiedVlans bool
	ZoneRef                 string
}

// IsCVI reports whether the kind is a cluster virtual address variant.
func (s *SubInterface) IsCVI() bool {
	return s.Kind == KindClusterCVI || s.Kind == KindLoopbackCVI
}

// IsInline reports whether the kind pairs two interfaces.
func (s *SubInterface) IsInline() bool {
	switch s.Kind {
	case KindInline, KindInlineL2FW, KindInlineIPS:
		return true
	}
	return false
}

// HasAddress reports whether the kind carries an IP address.
func (s *SubInterface) HasAddress() bool {
	return !s.IsInline() && s.Kind != KindCapture
}

// SupportsFlag reports whether this kind carries the given role flag.
// Node-addressed kinds carry all six roles, cluster virtual kinds carry
// only auth_request, and layer 2 kinds carry none.
func (s *SubInterface) SupportsFlag(f RoleFlag) bool {
	switch s.Kind {
	case KindSingleNode, KindNode, KindLoopback:
		return true
	case KindClusterCVI, KindLoopbackCVI:
		return f == AuthRequest
	}
	return false
}

// Flag reads a role flag. Unsupported flags report false.
func (s *SubInterface) Flag(f RoleFlag) bool {
	if !s.SupportsFlag(f) {
		return false
	}
	switch f {
	case PrimaryMgt:
		return s.PrimaryMgtFlag
	case BackupMgt:
		return s.BackupMgtFlag
	case PrimaryHeartbeat:
		return s.PrimaryHeartbeatFlag
	case BackupHeartbeat:
		return s.BackupHeartbeatFlag
	case Outgoing:
		return s.OutgoingFlag
	case AuthRequest:
		return s.AuthRequestFlag
	}
	return false
}

// SetFlag writes a role flag. Writes to unsupported flags are dropped so a
// sweep over mixed kinds stays safe.
func (s *SubInterface) SetFlag(f RoleFlag, v bool) {
	if !s.SupportsFlag(f) {
		return
	}
	switch f {
	case PrimaryMgt:
		s.PrimaryMgtFlag = v
	case BackupMgt:
		s.BackupMgtFlag = v
	case PrimaryHeartbeat:
		s.PrimaryHeartbeatFlag = v
	case BackupHeartbeat:
		s.BackupHeartbeatFlag = v
	case Outgoing:
		s.OutgoingFlag = v
	case AuthRequest:
		s.AuthRequestFlag = v
	}
}

// subInterfaceWire is the union of every variant's wire fields. Pointers
// and omitempty keep fields a kind does not carry off the wire; MarshalJSON
// fills only the fields valid for the kind.
type subInterfaceWire struct {
	Address      string `json:"address,omitempty"`
	NetworkValue string `json:"network_value,omitempty"`
	NicID        string `json:"nicid,omitempty"`
	NodeID       *int   `json:"nodeid,omitempty"`

	Dynamic               *bool `json:"dynamic,omitempty"`
	DynamicIndex          *int  `json:"dynamic_index,omitempty"`
	AutomaticDefaultRoute *bool `json:"automatic_default_route,omitempty"`
	ReverseConnection     *bool `json:"reverse_connection,omitempty"`

	PrimaryMgt       *bool `json:"primary_mgt,omitempty"`
	BackupMgt        *bool `json:"backup_mgt,omitempty"`
	PrimaryHeartbeat *bool `json:"primary_heartbeat,omitempty"`
	BackupHeartbeat  *bool `json:"backup_heartbeat,omitempty"`
	Outgoing         *bool `json:"outgoing,omitempty"`
	AuthRequest      *bool `json:"auth_request,omitempty"`

	LogicalInterfaceRef     string `json:"logical_interface_ref,omitempty"`
	FailureMode             string `json:"failure_mode,omitempty"`
	InspectUnspecifiedVlans *bool  `json:"inspect_unspecified_vlans,omitempty"`
	ZoneRef                 string `json:"zone_ref,omitempty"`
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

// MarshalJSON encodes the sub-interface as a single-key object keyed by its
// kind tag. Role flags are written explicitly, false included, on every
// kind that carries them so a role cleared locally is cleared on the server.
func (s *SubInterface) MarshalJSON() ([]byte, error) {
	w := subInterfaceWire{
		NicID: s.NicID,
	}

	switch s.Kind {
	case KindSingleNode, KindNode, KindLoopback:
		w.Address = s.Address
		w.NetworkValue = s.NetworkValue
		w.NodeID = intPtr(s.NodeID)
		w.PrimaryMgt = boolPtr(s.PrimaryMgtFlag)
		w.BackupMgt = boolPtr(s.BackupMgtFlag)
		w.PrimaryHeartbeat = boolPtr(s.PrimaryHeartbeatFlag)
		w.BackupHeartbeat = boolPtr(s.BackupHeartbeatFlag)
		w.Outgoing = boolPtr(s.OutgoingFlag)
		w.AuthRequest = boolPtr(s.AuthRequestFlag)
		if s.Kind == KindSingleNode && s.Dynamic {
			w.Dynamic = boolPtr(true)
			w.DynamicIndex = intPtr(s.DynamicIndex)
			w.AutomaticDefaultRoute = boolPtr(s.AutomaticDefaultRoute)
			w.ReverseConnection = boolPtr(s.ReverseConnection)
		}
	case KindClusterCVI, KindLoopbackCVI:
		w.Address = s.Address
		w.NetworkValue = s.NetworkValue
		w.AuthRequest = boolPtr(s.AuthRequestFlag)
	case KindInline, KindInlineL2FW, KindInlineIPS:
		w.LogicalInterfaceRef = s.LogicalInterfaceRef
		w.FailureMode = s.FailureMode
		w.InspectUnspecifiedVlans = boolPtr(s.InspectUnspecifiedVlans)
		w.ZoneRef = s.ZoneRef
	case KindCapture:
		w.LogicalInterfaceRef = s.LogicalInterfaceRef
		w.InspectUnspecifiedVlans = boolPtr(s.InspectUnspecifiedVlans)
	default:
		return nil, fmt.Errorf("unknown sub-interface kind %q", s.Kind)
	}

	return json.Marshal(map[SubKind]subInterfaceWire{s.Kind: w})
}

// UnmarshalJSON decodes a single-key tagged object. Unknown tags fail
// loudly rather than silently dropping configuration.
func (s *SubInterface) UnmarshalJSON(data []byte) error {
	var tagged map[SubKind]subInterfaceWire
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("sub-interface must be a single-key tagged object, got %d keys", len(tagged))
	}
	for kind, w := range tagged {
		switch kind {
		case KindSingleNode, KindNode, KindClusterCVI,
			KindInline, KindInlineL2FW, KindInlineIPS,
			KindCapture, KindLoopback, KindLoopbackCVI:
		default:
			return fmt.Errorf("unknown sub-interface kind %q", kind)
		}
		s.Kind = kind
		s.Address = w.Address
		s.NetworkValue = w.NetworkValue
		s.NicID = w.NicID
		if w.NodeID != nil {
			s.NodeID = *w.NodeID
		}
		s.Dynamic = w.Dynamic != nil && *w.Dynamic
		if w.DynamicIndex != nil {
			s.DynamicIndex = *w.DynamicIndex
		}
		s.AutomaticDefaultRoute = w.AutomaticDefaultRoute != nil && *w.AutomaticDefaultRoute
		s.ReverseConnection = w.ReverseConnection != nil && *w.ReverseConnection
		s.PrimaryMgtFlag = w.PrimaryMgt != nil && *w.PrimaryMgt
		s.BackupMgtFlag = w.BackupMgt != nil && *w.BackupMgt
		s.PrimaryHeartbeatFlag = w.PrimaryHeartbeat != nil && *w.PrimaryHeartbeat
		s.BackupHeartbeatFlag = w.BackupHeartbeat != nil && *w.BackupHeartbeat
		s.OutgoingFlag = w.Outgoing != nil && *w.Outgoing
		s.AuthRequestFlag = w.AuthRequest != nil && *w.AuthRequest
		s.LogicalInterfaceRef = w.LogicalInterfaceRef
		s.FailureMode = w.FailureMode
		s.InspectUnspecifiedVlans = w.InspectUnspecifiedVlans != nil && *w.InspectUnspecifiedVlans
		s.ZoneRef = w.ZoneRef
	}
	return nil
}
