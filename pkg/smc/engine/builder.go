package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ad1rie1/smc-go/pkg/smc/elements"
	"github.com/ad1rie1/smc-go/pkg/util"
)

// InterfaceBuilder assembles an interface payload, either extending an
// interface already on the engine or staging a new one. Mutations are local
// until Dispatch, which performs a single server round trip.
type InterfaceBuilder struct {
	engine   *Engine
	typeof   string
	data     *InterfaceData
	modifier *InterfaceModifier // set when extending an existing interface
}

// GetBuilder returns a builder for the given interface id. When the engine
// already has the interface the builder extends it in place and Dispatch
// updates the engine; otherwise the builder stages a new physical interface
// and Dispatch creates it.
func GetBuilder(ctx context.Context, e *Engine, interfaceID string) (*InterfaceBuilder, error) {
	m, err := ModifierByEngine(ctx, e)
	if err != nil {
		return nil, err
	}
	itf, err := m.Get(interfaceID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return &InterfaceBuilder{
				engine: e,
				typeof: TypePhysicalInterface,
				data:   &InterfaceData{InterfaceID: interfaceID},
			}, nil
		}
		return nil, err
	}
	return &InterfaceBuilder{
		engine:   e,
		typeof:   itf.typeof,
		data:     itf.data,
		modifier: m,
	}, nil
}

// Exists reports whether the builder extends an interface already on the
// engine.
func (b *InterfaceBuilder) Exists() bool { return b.modifier != nil }

func (b *InterfaceBuilder) Data() *InterfaceData { return b.data }

// ==== top-level attributes =================================================

// SetZone assigns the interface zone by name or href, creating the zone
// element on demand.
func (b *InterfaceBuilder) SetZone(ctx context.Context, nameOrHref string) error {
	href, err := elements.ZoneHelper(ctx, b.engine.tr, nameOrHref)
	if err != nil {
		return err
	}
	b.data.ZoneRef = href
	return nil
}

// SetMacAddress assigns the interface MAC address, required before
// enabling packet dispatch CVI mode on clusters.
func (b *InterfaceBuilder) SetMacAddress(mac string) {
	b.data.MacAddress = mac
}

// SetCviMode sets the cluster packet dispatch mode.
func (b *InterfaceBuilder) SetCviMode(mode string) {
	b.data.CviMode = mode
}

// SetMTU overrides the interface MTU.
func (b *InterfaceBuilder) SetMTU(mtu int) {
	b.data.MTU = mtu
}

// SetComment sets the interface comment.
func (b *InterfaceBuilder) SetComment(comment string) {
	b.data.Comment = comment
}

// ==== addressed sub-interfaces =============================================

// AddSNIOnly appends a single node address. With isMgmt the interface
// becomes primary management, outgoing and authentication interface; pair
// with an InterfaceOptions sweep when another interface held those roles.
func (b *InterfaceBuilder) AddSNIOnly(address, networkValue string, isMgmt bool) error {
	if err := util.ValidateNetworkValue(networkValue); err != nil {
		return err
	}
	sub := &SubInterface{
		Kind:         KindSingleNode,
		Address:      address,
		NetworkValue: networkValue,
		NicID:        b.data.InterfaceID,
		NodeID:       1,
	}
	if isMgmt {
		sub.AuthRequestFlag = true
		sub.OutgoingFlag = true
		sub.PrimaryMgtFlag = true
	}
	b.data.Interfaces = append(b.data.Interfaces, sub)
	return nil
}

// AddNDIOnly appends a node dedicated address for one cluster node. With
// isMgmt the address becomes primary management, outgoing and primary
// heartbeat.
func (b *InterfaceBuilder) AddNDIOnly(address, networkValue string, nodeID int, isMgmt bool) error {
	if err := util.ValidateNetworkValue(networkValue); err != nil {
		return err
	}
	if nodeID <= 0 {
		nodeID = 1
	}
	sub := &SubInterface{
		Kind:         KindNode,
		Address:      address,
		NetworkValue: networkValue,
		NicID:        b.data.InterfaceID,
		NodeID:       nodeID,
	}
	if isMgmt {
		sub.PrimaryMgtFlag = true
		sub.OutgoingFlag = true
		sub.PrimaryHeartbeatFlag = true
	}
	b.data.Interfaces = append(b.data.Interfaces, sub)
	return nil
}

// AddCVIOnly appends a cluster virtual address. With isMgmt the address
// takes the authentication request role, the only role a cluster virtual
// address carries.
func (b *InterfaceBuilder) AddCVIOnly(address, networkValue string, isMgmt bool) error {
	if err := util.ValidateNetworkValue(networkValue); err != nil {
		return err
	}
	sub := &SubInterface{
		Kind:         KindClusterCVI,
		Address:      address,
		NetworkValue: networkValue,
		NicID:        b.data.InterfaceID,
	}
	if isMgmt {
		sub.AuthRequestFlag = true
	}
	b.data.Interfaces = append(b.data.Interfaces, sub)
	return nil
}

// AddDHCP appends a DHCP address on a single firewall. With isMgmt the
// address becomes primary management with reverse connection and an
// automatic default route, the setup a dynamically addressed management
// link needs.
func (b *InterfaceBuilder) AddDHCP(dynamicIndex int, isMgmt bool) {
	if dynamicIndex <= 0 {
		dynamicIndex = 1
	}
	sub := &SubInterface{
		Kind:         KindSingleNode,
		NicID:        b.data.InterfaceID,
		NodeID:       1,
		Dynamic:      true,
		DynamicIndex: dynamicIndex,
	}
	if isMgmt {
		sub.PrimaryMgtFlag = true
		sub.ReverseConnection = true
		sub.AutomaticDefaultRoute = true
	}
	b.data.Interfaces = append(b.data.Interfaces, sub)
}

// ==== layer 2 sub-interfaces ===============================================

// InlineSpec describes an inline pair to add. Kind defaults to
// inline_interface; LogicalInterface defaults to default_eth and may be a
// name or an href, created on demand.
type InlineSpec struct {
	SecondInterfaceID string
	LogicalInterface  string
	VlanID            string
	VlanID2           string
	Zone              string
	FailureMode       string
	Kind              SubKind
}

// AddInline appends an inline pair bridging this interface with the
// second. Without a VLAN the pair sits directly on the interface and the
// zone lands on the interface itself; with a VLAN an un-zoned base pair
// still anchors the interface and the dotted pair such as "1.100-2.200"
// nests under a VLAN entry carrying the zone. The l2fw kind carries no
// failure mode. On the plain inline kind both sides are forced onto the
// first VLAN id, a platform restriction for layer 3 firewalls; the l2fw
// and ips kinds keep distinct per-side VLANs.
func (b *InterfaceBuilder) AddInline(ctx context.Context, spec InlineSpec) error {
	kind := spec.Kind
	if kind == "" {
		kind = KindInline
	}
	switch kind {
	case KindInline, KindInlineL2FW, KindInlineIPS:
	default:
		return fmt.Errorf("kind %q is not an inline sub-interface", kind)
	}
	if spec.SecondInterfaceID == "" {
		return fmt.Errorf("inline pair on interface %s requires a second interface id", b.data.InterfaceID)
	}

	logicalRef, err := elements.LogicalInterfaceHelper(ctx, b.engine.tr, spec.LogicalInterface)
	if err != nil {
		return err
	}
	zoneRef, err := elements.ZoneHelper(ctx, b.engine.tr, spec.Zone)
	if err != nil {
		return err
	}

	sub := &SubInterface{
		Kind:                    kind,
		NicID:                   fmt.Sprintf("%s-%s", b.data.InterfaceID, spec.SecondInterfaceID),
		LogicalInterfaceRef:     logicalRef,
		InspectUnspecifiedVlans: true,
	}
	if kind != KindInlineL2FW {
		sub.FailureMode = spec.FailureMode
		if sub.FailureMode == "" {
			sub.FailureMode = FailureModeNormal
		}
	}

	if spec.VlanID == "" {
		if zoneRef != "" {
			b.data.ZoneRef = zoneRef
		}
		b.data.Interfaces = append(b.data.Interfaces, sub)
		return nil
	}

	if len(b.data.Interfaces) == 0 {
		base := *sub
		b.data.Interfaces = append(b.data.Interfaces, &base)
	}
	vlan2 := spec.VlanID2
	if vlan2 == "" || kind == KindInline {
		vlan2 = spec.VlanID
	}
	sub.NicID = fmt.Sprintf("%s.%s-%s.%s", b.data.InterfaceID, spec.VlanID, spec.SecondInterfaceID, vlan2)
	b.data.VlanInterfaces = append(b.data.VlanInterfaces, &InterfaceData{
		InterfaceID: fmt.Sprintf("%s.%s", b.data.InterfaceID, spec.VlanID),
		ZoneRef:     zoneRef,
		Interfaces:  []*SubInterface{sub},
	})
	return nil
}

// AddCapture appends a capture (span) sub-interface.
func (b *InterfaceBuilder) AddCapture(ctx context.Context, logicalInterface string) error {
	logicalRef, err := elements.LogicalInterfaceHelper(ctx, b.engine.tr, logicalInterface)
	if err != nil {
		return err
	}
	b.data.Interfaces = append(b.data.Interfaces, &SubInterface{
		Kind:                    KindCapture,
		NicID:                   b.data.InterfaceID,
		LogicalInterfaceRef:     logicalRef,
		InspectUnspecifiedVlans: true,
	})
	return nil
}

// ==== vlans ================================================================

// AddVlanOnly appends an empty VLAN, optionally zoned, used for VLANs that
// get addresses later or are bridged elsewhere. An existing VLAN keeps its
// zone when none is given.
func (b *InterfaceBuilder) AddVlanOnly(ctx context.Context, vlanID, zone string) error {
	zoneRef, err := elements.ZoneHelper(ctx, b.engine.tr, zone)
	if err != nil {
		return err
	}
	v := b.vlan(vlanID)
	if zoneRef != "" {
		v.ZoneRef = zoneRef
	}
	return nil
}

// AddNDIToVlan adds a node dedicated address under a VLAN, creating the
// VLAN entry on demand.
func (b *InterfaceBuilder) AddNDIToVlan(address, networkValue, vlanID string, nodeID int) error {
	if err := util.ValidateNetworkValue(networkValue); err != nil {
		return err
	}
	if nodeID <= 0 {
		nodeID = 1
	}
	vlan := b.vlan(vlanID)
	vlan.Interfaces = append(vlan.Interfaces, &SubInterface{
		Kind:         KindNode,
		Address:      address,
		NetworkValue: networkValue,
		NicID:        vlan.InterfaceID,
		NodeID:       nodeID,
	})
	return nil
}

// AddSNIToVlan adds a single node address under a VLAN, creating the VLAN
// entry on demand. The single engine counterpart of AddNDIToVlan.
func (b *InterfaceBuilder) AddSNIToVlan(address, networkValue, vlanID string) error {
	if err := util.ValidateNetworkValue(networkValue); err != nil {
		return err
	}
	vlan := b.vlan(vlanID)
	vlan.Interfaces = append(vlan.Interfaces, &SubInterface{
		Kind:         KindSingleNode,
		Address:      address,
		NetworkValue: networkValue,
		NicID:        vlan.InterfaceID,
		NodeID:       1,
	})
	return nil
}

// AddCVIToVlan adds a cluster virtual address under a VLAN, creating the
// VLAN entry on demand.
func (b *InterfaceBuilder) AddCVIToVlan(address, networkValue, vlanID string) error {
	if err := util.ValidateNetworkValue(networkValue); err != nil {
		return err
	}
	vlan := b.vlan(vlanID)
	vlan.Interfaces = append(vlan.Interfaces, &SubInterface{
		Kind:         KindClusterCVI,
		Address:      address,
		NetworkValue: networkValue,
		NicID:        vlan.InterfaceID,
	})
	return nil
}

// RemoveVlan drops a VLAN and everything under it. Removing a VLAN that is
// not there is a no-op.
func (b *InterfaceBuilder) RemoveVlan(vlanID string) {
	dotted := fmt.Sprintf("%s.%s", b.data.InterfaceID, vlanID)
	kept := b.data.VlanInterfaces[:0]
	for _, v := range b.data.VlanInterfaces {
		if v.InterfaceID != dotted {
			kept = append(kept, v)
		}
	}
	b.data.VlanInterfaces = kept
}

// vlan returns the VLAN entry with the given id, creating it when absent.
func (b *InterfaceBuilder) vlan(vlanID string) *InterfaceData {
	dotted := fmt.Sprintf("%s.%s", b.data.InterfaceID, vlanID)
	if v := b.data.findVlan(dotted); v != nil {
		return v
	}
	v := &InterfaceData{InterfaceID: dotted}
	b.data.VlanInterfaces = append(b.data.VlanInterfaces, v)
	return v
}

// ==== dispatch =============================================================

// Dispatch pushes the staged payload: one engine update when extending an
// existing interface, one create against the engine's interface collection
// otherwise. The engine cache is invalidated either way.
func (b *InterfaceBuilder) Dispatch(ctx context.Context) error {
	if b.modifier != nil {
		return b.modifier.save(ctx)
	}
	return b.engine.AddInterface(ctx, b.typeof, b.data)
}
