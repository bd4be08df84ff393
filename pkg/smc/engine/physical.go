package engine

import (
	"context"

	"github.com/ad1rie1/smc-go/pkg/util"
)

// High level interface provisioning. Each operation seeds a builder from
// the current engine state, applies one logical change and dispatches it,
// so existing configuration on the interface is preserved.

// AddLayer3Interface adds a routed address to the interface, creating the
// interface when absent. Clusters get a node dedicated address for node 1,
// single engines a single node address.
func (e *Engine) AddLayer3Interface(ctx context.Context, interfaceID, address, networkValue, zone string, isMgmt bool) error {
	b, err := GetBuilder(ctx, e, interfaceID)
	if err != nil {
		return err
	}
	if zone != "" {
		if err := b.SetZone(ctx, zone); err != nil {
			return err
		}
	}
	if e.IsCluster() {
		err = b.AddNDIOnly(address, networkValue, 1, isMgmt)
	} else {
		err = b.AddSNIOnly(address, networkValue, isMgmt)
	}
	if err != nil {
		return err
	}
	return b.Dispatch(ctx)
}

// AddLayer3VlanInterface adds a routed address under a VLAN, creating
// interface and VLAN entries when absent.
func (e *Engine) AddLayer3VlanInterface(ctx context.Context, interfaceID, vlanID, address, networkValue, zone string) error {
	b, err := GetBuilder(ctx, e, interfaceID)
	if err != nil {
		return err
	}
	if err := b.AddVlanOnly(ctx, vlanID, zone); err != nil {
		return err
	}
	if address != "" {
		if e.IsCluster() {
			err = b.AddNDIToVlan(address, networkValue, vlanID, 1)
		} else {
			err = b.AddSNIToVlan(address, networkValue, vlanID)
		}
		if err != nil {
			return err
		}
	}
	return b.Dispatch(ctx)
}

// AddDHCPInterface adds a DHCP address on a single firewall interface.
func (e *Engine) AddDHCPInterface(ctx context.Context, interfaceID string, dynamicIndex int, isMgmt bool) error {
	b, err := GetBuilder(ctx, e, interfaceID)
	if err != nil {
		return err
	}
	b.AddDHCP(dynamicIndex, isMgmt)
	return b.Dispatch(ctx)
}

// AddCaptureInterface adds a passive capture sub-interface.
func (e *Engine) AddCaptureInterface(ctx context.Context, interfaceID, logicalInterface, zone string) error {
	b, err := GetBuilder(ctx, e, interfaceID)
	if err != nil {
		return err
	}
	if zone != "" {
		if err := b.SetZone(ctx, zone); err != nil {
			return err
		}
	}
	if err := b.AddCapture(ctx, logicalInterface); err != nil {
		return err
	}
	return b.Dispatch(ctx)
}

// AddInlineInterface adds an inline pair of the kind selected in
// spec.Kind. The l2fw and ips kinds only exist on layer 3 firewall
// engines; on layer 2 and IPS engines the pair downgrades to the plain
// inline kind.
func (e *Engine) AddInlineInterface(ctx context.Context, interfaceID string, spec InlineSpec) error {
	switch e.typeof {
	case TypeSingleLayer2, TypeSingleIPS:
		spec.Kind = KindInline
	}
	b, err := GetBuilder(ctx, e, interfaceID)
	if err != nil {
		return err
	}
	if err := b.AddInline(ctx, spec); err != nil {
		return err
	}
	return b.Dispatch(ctx)
}

// AddClusterVirtualInterface adds a cluster virtual address plus one node
// dedicated address per entry in nodes (keyed by nodeid). A non-empty
// macAddress enables packet dispatch, the recommended cluster mode.
func (e *Engine) AddClusterVirtualInterface(ctx context.Context, interfaceID, cviAddress, networkValue, macAddress string, nodes map[int]string, isMgmt bool) error {
	b, err := GetBuilder(ctx, e, interfaceID)
	if err != nil {
		return err
	}
	if macAddress != "" {
		b.SetMacAddress(macAddress)
		b.SetCviMode(CVIModePacketDispatch)
	}
	if err := b.AddCVIOnly(cviAddress, networkValue, isMgmt); err != nil {
		return err
	}
	for nodeID, address := range nodes {
		if err := b.AddNDIOnly(address, networkValue, nodeID, isMgmt); err != nil {
			return err
		}
	}
	return b.Dispatch(ctx)
}

// AddClusterInterfaceOnMasterEngine adds an interface addressing every
// master engine node directly, one node dedicated address per entry in
// nodes (keyed by nodeid). Master engines carry no cluster virtual
// addresses; with isMgmt every node address becomes that node's
// management and outgoing address.
func (e *Engine) AddClusterInterfaceOnMasterEngine(ctx context.Context, interfaceID, networkValue, macAddress string, nodes map[int]string, isMgmt bool) error {
	b, err := GetBuilder(ctx, e, interfaceID)
	if err != nil {
		return err
	}
	if macAddress != "" {
		b.SetMacAddress(macAddress)
	}
	for nodeID, address := range nodes {
		if err := b.AddNDIOnly(address, networkValue, nodeID, false); err != nil {
			return err
		}
		sub := b.Data().Interfaces[len(b.Data().Interfaces)-1]
		sub.SetFlag(PrimaryMgt, isMgmt)
		sub.SetFlag(Outgoing, isMgmt)
	}
	return b.Dispatch(ctx)
}

// AddIPAddressAndVlanToCluster adds cluster addressing under a VLAN: the
// cluster virtual address and the node addresses from addr.
func (e *Engine) AddIPAddressAndVlanToCluster(ctx context.Context, interfaceID, vlanID string, addr ClusterAddress) error {
	b, err := GetBuilder(ctx, e, interfaceID)
	if err != nil {
		return err
	}
	if addr.CVIAddress != "" {
		if err := b.AddCVIToVlan(addr.CVIAddress, addr.NetworkValue, vlanID); err != nil {
			return err
		}
	}
	for nodeID, address := range addr.NodeAddresses {
		if err := b.AddNDIToVlan(address, addr.NetworkValue, vlanID, nodeID); err != nil {
			return err
		}
	}
	return b.Dispatch(ctx)
}

// AddTunnelInterface creates a tunnel interface with a routed address.
// Clusters take the cluster virtual address plus one node dedicated
// address per entry in nodes; single engines get a single node address
// and ignore nodes. Tunnel interfaces carry no VLANs and no layer 2
// kinds.
func (e *Engine) AddTunnelInterface(ctx context.Context, interfaceID, address, networkValue string, nodes map[int]string) error {
	if err := util.ValidateNetworkValue(networkValue); err != nil {
		return err
	}
	var subs []*SubInterface
	if e.IsCluster() {
		if address != "" {
			subs = append(subs, &SubInterface{
				Kind:         KindClusterCVI,
				Address:      address,
				NetworkValue: networkValue,
				NicID:        interfaceID,
			})
		}
		for nodeID, nodeAddr := range nodes {
			subs = append(subs, &SubInterface{
				Kind:         KindNode,
				Address:      nodeAddr,
				NetworkValue: networkValue,
				NicID:        interfaceID,
				NodeID:       nodeID,
			})
		}
	} else {
		subs = append(subs, &SubInterface{
			Kind:         KindSingleNode,
			Address:      address,
			NetworkValue: networkValue,
			NicID:        interfaceID,
			NodeID:       1,
		})
	}
	data := &InterfaceData{InterfaceID: interfaceID, Interfaces: subs}
	return e.AddInterface(ctx, TypeTunnelInterface, data)
}
