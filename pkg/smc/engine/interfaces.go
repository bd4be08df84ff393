package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/ad1rie1/smc-go/pkg/util"
)

// Interface is one engine interface parsed from the engine payload,
// together with its type tag. It stays attached to the modifier that parsed
// it so saves write the whole interface list back in one engine update.
type Interface struct {
	modifier *InterfaceModifier
	typeof   string
	data     *InterfaceData
}

func (i *Interface) Typeof() string       { return i.typeof }
func (i *Interface) InterfaceID() string  { return i.data.InterfaceID }
func (i *Interface) Data() *InterfaceData { return i.data }

// SubInterfaces returns the sub-interfaces directly on the interface,
// excluding those nested under VLANs.
func (i *Interface) SubInterfaces() []*SubInterface {
	return i.data.Interfaces
}

// AllSubInterfaces returns direct sub-interfaces followed by those nested
// under VLANs.
func (i *Interface) AllSubInterfaces() []*SubInterface {
	return i.data.allSubInterfaces()
}

// Name synthesizes the display name the management client shows for the
// interface: "Interface 1", or "Interface 1 - Interface 2 (Inline)" for an
// interface carrying an inline pair. VLAN-qualified pair sides keep their
// qualifier, e.g. "Interface 1.100 - Interface 2.200 (Inline)".
func (i *Interface) Name() string {
	for _, sub := range i.data.allSubInterfaces() {
		if sub.IsInline() {
			pair := strings.SplitN(sub.NicID, "-", 2)
			if len(pair) == 2 {
				return fmt.Sprintf("Interface %s - Interface %s (Inline)", pair[0], pair[1])
			}
		}
	}
	return fmt.Sprintf("Interface %s", i.data.InterfaceID)
}

// HasFlag reports whether any sub-interface on the interface, VLANs
// included, holds the role flag.
func (i *Interface) HasFlag(f RoleFlag) bool {
	for _, sub := range i.data.allSubInterfaces() {
		if sub.Flag(f) {
			return true
		}
	}
	return false
}

// IsPrimaryMgt reports whether the interface holds primary management.
func (i *Interface) IsPrimaryMgt() bool { return i.HasFlag(PrimaryMgt) }

// IsOutgoing reports whether the interface sources engine-initiated
// traffic.
func (i *Interface) IsOutgoing() bool { return i.HasFlag(Outgoing) }

// IsAuthRequest reports whether the interface holds the authentication
// request role.
func (i *Interface) IsAuthRequest() bool { return i.HasFlag(AuthRequest) }

// HasVlan reports whether the interface carries VLANs.
func (i *Interface) HasVlan() bool {
	return len(i.data.VlanInterfaces) > 0
}

// VlanInterfaces returns the nested VLAN interfaces.
func (i *Interface) VlanInterfaces() []*VlanInterface {
	vlans := make([]*VlanInterface, 0, len(i.data.VlanInterfaces))
	for _, v := range i.data.VlanInterfaces {
		vlans = append(vlans, &VlanInterface{parent: i, data: v})
	}
	return vlans
}

// Vlan returns the VLAN with the given id, e.g. "100" on interface "1"
// resolves "1.100".
func (i *Interface) Vlan(vlanID string) (*VlanInterface, error) {
	dotted := fmt.Sprintf("%s.%s", i.data.InterfaceID, vlanID)
	if v := i.data.findVlan(dotted); v != nil {
		return &VlanInterface{parent: i, data: v}, nil
	}
	return nil, util.NewNotFoundError("vlan interface", dotted)
}

// Addresses returns address/network pairs for every addressed
// sub-interface, VLANs included.
func (i *Interface) Addresses() [][2]string {
	var out [][2]string
	for _, sub := range i.data.allSubInterfaces() {
		if sub.HasAddress() && sub.Address != "" {
			out = append(out, [2]string{sub.Address, sub.NetworkValue})
		}
	}
	return out
}

// Save writes the interface list back through one engine update.
func (i *Interface) Save(ctx context.Context) error {
	return i.modifier.save(ctx)
}

// ==== interface mutations ==================================================

// ChangeVlanID renumbers a VLAN. For VLANs holding inline pairs, newVlanID
// may itself be a pair such as "10-20" to renumber both sides; addressed
// sub-interfaces take the first value.
func (i *Interface) ChangeVlanID(ctx context.Context, vlanID, newVlanID string) error {
	vlan, err := i.Vlan(vlanID)
	if err != nil {
		return err
	}
	newVlans := strings.Split(newVlanID, "-")
	vlan.data.InterfaceID = fmt.Sprintf("%s.%s", i.data.InterfaceID, newVlans[0])
	for _, sub := range vlan.data.Interfaces {
		if sub.IsInline() {
			sub.changeInlineVlanID(newVlans)
		} else {
			sub.NicID = fmt.Sprintf("%s.%s", nicBase(sub.NicID), newVlans[0])
		}
	}
	return i.Save(ctx)
}

// ChangeSingleIPAddress rewrites the address on a single engine interface.
// When the interface holds several addressed sub-interfaces, replaceIP
// picks which one; leaving it empty is only valid with exactly one
// candidate.
func (i *Interface) ChangeSingleIPAddress(ctx context.Context, address, networkValue, replaceIP string) error {
	if err := util.ValidateNetworkValue(networkValue); err != nil {
		return err
	}
	var target *SubInterface
	for _, sub := range i.data.allSubInterfaces() {
		if !sub.HasAddress() || sub.Address == "" {
			continue
		}
		if replaceIP != "" {
			if sub.Address == replaceIP {
				target = sub
				break
			}
			continue
		}
		if target != nil {
			return util.NewAmbiguousConfigError("change ip address",
				fmt.Sprintf("interface %s has multiple addresses, specify which to replace", i.data.InterfaceID))
		}
		target = sub
	}
	if target == nil {
		return util.NewNotFoundError("interface address", orID(replaceIP, i.data.InterfaceID))
	}
	target.Address = address
	target.NetworkValue = networkValue
	return i.Save(ctx)
}

// ClusterAddress describes new addressing for a cluster interface: the
// cluster virtual address plus the per-node addresses keyed by nodeid. All
// addresses share NetworkValue.
type ClusterAddress struct {
	CVIAddress    string
	NetworkValue  string
	NodeAddresses map[int]string
}

// ChangeClusterIPAddress rewrites cluster addressing on this interface or
// on one of its VLANs. An interface carrying VLANs requires vlanID since
// each VLAN addresses a different network.
func (i *Interface) ChangeClusterIPAddress(ctx context.Context, vlanID string, addr ClusterAddress) error {
	if err := util.ValidateNetworkValue(addr.NetworkValue); err != nil {
		return err
	}
	target := i.data
	if i.HasVlan() {
		if vlanID == "" {
			return util.NewAmbiguousConfigError("change cluster ip address",
				fmt.Sprintf("interface %s has vlans, specify the vlan to modify", i.data.InterfaceID))
		}
		vlan, err := i.Vlan(vlanID)
		if err != nil {
			return err
		}
		target = vlan.data
	}
	for _, sub := range target.Interfaces {
		switch {
		case sub.IsCVI():
			if addr.CVIAddress != "" {
				sub.Address = addr.CVIAddress
				sub.NetworkValue = addr.NetworkValue
			}
		case sub.HasAddress():
			if address, ok := addr.NodeAddresses[sub.NodeID]; ok {
				sub.Address = address
				sub.NetworkValue = addr.NetworkValue
			}
		}
	}
	return i.Save(ctx)
}

// ChangeInterfaceID renumbers the interface, cascading the new id through
// VLANs and every sub-interface nicid. For interfaces holding inline pairs
// newID may be a pair such as "10-11"; addressed sub-interfaces and the
// top-level id take the first value.
func (i *Interface) ChangeInterfaceID(ctx context.Context, newID string) error {
	parts := strings.Split(newID, "-")
	first := parts[0]
	second := first
	if len(parts) > 1 {
		second = parts[1]
	}

	for _, vlan := range i.data.VlanInterfaces {
		vlanPart := vlan.VlanID()
		for _, sub := range vlan.Interfaces {
			if sub.IsInline() {
				v1, v2 := inlineVlans(sub.NicID)
				sub.NicID = fmt.Sprintf("%s.%s-%s.%s", first, v1, second, v2)
			} else {
				sub.NicID = fmt.Sprintf("%s.%s", first, nicVlan(sub.NicID))
			}
		}
		vlan.InterfaceID = fmt.Sprintf("%s.%s", first, vlanPart)
	}
	for _, sub := range i.data.Interfaces {
		if sub.IsInline() {
			sub.NicID = fmt.Sprintf("%s-%s", first, second)
		} else {
			sub.NicID = first
		}
	}
	i.data.InterfaceID = first
	return i.Save(ctx)
}

// EnableAggregateMode turns the interface into an aggregated link over the
// given additional interface ids. Mode lb balances over all links, mode ha
// keeps the second link passive.
func (i *Interface) EnableAggregateMode(ctx context.Context, mode string, secondInterfaces []string) error {
	if mode != AggregateModeLB && mode != AggregateModeHA {
		return fmt.Errorf("aggregate mode must be %s or %s, got %q", AggregateModeLB, AggregateModeHA, mode)
	}
	if len(secondInterfaces) == 0 {
		return fmt.Errorf("aggregate mode requires at least one additional interface")
	}
	i.data.AggregateMode = mode
	i.data.SecondInterfaceID = strings.Join(secondInterfaces, ",")
	return i.Save(ctx)
}

// AddArpEntry adds a static ARP entry to the interface.
func (i *Interface) AddArpEntry(ctx context.Context, ipAddress, macAddress, netmask string) error {
	if !util.IsValidIP(ipAddress) {
		return fmt.Errorf("invalid arp entry address %q", ipAddress)
	}
	i.data.ArpEntries = append(i.data.ArpEntries, ArpEntry{
		IPAddress:  ipAddress,
		MacAddress: macAddress,
		Netmask:    netmask,
	})
	return i.Save(ctx)
}

// ==== vlan interfaces ======================================================

// VlanInterface is one VLAN nested under a physical interface. It shares
// the parent's save path.
type VlanInterface struct {
	parent *Interface
	data   *InterfaceData
}

func (v *VlanInterface) InterfaceID() string  { return v.data.InterfaceID }
func (v *VlanInterface) VlanID() string       { return v.data.VlanID() }
func (v *VlanInterface) Data() *InterfaceData { return v.data }

// SubInterfaces returns the sub-interfaces on this VLAN.
func (v *VlanInterface) SubInterfaces() []*SubInterface {
	return v.data.Interfaces
}

// Delete removes the VLAN from its parent interface in one engine update.
func (v *VlanInterface) Delete(ctx context.Context) error {
	parent := v.parent.data
	kept := parent.VlanInterfaces[:0]
	for _, entry := range parent.VlanInterfaces {
		if entry != v.data {
			kept = append(kept, entry)
		}
	}
	parent.VlanInterfaces = kept
	return v.parent.Save(ctx)
}

// ==== nicid helpers ========================================================

// nicBase returns the interface part of a possibly dotted nicid:
// "1.100" yields "1", "1" yields "1".
func nicBase(nicid string) string {
	if i := strings.Index(nicid, "."); i >= 0 {
		return nicid[:i]
	}
	return nicid
}

// nicVlan returns the VLAN part of a dotted nicid, or "" when undotted.
func nicVlan(nicid string) string {
	if i := strings.Index(nicid, "."); i >= 0 {
		return nicid[i+1:]
	}
	return ""
}

// inlineVlans extracts the VLAN parts from an inline pair nicid such as
// "1.100-2.200". Undotted sides yield "".
func inlineVlans(nicid string) (string, string) {
	pair := strings.SplitN(nicid, "-", 2)
	v1 := nicVlan(pair[0])
	v2 := v1
	if len(pair) > 1 {
		v2 = nicVlan(pair[1])
	}
	return v1, v2
}

// changeInlineVlanID rewrites the VLAN parts of an inline pair nicid.
// newVlans carries one value applied to both sides, or a pair.
func (s *SubInterface) changeInlineVlanID(newVlans []string) {
	pair := strings.SplitN(s.NicID, "-", 2)
	firstIntf := nicBase(pair[0])
	secondIntf := firstIntf
	if len(pair) > 1 {
		secondIntf = nicBase(pair[1])
	}
	v1 := newVlans[0]
	v2 := v1
	if len(newVlans) > 1 {
		v2 = newVlans[1]
	}
	s.NicID = fmt.Sprintf("%s.%s-%s.%s", firstIntf, v1, secondIntf, v2)
}

func orID(preferred, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}
