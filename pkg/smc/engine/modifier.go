package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ad1rie1/smc-go/pkg/util"
)

// InterfaceModifier is the parsed view of every interface on an engine.
// Mutations happen in memory against the shared InterfaceData nodes and are
// pushed back in a single engine update through save.
type InterfaceModifier struct {
	engine     *Engine
	interfaces []*Interface
}

// ModifierByEngine parses the engine's interface list. The returned
// interfaces share the modifier, so any Save writes all of them back
// together.
func ModifierByEngine(ctx context.Context, e *Engine) (*InterfaceModifier, error) {
	raw, err := e.payload(ctx)
	if err != nil {
		return nil, err
	}
	m := &InterfaceModifier{engine: e}
	listData, ok := raw["physicalInterfaces"]
	if !ok {
		return m, nil
	}
	var typed []*TypedInterface
	if err := json.Unmarshal(listData, &typed); err != nil {
		return nil, fmt.Errorf("decoding interfaces of engine %s: %w", e.name, err)
	}
	for _, t := range typed {
		m.interfaces = append(m.interfaces, &Interface{modifier: m, typeof: t.Typeof, data: t.Data})
	}
	return m, nil
}

func (m *InterfaceModifier) Engine() *Engine          { return m.engine }
func (m *InterfaceModifier) Interfaces() []*Interface { return m.interfaces }

// Get resolves an interface by id. Accepted forms, tried in order against
// each interface:
//   - top-level id, including inline pair membership ("2" finds "1-2")
//   - a VLAN-qualified id ("1.100") whose base matches a top-level id
//   - a sub-interface nicid, so inline pairs resolve by either side
func (m *InterfaceModifier) Get(interfaceID string) (*Interface, error) {
	base := nicBase(interfaceID)
	for _, itf := range m.interfaces {
		id := itf.data.InterfaceID
		if id == interfaceID || id == base || pairContains(id, base) {
			return itf, nil
		}
		for _, sub := range itf.AllSubInterfaces() {
			if sub.NicID == interfaceID || pairContains(sub.NicID, base) {
				return itf, nil
			}
		}
	}
	return nil, util.NewNotFoundError("interface", interfaceID)
}

// SetUnset assigns a role flag to the sub-interfaces matching interfaceID
// and clears it from every other flag-bearing sub-interface on the engine,
// keeping the role unique. A non-empty address restricts the assignment to
// sub-interfaces whose network contains it.
func (m *InterfaceModifier) SetUnset(interfaceID string, flag RoleFlag, address string) {
	for _, itf := range m.interfaces {
		for _, sub := range itf.AllSubInterfaces() {
			if !sub.SupportsFlag(flag) {
				continue
			}
			if sub.NicID != interfaceID {
				sub.SetFlag(flag, false)
				continue
			}
			if address != "" {
				sub.SetFlag(flag, util.AddrInNetwork(address, sub.NetworkValue))
			} else {
				sub.SetFlag(flag, true)
			}
		}
	}
}

// SetAuthRequest moves the auth_request role to the given interface. On an
// interface holding cluster virtual addresses only those are eligible and
// node addresses are cleared. Engine types without authentication routing
// (master engines, layer 2 and IPS engines) ignore the call. A non-empty
// address must match a sub-interface address exactly.
func (m *InterfaceModifier) SetAuthRequest(interfaceID, address string) {
	if !m.engine.supportsAuthRequest() {
		return
	}
	for _, itf := range m.interfaces {
		subs := itf.AllSubInterfaces()
		hasCVI := false
		for _, sub := range subs {
			if sub.IsCVI() {
				hasCVI = true
				break
			}
		}
		for _, sub := range subs {
			if !sub.SupportsFlag(AuthRequest) {
				continue
			}
			if hasCVI && !sub.IsCVI() {
				sub.SetFlag(AuthRequest, false)
				continue
			}
			if sub.NicID != interfaceID {
				sub.SetFlag(AuthRequest, false)
				continue
			}
			if address != "" {
				sub.SetFlag(AuthRequest, sub.Address == address)
			} else {
				sub.SetFlag(AuthRequest, true)
			}
		}
	}
}

// Remove deletes an interface and everything under it from the engine in
// one update.
func (m *InterfaceModifier) Remove(ctx context.Context, interfaceID string) error {
	target, err := m.Get(interfaceID)
	if err != nil {
		return err
	}
	kept := m.interfaces[:0]
	for _, itf := range m.interfaces {
		if itf != target {
			kept = append(kept, itf)
		}
	}
	m.interfaces = kept
	util.WithEngine(m.engine.name).WithField("interface_id", target.InterfaceID()).Debug("interface removed")
	return m.save(ctx)
}

// Data re-serializes the interface list into the tagged wire form carried
// in the engine payload.
func (m *InterfaceModifier) Data() []*TypedInterface {
	typed := make([]*TypedInterface, 0, len(m.interfaces))
	for _, itf := range m.interfaces {
		typed = append(typed, &TypedInterface{Typeof: itf.typeof, Data: itf.data})
	}
	return typed
}

// save writes the interface list into the engine payload and updates the
// engine on the server.
func (m *InterfaceModifier) save(ctx context.Context) error {
	if err := m.engine.setInterfaces(m.interfaces); err != nil {
		return err
	}
	return m.engine.Update(ctx)
}

// pairContains reports whether id is one side of a dash pair such as "1-2"
// or "1.100-2.200", comparing interface parts only.
func pairContains(pair, id string) bool {
	if !strings.Contains(pair, "-") {
		return false
	}
	for _, part := range strings.Split(pair, "-") {
		if nicBase(part) == id {
			return true
		}
	}
	return false
}
