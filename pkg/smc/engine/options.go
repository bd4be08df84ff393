package engine

import (
	"context"

	"github.com/ad1rie1/smc-go/pkg/util"
)

// InterfaceOptions moves engine-wide interface roles. Each role lives on
// exactly one interface, so every setter clears the role everywhere else
// before assigning it, then pushes the result in one engine update.
type InterfaceOptions struct {
	engine *Engine
}

// InterfaceOptions returns the role assignment API for the engine.
func (e *Engine) InterfaceOptions() *InterfaceOptions {
	return &InterfaceOptions{engine: e}
}

// PrimaryMgt returns the interface currently holding primary management.
func (o *InterfaceOptions) PrimaryMgt(ctx context.Context) (*Interface, error) {
	return o.roleHolder(ctx, PrimaryMgt)
}

// Outgoing returns the interface currently sourcing engine-initiated
// traffic.
func (o *InterfaceOptions) Outgoing(ctx context.Context) (*Interface, error) {
	return o.roleHolder(ctx, Outgoing)
}

// AuthRequest returns the interface currently holding the authentication
// request role.
func (o *InterfaceOptions) AuthRequest(ctx context.Context) (*Interface, error) {
	return o.roleHolder(ctx, AuthRequest)
}

func (o *InterfaceOptions) roleHolder(ctx context.Context, flag RoleFlag) (*Interface, error) {
	m, err := ModifierByEngine(ctx, o.engine)
	if err != nil {
		return nil, err
	}
	for _, itf := range m.Interfaces() {
		if itf.HasFlag(flag) {
			return itf, nil
		}
	}
	return nil, util.NewNotFoundError("interface with role", string(flag))
}

// SetPrimaryMgt makes the interface the primary management interface. The
// outgoing role follows, and the authentication request role follows too
// unless authRequestID names a different interface for it. On virtual
// firewalls management stays on the master engine, so only outgoing and
// auth_request move. A non-empty address picks the sub-interface by
// network on multi-address interfaces.
func (o *InterfaceOptions) SetPrimaryMgt(ctx context.Context, interfaceID, authRequestID, address string) error {
	flags := []RoleFlag{PrimaryMgt, Outgoing}
	if o.engine.typeof == TypeVirtualFW {
		flags = []RoleFlag{Outgoing}
	}
	return o.sweep(ctx, interfaceID, address, flags, func(m *InterfaceModifier) {
		target := interfaceID
		if authRequestID != "" {
			target = authRequestID
		}
		m.SetAuthRequest(target, address)
	})
}

// SetBackupMgt makes the interface the backup management interface.
func (o *InterfaceOptions) SetBackupMgt(ctx context.Context, interfaceID string) error {
	return o.sweep(ctx, interfaceID, "", []RoleFlag{BackupMgt}, nil)
}

// SetPrimaryHeartbeat makes the interface the primary heartbeat interface.
// Meaningful on clusters only, but harmless elsewhere.
func (o *InterfaceOptions) SetPrimaryHeartbeat(ctx context.Context, interfaceID string) error {
	return o.sweep(ctx, interfaceID, "", []RoleFlag{PrimaryHeartbeat}, nil)
}

// SetBackupHeartbeat makes the interface the backup heartbeat interface.
func (o *InterfaceOptions) SetBackupHeartbeat(ctx context.Context, interfaceID string) error {
	return o.sweep(ctx, interfaceID, "", []RoleFlag{BackupHeartbeat}, nil)
}

// SetOutgoing makes the interface the source for engine-initiated traffic.
func (o *InterfaceOptions) SetOutgoing(ctx context.Context, interfaceID string) error {
	return o.sweep(ctx, interfaceID, "", []RoleFlag{Outgoing}, nil)
}

// SetAuthRequest moves the authentication request role to the interface.
func (o *InterfaceOptions) SetAuthRequest(ctx context.Context, interfaceID, address string) error {
	return o.sweep(ctx, interfaceID, address, nil, func(m *InterfaceModifier) {
		m.SetAuthRequest(interfaceID, address)
	})
}

func (o *InterfaceOptions) sweep(ctx context.Context, interfaceID, address string, flags []RoleFlag, extra func(*InterfaceModifier)) error {
	m, err := ModifierByEngine(ctx, o.engine)
	if err != nil {
		return err
	}
	if _, err := m.Get(interfaceID); err != nil {
		return err
	}
	for _, f := range flags {
		m.SetUnset(interfaceID, f, address)
	}
	if extra != nil {
		extra(m)
	}
	if err := m.save(ctx); err != nil {
		return err
	}
	util.WithEngine(o.engine.name).WithField("interface_id", interfaceID).Info("interface roles updated")
	return nil
}
