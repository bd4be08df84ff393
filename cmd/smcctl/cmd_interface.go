package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ad1rie1/smc-go/pkg/cli"
	"github.com/ad1rie1/smc-go/pkg/smc/api"
	"github.com/ad1rie1/smc-go/pkg/smc/engine"
)

var flagEngineType string

func newInterfaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "interface",
		Aliases: []string{"if"},
		Short:   "Inspect and modify engine interfaces",
	}
	cmd.PersistentFlags().StringVar(&flagEngineType, "engine-type", engine.TypeSingleFW, "engine element type")

	cmd.AddCommand(newInterfaceListCmd())
	cmd.AddCommand(newInterfaceAddCmd())
	cmd.AddCommand(newInterfaceSetMgmtCmd())
	cmd.AddCommand(newInterfaceChangeIDCmd())
	cmd.AddCommand(newInterfaceChangeVlanCmd())
	cmd.AddCommand(newInterfaceRemoveVlanCmd())
	cmd.AddCommand(newInterfaceDeleteCmd())
	return cmd
}

func newInterfaceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <engine> <interface-id>",
		Short: "Delete an interface and everything under it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, args[0], func(e *engine.Engine) error {
				m, err := engine.ModifierByEngine(cmd.Context(), e)
				if err != nil {
					return err
				}
				return m.Remove(cmd.Context(), args[1])
			})
		},
	}
}

func withEngine(cmd *cobra.Command, name string, fn func(*engine.Engine) error) error {
	return connect(cmd.Context(), func(s *api.Session) error {
		e, err := engine.LoadEngine(cmd.Context(), s, flagEngineType, name)
		if err != nil {
			return err
		}
		return fn(e)
	})
}

func newInterfaceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <engine>",
		Short: "List interfaces with addresses and roles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, args[0], func(e *engine.Engine) error {
				m, err := engine.ModifierByEngine(cmd.Context(), e)
				if err != nil {
					return err
				}
				table := cli.NewTable("ID", "TYPE", "ADDRESSES", "MGMT", "OUTGOING", "AUTH")
				for _, itf := range m.Interfaces() {
					mgmt, outgoing, auth := false, false, false
					for _, sub := range itf.AllSubInterfaces() {
						mgmt = mgmt || sub.Flag(engine.PrimaryMgt)
						outgoing = outgoing || sub.Flag(engine.Outgoing)
						auth = auth || sub.Flag(engine.AuthRequest)
					}
					table.Row(
						itf.InterfaceID(),
						itf.Typeof(),
						cli.FormatAddresses(itf.Addresses()),
						cli.FormatBool(mgmt),
						cli.FormatBool(outgoing),
						cli.FormatBool(auth),
					)
				}
				table.Flush()
				return nil
			})
		},
	}
}

func newInterfaceAddCmd() *cobra.Command {
	var (
		address string
		network string
		nodeID  int
		cviAddr string
		vlanID  string
		zone    string
		isMgmt  bool
		dhcp    bool
	)
	cmd := &cobra.Command{
		Use:   "add <engine> <interface-id>",
		Short: "Add addressing to an interface, creating it when absent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, args[0], func(e *engine.Engine) error {
				b, err := engine.GetBuilder(cmd.Context(), e, args[1])
				if err != nil {
					return err
				}
				if zone != "" {
					if err := b.SetZone(cmd.Context(), zone); err != nil {
						return err
					}
				}
				switch {
				case dhcp:
					b.AddDHCP(1, isMgmt)
				case e.IsCluster():
					if cviAddr != "" {
						if vlanID != "" {
							err = b.AddCVIToVlan(cviAddr, network, vlanID)
						} else {
							err = b.AddCVIOnly(cviAddr, network, isMgmt)
						}
						if err != nil {
							return err
						}
					}
					if address != "" {
						if vlanID != "" {
							err = b.AddNDIToVlan(address, network, vlanID, nodeID)
						} else {
							err = b.AddNDIOnly(address, network, nodeID, isMgmt)
						}
						if err != nil {
							return err
						}
					}
				default:
					if err := b.AddSNIOnly(address, network, isMgmt); err != nil {
						return err
					}
				}
				if err := b.Dispatch(cmd.Context()); err != nil {
					return err
				}
				fmt.Printf("interface %s updated on %s\n", args[1], e.Name())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "node address")
	cmd.Flags().StringVar(&network, "network", "", "network in CIDR notation")
	cmd.Flags().IntVar(&nodeID, "nodeid", 1, "cluster node id for node addresses")
	cmd.Flags().StringVar(&cviAddr, "cvi", "", "cluster virtual address")
	cmd.Flags().StringVar(&vlanID, "vlan", "", "place the address under this vlan")
	cmd.Flags().StringVar(&zone, "zone", "", "interface zone, created on demand")
	cmd.Flags().BoolVar(&isMgmt, "mgmt", false, "make this the management interface")
	cmd.Flags().BoolVar(&dhcp, "dhcp", false, "use DHCP addressing")
	return cmd
}

func newInterfaceSetMgmtCmd() *cobra.Command {
	var authRequestID, address string
	cmd := &cobra.Command{
		Use:   "set-mgmt <engine> <interface-id>",
		Short: "Move the primary management role to an interface",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, args[0], func(e *engine.Engine) error {
				opts := e.InterfaceOptions()
				if err := opts.SetPrimaryMgt(cmd.Context(), args[1], authRequestID, address); err != nil {
					return err
				}
				fmt.Printf("management moved to interface %s on %s\n", args[1], e.Name())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&authRequestID, "auth-request", "", "keep the auth_request role on this interface instead")
	cmd.Flags().StringVar(&address, "address", "", "pick the sub-interface holding this address")
	return cmd
}

func newInterfaceChangeIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-id <engine> <interface-id> <new-id>",
		Short: "Renumber an interface, cascading through vlans and inline pairs",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, args[0], func(e *engine.Engine) error {
				m, err := engine.ModifierByEngine(cmd.Context(), e)
				if err != nil {
					return err
				}
				itf, err := m.Get(args[1])
				if err != nil {
					return err
				}
				return itf.ChangeInterfaceID(cmd.Context(), args[2])
			})
		},
	}
}

func newInterfaceChangeVlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-vlan <engine> <interface-id> <vlan> <new-vlan>",
		Short: "Renumber a vlan on an interface",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, args[0], func(e *engine.Engine) error {
				m, err := engine.ModifierByEngine(cmd.Context(), e)
				if err != nil {
					return err
				}
				itf, err := m.Get(args[1])
				if err != nil {
					return err
				}
				return itf.ChangeVlanID(cmd.Context(), args[2], args[3])
			})
		},
	}
}

func newInterfaceRemoveVlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-vlan <engine> <interface-id> <vlan>",
		Short: "Remove a vlan and everything under it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, args[0], func(e *engine.Engine) error {
				b, err := engine.GetBuilder(cmd.Context(), e, args[1])
				if err != nil {
					return err
				}
				if !b.Exists() {
					return fmt.Errorf("interface %s does not exist on %s", args[1], e.Name())
				}
				b.RemoveVlan(args[2])
				return b.Dispatch(cmd.Context())
			})
		},
	}
}
