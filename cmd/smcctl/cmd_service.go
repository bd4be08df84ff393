package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ad1rie1/smc-go/pkg/smc/api"
	"github.com/ad1rie1/smc-go/pkg/smc/elements"
)

func newServiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Create service elements",
	}
	cmd.AddCommand(newServiceCreateTCPCmd())
	cmd.AddCommand(newServiceCreateUDPCmd())
	cmd.AddCommand(newServiceCreateICMPCmd())
	return cmd
}

func newServiceCreateTCPCmd() *cobra.Command {
	var maxPort int
	var comment string
	cmd := &cobra.Command{
		Use:   "create-tcp <name> <port>",
		Short: "Create a TCP service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return connect(cmd.Context(), func(s *api.Session) error {
				var port int
				if _, err := fmt.Sscanf(args[1], "%d", &port); err != nil {
					return fmt.Errorf("invalid port %q", args[1])
				}
				el, err := elements.TCPService{
					Name:       args[0],
					MinDstPort: port,
					MaxDstPort: maxPort,
					Comment:    comment,
				}.Create(cmd.Context(), s)
				if err != nil {
					return err
				}
				fmt.Printf("created %s at %s\n", el.Name, el.Href)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&maxPort, "max-port", 0, "upper bound for a port range")
	cmd.Flags().StringVar(&comment, "comment", "", "element comment")
	return cmd
}

func newServiceCreateUDPCmd() *cobra.Command {
	var maxPort int
	var comment string
	cmd := &cobra.Command{
		Use:   "create-udp <name> <port>",
		Short: "Create a UDP service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return connect(cmd.Context(), func(s *api.Session) error {
				var port int
				if _, err := fmt.Sscanf(args[1], "%d", &port); err != nil {
					return fmt.Errorf("invalid port %q", args[1])
				}
				el, err := elements.UDPService{
					Name:       args[0],
					MinDstPort: port,
					MaxDstPort: maxPort,
					Comment:    comment,
				}.Create(cmd.Context(), s)
				if err != nil {
					return err
				}
				fmt.Printf("created %s at %s\n", el.Name, el.Href)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&maxPort, "max-port", 0, "upper bound for a port range")
	cmd.Flags().StringVar(&comment, "comment", "", "element comment")
	return cmd
}

func newServiceCreateICMPCmd() *cobra.Command {
	var icmpCode int
	var comment string
	cmd := &cobra.Command{
		Use:   "create-icmp <name> <type>",
		Short: "Create an ICMP service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return connect(cmd.Context(), func(s *api.Session) error {
				var icmpType int
				if _, err := fmt.Sscanf(args[1], "%d", &icmpType); err != nil {
					return fmt.Errorf("invalid icmp type %q", args[1])
				}
				el, err := elements.ICMPService{
					Name:     args[0],
					ICMPType: icmpType,
					ICMPCode: icmpCode,
					Comment:  comment,
				}.Create(cmd.Context(), s)
				if err != nil {
					return err
				}
				fmt.Printf("created %s at %s\n", el.Name, el.Href)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&icmpCode, "code", -1, "icmp code, -1 matches any")
	cmd.Flags().StringVar(&comment, "comment", "", "element comment")
	return cmd
}
