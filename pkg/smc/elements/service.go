package elements

import (
	"context"
)

// Element type names for the service collections.
const (
	TypeTCPService      = "tcp_service"
	TypeUDPService      = "udp_service"
	TypeIPService       = "ip_service"
	TypeICMPService     = "icmp_service"
	TypeICMPIPv6Service = "icmp_ipv6_service"
	TypeEthernetService = "ethernet_service"
)

// TCPService defines a TCP port or port range service. MaxDstPort of zero
// means a single-port service.
type TCPService struct {
	Name       string
	MinDstPort int
	MaxDstPort int
	Comment    string
}

// Create creates the service element.
func (s TCPService) Create(ctx context.Context, tr Transport) (*Element, error) {
	return createElement(ctx, tr, TypeTCPService, s.Name, portServiceBody(s.Name, s.MinDstPort, s.MaxDstPort, s.Comment))
}

// UDPService defines a UDP port or port range service.
type UDPService struct {
	Name       string
	MinDstPort int
	MaxDstPort int
	Comment    string
}

// Create creates the service element.
func (s UDPService) Create(ctx context.Context, tr Transport) (*Element, error) {
	return createElement(ctx, tr, TypeUDPService, s.Name, portServiceBody(s.Name, s.MinDstPort, s.MaxDstPort, s.Comment))
}

// IPService defines a service matching on IP protocol number.
type IPService struct {
	Name           string
	ProtocolNumber int
	Comment        string
}

// Create creates the service element.
func (s IPService) Create(ctx context.Context, tr Transport) (*Element, error) {
	body := map[string]interface{}{
		"name":            s.Name,
		"protocol_number": s.ProtocolNumber,
	}
	if s.Comment != "" {
		body["comment"] = s.Comment
	}
	return createElement(ctx, tr, TypeIPService, s.Name, body)
}

// ICMPService defines an ICMP type/code service. Code below zero means the
// service matches any code.
type ICMPService struct {
	Name     string
	ICMPType int
	ICMPCode int
	Comment  string
}

// Create creates the service element.
func (s ICMPService) Create(ctx context.Context, tr Transport) (*Element, error) {
	body := map[string]interface{}{
		"name":      s.Name,
		"icmp_type": s.ICMPType,
	}
	if s.ICMPCode >= 0 {
		body["icmp_code"] = s.ICMPCode
	}
	if s.Comment != "" {
		body["comment"] = s.Comment
	}
	return createElement(ctx, tr, TypeICMPService, s.Name, body)
}

// ICMPIPv6Service defines an ICMPv6 type service.
type ICMPIPv6Service struct {
	Name     string
	ICMPType int
	Comment  string
}

// Create creates the service element.
func (s ICMPIPv6Service) Create(ctx context.Context, tr Transport) (*Element, error) {
	body := map[string]interface{}{
		"name":      s.Name,
		"icmp_type": s.ICMPType,
	}
	if s.Comment != "" {
		body["comment"] = s.Comment
	}
	return createElement(ctx, tr, TypeICMPIPv6Service, s.Name, body)
}

// EthernetService defines a layer 2 frame type service. Value1 is the
// ethertype as a hex string, e.g. "0x8037".
type EthernetService struct {
	Name      string
	FrameType string
	Value1    string
	Comment   string
}

// Create creates the service element.
func (s EthernetService) Create(ctx context.Context, tr Transport) (*Element, error) {
	body := map[string]interface{}{
		"name":       s.Name,
		"frame_type": s.FrameType,
	}
	if s.Value1 != "" {
		body["value1"] = s.Value1
	}
	if s.Comment != "" {
		body["comment"] = s.Comment
	}
	return createElement(ctx, tr, TypeEthernetService, s.Name, body)
}

func portServiceBody(name string, minPort, maxPort int, comment string) map[string]interface{} {
	body := map[string]interface{}{
		"name":         name,
		"min_dst_port": minPort,
	}
	if maxPort > 0 {
		body["max_dst_port"] = maxPort
	}
	if comment != "" {
		body["comment"] = comment
	}
	return body
}
