package engine

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSubInterfaceRoundTrip(t *testing.T) {
	orig := &SubInterface{
		Kind:            KindSingleNode,
		Address:         "10.0.0.254",
		NetworkValue:    "10.0.0.0/24",
		NicID:           "0",
		NodeID:          1,
		PrimaryMgtFlag:  true,
		OutgoingFlag:    true,
		AuthRequestFlag: true,
	}
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded SubInterface
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != *orig {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, *orig)
	}
}

func TestSubInterfaceMarshalTagged(t *testing.T) {
	sub := &SubInterface{Kind: KindNode, Address: "1.1.1.1", NetworkValue: "1.1.1.0/24", NicID: "2", NodeID: 2}
	data, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var tagged map[string]map[string]interface{}
	if err := json.Unmarshal(data, &tagged); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	fields, ok := tagged["node_interface"]
	if !ok || len(tagged) != 1 {
		t.Fatalf("expected single node_interface key, got %v", tagged)
	}
	// cleared role flags still serialize so the server clears them too
	for _, flag := range allRoleFlags {
		v, ok := fields[string(flag)]
		if !ok {
			t.Fatalf("flag %s missing from payload", flag)
		}
		if v != false {
			t.Fatalf("flag %s: got %v, want false", flag, v)
		}
	}
}

func TestSubInterfaceCVIMarshalOmitsNodeFields(t *testing.T) {
	sub := &SubInterface{Kind: KindClusterCVI, Address: "10.0.0.1", NetworkValue: "10.0.0.0/24", NicID: "0"}
	data, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, absent := range []string{"nodeid", "primary_mgt", "outgoing", "primary_heartbeat"} {
		if strings.Contains(s, absent) {
			t.Fatalf("cvi payload should not carry %s: %s", absent, s)
		}
	}
	if !strings.Contains(s, "auth_request") {
		t.Fatalf("cvi payload must carry auth_request: %s", s)
	}
}

func TestSubInterfaceUnknownKind(t *testing.T) {
	var sub SubInterface
	err := json.Unmarshal([]byte(`{"bridge_interface":{"nicid":"1"}}`), &sub)
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestSupportsFlagByKind(t *testing.T) {
	cases := []struct {
		kind  SubKind
		flag  RoleFlag
		wants bool
	}{
		{KindSingleNode, PrimaryMgt, true},
		{KindSingleNode, AuthRequest, true},
		{KindNode, BackupHeartbeat, true},
		{KindLoopback, Outgoing, true},
		{KindClusterCVI, AuthRequest, true},
		{KindClusterCVI, PrimaryMgt, false},
		{KindLoopbackCVI, AuthRequest, true},
		{KindLoopbackCVI, Outgoing, false},
		{KindInline, PrimaryMgt, false},
		{KindInline, AuthRequest, false},
		{KindCapture, Outgoing, false},
	}
	for _, c := range cases {
		sub := &SubInterface{Kind: c.kind}
		if got := sub.SupportsFlag(c.flag); got != c.wants {
			t.Errorf("%s supports %s: got %v, want %v", c.kind, c.flag, got, c.wants)
		}
	}
}

func TestSetFlagUnsupportedDropped(t *testing.T) {
	sub := &SubInterface{Kind: KindClusterCVI}
	sub.SetFlag(PrimaryMgt, true)
	if sub.PrimaryMgtFlag {
		t.Fatal("primary_mgt must not be settable on a cvi")
	}
	if sub.Flag(PrimaryMgt) {
		t.Fatal("primary_mgt must read false on a cvi")
	}
	sub.SetFlag(AuthRequest, true)
	if !sub.Flag(AuthRequest) {
		t.Fatal("auth_request must be settable on a cvi")
	}
}

func TestSubInterfaceDHCPMarshal(t *testing.T) {
	sub := &SubInterface{
		Kind:                  KindSingleNode,
		NicID:                 "0",
		NodeID:                1,
		Dynamic:               true,
		DynamicIndex:          1,
		PrimaryMgtFlag:        true,
		ReverseConnection:     true,
		AutomaticDefaultRoute: true,
	}
	data, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded SubInterface
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Dynamic || decoded.DynamicIndex != 1 {
		t.Fatalf("dhcp fields lost: %+v", decoded)
	}
	if !decoded.ReverseConnection || !decoded.AutomaticDefaultRoute {
		t.Fatalf("dhcp management fields lost: %+v", decoded)
	}
}
