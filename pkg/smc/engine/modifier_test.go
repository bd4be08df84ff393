package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ad1rie1/smc-go/pkg/util"
)

func TestModifierParsesEngine(t *testing.T) {
	m := mustModifier(t, singleFWEngine(newFakeTransport()))
	assertEqual(t, len(m.Interfaces()), 2)
	assertEqual(t, m.Interfaces()[0].InterfaceID(), "0")
	assertEqual(t, m.Interfaces()[0].Typeof(), TypePhysicalInterface)
}

func TestGetByTopLevelID(t *testing.T) {
	m := mustModifier(t, singleFWEngine(newFakeTransport()))
	assertEqual(t, mustGet(t, m, "1").InterfaceID(), "1")
}

func TestGetVlanQualifiedFallsToParent(t *testing.T) {
	m := mustModifier(t, clusterEngine(newFakeTransport()))
	// exact vlan exists
	assertEqual(t, mustGet(t, m, "1.100").InterfaceID(), "1")
	// vlan does not exist but the base interface does
	assertEqual(t, mustGet(t, m, "1.999").InterfaceID(), "1")
}

func TestGetInlineByEitherSide(t *testing.T) {
	tr := newFakeTransport()
	e := NewTestEngine(tr, "inline-ips", TypeSingleIPS, enginePayload(
		physical("2", []map[string]interface{}{
			inlinePair(KindInlineIPS, "2-3"),
		}),
	))
	m := mustModifier(t, e)
	for _, id := range []string{"2", "3", "2-3"} {
		itf, err := m.Get(id)
		if err != nil {
			t.Fatalf("Get(%s): %v", id, err)
		}
		assertEqual(t, itf.InterfaceID(), "2")
	}
}

func TestGetNotFound(t *testing.T) {
	m := mustModifier(t, singleFWEngine(newFakeTransport()))
	_, err := m.Get("99")
	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetUnsetKeepsRoleUnique(t *testing.T) {
	m := mustModifier(t, singleFWEngine(newFakeTransport()))
	assertEqual(t, flagCount(m, PrimaryMgt), 1)

	m.SetUnset("1", PrimaryMgt, "")
	assertEqual(t, flagCount(m, PrimaryMgt), 1)
	itf := mustGet(t, m, "1")
	if !itf.SubInterfaces()[0].Flag(PrimaryMgt) {
		t.Fatal("primary_mgt did not move to interface 1")
	}
	itf0 := mustGet(t, m, "0")
	if itf0.SubInterfaces()[0].Flag(PrimaryMgt) {
		t.Fatal("primary_mgt not cleared from interface 0")
	}
}

func TestSetUnsetAddressQualified(t *testing.T) {
	tr := newFakeTransport()
	e := NewTestEngine(tr, "multi-net", TypeSingleFW, enginePayload(
		physical("0", []map[string]interface{}{
			sni("10.0.0.254", "10.0.0.0/24", "0", PrimaryMgt),
		}),
		physical("1", []map[string]interface{}{
			sni("10.10.10.1", "10.10.10.0/24", "1"),
			sni("172.16.0.1", "172.16.0.0/16", "1"),
		}),
	))
	m := mustModifier(t, e)
	m.SetUnset("1", PrimaryMgt, "172.16.5.5")
	assertEqual(t, flagCount(m, PrimaryMgt), 1)
	subs := mustGet(t, m, "1").SubInterfaces()
	if subs[0].Flag(PrimaryMgt) {
		t.Fatal("primary_mgt set on sub-interface outside the address network")
	}
	if !subs[1].Flag(PrimaryMgt) {
		t.Fatal("primary_mgt not set on the sub-interface containing the address")
	}
}

func TestSetUnsetVlanNicid(t *testing.T) {
	m := mustModifier(t, clusterEngine(newFakeTransport()))
	m.SetUnset("1.100", PrimaryMgt, "")
	// both node addresses on the vlan match the nicid
	assertEqual(t, flagCount(m, PrimaryMgt), 2)
	itf0 := mustGet(t, m, "0")
	for _, sub := range itf0.SubInterfaces() {
		if sub.Flag(PrimaryMgt) {
			t.Fatal("primary_mgt not cleared from interface 0")
		}
	}
}

func TestSetAuthRequestPrefersCVI(t *testing.T) {
	m := mustModifier(t, clusterEngine(newFakeTransport()))
	m.SetAuthRequest("1.100", "")
	itf := mustGet(t, m, "1")
	for _, sub := range itf.AllSubInterfaces() {
		want := sub.IsCVI()
		if sub.Flag(AuthRequest) != want {
			t.Fatalf("auth_request on %s %s: got %v, want %v", sub.Kind, sub.NicID, sub.Flag(AuthRequest), want)
		}
	}
	// cleared from the previous holder on interface 0
	itf0 := mustGet(t, m, "0")
	for _, sub := range itf0.AllSubInterfaces() {
		if sub.Flag(AuthRequest) {
			t.Fatal("auth_request not cleared from interface 0")
		}
	}
}

func TestSetAuthRequestAddressMatchesExactly(t *testing.T) {
	m := mustModifier(t, clusterEngine(newFakeTransport()))
	m.SetAuthRequest("0", "10.0.0.1")
	assertEqual(t, flagCount(m, AuthRequest), 1)

	m.SetAuthRequest("0", "10.0.0.99")
	assertEqual(t, flagCount(m, AuthRequest), 0)
}

func TestSetAuthRequestIgnoredEngineTypes(t *testing.T) {
	for _, typeof := range []string{TypeSingleIPS, TypeSingleLayer2, TypeMasterEngine} {
		tr := newFakeTransport()
		e := NewTestEngine(tr, "l2", typeof, enginePayload(
			physical("0", []map[string]interface{}{
				sni("10.0.0.254", "10.0.0.0/24", "0", AuthRequest),
			}),
		))
		m := mustModifier(t, e)
		m.SetAuthRequest("99", "")
		if got := flagCount(m, AuthRequest); got != 1 {
			t.Fatalf("%s: auth_request swept on an engine type without auth routing", typeof)
		}
	}
}

func TestModifierDataRoundTrip(t *testing.T) {
	m := mustModifier(t, clusterEngine(newFakeTransport()))
	data, err := json.Marshal(m.Data())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var typed []*TypedInterface
	if err := json.Unmarshal(data, &typed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	assertEqual(t, len(typed), 2)
	assertEqual(t, typed[0].Typeof, TypePhysicalInterface)
	assertEqual(t, typed[1].Data.VlanInterfaces[0].InterfaceID, "1.100")
	assertEqual(t, len(typed[1].Data.VlanInterfaces[0].Interfaces), 3)
}

func TestRemoveInterface(t *testing.T) {
	tr := newFakeTransport()
	e := singleFWEngine(tr)
	m := mustModifier(t, e)
	if err := m.Remove(context.Background(), "1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	assertEqual(t, len(m.Interfaces()), 1)
	assertEqual(t, m.Interfaces()[0].InterfaceID(), "0")
	assertEqual(t, len(tr.updates), 1)

	if err := m.Remove(context.Background(), "42"); !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveUpdatesEngineAndInvalidates(t *testing.T) {
	tr := newFakeTransport()
	e := singleFWEngine(tr)
	m := mustModifier(t, e)
	m.SetUnset("1", PrimaryMgt, "")
	if err := m.save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	assertEqual(t, len(tr.updates), 1)
	assertEqual(t, tr.updates[0].etag, "test-etag")
	if e.raw != nil {
		t.Fatal("engine cache not invalidated after update")
	}
}
