package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ad1rie1/smc-go/pkg/smc/api"
	"github.com/ad1rie1/smc-go/pkg/util"
)

// fakeTransport records writes and serves canned lookups, standing in for
// the api session.
type fakeTransport struct {
	getResults  map[string]*api.Result
	entryPoints map[string]string
	elements    map[string]api.SearchHit // key "typeof/name"

	updates []recordedWrite
	creates []recordedWrite
	deletes []string
}

type recordedWrite struct {
	href string
	etag string
	body interface{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		getResults:  make(map[string]*api.Result),
		entryPoints: make(map[string]string),
		elements:    make(map[string]api.SearchHit),
	}
}

func (f *fakeTransport) addElement(typeof, name, href string) {
	f.elements[typeof+"/"+name] = api.SearchHit{Name: name, Type: typeof, Href: href}
}

func (f *fakeTransport) Get(ctx context.Context, href string) (*api.Result, error) {
	if res, ok := f.getResults[href]; ok {
		return res, nil
	}
	return nil, util.NewNotFoundError("element", href)
}

func (f *fakeTransport) Create(ctx context.Context, href string, body interface{}) (*api.Result, error) {
	f.creates = append(f.creates, recordedWrite{href: href, body: body})
	return &api.Result{Code: 201, Href: href + "/created"}, nil
}

func (f *fakeTransport) Update(ctx context.Context, href, etag string, body interface{}) (*api.Result, error) {
	f.updates = append(f.updates, recordedWrite{href: href, etag: etag, body: body})
	return &api.Result{Code: 200}, nil
}

func (f *fakeTransport) Delete(ctx context.Context, href string) error {
	f.deletes = append(f.deletes, href)
	return nil
}

func (f *fakeTransport) EntryPoint(rel string) (string, error) {
	if href, ok := f.entryPoints[rel]; ok {
		return href, nil
	}
	return "", util.NewNotFoundError("entry point", rel)
}

func (f *fakeTransport) FindByName(ctx context.Context, typeof, name string) (*api.SearchHit, error) {
	if hit, ok := f.elements[typeof+"/"+name]; ok {
		return &hit, nil
	}
	return nil, util.NewNotFoundError(typeof, name)
}

// ==== payload builders =====================================================

func sni(address, network, nicid string, flags ...RoleFlag) map[string]interface{} {
	return map[string]interface{}{
		string(KindSingleNode): addressedSub(address, network, nicid, 1, flags),
	}
}

func ndi(address, network, nicid string, nodeid int, flags ...RoleFlag) map[string]interface{} {
	return map[string]interface{}{
		string(KindNode): addressedSub(address, network, nicid, nodeid, flags),
	}
}

func inlinePair(kind SubKind, nicid string) map[string]interface{} {
	fields := map[string]interface{}{
		"nicid":                     nicid,
		"logical_interface_ref":     "http://localhost/elements/logical_interface/1",
		"inspect_unspecified_vlans": true,
	}
	if kind != KindInlineL2FW {
		fields["failure_mode"] = "normal"
	}
	return map[string]interface{}{string(kind): fields}
}

func addressedSub(address, network, nicid string, nodeid int, flags []RoleFlag) map[string]interface{} {
	m := map[string]interface{}{
		"address":       address,
		"network_value": network,
		"nicid":         nicid,
		"nodeid":        nodeid,
		"primary_mgt":   false, "backup_mgt": false,
		"primary_heartbeat": false, "backup_heartbeat": false,
		"outgoing": false, "auth_request": false,
	}
	for _, f := range flags {
		m[string(f)] = true
	}
	return m
}

func cvi(address, network, nicid string, authRequest bool) map[string]interface{} {
	return map[string]interface{}{
		string(KindClusterCVI): map[string]interface{}{
			"address":       address,
			"network_value": network,
			"nicid":         nicid,
			"auth_request":  authRequest,
		},
	}
}

func physical(id string, subs []map[string]interface{}, vlans ...map[string]interface{}) map[string]interface{} {
	data := map[string]interface{}{
		"interface_id": id,
		"interfaces":   subs,
	}
	if len(vlans) > 0 {
		data["vlanInterfaces"] = vlans
	}
	return map[string]interface{}{"physical_interface": data}
}

func vlanEntry(dottedID string, subs ...map[string]interface{}) map[string]interface{} {
	v := map[string]interface{}{"interface_id": dottedID}
	if len(subs) > 0 {
		v["interfaces"] = subs
	}
	return v
}

func enginePayload(interfaces ...map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name": "test-engine",
		"link": []map[string]string{
			{"rel": "physical_interface", "href": "http://localhost/engine/physical_interface"},
			{"rel": "tunnel_interface", "href": "http://localhost/engine/tunnel_interface"},
		},
		"physicalInterfaces": interfaces,
	}
}

// singleFWEngine is a single firewall with management on interface 0 and a
// plain data address on interface 1.
func singleFWEngine(tr Transport) *Engine {
	return NewTestEngine(tr, "helsinki-fw", TypeSingleFW, enginePayload(
		physical("0", []map[string]interface{}{
			sni("10.0.0.254", "10.0.0.0/24", "0", PrimaryMgt, Outgoing, AuthRequest),
		}),
		physical("1", []map[string]interface{}{
			sni("10.10.10.1", "10.10.10.0/24", "1"),
		}),
	))
}

// clusterEngine is a two node cluster with a CVI plus NDIs on interface 0
// and a VLAN-addressed interface 1.
func clusterEngine(tr Transport) *Engine {
	return NewTestEngine(tr, "helsinki-cluster", TypeFWCluster, enginePayload(
		physical("0", []map[string]interface{}{
			cvi("10.0.0.1", "10.0.0.0/24", "0", true),
			ndi("10.0.0.2", "10.0.0.0/24", "0", 1, PrimaryMgt, Outgoing, PrimaryHeartbeat),
			ndi("10.0.0.3", "10.0.0.0/24", "0", 2),
		}),
		physical("1", nil, vlanEntry("1.100",
			cvi("10.1.100.1", "10.1.100.0/24", "1.100", false),
			ndi("10.1.100.2", "10.1.100.0/24", "1.100", 1),
			ndi("10.1.100.3", "10.1.100.0/24", "1.100", 2),
		)),
	))
}

func mustModifier(t *testing.T, e *Engine) *InterfaceModifier {
	t.Helper()
	m, err := ModifierByEngine(context.Background(), e)
	if err != nil {
		t.Fatalf("ModifierByEngine: %v", err)
	}
	return m
}

func mustGet(t *testing.T, m *InterfaceModifier, id string) *Interface {
	t.Helper()
	itf, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get(%s): %v", id, err)
	}
	return itf
}

// flagCount counts sub-interfaces across the engine with the flag set.
func flagCount(m *InterfaceModifier, flag RoleFlag) int {
	n := 0
	for _, itf := range m.Interfaces() {
		for _, sub := range itf.AllSubInterfaces() {
			if sub.Flag(flag) {
				n++
			}
		}
	}
	return n
}

func assertEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func assertJSONField(t *testing.T, data []byte, path, want string) {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := fmt.Sprintf("%v", m[path]); got != want {
		t.Fatalf("field %s: got %v, want %v", path, got, want)
	}
}
