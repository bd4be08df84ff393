// Package engine implements engine elements and their interface
// configuration: the interface hierarchy, the sub-interface variants, the
// interface builder and the role option sweeps.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ad1rie1/smc-go/pkg/smc/api"
	"github.com/ad1rie1/smc-go/pkg/util"
)

// Engine element type names. The type decides clustering behavior and which
// role operations apply.
const (
	TypeSingleFW     = "single_fw"
	TypeFWCluster    = "fw_cluster"
	TypeVirtualFW    = "virtual_fw"
	TypeSingleLayer2 = "single_layer2"
	TypeSingleIPS    = "single_ips"
	TypeMasterEngine = "master_engine"
)

// Transport is the slice of the api session that engine operations need.
// *api.Session satisfies it; tests substitute a recorder.
type Transport interface {
	Get(ctx context.Context, href string) (*api.Result, error)
	Create(ctx context.Context, href string, body interface{}) (*api.Result, error)
	Update(ctx context.Context, href, etag string, body interface{}) (*api.Result, error)
	Delete(ctx context.Context, href string) error
	EntryPoint(rel string) (string, error)
	FindByName(ctx context.Context, typeof, name string) (*api.SearchHit, error)
}

// Engine is a firewall, IPS or layer 2 engine element. The full server-side
// payload is cached after the first fetch; every mutation that goes through
// the server invalidates the cache so the next read refetches.
type Engine struct {
	tr     Transport
	name   string
	typeof string
	href   string
	etag   string

	// raw is the engine payload keyed by top-level field. Interface
	// operations only interpret physicalInterfaces and link; everything
	// else rides along untouched through updates.
	raw map[string]json.RawMessage
}

// LoadEngine resolves an engine element by type and name. The payload is
// fetched lazily on first use.
func LoadEngine(ctx context.Context, tr Transport, typeof, name string) (*Engine, error) {
	hit, err := tr.FindByName(ctx, typeof, name)
	if err != nil {
		return nil, err
	}
	return &Engine{tr: tr, name: hit.Name, typeof: hit.Type, href: hit.Href}, nil
}

// NewTestEngine builds an engine around an in-memory payload, bypassing the
// fetch. Used by tests to exercise interface operations without a server.
func NewTestEngine(tr Transport, name, typeof string, payload map[string]interface{}) *Engine {
	raw := make(map[string]json.RawMessage, len(payload))
	for k, v := range payload {
		b, err := json.Marshal(v)
		if err != nil {
			panic(fmt.Sprintf("bad test payload field %s: %v", k, err))
		}
		raw[k] = b
	}
	return &Engine{
		tr:     tr,
		name:   name,
		typeof: typeof,
		href:   "http://localhost/elements/" + typeof + "/" + name,
		etag:   "test-etag",
		raw:    raw,
	}
}

func (e *Engine) Name() string   { return e.name }
func (e *Engine) Typeof() string { return e.typeof }
func (e *Engine) Href() string   { return e.href }

// IsCluster reports whether the engine type hosts multiple nodes behind
// cluster virtual addresses.
func (e *Engine) IsCluster() bool {
	return strings.Contains(e.typeof, "cluster")
}

// supportsAuthRequest reports whether the engine type participates in
// authentication request routing. Master engines and layer 2 types do not.
func (e *Engine) supportsAuthRequest() bool {
	t := e.typeof
	return !strings.Contains(t, "master") && !strings.Contains(t, "layer2") && !strings.Contains(t, "ips")
}

// Invalidate drops the cached payload. The next access refetches from the
// server.
func (e *Engine) Invalidate() {
	e.raw = nil
	e.etag = ""
}

// Fetch loads the engine payload and etag from the server.
func (e *Engine) Fetch(ctx context.Context) error {
	res, err := e.tr.Get(ctx, e.href)
	if err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := res.Decode(&raw); err != nil {
		return fmt.Errorf("decoding engine %s: %w", e.name, err)
	}
	e.raw = raw
	e.etag = res.Etag
	if name, ok := raw["name"]; ok {
		_ = json.Unmarshal(name, &e.name)
	}
	return nil
}

// payload returns the cached engine payload, fetching it when absent.
func (e *Engine) payload(ctx context.Context) (map[string]json.RawMessage, error) {
	if e.raw == nil {
		if err := e.Fetch(ctx); err != nil {
			return nil, err
		}
	}
	return e.raw, nil
}

// Link resolves a rel from the engine's link list, e.g. the
// physical_interface collection used when adding interfaces.
func (e *Engine) Link(ctx context.Context, rel string) (string, error) {
	raw, err := e.payload(ctx)
	if err != nil {
		return "", err
	}
	linkData, ok := raw["link"]
	if !ok {
		return "", util.NewNotFoundError("engine link", rel)
	}
	var links []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	}
	if err := json.Unmarshal(linkData, &links); err != nil {
		return "", fmt.Errorf("decoding engine links: %w", err)
	}
	for _, l := range links {
		if l.Rel == rel {
			return l.Href, nil
		}
	}
	return "", util.NewNotFoundError("engine link", rel)
}

// Update writes the cached payload back to the server with the etag from
// the fetch, then invalidates the cache. Fails when no payload is loaded.
func (e *Engine) Update(ctx context.Context) error {
	if e.raw == nil {
		return fmt.Errorf("engine %s: no payload loaded, nothing to update", e.name)
	}
	body := make(map[string]json.RawMessage, len(e.raw))
	for k, v := range e.raw {
		if k == "link" {
			continue
		}
		body[k] = v
	}
	_, err := e.tr.Update(ctx, e.href, e.etag, body)
	e.Invalidate()
	if err != nil {
		return err
	}
	util.WithEngine(e.name).Debug("engine updated")
	return nil
}

// AddInterface posts a new interface payload to the engine's collection for
// the given interface type, then invalidates the cache.
func (e *Engine) AddInterface(ctx context.Context, typeof string, data *InterfaceData) error {
	href, err := e.Link(ctx, typeof)
	if err != nil {
		return err
	}
	_, err = e.tr.Create(ctx, href, data)
	e.Invalidate()
	if err != nil {
		return err
	}
	util.WithEngine(e.name).WithField("interface_id", data.InterfaceID).Debug("interface created")
	return nil
}

// setInterfaces replaces the physicalInterfaces list in the cached payload.
func (e *Engine) setInterfaces(ifaces []*Interface) error {
	typed := make([]*TypedInterface, 0, len(ifaces))
	for _, itf := range ifaces {
		typed = append(typed, &TypedInterface{Typeof: itf.typeof, Data: itf.data})
	}
	b, err := json.Marshal(typed)
	if err != nil {
		return err
	}
	if e.raw == nil {
		e.raw = make(map[string]json.RawMessage)
	}
	e.raw["physicalInterfaces"] = b
	return nil
}
