// Package elements provides typed access to the configuration elements
// referenced from engine interfaces: services, zones and logical interfaces.
package elements

import (
	"context"
	"errors"
	"strings"

	"github.com/ad1rie1/smc-go/pkg/smc/api"
	"github.com/ad1rie1/smc-go/pkg/util"
)

// Transport is the slice of the api session that element operations need.
// *api.Session satisfies it; tests substitute a recorder.
type Transport interface {
	Get(ctx context.Context, href string) (*api.Result, error)
	Create(ctx context.Context, href string, body interface{}) (*api.Result, error)
	Delete(ctx context.Context, href string) error
	EntryPoint(rel string) (string, error)
	FindByName(ctx context.Context, typeof, name string) (*api.SearchHit, error)
}

// Element is the resolved identity of a configuration element. Engine
// payloads reference elements by href only; Name and Typeof are kept for
// display.
type Element struct {
	Name   string
	Typeof string
	Href   string
}

// Load resolves an element of the given type by exact name.
func Load(ctx context.Context, tr Transport, typeof, name string) (*Element, error) {
	hit, err := tr.FindByName(ctx, typeof, name)
	if err != nil {
		return nil, err
	}
	return &Element{Name: hit.Name, Typeof: hit.Type, Href: hit.Href}, nil
}

// Delete removes the element from the management server.
func (e *Element) Delete(ctx context.Context, tr Transport) error {
	return tr.Delete(ctx, e.Href)
}

// createElement posts a create body to the collection entry point for
// typeof and returns the created element's identity.
func createElement(ctx context.Context, tr Transport, typeof, name string, body map[string]interface{}) (*Element, error) {
	href, err := tr.EntryPoint(typeof)
	if err != nil {
		return nil, err
	}
	res, err := tr.Create(ctx, href, body)
	if err != nil {
		var apiErr *util.APIError
		if errors.As(err, &apiErr) {
			return nil, util.NewCreateFailed(href, apiErr.Status, apiErr.Message)
		}
		return nil, err
	}
	util.WithElement(typeof, name).Debug("created element")
	return &Element{Name: name, Typeof: typeof, Href: res.Href}, nil
}

// isHref reports whether s is already an element href rather than a name.
func isHref(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
