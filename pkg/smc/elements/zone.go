package elements

import (
	"context"
	"errors"

	"github.com/ad1rie1/smc-go/pkg/util"
)

// Element type names for interface references.
const (
	TypeZone             = "interface_zone"
	TypeLogicalInterface = "logical_interface"
)

// DefaultLogicalInterface is the logical interface assigned to inline and
// capture interfaces when the caller names none.
const DefaultLogicalInterface = "default_eth"

// ZoneHelper resolves a zone reference to an href. The argument may be an
// href already (returned unchanged), or a zone name which is looked up and
// created on demand when it does not exist yet.
func ZoneHelper(ctx context.Context, tr Transport, nameOrHref string) (string, error) {
	return findOrCreate(ctx, tr, TypeZone, nameOrHref)
}

// LogicalInterfaceHelper resolves a logical interface reference to an href,
// creating the element on demand. An empty name falls back to default_eth.
func LogicalInterfaceHelper(ctx context.Context, tr Transport, nameOrHref string) (string, error) {
	if nameOrHref == "" {
		nameOrHref = DefaultLogicalInterface
	}
	return findOrCreate(ctx, tr, TypeLogicalInterface, nameOrHref)
}

func findOrCreate(ctx context.Context, tr Transport, typeof, nameOrHref string) (string, error) {
	if nameOrHref == "" {
		return "", nil
	}
	if isHref(nameOrHref) {
		return nameOrHref, nil
	}
	hit, err := tr.FindByName(ctx, typeof, nameOrHref)
	if err == nil {
		return hit.Href, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return "", err
	}
	el, err := createElement(ctx, tr, typeof, nameOrHref, map[string]interface{}{"name": nameOrHref})
	if err != nil {
		return "", err
	}
	return el.Href, nil
}
