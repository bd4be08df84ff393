package api_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ad1rie1/smc-go/internal/testutil"
	"github.com/ad1rie1/smc-go/pkg/smc/api"
	"github.com/ad1rie1/smc-go/pkg/util"
)

func newLoggedInSession(t *testing.T) (*api.Session, *testutil.Server) {
	t.Helper()
	srv := testutil.NewServer()
	t.Cleanup(srv.Close)
	s := api.NewSession(&api.Profile{URL: srv.URL, APIKey: "test-key"})
	require.NoError(t, s.Login(context.Background()))
	return s, srv
}

func TestLoginLoadsEntryPoints(t *testing.T) {
	s, _ := newLoggedInSession(t)
	href, err := s.EntryPoint("single_fw")
	require.NoError(t, err)
	assert.Contains(t, href, "/elements/single_fw")

	_, err = s.EntryPoint("no_such_rel")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestLoginRejected(t *testing.T) {
	srv := testutil.NewServer()
	t.Cleanup(srv.Close)
	srv.RejectLogin = true
	s := api.NewSession(&api.Profile{URL: srv.URL, APIKey: "bad-key"})
	err := s.Login(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrConnection)
}

func TestEntryPointBeforeLogin(t *testing.T) {
	srv := testutil.NewServer()
	t.Cleanup(srv.Close)
	s := api.NewSession(&api.Profile{URL: srv.URL, APIKey: "test-key"})
	_, err := s.EntryPoint("single_fw")
	assert.ErrorIs(t, err, util.ErrNotLoggedIn)
}

func TestGetCarriesEtag(t *testing.T) {
	s, srv := newLoggedInSession(t)
	href := srv.AddElement("single_fw", "fw-1", map[string]interface{}{"name": "fw-1"})

	res, err := s.Get(context.Background(), href)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Etag)

	var decoded map[string]string
	require.NoError(t, res.Decode(&decoded))
	assert.Equal(t, "fw-1", decoded["name"])
}

func TestGetNotFound(t *testing.T) {
	s, srv := newLoggedInSession(t)
	_, err := s.Get(context.Background(), srv.URL+"/6.4/elements/single_fw/missing")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestUpdateEtagFlow(t *testing.T) {
	s, srv := newLoggedInSession(t)
	href := srv.AddElement("single_fw", "fw-1", map[string]interface{}{"name": "fw-1"})

	res, err := s.Get(context.Background(), href)
	require.NoError(t, err)

	_, err = s.Update(context.Background(), href, res.Etag, map[string]interface{}{"name": "fw-1", "comment": "updated"})
	require.NoError(t, err)
	assert.Equal(t, "updated", srv.Element("single_fw", "fw-1")["comment"])

	// stale etag rejected as an update failure
	_, err = s.Update(context.Background(), href, res.Etag, map[string]interface{}{"name": "fw-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrUpdateFailed)

	var apiErr *util.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 412, apiErr.Status)
	assert.Contains(t, apiErr.Message, "etag mismatch")
}

func TestCreateReturnsLocation(t *testing.T) {
	s, _ := newLoggedInSession(t)
	href, err := s.EntryPoint("interface_zone")
	require.NoError(t, err)

	res, err := s.Create(context.Background(), href, map[string]interface{}{"name": "dmz"})
	require.NoError(t, err)
	assert.Contains(t, res.Href, "/elements/interface_zone/dmz")
}

func TestCreateFailureKind(t *testing.T) {
	s, srv := newLoggedInSession(t)
	// posting outside any collection route
	href := srv.AddElement("single_fw", "fw-1", map[string]interface{}{"name": "fw-1"})
	_, err := s.Create(context.Background(), href+"/nope/extra", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrCommandFailed)
}

func TestDelete(t *testing.T) {
	s, srv := newLoggedInSession(t)
	href := srv.AddElement("interface_zone", "dmz", map[string]interface{}{"name": "dmz"})
	require.NoError(t, s.Delete(context.Background(), href))
	assert.Nil(t, srv.Element("interface_zone", "dmz"))

	err := s.Delete(context.Background(), href)
	assert.ErrorIs(t, err, util.ErrDeleteFailed)
}

func TestSearchAndFindByName(t *testing.T) {
	s, srv := newLoggedInSession(t)
	srv.AddElement("interface_zone", "dmz", nil)
	srv.AddElement("interface_zone", "dmz-backup", nil)

	hits, err := s.Search(context.Background(), "interface_zone", "dmz")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hit, err := s.FindByName(context.Background(), "interface_zone", "dmz")
	require.NoError(t, err)
	assert.Equal(t, "dmz", hit.Name)

	_, err = s.FindByName(context.Background(), "interface_zone", "internal")
	assert.ErrorIs(t, err, util.ErrNotFound)
}
