// Package api implements the HTTP session against the management server:
// login, entry point discovery and the element CRUD primitives the rest of
// the client is built on.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/ad1rie1/smc-go/pkg/util"
)

// Session is an authenticated connection to the management server. The
// server tracks login state through a session cookie, so a cookie jar is
// mandatory. Create one with NewSession and call Login before use.
type Session struct {
	profile *Profile
	client  *http.Client
	base    string

	mu          sync.RWMutex
	entryPoints map[string]string
	loggedIn    bool
}

// NewSession builds a session from a profile. No network traffic happens
// until Login.
func NewSession(p *Profile) *Session {
	jar, _ := cookiejar.New(nil)
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !p.Verify},
	}
	return &Session{
		profile: p,
		base:    fmt.Sprintf("%s/%s", strings.TrimRight(p.URL, "/"), p.version()),
		client: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   p.timeout(),
		},
	}
}

// ==== login / logout =======================================================

// Login authenticates with the API key and loads the entry point map. The
// entry points name the collection hrefs (single_fw, search, zone, ...) that
// all later requests hang off.
func (s *Session) Login(ctx context.Context) error {
	body := map[string]string{"authenticationkey": s.profile.APIKey}
	res, err := s.do(ctx, http.MethodPost, s.base+"/login", "", body, nil)
	if err != nil {
		return err
	}
	if res.Code != http.StatusOK && res.Code != http.StatusCreated {
		return util.NewConnectionError("POST", s.base+"/login", res.Code,
			orDefault(res.Msg, "authentication failed"))
	}

	res, err = s.do(ctx, http.MethodGet, s.base+"/api", "", nil, nil)
	if err != nil {
		return err
	}
	if res.Code != http.StatusOK {
		return util.NewFetchFailed(s.base+"/api", res.Code, orDefault(res.Msg, "entry point discovery failed"))
	}
	var entry struct {
		EntryPoint []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"entry_point"`
	}
	if err := res.Decode(&entry); err != nil {
		return fmt.Errorf("decoding entry points: %w", err)
	}

	s.mu.Lock()
	s.entryPoints = make(map[string]string, len(entry.EntryPoint))
	for _, ep := range entry.EntryPoint {
		s.entryPoints[ep.Rel] = ep.Href
	}
	s.loggedIn = true
	s.mu.Unlock()

	util.WithField("url", s.profile.URL).Info("logged in to management server")
	return nil
}

// Logout invalidates the server-side session. Errors are logged but not
// returned; the session is unusable afterwards either way.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	wasLoggedIn := s.loggedIn
	s.loggedIn = false
	s.mu.Unlock()
	if !wasLoggedIn {
		return
	}
	if _, err := s.do(ctx, http.MethodPut, s.base+"/logout", "", nil, nil); err != nil {
		util.WithField("error", err).Debug("logout request failed")
	}
}

// EntryPoint resolves a rel name from the entry point map loaded at login.
func (s *Session) EntryPoint(rel string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loggedIn {
		return "", util.ErrNotLoggedIn
	}
	href, ok := s.entryPoints[rel]
	if !ok {
		return "", util.NewNotFoundError("entry point", rel)
	}
	return href, nil
}

// ==== element CRUD =========================================================

// Get fetches an element by href. The returned result carries the Etag
// needed for a later Update.
func (s *Session) Get(ctx context.Context, href string) (*Result, error) {
	res, err := s.do(ctx, http.MethodGet, href, "", nil, nil)
	if err != nil {
		return nil, err
	}
	if res.Code == http.StatusNotFound {
		return nil, util.NewNotFoundError("element", href)
	}
	if res.Code != http.StatusOK {
		return nil, util.NewFetchFailed(href, res.Code, res.Msg)
	}
	return res, nil
}

// Create posts a new element or command payload to a collection href.
// 200, 201 and 202 are all success codes; creates answer 201 with the new
// element href in the Location header, commands may answer 200 or 202.
func (s *Session) Create(ctx context.Context, href string, body interface{}) (*Result, error) {
	res, err := s.do(ctx, http.MethodPost, href, "", body, nil)
	if err != nil {
		return nil, err
	}
	switch res.Code {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return res, nil
	}
	return nil, util.NewCommandFailed("POST", href, res.Code, res.Msg)
}

// Update replaces an element by href. The etag must come from the preceding
// Get; the server rejects the write when the element changed in between.
func (s *Session) Update(ctx context.Context, href, etag string, body interface{}) (*Result, error) {
	res, err := s.do(ctx, http.MethodPut, href, etag, body, nil)
	if err != nil {
		return nil, err
	}
	if res.Code != http.StatusOK {
		return nil, util.NewUpdateFailed(href, res.Code, res.Msg)
	}
	return res, nil
}

// Delete removes an element by href.
func (s *Session) Delete(ctx context.Context, href string) error {
	res, err := s.do(ctx, http.MethodDelete, href, "", nil, nil)
	if err != nil {
		return err
	}
	if res.Code != http.StatusOK && res.Code != http.StatusNoContent {
		return util.NewDeleteFailed(href, res.Code, res.Msg)
	}
	return nil
}

// ==== search ===============================================================

// SearchHit is one row of an element search or collection listing.
type SearchHit struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Href string `json:"href"`
}

// Search lists elements of a given type, optionally filtered by name
// substring. typeof is the collection entry point rel (zone, single_fw, ...).
func (s *Session) Search(ctx context.Context, typeof, filter string) ([]SearchHit, error) {
	href, err := s.EntryPoint(typeof)
	if err != nil {
		return nil, err
	}
	var params url.Values
	if filter != "" {
		params = url.Values{"filter": []string{filter}}
	}
	res, err := s.do(ctx, http.MethodGet, href, "", nil, params)
	if err != nil {
		return nil, err
	}
	if res.Code != http.StatusOK {
		return nil, util.NewFetchFailed(href, res.Code, res.Msg)
	}
	var hits []SearchHit
	if err := res.Decode(&hits); err != nil {
		return nil, fmt.Errorf("decoding search result: %w", err)
	}
	return hits, nil
}

// FindByName resolves an element of the given type by exact name.
func (s *Session) FindByName(ctx context.Context, typeof, name string) (*SearchHit, error) {
	hits, err := s.Search(ctx, typeof, name)
	if err != nil {
		return nil, err
	}
	for i := range hits {
		if hits[i].Name == name {
			return &hits[i], nil
		}
	}
	return nil, util.NewNotFoundError(typeof, name)
}

// ==== request plumbing =====================================================

func (s *Session) do(ctx context.Context, method, href, etag string, body interface{}, params url.Values) (*Result, error) {
	target := href
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target = target + sep + params.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if etag != "" {
		req.Header.Set("Etag", etag)
	}

	util.WithFields(map[string]interface{}{
		"method": method,
		"href":   href,
	}).Debug("api request")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, util.NewConnectionError(method, href, 0, err.Error())
	}
	defer resp.Body.Close()

	return newResult(resp), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
