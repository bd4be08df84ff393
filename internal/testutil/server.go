// Package testutil runs an in-process mock of the management server REST
// API for session-level tests: login, entry point discovery, element
// search, fetch with etags and create/update/delete.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

const apiVersion = "6.4"

// RecordedRequest captures one write against the mock server.
type RecordedRequest struct {
	Method string
	Path   string
	Etag   string
	Body   map[string]interface{}
}

type element struct {
	typeof  string
	name    string
	payload map[string]interface{}
	version int
}

// Server is the mock management server. Elements are stored in memory and
// writes are recorded for assertions.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	elements map[string]*element // key typeof/name
	nextID   int

	Creates []RecordedRequest
	Updates []RecordedRequest
	Deletes []string

	// RejectLogin makes login answer 401.
	RejectLogin bool
}

// NewServer starts the mock server. Callers own shutdown via Close.
func NewServer() *Server {
	s := &Server{elements: make(map[string]*element)}

	r := mux.NewRouter()
	v := r.PathPrefix("/" + apiVersion).Subrouter()
	v.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	v.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPut)
	v.HandleFunc("/api", s.handleEntryPoints).Methods(http.MethodGet)
	v.HandleFunc("/elements/{type}", s.handleList).Methods(http.MethodGet)
	v.HandleFunc("/elements/{type}", s.handleCreate).Methods(http.MethodPost)
	v.HandleFunc("/elements/{type}/{name}", s.handleGet).Methods(http.MethodGet)
	v.HandleFunc("/elements/{type}/{name}", s.handleUpdate).Methods(http.MethodPut)
	v.HandleFunc("/elements/{type}/{name}", s.handleDelete).Methods(http.MethodDelete)

	s.Server = httptest.NewServer(r)
	return s
}

// AddElement seeds an element. The payload may be nil for elements only
// resolved by search.
func (s *Server) AddElement(typeof, name string, payload map[string]interface{}) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[typeof+"/"+name] = &element{typeof: typeof, name: name, payload: payload, version: 1}
	return s.elementHref(typeof, name)
}

// Element returns the stored payload for an element, nil when absent.
func (s *Server) Element(typeof, name string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.elements[typeof+"/"+name]; ok {
		return el.payload
	}
	return nil
}

func (s *Server) elementHref(typeof, name string) string {
	return fmt.Sprintf("%s/%s/elements/%s/%s", s.URL, apiVersion, typeof, name)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.RejectLogin {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad authentication key"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "mock-session"})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEntryPoints(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	types := map[string]bool{
		"single_fw": true, "fw_cluster": true, "interface_zone": true,
		"logical_interface": true, "tcp_service": true, "udp_service": true,
	}
	for _, el := range s.elements {
		types[el.typeof] = true
	}
	s.mu.Unlock()

	var entries []map[string]string
	for typeof := range types {
		entries = append(entries, map[string]string{
			"rel":  typeof,
			"href": fmt.Sprintf("%s/%s/elements/%s", s.URL, apiVersion, typeof),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entry_point": entries})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	typeof := mux.Vars(r)["type"]
	filter := r.URL.Query().Get("filter")

	s.mu.Lock()
	var hits []map[string]string
	for _, el := range s.elements {
		if el.typeof != typeof {
			continue
		}
		if filter != "" && !strings.Contains(el.name, filter) {
			continue
		}
		hits = append(hits, map[string]string{
			"name": el.name,
			"type": el.typeof,
			"href": s.elementHref(el.typeof, el.name),
		})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{"result": hits})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	typeof := mux.Vars(r)["type"]
	body := decodeBody(r)
	s.mu.Lock()
	name, _ := body["name"].(string)
	if name == "" {
		s.nextID++
		name = fmt.Sprintf("%s-%d", typeof, s.nextID)
	}
	s.elements[typeof+"/"+name] = &element{typeof: typeof, name: name, payload: body, version: 1}
	s.Creates = append(s.Creates, RecordedRequest{Method: "POST", Path: r.URL.Path, Body: body})
	href := s.elementHref(typeof, name)
	s.mu.Unlock()

	w.Header().Set("Location", href)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.mu.Lock()
	el, ok := s.elements[vars["type"]+"/"+vars["name"]]
	s.mu.Unlock()
	if !ok || el.payload == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "element not found"})
		return
	}
	w.Header().Set("ETag", fmt.Sprintf("%q", etagFor(el)))
	writeJSON(w, http.StatusOK, el.payload)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	body := decodeBody(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elements[vars["type"]+"/"+vars["name"]]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "element not found"})
		return
	}
	if etag := r.Header.Get("Etag"); etag != etagFor(el) {
		writeJSON(w, http.StatusPreconditionFailed, map[string]string{"message": "etag mismatch, element was modified"})
		return
	}
	el.payload = body
	el.version++
	s.Updates = append(s.Updates, RecordedRequest{
		Method: "PUT", Path: r.URL.Path, Etag: r.Header.Get("Etag"), Body: body,
	})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key := vars["type"] + "/" + vars["name"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elements[key]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "element not found"})
		return
	}
	delete(s.elements, key)
	s.Deletes = append(s.Deletes, r.URL.Path)
	w.WriteHeader(http.StatusNoContent)
}

func etagFor(el *element) string {
	return fmt.Sprintf("%s-v%d", el.name, el.version)
}

func decodeBody(r *http.Request) map[string]interface{} {
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	return body
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
