package control

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/l2fwd/l2fwd/internal/l2err"
	"github.com/l2fwd/l2fwd/pkg/l2forward"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, l2err.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, l2err.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, l2err.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, l2err.ErrOutOfMemory):
		status = http.StatusInsufficientStorage
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode[T any](r *http.Request) (T, error) {
	var v T
	err := json.NewDecoder(r.Body).Decode(&v)
	return v, err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, map[string]string{"status": "ok"})
}

// addRequest is a batch of entries to insert. add is not transactional:
// the first failing entry aborts the request and every entry inserted
// before it keeps its effect.
type addRequest struct {
	Entries []l2forward.Entry `json:"entries"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	req, err := decode[addRequest](r)
	if err != nil {
		writeError(w, l2err.ErrInvalidArgument)
		return
	}
	if err := s.module.Add(req.Entries); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]string{"status": "ok"})
}

// deleteRequest is a batch of addresses to remove, same non-transactional
// abort-on-first-failure semantics as add.
type deleteRequest struct {
	Addrs []string `json:"addrs"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	req, err := decode[deleteRequest](r)
	if err != nil {
		writeError(w, l2err.ErrInvalidArgument)
		return
	}
	if err := s.module.Delete(req.Addrs); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]string{"status": "ok"})
}

type setDefaultGateRequest struct {
	Gate int32 `json:"gate"`
}

func (s *Server) handleSetDefaultGate(w http.ResponseWriter, r *http.Request) {
	req, err := decode[setDefaultGateRequest](r)
	if err != nil {
		writeError(w, l2err.ErrInvalidArgument)
		return
	}
	s.module.SetDefaultGate(req.Gate)
	writeOK(w, map[string]string{"status": "ok"})
}

// lookupRequest is a batch of addresses to resolve. On the first miss
// the whole request fails and no partial result is returned.
type lookupRequest struct {
	Addrs []string `json:"addrs"`
}

type lookupResponse struct {
	Gates []uint16 `json:"gates"`
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	req, err := decode[lookupRequest](r)
	if err != nil {
		writeError(w, l2err.ErrInvalidArgument)
		return
	}
	gates, err := s.module.Lookup(req.Addrs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, lookupResponse{Gates: gates})
}

// populateRequest synthesizes count sequential addresses starting at
// base, assigning gate i%gate_count to entry i.
type populateRequest struct {
	Base      string `json:"base"`
	Count     int    `json:"count"`
	GateCount int    `json:"gate_count"`
}

func (s *Server) handlePopulate(w http.ResponseWriter, r *http.Request) {
	req, err := decode[populateRequest](r)
	if err != nil {
		writeError(w, l2err.ErrInvalidArgument)
		return
	}
	if err := s.module.Populate(req.Base, req.Count, req.GateCount); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, map[string]string{"status": "ok"})
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	s.module.Flush()
	writeOK(w, map[string]string{"status": "ok"})
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.module.Show())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.module.Stats()
	writeOK(w, map[string]any{
		"size":         stats.Size,
		"bucket":       stats.Bucket,
		"count":        stats.Count,
		"default_gate": s.module.DefaultGate(),
	})
}
