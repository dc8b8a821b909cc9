package metrics

import (
	"fmt"
	"net/http"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusTracker holds the latest progress of the running operation. It
// responds with 200 once the operation completed and 503 before that.
type StatusTracker struct {
	sync.RWMutex
	current Status
}

type Status struct {
	Operation  string `json:"operation,omitempty"`
	State      string `json:"state"`
	Downloaded uint64 `json:"downloaded"`
	Total      uint64 `json:"total"`
	Path       string `json:"path,omitempty"`
	Done       bool   `json:"done"`
	Error      string `json:"error,omitempty"`
}

func NewStatusTracker(operation string) *StatusTracker {
	return &StatusTracker{current: Status{Operation: operation, State: "starting"}}
}

func (s *StatusTracker) Update(state string, downloaded, total uint64, path string) {
	s.Lock()
	defer s.Unlock()
	s.current.State = state
	s.current.Downloaded = downloaded
	s.current.Total = total
	s.current.Path = path
}

// Finish marks the operation done, recording err when it failed.
func (s *StatusTracker) Finish(err error) {
	s.Lock()
	defer s.Unlock()
	s.current.Done = true
	if err != nil {
		s.current.Error = err.Error()
	}
}

func (s *StatusTracker) Snapshot() Status {
	s.RLock()
	defer s.RUnlock()
	return s.current
}

func (s *StatusTracker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	statusCode, body := s.makeResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	msg, err := json.Marshal(body)
	if err != nil {
		fmt.Fprintf(w, `{"error": "%s"}`, err)
		return
	}
	w.Write(msg)
}

func (s *StatusTracker) makeResponse() (int, Status) {
	current := s.Snapshot()
	if current.Done && current.Error == "" {
		return http.StatusOK, current
	}
	return http.StatusServiceUnavailable, current
}
