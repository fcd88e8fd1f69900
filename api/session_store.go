package api

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/armsim/armsim/service"
)

// SessionSnapshot is a portable, on-disk description of a debugger session:
// breakpoints, watchpoints, and the register state at the time of capture.
// It lets a session started from the TUI be resumed through the HTTP API,
// or vice versa, independent of the process that created it.
type SessionSnapshot struct {
	SavedAt     time.Time                `yaml:"saved_at"`
	EntryPoint  uint32                   `yaml:"entry_point"`
	Registers   service.RegisterState    `yaml:"registers"`
	Breakpoints []service.BreakpointInfo `yaml:"breakpoints"`
	Watchpoints []service.WatchpointInfo `yaml:"watchpoints"`
}

// BuildSnapshot captures the current state of a debugger session.
func BuildSnapshot(svc *service.DebuggerService, entryPoint uint32) *SessionSnapshot {
	return &SessionSnapshot{
		SavedAt:     time.Now(),
		EntryPoint:  entryPoint,
		Registers:   svc.GetRegisterState(),
		Breakpoints: svc.GetBreakpoints(),
		Watchpoints: svc.GetWatchpoints(),
	}
}

// SaveSessionYAML writes a session snapshot to path in YAML form.
func SaveSessionYAML(path string, snap *SessionSnapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session snapshot %s: %w", path, err)
	}
	return nil
}

// LoadSessionYAML reads a session snapshot previously written by SaveSessionYAML.
func LoadSessionYAML(path string) (*SessionSnapshot, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-provided session file path
	if err != nil {
		return nil, fmt.Errorf("read session snapshot %s: %w", path, err)
	}
	var snap SessionSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}
	return &snap, nil
}

// ApplySnapshot re-establishes breakpoints and watchpoints from a snapshot
// onto a freshly loaded debugger session. It does not restore register
// values: a resumed session replays execution from the entry point rather
// than splicing in raw register state, so that memory and register traces
// stay consistent with one another.
func ApplySnapshot(svc *service.DebuggerService, snap *SessionSnapshot) error {
	for _, bp := range snap.Breakpoints {
		if !bp.Enabled {
			continue
		}
		if err := svc.AddBreakpoint(bp.Address); err != nil {
			return fmt.Errorf("restore breakpoint at 0x%08X: %w", bp.Address, err)
		}
	}
	for _, wp := range snap.Watchpoints {
		if !wp.Enabled {
			continue
		}
		if err := svc.AddWatchpoint(wp.Address, wp.Type); err != nil {
			return fmt.Errorf("restore watchpoint at 0x%08X: %w", wp.Address, err)
		}
	}
	return nil
}

// handleExportSession handles GET /api/v1/session/{id}/export, returning the
// session's breakpoints, watchpoints and register state as a YAML document.
// Unlike SaveSessionYAML, this writes to the response body rather than a
// caller-supplied path, since the path would otherwise come from an
// untrusted HTTP client.
func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	snap := BuildSnapshot(session.Service, session.Service.GetVM().EntryPoint)
	data, err := yaml.Marshal(snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("marshal session: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImportSession handles POST /api/v1/session/{id}/import, applying a
// previously exported YAML session snapshot's breakpoints and watchpoints
// onto an already-loaded session.
func (s *Server) handleImportSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var snap SessionSnapshot
	decoder := yaml.NewDecoder(http.MaxBytesReader(w, r.Body, 1024*1024))
	if err := decoder.Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid session snapshot: %v", err))
		return
	}

	if err := ApplySnapshot(session.Service, &snap); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "imported"})
}
