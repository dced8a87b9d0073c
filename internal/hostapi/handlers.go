package hostapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/advanceemu/gba/internal/emu"
	"github.com/advanceemu/gba/internal/loader"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// handleSessionCollection handles POST /api/v1/session (create) and GET
// /api/v1/session (list).
func (s *Server) handleSessionCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.sessions.List())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rom, err := loader.LoadROM(req.ROMPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	bios, err := loader.LoadBIOS(req.BIOSPath)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	override := resolveBackupOverride(req.BackupOverride)
	cart, _, err := loader.LoadCartridge(rom, loader.DefaultTitleDB, override)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	m := emu.New(cart, bios)
	m.Reset()

	session, err := s.sessions.Create(m)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionCreateResponse{SessionID: session.ID, CreatedAt: session.CreatedAt})
}

// handleSessionRoute dispatches /api/v1/session/{id}[/{action}].
func (s *Server) handleSessionRoute(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/session/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	session, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	if action == "" {
		switch r.Method {
		case http.MethodGet:
			s.handleStatus(w, session)
		case http.MethodDelete:
			if err := s.sessions.Destroy(id); err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch action {
	case "registers":
		s.handleRegisters(w, session)
	case "step":
		s.handleStep(w, r, session)
	case "run_to_vblank":
		s.handleRunToVBlank(w, session)
	case "key":
		s.handleKey(w, r, session)
	case "mem":
		s.handleMem(w, r, session)
	case "breakpoint":
		s.handleBreakpoint(w, r, session)
	case "frame":
		s.handleFrame(w, session)
	case "backup":
		s.handleBackup(w, r, session)
	default:
		if strings.HasPrefix(action, "breakpoint/") {
			s.handleBreakpointDelete(w, strings.TrimPrefix(action, "breakpoint/"), session)
			return
		}
		http.NotFound(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, session *Session) {
	v, err := session.Submit(func(m *emu.Machine) (interface{}, error) {
		resp := StatusResponse{PC: m.CPU.Regs.Get(15), Cycles: m.CPU.Cycles}
		if m.LastError != nil {
			resp.Error = m.LastError.Error()
		}
		return resp, nil
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	resp := v.(StatusResponse)
	resp.SessionID = session.ID
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisters(w http.ResponseWriter, session *Session) {
	v, err := session.Submit(func(m *emu.Machine) (interface{}, error) {
		var r [16]uint32
		for i := range r {
			r[i] = m.CPU.Regs.Get(i)
		}
		cpsr := m.CPU.Regs.CPSR()
		return RegistersResponse{
			R:      r,
			CPSR:   CPSRFlags{N: cpsr.N, Z: cpsr.Z, C: cpsr.C, V: cpsr.V, T: cpsr.T},
			Cycles: m.CPU.Cycles,
		}, nil
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, session *Session) {
	var req StepRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	count := req.Count
	if count == 0 {
		count = 1
	}

	v, err := session.Submit(func(m *emu.Machine) (interface{}, error) {
		var stepErr error
		var i uint64
		for ; i < count; i++ {
			if stepErr = m.Step(); stepErr != nil {
				break
			}
		}
		return i, stepErr
	})
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	s.broadcastStatus(session)
	writeJSON(w, http.StatusOK, map[string]interface{}{"steps": v})
}

func (s *Server) handleRunToVBlank(w http.ResponseWriter, session *Session) {
	v, err := session.Submit(func(m *emu.Machine) (interface{}, error) {
		ticks, runErr := m.RunToVBlank()
		return ticks, runErr
	})
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	_, _ = session.Submit(func(m *emu.Machine) (interface{}, error) {
		session.PublishFrame(snapshotFrame(m))
		return nil, nil
	})

	s.broadcastStatus(session)
	writeJSON(w, http.StatusOK, RunToVBlankResponse{Ticks: v.(uint64)})
}

func snapshotFrame(m *emu.Machine) *FrameResponse {
	pixels := make([]uint16, 0, len(m.PPU.Framebuf)*len(m.PPU.Framebuf[0]))
	for _, row := range m.PPU.Framebuf {
		pixels = append(pixels, row[:]...)
	}
	return &FrameResponse{Width: len(m.PPU.Framebuf[0]), Height: len(m.PPU.Framebuf), Pixels: pixels}
}

func (s *Server) handleFrame(w http.ResponseWriter, session *Session) {
	fr := session.LatestFrame()
	if fr == nil {
		writeError(w, http.StatusNotFound, errNoFrameYet)
		return
	}
	writeJSON(w, http.StatusOK, fr)
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request, session *Session) {
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	key, ok := parseKey(req.Key)
	if !ok {
		writeError(w, http.StatusBadRequest, errUnknownKey)
		return
	}
	_, err := session.Submit(func(m *emu.Machine) (interface{}, error) {
		m.SetKey(key, req.Pressed)
		return nil, nil
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMem(w http.ResponseWriter, r *http.Request, session *Session) {
	switch r.Method {
	case http.MethodGet:
		addr, length, err := parseMemQuery(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		v, err := session.Submit(func(m *emu.Machine) (interface{}, error) {
			data := make([]byte, length)
			for i := range data {
				data[i] = byte(m.ReadMem(addr+uint32(i), 1))
			}
			return MemoryResponse{Address: addr, Data: data}, nil
		})
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, v)

	case http.MethodPost:
		var req MemoryWriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		_, err := session.Submit(func(m *emu.Machine) (interface{}, error) {
			m.WriteMem(req.Address, int(req.Width), req.Value)
			return nil, nil
		})
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, session *Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req BreakpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	bp := session.Breakpoints.Add(req.Address, req.Temporary, req.Condition)
	_, _ = session.Submit(func(m *emu.Machine) (interface{}, error) {
		m.AddBreakpoint(req.Address)
		return nil, nil
	})
	writeJSON(w, http.StatusCreated, BreakpointResponse{ID: bp.ID, Address: bp.Address})
}

func (s *Server) handleBreakpointDelete(w http.ResponseWriter, idStr string, session *Session) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var address uint32
	for _, bp := range session.Breakpoints.All() {
		if bp.ID == id {
			address = bp.Address
			break
		}
	}

	if err := session.Breakpoints.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	_, _ = session.Submit(func(m *emu.Machine) (interface{}, error) {
		m.RemoveBreakpoint(address)
		return nil, nil
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request, session *Session) {
	switch r.Method {
	case http.MethodGet:
		v, err := session.Submit(func(m *emu.Machine) (interface{}, error) {
			return m.SaveBackup(), nil
		})
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, BackupResponse{Data: v.([]byte)})

	case http.MethodPost:
		var req BackupLoadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		_, err := session.Submit(func(m *emu.Machine) (interface{}, error) {
			m.LoadBackup(req.Data)
			return nil, nil
		})
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) broadcastStatus(session *Session) {
	v, err := session.Submit(func(m *emu.Machine) (interface{}, error) {
		return map[string]interface{}{"pc": m.CPU.Regs.Get(15), "cycles": m.CPU.Cycles}, nil
	})
	if err != nil {
		return
	}
	s.broadcaster.BroadcastState(session.ID, v.(map[string]interface{}))
}
