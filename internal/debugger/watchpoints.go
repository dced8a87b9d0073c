package debugger

import (
	"fmt"
	"sync"

	"github.com/advanceemu/gba/internal/emu"
)

// WatchType selects what a watchpoint monitors. Like the teacher's
// WatchpointManager, every type currently triggers on value change only
// (no true read/write tracking, which would need instrumenting the bus
// itself); the field is kept for the expanded tracking a later revision
// could add.
type WatchType int

const (
	WatchWrite WatchType = iota
	WatchRead
	WatchReadWrite
)

// Watchpoint monitors a register or a memory address for value changes.
type Watchpoint struct {
	ID         int
	Type       WatchType
	Expression string
	Address    uint32
	IsRegister bool
	Register   int
	Enabled    bool
	LastValue  uint32
	HitCount   int
}

// WatchpointSet manages every watchpoint for one machine.
type WatchpointSet struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointSet returns an empty WatchpointSet.
func NewWatchpointSet() *WatchpointSet {
	return &WatchpointSet{watchpoints: make(map[int]*Watchpoint), nextID: 1}
}

// Add registers a new watchpoint.
func (ws *WatchpointSet) Add(wpType WatchType, expression string, address uint32, isRegister bool, register int) *Watchpoint {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	wp := &Watchpoint{
		ID:         ws.nextID,
		Type:       wpType,
		Expression: expression,
		Address:    address,
		IsRegister: isRegister,
		Register:   register,
		Enabled:    true,
	}
	ws.watchpoints[wp.ID] = wp
	ws.nextID++
	return wp
}

// Delete removes a watchpoint by ID.
func (ws *WatchpointSet) Delete(id int) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if _, exists := ws.watchpoints[id]; !exists {
		return fmt.Errorf("debugger: watchpoint %d not found", id)
	}
	delete(ws.watchpoints, id)
	return nil
}

// SetEnabled toggles a watchpoint's active state.
func (ws *WatchpointSet) SetEnabled(id int, enabled bool) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	wp, exists := ws.watchpoints[id]
	if !exists {
		return fmt.Errorf("debugger: watchpoint %d not found", id)
	}
	wp.Enabled = enabled
	return nil
}

// Get returns a watchpoint by ID, or nil.
func (ws *WatchpointSet) Get(id int) *Watchpoint {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.watchpoints[id]
}

// All returns a snapshot of every watchpoint.
func (ws *WatchpointSet) All() []*Watchpoint {
	ws.mu.RLock()
	defer ws.mu.RUnlock()

	out := make([]*Watchpoint, 0, len(ws.watchpoints))
	for _, wp := range ws.watchpoints {
		out = append(out, wp)
	}
	return out
}

// Clear removes every watchpoint.
func (ws *WatchpointSet) Clear() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints set.
func (ws *WatchpointSet) Count() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.watchpoints)
}

// readCurrent fetches the live value a watchpoint monitors.
func readCurrent(wp *Watchpoint, m *emu.Machine) uint32 {
	if wp.IsRegister {
		return m.CPU.Regs.Get(wp.Register)
	}
	return m.ReadMem(wp.Address, 4)
}

// Check scans every enabled watchpoint for a changed value and returns
// the first one found (§9's breakpoint/watchpoint design is a linear
// scan; the table is small enough that this is never a bottleneck next
// to full instruction execution).
func (ws *WatchpointSet) Check(m *emu.Machine) (*Watchpoint, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for _, wp := range ws.watchpoints {
		if !wp.Enabled {
			continue
		}
		current := readCurrent(wp, m)
		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			return wp, true
		}
	}
	return nil, false
}

// Initialize seeds a watchpoint's LastValue from the machine's current
// state, so the first Check after arming doesn't report a spurious hit.
func (ws *WatchpointSet) Initialize(id int, m *emu.Machine) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	wp, exists := ws.watchpoints[id]
	if !exists {
		return fmt.Errorf("debugger: watchpoint %d not found", id)
	}
	wp.LastValue = readCurrent(wp, m)
	return nil
}
