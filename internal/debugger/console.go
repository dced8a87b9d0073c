package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/advanceemu/gba/internal/emu"
)

// Console is a plain tcell/tview text console: a register/memory/log
// view and a command line. It is deliberately NOT the teacher's
// multi-panel TUI with disassembly colorization — no source view, no
// live disassembly, no function-key bindings — just enough surface to
// exercise Step/Run/breakpoint/watchpoint inspection from a terminal.
// Grounded on the teacher's debugger.TUI for the tview wiring and on
// debugger.Debugger/commands.go for the command set, both collapsed
// into one view since there's no assembly source to show alongside it.
type Console struct {
	Machine     *emu.Machine
	Breakpoints *BreakpointSet
	Watchpoints *WatchpointSet
	Symbols     map[string]uint32

	app     *tview.Application
	log     *tview.TextView
	input   *tview.InputField
	running bool
}

// NewConsole builds a Console over machine, with fresh breakpoint and
// watchpoint tables.
func NewConsole(m *emu.Machine) *Console {
	c := &Console{
		Machine:     m,
		Breakpoints: NewBreakpointSet(),
		Watchpoints: NewWatchpointSet(),
	}

	c.log = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	c.log.SetBorder(true).SetTitle(" GBA Debugger ")

	c.input = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	c.input.SetBorder(true).SetTitle(" Command ")
	c.input.SetDoneFunc(c.handleInput)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.log, 0, 1, false).
		AddItem(c.input, 3, 0, true)

	c.app = tview.NewApplication().SetRoot(layout, true).SetFocus(c.input)

	c.printBanner()
	return c
}

func (c *Console) printBanner() {
	fmt.Fprintln(c.log, "[yellow]GBA emulator debug console. Type 'help' for commands.[white]")
	c.printRegisters()
}

// Run starts the tview event loop; it blocks until 'quit' or ctrl-C.
func (c *Console) Run() error {
	return c.app.Run()
}

func (c *Console) handleInput(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	line := strings.TrimSpace(c.input.GetText())
	c.input.SetText("")
	if line == "" {
		return
	}
	if err := c.Execute(line); err != nil {
		fmt.Fprintf(c.log, "[red]error:[white] %v\n", err)
	}
	c.log.ScrollToEnd()
}

// Execute runs a single console command line. Exported so a Console can
// also be driven programmatically (tests, a scripted session) without
// going through the tview event loop.
func (c *Console) Execute(line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help", "h":
		c.printHelp()
	case "step", "s":
		return c.cmdStep(args)
	case "continue", "c":
		return c.cmdContinue(args)
	case "regs", "r":
		c.printRegisters()
	case "mem", "m":
		return c.cmdMem(args)
	case "break", "b":
		return c.cmdBreak(args)
	case "delete", "d":
		return c.cmdDelete(args)
	case "watch", "w":
		return c.cmdWatch(args)
	case "quit", "q":
		c.app.Stop()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (c *Console) printHelp() {
	fmt.Fprint(c.log, `commands:
  step [n]            execute n instructions (default 1)
  continue            run until a breakpoint or watchpoint hits, or a step fails
  regs                dump CPU registers
  mem <addr> [len]    dump memory starting at addr
  break <addr> [cond] set a breakpoint, optionally conditional
  delete <id>         delete a breakpoint by ID
  watch <reg|addr>    watch a register name or memory address for change
  quit                exit the console
`)
}

func (c *Console) env() Environment {
	return NewMachineEnvironment(c.Machine, c.Symbols)
}

func (c *Console) cmdStep(args []string) error {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		n = v
	}
	for i := 0; i < n; i++ {
		if err := c.Machine.Step(); err != nil {
			fmt.Fprintf(c.log, "stopped: %v\n", err)
			break
		}
		if wp, hit := c.Watchpoints.Check(c.Machine); hit {
			fmt.Fprintf(c.log, "[yellow]watchpoint %d hit: %s is now 0x%08X[white]\n", wp.ID, wp.Expression, wp.LastValue)
			break
		}
	}
	c.printRegisters()
	return nil
}

func (c *Console) cmdContinue(args []string) error {
	c.running = true
	defer func() { c.running = false }()
	for c.running {
		if err := c.Machine.Step(); err != nil {
			fmt.Fprintf(c.log, "stopped: %v\n", err)
			break
		}
		if hit, stop := c.Breakpoints.ProcessHit(c.Machine.CPU.Regs.Get(15), c.env()); stop {
			fmt.Fprintf(c.log, "[yellow]breakpoint %d hit at 0x%08X[white]\n", hit.ID, hit.Address)
			break
		}
		if wp, hit := c.Watchpoints.Check(c.Machine); hit {
			fmt.Fprintf(c.log, "[yellow]watchpoint %d hit: %s is now 0x%08X[white]\n", wp.ID, wp.Expression, wp.LastValue)
			break
		}
	}
	c.printRegisters()
	return nil
}

func (c *Console) printRegisters() {
	regs := c.Machine.CPU.Regs
	var lines []string
	for row := 0; row < 4; row++ {
		var cols []string
		for col := 0; col < 4; col++ {
			n := row*4 + col
			cols = append(cols, fmt.Sprintf("r%-2d: 0x%08X", n, regs.Get(n)))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}
	cpsr := regs.CPSR()
	flags := flagChar(cpsr.N, "N") + flagChar(cpsr.Z, "Z") + flagChar(cpsr.C, "C") + flagChar(cpsr.V, "V")
	lines = append(lines, fmt.Sprintf("cpsr: 0x%08X  flags: %s  mode: %d", cpsr.ToUint32(), flags, cpsr.Mode))
	fmt.Fprintln(c.log, strings.Join(lines, "\n"))
}

func flagChar(set bool, ch string) string {
	if set {
		return strings.ToUpper(ch)
	}
	return strings.ToLower(ch)
}

func (c *Console) cmdMem(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: mem <addr> [len]")
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
	if err != nil {
		return fmt.Errorf("invalid address %q", args[0])
	}
	length := 64
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			length = n
		}
	}

	for off := 0; off < length; off += 16 {
		var cells []string
		for i := 0; i < 16 && off+i < length; i++ {
			cells = append(cells, fmt.Sprintf("%02X", c.Machine.ReadMem(uint32(addr)+uint32(off+i), 1)))
		}
		fmt.Fprintf(c.log, "0x%08X: %s\n", uint32(addr)+uint32(off), strings.Join(cells, " "))
	}
	return nil
}

func (c *Console) cmdBreak(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: break <addr> [condition...]")
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(args[0], "0x"), 16, 32)
	if err != nil {
		return fmt.Errorf("invalid address %q", args[0])
	}
	condition := strings.Join(args[1:], " ")
	bp := c.Breakpoints.Add(uint32(addr), false, condition)
	fmt.Fprintf(c.log, "breakpoint %d set at 0x%08X\n", bp.ID, bp.Address)
	return nil
}

func (c *Console) cmdDelete(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: delete <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}
	return c.Breakpoints.Delete(id)
}

func (c *Console) cmdWatch(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: watch <register|addr>")
	}
	target := args[0]

	if _, ok := c.env().Register(target); ok {
		var regNum int
		switch target {
		case "pc", "r15":
			regNum = 15
		case "sp", "r13":
			regNum = 13
		case "lr", "r14":
			regNum = 14
		default:
			fmt.Sscanf(target, "r%d", &regNum)
		}
		wp := c.Watchpoints.Add(WatchWrite, target, 0, true, regNum)
		if err := c.Watchpoints.Initialize(wp.ID, c.Machine); err != nil {
			return err
		}
		fmt.Fprintf(c.log, "watchpoint %d set on register %s\n", wp.ID, target)
		return nil
	}

	addr, err := strconv.ParseUint(strings.TrimPrefix(target, "0x"), 16, 32)
	if err != nil {
		return fmt.Errorf("invalid register or address %q", target)
	}
	wp := c.Watchpoints.Add(WatchWrite, target, uint32(addr), false, 0)
	if err := c.Watchpoints.Initialize(wp.ID, c.Machine); err != nil {
		return err
	}
	fmt.Fprintf(c.log, "watchpoint %d set on 0x%08X\n", wp.ID, wp.Address)
	return nil
}
