// Package interactive provides the interactive command-line interface
// for tracklane-console.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/tracklane/tracklane-go/pkg/config"
	"github.com/tracklane/tracklane-go/pkg/observer"
	"github.com/tracklane/tracklane-go/pkg/session"
	"github.com/tracklane/tracklane-go/pkg/uiloop"
)

// Console handles interactive mode for tracklane-console.
type Console struct {
	session    *session.Session
	dispatcher *uiloop.Dispatcher
	out        io.Writer

	mu     sync.Mutex
	meters map[string]*Meter
}

// New creates a console for sess. Command output and meter redraws go
// to out.
func New(sess *session.Session, dispatcher *uiloop.Dispatcher, out io.Writer) *Console {
	return &Console{
		session:    sess,
		dispatcher: dispatcher,
		out:        &lockedWriter{w: out},
		meters:     make(map[string]*Meter),
	}
}

// Run reads commands from rl until quit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc, rl *readline.Instance) {
	defer rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if c.Execute(line) {
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns true when the line asks the
// console to exit.
func (c *Console) Execute(line string) (quit bool) {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "list", "ls", "l":
		c.cmdList()

	case "get", "g":
		c.cmdGet(args)

	case "set", "s":
		c.cmdSet(args)

	case "drag":
		c.cmdDrag(args)

	case "reset":
		c.cmdReset(args)

	case "watch", "w":
		c.cmdWatch(args)

	case "unwatch":
		c.cmdUnwatch(args)

	case "flush", "f":
		c.cmdFlush()

	case "clear":
		c.cmdClear()

	case "resetq":
		c.cmdResetQueue()

	case "resize":
		c.cmdResize(args)

	case "node":
		c.cmdNode(args)

	case "play":
		c.cmdPlay(args)

	case "stats":
		c.cmdStats()

	case "quit", "exit", "q":
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

// Reload applies cfg to the session and drops meters whose parameter was
// removed.
func (c *Console) Reload(cfg *config.Config) error {
	result, err := c.session.Apply(cfg)
	if err != nil {
		return err
	}
	c.dispatcher.SetRefresh(cfg.Queue.Refresh)

	c.mu.Lock()
	for name, m := range c.meters {
		if !m.Bound() {
			delete(c.meters, name)
		}
	}
	c.mu.Unlock()

	fmt.Fprintf(c.out, "Reloaded: %d added, %d removed, %d updated\n",
		len(result.Added), len(result.Removed), len(result.Updated))
	for _, name := range result.Added {
		fmt.Fprintf(c.out, "  + %s\n", name)
	}
	for _, name := range result.Removed {
		fmt.Fprintf(c.out, "  - %s\n", name)
	}
	return nil
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Tracklane Console Commands:
  Parameters:
    list                 - List parameters and their values
    get <name>           - Show parameter details
    set <name> <value>   - Set a value (all watchers are notified)
    drag <name> <value>  - Set a value from the parameter's meter (meter is not notified)
    reset <name>         - Restore the default value

  Views:
    watch <name>         - Attach a meter to a parameter
    unwatch <name>       - Detach the meter

  Queue:
    flush                - Deliver pending notifications now
    clear                - Rewind the queue cursor (pending flags stay set)
    resetq               - Discard pending notifications
    resize <n>           - Change the queue capacity
    stats                - Show queue and loop statistics

  Automation:
    node <name> <frame> <value> - Add an automation node
    play <frame>                - Apply every curve at frame

  General:
    help                 - Show this help
    quit                 - Exit console`)
}

// cmdList handles the list command.
func (c *Console) cmdList() {
	names := c.session.Names()
	if len(names) == 0 {
		fmt.Fprintln(c.out, "No parameters")
		return
	}

	for _, name := range names {
		s, err := c.session.Subject(name)
		if err != nil {
			continue
		}
		flags := ""
		if s.IsQueued() {
			flags = warnStyle.Render(" (pending)")
		}
		fmt.Fprintf(c.out, "  %-24s %-10s [%s, %s] observers=%d%s\n",
			name, formatValue(s.Value()), formatValue(s.MinValue()), formatValue(s.MaxValue()),
			s.ObserverCount(), flags)
	}
}

// cmdGet handles the get command.
func (c *Console) cmdGet(args []string) {
	s, ok := c.subjectArg("get <name>", args, 1)
	if !ok {
		return
	}

	kind := "continuous"
	switch {
	case s.IsToggled():
		kind = "toggled"
	case s.IsInteger():
		kind = "integer"
	}

	fmt.Fprintf(c.out, "%s\n", s.Name())
	fmt.Fprintf(c.out, "  Value:    %s\n", formatValue(s.Value()))
	fmt.Fprintf(c.out, "  Previous: %s\n", formatValue(s.PrevValue()))
	fmt.Fprintf(c.out, "  Last:     %s\n", formatValue(s.LastValue()))
	fmt.Fprintf(c.out, "  Default:  %s\n", formatValue(s.DefaultValue()))
	fmt.Fprintf(c.out, "  Range:    [%s, %s] %s\n", formatValue(s.MinValue()), formatValue(s.MaxValue()), kind)
	fmt.Fprintf(c.out, "  Pending:  %t\n", s.IsQueued())
	fmt.Fprintf(c.out, "  Watchers: %d\n", s.ObserverCount())
}

// cmdSet handles the set command.
func (c *Console) cmdSet(args []string) {
	s, ok := c.subjectArg("set <name> <value>", args, 2)
	if !ok {
		return
	}
	v, ok := c.floatArg(args[1])
	if !ok {
		return
	}

	s.SetValue(v, nil)
	fmt.Fprintf(c.out, "%s = %s\n", s.Name(), formatValue(s.Value()))
}

// cmdDrag handles the drag command.
func (c *Console) cmdDrag(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.out, "Usage: drag <name> <value>")
		return
	}
	m := c.meter(args[0])
	if m == nil {
		fmt.Fprintf(c.out, "%s is not watched (use 'watch %s' first)\n", args[0], args[0])
		return
	}
	v, ok := c.floatArg(args[1])
	if !ok {
		return
	}

	if !m.Observer().SetValue(v) {
		fmt.Fprintln(c.out, errorStyle.Render("Meter is unbound"))
		return
	}
	value, _ := m.Observer().Value()
	fmt.Fprintf(c.out, "%s = %s\n", args[0], formatValue(value))
}

// cmdReset handles the reset command.
func (c *Console) cmdReset(args []string) {
	s, ok := c.subjectArg("reset <name>", args, 1)
	if !ok {
		return
	}
	s.ResetValue(nil)
	fmt.Fprintf(c.out, "%s = %s\n", s.Name(), formatValue(s.Value()))
}

// cmdWatch handles the watch command.
func (c *Console) cmdWatch(args []string) {
	s, ok := c.subjectArg("watch <name>", args, 1)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if m, exists := c.meters[args[0]]; exists && m.Bound() {
		fmt.Fprintf(c.out, "%s is already watched\n", args[0])
		return
	}
	m := NewMeter(args[0], s, c.out)
	c.meters[args[0]] = m
	fmt.Fprintln(c.out, m.Render())
}

// cmdUnwatch handles the unwatch command.
func (c *Console) cmdUnwatch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: unwatch <name>")
		return
	}

	c.mu.Lock()
	m, ok := c.meters[args[0]]
	delete(c.meters, args[0])
	c.mu.Unlock()

	if !ok {
		fmt.Fprintf(c.out, "%s is not watched\n", args[0])
		return
	}
	m.Close()
	fmt.Fprintf(c.out, "Stopped watching %s\n", args[0])
}

// cmdFlush handles the flush command.
func (c *Console) cmdFlush() {
	q := c.session.Queue()
	before := q.Stats().Delivered
	c.dispatcher.FlushNow()
	fmt.Fprintf(c.out, "Delivered %d notifications\n", q.Stats().Delivered-before)
}

// cmdClear handles the clear command.
func (c *Console) cmdClear() {
	c.session.Queue().Clear()
	fmt.Fprintln(c.out, "Queue cursor cleared")
	fmt.Fprintln(c.out, warnStyle.Render("Note: parameters that were pending stay pending until reset"))
}

// cmdResetQueue handles the resetq command.
func (c *Console) cmdResetQueue() {
	q := c.session.Queue()
	n := q.Len()
	q.Reset()
	fmt.Fprintf(c.out, "Discarded %d notifications\n", n)
}

// cmdResize handles the resize command.
func (c *Console) cmdResize(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: resize <capacity>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		fmt.Fprintf(c.out, "Invalid capacity: %s\n", args[0])
		return
	}

	q := c.session.Queue()
	q.Resize(n)
	fmt.Fprintf(c.out, "Queue capacity %d (%d pending)\n", q.Cap(), q.Len())
}

// cmdNode handles the node command.
func (c *Console) cmdNode(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(c.out, "Usage: node <name> <frame> <value>")
		return
	}
	cv, err := c.session.Curve(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if cv == nil {
		fmt.Fprintf(c.out, "%s has no automation curve\n", args[0])
		return
	}
	frame, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(c.out, "Invalid frame: %s\n", args[1])
		return
	}
	v, ok := c.floatArg(args[2])
	if !ok {
		return
	}

	cv.AddNode(frame, v)
	fmt.Fprintf(c.out, "%s: %d nodes\n", args[0], len(cv.Nodes()))
}

// cmdPlay handles the play command.
func (c *Console) cmdPlay(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: play <frame>")
		return
	}
	frame, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(c.out, "Invalid frame: %s\n", args[0])
		return
	}

	applied := 0
	for _, name := range c.session.Names() {
		cv, err := c.session.Curve(name)
		if err != nil || cv == nil {
			continue
		}
		s, err := c.session.Subject(name)
		if err != nil {
			continue
		}
		if cv.Apply(s, frame) {
			applied++
		}
	}
	fmt.Fprintf(c.out, "Applied %d curves at frame %d\n", applied, frame)
}

// cmdStats handles the stats command.
func (c *Console) cmdStats() {
	q := c.session.Queue()
	qs := q.Stats()
	ds := c.dispatcher.Stats()

	fmt.Fprintf(c.out, "Session:   %s\n", c.session.ID())
	fmt.Fprintf(c.out, "Queue:     %d/%d pending\n", q.Len(), q.Cap())
	fmt.Fprintf(c.out, "Pushed:    %d\n", qs.Pushed)
	fmt.Fprintf(c.out, "Delivered: %d\n", qs.Delivered)
	fmt.Fprintf(c.out, "Dropped:   %d\n", qs.Dropped)
	fmt.Fprintf(c.out, "Discarded: %d\n", qs.Discarded)
	fmt.Fprintf(c.out, "Flushes:   %d of %d ticks delivered\n", ds.Flushes, ds.Ticks)
	if c.dispatcher.IsRunning() {
		fmt.Fprintf(c.out, "Loop:      every %s\n", c.dispatcher.Interval())
	} else {
		fmt.Fprintln(c.out, "Loop:      stopped")
	}
}

// subjectArg resolves args[0] to a subject, printing usage when fewer
// than n arguments were given.
func (c *Console) subjectArg(usage string, args []string, n int) (*observer.Subject, bool) {
	if len(args) < n {
		fmt.Fprintf(c.out, "Usage: %s\n", usage)
		return nil, false
	}
	s, err := c.session.Subject(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return nil, false
	}
	return s, true
}

func (c *Console) floatArg(arg string) (float64, bool) {
	switch strings.ToLower(arg) {
	case "on", "true":
		return 1, true
	case "off", "false":
		return 0, true
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		fmt.Fprintf(c.out, "Invalid value: %s\n", arg)
		return 0, false
	}
	return v, true
}

func (c *Console) meter(name string) *Meter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meters[name]
}

// lockedWriter serializes writes from the command loop and the update loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
