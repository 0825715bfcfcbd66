package core

import (
	"strings"

	"gpiotwin/protocol"
)

// ToolHandler handles one command and returns its single response line.
type ToolHandler func(params string) string

// Tool is a named command handled by the dispatcher.
type Tool struct {
	Name    string
	Handler ToolHandler
}

// ToolRegistry is the ordered tool table. It is built before the main
// loop and read-only afterwards. Lookup is a linear, case-sensitive scan;
// the first entry with a matching name wins.
type ToolRegistry struct {
	tools []Tool
}

// NewToolRegistry creates a registry holding tools in order.
func NewToolRegistry(tools ...Tool) *ToolRegistry {
	r := &ToolRegistry{}
	for _, t := range tools {
		r.Register(t.Name, t.Handler)
	}
	return r
}

// Register appends a tool. Names are clipped to protocol.ToolNameMax.
func (r *ToolRegistry) Register(name string, handler ToolHandler) {
	if len(name) > protocol.ToolNameMax {
		name = name[:protocol.ToolNameMax]
	}
	r.tools = append(r.tools, Tool{Name: name, Handler: handler})
}

// Lookup returns the first tool called name.
func (r *ToolRegistry) Lookup(name string) (Tool, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

// Names returns the tool names in registration order.
func (r *ToolRegistry) Names() []string {
	out := make([]string, len(r.tools))
	for i, t := range r.tools {
		out[i] = t.Name
	}
	return out
}

// LineSink receives response lines.
type LineSink interface {
	WriteLine(s string) error
}

// SplitCommand splits a command line at its first space into a tool name,
// clipped to protocol.ToolNameMax, and a parameter string with leading
// spaces skipped, clipped to protocol.ParamsMax.
func SplitCommand(line string) (name, params string) {
	name = line
	if i := strings.IndexByte(line, ' '); i >= 0 {
		name, params = line[:i], strings.TrimLeft(line[i+1:], " ")
	}
	if len(name) > protocol.ToolNameMax {
		name = name[:protocol.ToolNameMax]
	}
	if len(params) > protocol.ParamsMax {
		params = params[:protocol.ParamsMax]
	}
	return name, params
}

// Dispatcher runs lines taken from the mailbox in the main loop. Command
// lines go to the tool registry; JSON lines are digital-twin overrides
// applied through the helper.
type Dispatcher struct {
	tools  *ToolRegistry
	helper *Helper
	held   *HeldSync
	out    LineSink
}

// NewDispatcher creates a dispatcher. held may be nil; when set, sync
// messages emitted while a command runs are flushed after its response.
func NewDispatcher(tools *ToolRegistry, helper *Helper, held *HeldSync, out LineSink) *Dispatcher {
	return &Dispatcher{tools: tools, helper: helper, held: held, out: out}
}

// Poll takes one pending line from mb and handles it. It reports whether
// a line was handled.
func (d *Dispatcher) Poll(mb *protocol.Mailbox) bool {
	line, ok := mb.Take()
	if !ok {
		return false
	}
	d.HandleLine(string(line))
	return true
}

// HandleLine handles one complete line.
func (d *Dispatcher) HandleLine(line string) {
	if line == "" {
		return
	}
	if line[0] == protocol.JSONStart {
		d.applyOverride(line)
		return
	}

	if d.held != nil {
		d.held.Hold()
		defer d.held.Release()
	}
	resp := d.Dispatch(line)
	if err := d.out.WriteLine(resp); err != nil {
		logger.Error().Err(err).Str("response", resp).Msg("write response")
	}
}

// Dispatch runs a command line and returns its response line.
func (d *Dispatcher) Dispatch(line string) string {
	name, params := SplitCommand(line)
	if strings.TrimSpace(name) == "" {
		return "ERR empty command"
	}

	tool, ok := d.tools.Lookup(name)
	if !ok {
		logger.Debug().Str("tool", name).Msg("unknown tool")
		return "ERR unknown tool " + name
	}
	return tool.Handler(params)
}

func (d *Dispatcher) applyOverride(line string) {
	ov, ok := protocol.ParseOverride(line)
	if !ok {
		logger.Warn().Str("line", line).Msg("malformed override")
		return
	}
	if err := d.helper.Inject(ov.Pin, ov.Value != 0); err != nil {
		logger.Warn().Err(err).Str("pin", ov.Pin).Int("value", ov.Value).Msg("override rejected")
		return
	}
	logger.Debug().Str("pin", ov.Pin).Int("value", ov.Value).Msg("override applied")
}
