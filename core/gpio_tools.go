package core

import (
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// PinNames returns the names of cfgs in order.
func PinNames(cfgs []PinConfig) []string {
	names := make([]string, len(cfgs))
	for i, c := range cfgs {
		names[i] = c.Name
	}
	return names
}

// GPIOTools returns the built-in GPIO tools bound to h. Pin arguments are
// checked against pins before the driver is touched.
func GPIOTools(h *Helper, pins []string) []Tool {
	g := &gpioTools{helper: h, pins: pins}
	return []Tool{
		{Name: "gpio_write", Handler: g.write},
		{Name: "gpio_read", Handler: g.read},
		{Name: "gpio_list", Handler: g.list},
	}
}

type gpioTools struct {
	helper *Helper
	pins   []string
}

// gpio_write <pin> <value>
func (g *gpioTools) write(params string) string {
	args, err := shlex.Split(params)
	if err != nil || len(args) < 2 {
		return "ERR gpio_write need PIN VALUE"
	}
	pin := TruncateName(args[0])
	v, err := strconv.Atoi(args[1])
	if err != nil {
		return "ERR gpio_write need PIN VALUE"
	}
	if !ContainsPin(g.pins, pin) {
		return "ERR unknown pin " + pin
	}
	if err := g.helper.Write(pin, v != 0); err != nil {
		return "ERR " + string(CodeOf(err))
	}
	return "OK"
}

// gpio_read <pin>
func (g *gpioTools) read(params string) string {
	args, err := shlex.Split(params)
	if err != nil || len(args) < 1 {
		return "ERR gpio_read need PIN"
	}
	pin := TruncateName(args[0])
	if !ContainsPin(g.pins, pin) {
		return "ERR unknown pin " + pin
	}
	v, err := g.helper.Read(pin)
	if err != nil {
		return "ERR " + string(CodeOf(err))
	}
	return "GPIO_READ " + pin + " " + strconv.Itoa(boolToInt(v))
}

// gpio_list
func (g *gpioTools) list(string) string {
	if len(g.pins) == 0 {
		return "PINS"
	}
	return "PINS " + strings.Join(g.pins, " ")
}
