//go:build rp2040

package main

import (
	"machine"
	"time"

	"gpiotwin/core"
	"gpiotwin/protocol"
)

var (
	// Receiver filled by serialReaderLoop
	rx = protocol.NewReceiver(protocol.NewMailbox())

	// Error counter
	msgerrors uint32
)

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: 57600})

	gpio := NewRPGPIODriver(boardPins)
	core.SetGPIODriver(gpio)

	out := protocol.NewLineWriter(machine.Serial)
	held := core.NewHeldSync(core.LineSync{W: out})
	helper := core.NewHelper(core.ActiveGPIO(), held)
	if err := helper.Init(); err != nil {
		out.WriteLine("ERR " + string(core.CodeOf(err)))
	}

	tools := core.NewToolRegistry(core.GPIOTools(helper, core.PinNames(boardPins))...)
	disp := core.NewDispatcher(tools, helper, held, out)

	go serialReaderLoop()

	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
				}
			}()
			disp.Poll(rx.Mailbox())
		}()

		time.Sleep(10 * time.Millisecond)
	}
}

// serialReaderLoop runs in a goroutine and feeds received bytes to rx
func serialReaderLoop() {
	defer func() {
		if r := recover(); r != nil {
			msgerrors++
			// Restart the reader loop
			time.Sleep(100 * time.Millisecond)
			go serialReaderLoop()
		}
	}()

	for {
		if machine.Serial.Buffered() == 0 {
			time.Sleep(100 * time.Microsecond)
			continue
		}
		b, err := machine.Serial.ReadByte()
		if err != nil {
			msgerrors++
			time.Sleep(1 * time.Millisecond)
			continue
		}
		rx.Feed(b)
	}
}
