package protocol

import "strconv"

// AppendSync encodes one digital-twin sync line into out:
//
//	{"t":"<kind>","p":"<pin>","v":<v>}\n
//
// Pin names are validated ASCII identifiers, so no escaping is done.
func AppendSync(out *LineBuffer, kind, pin string, v int) {
	var num [12]byte
	out.OutputString(`{"t":"`)
	out.OutputString(kind)
	out.OutputString(`","p":"`)
	out.OutputString(pin)
	out.OutputString(`","v":`)
	out.Output(strconv.AppendInt(num[:0], int64(v), 10))
	out.OutputByte('}')
	out.Terminate()
}

// AppendLine copies s into out and terminates it.
func AppendLine(out *LineBuffer, s string) {
	out.OutputString(s)
	out.Terminate()
}

// FormatSync returns the sync line for kind/pin/v without the terminator.
func FormatSync(kind, pin string, v int) string {
	var b LineBuffer
	AppendSync(&b, kind, pin, v)
	r := b.Result()
	return string(r[:len(r)-1])
}
