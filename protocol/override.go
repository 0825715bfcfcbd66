package protocol

import "strings"

// Override is a digital-twin value injected by the observer.
type Override struct {
	Pin   string
	Value int
}

const (
	pinKey   = `"p":"`
	valueKey = `"v":`
)

// ParseOverride extracts the pin and value from an observer line such as
// {"p":"BUTTON1","v":0}. Only the two keys are looked for; the rest of the
// object is ignored. Pin names are clipped to PinNameMax bytes. The value
// is read like atoi: leading spaces, optional sign, then digits.
func ParseOverride(line string) (Override, bool) {
	if len(line) == 0 || line[0] != JSONStart {
		return Override{}, false
	}

	i := strings.Index(line, pinKey)
	if i < 0 {
		return Override{}, false
	}
	rest := line[i+len(pinKey):]
	end := strings.IndexByte(rest, '"')
	if end <= 0 {
		return Override{}, false
	}
	pin := rest[:end]
	if len(pin) > PinNameMax {
		pin = pin[:PinNameMax]
	}

	j := strings.Index(line, valueKey)
	if j < 0 {
		return Override{}, false
	}
	return Override{Pin: pin, Value: atoi(line[j+len(valueKey):])}, true
}

func atoi(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		neg = s[i] == '-'
		i++
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}
