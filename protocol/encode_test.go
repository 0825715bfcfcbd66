package protocol

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestAppendSync(t *testing.T) {
	var b LineBuffer
	AppendSync(&b, "GPIO", "LED1", 1)

	want := `{"t":"GPIO","p":"LED1","v":1}` + "\n"
	if got := string(b.Result()); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	var msg struct {
		T string `json:"t"`
		P string `json:"p"`
		V int    `json:"v"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(b.Result()), &msg); err != nil {
		t.Fatalf("Sync line is not JSON: %v", err)
	}
	if msg.T != "GPIO" || msg.P != "LED1" || msg.V != 1 {
		t.Errorf("Decoded %+v", msg)
	}
}

func TestFormatSync(t *testing.T) {
	if got := FormatSync("GPIO", "BUTTON1", 0); got != `{"t":"GPIO","p":"BUTTON1","v":0}` {
		t.Errorf("Unexpected sync line %q", got)
	}
}

func TestLineWriter(t *testing.T) {
	var out bytes.Buffer
	w := NewLineWriter(&out)

	if err := w.WriteLine("OK"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteSync("GPIO", "LED1", 0); err != nil {
		t.Fatal(err)
	}

	want := "OK\n" + `{"t":"GPIO","p":"LED1","v":0}` + "\n"
	if out.String() != want {
		t.Errorf("Expected %q, got %q", want, out.String())
	}
}
