package keypad

import (
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"go.bug.st/serial"
)

type fakePort struct {
	serial.Port
	reads   [][]byte
	resets  int
	timeout time.Duration
	closed  bool
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	if len(p.reads) == 0 {
		return 0, nil
	}
	n := copy(b, p.reads[0])
	p.reads = p.reads[1:]
	return n, nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.resets++
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func TestSerialSource(t *testing.T) {
	port := &fakePort{reads: [][]byte{[]byte("2x2\r="), nil, []byte("c")}}
	s, err := NewSerialSource(port)
	if err != nil {
		t.Fatal(err)
	}
	if port.timeout != serialReadTimeout {
		t.Errorf("read timeout = %s, want %s", port.timeout, serialReadTimeout)
	}

	var got []Key
	for i := 0; i < 6; i++ {
		k, err := s.Scan()
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, k)
	}
	want := []Key{'2', '2', '=', NoKey, KeyClear, NoKey}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("scan %d = %s, want %s", i, got[i], want[i])
		}
	}

	if err := s.Flush(); err != nil || port.resets != 1 {
		t.Errorf("Flush err=%v resets=%d", err, port.resets)
	}
	_ = s.Close()
	if !port.closed {
		t.Error("Close should close the port")
	}
}

func TestSerialSource_FlushDropsPending(t *testing.T) {
	port := &fakePort{reads: [][]byte{[]byte("123")}}
	s, _ := NewSerialSource(port)
	if k, _ := s.Scan(); k != '1' {
		t.Fatalf("first scan = %s, want 1", k)
	}
	_ = s.Flush()
	if k, _ := s.Scan(); k != NoKey {
		t.Errorf("after flush scan = %s, want none", k)
	}
}

func waitKey(t *testing.T, c *ConsoleSource) Key {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		k, err := c.Scan()
		if err != nil {
			t.Fatal(err)
		}
		if k != NoKey {
			return k
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for key")
	return NoKey
}

func TestConsoleSource(t *testing.T) {
	r, w := io.Pipe()
	c := newConsoleSource(r)
	var interrupted atomic.Bool
	c.OnInterrupt = func() { interrupted.Store(true) }

	go func() {
		_, _ = w.Write([]byte("7q\r\x7f"))
	}()
	for _, want := range []Key{'7', KeySend, KeyClear} {
		if got := waitKey(t, c); got != want {
			t.Errorf("key = %s, want %s", got, want)
		}
	}

	go func() {
		_, _ = w.Write([]byte{0x03})
	}()
	deadline := time.Now().Add(2 * time.Second)
	for !interrupted.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !interrupted.Load() {
		t.Error("Ctrl+C should call OnInterrupt")
	}

	closeErr := errors.New("pipe broke")
	_ = w.CloseWithError(closeErr)
	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := c.Scan(); err != nil {
			if !errors.Is(err, closeErr) {
				t.Errorf("err = %v, want pipe broke", err)
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Error("read error was not surfaced")
}

func TestConsoleSource_Flush(t *testing.T) {
	r, w := io.Pipe()
	c := newConsoleSource(r)
	go func() { _, _ = w.Write([]byte("1")) }()
	_ = waitKey(t, c)

	done := make(chan struct{})
	go func() {
		_, _ = w.Write([]byte("23"))
		close(done)
	}()
	<-done
	time.Sleep(20 * time.Millisecond)
	_ = c.Flush()
	if k, _ := c.Scan(); k != NoKey {
		t.Errorf("after flush scan = %s, want none", k)
	}
	_ = w.Close()
}
