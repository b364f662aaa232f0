package sim

import (
	"errors"
	"sync"

	"github.com/LISSConsulting/LISSTech.MorseTap/internal/hal"
)

// ErrNoTransaction is returned for writes outside Start/Stop.
var ErrNoTransaction = errors.New("sim: write outside transaction")

// DefaultPollBudget mirrors a bus master that polls its completion flag a
// bounded number of times per byte.
const DefaultPollBudget = 200000

// Bus is a recording bus master. Completed transactions are kept and passed to
// every attached Device on Stop. Stall injects writes whose completion flag is
// never raised, which surface as hal.ErrBusTimeout.
type Bus struct {
	PollBudget int

	mu      sync.Mutex
	open    bool
	cur     []byte
	txs     [][]byte
	stall   int
	devices []Device
}

// Device receives every completed transaction, address byte first.
type Device interface {
	Transaction(tx []byte)
}

// NewBus returns a bus with the default poll budget and the given devices.
func NewBus(devices ...Device) *Bus {
	return &Bus{PollBudget: DefaultPollBudget, devices: devices}
}

// Attach adds a device to the bus.
func (b *Bus) Attach(d Device) {
	b.mu.Lock()
	b.devices = append(b.devices, d)
	b.mu.Unlock()
}

// Stall makes the next n writes time out without delivering their byte.
func (b *Bus) Stall(n int) {
	b.mu.Lock()
	b.stall = n
	b.mu.Unlock()
}

// Start opens a transaction. A Start inside an open transaction acts as a
// repeated start and flushes the bytes written so far.
func (b *Bus) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open && len(b.cur) > 0 {
		b.finishLocked()
	}
	b.open = true
	b.cur = nil
	return nil
}

// WriteByte transfers one byte.
func (b *Bus) WriteByte(v byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return ErrNoTransaction
	}
	stalled := b.stall > 0
	if stalled {
		b.stall--
	}
	if err := hal.PollCompletion(b.budget(), func() bool { return !stalled }); err != nil {
		return err
	}
	b.cur = append(b.cur, v)
	return nil
}

// Stop closes the transaction and delivers it.
func (b *Bus) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return nil
	}
	b.finishLocked()
	b.open = false
	return nil
}

// Transactions returns a copy of every completed transaction.
func (b *Bus) Transactions() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.txs))
	for i, tx := range b.txs {
		out[i] = append([]byte(nil), tx...)
	}
	return out
}

// Reset discards recorded transactions.
func (b *Bus) Reset() {
	b.mu.Lock()
	b.txs = nil
	b.mu.Unlock()
}

func (b *Bus) finishLocked() {
	tx := b.cur
	b.cur = nil
	b.txs = append(b.txs, tx)
	for _, d := range b.devices {
		d.Transaction(tx)
	}
}

func (b *Bus) budget() int {
	if b.PollBudget <= 0 {
		return DefaultPollBudget
	}
	return b.PollBudget
}
