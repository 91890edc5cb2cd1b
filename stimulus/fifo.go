// Package stimulus feeds the simulated nodes with input values. Values are
// loaded from a text file and written, once per quantum, into bounded FIFO
// channels that the sensors drain.
package stimulus

import "sync"

// A FIFO is a bounded queue of byte values. It connects the feeder to the
// sensors, and the external actions of one node to the other-node inputs of
// another.
type FIFO struct {
	lock     sync.Mutex
	name     string
	capacity int
	values   []byte
}

// NewFIFO creates a FIFO that holds up to capacity values.
func NewFIFO(name string, capacity int) *FIFO {
	if capacity <= 0 {
		panic("FIFO capacity must be positive")
	}

	return &FIFO{
		name:     name,
		capacity: capacity,
	}
}

// Name returns the name of the FIFO.
func (f *FIFO) Name() string {
	return f.name
}

// Capacity returns the maximum number of values the FIFO holds.
func (f *FIFO) Capacity() int {
	return f.capacity
}

// NumAvailable returns the number of values that can be read.
func (f *FIFO) NumAvailable() int {
	f.lock.Lock()
	defer f.lock.Unlock()

	return len(f.values)
}

// NumFree returns the number of values that can be written.
func (f *FIFO) NumFree() int {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.capacity - len(f.values)
}

// Write appends a value. It returns false if the FIFO is full.
func (f *FIFO) Write(v byte) bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	if len(f.values) >= f.capacity {
		return false
	}

	f.values = append(f.values, v)

	return true
}

// Read pops the oldest value. It returns false if the FIFO is empty.
func (f *FIFO) Read() (byte, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if len(f.values) == 0 {
		return 0, false
	}

	v := f.values[0]
	f.values = f.values[1:]

	return v, true
}
