package editing

import "sync"

// EchoFlag suppresses the feed event produced by one local write.
//
//	Idle --Arm--> Armed --Consume--> Idle
//	Armed --Disarm (write failed)--> Idle
//
// Arming twice still suppresses a single event.
type EchoFlag struct {
	mu    sync.Mutex
	armed bool
}

// Arm must be called right before issuing a write that emits a feed event.
func (f *EchoFlag) Arm() {
	f.mu.Lock()
	f.armed = true
	f.mu.Unlock()
}

// Consume clears the flag and reports whether it was armed.
func (f *EchoFlag) Consume() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	armed := f.armed
	f.armed = false
	return armed
}

// Disarm clears the flag after a write that failed or emitted nothing.
func (f *EchoFlag) Disarm() {
	f.mu.Lock()
	f.armed = false
	f.mu.Unlock()
}

func (f *EchoFlag) Armed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.armed
}
