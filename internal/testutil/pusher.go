package testutil

import "sync"

// Push is one message handed to a RecordingPusher.
type Push struct {
	RecipientID uint64
	Body        string
}

// RecordingPusher records enqueued pushes instead of delivering them.
type RecordingPusher struct {
	mu     sync.Mutex
	pushes []Push
}

func (p *RecordingPusher) Enqueue(recipientID uint64, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, Push{RecipientID: recipientID, Body: body})
}

// Pushes returns a copy of the recorded pushes.
func (p *RecordingPusher) Pushes() []Push {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Push(nil), p.pushes...)
}
