package components

import "sync"

// Memory Manages the chat history of a conversation as a list of turns.
// A turn is every message sharing one turn ID, typically a user task and the final answer.
// threadsafe
type Memory struct {
	// history is a list of messages representing the chat history.
	history []Message
	// maxTurns is the maximum number of turns to keep in history.
	// When exceeded, oldest turns are removed first.
	maxTurns int
	// mtx sync lock
	mtx *sync.RWMutex
}

// NewMemory initializes the Memory with an empty history.
// maxTurns <= 0 keeps every turn.
func NewMemory(maxTurns int) *Memory {
	if maxTurns < 0 {
		maxTurns = 0
	}
	return &Memory{
		maxTurns: maxTurns,
		history:  make([]Message, 0, 2*maxTurns+2),
		mtx:      new(sync.RWMutex),
	}
}

// AddTurn records a complete exchange as a single new turn.
func (m *Memory) AddTurn(messages ...Message) string {
	id := NewTurnID()
	m.mtx.Lock()
	defer m.mtx.Unlock()
	for _, msg := range messages {
		m.history = append(m.history, *msg.SetTurnID(id))
	}
	m.trim()
	return id
}

// trim must be called with m.mtx held.
func (m *Memory) trim() {
	if m.maxTurns <= 0 {
		return
	}
	turns := m.turnCount()
	for turns > m.maxTurns && len(m.history) > 0 {
		oldest := m.history[0].TurnID()
		idx := 0
		for idx < len(m.history) && m.history[idx].TurnID() == oldest {
			idx++
		}
		m.history = m.history[idx:]
		turns--
	}
}

// turnCount must be called with m.mtx held.
func (m *Memory) turnCount() int {
	var (
		count int
		last  string
	)
	for idx, msg := range m.history {
		if idx == 0 || msg.TurnID() != last {
			count++
			last = msg.TurnID()
		}
	}
	return count
}

// History returns a copy of the chat history.
func (m *Memory) History() []Message {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	ret := make([]Message, len(m.history))
	copy(ret, m.history)
	return ret
}

// Reset clears the history
func (m *Memory) Reset() {
	m.mtx.Lock()
	m.history = make([]Message, 0, 2*m.maxTurns+2)
	m.mtx.Unlock()
}

// MessageCount returns the number of messages in the chat history.
func (m *Memory) MessageCount() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return len(m.history)
}

// TurnCount returns the number of turns in the chat history.
func (m *Memory) TurnCount() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.turnCount()
}
