package gsync

// Waiting returns the number of goroutines queued behind the holder of m.
func Waiting(m *QueuingMutex) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next == m.serving {
		return 0
	}
	return int(m.next - m.serving - 1)
}
