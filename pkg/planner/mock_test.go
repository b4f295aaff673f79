package planner

import (
	"sync"

	"github.com/Joik2ww/FileOrganizer/internal/checksum"
)

// mockLogger is a mock implementation of logger.Logger for testing
type mockLogger struct {
	mu          sync.Mutex
	phaseStarts []string
	phaseEnds   []string
	errorCalls  []errorCall
	debugCalls  []string
}

type errorCall struct {
	operation string
	path      string
	err       error
}

func (m *mockLogger) PhaseStart(phase string, totalItems int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phaseStarts = append(m.phaseStarts, phase)
}

func (m *mockLogger) PhaseComplete(phase string, processedItems int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phaseEnds = append(m.phaseEnds, phase)
}

func (m *mockLogger) Delete(path string, size int64) {}

func (m *mockLogger) Skip(path string, reason string) {}

func (m *mockLogger) Error(operation, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCalls = append(m.errorCalls, errorCall{operation, path, err})
}

func (m *mockLogger) Debug(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debugCalls = append(m.debugCalls, message)
}

// failingHasher hashes normally except for paths in fail.
func failingHasher(fail map[string]error) checksum.Hasher {
	return checksum.HasherFunc(func(path string) (string, error) {
		if err, ok := fail[path]; ok {
			return "", err
		}
		return checksum.CalculateFileSHA256(path)
	})
}
