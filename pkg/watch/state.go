package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const stateFileName = ".xmark_watch.json"

// BookState records what a book's sources looked like at its last build.
type BookState struct {
	Fingerprint   string    `json:"fingerprint"`
	LastBuildTime time.Time `json:"last_build_time"`
	LastStatus    string    `json:"last_status"`
	PagesRendered int       `json:"pages_rendered"`
	ErrorMessage  string    `json:"error_message,omitempty"`
}

// WatchState is the persisted form of all book states
type WatchState struct {
	Books     map[string]BookState `json:"books"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// StateManager loads and saves watch state next to the build output so a
// restarted watcher does not rebuild books that have not changed.
type StateManager struct {
	stateDir  string
	statePath string
	state     WatchState
	mu        sync.RWMutex
}

// NewStateManager creates a state manager writing into stateDir
func NewStateManager(stateDir string) *StateManager {
	return &StateManager{
		stateDir:  stateDir,
		statePath: filepath.Join(stateDir, stateFileName),
		state:     WatchState{Books: make(map[string]BookState)},
	}
}

// Load reads the state file. A missing file is an empty state.
func (m *StateManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = WatchState{Books: make(map[string]BookState)}
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	if err := json.Unmarshal(data, &m.state); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}
	if m.state.Books == nil {
		m.state.Books = make(map[string]BookState)
	}
	return nil
}

// Save writes the state file, creating the directory if needed
func (m *StateManager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.UpdatedAt = time.Now()
	if err := os.MkdirAll(m.stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(m.statePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// GetBookState returns the recorded state of a book
func (m *StateManager) GetBookState(book string) (BookState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.state.Books[book]
	return state, ok
}

// UpdateBookState records the outcome of a build made from sources with the
// given fingerprint.
func (m *StateManager) UpdateBookState(book, fingerprint, status string, pagesRendered int, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Books[book] = BookState{
		Fingerprint:   fingerprint,
		LastBuildTime: time.Now(),
		LastStatus:    status,
		PagesRendered: pagesRendered,
		ErrorMessage:  errorMsg,
	}
}

// Changed reports whether a book must be rebuilt for the given fingerprint.
// Books never built are always changed.
func (m *StateManager) Changed(book, fingerprint string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.state.Books[book]
	return !ok || state.Fingerprint != fingerprint
}

// GetAllBookStates returns a copy of every recorded book state
func (m *StateManager) GetAllBookStates() map[string]BookState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]BookState, len(m.state.Books))
	for k, v := range m.state.Books {
		result[k] = v
	}
	return result
}
