package db

import (
	"sync"

	"github.com/ldi/focusbloom/pkg/models"
)

type StagedItems struct {
	Templates []*models.TaskTemplate
	Tasks     []*models.Task
}

// StagingManager provides thread-safe in-memory storage for staged changes.
// MCP clients stage templates and tasks under a session ID and commit them
// in one batch.
type StagingManager struct {
	mu     sync.RWMutex
	staged map[string]*StagedItems
}

func NewStagingManager() *StagingManager {
	return &StagingManager{
		staged: make(map[string]*StagedItems),
	}
}

func (sm *StagingManager) AddTemplate(sessionID string, template *models.TaskTemplate) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.staged[sessionID] == nil {
		sm.staged[sessionID] = &StagedItems{
			Templates: []*models.TaskTemplate{},
			Tasks:     []*models.Task{},
		}
	}
	sm.staged[sessionID].Templates = append(sm.staged[sessionID].Templates, template)
}

func (sm *StagingManager) AddTask(sessionID string, task *models.Task) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.staged[sessionID] == nil {
		sm.staged[sessionID] = &StagedItems{
			Templates: []*models.TaskTemplate{},
			Tasks:     []*models.Task{},
		}
	}
	sm.staged[sessionID].Tasks = append(sm.staged[sessionID].Tasks, task)
}

func (sm *StagingManager) GetAndClear(sessionID string) *StagedItems {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	items, ok := sm.staged[sessionID]
	if !ok {
		return &StagedItems{
			Templates: []*models.TaskTemplate{},
			Tasks:     []*models.Task{},
		}
	}

	delete(sm.staged, sessionID)
	return items
}

func (sm *StagingManager) Peek(sessionID string) *StagedItems {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	items, ok := sm.staged[sessionID]
	if !ok {
		return &StagedItems{
			Templates: []*models.TaskTemplate{},
			Tasks:     []*models.Task{},
		}
	}

	return items
}
