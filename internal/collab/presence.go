package collab

import (
	"encoding/json"
	"log/slog"
	"maps"
	"sync"
)

// PresenceManager tracks the cursor and selection each user last reported
// in a room.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[userID] = p
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

// Len returns the number of users with a reported presence.
func (pm *PresenceManager) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.presences)
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return maps.Clone(pm.presences)
}

// StateMessage returns the presence.state message sent to joining clients.
func (pm *PresenceManager) StateMessage() *Message {
	all := pm.GetAll()
	if all == nil {
		all = map[string]*PresencePayload{}
	}
	msg, err := newMessage(TypePresenceState, PresenceStatePayload{Presences: all})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return msg
}

func encodePresence(p *PresencePayload) json.RawMessage {
	data, err := json.Marshal(p)
	if err != nil {
		slog.Error("marshal presence", "error", err)
		return json.RawMessage(`{}`)
	}
	return data
}
