// Package bot implements the Telegram bot: the per-chat subscription
// wizard, command handling and result notifications.
package bot

import (
	"sync"
	"time"

	"github.com/jheinrich-dev/campusplan/internal/metrics"
)

// State is the position of a chat within the subscription wizard.
type State int

const (
	StateReady State = iota
	StateSeminarGroupChosen
	StateModuleChosen
	StateYearChosen
)

// Conversation is the wizard state of one chat. It is only touched from the
// update loop, which handles updates sequentially, so fields need no lock.
type Conversation struct {
	ChatID         int64
	State          State
	SeminarGroupID string
	ModuleCode     string
	Year           int

	lastActive time.Time
}

// SetReady resets the wizard back to its idle state.
func (c *Conversation) SetReady() {
	c.State = StateReady
	c.SeminarGroupID = ""
	c.ModuleCode = ""
	c.Year = 0
}

// SetSeminarGroupID records the chosen seminar group and advances the wizard.
func (c *Conversation) SetSeminarGroupID(id string) {
	c.SeminarGroupID = id
	c.State = StateSeminarGroupChosen
}

// SetModuleCode records the chosen module and advances the wizard.
func (c *Conversation) SetModuleCode(code string) {
	c.ModuleCode = code
	c.State = StateModuleChosen
}

// SetYear records the chosen year and advances the wizard.
func (c *Conversation) SetYear(year int) {
	c.Year = year
	c.State = StateYearChosen
}

// Manager holds the conversations of all active chats. Conversations idle
// longer than the ttl are evicted, dropping any half-finished wizard.
type Manager struct {
	mu      sync.Mutex
	chats   map[int64]*Conversation
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewManager creates a conversation manager with the given idle ttl.
func NewManager(ttl time.Duration, m *metrics.Metrics) *Manager {
	return &Manager{
		chats:   make(map[int64]*Conversation),
		ttl:     ttl,
		metrics: m,
	}
}

// Load returns the conversation of a chat, creating it on first contact.
// Every load refreshes the chat's idle timer and evicts stale chats.
func (m *Manager) Load(chatID int64) *Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.evictStale(now)

	chat, ok := m.chats[chatID]
	if !ok {
		chat = &Conversation{ChatID: chatID, State: StateReady}
		m.chats[chatID] = chat
	}
	chat.lastActive = now
	m.updateGauge()
	return chat
}

// Len returns the number of conversations currently held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chats)
}

func (m *Manager) evictStale(now time.Time) {
	for id, chat := range m.chats {
		if now.Sub(chat.lastActive) > m.ttl {
			delete(m.chats, id)
		}
	}
}

func (m *Manager) updateGauge() {
	if m.metrics != nil {
		m.metrics.ActiveConversationCount.Set(float64(len(m.chats)))
	}
}
