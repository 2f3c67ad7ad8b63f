package session

import (
	"log"
	"time"

	"github.com/google/uuid"

	"dungeonsync.gg/internal/protocol"
)

// GlobalTopic is the broadcast topic every peer is subscribed to on open.
const GlobalTopic = "GLOBAL"

// Peer is a live transport connection. Implemented by the websocket layer;
// tests supply fakes. Send must never block the session loop.
type Peer interface {
	ID() string
	Send(b []byte)
	Subscribe(topic string)
	Publish(topic string, b []byte)
}

// Envelope pairs an inbound raw message with the connection it arrived on.
type Envelope struct {
	Peer Peer
	Data []byte
}

type Config struct {
	// DefaultMaxPlayers caps lobbies whose CREATE_LOBBY omits maxPlayers.
	DefaultMaxPlayers int

	// SpawnPosition is the transform participants are reset to on lobby entry.
	SpawnPosition [3]float64
}

func (c Config) withDefaults() Config {
	if c.DefaultMaxPlayers <= 0 {
		c.DefaultMaxPlayers = 4
	}
	return c
}

// Participant is the canonical per-user record. Identity survives reconnects;
// the record is never deleted, only flipped to offline.
type Participant struct {
	ID   string
	Name string

	Status string

	LobbyID string
	IsHost  bool
	Ready   bool

	Character     string
	CharacterName string
	Weapon        string

	Position [3]float64
	Rotation [4]float64

	IsMoving          bool
	MovementDirection string
	IsRunning         bool
	IsJumping         bool
	IsGrounded        bool
}

func (p *Participant) wire() protocol.Player {
	return protocol.Player{
		ID:                p.ID,
		Name:              p.Name,
		Status:            p.Status,
		LobbyID:           p.LobbyID,
		IsHost:            p.IsHost,
		Ready:             p.Ready,
		Character:         p.Character,
		CharacterName:     p.CharacterName,
		Weapon:            p.Weapon,
		Position:          p.Position,
		Rotation:          p.Rotation,
		IsMoving:          p.IsMoving,
		MovementDirection: p.MovementDirection,
		IsRunning:         p.IsRunning,
		IsJumping:         p.IsJumping,
		IsGrounded:        p.IsGrounded,
	}
}

// Lobby stores member ids only. Player records are joined from the canonical
// participant map at serialization time, never embedded here.
type Lobby struct {
	ID         string
	Name       string
	HostID     string
	MaxPlayers int
	PlayerIDs  []string // insertion order = join order
	Status     string
	CreatedAt  time.Time
}

// WorldItem is a shared interactive object (chest, door, ...). State updates
// shallow-merge; position updates replace.
type WorldItem struct {
	ID       string
	Type     string
	Position [3]float64
	Rotation *[3]float64
	State    map[string]any
}

func (it *WorldItem) wire() protocol.WorldItem {
	return protocol.WorldItem{
		ID:       it.ID,
		Type:     it.Type,
		Position: it.Position,
		Rotation: it.Rotation,
		State:    it.State,
	}
}

type rollPhase int

const (
	rollStarted rollPhase = iota + 1
	rollResolved
)

type rollState struct {
	phase   rollPhase
	args    protocol.RollArgs
	outcome protocol.RollOutcome
}

// EventLogger receives one entry per dispatched inbound message (may be nil).
type EventLogger interface {
	WriteEvent(entry EventEntry) error
}

// RollLogger receives one entry per roll lifecycle transition (may be nil).
type RollLogger interface {
	WriteRoll(entry RollEntry) error
}

type EventEntry struct {
	Time      string `json:"time"`
	ConnID    string `json:"connId"`
	UserID    string `json:"userId,omitempty"`
	Type      string `json:"type"`
	Suppress  bool   `json:"suppressSync,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

type RollEntry struct {
	Time              string `json:"time"`
	InitiatorID       string `json:"initiatorId"`
	Phase             string `json:"phase"` // "started", "resolved", "closed"
	DiceType          string `json:"diceType,omitempty"`
	Result            int    `json:"result,omitempty"`
	Success           bool   `json:"success,omitempty"`
	IsCriticalSuccess bool   `json:"isCriticalSuccess,omitempty"`
	IsCriticalFailure bool   `json:"isCriticalFailure,omitempty"`
}

// Session is the authoritative sync core. All state is owned by the Run loop
// goroutine; the only mutation path is the open/closed/inbox channels.
type Session struct {
	cfg Config
	log *log.Logger

	peers      map[string]Peer   // connection id -> live peer
	peerToUser map[string]string // connection id -> user id
	userToPeer map[string]string // user id -> connection id

	players map[string]*Participant // user id -> canonical record
	lobbies map[string]*Lobby
	items   map[string]*WorldItem
	rolls   map[string]*rollState // initiator user id -> active roll

	opened chan Peer
	closed chan string
	inbox  chan Envelope
	stop   chan struct{}

	handlers map[string]handlerFunc

	// Optional journals (may be nil). Implemented in internal/persistence/*.
	eventLogger EventLogger
	rollLogger  RollLogger

	newLobbyID func() string
	now        func() time.Time
}

func New(cfg Config, logger *log.Logger) *Session {
	s := &Session{
		cfg:        cfg.withDefaults(),
		log:        logger,
		peers:      map[string]Peer{},
		peerToUser: map[string]string{},
		userToPeer: map[string]string{},
		players:    map[string]*Participant{},
		lobbies:    map[string]*Lobby{},
		items:      map[string]*WorldItem{},
		rolls:      map[string]*rollState{},
		opened:     make(chan Peer, 64),
		closed:     make(chan string, 64),
		inbox:      make(chan Envelope, 1024),
		stop:       make(chan struct{}),
		newLobbyID: uuid.NewString,
		now:        time.Now,
	}
	s.handlers = s.handlerTable()
	return s
}

func (s *Session) SetEventLogger(l EventLogger) { s.eventLogger = l }
func (s *Session) SetRollLogger(l RollLogger)   { s.rollLogger = l }

func (s *Session) Opened() chan<- Peer    { return s.opened }
func (s *Session) Closed() chan<- string  { return s.closed }
func (s *Session) Inbox() chan<- Envelope { return s.inbox }

func (s *Session) Stop() { close(s.stop) }

func (s *Session) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func identityQuat() [4]float64 { return [4]float64{0, 0, 0, 1} }
