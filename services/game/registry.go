package game

import (
	game_constants "Howler/constants/game"
	"errors"
	"math/rand"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrDuplicatePlayer = errors.New("player already in room")
	ErrBadPasscode     = errors.New("wrong room passcode")
)

// Registry owns room and player lifecycle. It is the single holder of
// every live Room; all lookups and membership mutations go through it.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// generateRoomCode builds a random code from the room code charset.
func generateRoomCode() string {
	b := make([]byte, game_constants.ROOM_CODE_LENGTH)
	for i := range b {
		b[i] = game_constants.ROOM_CODE_CHARSET[rand.Intn(len(game_constants.ROOM_CODE_CHARSET))]
	}
	return string(b)
}

// CreateRoom registers a new room with the host as its first player. The
// room code is regenerated until it does not collide with a live room.
// A non-empty passcode locks the room; it is stored bcrypt-hashed.
func (reg *Registry) CreateRoom(hostID string, avatarKey int, username, passcode string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var code string
	for {
		code = generateRoomCode()
		if _, taken := reg.rooms[code]; !taken {
			break
		}
	}

	host := &Player{
		ID:        hostID,
		Username:  username,
		AvatarKey: avatarKey,
		Status:    StatusHost,
	}
	room := &Room{
		Code:    code,
		HostID:  hostID,
		Players: []*Player{host},
		Phase:   PhaseWaiting,
	}
	if passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		room.passcodeHash = hash
	}
	room.AppendAction("room_created", hostID, "")

	reg.rooms[code] = room
	return room, nil
}

// Room returns the live room with the given code.
func (reg *Registry) Room(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[code]
	return room, ok
}

// AddPlayer adds a joining player with pending status. Duplicate ids are
// rejected, so a re-delivered join is a no-op error rather than a second
// membership.
func (reg *Registry) AddPlayer(code string, player *Player, passcode string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return ErrRoomNotFound
	}
	if len(room.passcodeHash) > 0 {
		if bcrypt.CompareHashAndPassword(room.passcodeHash, []byte(passcode)) != nil {
			return ErrBadPasscode
		}
	}
	if room.Player(player.ID) != nil {
		return ErrDuplicatePlayer
	}
	player.Status = StatusPending
	room.Players = append(room.Players, player)
	room.AppendAction("player_joined", player.ID, "")
	return nil
}

// ApprovePlayer transitions a pending player to approved. Any other
// starting status makes this a no-op, reported through the bool.
func (reg *Registry) ApprovePlayer(code, playerID string) bool {
	return reg.setPlayerStatus(code, playerID, StatusApproved, "player_approved")
}

// RejectPlayer transitions a pending player to rejected.
func (reg *Registry) RejectPlayer(code, playerID string) bool {
	return reg.setPlayerStatus(code, playerID, StatusRejected, "player_rejected")
}

func (reg *Registry) setPlayerStatus(code, playerID string, status PlayerStatus, actionType string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return false
	}
	player := room.Player(playerID)
	if player == nil || player.Status != StatusPending {
		return false
	}
	player.Status = status
	room.AppendAction(actionType, room.HostID, playerID)
	return true
}

// AssignRoles shuffles the host-supplied role multiset with a
// Fisher-Yates pass and deals one role to each approved player. It fails
// closed: the room must still be waiting, every role must belong to the
// known role set, the room must hold enough approved players, and the
// multiset length must equal the approved-player count.
func (reg *Registry) AssignRoles(code string, roles []Role) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return false
	}
	if room.Phase != PhaseWaiting {
		return false
	}
	for _, role := range roles {
		if !ValidRole(role) {
			return false
		}
	}
	approved := room.ApprovedPlayers()
	if len(approved) < game_constants.MIN_PLAYERS_TO_START {
		return false
	}
	if len(roles) != len(approved) {
		return false
	}

	shuffled := make([]Role, len(roles))
	copy(shuffled, roles)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	for idx, player := range approved {
		player.Role = shuffled[idx]
	}
	room.Round = 1
	room.AppendAction("roles_assigned", room.HostID, "")
	return true
}

// PlayerReady marks an approved player as ready. The first return value
// reports whether every approved player is now ready, which is the
// caller's trigger to create the game session.
func (reg *Registry) PlayerReady(code, playerID string) (allReady bool, ok bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, exists := reg.rooms[code]
	if !exists {
		return false, false
	}
	player := room.Player(playerID)
	if player == nil || player.Status != StatusApproved {
		return false, false
	}
	player.Ready = true
	room.AppendAction("player_ready", playerID, "")

	for _, p := range room.ApprovedPlayers() {
		if !p.Ready {
			return false, true
		}
	}
	return true, true
}

// SetPhase mirrors the session phase onto the room, keeping lobby
// operations (role assignment is waiting-only) honest once a game runs.
func (reg *Registry) SetPhase(code string, phase Phase) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return false
	}
	room.Phase = phase
	return true
}

// RecordAction appends an audit entry to a room's trail.
func (reg *Registry) RecordAction(code, actionType, actor, target string) (RoomAction, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return RoomAction{}, false
	}
	return room.AppendAction(actionType, actor, target), true
}
