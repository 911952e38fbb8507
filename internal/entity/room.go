package entity

import "time"

// Room is one game's isolated state plus its two player seats.
// A seat maps a mark to the connection currently holding it; at most two
// seats exist and X is always filled at creation.
type Room struct {
	ID         string
	Game       *Game
	Seats      map[string]string // mark -> connection id
	LastActive time.Time
}

func NewRoom(id, creatorConnID string) *Room {
	return &Room{
		ID:         id,
		Game:       NewGame(),
		Seats:      map[string]string{PlayerX: creatorConnID},
		LastActive: time.Now(),
	}
}

// SeatOf - resolves the mark held by a connection, if any.
func (that *Room) SeatOf(connID string) (string, bool) {
	for mark, occupant := range that.Seats {
		if occupant == connID {
			return mark, true
		}
	}
	return "", false
}

// Vacate - frees every seat held by the connection and reports whether
// occupancy changed.
func (that *Room) Vacate(connID string) bool {
	changed := false
	for mark, occupant := range that.Seats {
		if occupant == connID {
			delete(that.Seats, mark)
			changed = true
		}
	}
	return changed
}

func (that *Room) Occupants() int {
	return len(that.Seats)
}

func (that *Room) IsFull() bool {
	return len(that.Seats) == 2
}

func (that *Room) IsEmpty() bool {
	return len(that.Seats) == 0
}

func (that *Room) Touch() {
	that.LastActive = time.Now()
}
