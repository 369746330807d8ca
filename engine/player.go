package engine

import "github.com/minaorangina/continental/protocol"

// Player is a live connection to a seated player.
// Send must not block.
type Player interface {
	ID() string
	Name() string
	Send(msg protocol.OutboundMessage) error
	Close()
}

// Players represents the connected players of a room
type Players []Player

// NewPlayers returns a set of Players
func NewPlayers(p ...Player) Players {
	return Players(append([]Player{}, p...))
}

// AddPlayer adds a player to a set of Players
func AddPlayer(ps Players, p Player) Players {
	if _, ok := ps.Find(p.ID()); !ok {
		return Players(append(ps, p))
	}
	return ps
}

// Find finds a player by id
func (ps Players) Find(id string) (Player, bool) {
	for _, p := range ps {
		if got := p.ID(); got == id {
			return p, true
		}
	}
	return nil, false
}

// Without returns the players other than id
func (ps Players) Without(id string) Players {
	out := Players{}
	for _, p := range ps {
		if p.ID() != id {
			out = append(out, p)
		}
	}
	return out
}
