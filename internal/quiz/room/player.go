package room

import (
	"strconv"

	"github.com/enescakir/emoji"

	"github.com/quizparty-games/quizparty/internal/strpool"
)

func NewPlayer(id, name string, host bool) *Player {
	return &Player{
		ID:      id,
		Name:    name,
		Host:    host,
		Granted: map[ExtraID]bool{},
		Used:    map[ExtraID]bool{},
	}
}

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Host bool   `json:"host"`

	Granted map[ExtraID]bool `json:"granted"`
	Used    map[ExtraID]bool `json:"used"`

	Score          int `json:"score"`
	PenaltyPoints  int `json:"penaltyPoints"`
	PointsRestored int `json:"pointsRestored"`

	Connected bool `json:"connected"`
}

func (p *Player) Grant(extras ...ExtraID) {
	for _, e := range extras {
		p.Granted[e] = true
	}
}

// Display renders the name shown on leaderboards. It is rebuilt on every
// broadcast, so the builder comes from the pool.
func (p *Player) Display() string {
	b := strpool.Get()
	defer func() {
		b.Reset()
		strpool.Put(b)
	}()

	b.WriteString(p.Name)
	if p.Host {
		b.WriteString(" ")
		b.WriteString(emoji.Crown.String())
	}
	if p.Score != 0 {
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(p.Score))
		b.WriteString(emoji.Star.String())
		b.WriteString(")")
	}
	return b.String()
}
