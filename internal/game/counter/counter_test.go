package counter

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"BlackjackAdvisor/internal/game/table"

	"github.com/stretchr/testify/assert"
)

func cardOf(r table.Rank) table.Card {
	return table.NewCard(table.IdentityOf(r, table.Clubs), 1, time.Time{})
}

func TestHiLoValues(t *testing.T) {
	want := map[table.Rank]int{
		table.Ace: -1, table.Two: 1, table.Three: 1, table.Four: 1, table.Five: 1, table.Six: 1,
		table.Seven: 0, table.Eight: 0, table.Nine: 0,
		table.Ten: -1, table.Jack: -1, table.Queen: -1, table.King: -1,
	}
	for r, v := range want {
		assert.Equal(t, v, HiLo(r), "rank %s", r)
	}
}

// 任意顺序下 runningCount 等于各牌 Hi-Lo 之和
func TestRunningCountIsOrderIndependent(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	cards := make([]table.Card, 0, 200)
	sum := 0
	for i := 0; i < 200; i++ {
		id := table.Identity(rnd.Intn(table.DeckSize))
		c := table.NewCard(id, 1, time.Time{})
		cards = append(cards, c)
		sum += HiLo(c.Rank)
	}

	for trial := 0; trial < 5; trial++ {
		rnd.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
		c := New(6, nil)
		for _, card := range cards {
			c.AddCard(card)
		}
		assert.Equal(t, sum, c.RunningCount())
		assert.Equal(t, len(cards), c.CardsPlayed())
	}
}

func TestTrueCount(t *testing.T) {
	c := New(6, nil)
	for i := 0; i < 52; i++ {
		c.AddCard(cardOf(table.Five))
	}
	// 剩 5 副，RC=52
	assert.InDelta(t, 52.0/5.0, c.TrueCount(), 1e-9)
}

func TestTrueCountNeverDividesByZero(t *testing.T) {
	c := New(1, nil)
	for i := 0; i < 60; i++ {
		c.AddCard(cardOf(table.Two))
		tc := c.TrueCount()
		assert.False(t, math.IsInf(tc, 0) || math.IsNaN(tc))
	}
	assert.Equal(t, 0.0, c.TrueCount())
	assert.Equal(t, 0, c.CardsRemaining())
	assert.Equal(t, 1.0, c.Penetration())

	zero := New(0, nil)
	zero.AddCard(cardOf(table.Two))
	assert.Equal(t, 0.0, zero.TrueCount())
}

func TestConfidenceDecreases(t *testing.T) {
	c := New(2, nil)
	prev := c.Confidence()
	assert.Equal(t, 1.0, prev)
	for i := 0; i < 104; i++ {
		c.AddCard(cardOf(table.Eight))
		assert.LessOrEqual(t, c.Confidence(), prev)
		prev = c.Confidence()
	}
	assert.InDelta(t, 0.5, prev, 1e-9)
}

func TestResetIsIdempotent(t *testing.T) {
	c := New(6, nil)
	c.AddCard(cardOf(table.Two))
	c.AddCard(cardOf(table.King))
	c.AddCard(cardOf(table.Three))

	c.Reset()
	once := c.State()
	c.Reset()
	assert.Equal(t, once, c.State())
	assert.Equal(t, State{DeckCount: 6}, once)
}
