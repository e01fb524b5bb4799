package table

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func card(r Rank) Card {
	return NewCard(IdentityOf(r, Spades), 1, time.Time{})
}

func TestIdentityRoundTrip(t *testing.T) {
	for v := 0; v < DeckSize; v++ {
		id, err := ParseIdentity(v)
		assert.NoError(t, err)
		assert.Equal(t, id, IdentityOf(id.Rank(), id.Suit()))
		assert.True(t, id.Rank() >= Ace && id.Rank() <= King)
		assert.True(t, id.Suit() <= Spades)
	}
}

func TestParseIdentityRejectsOutOfRange(t *testing.T) {
	for _, v := range []int{-1, 52, 200} {
		_, err := ParseIdentity(v)
		assert.True(t, errors.Is(err, ErrInvalidIdentity), "value %d", v)
	}
}

func TestRankValue(t *testing.T) {
	assert.Equal(t, 11, Ace.Value())
	assert.Equal(t, 2, Two.Value())
	assert.Equal(t, 9, Nine.Value())
	for _, r := range []Rank{Ten, Jack, Queen, King} {
		assert.Equal(t, 10, r.Value())
	}
}

func TestHandTotals(t *testing.T) {
	tests := []struct {
		name      string
		cards     []Rank
		total     int
		soft      bool
		busted    bool
		blackjack bool
	}{
		{"soft 17", []Rank{Ace, Six}, 17, true, false, false},
		{"soft 17 plus nine", []Rank{Ace, Six, Nine}, 16, false, false, false},
		{"blackjack", []Rank{Ace, King}, 21, true, false, true},
		{"three card 21 is not blackjack", []Rank{Seven, Seven, Seven}, 21, false, false, false},
		{"double ace", []Rank{Ace, Ace}, 12, true, false, false},
		{"bust", []Rank{Ten, Five, Eight}, 23, false, true, false},
		{"two aces and nine", []Rank{Ace, Ace, Nine}, 21, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h PlayerHand
			for _, r := range tt.cards {
				h.Add(card(r))
			}
			assert.Equal(t, tt.total, h.Total)
			assert.Equal(t, tt.soft, h.IsSoft)
			assert.Equal(t, tt.busted, h.IsBusted)
			assert.Equal(t, tt.blackjack, h.IsBlackjack)
		})
	}
}

func TestHandPairFlags(t *testing.T) {
	var h PlayerHand
	h.Add(card(King))
	h.Add(card(King))
	assert.True(t, h.CanSplit)
	assert.True(t, h.CanDouble)

	h.Add(card(Two))
	assert.False(t, h.CanSplit)
	assert.False(t, h.CanDouble)

	var mixed PlayerHand
	mixed.Add(card(King))
	mixed.Add(card(Queen))
	assert.False(t, mixed.CanSplit, "equal value but different rank is not a pair")
}

func TestHandClone(t *testing.T) {
	var h PlayerHand
	h.Add(card(Ace))
	c := h.Clone()
	c.Cards[0] = card(Two)
	assert.Equal(t, Ace, h.Cards[0].Rank)
}
