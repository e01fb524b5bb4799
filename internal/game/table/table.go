package table

import (
	"errors"
	"fmt"
	"time"
)

// DeckSize 一副牌的张数
const DeckSize = 52

var ErrInvalidIdentity = errors.New("card identity out of range")

// Identity 感知模块输出的牌编号 [0,52)
//
// 编码规则: suit*13 + (rank-1)，与识别模型的类别顺序一致
type Identity uint8

// ParseIdentity 边界校验，越界的编号不允许进入核心组件
func ParseIdentity(v int) (Identity, error) {
	if v < 0 || v >= DeckSize {
		return 0, fmt.Errorf("%w: %d", ErrInvalidIdentity, v)
	}
	return Identity(v), nil
}

func (id Identity) Rank() Rank { return Rank(id%13) + Ace }
func (id Identity) Suit() Suit { return Suit(id / 13) }

func (id Identity) String() string {
	return id.Rank().String() + id.Suit().String()
}

// IdentityOf 由点数和花色反算编号
func IdentityOf(r Rank, s Suit) Identity {
	return Identity(uint8(s)*13 + uint8(r-Ace))
}

// Rank 点数 (A=1 ... K=13)
type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Value 二十一点牌值：A 记 11，人头牌记 10
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten:
		return 10
	}
	return int(r)
}

func (r Rank) String() string {
	names := map[Rank]string{
		Ace:   "A",
		Ten:   "T",
		Jack:  "J",
		Queen: "Q",
		King:  "K",
	}
	if s, ok := names[r]; ok {
		return s
	}
	if r < Ace || r > King {
		return "?"
	}
	return fmt.Sprintf("%d", r)
}

// Suit 花色，顺序与识别模型一致
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

func (s Suit) String() string {
	suits := []string{"♥", "♦", "♣", "♠"}
	if int(s) < len(suits) {
		return suits[s]
	}
	return "?"
}

// Card 已确认的一张牌
type Card struct {
	ID         Identity  `json:"id"`
	Rank       Rank      `json:"rank"`
	Suit       Suit      `json:"suit"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewCard(id Identity, confidence float64, ts time.Time) Card {
	return Card{
		ID:         id,
		Rank:       id.Rank(),
		Suit:       id.Suit(),
		Confidence: confidence,
		Timestamp:  ts,
	}
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}
