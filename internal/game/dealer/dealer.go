// Package dealer 模拟发牌靴，代替感知模块给引擎喂帧
package dealer

import (
	"math/rand"

	"BlackjackAdvisor/internal/game/table"
)

// Dealer 只负责洗牌与发牌（无规则判断）
type Dealer struct {
	shoe  []table.Identity
	decks int
	dealt int
	rnd   *rand.Rand
}

func NewDealer(seed int64) *Dealer {
	return &Dealer{
		decks: 1,
		rnd:   rand.New(rand.NewSource(seed)),
	}
}

// NewShoe 初始化 decks 副牌并洗牌
func (d *Dealer) NewShoe(decks int) {
	if decks < 1 {
		decks = 1
	}
	d.decks = decks
	d.shoe = d.makeShoe()
	d.dealt = 0
	d.shuffle()
}

func (d *Dealer) makeShoe() []table.Identity {
	shoe := make([]table.Identity, 0, d.decks*table.DeckSize)
	for n := 0; n < d.decks; n++ {
		for id := 0; id < table.DeckSize; id++ {
			shoe = append(shoe, table.Identity(id))
		}
	}
	return shoe
}

func (d *Dealer) shuffle() {
	d.rnd.Shuffle(len(d.shoe), func(i, j int) {
		d.shoe[i], d.shoe[j] = d.shoe[j], d.shoe[i]
	})
}

// Draw 发一张牌，牌靴空了自动换新靴
func (d *Dealer) Draw() table.Identity {
	if len(d.shoe) == 0 {
		d.NewShoe(d.decks)
	}
	id := d.shoe[0]
	d.shoe = d.shoe[1:]
	d.dealt++
	return id
}

func (d *Dealer) Remaining() int { return len(d.shoe) }
func (d *Dealer) Dealt() int     { return d.dealt }
func (d *Dealer) Decks() int     { return d.decks }

// Penetration 已发出的比例
func (d *Dealer) Penetration() float64 {
	return float64(d.dealt) / float64(d.decks*table.DeckSize)
}

// Jitter 模拟识别置信度 [0.85, 1)
func (d *Dealer) Jitter() float64 {
	return 0.85 + d.rnd.Float64()*0.15
}
