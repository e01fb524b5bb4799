package shuffle

import (
	"math/rand"
	"testing"
	"time"

	"BlackjackAdvisor/internal/game/table"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)

func newDetector(mut func(*Config)) *Detector {
	cfg := DefaultConfig()
	if mut != nil {
		mut(&cfg)
	}
	return New(cfg, nil, t0)
}

func feed(d *Detector, from, n int) Indicator {
	var ind Indicator
	for i := from; i < from+n; i++ {
		d.ObserveFrame(false)
		ind = d.Confirm(table.Identity(i%table.DeckSize), t0)
	}
	return ind
}

// 6 副牌、75% 渗透、默认 500 条窗口：第 234 张触发，第 233 张不触发
func TestPenetrationReachedOnExactCard(t *testing.T) {
	d := newDetector(nil)
	assert.Equal(t, 500, d.cfg.HistorySize)

	for i := 0; i < 233; i++ {
		d.ObserveFrame(false)
		assert.Equal(t, None, d.Confirm(table.Identity(i%table.DeckSize), t0), "card %d", i+1)
	}
	assert.Equal(t, 233, d.Inventory().TotalSeen)

	assert.Equal(t, PenetrationReached, d.Confirm(table.Identity(233%table.DeckSize), t0))
	assert.True(t, d.IsShuffleDetected())
	assert.Equal(t, 234, d.Inventory().TotalSeen)
}

// 洗乱的 6 副牌一路发下去，第一个信号就是渗透率
func TestShuffledShoeRunsToPenetration(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rnd := rand.New(rand.NewSource(seed))
		d := newDetector(nil)
		shoe := rnd.Perm(6 * table.DeckSize)

		var ind Indicator
		n := 0
		for _, c := range shoe {
			n++
			d.ObserveFrame(false)
			if ind = d.Confirm(table.Identity(c%table.DeckSize), t0); ind != None {
				break
			}
		}
		assert.Equal(t, PenetrationReached, ind, "seed %d", seed)
		assert.Equal(t, 234, n, "seed %d", seed)
	}
}

// 多副牌里，最近记录中的份数不超过副数就不算重复
func TestRepeatWithinShoeAllowance(t *testing.T) {
	d := newDetector(nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, None, d.Confirm(table.Identity(i), t0), "card %d", i)
	}
	for k := 0; k < 5; k++ {
		assert.Equal(t, None, d.Confirm(table.Identity(3), t0), "copy %d", k+2)
	}
	assert.Equal(t, 6, d.recent.Count(3))
	assert.False(t, d.IsShuffleDetected())
}

// 第三张同编号超出两副牌的份数；库存检查优先于窗口重复
func TestRepeatBeyondShoeAllowance(t *testing.T) {
	d := newDetector(func(c *Config) { c.DeckCount = 2 })
	for i := 0; i < 10; i++ {
		d.Confirm(table.Identity(i), t0)
	}
	assert.Equal(t, None, d.Confirm(table.Identity(3), t0))
	assert.Equal(t, CardDepletion, d.Confirm(table.Identity(3), t0))
	assert.Equal(t, 3, d.recent.Count(3))
}

func TestCardDepletionHasPriority(t *testing.T) {
	d := newDetector(func(c *Config) { c.DeckCount = 1 })
	for i := 0; i < 10; i++ {
		d.Confirm(table.Identity(i), t0)
	}
	// 既超出单副牌的数量，又在最近记录里重复
	assert.Equal(t, CardDepletion, d.Confirm(table.Identity(4), t0))
}

func TestCardDepletionWithoutMinimumCards(t *testing.T) {
	d := newDetector(func(c *Config) { c.DeckCount = 1 })
	d.Confirm(table.Identity(8), t0)
	assert.Equal(t, CardDepletion, d.Confirm(table.Identity(8), t0))
}

func TestLongPause(t *testing.T) {
	d := newDetector(nil)
	feed(d, 0, 26)

	assert.Equal(t, None, d.Evaluate(t0.Add(29*time.Second)))
	assert.Equal(t, LongPause, d.Evaluate(t0.Add(30*time.Second)))
	assert.Equal(t, 30*time.Second, d.TimeSinceLastCard(t0.Add(30*time.Second)))
}

func TestLongPauseNeedsMinimumCards(t *testing.T) {
	d := newDetector(nil)
	feed(d, 0, 25)
	assert.Equal(t, None, d.Evaluate(t0.Add(time.Hour)))
}

func TestAllCardsGone(t *testing.T) {
	d := newDetector(nil)
	feed(d, 0, 26)

	for i := 0; i < 59; i++ {
		d.ObserveFrame(true)
		assert.Equal(t, None, d.Evaluate(t0))
	}
	d.ObserveFrame(true)
	assert.Equal(t, AllCardsGone, d.Evaluate(t0))
}

func TestAllCardsGoneCounterRestartsBelowMinimum(t *testing.T) {
	d := newDetector(nil)
	feed(d, 0, 20)
	for i := 0; i < 60; i++ {
		d.ObserveFrame(true)
		d.Evaluate(t0)
	}
	assert.False(t, d.IsShuffleDetected())

	feed(d, 20, 6)
	for i := 0; i < 59; i++ {
		d.ObserveFrame(true)
		assert.Equal(t, None, d.Evaluate(t0))
	}
}

func TestIndicatorIsStickyUntilReset(t *testing.T) {
	d := newDetector(func(c *Config) { c.DeckCount = 1 })
	d.Confirm(table.Identity(1), t0)
	assert.Equal(t, CardDepletion, d.Confirm(table.Identity(1), t0))

	// 之后即便满足别的条件也不会改变
	assert.Equal(t, CardDepletion, d.Evaluate(t0.Add(time.Hour)))

	d.Reset(t0)
	assert.False(t, d.IsShuffleDetected())
	assert.Equal(t, None, d.LastIndicator())
	assert.Equal(t, 0, d.Inventory().TotalSeen)
	assert.Equal(t, None, d.Confirm(table.Identity(1), t0))
}

func TestResetTwiceEqualsOnce(t *testing.T) {
	d := newDetector(nil)
	feed(d, 0, 30)
	d.Reset(t0)
	once := d.Inventory()
	d.ForceReset(t0)
	assert.Equal(t, once, d.Inventory())
	assert.Equal(t, 0, d.recent.Len())
}

// isImpossible 当且仅当某张超出副数或总数超出牌靴
func TestInventoryImpossibleProperty(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for trial := 0; trial < 500; trial++ {
		decks := 1 + rnd.Intn(8)
		inv := Inventory{DeckCount: decks}
		n := rnd.Intn(decks*table.DeckSize + 20)
		for i := 0; i < n; i++ {
			inv.Add(table.Identity(rnd.Intn(table.DeckSize)))
		}

		want := inv.TotalSeen > decks*table.DeckSize
		for _, c := range inv.PerIdentity {
			if c > decks {
				want = true
			}
		}
		assert.Equal(t, want, inv.IsImpossible(), "trial %d", trial)
	}
}

func TestHistoryEviction(t *testing.T) {
	h := newHistory(3)
	h.Push(1)
	h.Push(2)
	h.Push(3)
	h.Push(4) // 挤掉 1
	h.Push(2) // 挤掉 2
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 0, h.Count(1))
	assert.Equal(t, 1, h.Count(2))
	assert.Equal(t, 1, h.Count(4))

	h.Push(2) // 挤掉 3
	assert.Equal(t, 2, h.Count(2))
	assert.Equal(t, 0, h.Count(3))
}

func TestIndicatorNames(t *testing.T) {
	assert.Equal(t, "penetration_reached", PenetrationReached.String())
	b, err := DuplicateCard.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "duplicate_card", string(b))
}
