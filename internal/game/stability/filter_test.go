package stability

import (
	"testing"

	"BlackjackAdvisor/internal/game/table"

	"github.com/stretchr/testify/assert"
)

func ids(v ...int) []table.Identity {
	out := make([]table.Identity, 0, len(v))
	for _, x := range v {
		out = append(out, table.Identity(x))
	}
	return out
}

// 三张牌连续出现 3 帧，第 3 帧确认
func TestConfirmOnThresholdFrame(t *testing.T) {
	f := New(3)
	frame := ids(0, 13, 26)

	assert.Empty(t, f.Update(frame), "frame 1")
	assert.Empty(t, f.Update(frame), "frame 2")
	assert.Equal(t, frame, f.Update(frame), "frame 3")
	assert.Empty(t, f.Update(frame), "still present, no re-confirm")
}

func TestAbsenceResetsCounter(t *testing.T) {
	f := New(3)
	f.Update(ids(5))
	f.Update(ids(5))
	f.Update(nil)
	assert.Equal(t, 0, f.Frames(5))

	f.Update(ids(5))
	f.Update(ids(5))
	assert.Equal(t, ids(5), f.Update(ids(5)))
}

func TestReappearanceConfirmsAgain(t *testing.T) {
	f := New(2)
	f.Update(ids(7))
	assert.Equal(t, ids(7), f.Update(ids(7)))

	f.Update(nil)
	f.Update(ids(7))
	assert.Equal(t, ids(7), f.Update(ids(7)), "new physical appearance")
}

func TestDuplicatesWithinFrame(t *testing.T) {
	f := New(1)
	assert.Equal(t, ids(9, 3), f.Update(ids(9, 9, 3, 9)))
	assert.Equal(t, 1, f.Frames(9))
}

func TestResetClearsConfirmation(t *testing.T) {
	f := New(1)
	assert.Equal(t, ids(1), f.Update(ids(1)))
	f.Reset()
	assert.Equal(t, ids(1), f.Update(ids(1)))
}

func TestInvalidThresholdFallsBack(t *testing.T) {
	assert.Equal(t, DefaultThreshold, New(0).Threshold())
}
