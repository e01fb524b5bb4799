package strategy

// InsuranceIndex 保险的真数门槛
const InsuranceIndex = 3.0

// step 真数 >= MinTC 时执行 Action
type step struct {
	MinTC  float64
	Action Action
}

// Deviation 一条偏离打法。Steps 按门槛从高到低排列，都不满足时 Hit
type Deviation struct {
	Total  int
	Upcard int   // 牌值，A 为 11
	Rules  Rules // 空表示所有规则
	Steps  []step
}

func (d Deviation) resolve(trueCount float64) Action {
	for _, s := range d.Steps {
		if trueCount >= s.MinTC {
			return s.Action
		}
	}
	return Hit
}

func at(tc float64, a Action) []step { return []step{{tc, a}} }

// deviations Illustrious 18 的打法部分加 Fab 4 投降，按价值排序
//
// 同一个 (点数, 明牌) 只应出现一次，否则后面的永远不会命中
var deviations = []Deviation{
	{Total: 16, Upcard: 10, Steps: at(0, Stand)},
	{Total: 15, Upcard: 10, Steps: at(0, Surrender)},
	{Total: 16, Upcard: 9, Steps: at(5, Stand)},
	{Total: 13, Upcard: 2, Steps: at(-1, Stand)},
	{Total: 13, Upcard: 3, Steps: at(-2, Stand)},
	{Total: 11, Upcard: 11, Steps: at(1, Double)},
	{Total: 10, Upcard: 10, Steps: at(4, Double)},
	{Total: 10, Upcard: 11, Steps: at(4, Double)},
	{Total: 9, Upcard: 2, Steps: at(1, Double)},
	{Total: 9, Upcard: 7, Steps: at(3, Double)},
	{Total: 12, Upcard: 3, Steps: at(2, Stand)},
	{Total: 12, Upcard: 2, Steps: at(3, Stand)},
	{Total: 16, Upcard: 11, Steps: at(2, Stand)},
	{Total: 12, Upcard: 4, Steps: at(0, Stand)},
	{Total: 12, Upcard: 5, Steps: at(-2, Stand)},
	{Total: 12, Upcard: 6, Steps: at(-1, Stand)},

	// Fab 4
	{Total: 14, Upcard: 10, Steps: at(3, Surrender)},
	{Total: 15, Upcard: 9, Steps: at(2, Surrender)},
	{Total: 15, Upcard: 11, Rules: S17DAS, Steps: at(1, Surrender)},
	{Total: 15, Upcard: 11, Rules: H17DAS, Steps: at(-1, Surrender)},
}

// Deviations 返回偏离表副本
func Deviations() []Deviation {
	return append([]Deviation(nil), deviations...)
}

// splitByCount 10,10 对 5 和 6 在高真数下分牌
func splitByCount(cardValue, upcard int, trueCount float64) bool {
	if cardValue != 10 {
		return false
	}
	switch upcard {
	case 5:
		return trueCount >= 5
	case 6:
		return trueCount >= 4
	}
	return false
}
