package strategy

import (
	"fmt"
	"strings"
)

// 庄家明牌列顺序: 2 3 4 5 6 7 8 9 T A，对应牌值 2..11
const (
	minUpcard = 2
	maxUpcard = 11
)

// cell 表格坐标：玩家点数（对子表为单张牌值）和庄家明牌牌值
type cell struct {
	total  int
	upcard int
}

// chart 一张策略表
type chart map[cell]Action

// 字母: H=Hit S=Stand D=Double P=Split
var hardS17 = map[int]string{
	4:  "HHHHHHHHHH",
	5:  "HHHHHHHHHH",
	6:  "HHHHHHHHHH",
	7:  "HHHHHHHHHH",
	8:  "HHHHHHHHHH",
	9:  "HDDDDHHHHH",
	10: "DDDDDDDDHH",
	11: "DDDDDDDDDH",
	12: "HHSSSHHHHH",
	13: "SSSSSHHHHH",
	14: "SSSSSHHHHH",
	15: "SSSSSHHHHH",
	16: "SSSSSHHHHH",
	17: "SSSSSSSSSS",
	18: "SSSSSSSSSS",
	19: "SSSSSSSSSS",
	20: "SSSSSSSSSS",
	21: "SSSSSSSSSS",
}

var softS17 = map[int]string{
	12: "HHHHHHHHHH",
	13: "HHHDDHHHHH",
	14: "HHHDDHHHHH",
	15: "HHDDDHHHHH",
	16: "HHDDDHHHHH",
	17: "HDDDDHHHHH",
	18: "SDDDDSSHHH",
	19: "SSSSSSSSSS",
	20: "SSSSSSSSSS",
	21: "SSSSSSSSSS",
}

// 对子表按单张牌值索引，A 为 11；只记录 P，其余落到硬/软牌表
var pairsDAS = map[int]string{
	2:  "PPPPPPHHHH",
	3:  "PPPPPPHHHH",
	4:  "HHHPPHHHHH",
	5:  "HHHHHHHHHH",
	6:  "PPPPPHHHHH",
	7:  "PPPPPPHHHH",
	8:  "PPPPPPPPPP",
	9:  "PPPPPSPPSS",
	10: "SSSSSSSSSS",
	11: "PPPPPPPPPP",
}

// H17 相对 S17 的差异
var h17Overrides = map[string]map[cell]Action{
	"hard": {
		{11, 11}: Double,
	},
	"soft": {
		{18, 2}: Double,
		{19, 6}: Double,
	},
}

// mustChart 表格是编译期常量，格式错误属于程序错误
func mustChart(rows map[int]string) chart {
	c, err := parseChart(rows)
	if err != nil {
		panic(err)
	}
	return c
}

func parseChart(rows map[int]string) (chart, error) {
	out := make(chart, len(rows)*(maxUpcard-minUpcard+1))
	for total, row := range rows {
		row = strings.ReplaceAll(row, " ", "")
		if len(row) != maxUpcard-minUpcard+1 {
			return nil, fmt.Errorf("row %d: want %d columns, got %d", total, maxUpcard-minUpcard+1, len(row))
		}
		for i, ch := range row {
			var a Action
			switch ch {
			case 'H':
				a = Hit
			case 'S':
				a = Stand
			case 'D':
				a = Double
			case 'P':
				a = Split
			default:
				return nil, fmt.Errorf("row %d: bad symbol %q", total, ch)
			}
			out[cell{total, minUpcard + i}] = a
		}
	}
	return out, nil
}

// tables 三张表，构建后只读
type tables struct {
	hard  chart
	soft  chart
	pairs chart
}

func buildTables(rules Rules) tables {
	t := tables{
		hard:  mustChart(hardS17),
		soft:  mustChart(softS17),
		pairs: mustChart(pairsDAS),
	}
	if rules == H17DAS {
		for k, a := range h17Overrides["hard"] {
			t.hard[k] = a
		}
		for k, a := range h17Overrides["soft"] {
			t.soft[k] = a
		}
	}
	return t
}
