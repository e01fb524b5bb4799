package strategy

import "fmt"

// Action 推荐动作，封闭枚举
type Action uint8

const (
	Hit Action = iota + 1
	Stand
	Double
	Split
	Surrender
)

var actionNames = map[Action]string{
	Hit:       "HIT",
	Stand:     "STAND",
	Double:    "DOUBLE",
	Split:     "SPLIT",
	Surrender: "SURRENDER",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "UNKNOWN"
}

func (a Action) MarshalText() ([]byte, error) {
	if _, ok := actionNames[a]; !ok {
		return nil, fmt.Errorf("invalid action %d", a)
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Actions 所有合法动作，顺序固定
func Actions() []Action {
	return []Action{Hit, Stand, Double, Split, Surrender}
}
