package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleDecision 强制决策时还没有完整的手牌或庄家明牌
	ErrStaleDecision = errors.New("no confirmed hand or dealer upcard")
	// ErrEngineStopped 运行循环已退出
	ErrEngineStopped = errors.New("engine stopped")

	ErrUnknownCommand = errors.New("unknown command")
)

// CommandKind 用户控制命令
type CommandKind string

const (
	CmdResetCount    CommandKind = "resetCount"
	CmdNextHand      CommandKind = "nextHand"
	CmdForceDecision CommandKind = "forceDecision"
)

func ParseCommand(s string) (CommandKind, error) {
	switch k := CommandKind(s); k {
	case CmdResetCount, CmdNextHand, CmdForceDecision:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

type command struct {
	kind  CommandKind
	reply chan error
}
