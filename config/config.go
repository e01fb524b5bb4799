package config

import (
	"fmt"
	"strings"
	"time"

	"BlackjackAdvisor/internal/game/betting"
	"BlackjackAdvisor/internal/game/engine"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port         string
		// AllowOrigins 为空时允许所有来源
		AllowOrigins []string
	}
	Database struct {
		DSN string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret      string
		OperatorKey string
		TTLHours    int
	}
	Log struct {
		Level string
	}
	History struct {
		// Backend memory | redis | postgres
		Backend  string
		Buffer   int
		TTLHours int
	}
	Advisor struct {
		DeckCount                  int
		PenetrationLimit           float64
		InactivityThresholdSeconds float64
		MinCardsBeforeReset        int
		StabilityFrames            int
		HistorySize                int
		EmptyFramesThreshold       int
		DecisionDebounceMs         int
		Rules                      string
		DeviationsEnabled          bool
		AutoReset                  bool
	}
	Betting struct {
		MinBet           float64
		MaxBet           float64
		KellyFraction    float64
		Bankroll         float64
		EdgePerTrueCount float64
		Spread           []int
	}
}

var C Config

func setDefaults(v *viper.Viper) {
	def := engine.DefaultOptions()

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.allowOrigins", []string{})
	v.SetDefault("database.dsn", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.operatorKey", "")
	v.SetDefault("jwt.ttlHours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("history.backend", "memory")
	v.SetDefault("history.buffer", 1024)
	v.SetDefault("history.ttlHours", 72)

	v.SetDefault("advisor.deckCount", def.DeckCount)
	v.SetDefault("advisor.penetrationLimit", def.PenetrationLimit)
	v.SetDefault("advisor.inactivityThresholdSeconds", def.InactivityThreshold.Seconds())
	v.SetDefault("advisor.minCardsBeforeReset", def.MinCardsBeforeReset)
	v.SetDefault("advisor.stabilityFrames", def.StabilityFrames)
	v.SetDefault("advisor.historySize", def.HistorySize)
	v.SetDefault("advisor.emptyFramesThreshold", def.EmptyFramesThreshold)
	v.SetDefault("advisor.decisionDebounceMs", def.DecisionDebounce.Milliseconds())
	v.SetDefault("advisor.rules", def.Rules)
	v.SetDefault("advisor.deviationsEnabled", def.Deviations)
	v.SetDefault("advisor.autoReset", def.AutoReset)

	v.SetDefault("betting.minBet", def.Betting.MinBet)
	v.SetDefault("betting.maxBet", def.Betting.MaxBet)
	v.SetDefault("betting.kellyFraction", def.Betting.KellyFraction)
	v.SetDefault("betting.bankroll", def.Bankroll)
	v.SetDefault("betting.edgePerTrueCount", def.Betting.EdgePerTrueCount)
	v.SetDefault("betting.spread", betting.DefaultSpread)
}

// Load 读取 path（为空时只用默认值和环境变量）填充 C
//
// 环境变量前缀 ADVISOR_，层级用下划线，例如 ADVISOR_ADVISOR_DECKCOUNT=8
func Load(path string) error {
	cfg, err := Read(path)
	if err != nil {
		return err
	}
	C = cfg
	return nil
}

// Read 与 Load 相同但不修改全局配置
func Read(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ADVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// EngineOptions 配置映射成会话默认参数，语义校验交给 engine.Options.Validate
func (c Config) EngineOptions() engine.Options {
	a, b := c.Advisor, c.Betting
	o := engine.DefaultOptions()
	o.DeckCount = a.DeckCount
	o.PenetrationLimit = a.PenetrationLimit
	o.InactivityThreshold = time.Duration(a.InactivityThresholdSeconds * float64(time.Second))
	o.MinCardsBeforeReset = a.MinCardsBeforeReset
	o.StabilityFrames = a.StabilityFrames
	o.HistorySize = a.HistorySize
	o.EmptyFramesThreshold = a.EmptyFramesThreshold
	o.DecisionDebounce = time.Duration(a.DecisionDebounceMs) * time.Millisecond
	o.Rules = a.Rules
	o.Deviations = a.DeviationsEnabled
	o.AutoReset = a.AutoReset
	o.Betting = betting.Config{
		MinBet:           b.MinBet,
		MaxBet:           b.MaxBet,
		KellyFraction:    b.KellyFraction,
		EdgePerTrueCount: b.EdgePerTrueCount,
		Spread:           b.Spread,
	}
	o.Bankroll = b.Bankroll
	return o
}
