package server

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"parrotarena/game"
)

// Settings 服务进程配置：外层参数 + 注入世界的 game.Config
type Settings struct {
	Addr       string
	StaticDir  string
	LogFile    string
	LogLevel   string
	LogConsole bool

	DefaultArena     string
	BroadcastEvery   int // 每 N 个 Tick 广播一次快照
	LeaderboardEvery int
	LeaderboardSize  int
	SendQueue        int // 每个连接的发送队列长度

	Game game.Config
}

func DefaultSettings() Settings {
	return Settings{
		Addr:             ":8080",
		StaticDir:        "web",
		LogFile:          "app.log",
		LogLevel:         "debug",
		DefaultArena:     "arena-1",
		BroadcastEvery:   1,
		LeaderboardEvery: 30,
		LeaderboardSize:  10,
		SendQueue:        64,
		Game:             game.DefaultConfig(),
	}
}

// Validate 一次返回所有不合法的字段（包括世界配置）
func (s Settings) Validate() error {
	var err error
	if s.DefaultArena == "" {
		err = multierr.Append(err, errors.New("DefaultArena must not be empty"))
	}
	if s.BroadcastEvery < 1 {
		err = multierr.Append(err, fmt.Errorf("BroadcastEvery must be >= 1, got %d", s.BroadcastEvery))
	}
	if s.LeaderboardEvery < 1 {
		err = multierr.Append(err, fmt.Errorf("LeaderboardEvery must be >= 1, got %d", s.LeaderboardEvery))
	}
	if s.SendQueue < 1 {
		err = multierr.Append(err, fmt.Errorf("SendQueue must be >= 1, got %d", s.SendQueue))
	}
	return multierr.Append(err, s.Game.Validate())
}

// LoadSettings 读取可选的 .env 文件，再用 PARROT_* 环境变量覆盖默认值
// 已存在的环境变量优先于 .env 中的同名项
func LoadSettings(envFile string) (Settings, error) {
	s := DefaultSettings()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return s, errors.Wrapf(err, "load env file %s", envFile)
		}
	}
	if err := s.applyEnv(os.LookupEnv); err != nil {
		return s, errors.Wrap(err, "parse PARROT_* environment")
	}
	if err := s.Validate(); err != nil {
		return s, errors.Wrap(err, "invalid settings")
	}
	return s, nil
}

// applyEnv 逐项覆盖；解析失败的变量全部收集后一起返回
func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	var err error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				err = multierr.Append(err, errors.Wrapf(perr, "%s", key))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				err = multierr.Append(err, errors.Wrapf(perr, "%s", key))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, perr := strconv.ParseBool(v)
			if perr != nil {
				err = multierr.Append(err, errors.Wrapf(perr, "%s", key))
				return
			}
			*dst = b
		}
	}

	str("PARROT_ADDR", &s.Addr)
	str("PARROT_STATIC_DIR", &s.StaticDir)
	str("PARROT_LOG_FILE", &s.LogFile)
	str("PARROT_LOG_LEVEL", &s.LogLevel)
	boolean("PARROT_LOG_CONSOLE", &s.LogConsole)
	str("PARROT_DEFAULT_ARENA", &s.DefaultArena)
	integer("PARROT_BROADCAST_EVERY", &s.BroadcastEvery)
	integer("PARROT_LEADERBOARD_EVERY", &s.LeaderboardEvery)
	integer("PARROT_LEADERBOARD_SIZE", &s.LeaderboardSize)
	integer("PARROT_SEND_QUEUE", &s.SendQueue)

	g := &s.Game
	if v, ok := lookup("PARROT_SEED"); ok {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			err = multierr.Append(err, errors.Wrap(perr, "PARROT_SEED"))
		} else {
			g.Seed = n
		}
	}
	float("PARROT_MAP_RADIUS", &g.MapRadius)
	integer("PARROT_MAX_PLAYERS", &g.MaxPlayers)
	integer("PARROT_BOT_COUNT", &g.BotCount)
	integer("PARROT_TICK_RATE", &g.TickRate)
	integer("PARROT_FEATHER_CAP", &g.FeatherCap)
	float("PARROT_BASE_SPEED", &g.BaseSpeed)
	float("PARROT_BOOST_SPEED", &g.BoostSpeed)
	float("PARROT_BOOST_COST", &g.BoostCostRate)
	boolean("PARROT_SELF_COLLISION", &g.SelfCollision)
	str("PARROT_DEFAULT_NAME", &g.DefaultName)
	return err
}
