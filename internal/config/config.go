package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game      GameConfig      `toml:"game"`
	Physics   PhysicsConfig   `toml:"physics"`
	Merkaba   MerkabaConfig   `toml:"merkaba"`
	Data      DataConfig      `toml:"data"`
	Database  DatabaseConfig  `toml:"database"`
	Feed      FeedConfig      `toml:"feed"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
}

type GameConfig struct {
	TickRate          time.Duration `toml:"tick_rate"`
	StartLevel        uint32        `toml:"start_level"`
	Lives             int           `toml:"lives"`
	MilestoneInterval uint32        `toml:"milestone_interval"`
	MilestoneLives    bool          `toml:"milestone_extra_life"`
	CompletionDelay   time.Duration `toml:"completion_delay"`
	RespawnDelay      time.Duration `toml:"respawn_delay"`
	DefaultGravity    [3]float64    `toml:"default_gravity"`
	Seed              int64         `toml:"seed"`      // 0 = time based
	MaxTicks          uint64        `toml:"max_ticks"` // 0 = until replay ends
}

// MaterialConfig is one physics material block.
type MaterialConfig struct {
	Restitution    float64 `toml:"restitution"`
	Friction       float64 `toml:"friction"`
	LinearDamping  float64 `toml:"linear_damping"`
	AngularDamping float64 `toml:"angular_damping"`
}

type PhysicsConfig struct {
	Ball   MaterialConfig `toml:"ball"`
	Paddle MaterialConfig `toml:"paddle"`
	Brick  MaterialConfig `toml:"brick"`
}

type MerkabaConfig struct {
	SpawnDelay       time.Duration `toml:"spawn_delay"`
	AngleVarianceDeg float64       `toml:"angle_variance_deg"`
	MinSpeed         float64       `toml:"min_speed"`
}

type DataConfig struct {
	LevelDir   string `toml:"level_dir"`
	BrickTable string `toml:"brick_table"`
	Replay     string `toml:"replay"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables persistence
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type FeedConfig struct {
	Enabled      bool          `toml:"enabled"`
	BindAddress  string        `toml:"bind_address"`
	QueueSize    int           `toml:"queue_size"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config { return defaults() }

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			TickRate:          time.Second / 60,
			StartLevel:        1,
			Lives:             3,
			MilestoneInterval: 5000,
			CompletionDelay:   time.Second,
			RespawnDelay:      time.Second,
			DefaultGravity:    [3]float64{2, 0, 0},
		},
		Physics: PhysicsConfig{
			Ball: MaterialConfig{
				Restitution:    0.9,
				Friction:       2.0,
				LinearDamping:  0.5,
				AngularDamping: 0.5,
			},
			Paddle: MaterialConfig{
				Restitution:    0.7,
				Friction:       2.0,
				LinearDamping:  0.5,
				AngularDamping: 0.5,
			},
			Brick: MaterialConfig{
				Restitution: 1.0,
				Friction:    1.0,
			},
		},
		Merkaba: MerkabaConfig{
			SpawnDelay:       500 * time.Millisecond,
			AngleVarianceDeg: 20,
			MinSpeed:         3,
		},
		Data: DataConfig{
			LevelDir:   "data/levels",
			BrickTable: "data/brick_table.yaml",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Feed: FeedConfig{
			BindAddress:  "127.0.0.1:7080",
			QueueSize:    256,
			WriteTimeout: 5 * time.Second,
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks tuning values. Every problem is reported, joined.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.Physics.Ball.validate("physics.ball")...)
	errs = append(errs, c.Physics.Paddle.validate("physics.paddle")...)
	errs = append(errs, c.Physics.Brick.validate("physics.brick")...)

	if c.Game.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("game.tick_rate must be positive, got %s", c.Game.TickRate))
	}
	if c.Game.Lives < 1 {
		errs = append(errs, fmt.Errorf("game.lives must be at least 1, got %d", c.Game.Lives))
	}
	if c.Game.MilestoneInterval == 0 {
		errs = append(errs, errors.New("game.milestone_interval must be greater than 0"))
	}
	if c.Game.CompletionDelay < 0 {
		errs = append(errs, fmt.Errorf("game.completion_delay must not be negative, got %s", c.Game.CompletionDelay))
	}
	if c.Game.RespawnDelay < 0 {
		errs = append(errs, fmt.Errorf("game.respawn_delay must not be negative, got %s", c.Game.RespawnDelay))
	}
	for i, g := range c.Game.DefaultGravity {
		if math.IsNaN(g) || g < -30 || g > 30 {
			errs = append(errs, fmt.Errorf("game.default_gravity[%d] must be within [-30, 30], got %g", i, g))
		}
	}
	if c.Merkaba.SpawnDelay < 0 {
		errs = append(errs, fmt.Errorf("merkaba.spawn_delay must not be negative, got %s", c.Merkaba.SpawnDelay))
	}
	if c.Merkaba.MinSpeed < 0 {
		errs = append(errs, fmt.Errorf("merkaba.min_speed must not be negative, got %g", c.Merkaba.MinSpeed))
	}
	if c.Feed.Enabled && c.Feed.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("feed.queue_size must be at least 1, got %d", c.Feed.QueueSize))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func (m MaterialConfig) validate(section string) []error {
	var errs []error
	if m.Restitution < 0 || m.Restitution > 2 {
		errs = append(errs, fmt.Errorf("%s.restitution must be within [0, 2], got %g", section, m.Restitution))
	}
	if m.Friction < 0 || m.Friction > 2 {
		errs = append(errs, fmt.Errorf("%s.friction must be within [0, 2], got %g", section, m.Friction))
	}
	if m.LinearDamping < 0 || m.LinearDamping > 10 {
		errs = append(errs, fmt.Errorf("%s.linear_damping must be within [0, 10], got %g", section, m.LinearDamping))
	}
	if m.AngularDamping < 0 || m.AngularDamping > 10 {
		errs = append(errs, fmt.Errorf("%s.angular_damping must be within [0, 10], got %g", section, m.AngularDamping))
	}
	return errs
}
