// Package config loads the YAML settings of the eserial command and builds
// the components they describe.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"eserial/compress"
	"eserial/wire"
)

const (
	StoreFile  = "file"
	StoreRedis = "redis"
	StoreEtcd  = "etcd"
)

type Config struct {
	Codec      Codec  `yaml:"codec"`
	Compressor string `yaml:"compressor"`
	// MaxBody caps uncompressed snapshot bodies, zero keeps the default.
	MaxBody int64   `yaml:"max_body"`
	Store   Store   `yaml:"store"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`
}

type Codec struct {
	// zero disables the cap
	MaxObjects uint32 `yaml:"max_objects"`
	MaxLen     uint32 `yaml:"max_len"`
	BufferPool bool   `yaml:"buffer_pool"`
}

type Store struct {
	Kind  string     `yaml:"kind"`
	File  FileStore  `yaml:"file"`
	Redis RedisStore `yaml:"redis"`
	Etcd  EtcdStore  `yaml:"etcd"`
}

type FileStore struct {
	Dir string `yaml:"dir"`
	Ext string `yaml:"ext"`
}

type RedisStore struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type EtcdStore struct {
	Endpoints   []string      `yaml:"endpoints"`
	Prefix      string        `yaml:"prefix"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default matches the demo of the command: a file store in the working
// directory and no compression.
func Default() *Config {
	return &Config{
		Codec: Codec{MaxLen: wire.DefaultMaxLen},
		Store: Store{
			Kind: StoreFile,
			File: FileStore{Dir: ".", Ext: ".out.bin"},
			Redis: RedisStore{
				Addr:   "localhost:6379",
				Prefix: "eserial:",
			},
			Etcd: EtcdStore{
				Endpoints:   []string{"localhost:2379"},
				Prefix:      "/eserial/",
				DialTimeout: 3 * time.Second,
			},
		},
		Log:     Log{Level: "info"},
		Metrics: Metrics{Namespace: "eserial"},
	}
}

// Load reads YAML from r over the defaults.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}

func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreFile:
		if c.Store.File.Dir == "" {
			return errors.New("config: store.file.dir is empty")
		}
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			return errors.New("config: store.redis.addr is empty")
		}
	case StoreEtcd:
		if len(c.Store.Etcd.Endpoints) == 0 {
			return errors.New("config: store.etcd.endpoints is empty")
		}
	default:
		return fmt.Errorf("config: unknown store kind %q", c.Store.Kind)
	}
	if _, err := compress.ByName(c.Compressor); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Logger builds a zap logger writing JSON to stderr, or a console logger in
// development mode.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: c.Log.Development,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	if c.Log.Development {
		cfg.Sampling = nil
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return cfg.Build()
}
