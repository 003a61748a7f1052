package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const privateKeyEnv = "FOURCHAN_PRIVATE_KEY"

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Log     Log     `yaml:"log"`
	Http    Http    `yaml:"http"`
	Relays  Relays  `yaml:"relays" validate:"required"`
	Service Service `yaml:"service"`
	Store   Store   `yaml:"store" validate:"required"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Http struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	WritesPerMin   int           `yaml:"writes_per_minute"` // per client ip, for publishing routes
}

type RelayEntry struct {
	URL   string `yaml:"url" validate:"required,url"`
	Read  bool   `yaml:"read"`
	Write bool   `yaml:"write"`
}

type Relays struct {
	Defaults       []RelayEntry      `yaml:"defaults" validate:"required,min=1,dive"`
	ConnectTimeout time.Duration     `yaml:"connect_timeout"`
	QueryTimeout   time.Duration     `yaml:"query_timeout"`
	PublishTimeout time.Duration     `yaml:"publish_timeout"`
	AutoConnect    bool              `yaml:"auto_connect"`
	AutoReconnect  bool              `yaml:"auto_reconnect"`
	ReconnectDelay time.Duration     `yaml:"reconnect_delay"`
	Migrations     map[string]string `yaml:"migrations"` // failed legacy url -> replacement
}

type Service struct {
	PostBatchSize     int `yaml:"post_batch_size"`    // thread ids per batched post query
	NotificationLimit int `yaml:"notification_limit"` // default page size for notification listing
}

type Store struct {
	Driver    string `yaml:"driver" validate:"required,oneof=memory sqlite3 postgres"`
	Path      string `yaml:"path" validate:"required_if=Driver sqlite3"`
	Namespace string `yaml:"namespace"`
	Pg        Pg     `yaml:"pg"`
}

type Pg struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Dbname string `yaml:"dbname"`
}

type Private struct {
	PrivateKey string `yaml:"private_key"`
	PgPassword string `yaml:"pg_password"`
}

func (c *Config) PrivateKey() string {
	return c.Private.PrivateKey
}

// PgDSN builds a lib/pq connection string from the public and private parts.
func (c *Config) PgDSN() string {
	pg := c.Public.Store.Pg
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		pg.Host, pg.Port, pg.User, c.Private.PgPassword, pg.Dbname)
}

func (p *Public) applyDefaults() {
	if p.Log.Level == "" {
		p.Log.Level = "info"
	}
	if p.Http.Addr == "" {
		p.Http.Addr = ":8090"
	}
	if p.Http.ReadTimeout == 0 {
		p.Http.ReadTimeout = 5 * time.Second
	}
	if p.Http.WriteTimeout == 0 {
		p.Http.WriteTimeout = 30 * time.Second
	}
	if p.Http.WritesPerMin == 0 {
		p.Http.WritesPerMin = 30
	}
	if p.Relays.ConnectTimeout == 0 {
		p.Relays.ConnectTimeout = 5 * time.Second
	}
	if p.Relays.QueryTimeout == 0 {
		p.Relays.QueryTimeout = 10 * time.Second
	}
	if p.Relays.PublishTimeout == 0 {
		p.Relays.PublishTimeout = 10 * time.Second
	}
	if p.Relays.ReconnectDelay == 0 {
		p.Relays.ReconnectDelay = 5 * time.Second
	}
	if p.Service.PostBatchSize == 0 {
		p.Service.PostBatchSize = 100
	}
	if p.Service.NotificationLimit == 0 {
		p.Service.NotificationLimit = 50
	}
	if p.Store.Namespace == "" {
		p.Store.Namespace = "4ochan"
	}
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %v", configPath, err))
	}
}

// MustLoad reads public.yaml, private.yaml and an optional .env from configFolder.
// The private key may be overridden with FOURCHAN_PRIVATE_KEY.
func MustLoad(configFolder string) *Config {
	if err := godotenv.Load(path.Join(configFolder, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("can't load .env: " + err.Error())
	}

	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.applyDefaults()

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)
	if key := os.Getenv(privateKeyEnv); key != "" {
		private.PrivateKey = key
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&public); err != nil {
		panic("invalid config: " + err.Error())
	}

	return &Config{public, private}
}
