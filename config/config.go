package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/leih-lokal/kiosk-service/pkg/logger"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"KIOSK_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"KIOSK_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ"`
	WriteTimeout time.Duration
}

// Store points at the external collection store. Credentials are supplied
// out-of-band via environment, never entered at the terminal.
type Store struct {
	BaseURL     string        `envconfig:"STORE_BASE_URL" required:"true"`
	Identity    string        `envconfig:"STORE_IDENTITY" required:"true"`
	Password    string        `envconfig:"STORE_PASSWORD" required:"true" json:"-"`
	Timeout     time.Duration `envconfig:"STORE_TIMEOUT" default:"30s"`
	AuthRefresh time.Duration `envconfig:"STORE_AUTH_REFRESH" default:"10m"`
}

type Redis struct {
	Addr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password   string        `envconfig:"REDIS_PASSWORD" json:"-"`
	DB         int           `envconfig:"REDIS_DB" default:"0"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"30m"`
}

// Kiosk carries flow policy knobs. PickupWeekday/PickupHour encode the
// placeholder slot policy (next Monday 16:00) until real scheduling lands.
type Kiosk struct {
	MaxItems          int          `envconfig:"KIOSK_MAX_ITEMS" default:"3"`
	PickupWeekday     time.Weekday `envconfig:"KIOSK_PICKUP_WEEKDAY" default:"1"`
	PickupHour        int          `envconfig:"KIOSK_PICKUP_HOUR" default:"16"`
	OTPLength         int          `envconfig:"KIOSK_OTP_LENGTH" default:"6"`
	ScopePickupByDate bool         `envconfig:"KIOSK_PICKUP_DATE_SCOPE" default:"false"`
}

type Config struct {
	Server HTTPServer `yaml:"server"`
	Store  Store
	Redis  Redis
	Kiosk  Kiosk
	Log    logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
