package afip

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries everything a Client needs. It is an explicit value so
// several environments can coexist in one process; there is no package
// level state.
type Config struct {
	Cuit        string `env:"AFIP_CUIT"`
	CertPath    string `env:"AFIP_CERT_PATH" envDefault:"certs/certificado.crt"`
	KeyPath     string `env:"AFIP_KEY_PATH" envDefault:"certs/clave_privada.key"`
	KeyPassword string `env:"AFIP_KEY_PASSWORD"`

	Production bool `env:"AFIP_PRODUCTION" envDefault:"false"`

	// TokenTTL is the requested access ticket lifetime (WSAA caps it at
	// 12 hours; 40 minutes keeps refreshes cheap).
	TokenTTL time.Duration `env:"AFIP_TOKEN_TTL" envDefault:"40m"`

	ConnectTimeout time.Duration `env:"AFIP_CONNECT_TIMEOUT" envDefault:"10s"`
	ReadTimeout    time.Duration `env:"AFIP_READ_TIMEOUT" envDefault:"30s"`

	DefaultSalesPoint int    `env:"AFIP_SALES_POINT" envDefault:"1"`
	CacheDir          string `env:"AFIP_CACHE_DIR" envDefault:"cache"`

	// AmountTolerance is the accepted drift between ImpTotal and the sum
	// of its components. Not currency scaled; widen it for invoices in
	// coarse-grained currencies.
	AmountTolerance float64 `env:"AFIP_AMOUNT_TOLERANCE" envDefault:"0.01"`
}

// ConfigFromEnv reads the AFIP_* variables.
func ConfigFromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Environment() Environment {
	if c.Production {
		return Production
	}
	return Testing
}
