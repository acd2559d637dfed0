package auth

import (
	"os"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// EnvConfig is a process-wide Config implementation loaded once at startup.
// Values are immutable for the lifetime of the service.
type EnvConfig struct {
	SigningKey      string
	TokenExpiration int
	Issuer          string
	Audience        []string
	BcryptCost      int
	ResetTokenTTL   time.Duration
}

var _ Config = (*EnvConfig)(nil)

// LoadEnvConfig reads configuration from the environment. JWT_SECRET is
// required; everything else has a default.
//
//	JWT_SECRET            signing secret for bearer tokens (required)
//	TOKEN_EXPIRATION      token horizon in hours (default 1)
//	TOKEN_ISSUER          iss claim (default empty, claim omitted)
//	TOKEN_AUDIENCE        comma separated aud claim (default empty)
//	BCRYPT_COST           adaptive hash cost (default 14)
//	RESET_TOKEN_TTL       recovery token horizon (default 1h)
func LoadEnvConfig() (*EnvConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, goerrors.New("missing required environment variable: JWT_SECRET", goerrors.CategoryBadInput)
	}

	cfg := &EnvConfig{
		SigningKey:      secret,
		TokenExpiration: getEnvInt("TOKEN_EXPIRATION", 1),
		Issuer:          os.Getenv("TOKEN_ISSUER"),
		BcryptCost:      getEnvInt("BCRYPT_COST", DefaultBcryptCost),
		ResetTokenTTL:   getEnvDuration("RESET_TOKEN_TTL", DefaultResetTokenTTL),
	}

	if aud := os.Getenv("TOKEN_AUDIENCE"); aud != "" {
		for _, a := range strings.Split(aud, ",") {
			if a = strings.TrimSpace(a); a != "" {
				cfg.Audience = append(cfg.Audience, a)
			}
		}
	}

	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string { return c.SigningKey }

func (c *EnvConfig) GetTokenExpiration() int {
	if c.TokenExpiration < 1 {
		return 1
	}
	return c.TokenExpiration
}

func (c *EnvConfig) GetIssuer() string { return c.Issuer }

func (c *EnvConfig) GetAudience() []string { return c.Audience }

func (c *EnvConfig) GetBcryptCost() int {
	if c.BcryptCost == 0 {
		return DefaultBcryptCost
	}
	return c.BcryptCost
}

func (c *EnvConfig) GetResetTokenTTL() time.Duration {
	if c.ResetTokenTTL <= 0 {
		return DefaultResetTokenTTL
	}
	return c.ResetTokenTTL
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
