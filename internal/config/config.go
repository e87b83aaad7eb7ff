package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Auth    Auth    `envPrefix:"AUTH_"`
	Gateway Gateway `envPrefix:"GATEWAY_"`
	Cart    Cart    `envPrefix:"CART_"`
}

// Gateway holds credentials for the payment provider. SecretKey signs API
// calls and webhook payloads.
type Gateway struct {
	BaseApiURL     string        `env:"BASE_API_URL"`
	SecretKey      string        `env:"SECRET_KEY"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Cart struct {
	GuestCookieName string        `env:"GUEST_COOKIE_NAME" envDefault:"cart_token"`
	GuestCookieTTL  time.Duration `env:"GUEST_COOKIE_TTL" envDefault:"720h"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
