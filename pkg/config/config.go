package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Redis   RedisConfig
	SMTP    SMTPConfig
	Auth    AuthConfig
	Monitor MonitorConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env       string // development, staging, production
	Name      string
	LogLevel  string
	Timezone  string // zona usada para los cortes diarios/mensuales/anuales del reporte
	PublicURL string // base de los enlaces enviados por correo
}

// Location devuelve la zona horaria configurada; UTC si no se reconoce.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment indica si se corre en modo desarrollo.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	AutoMigrate bool
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string con URL encoding para caracteres especiales de la contraseña.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret          string
	Expiration      int // minutos
	ResetExpiration int // minutos de validez del enlace de restablecimiento
	Issuer          string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	BodyLimitMB int
	CORSOrigins string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig conexión opcional a Redis. Sin URL ni Address se usan almacenes en memoria.
type RedisConfig struct {
	URL          string
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CartTTL      time.Duration
}

// Enabled indica si hay un servidor Redis configurado.
func (c RedisConfig) Enabled() bool {
	return c.URL != "" || c.Address != ""
}

// SMTPConfig servidor de correo para el restablecimiento de contraseña.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled indica si hay un servidor SMTP configurado.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// AuthConfig límites del inicio de sesión.
type AuthConfig struct {
	MaxFailedLogins int
	LockoutWindow   time.Duration
}

// MonitorConfig intervalo del monitor de stock bajo.
type MonitorConfig struct {
	RefreshInterval time.Duration
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, REDIS_URL, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:       getString(v, "APP_ENV", "development"),
			Name:      getString(v, "APP_NAME", "branch-pos"),
			LogLevel:  getString(v, "LOG_LEVEL", "info"),
			Timezone:  getString(v, "APP_TIMEZONE", "UTC"),
			PublicURL: getString(v, "APP_PUBLIC_URL", "http://localhost:3000"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "branch_pos"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", false),
		},
		JWT: JWTConfig{
			Secret:          getString(v, "JWT_SECRET", ""),
			Expiration:      getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			ResetExpiration: getInt(v, "JWT_RESET_EXPIRATION_MINUTES", 30),
			Issuer:          getString(v, "JWT_ISSUER", "branch-pos"),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			BodyLimitMB: getInt(v, "HTTP_BODY_LIMIT_MB", 4),
			CORSOrigins: getString(v, "HTTP_CORS_ORIGINS", "*"),
		},
		Redis: RedisConfig{
			URL:          getString(v, "REDIS_URL", ""),
			Address:      getString(v, "REDIS_ADDRESS", ""),
			Password:     getString(v, "REDIS_PASSWORD", ""),
			DB:           getInt(v, "REDIS_DB", 0),
			PoolSize:     getInt(v, "REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt(v, "REDIS_MIN_IDLE_CONNS", 1),
			DialTimeout:  getDuration(v, "REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration(v, "REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration(v, "REDIS_WRITE_TIMEOUT", 3*time.Second),
			CartTTL:      getDuration(v, "REDIS_CART_TTL", 12*time.Hour),
		},
		SMTP: SMTPConfig{
			Host:     getString(v, "SMTP_HOST", ""),
			Port:     getInt(v, "SMTP_PORT", 587),
			User:     getString(v, "SMTP_USER", ""),
			Password: getString(v, "SMTP_PASSWORD", ""),
			From:     getString(v, "SMTP_FROM", "no-reply@branch-pos.local"),
		},
		Auth: AuthConfig{
			MaxFailedLogins: getInt(v, "AUTH_MAX_FAILED_LOGINS", 5),
			LockoutWindow:   getDuration(v, "AUTH_LOCKOUT_WINDOW", 15*time.Minute),
		},
		Monitor: MonitorConfig{
			RefreshInterval: getDuration(v, "LOW_STOCK_REFRESH_INTERVAL", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate revisa los valores que no tienen un default seguro.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		if !c.App.IsDevelopment() {
			return errors.New("config: JWT_SECRET es obligatorio fuera de development")
		}
		c.JWT.Secret = "dev-only-secret"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: HTTP_PORT inválido: %d", c.HTTP.Port)
	}
	if c.Monitor.RefreshInterval <= 0 {
		c.Monitor.RefreshInterval = 10 * time.Second
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(v.GetString(key))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

// getDuration acepta "10s", "15m" o un entero interpretado como segundos.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(v.GetString(key))
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
