package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"study-room-booking/internal/domain/reservation"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Store   StoreConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Log     LogConfig
	Booking BookingConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Tokyo"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type StoreConfig struct {
	Timeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	// Empty disables idempotent replay of create requests.
	Addr           string        `envconfig:"REDIS_ADDR" default:""`
	Password       string        `envconfig:"REDIS_PASSWORD" default:""`
	DB             int           `envconfig:"REDIS_DB" default:"0"`
	IdempotencyTTL time.Duration `envconfig:"REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length,Location,Idempotent-Replayed"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Tokyo"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

type BookingConfig struct {
	Rooms              []string      `envconfig:"BOOKING_ROOMS" default:"1,2,3,4"`
	ClosedWeekday      string        `envconfig:"BOOKING_CLOSED_WEEKDAY" default:"Sunday"`
	WeekdayOpenHour    int           `envconfig:"BOOKING_WEEKDAY_OPEN_HOUR" default:"8"`
	WeekdayCloseHour   int           `envconfig:"BOOKING_WEEKDAY_CLOSE_HOUR" default:"18"`
	WeekendOpenHour    int           `envconfig:"BOOKING_WEEKEND_OPEN_HOUR" default:"9"`
	WeekendCloseHour   int           `envconfig:"BOOKING_WEEKEND_CLOSE_HOUR" default:"15"`
	MinPersons         int           `envconfig:"BOOKING_MIN_PERSONS" default:"2"`
	MaxDuration        time.Duration `envconfig:"BOOKING_MAX_DURATION" default:"2h"`
	ExtensionIncrement time.Duration `envconfig:"BOOKING_EXTENSION_INCREMENT" default:"2h"`
	MinAdvanceDays     int           `envconfig:"BOOKING_MIN_ADVANCE_DAYS" default:"1"`
	TimeZone           string        `envconfig:"BOOKING_TIMEZONE" default:"Local"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Rules converts the booking settings into the validator's rule set.
func (c BookingConfig) Rules() (reservation.Rules, error) {
	closed, ok := weekdays[strings.ToLower(strings.TrimSpace(c.ClosedWeekday))]
	if !ok {
		return reservation.Rules{}, fmt.Errorf("invalid BOOKING_CLOSED_WEEKDAY %q", c.ClosedWeekday)
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return reservation.Rules{}, fmt.Errorf("invalid BOOKING_TIMEZONE %q: %w", c.TimeZone, err)
	}
	for _, h := range []int{c.WeekdayOpenHour, c.WeekdayCloseHour, c.WeekendOpenHour, c.WeekendCloseHour} {
		if h < 0 || h > 24 {
			return reservation.Rules{}, fmt.Errorf("operating hour %d out of range", h)
		}
	}
	rooms := make([]string, 0, len(c.Rooms))
	for _, r := range c.Rooms {
		if r = strings.TrimSpace(r); r != "" {
			rooms = append(rooms, r)
		}
	}
	if len(rooms) == 0 {
		return reservation.Rules{}, fmt.Errorf("BOOKING_ROOMS must list at least one room")
	}

	return reservation.Rules{
		Rooms:              rooms,
		ClosedWeekday:      closed,
		WeekdayHours:       reservation.Window{Open: reservation.NewTimeOfDay(c.WeekdayOpenHour, 0), Close: reservation.NewTimeOfDay(c.WeekdayCloseHour, 0)},
		WeekendHours:       reservation.Window{Open: reservation.NewTimeOfDay(c.WeekendOpenHour, 0), Close: reservation.NewTimeOfDay(c.WeekendCloseHour, 0)},
		MinPersons:         c.MinPersons,
		MaxDuration:        c.MaxDuration,
		ExtensionIncrement: c.ExtensionIncrement,
		MinAdvanceDays:     c.MinAdvanceDays,
		Location:           loc,
	}, nil
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// LoadConfig reads .env (if present) and then the process environment.
// Variables already set in the environment win over .env entries.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Tokyo",
			MaxConns: 20,
		},
		Store: StoreConfig{Timeout: 5 * time.Second},
		Redis: RedisConfig{IdempotencyTTL: time.Hour},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Tokyo",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		Booking: BookingConfig{
			Rooms:              []string{"1", "2", "3", "4"},
			ClosedWeekday:      "Sunday",
			WeekdayOpenHour:    8,
			WeekdayCloseHour:   18,
			WeekendOpenHour:    9,
			WeekendCloseHour:   15,
			MinPersons:         2,
			MaxDuration:        2 * time.Hour,
			ExtensionIncrement: 2 * time.Hour,
			MinAdvanceDays:     1,
			TimeZone:           "UTC",
		},
	}
}
