package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/order"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the service configuration. Redis and RabbitMQ are optional: without
// RedisAddr the gate and the change feed are in-process, without RabbitMQURL
// notifications are only logged.
type Config struct {
	HTTPPort string
	LogLevel string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	FeedChannelPrefix  string
	TransitionLockTTL  time.Duration
	LocalFeedBuffer    int
	RabbitMQURL        string
	NotificationsTopic string

	AutosaveQuiet      time.Duration
	WriteTimeout       time.Duration
	SessionIdleTimeout time.Duration
	FieldLimits        order.FieldLimits
	SLADays            map[order.Type]int

	// PhaseGrants is "actor=phase|phase;actor=*". Empty grants nobody.
	PhaseGrants string

	DeadlineMonitorSchedule string
	SessionSweeperSchedule  string
}

// DSN is the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// setDefaults registers the value of every key that the environment may omit.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http_port", "8080")
	v.SetDefault("log_level", "info")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "fulfillment")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("feed_channel_prefix", "fulfillment:changes")
	v.SetDefault("transition_lock_ttl", 30*time.Second)
	v.SetDefault("local_feed_buffer", 64)
	v.SetDefault("rabbitmq_url", "")
	v.SetDefault("notifications_exchange", "fulfillment.notifications")

	v.SetDefault("autosave_quiet", time.Second)
	v.SetDefault("write_timeout", 10*time.Second)
	v.SetDefault("session_idle_timeout", 30*time.Minute)

	for _, f := range order.Fields() {
		v.SetDefault(fieldLimitKey(f), f.DefaultMaxLength())
	}
	for _, t := range order.Types() {
		v.SetDefault(slaDaysKey(t), 0)
	}

	v.SetDefault("phase_grants", "")
	v.SetDefault("deadline_monitor_schedule", "0 */15 * * * *")
	v.SetDefault("session_sweeper_schedule", "0 * * * * *")
}

// LoadConfig reads envFile when it exists, then the process environment. Keys are
// upper-case in the environment, e.g. HTTP_PORT or FIELD_MAX_TRACKING_CODE.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return configFrom(v)
}

func configFrom(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPPort: v.GetString("http_port"),
		LogLevel: v.GetString("log_level"),

		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSslMode:  v.GetString("db_sslmode"),

		RedisAddr:          v.GetString("redis_addr"),
		RedisPassword:      v.GetString("redis_password"),
		RedisDB:            v.GetInt("redis_db"),
		FeedChannelPrefix:  v.GetString("feed_channel_prefix"),
		TransitionLockTTL:  v.GetDuration("transition_lock_ttl"),
		LocalFeedBuffer:    v.GetInt("local_feed_buffer"),
		RabbitMQURL:        v.GetString("rabbitmq_url"),
		NotificationsTopic: v.GetString("notifications_exchange"),

		AutosaveQuiet:      v.GetDuration("autosave_quiet"),
		WriteTimeout:       v.GetDuration("write_timeout"),
		SessionIdleTimeout: v.GetDuration("session_idle_timeout"),
		FieldLimits:        make(order.FieldLimits, len(order.Fields())),
		SLADays:            make(map[order.Type]int),

		PhaseGrants: v.GetString("phase_grants"),

		DeadlineMonitorSchedule: v.GetString("deadline_monitor_schedule"),
		SessionSweeperSchedule:  v.GetString("session_sweeper_schedule"),
	}

	for _, f := range order.Fields() {
		limit := v.GetInt(fieldLimitKey(f))
		if limit <= 0 {
			return Config{}, fmt.Errorf("%s must be positive", strings.ToUpper(fieldLimitKey(f)))
		}
		cfg.FieldLimits[f] = limit
	}
	for _, t := range order.Types() {
		if days := v.GetInt(slaDaysKey(t)); days > 0 {
			cfg.SLADays[t] = days
		}
	}

	if cfg.AutosaveQuiet <= 0 {
		return Config{}, errors.New("AUTOSAVE_QUIET must be positive")
	}
	if cfg.SessionIdleTimeout <= 0 {
		return Config{}, errors.New("SESSION_IDLE_TIMEOUT must be positive")
	}
	// A transition lock must outlive one write even when a refresh is missed.
	if cfg.TransitionLockTTL > 0 && cfg.WriteTimeout >= cfg.TransitionLockTTL {
		return Config{}, fmt.Errorf("WRITE_TIMEOUT %s must be shorter than TRANSITION_LOCK_TTL %s",
			cfg.WriteTimeout, cfg.TransitionLockTTL)
	}
	return cfg, nil
}

func fieldLimitKey(f order.Field) string {
	return "field_max_" + string(f)
}

func slaDaysKey(t order.Type) string {
	return "sla_days_" + string(t)
}
