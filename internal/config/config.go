package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       *AppConfig       `yaml:"app"`
	Storage   *StorageConfig   `yaml:"storage"`
	Store     *StoreConfig     `yaml:"store"`
	Simulator *SimulatorConfig `yaml:"simulator"`
	Maps      *MapsConfig      `yaml:"maps"`
	Client    *ClientConfig    `yaml:"client"`
}

type AppConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type StorageConfig struct {
	// Backend selects the durable adapter: file, redis or memory.
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir"`

	RedisHost     string        `yaml:"redis_host"`
	RedisPort     int           `yaml:"redis_port"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisTimeout  time.Duration `yaml:"redis_timeout"`
}

type StoreConfig struct {
	// Latency is the artificial round-trip delay applied to every store
	// operation. Deliberately nonzero so loading states and call-ordering
	// races stay visible.
	Latency time.Duration `yaml:"latency"`
}

type SimulatorConfig struct {
	Interval     time.Duration `yaml:"interval"`
	StepFraction float64       `yaml:"step_fraction"`
	Epsilon      float64       `yaml:"epsilon"`
}

type MapsConfig struct {
	APIKey string `yaml:"api_key"`
}

type ClientConfig struct {
	ReconnectWindow time.Duration `yaml:"reconnect_window"`
}

// Load reads an optional YAML file pointed at by RIDESHARE_CONFIG and then
// applies environment overrides on top of the defaults.
func Load() (*Config, error) {
	config := &Config{
		App:       loadAppConfig(),
		Storage:   loadStorageConfig(),
		Store:     loadStoreConfig(),
		Simulator: loadSimulatorConfig(),
		Maps:      loadMapsConfig(),
		Client:    loadClientConfig(),
	}

	if path := os.Getenv("RIDESHARE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	return config, nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:      getEnv("APP_NAME", "rideshare"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		Backend:       getEnv("STORAGE_BACKEND", "file"),
		DataDir:       getEnv("STORAGE_DATA_DIR", "./data"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnvAsInt("REDIS_PORT", 6379),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RedisTimeout:  getEnvAsDuration("REDIS_TIMEOUT", 5*time.Second),
	}
}

func loadStoreConfig() *StoreConfig {
	return &StoreConfig{
		Latency: getEnvAsDuration("STORE_LATENCY", 500*time.Millisecond),
	}
}

func loadSimulatorConfig() *SimulatorConfig {
	return &SimulatorConfig{
		Interval:     getEnvAsDuration("SIMULATOR_INTERVAL", 2*time.Second),
		StepFraction: getEnvAsFloat64("SIMULATOR_STEP_FRACTION", 0.1),
		Epsilon:      getEnvAsFloat64("SIMULATOR_EPSILON", 0.00001),
	}
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		APIKey: getEnv("MAPS_API_KEY", ""),
	}
}

func loadClientConfig() *ClientConfig {
	return &ClientConfig{
		ReconnectWindow: getEnvAsDuration("CLIENT_RECONNECT_WINDOW", 3*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
