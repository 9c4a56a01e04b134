// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Хранилища аудиоданных
const (
	StorageMemory = "memory"
	StorageS3     = "s3"
)

// ErrInvalidConfig возвращается при недопустимых значениях конфигурации
var ErrInvalidConfig = errors.New("неверная конфигурация")

// Config структура для хранения конфигурации приложения
type Config struct {
	Storage       string `yaml:"storage"`
	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
	ListenAddr    string `yaml:"listen_addr"`
	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	MaxUploadMB   int    `yaml:"max_upload_mb"`
	SentryDSN     string `yaml:"sentry_dsn"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Storage:     StorageMemory,
		ListenAddr:  ":8080",
		LogLevel:    "info",
		LogFile:     "~/.playlist.log",
		MaxUploadMB: 50,
	}
}

// LoadDotEnv загружает переменные окружения из .env файлов, если они есть
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("ошибка чтения %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig загружает конфигурацию из файла и переменных окружения.
// Отсутствующий файл не ошибка: используются значения по умолчанию
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := expandHome(filePath, home)

	config := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора yaml: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	// Значения, обнуленные в файле, возвращаем к умолчаниям
	defaults := Default()
	if config.Storage == "" {
		config.Storage = defaults.Storage
	}
	if config.ListenAddr == "" {
		config.ListenAddr = defaults.ListenAddr
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.LogFile == "" {
		config.LogFile = defaults.LogFile
	}
	if config.MaxUploadMB <= 0 {
		config.MaxUploadMB = defaults.MaxUploadMB
	}
	config.LogFile = expandHome(config.LogFile, home)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageS3:
		if c.AwsBucketName == "" || c.AwsRegion == "" {
			return fmt.Errorf("%w: для хранилища s3 нужны aws_bucket_name и aws_region", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: неизвестное хранилище %q", ErrInvalidConfig, c.Storage)
	}
	return nil
}

// MaxUploadBytes максимальный размер загружаемого файла в байтах
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"PLAYLIST_STORAGE":     &c.Storage,
		"PLAYLIST_LISTEN_ADDR": &c.ListenAddr,
		"PLAYLIST_LOG_LEVEL":   &c.LogLevel,
		"PLAYLIST_LOG_FILE":    &c.LogFile,
		"AWS_BUCKET_NAME":      &c.AwsBucketName,
		"AWS_ACCESS_KEY":       &c.AwsAccessKey,
		"AWS_SECRET_KEY":       &c.AwsSecretKey,
		"AWS_REGION":           &c.AwsRegion,
		"AWS_ENDPOINT":         &c.AwsEndpoint,
		"SENTRY_DSN":           &c.SentryDSN,
	}
	for key, field := range overrides {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*field = value
		}
	}

	if value, ok := os.LookupEnv("PLAYLIST_MAX_UPLOAD_MB"); ok && value != "" {
		mb, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: PLAYLIST_MAX_UPLOAD_MB=%q", ErrInvalidConfig, value)
		}
		c.MaxUploadMB = mb
	}
	return nil
}

// expandHome раскрывает тильду в начале пути
func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~") {
		return home + strings.TrimPrefix(path, "~")
	}
	return path
}
