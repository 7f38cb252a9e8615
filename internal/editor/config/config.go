// Управление конфигурацией сервиса редактирования из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки из переменных окружения.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений в логах.
//   - Значения по умолчанию и ограничение диапазонов параметров.
package config

import (
	"log/slog"
	"reflect"
	"strings"
	"time"
)

type Config struct {
	ServerAddress string `env:"SERVER_ADDR"`

	SnapshotsDBPath  string `env:"SNAPSHOTS_DB_PATH"`
	AutosavePeriod   int    `env:"AUTOSAVE_PERIOD"`
	AutosaveDisabled bool   `env:"AUTOSAVE_DISABLED"`

	HistoryLimit int `env:"HISTORY_LIMIT"`
	DebounceMs   int `env:"DEBOUNCE_MS"`

	SanitizeDisabled bool `env:"SANITIZE_DISABLED"`
	Demo             bool `env:"DEMO"`
}

// DebounceWindow возвращает окно склейки набора текста.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ReadConfig загружает конфигурацию сервиса из переменных окружения,
// подставляет значения по умолчанию и ограничивает диапазоны параметров.
func ReadConfig() *Config {
	config := &Config{}

	envConfig("env", config)

	if config.ServerAddress == "" {
		config.ServerAddress = ":8080"
	}

	if config.SnapshotsDBPath == "" {
		config.SnapshotsDBPath = "snapshots.db"
	}

	// Период автосохранения в секундах
	if config.AutosavePeriod <= 0 || config.AutosavePeriod > 3600 {
		config.AutosavePeriod = 30
	}

	if config.HistoryLimit <= 0 || config.HistoryLimit > 10000 {
		config.HistoryLimit = 100
	}

	if config.DebounceMs <= 0 || config.DebounceMs > 5000 {
		config.DebounceMs = 300
	}

	return config
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if !Exist(fEnvTag) {
			continue
		}

		logValue := GetEnv(fEnvTag)
		if logValue == "" {
			continue
		}

		// Secure passwords in log
		if strings.Contains(strings.ToLower(fName), "pass") || strings.Contains(strings.ToLower(fName), "secret") || strings.Contains(strings.ToLower(fName), "token") {
			pass := strings.Split(GetEnv(fEnvTag), "")
			logValue = pass[0]
			for i := 1; i < len(pass)-1; i++ {
				logValue += "*"
			}
			logValue += pass[len(pass)-1]
		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(GetEnv(fEnvTag))
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		}
	}
}
