package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress    string `json:"server_address"`
	BaseURL          string `json:"base_url"`
	DatabaseDSN      string `json:"database_dsn"`
	PgMigrationsPath string `json:"pg_migrations_path"`
	SessionSecret    string `json:"session_secret"`
	LinkKeySecret    string `json:"link_key_secret"`
	EnableHTTPS      bool   `json:"enable_https"`
	TLSCertPath      string `json:"tls_cert_path"`
	TLSKeyPath       string `json:"tls_key_path"`
	Mode             string `json:"-"`
}

// NewConfig инициализирует конфигурацию: значения по умолчанию, переменные
// окружения (высший приоритет), флаги командной строки, опциональный JSON-файл.
func NewConfig() *Config {

	viper.SetDefault("SERVER_ADDRESS", "localhost:8080") // Значения по умолчанию
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("PG_MIGRATIONS_PATH", "internal/migrations")
	viper.SetDefault("SESSION_SECRET", "")
	viper.SetDefault("LINK_KEY_SECRET", "")
	viper.SetDefault("ENABLE_HTTPS", false)
	viper.SetDefault("TLS_CERT_PATH", "cert.pem")
	viper.SetDefault("TLS_KEY_PATH", "key.pem")

	viper.AutomaticEnv()

	// Читаем .env, если есть (не переопределяет переменные окружения!)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // Ошибку игнорируем, если файла нет

	// Определяем флаги, но НЕ задаем в них значения по умолчанию
	serverAddress := flag.String("a", "", "server address")
	baseURL := flag.String("b", "", "base URL")
	databaseDSN := flag.String("d", "", "PostgreSQL DSN")
	enableHTTPS := flag.Bool("s", false, "enable HTTPS")
	tlsCertPath := flag.String("cert", "", "path to TLS certificate")
	tlsKeyPath := flag.String("key", "", "path to TLS key")
	configPath := flag.String("c", "", "path to JSON config file")
	flag.StringVar(configPath, "config", "", "path to JSON config file")

	flag.Parse()

	// Загружаем JSON-конфигурацию (если указана)
	if *configPath == "" {
		*configPath = os.Getenv("CONFIG")
	}

	cfg := &Config{
		ServerAddress:    viper.GetString("SERVER_ADDRESS"),
		BaseURL:          viper.GetString("BASE_URL"),
		DatabaseDSN:      viper.GetString("DATABASE_DSN"),
		PgMigrationsPath: viper.GetString("PG_MIGRATIONS_PATH"),
		SessionSecret:    viper.GetString("SESSION_SECRET"),
		LinkKeySecret:    viper.GetString("LINK_KEY_SECRET"),
		EnableHTTPS:      viper.GetBool("ENABLE_HTTPS"),
		TLSCertPath:      viper.GetString("TLS_CERT_PATH"),
		TLSKeyPath:       viper.GetString("TLS_KEY_PATH"),
	}

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Printf("Не удалось прочитать JSON-файл конфигурации %q: %v", *configPath, err)
		} else if err := json.Unmarshal(data, cfg); err != nil {
			log.Printf("Ошибка разбора JSON-файла конфигурации: %v", err)
		}
	}

	// Переопределяем значениями из переменных окружения (viper)
	override := func(env string, target *string) {
		if val := viper.GetString(env); val != "" {
			*target = val
		}
	}
	override("SERVER_ADDRESS", &cfg.ServerAddress)
	override("BASE_URL", &cfg.BaseURL)
	override("DATABASE_DSN", &cfg.DatabaseDSN)
	override("PG_MIGRATIONS_PATH", &cfg.PgMigrationsPath)
	override("SESSION_SECRET", &cfg.SessionSecret)
	override("LINK_KEY_SECRET", &cfg.LinkKeySecret)
	override("TLS_CERT_PATH", &cfg.TLSCertPath)
	override("TLS_KEY_PATH", &cfg.TLSKeyPath)

	// Если флаг передан, но переменной окружения нет — используем флаг
	if *serverAddress != "" {
		cfg.ServerAddress = *serverAddress
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *databaseDSN != "" {
		cfg.DatabaseDSN = *databaseDSN
	}

	// Определяем режим работы
	if cfg.DatabaseDSN != "" {
		cfg.Mode = "database"
	} else {
		cfg.Mode = "memory"
	}

	// Включаем TLS
	if *enableHTTPS {
		cfg.EnableHTTPS = true
	}
	if *tlsCertPath != "" {
		cfg.TLSCertPath = *tlsCertPath
	}
	if *tlsKeyPath != "" {
		cfg.TLSKeyPath = *tlsKeyPath
	}

	log.Printf("Инициализация конфигурации: ServerAddress=%s", cfg.ServerAddress)
	log.Printf("Инициализация конфигурации: BaseURL=%s", cfg.BaseURL)
	log.Printf("Инициализация конфигурации: Mode=%s", cfg.Mode)
	log.Printf("Инициализация конфигурации: EnableHTTPS=%v", cfg.EnableHTTPS)

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Ошибка конфигурации: %v\n", err)
	}

	return cfg
}

// Validate проверяет корректность конфигурации. Секреты обязательны: ключ
// шифрования ссылок не должен быть выводим из публичных идентификаторов.
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("адрес сервера не может быть пустым")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("базовый URL не может быть пустым")
	}
	if cfg.SessionSecret == "" {
		return fmt.Errorf("секрет сессии не может быть пустым")
	}
	if cfg.LinkKeySecret == "" {
		return fmt.Errorf("секрет вывода ключей не может быть пустым")
	}
	return nil
}
