package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort int

	// Base URL of the API process, used by worker activities to reach the
	// CRUD endpoints and to build status URLs.
	APIBaseURL string

	// Path of the sqlite database holding user/resume records.
	DatabasePath string

	// Workflow backend selection: memory, sqlite, mysql or redis.
	Backend           string
	BackendSqlitePath string

	RedisAddr     string
	RedisPassword string

	MysqlHost     string
	MysqlPort     int
	MysqlUser     string
	MysqlPassword string
	MysqlDatabase string

	KafkaBrokers []string
	KafkaTopic   string

	EventStoreCapacity int
}

type configFile struct {
	HTTPPort     int    `yaml:"http_port"`
	APIBaseURL   string `yaml:"api_base_url"`
	DatabasePath string `yaml:"database_path"`
	Workflow     struct {
		Backend       string `yaml:"backend"`
		SqlitePath    string `yaml:"sqlite_path"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		MysqlHost     string `yaml:"mysql_host"`
		MysqlPort     int    `yaml:"mysql_port"`
		MysqlUser     string `yaml:"mysql_user"`
		MysqlPassword string `yaml:"mysql_password"`
		MysqlDatabase string `yaml:"mysql_database"`
	} `yaml:"workflow"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	EventStoreCapacity int `yaml:"event_store_capacity"`
}

// Load builds the configuration from defaults, an optional yaml file and
// environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Config{
		HTTPPort:           3000,
		APIBaseURL:         "http://localhost:3000",
		DatabasePath:       "resume-publisher.sqlite",
		Backend:            "sqlite",
		BackendSqlitePath:  "workflows.sqlite",
		RedisAddr:          "localhost:6379",
		MysqlHost:          "localhost",
		MysqlPort:          3306,
		MysqlUser:          "root",
		MysqlPassword:      "root",
		MysqlDatabase:      "resume_publisher",
		KafkaBrokers:       []string{"localhost:9092"},
		KafkaTopic:         "resume_publisher",
		EventStoreCapacity: 1000,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config file: %w", err)
			}
		} else {
			var f configFile
			if err := yaml.Unmarshal(data, &f); err != nil {
				return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
			}
			applyFile(&cfg, &f)
		}
	}

	applyEnv(&cfg)

	return cfg, nil
}

func applyFile(cfg *Config, f *configFile) {
	if f.HTTPPort != 0 {
		cfg.HTTPPort = f.HTTPPort
	}
	if f.APIBaseURL != "" {
		cfg.APIBaseURL = f.APIBaseURL
	}
	if f.DatabasePath != "" {
		cfg.DatabasePath = f.DatabasePath
	}
	if f.Workflow.Backend != "" {
		cfg.Backend = f.Workflow.Backend
	}
	if f.Workflow.SqlitePath != "" {
		cfg.BackendSqlitePath = f.Workflow.SqlitePath
	}
	if f.Workflow.RedisAddr != "" {
		cfg.RedisAddr = f.Workflow.RedisAddr
	}
	if f.Workflow.RedisPassword != "" {
		cfg.RedisPassword = f.Workflow.RedisPassword
	}
	if f.Workflow.MysqlHost != "" {
		cfg.MysqlHost = f.Workflow.MysqlHost
	}
	if f.Workflow.MysqlPort != 0 {
		cfg.MysqlPort = f.Workflow.MysqlPort
	}
	if f.Workflow.MysqlUser != "" {
		cfg.MysqlUser = f.Workflow.MysqlUser
	}
	if f.Workflow.MysqlPassword != "" {
		cfg.MysqlPassword = f.Workflow.MysqlPassword
	}
	if f.Workflow.MysqlDatabase != "" {
		cfg.MysqlDatabase = f.Workflow.MysqlDatabase
	}
	if len(f.Kafka.Brokers) > 0 {
		cfg.KafkaBrokers = f.Kafka.Brokers
	}
	if f.Kafka.Topic != "" {
		cfg.KafkaTopic = f.Kafka.Topic
	}
	if f.EventStoreCapacity > 0 {
		cfg.EventStoreCapacity = f.EventStoreCapacity
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTPPort = port
		}
	}
	if v := os.Getenv("API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("WORKFLOW_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("WORKFLOW_SQLITE_PATH"); v != "" {
		cfg.BackendSqlitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("MYSQL_HOST"); v != "" {
		cfg.MysqlHost = v
	}
	if v := os.Getenv("MYSQL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MysqlPort = port
		}
	}
	if v := os.Getenv("MYSQL_USER"); v != "" {
		cfg.MysqlUser = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		cfg.MysqlPassword = v
	}
	if v := os.Getenv("MYSQL_DATABASE"); v != "" {
		cfg.MysqlDatabase = v
	}
	if v := os.Getenv("EVENT_STORE_CAPACITY"); v != "" {
		if capacity, err := strconv.Atoi(v); err == nil && capacity > 0 {
			cfg.EventStoreCapacity = capacity
		}
	}
	if v := os.Getenv("KAFKA_BOOTSTRAP_SERVERS"); v != "" {
		brokers := strings.Split(v, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		cfg.KafkaBrokers = brokers
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.KafkaTopic = v
	}
}
