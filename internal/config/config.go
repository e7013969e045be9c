// Configuración de la aplicación: settings.yaml + .env + variables de entorno
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultSettingsPath = "config/settings.yaml"

const DefaultLocationPattern = `^\s*(?P<edificio>[^/]+?)\s*/\s*(?P<salon>.+?)\s*$`

type Settings struct {
	Periodo         string            `yaml:"periodo" validate:"required"`
	Plan            string            `yaml:"plan" validate:"required"`
	Programas       map[string]string `yaml:"programas"`
	LocationPattern string            `yaml:"location_pattern" validate:"required"`
	SalonPattern    string            `yaml:"salon_pattern"`
	DB              DBConfig          `yaml:"db"`
	App             AppConfig         `yaml:"app"`
	AWS             AWSConfig         `yaml:"aws"`
	MQ              MQConfig          `yaml:"mq"`
	ETL             ETLConfig         `yaml:"etl"`
}

type AppConfig struct {
	Addr  string `yaml:"addr"`
	Debug bool   `yaml:"debug"`
}

type AWSConfig struct {
	Region              string `yaml:"region"`
	Bucket              string `yaml:"bucket"`
	SecretID            string `yaml:"secret_id"`
	MaxUploadMB         int64  `yaml:"max_upload_mb"`
	TextractConcurrency int    `yaml:"textract_concurrency"`
}

type ETLConfig struct {
	StagingPath string `yaml:"staging_path"`
	SlotMinutes int    `yaml:"slot_minutes" validate:"gte=0"`
	BatchSize   int    `yaml:"batch_size" validate:"gte=0"`
}

// Load lee el YAML, aplica .env y variables de entorno y valida el resultado.
func Load(path string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("leer .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer configuración %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Settings, error) {
	var cfg Settings
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsear configuración: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Settings) applyDefaults() {
	if c.LocationPattern == "" {
		c.LocationPattern = DefaultLocationPattern
	}
	if c.App.Addr == "" {
		c.App.Addr = ":8082"
	}
	if c.DB.SSLMode == "" {
		c.DB.SSLMode = "disable"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.AWS.MaxUploadMB == 0 {
		c.AWS.MaxUploadMB = 25
	}
	if c.AWS.TextractConcurrency == 0 {
		c.AWS.TextractConcurrency = 4
	}
	if c.MQ.Queue == "" {
		c.MQ.Queue = "horarios.etl"
	}
	if c.ETL.StagingPath == "" {
		c.ETL.StagingPath = "data/staging/staging.csv"
	}
	if c.ETL.SlotMinutes == 0 {
		c.ETL.SlotMinutes = 60
	}
	if c.ETL.BatchSize == 0 {
		c.ETL.BatchSize = 500
	}
}

func (c *Settings) applyEnvOverrides() {
	c.Periodo = getEnv("HORARIOS_PERIODO", c.Periodo)
	c.Plan = getEnv("HORARIOS_PLAN", c.Plan)

	c.DB.URL = getEnv("DATABASE_URL", c.DB.URL)
	c.DB.Host = getEnv("DB_HOST", c.DB.Host)
	c.DB.User = getEnv("DB_USER", c.DB.User)
	c.DB.Password = getEnv("DB_PASSWORD", c.DB.Password)
	c.DB.DBName = getEnv("DB_NAME", c.DB.DBName)
	c.DB.SSLMode = getEnv("DB_SSLMODE", c.DB.SSLMode)
	if p, err := strconv.Atoi(os.Getenv("DB_PORT")); err == nil {
		c.DB.Port = p
	}

	c.App.Addr = getEnv("ADDR", c.App.Addr)
	c.AWS.Region = getEnv("AWS_REGION", c.AWS.Region)
	c.AWS.Bucket = getEnv("S3_BUCKET", c.AWS.Bucket)
	c.AWS.SecretID = getEnv("APP_SECRET_ID", c.AWS.SecretID)

	c.MQ.Host = getEnv("MQ_HOST", c.MQ.Host)
	c.MQ.User = getEnv("MQ_USER", c.MQ.User)
	c.MQ.Password = getEnv("MQ_PASSWORD", c.MQ.Password)
	c.MQ.VHost = getEnv("MQ_VHOST", c.MQ.VHost)
	if p, err := strconv.Atoi(os.Getenv("MQ_PORT")); err == nil {
		c.MQ.Port = p
	}
}

var validate = validator.New()

func (c *Settings) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("configuración inválida: %w", err)
	}
	if c.DB.URL == "" && c.DB.Host == "" {
		return fmt.Errorf("configuración inválida: db.host o DATABASE_URL requerido")
	}
	re, err := regexp.Compile(c.LocationPattern)
	if err != nil {
		return fmt.Errorf("configuración inválida: location_pattern: %w", err)
	}
	if re.SubexpIndex("edificio") < 0 || re.SubexpIndex("salon") < 0 {
		return fmt.Errorf("configuración inválida: location_pattern requiere grupos (?P<edificio>) y (?P<salon>)")
	}
	if c.SalonPattern != "" {
		if _, err := regexp.Compile(c.SalonPattern); err != nil {
			return fmt.Errorf("configuración inválida: salon_pattern: %w", err)
		}
	}
	return nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
