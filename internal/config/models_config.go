package config

import (
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SecretApp es el JSON guardado en AWS Secrets Manager.
type SecretApp struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	User        string `json:"username"`
	Pass        string `json:"password"`
	Name        string `json:"dbname"`
	SSL         string `json:"sslmode"`
	S3Bucket    string `json:"bucket"`
	S3Region    string `json:"region"`
	MQ_HOST     string `json:"MQ_HOST"`
	MQ_PASSWORD string `json:"MQ_PASSWORD"`
	MQ_PORT     int    `json:"MQ_PORT"`
	MQ_USER     string `json:"MQ_USER"`
	MQ_VHOST    string `json:"MQ_VHOST"`
}

type DBConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type MQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	Queue    string `yaml:"queue"`
	TLS      bool   `yaml:"tls"`
}

type UploadService struct {
	S3Client    *s3.Client
	Uploader    *manager.Uploader
	Bucket      string
	PublicBase  string
	MaxUploadMB int64
}

type S3Config struct {
	Region string
	Bucket string
}

/// mapping objects

func (s SecretApp) ToDBConfig() DBConfig {
	return DBConfig{
		Host:     s.Host,
		Port:     s.Port,
		User:     s.User,
		Password: s.Pass,
		DBName:   s.Name,
		SSLMode:  s.SSL,
	}
}

func (s SecretApp) ToS3Config() S3Config {
	return S3Config{
		Region: s.S3Region,
		Bucket: s.S3Bucket,
	}
}

func (s SecretApp) ToMQConfig() MQConfig {
	return MQConfig{
		Host:     s.MQ_HOST,
		Port:     s.MQ_PORT,
		User:     s.MQ_USER,
		Password: s.MQ_PASSWORD,
		VHost:    s.MQ_VHOST,
	}
}

// ApplySecret sobrescribe la conexión a base de datos, S3 y RabbitMQ con los
// valores no vacíos del secreto.
func (c *Settings) ApplySecret(s SecretApp) {
	if db := s.ToDBConfig(); db.Host != "" {
		db.URL = ""
		if db.SSLMode == "" {
			db.SSLMode = c.DB.SSLMode
		}
		c.DB = db
	}
	if s3c := s.ToS3Config(); s3c.Bucket != "" {
		c.AWS.Bucket = s3c.Bucket
		if s3c.Region != "" {
			c.AWS.Region = s3c.Region
		}
	}
	if mq := s.ToMQConfig(); mq.Host != "" {
		mq.Queue = c.MQ.Queue
		mq.TLS = c.MQ.TLS
		c.MQ = mq
	}
}

func (c Settings) ToS3Config() S3Config {
	return S3Config{Region: c.AWS.Region, Bucket: c.AWS.Bucket}
}

// DSN devuelve la cadena de conexión para gorm.
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// MigrateURL devuelve la URL postgres:// que espera golang-migrate.
func (d DBConfig) MigrateURL() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Target describe la base sin credenciales, para mensajes al operador.
func (d DBConfig) Target() string {
	if d.URL != "" {
		if u, err := url.Parse(d.URL); err == nil {
			return u.Host + u.Path
		}
		return "DATABASE_URL"
	}
	return fmt.Sprintf("%s:%d/%s", d.Host, d.Port, d.DBName)
}
