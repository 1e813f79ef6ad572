package utils

import (
	"gopkg.in/yaml.v2"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	AppPort string `yaml:"APP_PORT"`

	// Shared secret of the identity provider's access tokens
	JWTSecret string `yaml:"JWT_SECRET"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// OpenAI configuration
	OpenAIAPIKey   string `yaml:"OPENAI_API_KEY"`
	OpenAIBaseURL  string `yaml:"OPENAI_BASE_URL"`
	VisionModel    string `yaml:"VISION_MODEL"`
	EmbeddingModel string `yaml:"EMBEDDING_MODEL"`
	PromptVersion  string `yaml:"PROMPT_VERSION"`

	// Open Food Facts
	OpenFoodFactsURL string `yaml:"OPENFOODFACTS_URL"`

	// Upstream timeouts, Go duration strings such as "12s"
	CatalogTimeout   string `yaml:"CATALOG_TIMEOUT"`
	VisionTimeout    string `yaml:"VISION_TIMEOUT"`
	EmbeddingTimeout string `yaml:"EMBEDDING_TIMEOUT"`

	SimilarityThreshold string `yaml:"SIMILARITY_THRESHOLD"`
}

var config Config

func LoadConfig() {
	LoadConfigFile("config.yaml")
}

func LoadConfigFile(path string) {
	file, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
		return
	}

	err = yaml.Unmarshal(file, &config)
	if err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
		return
	}
}

// GetConfig returns the value for key. An environment variable of the same
// name takes precedence over config.yaml.
func GetConfig(key string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}

	switch key {
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "APP_PORT":
		return config.AppPort
	case "JWT_SECRET":
		return config.JWTSecret
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "OPENAI_API_KEY":
		return config.OpenAIAPIKey
	case "OPENAI_BASE_URL":
		return config.OpenAIBaseURL
	case "VISION_MODEL":
		return config.VisionModel
	case "EMBEDDING_MODEL":
		return config.EmbeddingModel
	case "PROMPT_VERSION":
		return config.PromptVersion
	case "OPENFOODFACTS_URL":
		return config.OpenFoodFactsURL
	case "CATALOG_TIMEOUT":
		return config.CatalogTimeout
	case "VISION_TIMEOUT":
		return config.VisionTimeout
	case "EMBEDDING_TIMEOUT":
		return config.EmbeddingTimeout
	case "SIMILARITY_THRESHOLD":
		return config.SimilarityThreshold
	default:
		return ""
	}
}

func GetDurationConfig(key string, fallback time.Duration) time.Duration {
	value := GetConfig(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("Invalid duration for %s: %q, using %s\n", key, value, fallback)
		return fallback
	}
	return d
}

func GetFloatConfig(key string, fallback float64) float64 {
	value := GetConfig(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Invalid number for %s: %q, using %v\n", key, value, fallback)
		return fallback
	}
	return f
}
