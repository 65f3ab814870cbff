package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration values.
type Config struct {
	Port        string
	DatabaseURL string
	AI          AIConfig
	Image       ImageConfig
	Imagen      ImagenConfig
	Media       MediaConfig
}

// AIConfig selects the text-generation backend used for inference prompts.
type AIConfig struct {
	Provider string
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
}

// OpenAIConfig carries credentials for the OpenAI chat API.
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// GeminiConfig carries credentials for the Generative Language API.
type GeminiConfig struct {
	APIKey             string
	Model              string
	ServiceAccountJSON string
}

// ImageConfig selects the image-generation backend. The model string follows
// the "provider:model" convention, e.g. "openai:gpt-image-1".
type ImageConfig struct {
	Provider string
	Model    string
}

// ImagenConfig enables the Vertex AI Imagen edit path when fully populated.
type ImagenConfig struct {
	ProjectID          string
	Location           string
	Model              string
	ServiceAccountJSON string
}

// MediaConfig describes where composed room images are published.
type MediaConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicURL      string
	KeyPrefix      string
	ForcePathStyle bool
	LocalDir       string
}

// FromEnv loads configuration from environment variables and applies defaults.
func FromEnv() Config {
	provider, model := ParseImageModel(getenv("IMAGE_MODEL", "openai:gpt-image-1"))

	return Config{
		Port:        getenv("APP_PORT", "8787"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AI: AIConfig{
			Provider: getenv("AI_PROVIDER", "openai"),
			OpenAI: OpenAIConfig{
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Model:  getenv("OPENAI_PROFILE_MODEL", "gpt-4o"),
			},
			Gemini: GeminiConfig{
				APIKey:             os.Getenv("GEMINI_API_KEY"),
				Model:              getenv("GEMINI_MODEL", "gemini-1.5-pro-latest"),
				ServiceAccountJSON: os.Getenv("GEMINI_SERVICE_ACCOUNT_JSON"),
			},
		},
		Image: ImageConfig{
			Provider: provider,
			Model:    model,
		},
		Imagen: ImagenConfig{
			ProjectID:          os.Getenv("IMAGEN_PROJECT_ID"),
			Location:           getenv("IMAGEN_LOCATION", "us-central1"),
			Model:              getenv("IMAGEN_MODEL", "imagegeneration@006"),
			ServiceAccountJSON: os.Getenv("IMAGEN_SERVICE_ACCOUNT_JSON"),
		},
		Media: MediaConfig{
			Bucket:         os.Getenv("S3_BUCKET"),
			Region:         os.Getenv("S3_REGION"),
			Endpoint:       os.Getenv("S3_ENDPOINT"),
			PublicURL:      os.Getenv("S3_PUBLIC_URL"),
			KeyPrefix:      strings.Trim(os.Getenv("S3_KEY_PREFIX"), "/"),
			ForcePathStyle: getenvBool("S3_FORCE_PATH_STYLE", false),
			LocalDir:       os.Getenv("MEDIA_DIR"),
		},
	}
}

// ParseImageModel splits a "provider:model" string, defaulting the provider to
// openai when no prefix is present.
func ParseImageModel(raw string) (provider, model string) {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, ":"); idx >= 0 {
		provider = strings.ToLower(strings.TrimSpace(raw[:idx]))
		model = strings.TrimSpace(raw[idx+1:])
	} else {
		provider = "openai"
		model = raw
	}
	if model == "" {
		model = "gpt-image-1"
	}
	return provider, model
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}

	return parsed
}
