package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"dreamroom/internal/config"
	"dreamroom/internal/daily"
	"dreamroom/internal/imagegen"
	"dreamroom/internal/llm"
	"dreamroom/internal/logging"
	"dreamroom/internal/media"
	"dreamroom/internal/profile"
	"dreamroom/internal/roomgen"
	"dreamroom/internal/rooms"
	"dreamroom/internal/server"
	"dreamroom/internal/storage"
)

func main() {
	logging.Setup()
	cfg := config.FromEnv()

	ctx := context.Background()
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init store")
	}
	defer store.Close()

	uploader := newUploader(ctx, cfg.Media)
	textClient := newTextClient(ctx, cfg.AI)
	images := newImageClient(cfg)
	fetcher := imagegen.NewFetcher(30 * time.Second)

	handlers := server.Handlers{
		Profile: profile.Handler{Service: profile.Service{Client: textClient}},
		Daily:   daily.Handler{Generator: daily.Generator{Client: textClient}},
		Roomgen: roomgen.Handler{
			Base:          roomgen.BaseGenerator{Images: images, Fetcher: fetcher},
			Stylizer:      roomgen.Stylizer{Images: images, Fetcher: fetcher},
			Composer:      roomgen.Composer{},
			Uploader:      uploader,
			ImageProvider: strings.ToLower(cfg.Image.Provider),
		},
		Rooms: rooms.Handler{Store: store},
	}

	srv := server.New(cfg.Port, handlers, cfg.Media.LocalDir)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func newUploader(ctx context.Context, cfg config.MediaConfig) media.Uploader {
	if cfg.Bucket != "" && cfg.Region != "" {
		uploader, err := media.NewUploader(ctx, media.Config{
			Bucket:         cfg.Bucket,
			Region:         cfg.Region,
			Endpoint:       cfg.Endpoint,
			PublicURL:      cfg.PublicURL,
			KeyPrefix:      cfg.KeyPrefix,
			ForcePathStyle: cfg.ForcePathStyle,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init media uploader")
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("media uploader: S3")
		return uploader
	}
	if cfg.LocalDir != "" {
		uploader, err := media.NewLocalUploader(cfg.LocalDir, "/media/")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init local media storage")
		}
		log.Info().Str("dir", cfg.LocalDir).Msg("media uploader: local directory")
		return uploader
	}
	log.Info().Msg("media uploader disabled, serving data URIs")
	return nil
}

func newTextClient(ctx context.Context, cfg config.AIConfig) llm.Client {
	if strings.EqualFold(cfg.Provider, "gemini") {
		var tokenSource oauth2.TokenSource
		if cfg.Gemini.ServiceAccountJSON != "" {
			creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.Gemini.ServiceAccountJSON),
				"https://www.googleapis.com/auth/generative-language")
			if err != nil {
				log.Fatal().Err(err).Msg("failed to parse gemini service account")
			}
			tokenSource = creds.TokenSource
		}
		log.Info().Str("model", cfg.Gemini.Model).Msg("text backend: Gemini")
		return llm.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model, 60*time.Second, tokenSource)
	}
	log.Info().Str("model", cfg.OpenAI.Model).Msg("text backend: OpenAI")
	return llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
}

func newImageClient(cfg config.Config) imagegen.Client {
	var base imagegen.Client
	switch strings.ToLower(cfg.Image.Provider) {
	case "gemini":
		base = imagegen.NewGeminiImages(cfg.AI.Gemini.APIKey, cfg.Image.Model, 120*time.Second)
		log.Info().Str("model", cfg.Image.Model).Msg("image backend: Gemini")
	default:
		base = imagegen.NewOpenAIImages(cfg.AI.OpenAI.APIKey, cfg.Image.Model)
		log.Info().Str("model", cfg.Image.Model).Msg("image backend: OpenAI")
	}

	if cfg.Imagen.ProjectID != "" {
		log.Info().Str("model", cfg.Imagen.Model).Msg("edit backend: Vertex Imagen")
		return imagegen.WithEditor(base, imagegen.NewVertexImagen(imagegen.VertexImagenConfig{
			ProjectID:          cfg.Imagen.ProjectID,
			Location:           cfg.Imagen.Location,
			Model:              cfg.Imagen.Model,
			ServiceAccountJSON: cfg.Imagen.ServiceAccountJSON,
		}))
	}
	return base
}
