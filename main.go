package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/EasterCompany/dex-vmt-service/audio"
	"github.com/EasterCompany/dex-vmt-service/cache"
	"github.com/EasterCompany/dex-vmt-service/commands"
	"github.com/EasterCompany/dex-vmt-service/config"
	"github.com/EasterCompany/dex-vmt-service/health"
	"github.com/EasterCompany/dex-vmt-service/language"
	logger "github.com/EasterCompany/dex-vmt-service/log"
	"github.com/EasterCompany/dex-vmt-service/secrets"
	"github.com/EasterCompany/dex-vmt-service/selection"
	"github.com/EasterCompany/dex-vmt-service/session"
	"github.com/EasterCompany/dex-vmt-service/stt"
	"github.com/EasterCompany/dex-vmt-service/transcribe"
	"github.com/EasterCompany/dex-vmt-service/translate"
	"github.com/EasterCompany/dex-vmt-service/utils"
	"github.com/EasterCompany/dex-vmt-service/voicenote"
	"github.com/EasterCompany/dex-vmt-service/worker"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "dex-vmt-service",
		Short:         "Transcribe and translate Discord voice messages",
		Version:       utils.GetVersion().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, cfgFile)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/Dexter/config/vmt.{yaml,json})")
	root.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	root.Flags().Bool("log-development", false, "human-readable console logs")
	root.Flags().String("guild", "", "register commands to one guild instead of globally")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), utils.GetVersion().String())
		},
	})
	return root
}

// loadConfig layers flags over file and environment, then resolves secret
// references and validates the result.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	v, err := config.New(path)
	if err != nil {
		return nil, err
	}
	for key, flag := range map[string]string{
		"log.level":        "log-level",
		"log.development":  "log-development",
		"discord.guild_id": "guild",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("could not bind flag %s: %w", flag, err)
			}
		}
	}
	cfg, err := config.FromViper(v, path != "")
	if err != nil {
		return nil, err
	}

	if cfg.HasSecretReferences() {
		resolver, err := secrets.NewFromEnvironment(cmd.Context())
		if err != nil {
			return nil, err
		}
		if err := cfg.ResolveSecrets(cmd.Context(), resolver); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// 1. Initialize Logger
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer logger.Sync()
	log := logger.L()
	log.Infow("starting dex-vmt-service", "version", utils.GetVersion().Version)

	// 2. Initialize Discord Session
	s, err := session.NewSession(cfg.Discord.Token)
	if err != nil {
		logger.Error("Error creating Discord session", err)
		return err
	}
	logger.AttachDiscord(s, cfg.Discord.LogChannelID)

	// 3. Initialize Cache
	var store cache.Cache
	db, err := cache.New(ctx, &cfg.Redis)
	if err != nil {
		logger.Error("Failed to initialize cache, heartbeats disabled", err)
	} else if db != nil {
		store = db
		defer func() { _ = db.Close() }()
	}

	// 4. Load Language Catalog
	catalog, err := loadCatalog(cfg.Translation.LanguageFile)
	if err != nil {
		logger.Error("Error loading language catalog", err)
		return err
	}

	// 5. Build Transcription and Translation
	recognizer, err := stt.New(ctx, stt.Options{
		Provider:      cfg.Speech.Provider,
		Language:      cfg.Speech.Language,
		OpenAIKey:     cfg.Speech.OpenAIKey,
		OpenAIBaseURL: cfg.Speech.OpenAIBaseURL,
		WhisperModel:  cfg.Speech.WhisperModel,
		GeminiKey:     cfg.Speech.GeminiKey,
		GeminiModel:   cfg.Speech.GeminiModel,
	})
	if err != nil {
		logger.Error("Error creating speech recognizer", err)
		return err
	}
	defer func() { _ = recognizer.Close() }()

	pipeline := transcribe.New(
		transcribe.NewHTTPFetcher(cfg.Voice.MaxAttachmentBytes, cfg.Speech.Timeout),
		audio.NewFFmpegDecoder(cfg.Speech.FFmpegPath, logger.Named("audio")),
		recognizer,
		cfg.Voice.MaxDuration(),
		logger.Named("transcribe"),
	)

	backend, err := translate.NewBackend(translate.Options{
		Provider:      cfg.Translation.Provider,
		DeepLKey:      cfg.Translation.DeepLKey,
		DeepLFreeTier: cfg.Translation.DeepLFree,
		DeepLBaseURL:  cfg.Translation.DeepLBaseURL,
		OpenAIKey:     cfg.Translation.OpenAIKey,
		OpenAIBaseURL: cfg.Translation.OpenAIBaseURL,
		OpenAIModel:   cfg.Translation.OpenAIModel,
	})
	if err != nil {
		logger.Error("Error creating translation backend", err)
		return err
	}
	translator := translate.NewAdapter(backend, translate.BreakerSettings{
		MaxFailures: cfg.Translation.BreakerFailures,
		OpenTimeout: cfg.Translation.BreakerTimeout,
	}, logger.Named("translate"))

	// 6. Start Worker Pool
	pool := worker.New(cfg.Speech.Workers, cfg.Speech.QueueSize, cfg.Speech.Timeout, logger.Named("worker"))
	pool.Start()
	defer pool.Stop()

	// 7. Initialize Interaction Handlers
	handler := commands.NewHandler(commands.Deps{
		API:              s,
		Selections:       selection.NewStore(),
		Validator:        voicenote.NewValidator(cfg.Voice.MaxDuration()),
		Catalog:          catalog,
		Transcriber:      pipeline,
		Translator:       translator,
		Pool:             pool,
		Logger:           logger.Named("commands"),
		MenuTimeout:      cfg.Menu.Timeout,
		LanguagesPerPage: cfg.Menu.LanguagesPerPage,
	})
	defer handler.Close()

	var registerOnce sync.Once
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Infow("connected to Discord", "user", r.User.Username, "guilds", len(r.Guilds))
		registerOnce.Do(func() {
			if err := handler.Register(r.User.ID, cfg.Discord.GuildID); err != nil {
				logger.Error("Error registering commands", err)
			}
		})
	})
	s.AddHandler(func(*discordgo.Session, *discordgo.Resumed) {
		utils.IncrementReconnects()
	})
	s.AddHandler(handler.OnInteraction)

	// 8. Connect to Discord
	if err := s.Open(); err != nil {
		logger.Error("Error opening connection to Discord", err)
		return err
	}
	defer func() { _ = s.Close() }()

	// 9. Start Heartbeat
	reporter := health.NewReporter(store, s, cfg.Redis.HeartbeatInterval, logger.Named("health"))
	reporter.SetState(health.StateReady)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		reporter.Run(ctx)
	}()
	if cfg.Status.Port > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := reporter.Serve(ctx, cfg.Status.Port); err != nil {
				logger.Error("Status server failed", err)
			}
		}()
	}

	// 10. Post Ready Message
	cacheStatus := health.GetCacheStatus(ctx, store, &cfg.Redis)
	log.Infow("ready",
		"speech", recognizer.Name(),
		"translation", translator.Enabled(),
		"languages", catalog.Len(),
		"cache", cacheStatus,
	)
	if cfg.Discord.LogChannelID != "" {
		if _, err := s.ChannelMessageSend(cfg.Discord.LogChannelID, health.FormatStatus(reporter.Snapshot(), cacheStatus)); err != nil {
			log.Warnw("could not post ready message", "channel_id", cfg.Discord.LogChannelID, "error", err)
		}
	}

	// 11. Wait for shutdown signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	select {
	case <-sc:
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	reporter.SetState(health.StateStopping)
	cancel()
	wg.Wait()
	return nil
}

func loadCatalog(path string) (*language.Catalog, error) {
	if path == "" {
		return language.Default()
	}
	return language.LoadFile(path)
}
