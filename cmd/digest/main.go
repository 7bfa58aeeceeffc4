package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilgisen/aidigest/internal/ai"
	"github.com/bilgisen/aidigest/internal/cache"
	"github.com/bilgisen/aidigest/internal/config"
	"github.com/bilgisen/aidigest/internal/digest"
	"github.com/bilgisen/aidigest/internal/export"
	"github.com/bilgisen/aidigest/internal/feed"
	"github.com/bilgisen/aidigest/internal/logger"
	"github.com/bilgisen/aidigest/internal/notify"
	"github.com/bilgisen/aidigest/internal/sources"
	"github.com/bilgisen/aidigest/internal/storage"
)

type options struct {
	once      bool
	runNow    bool
	printOnly bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.once, "once", false, "build and publish one edition, then exit")
	flag.BoolVar(&opts.runNow, "now", false, "run immediately before waiting for the schedule")
	flag.BoolVar(&opts.printOnly, "print", false, "print the articles of the last period as a table and exit")
	flag.Parse()

	cfg := config.Load()
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogFile,
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	if err := run(cfg, opts); err != nil {
		logger.Get().Error().Err(err).Msg("Digest failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts options) error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		return fmt.Errorf("failed to load source registry %q: %w", cfg.SourcesFile, err)
	}
	processor := feed.NewProcessor(registry, feed.NewFetcher(cfg.FetchTimeout, cfg.MaxConcurrency))

	if opts.printOnly {
		return printTable(ctx, cfg, processor)
	}

	store := cache.New(cfg)
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing summary cache")
		}
	}()

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up digest storage: %w", err)
	}

	builder := digest.NewBuilder(processor, ai.NewSummarizer(cfg, store), publisher, newNotifier(cfg), digest.Options{
		PeriodDays: cfg.PeriodDays,
		TopN:       cfg.TopN,
		Summarize:  cfg.Summarize,
		Location:   cfg.Location(),
	})
	job := func(ctx context.Context, now time.Time) error {
		_, err := builder.Run(ctx, now)
		return err
	}

	if opts.once {
		return job(ctx, time.Now())
	}

	scheduler, err := digest.NewScheduler(job, cfg.DigestSchedule, cfg.Location(), 0)
	if err != nil {
		return err
	}
	if err := scheduler.Run(ctx, opts.runNow); err != nil {
		return err
	}
	log.Info().Msg("Digest scheduler exited properly")
	return nil
}

func newPublisher(ctx context.Context, cfg *config.Config) (storage.Publisher, error) {
	local, err := storage.NewLocalStore(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	publishers := storage.Multi{local}

	if cfg.R2Enabled() {
		r2, err := storage.NewR2StoreFromConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, r2)
	}
	return publishers, nil
}

// newNotifier returns the configured delivery channels, or nil when there are none.
func newNotifier(cfg *config.Config) notify.Notifier {
	log := logger.Get()
	var channels notify.Multi

	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Error().Err(err).Msg("Telegram unavailable, skipping")
		} else {
			channels = append(channels, tg)
		}
	}

	if cfg.EmailEnabled() {
		email, err := notify.NewEmail(notify.EmailConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.EmailSender,
			Password:   cfg.EmailPassword,
			Recipients: cfg.Recipients(),
			Subject:    cfg.EmailSubject,
		})
		if err != nil {
			log.Error().Err(err).Msg("Email unavailable, skipping")
		} else {
			channels = append(channels, email)
		}
	} else {
		log.Info().Msg("RECIPIENT_EMAIL not set, skipping email delivery")
	}

	if len(channels) == 0 {
		return nil
	}
	return channels
}

func printTable(ctx context.Context, cfg *config.Config, processor *feed.Processor) error {
	result := processor.Run(ctx)
	loc := cfg.Location()
	from, to := feed.DateRange(time.Now().In(loc), cfg.PeriodDays)
	recent := feed.Filter(result.Articles, feed.Query{From: from, To: to, Location: loc})

	if err := export.WriteTable(os.Stdout, recent, loc); err != nil {
		return fmt.Errorf("failed to print articles: %w", err)
	}
	fmt.Fprintln(os.Stdout)
	return export.WriteFailures(os.Stdout, result.Failures)
}
