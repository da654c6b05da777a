// Command prescreen runs pre-screening calls without a telephony stack:
// either as an interactive console session or as a websocket dev server
// for the playground.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hirevox/prescreen/internal/dotenv"
	genaidriver "github.com/hirevox/prescreen/pkg/adapters/genai"
	"github.com/hirevox/prescreen/pkg/calendar"
	"github.com/hirevox/prescreen/pkg/config"
	"github.com/hirevox/prescreen/pkg/core/flow"
	"github.com/hirevox/prescreen/pkg/core/session"
	"github.com/hirevox/prescreen/pkg/core/stage"
	"github.com/hirevox/prescreen/pkg/devserver"
	"github.com/hirevox/prescreen/pkg/webhook"
)

func main() {
	listen := flag.Bool("listen", false, "serve websocket playground sessions instead of a console session")
	inputPath := flag.String("input", "", "path to a session input JSON file (console mode; defaults to a built-in dev session)")
	startStage := flag.String("start", "", "start at a specific stage (greeting, screening, open_questions, scheduling, alternative, recruiter)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := dotenv.LoadFile(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}
	cfg := config.LoadFromEnv()

	if err := run(cfg, logger, *listen, *inputPath, *startStage); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger, listen bool, inputPath, startStage string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	scheduler, closeScheduler, err := newScheduler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeScheduler()

	var wh *webhook.Client
	if cfg.WebhookURL != "" {
		wh = webhook.NewClient(cfg.WebhookURL, cfg.WebhookSecret, logger)
	}

	if listen {
		return serveDev(ctx, cfg, scheduler, wh, logger)
	}
	return runConsole(ctx, cfg, scheduler, wh, logger, inputPath, startStage)
}

func newScheduler(ctx context.Context, cfg config.Config, logger *slog.Logger) (calendar.Scheduler, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("no database configured, using computed fallback slots")
		return &calendar.Fallback{}, func() {}, nil
	}
	store, err := calendar.NewStore(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open calendar store: %w", err)
	}
	return store, store.Close, nil
}

func serveDev(ctx context.Context, cfg config.Config, scheduler calendar.Scheduler, wh *webhook.Client, logger *slog.Logger) error {
	srv := devserver.New(cfg, scheduler, wh, logger)
	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Handler()}

	logger.Info("starting dev server", "addr", cfg.Addr)
	listenErrCh := make(chan error, 1)
	go func() {
		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErrCh <- err
			return
		}
		listenErrCh <- nil
	}()

	select {
	case err := <-listenErrCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down dev server")
		return httpSrv.Close()
	}
}

// runConsole drives one call over stdin/stdout: your lines are the
// candidate's turns, the agent's lines are printed.
func runConsole(ctx context.Context, cfg config.Config, scheduler calendar.Scheduler, wh *webhook.Client, logger *slog.Logger, inputPath, startStage string) error {
	in, err := loadInput(inputPath)
	if err != nil {
		return err
	}
	if startStage != "" {
		in.StartStage = startStage
	}

	driver, err := genaidriver.New(ctx, genaidriver.Config{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.Model,
		AwayTimeout: cfg.AwayTimeout,
		Logger:      logger,
		Speak: func(text string) {
			fmt.Printf("agent> %s\n", text)
		},
	})
	if err != nil {
		return err
	}

	conv, err := flow.New(flow.Config{
		Driver:    driver,
		State:     session.NewState(in),
		Scheduler: scheduler,
		Webhook:   wh,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	go func() {
		defer driver.Close(false)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				driver.SubmitUserText(line)
			}
		}
	}()

	result, err := conv.Run(ctx, stage.ForName(in.StartStage, in))
	if err != nil {
		return err
	}
	fmt.Printf("\ncall finished: status=%s\n", result.Status)
	return nil
}

func loadInput(path string) (session.Input, error) {
	if path == "" {
		return devInput(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return session.Input{}, fmt.Errorf("read session input: %w", err)
	}
	return session.ParseInput(data)
}

// devInput is the built-in session used when no input file is given.
func devInput() session.Input {
	return session.Input{
		CallID:         "dev_console",
		CandidateName:  "Jamie",
		JobTitle:       "warehouse operator",
		OfficeLocation: "Rotterdam",
		OfficeAddress:  "Dockstreet 12",
		KnockoutQuestions: []session.KnockoutQuestion{
			{ID: "ko1", Text: "Do you have a forklift certificate?", InternalID: "forklift", DataKey: "forklift_certificate",
				Context: "Any valid forklift certificate counts, including one obtained abroad."},
			{ID: "ko2", Text: "Are you available to work in the weekend?", InternalID: "weekend",
				Context: "It is about a few weekends per month, not every weekend."},
			{ID: "ko3", Text: "Do you have your own transport to get to the warehouse?", InternalID: "transport"},
		},
		OpenQuestions: []session.OpenQuestion{
			{ID: "oq1", Text: "What appeals to you in this role?", InternalID: "motivation"},
			{ID: "oq2", Text: "Can you tell me a bit about your most recent work experience?", InternalID: "experience"},
		},
		AllowEscalation: true,
		RequireConsent:  true,
		Playground:      true,
	}
}
