package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meetborg/joinbot/pkg/bot"
	"github.com/meetborg/joinbot/pkg/browser"
	"github.com/meetborg/joinbot/pkg/config"
	"github.com/meetborg/joinbot/pkg/events"
	"github.com/meetborg/joinbot/pkg/log"
	"github.com/meetborg/joinbot/pkg/monitor"
	"github.com/meetborg/joinbot/pkg/platform"
	"github.com/meetborg/joinbot/pkg/server"
)

func runJoin(args []string) {
	cfg := config.Default()
	cfg.LoadEnv()

	fs := flag.NewFlagSet("join", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s join [options]\n\nJoins one meeting and monitors it until it ends.\n\nOptions:\n", os.Args[0])
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.MeetingURL, "url", cfg.MeetingURL, "Meeting URL")
	fs.StringVar(&cfg.MeetingID, "meeting-id", cfg.MeetingID, "Backend meeting ID for the completion callback")
	fs.StringVar(&cfg.Platform, "platform", cfg.Platform, "Platform override (google_meet, zoom, microsoft_teams)")
	fs.StringVar(&cfg.DisplayName, "name", cfg.DisplayName, "Display name")
	fs.BoolVar(&cfg.MicEnabled, "mic", cfg.MicEnabled, "Keep microphone enabled")
	fs.BoolVar(&cfg.CameraEnabled, "camera", cfg.CameraEnabled, "Keep camera enabled")
	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Backend API base URL")
	fs.StringVar(&cfg.APISecret, "api-secret", cfg.APISecret, "Internal bot secret")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Run the browser headless")
	fs.StringVar(&cfg.UserDataDir, "user-data-dir", cfg.UserDataDir, "Persistent browser profile directory")
	fs.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "Status server address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pollSeconds := fs.Int("poll-interval", int(cfg.PollInterval/time.Second), "Monitor poll interval in seconds")
	fs.IntVar(&cfg.MaxHours, "max-hours", cfg.MaxHours, "Monitor fail-safe ceiling in hours")

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}
	cfg.PollInterval = time.Duration(*pollSeconds) * time.Second

	log.Init(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ptype := platform.Parse(cfg.Platform)
	if ptype == platform.Unknown {
		ptype = platform.Detect(cfg.MeetingURL)
	}
	profile, ok := platform.ProfileFor(ptype)
	if !ok {
		log.Fatalf("Unsupported platform %q for URL: %s", ptype, cfg.MeetingURL)
	}

	log.WithFields(map[string]interface{}{
		"platform":   ptype.String(),
		"meeting_id": cfg.MeetingID,
		"pid":        os.Getpid(),
	}).Info("Starting meeting join worker")

	bus := events.NewBus()
	tracker := server.NewTracker(bus, cfg.MeetingID, ptype.String())
	statusServer := server.NewStatusServer(cfg.HTTPAddr, tracker, bus)
	statusServer.Start()

	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info("Shutdown signal received")
		cancel()
	}()

	bus.Publish(events.New(events.StageLaunching, 0, "", "launching browser"))
	driver, err := browser.Launch(browser.LaunchOptions{
		Headless:    cfg.Headless,
		UserDataDir: cfg.UserDataDir,
	})
	if err != nil {
		log.Fatalf("Failed to launch browser: %v", err)
	}

	orchestrator := bot.NewOrchestrator(driver, profile, bus)
	orchestrator.DisplayName = cfg.DisplayName
	orchestrator.MicEnabled = cfg.MicEnabled
	orchestrator.CameraEnabled = cfg.CameraEnabled

	if err := orchestrator.Join(ctx, cfg.MeetingURL); err != nil {
		// Monitoring still runs: it either detects the failure through the
		// generic signals or hits the max-duration fail-safe.
		log.Errorf("Join sequence failed: %v", err)
	}

	engine := monitor.NewEngine(driver, profile, bus, monitor.Options{
		PollInterval: cfg.PollInterval,
		MaxDuration:  time.Duration(cfg.MaxHours) * time.Hour,
		SettleDelay:  8 * time.Second,
	})
	outcome := engine.Run(ctx)

	log.WithFields(map[string]interface{}{
		"ended":  outcome.Ended,
		"reason": outcome.Reason,
		"polls":  outcome.ElapsedPolls,
	}).Info("Monitoring finished")

	if outcome.Ended {
		bus.Publish(events.New(events.StageNotifying, outcome.ElapsedPolls, outcome.Reason, "notifying backend"))
		monitor.NewNotifier().Notify(outcome, monitor.CompletionRequest{
			MeetingID: cfg.MeetingID,
			APIURL:    cfg.APIURL,
			APISecret: cfg.APISecret,
		})
	}

	bus.Shutdown()
	if err := statusServer.Close(); err != nil {
		log.Errorf("Error shutting down status server: %v", err)
	}
	log.Info("Worker shutdown complete")
}
