// Package main provides the strum client entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/strumapp/strum/internal/app/auth"
	"github.com/strumapp/strum/internal/app/commands"
	"github.com/strumapp/strum/internal/app/core"
	"github.com/strumapp/strum/internal/app/device"
	"github.com/strumapp/strum/internal/app/events"
	"github.com/strumapp/strum/internal/app/ipc"
	"github.com/strumapp/strum/internal/app/player"
	"github.com/strumapp/strum/internal/app/queue"
	"github.com/strumapp/strum/internal/app/ui"
	"github.com/strumapp/strum/internal/infra/config"
	"github.com/strumapp/strum/internal/infra/logger"
	"github.com/strumapp/strum/internal/infra/spotify"
	"github.com/strumapp/strum/internal/infra/tasks"
)

var (
	app        = kingpin.New("strum", "strum terminal Spotify client")
	configPath = app.Flag("config", "Path to config file").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	path := *configPath
	if path == "" {
		dir, err := os.UserConfigDir()
		if err == nil {
			path = filepath.Join(dir, "strum", "config.yaml")
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// The UI owns the terminal once it starts, so logs go to a file unless
	// one was explicitly disabled via config.
	loggerConfig := logger.Config{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.File = *logfile
	}
	if loggerConfig.File == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			loggerConfig.File = filepath.Join(dir, "strum", "strum.log")
		}
	}
	if err := logger.Init(loggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("strum error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the client. A separate function ensures defer statements run
// even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()
	runner := tasks.NewRunner()

	fmt.Fprintln(os.Stderr, "Connecting to Spotify..")

	cachePath, err := cfg.CredentialsCachePath()
	if err != nil {
		return err
	}

	acquirer := auth.New(auth.Options{
		ClientID:     cfg.Credentials.ClientID,
		ClientSecret: cfg.Credentials.ClientSecret,
		Cache:        auth.NewCache(cachePath),
		Verifier:     auth.NewSpotifyVerifier(cfg.Credentials.ClientID, cfg.Credentials.ClientSecret),
		Runner:       runner,
	})
	creds, err := acquirer.Acquire(ctx)
	if err != nil {
		return err
	}

	client, err := spotify.New(ctx, cfg.Credentials.ClientID, cfg.Credentials.ClientSecret, creds.Token)
	if err != nil {
		return err
	}

	statePath, err := config.DefaultStatePath()
	if err != nil {
		return err
	}
	state, err := config.LoadState(statePath)
	if err != nil {
		return err
	}

	// The configured device wins over the persisted one on first run.
	if state.GetDevice() == "" && cfg.Audio.Device != "" {
		if err := state.SetDevice(cfg.Audio.Device); err != nil {
			zlog.Warn().Msgf("failed to persist configured device: %v", err)
		}
	}

	drv := ui.NewDriver()
	hub := events.NewHub(drv.Wake)
	status := player.NewStatus()

	factory := spotify.NewFactory(client, hub, runner)
	worker, err := factory(state.GetDevice())
	if err != nil {
		return err
	}
	handle := player.NewHandle(worker)

	q := queue.New(handle, status)
	manager := commands.New(drv, q, handle, status, state)

	// IPC is best-effort; the client works without a control socket.
	var publisher core.Publisher
	socketPath, err := cfg.SocketPath()
	if err == nil {
		socket, err := ipc.Listen(socketPath, hub, runner)
		if err != nil {
			zlog.Warn().Msgf("IPC socket unavailable: %v", err)
		} else {
			publisher = socket
			defer socket.Close()
		}
	}

	if !cfg.Audio.Monitor.Disabled {
		monitor, err := device.NewSystemMonitor(hub, runner, cfg.Audio.Monitor.Settings)
		if err != nil {
			return err
		}
		if err := monitor.Start(ctx); err != nil {
			return err
		}
	}

	application := core.New(core.Options{
		UI:        drv,
		Hub:       hub,
		Commands:  manager,
		Queue:     q,
		Worker:    handle,
		Factory:   factory,
		Status:    status,
		Publisher: publisher,
		State:     state,
	})
	restorePlayback(ctx, client, q, state)

	application.Run()

	if w := handle.Get(); w != nil {
		if err := w.Close(); err != nil {
			zlog.Warn().Msgf("failed to close playback worker: %v", err)
		}
	}
	if err := state.Save(); err != nil {
		zlog.Warn().Msgf("failed to save state: %v", err)
	}

	zlog.Info().Msg("strum stopped")
	return nil
}

// shouldRestore reports whether the persisted snapshot warrants reloading a
// track at startup. A stopped, corrupt or unknown playback state restores
// nothing, so a bad state file can never auto-start playback.
func shouldRestore(state *config.State) bool {
	if state.TrackURI == "" {
		return false
	}
	return player.ParseState(state.PlaybackState) != player.StateStopped
}

// restorePlayback reloads the track from the previous run, paused at its
// saved position. Playback never starts without an explicit user action.
func restorePlayback(ctx context.Context, client *spotify.Client, q *queue.Queue, state *config.State) {
	if !shouldRestore(state) {
		return
	}

	t, err := client.GetTrack(ctx, state.TrackURI)
	if err != nil {
		zlog.Warn().Msgf("failed to restore previous track: %v", err)
		return
	}

	position := time.Duration(state.TrackProgressMs) * time.Millisecond
	if err := q.Restore(*t, position); err != nil {
		zlog.Warn().Msgf("failed to restore playback: %v", err)
		return
	}
	zlog.Info().Msgf("restored %q paused at %v", t.Name, position)
}
