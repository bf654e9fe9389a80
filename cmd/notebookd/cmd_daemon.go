package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coherentnotebook/entropy/internal/cache"
	"github.com/coherentnotebook/entropy/internal/daemon"
	"github.com/coherentnotebook/entropy/internal/propagation"
	"github.com/coherentnotebook/entropy/internal/store"
	"github.com/coherentnotebook/entropy/internal/telemetry"
	"github.com/coherentnotebook/entropy/pkg/config"
)

var (
	startBackground bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon",
	Long:  `Start the notebook-entropy daemon, which runs the propagation worker.`,
	Run: func(cmd *cobra.Command, args []string) {
		runStart()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	Run: func(cmd *cobra.Command, args []string) {
		runStop()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Run: func(cmd *cobra.Command, args []string) {
		runStatus()
	},
}

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "List running notebookd processes",
	Run: func(cmd *cobra.Command, args []string) {
		runPS()
	},
}

var killAllCmd = &cobra.Command{
	Use:   "kill_all",
	Short: "Kill all notebookd processes",
	Run: func(cmd *cobra.Command, args []string) {
		runKillAll()
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(killAllCmd)

	startCmd.Flags().BoolVarP(&startBackground, "background", "b", false, "Run in background (daemonize)")
}

func getDaemon() *daemon.Daemon {
	return daemon.New(config.ConfigPath(), Version)
}

func runStart() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	d := getDaemon()

	if d.IsRunning() {
		status := d.Status()
		fmt.Printf("notebookd is already running (PID: %d)\n", status.PID)
		fmt.Println("Use 'notebookd stop' to stop it first")
		os.Exit(1)
	}

	if startBackground {
		if _, err := d.Daemonize([]string{"start"}); err != nil {
			fmt.Printf("Error starting daemon: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Starting daemon...")
		for i := 0; i < 50; i++ {
			time.Sleep(100 * time.Millisecond)
			if d.IsRunning() {
				status := d.Status()
				fmt.Printf("notebookd started (PID: %d)\n", status.PID)
				return
			}
		}

		fmt.Println("Failed to start daemon (timeout)")
		os.Exit(1)
	}

	fmt.Printf("notebookd v%s\n", Version)
	fmt.Println()

	if err := cfg.EnsureConfigDir(); err != nil {
		fmt.Printf("Error creating config directory: %v\n", err)
		os.Exit(1)
	}

	s, err := store.Open(cfg.Database.Path)
	if err != nil {
		fmt.Printf("Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := s.InitSchema(); err != nil {
		fmt.Printf("Error initializing schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database: %s\n", cfg.Database.Path)

	if err := d.Start(true); err != nil {
		fmt.Printf("Warning: could not register daemon state: %v\n", err)
	}
	defer d.Cleanup()

	queue := propagation.NewQueue()
	worker := propagation.NewWorker(queue, s).
		WithPollInterval(cfg.Propagation.PollInterval).
		WithMaxRetries(cfg.Propagation.MaxRetries)

	catalogCache := cache.New(cache.Config{
		ShiftThreshold: float64(cfg.Cache.ShiftThreshold) / 100,
		MaxAgeSecs:     cfg.Cache.MaxAgeSecs,
		StaleGraceSecs: cfg.Cache.StaleGraceSecs,
	})

	config.WatchConfig(func(reloaded *config.Config) {
		catalogCache.SetConfig(cache.Config{
			ShiftThreshold: float64(reloaded.Cache.ShiftThreshold) / 100,
			MaxAgeSecs:     reloaded.Cache.MaxAgeSecs,
			StaleGraceSecs: reloaded.Cache.StaleGraceSecs,
		})
	})

	metrics := telemetry.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := worker.Start(ctx); err != nil {
		fmt.Printf("Error starting propagation worker: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	metricsTicker := time.NewTicker(5 * time.Second)
	defer metricsTicker.Stop()

	evictTicker := time.NewTicker(time.Duration(cfg.Cache.MaxAgeSecs) * time.Second)
	defer evictTicker.Stop()

	fmt.Println("Propagation worker running. Press Ctrl+C to stop.")
	for {
		select {
		case sig := <-sigChan:
			fmt.Printf("\nReceived %v, shutting down...\n", sig)
			if err := worker.Stop(); err != nil {
				fmt.Printf("Error stopping worker: %v\n", err)
			}
			return
		case <-metricsTicker.C:
			metrics.ObserveWorker(worker)
			metrics.ObserveCache(catalogCache)
		case <-evictTicker.C:
			catalogCache.EvictExpired()
		}
	}
}

func runStop() {
	d := getDaemon()

	if !d.IsRunning() {
		fmt.Println("notebookd is not running")
		return
	}

	status := d.Status()
	fmt.Printf("Stopping notebookd (PID: %d)...\n", status.PID)

	if err := d.Stop(); err != nil {
		fmt.Printf("Error stopping daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Daemon stopped successfully")
}

func runStatus() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	d := getDaemon()
	status := d.Status()

	fmt.Println("notebookd Status")
	fmt.Println("================")
	fmt.Println()

	if status.Running {
		fmt.Printf("Daemon: running (PID: %d) - uptime: %s\n", status.PID, formatDuration(status.Uptime))
		fmt.Printf("Version: %s\n", status.Version)
		fmt.Printf("Propagation worker: %v\n", status.PropagationActive)
	} else {
		fmt.Println("Daemon: stopped")
		fmt.Printf("Version: %s\n", Version)
	}

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Config: %s/config.yaml\n", config.ConfigPath())
	fmt.Printf("  Database: %s\n", cfg.Database.Path)
}

func runPS() {
	d := getDaemon()
	processes, err := d.ListProcesses()
	if err != nil {
		fmt.Printf("Error listing processes: %v\n", err)
		os.Exit(1)
	}

	if len(processes) == 0 {
		fmt.Println("No notebookd processes running")
		return
	}

	fmt.Println("Running notebookd processes:")
	fmt.Println("PID\tTYPE\t\tUPTIME\t\tVERSION")
	fmt.Println("---\t----\t\t------\t\t-------")
	for _, p := range processes {
		fmt.Printf("%d\t%s\t\t%s\t\t%s\n", p.PID, p.Type, formatDuration(p.Uptime), p.Version)
	}
}

func runKillAll() {
	d := getDaemon()

	if !d.IsRunning() {
		fmt.Println("No notebookd processes running")
		return
	}

	fmt.Println("Killing all notebookd processes...")
	killed, err := d.KillAll()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Killed %d process(es)\n", killed)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd%dh", days, hours)
}
