// ABOUTME: Entry point for the orbi-auth credential service
// ABOUTME: Handles registration, login, admin sessions, and password resets

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/orbiplay/orbi-auth/internal/account"
	"github.com/orbiplay/orbi-auth/internal/api"
	"github.com/orbiplay/orbi-auth/internal/auth"
	"github.com/orbiplay/orbi-auth/internal/config"
	"github.com/orbiplay/orbi-auth/internal/mail"
	"github.com/orbiplay/orbi-auth/internal/reset"
	"github.com/orbiplay/orbi-auth/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
            _     _                  _   _
  ___  _ __| |__ (_)       __ _ _   _| |_| |__
 / _ \| '__| '_ \| |_____ / _' | | | | __| '_ \
| (_) | |  | |_) | |_____| (_| | |_| | |_| | | |
 \___/|_|  |_.__/|_|      \__,_|\__,_|\__|_| |_|
`

// getConfigPath returns the path to the service config file.
// Priority: ORBI_AUTH_CONFIG env var > XDG_CONFIG_HOME/orbiplay/auth.yaml > ~/.config/orbiplay/auth.yaml
func getConfigPath() string {
	if envPath := os.Getenv("ORBI_AUTH_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "auth.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "orbiplay", "auth.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: orbi-auth <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the auth server")
		fmt.Println("  health   Check auth server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	if cfg.Admin.Email == "" {
		yellow.Print("    ▶ ")
		fmt.Println("Admin:    not configured")
	}
	if cfg.Mail.ResendAPIKey == "" {
		yellow.Print("    ▶ ")
		fmt.Println("Mail:     not configured (codes will not be delivered)")
	}
	fmt.Println()

	logger.Info("starting orbi-auth",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
	)

	// Open the store
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	// Wire the service
	var signer *auth.Signer
	if cfg.Auth.SigningSecret != "" {
		signer, err = auth.NewSigner(cfg.Auth.SigningSecret)
		if err != nil {
			return fmt.Errorf("creating token signer: %w", err)
		}
	}
	gate := auth.NewAdminGate(cfg.Admin.Email, cfg.Admin.Password, signer)
	notifier := mail.NewNotifier(cfg.Mail.ResendAPIKey, cfg.Mail.From)

	accounts, err := account.NewService(st, reset.NewManager(st), notifier, gate)
	if err != nil {
		return fmt.Errorf("creating account service: %w", err)
	}

	server := api.New(cfg.Server.HTTPAddr, accounts)
	err = server.Run(ctx)

	// Drain in-flight reset-code mail before exiting
	accounts.Wait()
	return err
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
