// SagarMitra is a conversational assistant for Indian fishermen.
//
// It exposes a JSON HTTP API plus a WebSocket chat endpoint, and a CLI
// for one-shot questions. Configuration is loaded from a single YAML
// file discovered automatically (see [config.DefaultSearchPaths]).
//
// Usage:
//
//	sagarmitra serve             Start the API server
//	sagarmitra ask <question>    Ask a single question (for testing)
//	sagarmitra version           Print version and build information
//	sagarmitra -o json version   Output version information as JSON
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oceanai/sagarmitra/internal/agent"
	"github.com/oceanai/sagarmitra/internal/api"
	"github.com/oceanai/sagarmitra/internal/buildinfo"
	"github.com/oceanai/sagarmitra/internal/config"
	"github.com/oceanai/sagarmitra/internal/llm"
	"github.com/oceanai/sagarmitra/internal/memory"
	"github.com/oceanai/sagarmitra/internal/store"
	"github.com/oceanai/sagarmitra/internal/tools"
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run]. This keeps
// os.Exit, os.Stdout, and os.Args out of the application logic so that
// the full startup-to-shutdown lifecycle can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the sagarmitra command. All OS-level
// dependencies are injected as parameters: ctx controls the process
// lifetime (cancelling it triggers graceful shutdown), stdout and stderr
// receive all output, and args is os.Args[1:]. Arguments are parsed by
// hand — the flag package relies on package-level globals, which makes
// it impossible to call run() concurrently from tests.
func run(ctx context.Context, stdout io.Writer, stderr io.Writer, args []string) error {
	var configPath string
	var outputFmt string // "text" (default) or "json"
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++ // skip the value
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			outputFmt = strings.TrimPrefix(args[i], "-o=")
		case strings.HasPrefix(args[i], "--output="):
			outputFmt = strings.TrimPrefix(args[i], "--output=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "serve":
		return runServe(ctx, stdout, stderr, configPath)
	case "ask":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: sagarmitra ask <question>")
		}
		return runAsk(ctx, stdout, configPath, cmdArgs)
	case "version":
		return runVersion(stdout, outputFmt)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runVersion prints build metadata in the requested output format.
func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

// printUsage writes the top-level help text to w.
func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "SagarMitra - Conversational Assistant for Fishermen")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: sagarmitra [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve        Start the API server")
	fmt.Fprintln(w, "  ask          Ask a single question (for testing)")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./config.yaml, ~/.config/sagarmitra/config.yaml, /etc/sagarmitra/config.yaml")
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
}

func loadConfig(explicit string) (*config.Config, string, error) {
	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	return cfg, cfgPath, nil
}

// buildFailover assembles the model failover chain from the configured
// providers, in the order gemini, openai, anthropic. A chain with zero
// providers is valid: every turn then degrades to the canned topic
// responses, which is the offline demo mode.
func buildFailover(cfg *config.Config, logger *slog.Logger) *llm.Failover {
	var providers []llm.Provider

	if cfg.Models.Gemini.APIKey != "" {
		providers = append(providers, llm.Provider{
			Name:   "gemini",
			Model:  cfg.Models.Gemini.Model,
			Client: llm.NewGeminiClient(cfg.Models.Gemini.APIKey, logger),
		})
	}
	if cfg.Models.OpenAI.APIKey != "" {
		providers = append(providers, llm.Provider{
			Name:   "openai",
			Model:  cfg.Models.OpenAI.Model,
			Client: llm.NewOpenAIClient(cfg.Models.OpenAI.APIKey, cfg.Models.OpenAI.BaseURL, logger),
		})
	}
	if cfg.Models.Anthropic.APIKey != "" {
		providers = append(providers, llm.Provider{
			Name:   "anthropic",
			Model:  cfg.Models.Anthropic.Model,
			Client: llm.NewAnthropicClient(cfg.Models.Anthropic.APIKey, logger),
		})
	}

	if len(providers) == 0 {
		logger.Warn("no model providers configured - all turns will use canned responses")
	}
	return llm.NewFailover(logger, providers...)
}

// buildAgent wires store, models, tools, and memory into an agent loop.
// Shared by serve and ask.
func buildAgent(cfg *config.Config, st *store.Store, logger *slog.Logger) *agent.Loop {
	failover := buildFailover(cfg, logger)
	logger.Info("model chain assembled", "providers", failover.Providers())

	var weather *tools.WeatherClient
	if cfg.Weather.APIKey != "" {
		weather = tools.NewWeatherClient(cfg.Weather.APIKey, logger)
	} else {
		logger.Warn("weather API not configured - get_weather tool will be degraded")
	}

	registry := tools.NewRegistry(st, weather, logger)
	mem := memory.NewManager(st, failover, cfg.Agent.ShortTermLimit, logger)
	return agent.NewLoop(st, mem, failover, registry, cfg.Agent.MaxToolRounds, logger)
}

// runServe handles the "sagarmitra serve" subcommand: load config, open
// the database, assemble the model chain and agent loop, start the API
// server, and block until a shutdown signal arrives. Shutdown drains
// in-flight HTTP requests first, then waits for detached memory work.
func runServe(ctx context.Context, stdout io.Writer, stderr io.Writer, configPath string) error {
	logger := newLogger(stdout, slog.LevelInfo)
	logger.Info("starting SagarMitra", "version", buildinfo.Version, "commit", buildinfo.GitCommit, "built", buildinfo.BuildTime)

	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Reconfigure the logger now that the desired level is known. The
	// initial Info-level logger covers only the startup banner.
	if cfg.LogLevel != "" {
		level, err := config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = newLogger(stdout, level)
	}

	logger.Info("config loaded", "path", cfgPath, "port", cfg.Listen.Port)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory %s: %w", cfg.DataDir, err)
	}

	dbPath := cfg.DataDir + "/sagarmitra.db"
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", dbPath, err)
	}
	defer st.Close()
	logger.Info("database opened", "path", dbPath)

	loop := buildAgent(cfg, st, logger)
	srv := api.NewServer(cfg.Listen.Address, cfg.Listen.Port, st, loop, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	// Let in-flight memory extraction and summary refresh finish.
	loop.Wait()
	logger.Info("shutdown complete")
	return nil
}

// runAsk handles the "sagarmitra ask <question>" subcommand. It boots
// the agent over a throwaway database, runs a single turn, and prints
// the response. Useful for smoke tests without starting the server.
func runAsk(ctx context.Context, stdout io.Writer, configPath string, args []string) error {
	logger := newLogger(stdout, slog.LevelWarn)

	question := strings.Join(args, " ")

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Nothing from a one-shot question is worth persisting.
	tmpDir, err := os.MkdirTemp("", "sagarmitra-ask-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	st, err := store.Open(tmpDir + "/ask.db")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	loop := buildAgent(cfg, st, logger)
	defer loop.Wait()

	conv, err := st.CreateConversation("cli", agent.DefaultTitle, cfg.Agent.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	result, err := loop.ProcessTurn(ctx, agent.TurnRequest{
		UserID:         "cli",
		ConversationID: conv.ID,
		Text:           question,
	})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Fprintln(stdout, result.ResponseText)
	return nil
}
