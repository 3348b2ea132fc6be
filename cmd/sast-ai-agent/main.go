// sast-ai-agent 主入口
//
// Usage:
//
//	sast-ai-agent chat                       # interactive chat session
//	sast-ai-agent chat --config config.yaml # with a config file
//	sast-ai-agent version                    # show version information
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ankitchan/sast-ai-agent/agents"
	"github.com/Ankitchan/sast-ai-agent/config"
	"github.com/Ankitchan/sast-ai-agent/conversation"
	"github.com/Ankitchan/sast-ai-agent/internal/metrics"
	"github.com/Ankitchan/sast-ai-agent/tools"
	"github.com/Ankitchan/sast-ai-agent/types"
	"github.com/Ankitchan/sast-ai-agent/workflow"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		runChat(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := cfg.Log.BuildLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting sast-ai-agent",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	var observer workflow.Observer
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector("sast_ai", prometheus.DefaultRegisterer, logger)
		observer = collector
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	history := newHistoryStore(cfg, logger)

	router, err := buildRouter(cfg, observer, logger)
	if err != nil {
		logger.Fatal("failed to assemble pipelines", zap.Error(err))
	}

	repl(router, history, logger)
}

// newHistoryStore picks the Redis-backed conversation store when
// enabled, otherwise keeps history in memory for the session.
func newHistoryStore(cfg *config.Config, logger *zap.Logger) conversation.Store {
	if !cfg.Redis.Enabled {
		return conversation.NewMemoryStore()
	}
	redisStore, err := conversation.NewRedisStore(conversation.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
		TTL:      cfg.Redis.TTL,
	}, logger)
	if err != nil {
		logger.Warn("redis unavailable, keeping history in memory", zap.Error(err))
		return conversation.NewMemoryStore()
	}
	return redisStore
}

// buildRouter assembles the tool and SAST pipelines behind the keyword
// classifier. Retrieval, research, and SSRF analysis stay on the
// general fallback until an LLM backend supplies their delegates.
func buildRouter(cfg *config.Config, observer workflow.Observer, logger *zap.Logger) (*agents.Router, error) {
	registry := tools.NewRegistry(logger)
	registry.Register(tools.Calculator{})
	registry.Register(tools.DateTime{})

	var toolOpts []agents.ToolOption
	toolOpts = append(toolOpts, agents.WithToolMaxSteps(cfg.Workflow.MaxSteps))
	if observer != nil {
		toolOpts = append(toolOpts, agents.WithToolObserver(observer))
	}
	toolPipeline, err := agents.NewToolPipeline(keywordToolAgent{}, registry, logger, toolOpts...)
	if err != nil {
		return nil, err
	}

	sastPipeline, err := agents.NewSASTPipeline(nil, logger)
	if err != nil {
		return nil, err
	}

	return agents.NewRouter(agents.HeuristicClassifier{}, agents.RouterPipelines{
		Tool:    toolPipeline,
		SAST:    sastPipeline,
		General: generalPipeline{},
	}, logger)
}

func repl(router *agents.Router, history conversation.Store, logger *zap.Logger) {
	ctx := context.Background()
	sessionID := uuid.NewString()

	fmt.Printf("sast-ai-agent %s — type your question, or \"exit\" to quit.\n", Version)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		prior, err := history.History(ctx, sessionID)
		if err != nil {
			logger.Warn("could not load history", zap.Error(err))
		}

		answer, err := router.Process(ctx, line, prior)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Println(answer)

		if err := history.Append(ctx, sessionID,
			types.NewUserMessage(line),
			types.NewAssistantMessage(answer),
		); err != nil {
			logger.Warn("could not persist history", zap.Error(err))
		}
	}
	fmt.Println("bye")
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics endpoint failed", zap.Error(err))
	}
}

func printVersion() {
	fmt.Printf("sast-ai-agent %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`sast-ai-agent - security-aware AI assistant

Usage:
  sast-ai-agent <command> [options]

Commands:
  chat      Start an interactive chat session
  version   Show version information
  help      Show this help message

Options for 'chat':
  --config <path>   Path to configuration file (YAML)

Examples:
  sast-ai-agent chat
  sast-ai-agent chat --config /etc/sast-ai-agent/config.yaml
  sast-ai-agent version`)
}
