package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tbxark/cardioagent/agent"
	"github.com/tbxark/cardioagent/command"
	"github.com/tbxark/cardioagent/config"
	"github.com/tbxark/cardioagent/dialogue"
	"github.com/tbxark/cardioagent/predict"
	"github.com/tbxark/cardioagent/server"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [serve|chat]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	config.InitLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode := flag.Arg(0)
	switch mode {
	case "", "serve":
		err = serve(ctx, cfg)
	case "chat":
		err = chat(ctx, cfg, os.Stdin, os.Stdout)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", mode, err)
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config) (*agent.SessionStore, error) {
	if cfg.RedisAddr == "" {
		slog.Info("Using in-memory session store")
		return agent.NewSessionStore(agent.NewMemoryCache[*agent.Session](cfg.SessionTTL)), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	slog.Info("Connected to Redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return agent.NewSessionStore(agent.NewRedisCache[*agent.Session](client, cfg.SessionTTL)), nil
}

func newCommandParser(ctx context.Context, cfg *config.Config) (command.Parser, error) {
	local := command.NewLocalCommandParser()
	if !cfg.LLMEnabled() {
		return local, nil
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	tool, err := command.NewToolBasedCommandParser(cm)
	if err != nil {
		return nil, fmt.Errorf("create tool-based command parser: %w", err)
	}
	slog.Info("LLM intent fallback enabled", "model", cfg.OpenAIModel)
	return command.NewFailbackCommandParser(local, tool), nil
}

func newFlow(ctx context.Context, cfg *config.Config) (*agent.Flow, error) {
	sessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	parser, err := newCommandParser(ctx, cfg)
	if err != nil {
		return nil, err
	}
	predictor := predict.NewClient(cfg.PredictURL, cfg.PredictTimeout)
	slog.Info("Prediction endpoint", "url", predictor.URL(), "timeout", cfg.PredictTimeout)
	return agent.NewFlow(predictor, parser, sessions), nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	gin.SetMode(cfg.GinMode)
	flow, err := newFlow(ctx, cfg)
	if err != nil {
		return err
	}
	tokens := server.NewTokenIssuer(cfg.SecretKey, cfg.SessionTTL)
	srv := server.New(flow, tokens, cfg.CORSOrigins, cfg.SessionTTL)
	return server.Run(ctx, ":"+cfg.Port, srv.Router())
}

func chat(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	flow, err := newFlow(ctx, cfg)
	if err != nil {
		return err
	}
	cardio := agent.NewAgent(
		"CardioAgent",
		"An agent that collects clinical data and estimates cardiovascular risk",
		flow,
	)
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: cardio,
	})
	chatCtx := agent.WithSessionKey(ctx, "cli")

	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "Assistente: %s\n======\n", dialogue.Greeting)
	for {
		fmt.Fprint(out, "Você: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Fprintln(out, "\nEntrada encerrada. Até logo!")
			return nil
		}
		iter := runner.Run(chatCtx, []adk.Message{schema.UserMessage(strings.TrimSpace(input))})
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				return event.Err
			}
			msg, mErr := event.Output.MessageOutput.GetMessage()
			if mErr != nil {
				return mErr
			}
			fmt.Fprintf(out, "\nAssistente: %v\n======\n", msg.Content)
			if event.Action != nil && event.Action.Exit {
				return nil
			}
		}
	}
}
