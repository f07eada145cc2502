package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"auto_blog_publisher/config"
	"auto_blog_publisher/fetcher"
	"auto_blog_publisher/generator"
	"auto_blog_publisher/logger"
	"auto_blog_publisher/pipeline"
	"auto_blog_publisher/publisher"
	"auto_blog_publisher/server"
)

func main() {
	configPath := flag.String("config", "config/config.json", "path to config.json")
	subreddit := flag.String("subreddit", "SkincareAddiction", "subreddit to search")
	query := flag.String("query", "", "search query for discussions")
	limit := flag.Int("limit", 20, "max source threads to examine")
	publish := flag.Bool("publish", false, "publish generated posts that pass validation")
	serve := flag.Bool("serve", false, "start the JSON API server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	mock := flag.Bool("mock", false, "use the mock LLM instead of a real backend")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
	}

	staging, err := publisher.NewStaging(cfg.StagingDir)
	if err != nil {
		log.Fatal().Err(err).Msg("create staging tree")
	}

	llm, err := buildLLM(cfg, *mock)
	if err != nil {
		log.Fatal().Err(err).Msg("configure llm")
	}
	agent, err := generator.NewAgent(llm, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create agent")
	}

	httpClient := &http.Client{Timeout: cfg.Timeout()}
	source, err := fetcher.New(cfg.Reddit, httpClient, log)
	if err != nil {
		log.Fatal().Err(err).Msg("configure discussion source")
	}

	runner, err := pipeline.NewRunner(source, agent, *limit, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create pipeline")
	}

	var pub *publisher.Publisher
	if cfg.GitHub != nil {
		github, err := publisher.NewGitHub(*cfg.GitHub, httpClient, log)
		if err != nil {
			log.Fatal().Err(err).Msg("configure remote content store")
		}
		pub, err = publisher.New(staging, github, log)
		if err != nil {
			log.Fatal().Err(err).Msg("create publisher")
		}
	}

	if *serve {
		srv, err := server.New(runner, staging, pub, log)
		if err != nil {
			log.Fatal().Err(err).Msg("create server")
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		log.Info().Str("addr", listen).Msg("starting server")
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
		return
	}

	if *query == "" {
		fmt.Fprintln(os.Stderr, "--query is required (or use --serve)")
		os.Exit(1)
	}

	ctx := context.Background()
	posts, err := runner.Run(ctx, *subreddit, *query)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline run failed")
	}

	for _, post := range posts {
		id, err := staging.SaveDraft(post)
		if err != nil {
			log.Fatal().Err(err).Msg("save draft")
		}
		log.Info().Str("id", id).Str("title", post.Title).Msg("draft staged")

		if !*publish {
			continue
		}
		if pub == nil {
			log.Fatal().Msg("--publish requires a github section in the config")
		}
		if ok, reason := publisher.ValidateForPublish(post); !ok {
			log.Warn().Str("title", post.Title).Str("reason", reason).Msg("skipping publish")
			continue
		}
		filename, err := pub.Publish(ctx, post, "", time.Now())
		if err != nil {
			log.Error().Err(err).Str("title", post.Title).Msg("publish failed")
			continue
		}
		log.Info().Str("file", filename).Msg("published")
	}
	log.Info().Int("count", len(posts)).Msg("done")
}

func buildLLM(cfg config.Config, mock bool) (generator.LLMClient, error) {
	if mock {
		return generator.MockLLM{}, nil
	}
	if cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; set llm.provider/model and an api key")
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
	case "deepseek":
		// OpenAI-compatible endpoint; base_url is mandatory.
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
