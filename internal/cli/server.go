package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"funnel-player-service/internal/app"
	"funnel-player-service/internal/config"
	"funnel-player-service/internal/domain"
	"funnel-player-service/internal/infra/memory"
	pgloader "funnel-player-service/internal/infra/postgres"
	redisinfra "funnel-player-service/internal/infra/redis"
	transport "funnel-player-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the funnel player server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.ScreenLoader = memory.NewStaticScreenLoader(demoScreens())
	if pool != nil {
		loader = pgloader.NewScreenLoader(pool)
	}

	screenTTL := config.TTLDuration(cfg.Screen.TTL, 10*time.Minute)
	var screenRepo app.ScreenRepository
	if redisClient != nil {
		screenRepo = redisinfra.NewScreenRepository(redisClient, loader, screenTTL)
	} else {
		screenRepo = memory.NewScreenRepository(loader, screenTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	tick := config.TTLDuration(cfg.Player.Tick, 100*time.Millisecond)
	service := app.NewScreenService(store, screenRepo, cfg.Player.Placeholders, tick)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting funnel player on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// demoScreens provides a small funnel for local runs without Postgres: a
// branching radio screen, a gated loading screen, and a form screen.
func demoScreens() map[string]domain.ScreenContent {
	return map[string]domain.ScreenContent{
		"goal": {
			ID: "goal",
			Content: []domain.ContentItem{
				{Heading: &domain.HeadingItem{Markup: "What brings you here?"}},
				{Selection: &domain.SelectionItem{
					Mode:        domain.ModeRadio,
					Layout:      domain.GridLayout{Rows: 3, Cols: 1},
					ResponseKey: "goal",
					Options: []domain.Option{
						{ID: "learn", Label: "Learn something new", Variant: domain.VariantFlat},
						{ID: "improve", Label: "Improve a skill", Variant: domain.VariantFlat},
						{ID: "other", Label: "Something else", Variant: domain.VariantFlat},
					},
					ResponseCards: map[string]domain.ResponseCard{
						"learn": {Title: "Great choice", Text: "Beginners welcome.", Emoji: "🎉"},
					},
					ConditionalScreens: map[string]domain.ScreenContent{
						"other": {
							ID: "goal-other",
							Content: []domain.ContentItem{
								{Heading: &domain.HeadingItem{Markup: "Tell us more"}},
								{Input: &domain.InputItem{ResponseKey: "goal-details", Required: true}},
								{Button: &domain.ButtonItem{Text: "Continue"}},
							},
						},
					},
				}},
			},
		},
		"analyzing": {
			ID: "analyzing",
			Content: []domain.ContentItem{
				{Heading: &domain.HeadingItem{Markup: "Building your plan"}},
				{Loading: &domain.LoadingItem{
					Duration:    3000,
					ResponseKey: "plan-commitment",
					Popup: &domain.LoadingPopup{
						TriggerAtPercent: 50,
						Title:            "Quick check",
						Description:      "Do you want daily reminders?",
						Options: []domain.PopupOption{
							{ID: "yes", Label: "Yes please"},
							{ID: "no", Label: "No thanks"},
						},
					},
				}},
				{Text: &domain.TextItem{Markup: "Your plan is ready."}},
				{Button: &domain.ButtonItem{Text: "Show my plan", Width: "full"}},
			},
		},
		"signup": {
			ID:  "signup",
			Gap: 12,
			Content: []domain.ContentItem{
				{Heading: &domain.HeadingItem{Markup: "Create your account"}},
				{Input: &domain.InputItem{ResponseKey: "name", Required: true}},
				{Input: &domain.InputItem{ResponseKey: "email", Required: true, Kind: domain.InputEmail}},
				{Button: &domain.ButtonItem{Text: "Sign up"}},
			},
		},
	}
}
