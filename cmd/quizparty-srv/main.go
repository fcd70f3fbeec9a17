package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/sync/errgroup"

	"github.com/quizparty-games/quizparty/internal/buildinfo"
	"github.com/quizparty-games/quizparty/internal/cache"
	"github.com/quizparty-games/quizparty/internal/database"
	resultsDb "github.com/quizparty-games/quizparty/internal/database/results/database"
	stateDb "github.com/quizparty-games/quizparty/internal/database/roomstate/database"
	"github.com/quizparty-games/quizparty/internal/logging"
	"github.com/quizparty-games/quizparty/internal/quiz"
	"github.com/quizparty-games/quizparty/internal/server"
	"github.com/quizparty-games/quizparty/internal/shutdown"
	"github.com/quizparty-games/quizparty/internal/transport/ws"
)

var version string

func main() {
	_, _ = fmt.Fprint(os.Stdout, buildinfo.Graffiti)
	_, _ = fmt.Fprintf(os.Stdout, buildinfo.GreetingCLI, buildinfo.ProjectName, version)

	_ = godotenv.Load()

	ctx, done := shutdown.New()
	defer done()

	config := quiz.Config{}
	if err := envconfig.Process("", &config); err != nil {
		logging.DefaultLogger().Fatalf("processing the config: %v", err)
	}

	logger := logging.NewLogger(config.Debug)
	ctx = logging.WithLogger(ctx, logger)

	if err := realMain(ctx, config, done); err != nil {
		logger.Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context, config quiz.Config, done func()) error {
	logger := logging.FromContext(ctx).Named("main.realMain")

	db, err := database.NewFromEnv(ctx, &config.DB)
	if err != nil {
		return fmt.Errorf("new database from env: %w", err)
	}

	defer db.Close(ctx)

	resultsCache, err := cache.NewLRU(config.CacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	manager := quiz.NewManager(&config, stateDb.New(db), resultsDb.New(db, resultsCache))

	srv, err := server.New(config.Port)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	handler := ws.NewHandler(manager)

	router := mux.NewRouter()
	router.Handle("/health", server.HandleHealth(ctx)).Methods(http.MethodGet)
	router.Handle("/rooms", handler.HandleCreateRoom(ctx)).Methods(http.MethodPost)
	router.Handle("/rooms/{roomId}/results", handler.HandleResults(ctx)).Methods(http.MethodGet)
	router.Handle("/ws", handler.Handle(ctx))

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := srv.ServeHTTP(ctx, &http.Server{Handler: router}); err != nil {
			return fmt.Errorf("srv.ServeHTTP: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		if err := http.ListenAndServe(":"+config.ProfPort, nil); err != nil {
			logger.Errorf("pprof default server: %v", err)
			done()
		}
		return nil
	})

	group.Go(func() error {
		if err := manager.Run(ctx); err != nil {
			return fmt.Errorf("manager run: %w", err)
		}
		return nil
	})

	return group.Wait()
}
