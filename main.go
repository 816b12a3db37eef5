package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"artflora/internal/api"
	"artflora/internal/auth"
	"artflora/internal/config"
	"artflora/internal/db"
	"artflora/internal/handlers"
	"artflora/internal/notify"
	"artflora/internal/orders"
	"artflora/internal/telegram_api"
)

func main() {
	// --- Блок инициализации ---
	if err := godotenv.Load(); err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}
	config.SetupLogging(cfg)

	store, err := db.Open(cfg.DatabaseURL, cfg.DBTimeout)
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось подключиться к базе данных: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(context.Background()); err != nil {
		log.Fatalf("Критическая ошибка: не удалось подготовить схему базы данных: %v", err)
	}

	botClient, err := telegram_api.NewBotClient(cfg.BotToken, cfg.IsDev(), cfg.NotifyTimeout)
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать Telegram бота: %v", err)
	}
	if cfg.BotUsername == "" {
		cfg.BotUsername = botClient.Username()
	}

	gate := auth.NewGate(store)
	dispatcher := notify.NewDispatcher(botClient, store, cfg.AdminChatIDs)
	orderManager := orders.NewManager(store, dispatcher)
	botHandler := handlers.NewBotHandler(handlers.HandlerDependencies{Config: cfg, Bot: botClient})

	// --- Настройка роутера и Middleware ---
	router := chi.NewRouter()

	// глобальные middlewares идут перед api.SetupRoutes
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", api.HeaderTelegramID, api.HeaderTelegramAuth},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.SetupRoutes(router, api.ApiDependencies{
		Config:   cfg,
		Store:    store,
		Gate:     gate,
		Orders:   orderManager,
		Notifier: dispatcher,
		Bot:      botHandler,
		Pinger:   botClient,
	})

	router.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// статика Mini App, если собрана рядом с сервером
	workDir, _ := os.Getwd()
	webappDir := filepath.Join(workDir, "webapp")
	if info, err := os.Stat(webappDir); err == nil && info.IsDir() {
		router.Get("/", http.RedirectHandler("/webapp/", http.StatusMovedPermanently).ServeHTTP)
		FileServer(router, "/webapp", http.Dir(webappDir))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Запуск HTTP-сервера API на порту %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
		}
	}()

	if cfg.BotPolling {
		updates, err := botClient.StartPolling(60)
		if err != nil {
			log.Fatalf("Критическая ошибка: не удалось запустить long polling: %v", err)
		}
		go botHandler.RunPolling(ctx, updates)
	} else {
		log.Println("Long polling выключен, обновления бота принимаются через POST /api/bot")
	}

	log.Println("Бот и API-сервер запущены и готовы к работе...")
	<-ctx.Done()

	GracefulShutdown(srv, botClient, cfg.BotPolling)
}

// FileServer для обслуживания статичных файлов
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer не поддерживает шаблоны URL")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, r)
	})
}

// GracefulShutdown останавливает прием обновлений и дожидается завершения запросов.
func GracefulShutdown(srv *http.Server, bot *telegram_api.BotClient, polling bool) {
	log.Println("Получен сигнал остановки, завершаем работу...")
	if polling {
		bot.StopPolling()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Ошибка при остановке HTTP-сервера: %v", err)
	}
	log.Println("Сервер остановлен.")
}
