package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"solar-system/backend/internal/config"
	"solar-system/backend/internal/health"
	"solar-system/backend/internal/metrics"
	"solar-system/backend/internal/session"
	"solar-system/backend/internal/telemetry"
	"solar-system/backend/internal/transport/ws"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	var configFile string
	cmd := &cobra.Command{
		Use:          "solar-server",
		Short:        "Solar system simulation server",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, configFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "путь к файлу конфигурации (yaml, json, toml)")
	flags.String("addr", v.GetString("addr"), "адрес HTTP/WebSocket сервера")
	flags.String("health-addr", v.GetString("health_addr"), "адрес gRPC health сервера, пусто - выключен")
	flags.String("static-dir", v.GetString("static_dir"), "каталог со статикой клиента")
	flags.String("catalog", v.GetString("catalog"), "YAML каталог сцены, пусто - встроенный")
	flags.Int("tick-rate", v.GetInt("tick_rate"), "тиков в секунду на сессию")
	flags.Int("broadcast-every", v.GetInt("broadcast_every"), "отправлять астероиды каждый N-й тик")
	flags.Int("max-conns-per-ip", v.GetInt("max_conns_per_ip"), "соединений с одного IP, 0 - без ограничения")
	flags.Float64("input-rate", v.GetFloat64("input_rate"), "входных сообщений в секунду на соединение")
	flags.Int("input-burst", v.GetInt("input_burst"), "допустимый всплеск входных сообщений")
	flags.String("epoch", v.GetString("epoch"), "эпоха для фаз орбит в RFC3339, пусто - сейчас")
	flags.Uint64("seed", v.GetUint64("seed"), "зерно генерации пояса астероидов и звезд")
	flags.Duration("shutdown-timeout", v.GetDuration("shutdown_timeout"), "время на корректную остановку")
	flags.BoolP("verbose", "v", v.GetBool("verbose"), "подробный лог сессий")

	for _, name := range []string{
		"addr", "health-addr", "static-dir", "catalog", "tick-rate", "broadcast-every",
		"max-conns-per-ip", "input-rate", "input-burst", "epoch", "seed", "shutdown-timeout", "verbose",
	} {
		_ = v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	return cmd
}

// initConfig подключает переменные окружения и файл конфигурации
func initConfig(v *viper.Viper, configFile string) error {
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		return nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", configFile, err)
	}
	log.Printf("[Main] Конфигурация загружена из %s", v.ConfigFileUsed())
	return nil
}

func run(ctx context.Context, cfg config.ServerConfig) error {
	logger := log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
	sessionLogger := logger
	if !cfg.Verbose {
		sessionLogger = log.New(io.Discard, "", 0)
	}

	catalog, err := config.LoadCatalog(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	epoch, err := cfg.EpochTime()
	if err != nil {
		return err
	}

	m := metrics.New(nil)
	tm := telemetry.NewTelemetryManager(logger)
	go tm.Run(ctx)

	wsServer := ws.NewWSServer(ws.Options{
		Catalog:        catalog,
		TickRate:       cfg.TickRate,
		BroadcastEvery: cfg.BroadcastEvery,
		MaxConnsPerIP:  cfg.MaxConnsPerIP,
		InputRate:      cfg.InputRate,
		InputBurst:     cfg.InputBurst,
		Epoch:          epoch,
		Seed:           cfg.Seed,
		Observer:       session.MultiObserver(m, tm),
		Hooks: ws.Hooks{
			OnConnect:    m.ViewerConnected,
			OnDisconnect: m.ViewerDisconnected,
			OnTick:       m.ObserveTick,
			OnRejected:   m.Rejected,
		},
		Logger:        logger,
		SessionLogger: sessionLogger,
	})

	checker := health.NewChecker(wsServer.ConnectionCount, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsServer.HandleWS)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", checker.Healthz)
	mux.HandleFunc("/telemetry", func(w http.ResponseWriter, r *http.Request) {
		data, err := tm.GetTelemetryJSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, data)
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(wsServer.Stats()); err != nil {
			logger.Printf("[Main] Ошибка записи статистики: %v", err)
		}
	})
	mux.HandleFunc("/pause", pauseHandler(wsServer, true))
	mux.HandleFunc("/resume", pauseHandler(wsServer, false))
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	} else {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			_, _ = io.WriteString(w, "solar system simulation server: connect to /ws\n")
		})
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: m.Middleware(mux),
	}

	errCh := make(chan error, 2)

	if cfg.HealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.HealthAddr)
		if err != nil {
			return fmt.Errorf("listen health %s: %w", cfg.HealthAddr, err)
		}
		go func() {
			if err := checker.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc health: %w", err)
			}
		}()
	}

	go func() {
		logger.Printf("[Main] HTTP сервер запущен на %s (WebSocket на /ws, %d TPS)", cfg.Addr, cfg.TickRate)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	checker.SetReady(true)

	select {
	case <-ctx.Done():
		logger.Printf("[Main] Получен сигнал остановки")
	case err := <-errCh:
		logger.Printf("[Main] Ошибка сервера: %v", err)
		checker.Stop()
		return err
	}

	checker.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("[Main] Ошибка остановки HTTP сервера: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("[Main] Не все соединения закрылись: %v", err)
	}
	checker.Stop()
	tm.PrintSummary()

	logger.Printf("[Main] Сервер остановлен")
	return nil
}

// pauseHandler приостанавливает или возобновляет все сессии, только POST
func pauseHandler(srv *ws.WSServer, paused bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		srv.SetPaused(paused)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"paused": srv.Paused()})
	}
}
