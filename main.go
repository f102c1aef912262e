package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hrms-console/bot"
	"hrms-console/config"
	"hrms-console/internal/handlers"
	"hrms-console/internal/repository"
	"hrms-console/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Config loaded successfully")

	// Create application context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, initiating graceful shutdown...")
		cancel()
	}()

	// Telegram is optional; without it the console is HTTP-only
	tg, err := initBot(cfg)
	if err != nil {
		log.Printf("Warning: Failed to init Telegram Bot: %v", err)
	}

	app := initApplication(cfg, tg)
	defer app.close()

	if cfg.Username != "" && cfg.Password != "" {
		if err := app.session.Login(ctx, cfg.Username, cfg.Password); err != nil {
			log.Printf("Warning: auto-login failed: %v", err)
		}
	}

	if tg != nil {
		go tg.Run(ctx, app.screens)
		log.Println("Telegram Bot Initialized")
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      app.console.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s (backend %s)", cfg.ListenAddr, cfg.APIURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped gracefully")
}

type application struct {
	session *services.Session
	screens bot.Screens
	console *handlers.Console
}

func (a *application) close() {
	a.screens.Employees.Close()
	a.screens.Attendance.Close()
	a.screens.Dashboard.Close()
}

// initBot connects to Telegram when a token is configured
func initBot(cfg *config.Config) (*bot.Bot, error) {
	if cfg.TelegramBotToken == "" {
		return nil, nil
	}
	return bot.New(cfg.TelegramBotToken, cfg.AuthorizedChatID)
}

// initApplication initializes all application dependencies
func initApplication(cfg *config.Config, tg *bot.Bot) *application {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	creds := repository.NewSessionCredentials("")

	// Initialize repositories with the HRMS REST API
	authRepo := repository.NewRESTAuthRepository(cfg.APIURL, creds, httpClient)
	employeeRepo := repository.NewRESTEmployeeRepository(cfg.APIURL, creds, httpClient)
	attendanceRepo := repository.NewRESTAttendanceRepository(cfg.APIURL, creds, httpClient)

	feed := services.NewFeed(0)
	notifiers := services.Notifiers{feed, services.LogNotifier{}}
	if tg != nil {
		notifiers = append(notifiers, tg.Notifier())
	}

	// Initialize screens
	screens := bot.Screens{
		Employees:  services.NewEmployeesScreen(employeeRepo, notifiers),
		Attendance: services.NewAttendanceScreen(employeeRepo, attendanceRepo, notifiers),
		Dashboard:  services.NewDashboardScreen(employeeRepo, attendanceRepo, notifiers),
	}
	session := services.NewSession(authRepo, creds, notifiers)
	services.Link(session, screens.Employees, screens.Attendance, screens.Dashboard)

	return &application{
		session: session,
		screens: screens,
		console: handlers.NewConsole(session, screens.Employees, screens.Attendance, screens.Dashboard, feed),
	}
}
