package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compliance-tracker/internal/config"
	"compliance-tracker/internal/handler"
	"compliance-tracker/internal/logger"
	"compliance-tracker/internal/mailer"
	"compliance-tracker/internal/middleware"
	"compliance-tracker/internal/model"
	"compliance-tracker/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)

	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.Business{}, &model.Task{},
		&model.TaskHistory{}, &model.Document{},
	); err != nil {
		slog.Error("migrate failed", "err", err)
		os.Exit(1)
	}

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTP)
		slog.Info("smtp delivery enabled", "host", cfg.SMTP.Host)
	}

	authSvc := service.NewAuthService(db)
	staffSvc := service.NewStaffService(db)
	taskSvc := service.NewTaskService(db, staffSvc)
	reminderSvc := service.NewReminderService(db, mail, cfg.Reminder.WindowDays)
	dashboardSvc := service.NewDashboardService(db)
	documentSvc, err := service.NewDocumentService(db, cfg.Uploads.Dir)
	if err != nil {
		slog.Error("uploads dir init failed", "err", err)
		os.Exit(1)
	}

	authH := handler.NewAuthHandler(authSvc, cfg.Auth)
	staffH := handler.NewStaffHandler(staffSvc)
	taskH := handler.NewTaskHandler(taskSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)
	documentH := handler.NewDocumentHandler(documentSvc, cfg.Uploads.MaxSizeMB)
	reminderH := handler.NewReminderHandler(reminderSvc)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.POST("/api/auth/register", authH.Register)
	r.POST("/api/auth/login", authH.Login)

	api := r.Group("/api", middleware.JWTAuth([]byte(cfg.Auth.JWTSecret)))
	api.GET("/tasks", taskH.List)
	api.GET("/tasks/:id", taskH.Get)
	api.PUT("/tasks/:id", taskH.Update)
	api.GET("/tasks/:id/history", taskH.History)
	api.GET("/tasks/:id/documents", documentH.ListByTask)
	api.POST("/tasks/:id/documents", documentH.Upload)
	api.GET("/documents/:id/download", documentH.Download)
	api.GET("/dashboard", dashboardH.Stats)

	owner := api.Group("", middleware.OwnerOnly())
	owner.POST("/tasks", taskH.Create)
	owner.DELETE("/tasks/:id", taskH.Delete)
	owner.POST("/staff", staffH.Create)
	owner.GET("/staff", staffH.List)
	owner.GET("/staff/:id", staffH.Get)
	owner.DELETE("/documents/:id", documentH.Delete)
	owner.POST("/reminders/run", reminderH.Run)

	scheduler := service.NewSchedulerService(time.Local)
	if cfg.Reminder.Enabled {
		_, err := scheduler.ScheduleDaily(cfg.Reminder.DailyAt, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if _, err := reminderSvc.RunAll(jobCtx); err != nil {
				slog.Error("reminder sweep failed", "err", err)
			}
		})
		if err != nil {
			slog.Error("schedule reminders failed", "err", err)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
		slog.Info("reminder sweep scheduled", "daily_at", cfg.Reminder.DailyAt)
	}

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
	slog.Info("shutdown complete")
}
