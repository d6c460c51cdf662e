package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/jfcastellanos/prestamos-engine/internal/config"
	"github.com/jfcastellanos/prestamos-engine/internal/repository"
	"github.com/jfcastellanos/prestamos-engine/internal/service"
)

func main() {
	log.Println("Starting collection report scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	clientRepo := repository.NewClientRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	cashRepo := repository.NewCashFlowRepository(db)
	userRepo := repository.NewUserRepository(db)
	summaryService := service.NewSummaryService(clientRepo, paymentRepo, cashRepo, userRepo)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// End-of-day report: today's figures for every collector
	_, err = c.AddFunc(cfg.Scheduler.ReportSpec, func() {
		runDailyReport(summaryService)
	})
	if err != nil {
		log.Fatalf("Error scheduling daily report job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func runDailyReport(summaryService *service.SummaryService) {
	log.Println("Running end-of-day collector report...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summaries, err := summaryService.AllCollectorsSummary(ctx, time.Now())
	if err != nil {
		log.Printf("Daily report failed: %v", err)
		return
	}

	for _, s := range summaries {
		log.Printf("collector=%s active_clients=%d collected=%s base=%s expenses=%s",
			s.Username, s.ActiveClients, s.CollectedToday, s.BaseToday, s.ExpensesToday)
	}

	log.Printf("End-of-day report complete: %d collectors", len(summaries))
}
