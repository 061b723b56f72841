package services

import (
	"context"
	"log"
	"time"

	"onlinebank-api/internal/adapters/persistence/models"
	"onlinebank-api/internal/adapters/persistence/repositories"
	"onlinebank-api/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// CronService runs the daily overdue scan: loans past their due date that
// are still CONTINUING are flagged LATE. Fee application stays an explicit
// back-office operation; the scan only changes status.
type CronService struct {
	loanRepo  repositories.LoanRepository
	collector *metrics.Collector // optional
	cron      *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(loanRepo repositories.LoanRepository, collector *metrics.Collector) *CronService {
	return &CronService{
		loanRepo:  loanRepo,
		collector: collector,
		cron:      cron.New(),
	}
}

// Start schedules the overdue scan at 06:00 daily
func (s *CronService) Start() {
	_, err := s.cron.AddFunc("0 6 * * *", func() {
		if err := s.ScanOverdueLoans(context.Background()); err != nil {
			log.Printf("❌ Overdue loan scan failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("❌ Failed to schedule overdue loan scan: %v", err)
		return
	}

	s.cron.Start()
	log.Println("✅ Cron started: overdue loan scan at 06:00 daily")
}

// Stop stops the scheduler
func (s *CronService) Stop() {
	s.cron.Stop()
}

// ScanOverdueLoans marks overdue continuing loans as LATE
func (s *CronService) ScanOverdueLoans(ctx context.Context) error {
	today := dateOnly(time.Now())

	overdue, err := s.loanRepo.ListOverdue(ctx, today)
	if err != nil {
		return err
	}

	marked := 0
	for _, loan := range overdue {
		loan.Status = models.LoanStatusLate
		if err := s.loanRepo.Update(ctx, loan); err != nil {
			log.Printf("❌ Failed to mark loan %d late: %v", loan.ID, err)
			continue
		}
		marked++
	}

	if s.collector != nil {
		s.collector.SetOverdueLoans(len(overdue))
	}

	log.Printf("✅ Overdue loan scan completed: %d overdue, %d marked late", len(overdue), marked)
	return nil
}
