// Package scheduler runs the recurring background jobs of the service.
package scheduler

import (
	"context"
	"log"
	"os"

	"github.com/robfig/cron/v3"
)

// Job is one recurring task.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Service schedules jobs on cron expressions.
type Service struct {
	cron   *cron.Cron
	logger *log.Logger
}

func NewService() *Service {
	return &Service{
		cron:   cron.New(),
		logger: log.New(os.Stdout, "scheduler: ", log.LstdFlags),
	}
}

// Register schedules a job. Job errors are logged, never fatal.
func (s *Service) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := job.Run(context.Background()); err != nil {
			s.logger.Printf("job %s: %v", job.Name(), err)
		}
	})
	return err
}

// Start begins running scheduled jobs in the background.
func (s *Service) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
}
