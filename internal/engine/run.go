package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/calvinalkan/remind/internal/notify"
)

// deliveryPollInterval is how often an in-process scheduler is polled for
// due notifications between reconcile passes. Immediate resends fire within
// roughly a second of their trigger.
const deliveryPollInterval = time.Second

// deliverer is implemented by schedulers that need the daemon to drive
// delivery, like [notify.Memory]. Platform-backed schedulers deliver on
// their own and don't implement it.
type deliverer interface {
	Deliver() []notify.Presented
}

// Run blocks and reconciles on the configured interval, plus once
// immediately on start. It exits when ctx is cancelled.
//
// Reconcile failures on this path are logged and the loop keeps going; the
// next pass self-heals whatever state the failed one left behind.
func (s *Service) Run(ctx context.Context) error {
	if s.checkInterval <= 0 {
		return fmt.Errorf("check interval must be positive, got %s", s.checkInterval)
	}

	s.log.Info("background reconciler started", "interval", s.checkInterval)

	s.runPass(ctx)

	reconcileTicker := time.NewTicker(s.checkInterval)
	defer reconcileTicker.Stop()

	deliveryTicker := time.NewTicker(deliveryPollInterval)
	defer deliveryTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("background reconciler stopping")

			return nil
		case <-deliveryTicker.C:
			s.deliverDue()
		case <-reconcileTicker.C:
			s.runPass(ctx)
		}
	}
}

func (s *Service) runPass(ctx context.Context) {
	s.deliverDue()

	err := s.Reconcile(ctx)
	if err != nil {
		s.log.Error("reconcile pass failed", "error", err)
	}
}

func (s *Service) deliverDue() {
	d, ok := s.sched.(deliverer)
	if !ok {
		return
	}

	for _, p := range d.Deliver() {
		s.log.Info("notification delivered", "title", p.Content.Title, "body", p.Content.Body)
	}
}
