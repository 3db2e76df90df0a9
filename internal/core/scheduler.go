package core

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler discovers pending comandas on a fixed interval and drives each
// one to the printer. All work happens on a single goroutine: the cycle
// body runs inline between ticks, so two cycles can never overlap and jobs
// never print concurrently. The loop runs until Stop and survives every
// error along the way.
type Scheduler struct {
	service  *PrintService
	store    JobStore
	addr     AddressSource
	notifier Notifier
	interval time.Duration

	// Only touched from the polling goroutine.
	addrMissing bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduler(service *PrintService, store JobStore, addr AddressSource, notifier Notifier, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Scheduler{
		service:  service,
		store:    store,
		addr:     addr,
		notifier: notifier,
		interval: interval,
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run()
}

// Stop halts polling and waits for an in-flight cycle to finish. An
// in-flight print is never abandoned halfway.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RunCycle(context.Background())
		}
	}
}

// RunCycle performs one poll: read the printer address fresh, fetch every
// pending comanda eagerly, print them one by one. A repository error aborts
// the cycle without touching any job state; a per-job error is logged and
// isolated so the rest of the batch still prints.
func (s *Scheduler) RunCycle(ctx context.Context) {
	address, err := s.addr.PrinterAddress(ctx)
	if err != nil {
		log.Printf("scheduler: failed to read printer address: %v", err)
		s.publish(Outcome{State: OutcomeError, Message: "Error leyendo la configuración"})
		return
	}
	if address == "" {
		// Nothing to do until the operator configures the printer. Raise
		// one event on entering this state, not one per tick.
		if !s.addrMissing {
			s.addrMissing = true
			s.publish(Outcome{State: OutcomeError, Message: "La IP de la impresora no está configurada"})
		}
		return
	}
	s.addrMissing = false

	jobs, err := s.store.PendingJobs(ctx)
	if err != nil {
		log.Printf("scheduler: failed to fetch pending comandas: %v", err)
		s.publish(Outcome{State: OutcomeError, Message: "Error consultando comandas pendientes"})
		return
	}
	if len(jobs) == 0 {
		return
	}

	for _, job := range jobs {
		if err := s.service.PrintJob(ctx, job, address); err != nil {
			// The comanda stays pending; the next cycle retries it.
			log.Printf("scheduler: comanda %d failed, will retry: %v", job.ID, err)
		}
	}
}

func (s *Scheduler) publish(out Outcome) {
	if s.notifier != nil {
		s.notifier.Publish("poll", 0, out)
	}
}
