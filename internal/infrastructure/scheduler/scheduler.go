package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

// Reconciler caso de uso ejecutado por el scheduler.
type Reconciler interface {
	Run(ctx context.Context, repair bool) (*ledger.ReconcileReport, error)
}

// Scheduler ejecuta la conciliación periódica del ledger.
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	spec       string
	repair     bool
	timeout    time.Duration
	log        zerolog.Logger

	mu      sync.Mutex
	running bool
}

// New crea el scheduler. spec usa el formato cron estándar de 5 campos.
func New(reconciler Reconciler, spec string, repair bool, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		reconciler: reconciler,
		spec:       spec,
		repair:     repair,
		timeout:    10 * time.Minute,
		log:        log,
	}
}

// Start registra la tarea y arranca el cron.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runReconcile); err != nil {
		return fmt.Errorf("schedule reconcile %q: %w", s.spec, err)
	}
	s.log.Info().Str("cron", s.spec).Bool("repair", s.repair).Msg("scheduler iniciado")
	s.cron.Start()
	return nil
}

// Stop detiene el cron y espera a que termine la ejecución en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler detenido")
}

func (s *Scheduler) runReconcile() {
	// Una sola conciliación a la vez; si la anterior sigue, se salta este disparo.
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn().Msg("conciliación anterior en curso, se omite")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.reconciler.Run(ctx, s.repair)
	if err != nil {
		s.log.Error().Err(err).Msg("conciliación fallida")
		return
	}
	s.log.Info().
		Int("cards", report.CardsChecked).
		Int("lots", report.LotsChecked).
		Int("discrepancies", len(report.Discrepancies)).
		Msg("conciliación completada")
}
