package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

var ErrJobNotFound = errors.New("comanda not found")

// JobStore is the order-database boundary the print pipeline needs: read
// the pending comanda graph, flip print flags, resolve categories for
// parsed items, and feed the daily report.
type JobStore interface {
	PendingJobs(ctx context.Context) ([]Job, error)
	JobByID(ctx context.Context, id int64) (Job, error)
	MarkPrinted(ctx context.Context, id int64) error
	CategoriesByDescription(ctx context.Context, descs []string) (map[string]int, error)
	ClosedOrders(ctx context.Context, from, to time.Time) ([]Order, error)
	DishSales(ctx context.Context, from, to time.Time) ([]DishSale, error)
}

// Sink is the printer boundary: replay one directive stream, or probe
// liveness. Implementations serialize access to the physical printer.
type Sink interface {
	Print(address string, timeout time.Duration, directives []Directive) error
	Check(address string, timeout time.Duration) error
}

// AddressSource yields the current printer target. It is consulted fresh
// for every poll cycle and every on-demand operation so address changes
// take effect without a restart.
type AddressSource interface {
	PrinterAddress(ctx context.Context) (string, error)
}

// Notifier receives one observability event per operation outcome.
type Notifier interface {
	Publish(kind string, jobID int64, outcome Outcome)
}

// Event kinds, mirrored by the notify package.
const (
	eventJob          = "job"
	eventTestPrint    = "test_print"
	eventConnectivity = "connectivity"
	eventReprint      = "reprint"
	eventDailyReport  = "daily_report"
)

// PrintService drives every ticket to the printer: the scheduler's per-job
// path and the four user-triggered operations. One instance per process,
// built in main and handed to the scheduler and the API.
type PrintService struct {
	store         JobStore
	sink          Sink
	addr          AddressSource
	notifier      Notifier
	printTimeout  time.Duration
	reportTimeout time.Duration
	now           func() time.Time
}

func NewPrintService(store JobStore, sink Sink, addr AddressSource, notifier Notifier, printTimeout, reportTimeout time.Duration) *PrintService {
	if printTimeout <= 0 {
		printTimeout = 3 * time.Second
	}
	if reportTimeout <= 0 {
		reportTimeout = 4 * time.Second
	}
	return &PrintService{
		store:         store,
		sink:          sink,
		addr:          addr,
		notifier:      notifier,
		printTimeout:  printTimeout,
		reportTimeout: reportTimeout,
		now:           time.Now,
	}
}

// PrintJob renders and prints one pending comanda against address, then
// marks it printed. Any failure leaves the comanda pending so the next poll
// retries it.
func (s *PrintService) PrintJob(ctx context.Context, job Job, address string) error {
	parsed := ParseComment(job.Comment)
	items := s.itemsFor(ctx, job, parsed)
	directives := RenderTicket(job, parsed, items, s.now(), RenderOptions{})

	if err := s.sink.Print(address, s.printTimeout, directives); err != nil {
		s.publish(eventJob, job.ID, Outcome{State: OutcomeError, Message: fmt.Sprintf("Comanda #%d: error de impresión", job.ID)})
		return fmt.Errorf("print comanda %d: %w", job.ID, err)
	}
	if err := s.store.MarkPrinted(ctx, job.ID); err != nil {
		s.publish(eventJob, job.ID, Outcome{State: OutcomeError, Message: fmt.Sprintf("Comanda #%d: impresa pero no actualizada", job.ID)})
		return fmt.Errorf("mark comanda %d printed: %w", job.ID, err)
	}

	s.publish(eventJob, job.ID, Outcome{State: OutcomeSuccess, Message: fmt.Sprintf("Comanda #%d impresa", job.ID)})
	return nil
}

// TestPrint sends the fixed diagnostic page. No database involved.
func (s *PrintService) TestPrint(ctx context.Context) Outcome {
	address, out := s.currentAddress(ctx, eventTestPrint)
	if address == "" {
		return out
	}

	if err := s.sink.Print(address, s.printTimeout, RenderTestTicket(s.now())); err != nil {
		return s.fail(eventTestPrint, 0, "No se pudo conectar con la impresora", err)
	}
	return s.ok(eventTestPrint, 0, "Página de prueba impresa")
}

// CheckPrinter probes connectivity without printing anything.
func (s *PrintService) CheckPrinter(ctx context.Context) Outcome {
	address, out := s.currentAddress(ctx, eventConnectivity)
	if address == "" {
		return out
	}

	if err := s.sink.Check(address, s.printTimeout); err != nil {
		return s.fail(eventConnectivity, 0, "Impresora no disponible", err)
	}
	return s.ok(eventConnectivity, 0, "Impresora conectada")
}

// Reprint prints one comanda by id regardless of its print state, using
// whatever mode its comment implies, with the reprint footer appended. The
// print state is deliberately untouched: a reprint is not a completion.
func (s *PrintService) Reprint(ctx context.Context, id int64) Outcome {
	address, out := s.currentAddress(ctx, eventReprint)
	if address == "" {
		return out
	}

	job, err := s.store.JobByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return s.fail(eventReprint, id, fmt.Sprintf("Comanda #%d no existe", id), err)
		}
		return s.fail(eventReprint, id, "Error consultando la comanda", err)
	}

	parsed := ParseComment(job.Comment)
	items := s.itemsFor(ctx, job, parsed)
	directives := RenderTicket(job, parsed, items, s.now(), RenderOptions{Reprint: true})

	if err := s.sink.Print(address, s.printTimeout, directives); err != nil {
		return s.fail(eventReprint, id, "No se pudo conectar con la impresora", err)
	}
	return s.ok(eventReprint, id, fmt.Sprintf("Comanda #%d reimpresa", id))
}

// DailyReport aggregates the current local day's closed orders and prints
// the summary ticket.
func (s *PrintService) DailyReport(ctx context.Context) Outcome {
	address, out := s.currentAddress(ctx, eventDailyReport)
	if address == "" {
		return out
	}

	now := s.now()
	// Midnight to midnight in the local zone, so the window stays correct
	// on DST-shift days where the calendar day is not 24 hours.
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())

	orders, err := s.store.ClosedOrders(ctx, from, to)
	if err != nil {
		return s.fail(eventDailyReport, 0, "Error consultando pedidos cerrados", err)
	}
	sales, err := s.store.DishSales(ctx, from, to)
	if err != nil {
		return s.fail(eventDailyReport, 0, "Error consultando ventas", err)
	}

	report := BuildDailyReport(from, orders, sales)
	if err := s.sink.Print(address, s.reportTimeout, RenderDailyReport(report, now)); err != nil {
		return s.fail(eventDailyReport, 0, "No se pudo conectar con la impresora", err)
	}
	return s.ok(eventDailyReport, 0, fmt.Sprintf("Reporte impreso: %d pedidos, %s", report.OrderCount, FormatCents(report.TotalCents)))
}

// itemsFor selects what the ticket shows. Normal mode prints the order's
// own items; the marker modes print the parsed comment items with real
// category ids resolved from the repository so broth ordering still holds.
// Resolution failures degrade to the non-priority category rather than
// blocking the print.
func (s *PrintService) itemsFor(ctx context.Context, job Job, parsed ParsedComment) []Item {
	if parsed.Mode == ModeNormal {
		if job.Order == nil {
			return nil
		}
		return job.Order.Items
	}

	var descs []string
	for _, pi := range parsed.Items {
		if pi.Quantity > 0 {
			descs = append(descs, pi.Description)
		}
	}

	categories := map[string]int{}
	if len(descs) > 0 {
		resolved, err := s.store.CategoriesByDescription(ctx, descs)
		if err != nil {
			log.Printf("service: category lookup failed for comanda %d: %v", job.ID, err)
		} else {
			categories = resolved
		}
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, pi := range parsed.Items {
		if pi.Quantity <= 0 {
			// Verbatim fallback entry from a reprint marker.
			items = append(items, Item{Description: pi.Raw})
			continue
		}
		items = append(items, Item{
			Quantity:    pi.Quantity,
			Description: pi.Description,
			CategoryID:  categories[pi.Description],
		})
	}
	return items
}

// currentAddress fetches the printer target, publishing the failure outcome
// when none is configured. Returns ("", outcome) in that case.
func (s *PrintService) currentAddress(ctx context.Context, kind string) (string, Outcome) {
	address, err := s.addr.PrinterAddress(ctx)
	if err != nil {
		return "", s.fail(kind, 0, "Error leyendo la configuración", err)
	}
	if address == "" {
		out := Outcome{State: OutcomeError, Message: "La IP de la impresora no está configurada"}
		s.publish(kind, 0, out)
		return "", out
	}
	return address, Outcome{}
}

func (s *PrintService) ok(kind string, jobID int64, msg string) Outcome {
	out := Outcome{State: OutcomeSuccess, Message: msg}
	s.publish(kind, jobID, out)
	return out
}

func (s *PrintService) fail(kind string, jobID int64, msg string, err error) Outcome {
	log.Printf("service: %s: %s: %v", kind, msg, err)
	out := Outcome{State: OutcomeError, Message: msg}
	s.publish(kind, jobID, out)
	return out
}

func (s *PrintService) publish(kind string, jobID int64, out Outcome) {
	if s.notifier != nil {
		s.notifier.Publish(kind, jobID, out)
	}
}
