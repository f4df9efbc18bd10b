// Package worker exports committed expenses to an external spreadsheet.
// It reacts to queue events and sweeps periodically for rows an event
// never reached.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/storage"
)

// SheetAppender writes one expense row to the export target.
type SheetAppender interface {
	AppendExpense(ctx context.Context, e core.Expense) (string, error)
}

// ExportWorkerConfig holds configuration for the export worker
type ExportWorkerConfig struct {
	// SweepInterval is how often to look for unexported rows (default: 30s)
	SweepInterval time.Duration

	// BatchSize is the max number of rows to export per sweep (default: 10)
	BatchSize int
}

// DefaultExportWorkerConfig returns sensible defaults
func DefaultExportWorkerConfig() ExportWorkerConfig {
	return ExportWorkerConfig{
		SweepInterval: 30 * time.Second,
		BatchSize:     10,
	}
}

type ExportWorker struct {
	store  *storage.Store
	sheets SheetAppender
	config ExportWorkerConfig
}

func NewExportWorker(store *storage.Store, sheets SheetAppender, config ExportWorkerConfig) *ExportWorker {
	if config.SweepInterval <= 0 {
		config.SweepInterval = DefaultExportWorkerConfig().SweepInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultExportWorkerConfig().BatchSize
	}
	return &ExportWorker{store: store, sheets: sheets, config: config}
}

// HandleEvent processes one queue message. A failed append returns the
// error so the delivery is requeued; an expense deleted before its
// export is acked and forgotten.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	switch msg.Event {
	case amqp.EventExpenseCreated:
		return w.exportByID(ctx, msg.ExpenseID)
	case amqp.EventExpenseDeleted:
		slog.InfoContext(ctx, "Expense deleted before export", "expense_id", msg.ExpenseID)
		return nil
	default:
		slog.WarnContext(ctx, "Ignoring unknown event", "event", msg.Event)
		return nil
	}
}

func (w *ExportWorker) exportByID(ctx context.Context, id int64) error {
	expense, err := w.store.GetExpenseByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Row gone: deleted between commit and consumption.
			return nil
		}
		return fmt.Errorf("load expense %d: %w", id, err)
	}
	if expense.Exported {
		return nil
	}

	ref, err := w.sheets.AppendExpense(ctx, *expense)
	if err != nil {
		return fmt.Errorf("append expense %d: %w", id, err)
	}
	if err := w.store.MarkExpenseExported(ctx, id); err != nil {
		return fmt.Errorf("mark expense %d exported: %w", id, err)
	}

	slog.InfoContext(ctx, "Expense exported",
		"expense_id", id,
		"sheets_ref", ref)
	return nil
}

// Run sweeps for unexported rows until the context is cancelled. Rows
// whose append fails during a sweep are flagged so the sweep does not
// spin on them; a later queue delivery can still retry.
func (w *ExportWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Export worker started",
		"sweep_interval", w.config.SweepInterval,
		"batch_size", w.config.BatchSize)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Export worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				slog.ErrorContext(ctx, "Export sweep failed", "error", err)
			}
		}
	}
}

// Sweep exports one batch of unexported rows.
func (w *ExportWorker) Sweep(ctx context.Context) error {
	expenses, err := w.store.ListUnexportedExpenses(ctx, w.config.BatchSize)
	if err != nil {
		return fmt.Errorf("list unexported expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Sweeping unexported expenses", "count", len(expenses))

	for _, expense := range expenses {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ref, err := w.sheets.AppendExpense(ctx, expense)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to export expense",
				"expense_id", expense.ID, "error", err)
			if markErr := w.store.MarkExpenseExportError(ctx, expense.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to flag export error",
					"expense_id", expense.ID, "error", markErr)
			}
			continue
		}
		if err := w.store.MarkExpenseExported(ctx, expense.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark expense exported",
				"expense_id", expense.ID, "error", err)
			continue
		}
		slog.InfoContext(ctx, "Expense exported", "expense_id", expense.ID, "sheets_ref", ref)
	}
	return nil
}
