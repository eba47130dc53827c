package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	outboxUsecase "github.com/allisson/orderflow/internal/outbox/usecase"
)

// RunOutboxJanitor sweeps PROCESSING outbox events whose claim is older than the janitor's
// stuck threshold back to FAILED, so that a relay re-claims them. In dry-run mode it only
// reports how many would be moved. olderThan is used for reporting; the caller builds the
// janitor with the same threshold.
func RunOutboxJanitor(
	ctx context.Context,
	janitor outboxUsecase.JanitorUseCase,
	logger *slog.Logger,
	writer io.Writer,
	olderThan time.Duration,
	dryRun bool,
	format string,
) error {
	if olderThan <= 0 {
		return fmt.Errorf("older-than must be a positive number of minutes, got: %s", olderThan)
	}

	minutes := int(olderThan / time.Minute)
	logger.Info("sweeping stuck outbox events",
		slog.Int("older_than_minutes", minutes),
		slog.Bool("dry_run", dryRun),
	)

	var (
		count int64
		err   error
	)
	if dryRun {
		count, err = janitor.CountStuck(ctx)
	} else {
		count, err = janitor.Sweep(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to sweep stuck outbox events: %w", err)
	}

	if format == "json" {
		outputJanitorJSON(writer, count, minutes, dryRun)
	} else {
		outputJanitorText(writer, count, minutes, dryRun)
	}

	logger.Info("sweep completed",
		slog.Int64("count", count),
		slog.Int("older_than_minutes", minutes),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}

func outputJanitorText(writer io.Writer, count int64, minutes int, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(
			writer,
			"Dry-run mode: Would requeue %d stuck outbox event(s) claimed more than %d minute(s) ago\n",
			count,
			minutes,
		)
		return
	}
	_, _ = fmt.Fprintf(
		writer,
		"Successfully requeued %d stuck outbox event(s) claimed more than %d minute(s) ago\n",
		count,
		minutes,
	)
}

func outputJanitorJSON(writer io.Writer, count int64, minutes int, dryRun bool) {
	result := map[string]any{
		"count":              count,
		"older_than_minutes": minutes,
		"dry_run":            dryRun,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(writer, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
