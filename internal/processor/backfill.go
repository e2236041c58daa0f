package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Backfill re-runs analysis and persistence over archived raw
// end-of-call payloads that never completed the pipeline; raw files
// marked done at ingest are not offered again, and each recovered
// call is marked done in turn so the run is safe to repeat. Payloads
// that fail validation are counted and skipped; anything else that
// fails stops the run so the archive is not half-consumed silently.
func (p *Processor) Backfill(ctx context.Context) (processed, skipped int, err error) {
	paths, err := p.archive.ListRaw(EndOfCallType)
	if err != nil {
		return 0, 0, fmt.Errorf("list archive: %w", err)
	}

	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return processed, skipped, fmt.Errorf("read %s: %w", path, err)
		}

		call, err := ExtractEndOfCall(raw)
		if err != nil {
			var valErr *ValidationError
			if errors.As(err, &valErr) {
				p.logger.Warn("skipping archived payload", "path", path, "error", err)
				skipped++
				continue
			}
			return processed, skipped, err
		}

		report, err := p.analyze(ctx, call)
		if err != nil {
			return processed, skipped, fmt.Errorf("backfill %s: %w", path, err)
		}
		if err := p.persistAndNotify(ctx, report); err != nil {
			return processed, skipped, fmt.Errorf("backfill %s: %w", path, err)
		}
		if _, err := p.archive.MarkDone(path); err != nil {
			p.logger.Error("failed to mark archive file done", "path", path, "error", err)
		}

		p.logger.Info("backfilled call", "path", path, "call_id", call.CallID)
		processed++
	}

	return processed, skipped, nil
}
