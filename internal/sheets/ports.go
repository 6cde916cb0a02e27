// Package sheets defines the ports of the spreadsheet ledger mirror.
package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerMirror keeps one row per transaction id.
	LedgerMirror interface {
		// Upsert writes t into its row, appending a row on first sight.
		Upsert(ctx context.Context, t core.Transaction) error
		// Remove clears the row for id. A missing row is not an error.
		Remove(ctx context.Context, id int64) error
	}

	// LedgerReader reads the mirrored rows back.
	LedgerReader interface {
		List(ctx context.Context) ([]core.Transaction, error)
	}

	Mirror interface {
		LedgerMirror
		LedgerReader
	}
)
