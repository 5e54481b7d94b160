package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"simtax/internal/simplifiedtax"
)

// AmountSource defines the interface for amounts the engine cannot derive itself.
// Evaluation resolves them before calling the engine so the engine stays free
// of I/O. Implementations may be in-process tables or remote registries.
type AmountSource interface {
	// FixedAmount returns the fixed tax for an automatic route (220.4, 220.6, 220.10).
	// ok is false when no amount is known for the route.
	FixedAmount(ctx context.Context, route simplifiedtax.Route) (amount decimal.Decimal, ok bool, err error)

	// LandTaxBase returns the land tax base for a land transfer.
	// ok is false when the base cannot be determined from the transfer.
	LandTaxBase(ctx context.Context, land *simplifiedtax.LandTransfer) (base decimal.Decimal, ok bool, err error)
}
