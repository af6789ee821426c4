// Package pdf renders printable bill documents.
package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

var Module = fx.Provide(New)

type Provider interface {
	GenerateBill(ctx context.Context, data BillData) (io.Reader, error)
}

// BillData is everything the bill template needs, pre-formatted. Amounts
// arrive as strings so the renderer never re-rounds.
type BillData struct {
	UtilityName    string
	SubscriberName string
	Username       string
	Period         string
	BillStatus     string

	UsageKwh string
	Items    []BillItem

	SubTotal string
	Duty     string
	Total    string

	TariffName string
}

type BillItem struct {
	Description string
	Units       string
	Rate        string
	Amount      string
}
