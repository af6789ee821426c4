// Package format renders charge breakdowns into the printable itemized bill.
//
// RenderBill is PURE:
// - No side effects
// - No DB access
// - Fully deterministic
package format

import (
	"fmt"
	"strings"

	billingdomain "github.com/smallbiznis/voltra/internal/billing/domain"
	"github.com/smallbiznis/voltra/internal/tariff"
)

// RenderBill renders an itemized bill in a fixed field order: energy with
// per-band detail, fixed, wheeling, fuel adjustment, subtotal, duty, total,
// followed by the applied tariff summary. Empty subscriber names are
// rendered as-is; validation belongs to the caller.
func RenderBill(b *billingdomain.ChargeBreakdown, period, subscriberName string, schedule *tariff.Schedule) string {
	var sb strings.Builder

	sb.WriteString("--- ESTIMATED ELECTRICITY BILL ---\n\n")
	fmt.Fprintf(&sb, "Client: %s\n", subscriberName)
	fmt.Fprintf(&sb, "Billing Month: %s\n", period)
	fmt.Fprintf(&sb, "Total Consumption: %.2f kWh\n", b.UsageKwh)
	sb.WriteString("----------------------------------\n\n")

	sb.WriteString("ITEMIZED CHARGES:\n\n")
	sb.WriteString("A. Energy Charges:\n")
	for _, band := range b.Bands {
		fmt.Fprintf(&sb, "  - %s: %6.2f kWh @ ₹%.2f/unit = ₹%.2f\n", band.Label, band.Units, band.Rate, band.Cost)
	}
	fmt.Fprintf(&sb, "   Total Energy Charge:   ₹%10.2f\n\n", b.EnergyCharge)
	fmt.Fprintf(&sb, "B. Fixed Charge:             ₹%10.2f\n", b.FixedCharge)
	fmt.Fprintf(&sb, "C. Wheeling Charge:          ₹%10.2f\n", b.WheelingCharge)
	fmt.Fprintf(&sb, "D. Fuel Adjustment (FAC):    ₹%10.2f\n", b.FuelAdjustment)
	sb.WriteString("----------------------------------\n")
	fmt.Fprintf(&sb, "   Sub-Total:               ₹%10.2f\n", b.SubTotal)
	fmt.Fprintf(&sb, "E. Electricity Duty (%.0f%%):   ₹%10.2f\n\n", schedule.DutyRate*100, b.ElectricityDuty)
	sb.WriteString("--- TOTAL BILL AMOUNT ---\n")
	fmt.Fprintf(&sb, "   (A+B+C+D+E):             ₹%10.2f\n", b.TotalBill)
	sb.WriteString("----------------------------------\n")

	sb.WriteString(fmt.Sprintf("\n\n--- APPLIED TARIFF (%s) ---\n", schedule.Name))
	fmt.Fprintf(&sb, "Fixed Charge:      ₹%.2f/month\n", schedule.FixedCharge)
	fmt.Fprintf(&sb, "Wheeling Charge:   ₹%.2f/kWh\n", schedule.WheelingRate)
	fmt.Fprintf(&sb, "Electricity Duty:  %.0f%%\n", schedule.DutyRate*100)
	sb.WriteString("Energy Charges (Telescopic Slabs):\n")
	for i, band := range schedule.Bands {
		fmt.Fprintf(&sb, "  - %s: ₹%.2f/unit\n", schedule.BandLabel(i), band.Rate)
	}

	return sb.String()
}
