package task

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Edits is the pending fulfillment form buffer, held as raw text the way it
// was typed. A nil field was not touched and leaves the stored value alone;
// a blank field clears it.
type Edits struct {
	ActualCost    *string `json:"actual_cost,omitempty"`
	VendorName    *string `json:"vendor_name,omitempty"`
	VendorAddress *string `json:"vendor_address,omitempty"`
	VendorContact *string `json:"vendor_contact,omitempty"`
}

// IsEmpty reports whether no field was touched.
func (e Edits) IsEmpty() bool {
	return e.ActualCost == nil && e.VendorName == nil && e.VendorAddress == nil && e.VendorContact == nil
}

// Apply merges the buffer into f and returns the result. Cost text is parsed
// as a non-negative number.
func (e Edits) Apply(f Fulfillment) (Fulfillment, error) {
	if e.ActualCost != nil {
		cost, err := ParseAmount("actual_cost", *e.ActualCost)
		if err != nil {
			return f, err
		}
		f.ActualCost = cost
	}
	if e.VendorName != nil {
		f.VendorName = blankToNil(*e.VendorName)
	}
	if e.VendorAddress != nil {
		f.VendorAddress = blankToNil(*e.VendorAddress)
	}
	if e.VendorContact != nil {
		f.VendorContact = blankToNil(*e.VendorContact)
	}
	return f, nil
}

// Changed lists the field names the buffer touches.
func (e Edits) Changed() []string {
	var out []string
	if e.ActualCost != nil {
		out = append(out, "actual_cost")
	}
	if e.VendorName != nil {
		out = append(out, "vendor_name")
	}
	if e.VendorAddress != nil {
		out = append(out, "vendor_address")
	}
	if e.VendorContact != nil {
		out = append(out, "vendor_contact")
	}
	return out
}

// ParseAmount converts user text to a non-negative amount. Blank text is nil.
func ParseAmount(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s must be a number, got %q", ErrValidation, field, raw)
	}
	if v < 0 {
		return nil, fmt.Errorf("%w: %s must be >= 0", ErrValidation, field)
	}
	return &v, nil
}

func blankToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
