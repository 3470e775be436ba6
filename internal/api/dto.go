package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/KrikINS/floor-ready/internal/core/task"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bind decodes the JSON body into v and validates its tags.
func bind(c *fiber.Ctx, v any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(v); err != nil {
			return fmt.Errorf("%w: malformed request body: %v", task.ErrValidation, err)
		}
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			parts := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", task.ErrValidation, strings.Join(parts, "; "))
		}
		return fmt.Errorf("%w: %v", task.ErrValidation, err)
	}
	return nil
}

// amountText accepts a JSON string or number and keeps it as typed text, so
// the engine parses it the same way as form input.
type amountText string

func (a *amountText) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or number")
	}
	*a = amountText(n.String())
	return nil
}

// editsRequest is the fulfillment form. Absent fields are left alone; an
// empty string clears a field.
type editsRequest struct {
	ActualCost    *amountText `json:"actual_cost"`
	VendorName    *string     `json:"vendor_name" validate:"omitempty,max=200"`
	VendorAddress *string     `json:"vendor_address" validate:"omitempty,max=500"`
	VendorContact *string     `json:"vendor_contact" validate:"omitempty,max=200"`
}

func (r *editsRequest) toEdits() task.Edits {
	if r == nil {
		return task.Edits{}
	}
	e := task.Edits{
		VendorName:    r.VendorName,
		VendorAddress: r.VendorAddress,
		VendorContact: r.VendorContact,
	}
	if r.ActualCost != nil {
		s := string(*r.ActualCost)
		e.ActualCost = &s
	}
	return e
}

type createTaskRequest struct {
	Title            string     `json:"title" validate:"required"`
	Description      string     `json:"description"`
	Priority         string     `json:"priority"`
	EventID          string     `json:"event_id"`
	AssigneeID       string     `json:"assignee_id"`
	Deadline         *time.Time `json:"deadline"`
	CustomID         string     `json:"custom_id"`
	CostToClient     *float64   `json:"cost_to_client"`
	UnitType         string     `json:"unit_type"`
	BillableQuantity *float64   `json:"billable_quantity"`
	Comments         string     `json:"profitability_comments"`
	CostCenterID     string     `json:"cost_center_id"`
	ItemIDs          []string   `json:"item_ids"`
	QuantityRequired int        `json:"quantity_required"`
}

type advanceRequest struct {
	TargetStatus string        `json:"target_status"`
	Fulfillment  *editsRequest `json:"fulfillment"`
	Comment      string        `json:"comment" validate:"max=2000"`
	Version      int64         `json:"version" validate:"gte=0"`
}

type reviewRequest struct {
	Comment string `json:"comment" validate:"max=2000"`
	Version int64  `json:"version" validate:"gte=0"`
}

type fulfillmentRequest struct {
	editsRequest
	Version int64 `json:"version" validate:"gte=0"`
}

type reassignRequest struct {
	AssigneeID *string `json:"assignee_id" validate:"required"`
	Version    int64   `json:"version" validate:"gte=0"`
}

type adjustRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}
