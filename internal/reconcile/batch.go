package reconcile

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/model"
)

// ReviewBatch is the ordered working set of candidates in one import
// session. Batch operations are pure: they return a new batch and leave the
// receiver untouched, so a failed commit can always retry with the same
// value.
type ReviewBatch []model.Candidate

// Field names an editable candidate field.
type Field string

// Editable candidate fields.
const (
	FieldDate          Field = "date"
	FieldDescription   Field = "description"
	FieldAmount        Field = "amount"
	FieldCategory      Field = "category"
	FieldPaymentMethod Field = "payment_method"
	FieldSelected      Field = "selected"
)

// UpdateCandidate returns a batch identical to b except that the candidate
// at index has the named field replaced with the parsed value. An index
// outside the batch is a caller defect and fails with ErrIndexOutOfRange.
// A value that does not parse for its field (a malformed date, a
// non-finite amount) fails with ErrBadFieldValue and the previous value is
// kept. For category and payment method, an empty value clears the
// reference.
func (b ReviewBatch) UpdateCandidate(index int, field Field, value string) (ReviewBatch, error) {
	if index < 0 || index >= len(b) {
		return b, fmt.Errorf("%w: index %d, batch size %d", common.ErrIndexOutOfRange, index, len(b))
	}

	c := b[index]

	switch field {
	case FieldDate:
		parsed, err := time.Parse(model.DateFormat, strings.TrimSpace(value))
		if err != nil {
			return b, fmt.Errorf("%w: date %q is not %s", common.ErrBadFieldValue, value, model.DateFormat)
		}
		c.Date = parsed

	case FieldDescription:
		c.Description = value

	case FieldAmount:
		amount, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return b, fmt.Errorf("%w: amount %q is not a finite number", common.ErrBadFieldValue, value)
		}
		c.Amount = amount

	case FieldCategory:
		c.CategoryID = optionalID(value)

	case FieldPaymentMethod:
		c.PaymentMethodID = optionalID(value)

	case FieldSelected:
		selected, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return b, fmt.Errorf("%w: selected %q is not a boolean", common.ErrBadFieldValue, value)
		}
		c.Selected = selected

	default:
		return b, fmt.Errorf("%w: unknown field %q", common.ErrBadFieldValue, field)
	}

	// A flag set at extraction time clears once the data it named has been
	// repaired, in whichever order the user fixes the fields. Re-entering
	// the amount discharges an amount flag (the coerced zero does not
	// count); if the date is also still bad the flag moves there instead
	// of clearing.
	if c.Flagged {
		if c.FlagReason == model.FlagUnreadableAmount && field == FieldAmount {
			c.FlagReason = model.FlagUnrecognizedDate
		}
		if c.FlagReason != model.FlagUnreadableAmount && c.HasValidDate() {
			c.Flagged = false
			c.FlagReason = ""
		}
	}

	out := make(ReviewBatch, len(b))
	copy(out, b)
	out[index] = c
	return out, nil
}

// SetAllSelected returns a batch with every candidate's selection set
// uniformly.
func (b ReviewBatch) SetAllSelected(selected bool) ReviewBatch {
	out := make(ReviewBatch, len(b))
	copy(out, b)
	for i := range out {
		out[i].Selected = selected
	}
	return out
}

// CommitSet returns the selected subsequence in batch order.
func (b ReviewBatch) CommitSet() []model.Candidate {
	var selected []model.Candidate
	for _, c := range b {
		if c.Selected {
			selected = append(selected, c)
		}
	}
	return selected
}

func optionalID(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
