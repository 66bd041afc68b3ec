package access

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// SensorDataQuery selects the readings of one sensor between From and To.
// From is not required to be before To.
type SensorDataQuery struct {
	FuseID string    `json:"fuseId" validate:"required"`
	From   time.Time `json:"from" validate:"required"`
	To     time.Time `json:"to" validate:"required"`
}

var validate = validator.New()

func (q SensorDataQuery) Validate() error {
	err := validate.Struct(q)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
