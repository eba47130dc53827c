package validation

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
)

// UUID validates that a string holds a canonical, non-nil UUID.
var UUID = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_uuid_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	if id == uuid.Nil {
		return validation.NewError("validation_uuid_nil", "must not be the nil UUID")
	}
	return nil
})
