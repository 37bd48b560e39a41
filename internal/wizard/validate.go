package wizard

import (
	"fmt"
	"time"

	"tourly/internal/allocation"
	"tourly/internal/passengers"

	"github.com/go-playground/validator/v10"
)

// FieldError tags one invalid or missing field on one roster entry. Field
// errors never block editing, only forward transitions.
type FieldError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = validator.New()

// ValidatePassenger checks the required fields of a single passenger plus
// the passport/departure cross-field rule. Index is left at zero; the
// roster-level pass fills it in.
func ValidatePassenger(p *passengers.Passenger, departureDate string) []FieldError {
	var errs []FieldError

	required := []struct {
		field string
		value string
	}{
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
		{"phone", p.Phone},
		{"nationality", p.Nationality},
		{"gender", p.Gender},
		{"passport_number", p.PassportNumber},
		{"hotel", p.Hotel},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, FieldError{Field: r.field, Message: r.field + " is required"})
		}
	}

	if p.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	} else if err := validate.Var(p.Email, "email"); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: "email is not a valid address"})
	}

	if allocation.Occupancy(p.RoomType) == 0 {
		errs = append(errs, FieldError{Field: "roomType", Message: "room type is missing or unrecognised"})
	}

	if p.PassportExpire == "" {
		errs = append(errs, FieldError{Field: "passport_expire", Message: "passport expiry is required"})
	} else if err := checkPassportExpiry(p.PassportExpire, departureDate); err != nil {
		errs = append(errs, FieldError{Field: "passport_expire", Message: err.Error()})
	}

	return errs
}

// checkPassportExpiry enforces the six-month validity rule against the
// departure date. Both dates are yyyy-mm-dd.
func checkPassportExpiry(expiry, departureDate string) error {
	exp, err := time.Parse("2006-01-02", expiry)
	if err != nil {
		return fmt.Errorf("passport expiry is not a valid date")
	}
	dep, err := time.Parse("2006-01-02", departureDate)
	if err != nil {
		// No departure chosen yet; the step-1 gate handles that.
		return nil
	}
	if exp.Before(dep.AddDate(0, 6, 0)) {
		return fmt.Errorf("passport expiry %s is less than six months after departure date %s", expiry, departureDate)
	}
	return nil
}

// ValidateRoster runs the per-passenger validation over the whole roster
// and tags each error with its roster index.
func ValidateRoster(roster []passengers.Passenger, departureDate string) []FieldError {
	var all []FieldError
	for i := range roster {
		for _, fe := range ValidatePassenger(&roster[i], departureDate) {
			fe.Index = i
			all = append(all, fe)
		}
	}
	return all
}
