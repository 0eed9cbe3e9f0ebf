package models

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"vaxreg/pkg/domain"
	s "vaxreg/pkg/string"
	"vaxreg/pkg/validation"
)

// Feedback strings are part of the public contract; clients match on them verbatim.
const (
	FeedbackSuccess           = "registration success!"
	FeedbackInvalidCitizenID  = "registration failed: invalid citizen ID"
	FeedbackInvalidBirthDate  = "registration failed: invalid birth date format"
	FeedbackMinimumAge        = "registration failed: not archived minimum age"
	FeedbackAlreadyRegistered = "registration failed: this person already registered"
	FeedbackRemoved           = "registration removed"
)

// Registration is a person's vaccination registration, keyed by citizen ID.
type Registration struct {
	CitizenID    domain.CitizenID `json:"citizen_id"`
	Name         string           `json:"name"`
	Surname      string           `json:"surname"`
	BirthDate    domain.BirthDate `json:"birth_date"`
	Occupation   string           `json:"occupation"`
	PhoneNumber  string           `json:"phone_number"`
	IsRisk       bool             `json:"is_risk"`
	Address      string           `json:"address"`
	VaccineTaken []VaccineDose    `json:"vaccine_taken"`
	RegisteredAt time.Time        `json:"registered_at"`
}

// VaccineDose is a server-managed record of an administered dose.
type VaccineDose struct {
	Name       string    `json:"name"`
	DoseNumber int       `json:"dose_number"`
	TakenAt    time.Time `json:"taken_at"`
}

// Clone returns a deep copy with a non-nil dose list, so stored records are never
// aliased by callers and always serialise vaccine_taken as an array.
func (r *Registration) Clone() *Registration {
	if r == nil {
		return nil
	}
	c := *r
	c.VaccineTaken = make([]VaccineDose, len(r.VaccineTaken))
	copy(c.VaccineTaken, r.VaccineTaken)
	return &c
}

// RegisterRequest is the raw registration input as received from any transport.
// Only presence is checked structurally here. Lengths are bounded by the request
// body limit, and format and business rules are applied by the service.
type RegisterRequest struct {
	CitizenID   string `json:"citizen_id" validate:"required,notblank"`
	Name        string `json:"name" validate:"required,notblank"`
	Surname     string `json:"surname" validate:"required,notblank"`
	BirthDate   string `json:"birth_date" validate:"required,notblank"`
	Occupation  string `json:"occupation" validate:"required,notblank"`
	PhoneNumber string `json:"phone_number"`
	IsRisk      string `json:"is_risk"`
	Address     string `json:"address" validate:"required,notblank"`
}

// RegisterRequestFromParams maps form, query, or flattened JSON parameters.
func RegisterRequestFromParams(p url.Values) RegisterRequest {
	return RegisterRequest{
		CitizenID:   p.Get("citizen_id"),
		Name:        p.Get("name"),
		Surname:     p.Get("surname"),
		BirthDate:   p.Get("birth_date"),
		Occupation:  p.Get("occupation"),
		PhoneNumber: p.Get("phone_number"),
		IsRisk:      p.Get("is_risk"),
		Address:     p.Get("address"),
	}
}

func (r *RegisterRequest) Sanitize() {
	s.TrimStrings(&r.CitizenID, &r.Name, &r.Surname, &r.BirthDate,
		&r.Occupation, &r.PhoneNumber, &r.IsRisk, &r.Address)
}

func (r *RegisterRequest) Validate() error {
	return validation.Validate(r)
}

// Risk interprets is_risk leniently: anything that is not a recognised true value is false.
func (r *RegisterRequest) Risk() bool {
	return ParseRisk(r.IsRisk)
}

// ParseRisk accepts strconv.ParseBool spellings plus yes/no and y/n.
func ParseRisk(v string) bool {
	v = strings.TrimSpace(v)
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	switch strings.ToLower(v) {
	case "yes", "y", "on":
		return true
	}
	return false
}

// FeedbackResponse is the body of every registration outcome.
type FeedbackResponse struct {
	Feedback string `json:"feedback"`
}

// ListResponse is returned by the operator listing endpoint.
type ListResponse struct {
	Registrations []*Registration `json:"registrations"`
	Count         int             `json:"count"`
}
