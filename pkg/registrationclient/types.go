package registrationclient

import (
	"net/url"
	"time"
)

// RegisterRequest holds the registration parameters as the client sends them.
// Values are passed through untouched so that malformed input reaches the server.
type RegisterRequest struct {
	CitizenID   string
	Name        string
	Surname     string
	BirthDate   string
	Occupation  string
	PhoneNumber string
	IsRisk      string
	Address     string
}

// Params renders the request as wire parameters. Empty fields are omitted, which is
// how a missing parameter is expressed.
func (r RegisterRequest) Params() url.Values {
	p := url.Values{}
	for k, v := range map[string]string{
		"citizen_id":   r.CitizenID,
		"name":         r.Name,
		"surname":      r.Surname,
		"birth_date":   r.BirthDate,
		"occupation":   r.Occupation,
		"phone_number": r.PhoneNumber,
		"is_risk":      r.IsRisk,
		"address":      r.Address,
	} {
		if v != "" {
			p.Set(k, v)
		}
	}
	return p
}

// Registration is a stored record as returned by GET. BirthDate is always YYYY-MM-DD.
type Registration struct {
	CitizenID    string        `json:"citizen_id"`
	Name         string        `json:"name"`
	Surname      string        `json:"surname"`
	BirthDate    string        `json:"birth_date"`
	Occupation   string        `json:"occupation"`
	PhoneNumber  string        `json:"phone_number"`
	IsRisk       bool          `json:"is_risk"`
	Address      string        `json:"address"`
	VaccineTaken []VaccineDose `json:"vaccine_taken"`
	RegisteredAt time.Time     `json:"registered_at"`
}

type VaccineDose struct {
	Name       string    `json:"name"`
	DoseNumber int       `json:"dose_number"`
	TakenAt    time.Time `json:"taken_at"`
}

// ListResponse is the operator listing body.
type ListResponse struct {
	Registrations []Registration `json:"registrations"`
	Count         int            `json:"count"`
}

type feedbackBody struct {
	Feedback string `json:"feedback"`
}
