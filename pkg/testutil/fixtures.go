package testutil

import (
	"net/url"
	"time"

	"vaxreg/internal/registration/models"
	"vaxreg/pkg/domain"
	"vaxreg/pkg/registrationclient"
)

// TestCitizenIDs are well-formed IDs for deterministic test data.
var TestCitizenIDs = struct {
	Citizen1 domain.CitizenID
	Citizen2 domain.CitizenID
	Citizen3 domain.CitizenID
}{
	Citizen1: "1234567890123",
	Citizen2: "9876543210987",
	Citizen3: "1111111111111",
}

// ReferenceNow is a fixed "now" for age arithmetic in tests.
var ReferenceNow = time.Date(2021, time.June, 1, 10, 0, 0, 0, time.UTC)

// RegistrationBuilder builds stored registrations.
type RegistrationBuilder struct {
	reg *models.Registration
}

// NewRegistrationBuilder starts from a valid adult registration.
func NewRegistrationBuilder() *RegistrationBuilder {
	return &RegistrationBuilder{
		reg: &models.Registration{
			CitizenID:    TestCitizenIDs.Citizen1,
			Name:         "Somchai",
			Surname:      "Jaidee",
			BirthDate:    domain.NewBirthDate(time.Date(2000, time.November, 5, 0, 0, 0, 0, time.UTC)),
			Occupation:   "Engineer",
			PhoneNumber:  "0812345678",
			Address:      "99 Sukhumvit Road, Bangkok",
			VaccineTaken: []models.VaccineDose{},
			RegisteredAt: ReferenceNow,
		},
	}
}

func (b *RegistrationBuilder) WithCitizenID(id domain.CitizenID) *RegistrationBuilder {
	b.reg.CitizenID = id
	return b
}

func (b *RegistrationBuilder) WithBirthDate(t time.Time) *RegistrationBuilder {
	b.reg.BirthDate = domain.NewBirthDate(t)
	return b
}

func (b *RegistrationBuilder) WithRisk(risk bool) *RegistrationBuilder {
	b.reg.IsRisk = risk
	return b
}

func (b *RegistrationBuilder) WithDose(name string, dose int, takenAt time.Time) *RegistrationBuilder {
	b.reg.VaccineTaken = append(b.reg.VaccineTaken, models.VaccineDose{Name: name, DoseNumber: dose, TakenAt: takenAt})
	return b
}

func (b *RegistrationBuilder) Build() *models.Registration {
	return b.reg.Clone()
}

// ValidRegisterRequest returns a request that passes every registration rule at ReferenceNow.
func ValidRegisterRequest() models.RegisterRequest {
	return models.RegisterRequest{
		CitizenID:   TestCitizenIDs.Citizen1.String(),
		Name:        "Somchai",
		Surname:     "Jaidee",
		BirthDate:   "05/11/2000",
		Occupation:  "Engineer",
		PhoneNumber: "0812345678",
		IsRisk:      "False",
		Address:     "99 Sukhumvit Road, Bangkok",
	}
}

// ValidRegisterParams is ValidRegisterRequest encoded as a client would send it.
func ValidRegisterParams() url.Values {
	return clientRequest(ValidRegisterRequest()).Params()
}

// clientRequest converts a server-side request into its client-side twin.
func clientRequest(r models.RegisterRequest) registrationclient.RegisterRequest {
	return registrationclient.RegisterRequest{
		CitizenID:   r.CitizenID,
		Name:        r.Name,
		Surname:     r.Surname,
		BirthDate:   r.BirthDate,
		Occupation:  r.Occupation,
		PhoneNumber: r.PhoneNumber,
		IsRisk:      r.IsRisk,
		Address:     r.Address,
	}
}
