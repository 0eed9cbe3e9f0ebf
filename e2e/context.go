package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"vaxreg/pkg/registrationclient"
)

// TestContext holds state between steps of one scenario.
type TestContext struct {
	client             *registrationclient.Client
	successContentType string
	out                io.Writer

	form url.Values
	last *registrationclient.Result
}

func NewTestContext(opts Options) *TestContext {
	client := registrationclient.New(opts.BaseURL)
	client.AdminToken = opts.AdminToken

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	return &TestContext{
		client:             client,
		successContentType: opts.SuccessContentType,
		out:                out,
	}
}

func (tc *TestContext) reset() {
	tc.form = nil
	tc.last = nil
}

// defaultForm is a complete, valid registration for citizenID.
func defaultForm(citizenID string) url.Values {
	return registrationclient.RegisterRequest{
		CitizenID:   citizenID,
		Name:        "Chayapol",
		Surname:     "Chaipongsawalee",
		BirthDate:   "2000-05-11",
		Occupation:  "occupation",
		PhoneNumber: "0980000000",
		IsRisk:      "False",
		Address:     "address",
	}.Params()
}

func (tc *TestContext) requireResponse() error {
	if tc.last == nil {
		return fmt.Errorf("no request has been sent yet")
	}
	return nil
}

// field looks up a top-level field of the last JSON response.
func (tc *TestContext) field(name string) (any, error) {
	if err := tc.requireResponse(); err != nil {
		return nil, err
	}
	var body map[string]any
	if err := json.Unmarshal(tc.last.Body, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	v, ok := body[name]
	if !ok {
		return nil, fmt.Errorf("response has no field %q", name)
	}
	return v, nil
}

func (tc *TestContext) logf(format string, args ...any) {
	fmt.Fprintf(tc.out, format+"\n", args...)
}
