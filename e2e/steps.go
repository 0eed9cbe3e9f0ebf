package e2e

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"

	"vaxreg/pkg/registrationclient"
)

// RegisterSteps binds the step vocabulary used by features/registration.feature.
func RegisterSteps(sc *godog.ScenarioContext, tc *TestContext) {
	// Setup
	sc.Step(`^the registration service is reachable$`, tc.serviceIsReachable)
	sc.Step(`^no registration exists for citizen "([^"]*)"$`, tc.noRegistrationExists)
	sc.Step(`^a registration form for citizen "([^"]*)"$`, tc.registrationForm)
	sc.Step(`^the "([^"]*)" parameter is omitted$`, tc.parameterOmitted)
	sc.Step(`^the "([^"]*)" parameter is "([^"]*)"$`, tc.parameterIs)
	sc.Step(`^the registration has been submitted$`, tc.registrationSubmitted)

	// Actions
	sc.Step(`^I submit the registration$`, tc.submitRegistration)
	sc.Step(`^I fetch the registration for citizen "([^"]*)"$`, tc.fetchRegistration)
	sc.Step(`^I delete the registration for citizen "([^"]*)"$`, tc.deleteRegistration)
	sc.Step(`^I send a (GET|POST|DELETE|PUT|PATCH) request to "([^"]*)"$`, tc.sendRequest)

	// Assertions
	sc.Step(`^the response status should be (\d+)$`, tc.statusShouldBe)
	sc.Step(`^the response content type should be "([^"]*)"$`, tc.contentTypeShouldBe)
	sc.Step(`^the response content type should be the success content type$`, tc.contentTypeShouldBeSuccess)
	sc.Step(`^the feedback should be "([^"]*)"$`, tc.feedbackShouldBe)
	sc.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.fieldShouldEqual)
	sc.Step(`^the response field "([^"]*)" should be an empty list$`, tc.fieldShouldBeEmptyList)
}

func (tc *TestContext) serviceIsReachable(ctx context.Context) error {
	if _, err := tc.client.Do(ctx, http.MethodGet, "/"); err != nil {
		return fmt.Errorf("registration service unreachable: %w", err)
	}
	return nil
}

// noRegistrationExists clears leftovers from earlier runs. Any HTTP answer is fine.
func (tc *TestContext) noRegistrationExists(ctx context.Context, citizenID string) error {
	_, err := tc.client.Delete(ctx, citizenID)
	return err
}

func (tc *TestContext) registrationForm(_ context.Context, citizenID string) error {
	tc.form = defaultForm(citizenID)
	return nil
}

func (tc *TestContext) parameterOmitted(_ context.Context, name string) error {
	tc.form.Del(name)
	return nil
}

func (tc *TestContext) parameterIs(_ context.Context, name, value string) error {
	tc.form.Set(name, value)
	return nil
}

func (tc *TestContext) registrationSubmitted(ctx context.Context) error {
	if err := tc.submitRegistration(ctx); err != nil {
		return err
	}
	return tc.statusShouldBe(ctx, http.StatusCreated)
}

func (tc *TestContext) submitRegistration(ctx context.Context) error {
	res, err := tc.client.RegisterParams(ctx, tc.form)
	if err != nil {
		return err
	}
	tc.last = res
	return nil
}

func (tc *TestContext) fetchRegistration(ctx context.Context, citizenID string) error {
	res, _, err := tc.client.Get(ctx, citizenID)
	if err != nil {
		return err
	}
	tc.last = res
	return nil
}

func (tc *TestContext) deleteRegistration(ctx context.Context, citizenID string) error {
	res, err := tc.client.Delete(ctx, citizenID)
	if err != nil {
		return err
	}
	tc.last = res
	return nil
}

func (tc *TestContext) sendRequest(ctx context.Context, method, path string) error {
	res, err := tc.client.Do(ctx, method, path)
	if err != nil {
		return err
	}
	tc.last = res
	return nil
}

func (tc *TestContext) statusShouldBe(_ context.Context, expected int) error {
	if err := tc.requireResponse(); err != nil {
		return err
	}
	if tc.last.Status != expected {
		return fmt.Errorf("expected status %d, got %d", expected, tc.last.Status)
	}
	return nil
}

// contentTypeShouldBe compares media types, so "text/html" matches "text/html; charset=utf-8".
func (tc *TestContext) contentTypeShouldBe(_ context.Context, expected string) error {
	if err := tc.requireResponse(); err != nil {
		return err
	}
	want := (&registrationclient.Result{ContentType: expected}).MediaType()
	if got := tc.last.MediaType(); got != want {
		return fmt.Errorf("expected content type %q, got %q", expected, tc.last.ContentType)
	}
	return nil
}

func (tc *TestContext) contentTypeShouldBeSuccess(ctx context.Context) error {
	return tc.contentTypeShouldBe(ctx, tc.successContentType)
}

func (tc *TestContext) feedbackShouldBe(_ context.Context, expected string) error {
	if err := tc.requireResponse(); err != nil {
		return err
	}
	if tc.last.Feedback != expected {
		return fmt.Errorf("expected feedback %q, got %q", expected, tc.last.Feedback)
	}
	return nil
}

func (tc *TestContext) fieldShouldEqual(_ context.Context, name, expected string) error {
	v, err := tc.field(name)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", name, expected, got)
	}
	return nil
}

func (tc *TestContext) fieldShouldBeEmptyList(_ context.Context, name string) error {
	v, err := tc.field(name)
	if err != nil {
		return err
	}
	list, ok := v.([]any)
	if !ok {
		return fmt.Errorf("expected %s to be a list, got %T", name, v)
	}
	if len(list) != 0 {
		return fmt.Errorf("expected %s to be empty, got %d entries", name, len(list))
	}
	return nil
}
