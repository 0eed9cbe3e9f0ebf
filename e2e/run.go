// Package e2e is the black-box conformance suite for the registration API. It speaks
// only HTTP, so it can be pointed at any server that claims to implement the contract.
package e2e

import (
	"context"
	"embed"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/joho/godotenv"

	"vaxreg/pkg/registrationclient"
)

//go:embed features/*.feature
var features embed.FS

const defaultSuccessContentType = "application/json"

// Options configures a conformance run.
type Options struct {
	// BaseURL of the server under test.
	BaseURL string
	// SuccessContentType is the media type expected on a 201. Some server variants
	// answer successful registrations with text/html.
	SuccessContentType string
	AdminToken         string
	// Format is a godog formatter name: pretty, progress, junit, cucumber.
	Format string
	Output io.Writer
	// Tags filters scenarios, e.g. "~@slow".
	Tags string
	// Paths overrides the embedded feature files.
	Paths []string
}

// OptionsFromEnv reads URL (falling back to BASE_URL) and EXPECT_SUCCESS_CONTENT_TYPE,
// loading a .env file first when one is present.
func OptionsFromEnv() Options {
	_ = godotenv.Load()

	baseURL := os.Getenv("URL")
	if baseURL == "" {
		baseURL = os.Getenv("BASE_URL")
	}
	if baseURL == "" {
		baseURL = registrationclient.DefaultBaseURL
	}
	return Options{
		BaseURL:            baseURL,
		SuccessContentType: os.Getenv("EXPECT_SUCCESS_CONTENT_TYPE"),
		AdminToken:         os.Getenv("ADMIN_API_TOKEN"),
	}
}

// Run executes the suite and returns godog's exit status: 0 on success.
func Run(ctx context.Context, opts Options) int {
	return newSuite(ctx, opts, nil).Run()
}

func newSuite(ctx context.Context, opts Options, t *testing.T) godog.TestSuite {
	if opts.SuccessContentType == "" {
		opts.SuccessContentType = defaultSuccessContentType
	}
	if opts.Format == "" {
		opts.Format = "pretty"
	}

	gopts := godog.Options{
		Format:         opts.Format,
		Output:         opts.Output,
		Tags:           opts.Tags,
		Strict:         true,
		Concurrency:    1,
		DefaultContext: ctx,
		TestingT:       t,
	}
	if len(opts.Paths) > 0 {
		gopts.Paths = opts.Paths
	} else {
		gopts.FS = features
		gopts.Paths = []string{"features"}
	}

	return godog.TestSuite{
		Name: "registration",
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			InitializeScenario(sc, opts)
		},
		Options: &gopts,
	}
}

// InitializeScenario gives every scenario a fresh TestContext.
func InitializeScenario(sc *godog.ScenarioContext, opts Options) {
	tc := NewTestContext(opts)

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	sc.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
		if err != nil && tc.last != nil {
			tc.logf("scenario %q failed; last response %d %s: %s",
				s.Name, tc.last.Status, tc.last.ContentType, strings.TrimSpace(string(tc.last.Body)))
		}
		return ctx, nil
	})

	RegisterSteps(sc, tc)
}
