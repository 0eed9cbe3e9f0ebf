package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaxreg/e2e"
)

func (c *cli) conformanceCmd() *cobra.Command {
	var (
		successContentType string
		format             string
		tags               string
	)

	cmd := &cobra.Command{
		Use:   "conformance [feature paths...]",
		Short: "Run the black-box conformance suite against the server",
		Long: `Run the registration feature suite over HTTP. Every scenario first removes the
citizen it uses, so the suite is safe to repeat against the same server.

Feature files are embedded; pass paths to run your own instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := e2e.OptionsFromEnv()
			opts.BaseURL = c.v.GetString("url")
			opts.AdminToken = c.v.GetString("admin-token")
			if successContentType != "" {
				opts.SuccessContentType = successContentType
			}
			opts.Format = format
			opts.Tags = tags
			opts.Output = cmd.OutOrStdout()
			opts.Paths = args

			if status := e2e.Run(cmd.Context(), opts); status != 0 {
				return fmt.Errorf("conformance suite failed against %s", opts.BaseURL)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&successContentType, "success-content-type", "",
		"media type expected on a successful registration (default application/json, or EXPECT_SUCCESS_CONTENT_TYPE)")
	f.StringVar(&format, "format", "pretty", "godog output format: pretty, progress, junit or cucumber")
	f.StringVar(&tags, "tags", "", "only run scenarios matching this tag expression")
	return cmd
}
