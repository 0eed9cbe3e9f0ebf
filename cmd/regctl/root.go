package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vaxreg/pkg/registrationclient"
)

var version = "dev"

type cli struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "regctl",
		Short: "Client for the vaccination registration API",
		Long: `regctl sends requests to a registration server and prints the raw status,
content type, and body of each response.

The server address comes from --url, REGCTL_URL, or URL, in that order.

Examples:
  regctl create --citizen-id 1234567890123 --name Somchai --surname Jaidee \
    --birth-date 2000-05-11 --occupation Engineer --address Bangkok
  regctl get 1234567890123
  regctl delete 1234567890123
  REGCTL_ADMIN_TOKEN=secret regctl list
  URL=http://localhost:8080 regctl conformance`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("url", registrationclient.DefaultBaseURL, "base URL of the registration server")
	flags.String("admin-token", "", "operator token for admin endpoints")
	flags.Duration("timeout", 10*time.Second, "per-request timeout")
	c.bind(flags)

	root.AddCommand(
		c.createCmd(),
		c.getCmd(),
		c.deleteCmd(),
		c.listCmd(),
		c.conformanceCmd(),
	)
	return root
}

// bind wires flags into viper so that flags win over REGCTL_* variables, which win over
// defaults. URL is honoured as a legacy alias for the server address.
func (c *cli) bind(flags *pflag.FlagSet) {
	c.v.SetEnvPrefix("REGCTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	_ = c.v.BindPFlags(flags)
	_ = c.v.BindEnv("url", "REGCTL_URL", "URL")
}

func (c *cli) client() *registrationclient.Client {
	client := registrationclient.New(c.v.GetString("url"))
	client.AdminToken = c.v.GetString("admin-token")
	if timeout := c.v.GetDuration("timeout"); timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}
	return client
}

// printResult writes the exchange the way curl -i would summarise it.
func printResult(w io.Writer, res *registrationclient.Result) {
	fmt.Fprintf(w, "%d %s\n", res.Status, http.StatusText(res.Status))
	if res.ContentType != "" {
		fmt.Fprintf(w, "Content-Type: %s\n", res.ContentType)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.TrimSpace(string(res.Body)))
}
