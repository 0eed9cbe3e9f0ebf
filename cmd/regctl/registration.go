package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaxreg/pkg/registrationclient"
)

func (c *cli) createCmd() *cobra.Command {
	var (
		req      registrationclient.RegisterRequest
		encoding string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a citizen for vaccination",
		Long: `Submit a registration. Omitted flags are not sent, which lets you check the
server's handling of missing parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := c.client()
			switch encoding {
			case "query":
				client.Encoding = registrationclient.EncodeQuery
			case "form":
				client.Encoding = registrationclient.EncodeForm
			case "json":
				client.Encoding = registrationclient.EncodeJSON
			default:
				return fmt.Errorf("unknown encoding %q: want query, form or json", encoding)
			}

			res, err := client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.CitizenID, "citizen-id", "", "13-digit citizen ID")
	f.StringVar(&req.Name, "name", "", "given name")
	f.StringVar(&req.Surname, "surname", "", "family name")
	f.StringVar(&req.BirthDate, "birth-date", "", "birth date: YYYY-MM-DD, DD/MM/YYYY or MM/DD/YYYY")
	f.StringVar(&req.Occupation, "occupation", "", "occupation")
	f.StringVar(&req.PhoneNumber, "phone", "", "phone number")
	f.StringVar(&req.IsRisk, "risk", "", "whether the citizen is in a risk group (true/false)")
	f.StringVar(&req.Address, "address", "", "address")
	f.StringVar(&encoding, "encoding", "query", "parameter encoding: query, form or json")
	return cmd
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <citizen-id>",
		Short: "Show one registration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := c.client().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <citizen-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a registration",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.client().Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all registrations (requires an admin token)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, _, err := c.client().List(cmd.Context())
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}
