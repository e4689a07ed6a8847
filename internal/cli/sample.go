package cli

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"webhooksandbox/internal/engine/notifications"
	"webhooksandbox/internal/platform/credentials"
)

// GatewayFactory builds the gateway once flags are parsed.
type GatewayFactory func(configPath string) (*notifications.TestingGateway, error)

func NewRootCommand(newGateway GatewayFactory) *cobra.Command {
	var (
		configPath string
		kind       string
		id         string
		format     string
	)

	root := &cobra.Command{
		Use:           "sample",
		Short:         "Print a signed sample webhook notification",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if kind == "" || id == "" {
				return fmt.Errorf("--kind and --id are required")
			}

			gateway, err := newGateway(configPath)
			if err != nil {
				return err
			}
			sample := gateway.Sample(notifications.Kind(kind), id)
			return writeSample(cmd, sample, format)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	root.Flags().StringVarP(&kind, "kind", "k", "", "notification kind, e.g. dispute_opened")
	root.Flags().StringVarP(&id, "id", "i", "", "identifier echoed in the subject")
	root.Flags().StringVarP(&format, "format", "f", "json", "output format: json, form or decoded")

	root.AddCommand(&cobra.Command{
		Use:   "kinds",
		Short: "List known notification kinds",
		Run: func(cmd *cobra.Command, args []string) {
			for _, k := range notifications.Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		},
	})

	root.AddCommand(newKeychainCommand())

	return root
}

func newKeychainCommand() *cobra.Command {
	var account, privateKey string

	set := &cobra.Command{
		Use:   "set",
		Short: "Store the gateway private key in the system keychain",
		Long: "Stores the private key under --account so gateway.keychain_account can\n" +
			"replace gateway.private_key in the config. The key is read from stdin\n" +
			"when --private-key is not given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if account == "" {
				return fmt.Errorf("--account is required")
			}
			if privateKey == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read private key: %w", err)
				}
				privateKey = strings.TrimSpace(line)
			}
			if privateKey == "" {
				return fmt.Errorf("private key is empty")
			}

			if err := credentials.Store(account, privateKey); err != nil {
				return fmt.Errorf("store private key: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored private key for account %q\n", account)
			return nil
		},
	}
	set.Flags().StringVar(&account, "account", "", "keychain account, matches gateway.keychain_account")
	set.Flags().StringVar(&privateKey, "private-key", "", "private key to store (read from stdin if omitted)")

	keychain := &cobra.Command{
		Use:   "keychain",
		Short: "Manage the private key kept in the system keychain",
	}
	keychain.AddCommand(set)
	return keychain
}

func writeSample(cmd *cobra.Command, sample notifications.Sample, format string) error {
	out := cmd.OutOrStdout()

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sample)
	case "form":
		form := url.Values{}
		for k, v := range sample.Fields() {
			form.Set(k, v)
		}
		_, err := fmt.Fprintln(out, form.Encode())
		return err
	case "decoded":
		doc, err := base64.StdEncoding.DecodeString(sample.Payload)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n%s: %s\n", doc, notifications.SignatureField, sample.Signature)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
