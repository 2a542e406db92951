package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sellerdesk/ebay-bridge/internal/config"
	"github.com/sellerdesk/ebay-bridge/internal/ebay"
)

func signInURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signin-url",
		Short: "Print the eBay sign-in URL for the configured application",
		Long: "Prints the browser URL where a seller signs in and grants this\n" +
			"application access, the first step of the Auth'n'Auth flow.",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			identity := ebay.AppIdentity{
				AppID:       cfg.Ebay.AppID,
				CertID:      cfg.Ebay.CertID,
				DevID:       cfg.Ebay.DevID,
				RuName:      cfg.Ebay.RuName,
				Environment: ebay.Environment(cfg.Ebay.Environment),
			}

			u, err := ebay.NewLegacyExchanger(identity).BuildSignInURL()
			if err != nil {
				return fmt.Errorf("building sign-in URL: %w", err)
			}

			fmt.Println(u)
			return nil
		},
	}
}
