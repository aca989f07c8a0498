package cli

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/wheecious/kener/internal/config"
	"github.com/wheecious/kener/internal/kener"
	"github.com/wheecious/kener/internal/logging"
)

// Version is the kenerctl release version, also sent as the User-Agent.
const Version = "0.0.1"

type rootOptions struct {
	configPath    string
	apiURL        string
	apiKey        string
	timeoutSec    int
	validateCerts bool
}

// NewRootCommand builds the kenerctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "kenerctl",
		Short:         "Manage Kener status-page monitors declaratively",
		Long:          "kenerctl reconciles declared monitors against a Kener instance: it creates, updates, or removes a monitor so the remote state matches a manifest.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default $KENERCTL_CONFIG)")
	flags.StringVar(&opts.apiURL, "api-url", "", "Kener base URL (overrides config and KENER_API_URL)")
	flags.StringVar(&opts.apiKey, "api-key", "", "Kener API key (overrides config and KENER_API_KEY)")
	flags.IntVar(&opts.timeoutSec, "timeout", 0, "request timeout in seconds")
	flags.BoolVar(&opts.validateCerts, "validate-certs", true, "verify the API TLS certificate")

	cmd.AddCommand(newApplyCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newGetCommand(opts))
	cmd.AddCommand(newValidateCommand(opts))
	return cmd
}

// Execute runs kenerctl and exits non-zero on any error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "kenerctl: %v\n", err)
		os.Exit(1)
	}
}

func (o *rootOptions) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	ctx := cmd.Context()

	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(ctx, o.configPath)
	} else {
		cfg, err = config.FromEnv(ctx)
	}
	if err != nil {
		return config.Config{}, err
	}

	cfg.ApplyEnv()
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	if o.apiKey != "" {
		cfg.APIKey = o.apiKey
	}
	if o.timeoutSec > 0 {
		cfg.TimeoutSec = o.timeoutSec
	}
	if cmd.Flags().Changed("validate-certs") {
		v := o.validateCerts
		cfg.ValidateCerts = &v
	}
	return cfg, nil
}

// newClient resolves the connection config and builds the API client.
func (o *rootOptions) newClient(cmd *cobra.Command) (*kener.Client, error) {
	cfg, err := o.resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Timeout()}
	if !cfg.TLSVerify() {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return kener.NewClient(
		kener.Config{BaseURL: cfg.APIURL, APIKey: cfg.APIKey},
		kener.Dependencies{
			HTTPClient: httpClient,
			Logger:     logging.New(cmd.ErrOrStderr(), "kenerctl"),
		},
	)
}
