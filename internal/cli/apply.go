package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheecious/kener/internal/logging"
	"github.com/wheecious/kener/internal/manifest"
	"github.com/wheecious/kener/internal/reconcile"
)

type applyOptions struct {
	root      *rootOptions
	file      string
	dryRun    bool
	verifyKey string
	signature string
}

func newApplyCommand(root *rootOptions) *cobra.Command {
	opts := &applyOptions{root: root}

	cmd := &cobra.Command{
		Use:   "apply -f FILE",
		Short: "Reconcile a monitor manifest against the Kener API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "manifest file to apply")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "report what would change without mutating the API")
	flags.StringVar(&opts.verifyKey, "verify-key", "", "Minisign public key file; verify the manifest signature before applying")
	flags.StringVar(&opts.signature, "signature", "", "detached signature file (default FILE.minisig)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runApply(cmd *cobra.Command, opts *applyOptions) error {
	ctx := cmd.Context()

	if opts.verifyKey != "" {
		verifier, err := manifest.LoadVerifier(opts.verifyKey)
		if err != nil {
			return err
		}
		sigPath := opts.signature
		if sigPath == "" {
			sigPath = manifest.SignaturePath(opts.file)
		}
		if err := verifier.Verify(ctx, opts.file, sigPath); err != nil {
			return fmt.Errorf("verify manifest: %w", err)
		}
	}

	doc, err := manifest.Load(opts.file)
	if err != nil {
		return err
	}

	client, err := opts.root.newClient(cmd)
	if err != nil {
		return err
	}

	reconciler, err := reconcile.New(
		reconcile.Config{DryRun: opts.dryRun},
		reconcile.Dependencies{
			API:    client,
			Logger: logging.New(cmd.ErrOrStderr(), "kenerctl"),
		},
	)
	if err != nil {
		return err
	}

	result, err := reconciler.Reconcile(ctx, doc.Spec())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Message)
	fmt.Fprintf(out, "changed: %t\n", result.Changed)
	return nil
}
