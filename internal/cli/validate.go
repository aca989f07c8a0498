package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheecious/kener/internal/manifest"
	"github.com/wheecious/kener/internal/reconcile"
	"github.com/wheecious/kener/pkg/types"
)

type validateOptions struct {
	file string
}

func newValidateCommand(root *rootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate -f FILE",
		Short: "Validate a monitor manifest without touching the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "manifest file to validate")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *validateOptions) error {
	doc, err := manifest.Load(opts.file)
	if err != nil {
		return err
	}

	spec := doc.Spec()
	if spec.State == types.StatePresent {
		if _, err := reconcile.BuildPayload(spec); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (monitor %s, type %s)\n", opts.file, spec.Tag, spec.Type)
	return nil
}
