package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wheecious/kener/internal/logging"
	"github.com/wheecious/kener/internal/manifest"
	"github.com/wheecious/kener/internal/reconcile"
	"github.com/wheecious/kener/pkg/types"
)

type deleteOptions struct {
	root   *rootOptions
	file   string
	tag    string
	dryRun bool
}

func newDeleteCommand(root *rootOptions) *cobra.Command {
	opts := &deleteOptions{root: root}

	cmd := &cobra.Command{
		Use:   "delete (--tag TAG | -f FILE)",
		Short: "Remove the monitor carrying a tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.tag, "tag", "", "tag of the monitor to remove")
	flags.StringVarP(&opts.file, "file", "f", "", "manifest file naming the monitor to remove")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "report what would change without mutating the API")

	return cmd
}

func runDelete(cmd *cobra.Command, opts *deleteOptions) error {
	if (opts.tag == "") == (opts.file == "") {
		return errors.New("exactly one of --tag or --file is required")
	}

	spec := types.MonitorSpec{State: types.StateAbsent, Tag: opts.tag}
	if opts.file != "" {
		doc, err := manifest.Load(opts.file)
		if err != nil {
			return err
		}
		spec = doc.Spec()
		spec.State = types.StateAbsent
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

	result, err := reconciler.Reconcile(cmd.Context(), spec)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Message)
	fmt.Fprintf(out, "changed: %t\n", result.Changed)
	return nil
}
