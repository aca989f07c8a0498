package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wheecious/kener/pkg/types"
)

type getOptions struct {
	root   *rootOptions
	tag    string
	output string
}

func newGetCommand(root *rootOptions) *cobra.Command {
	opts := &getOptions{root: root}

	cmd := &cobra.Command{
		Use:   "get --tag TAG",
		Short: "Fetch the remote monitor records for a tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.tag, "tag", "", "tag to look up")
	flags.StringVarP(&opts.output, "output", "o", "yaml", "output format, yaml or json")
	_ = cmd.MarkFlagRequired("tag")

	return cmd
}

// printableMonitor is the display form of a remote record. The stored
// type_data string is shown decoded when it parses, verbatim otherwise.
type printableMonitor struct {
	ID           types.ID `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Tag          string   `json:"tag" yaml:"tag"`
	Status       string   `json:"status" yaml:"status"`
	Cron         string   `json:"cron" yaml:"cron"`
	CategoryName string   `json:"category_name" yaml:"category_name"`
	MonitorType  string   `json:"monitor_type" yaml:"monitor_type"`
	TypeData     any      `json:"type_data,omitempty" yaml:"type_data,omitempty"`
}

func printable(m types.RemoteMonitor) printableMonitor {
	p := printableMonitor{
		ID:           m.ID,
		Name:         m.Name,
		Tag:          m.Tag,
		Status:       m.Status,
		Cron:         m.Cron,
		CategoryName: m.CategoryName,
		MonitorType:  m.MonitorType,
	}
	data, err := types.DecodeTypeData(types.MonitorType(m.MonitorType), m.TypeData)
	switch {
	case err != nil:
		p.TypeData = m.TypeData
	case data != nil:
		p.TypeData = data
	}
	return p
}

func runGet(cmd *cobra.Command, opts *getOptions) error {
	client, err := opts.root.newClient(cmd)
	if err != nil {
		return err
	}

	monitors, err := client.ListMonitorsByTag(cmd.Context(), opts.tag)
	if err != nil {
		return err
	}
	if len(monitors) == 0 {
		return fmt.Errorf("no monitor %s found", opts.tag)
	}

	records := make([]printableMonitor, 0, len(monitors))
	for _, m := range monitors {
		records = append(records, printable(m))
	}

	out := cmd.OutOrStdout()
	switch opts.output {
	case "yaml":
		data, err := yaml.Marshal(records)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(data))
	case "json":
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	default:
		return fmt.Errorf("unsupported output format %q", opts.output)
	}
	return nil
}
