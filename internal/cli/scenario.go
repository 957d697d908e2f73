package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wifilab/internal/scenario"
)

func newScenarioCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Inspect and edit scenario CSV files",
	}
	cmd.PersistentFlags().StringVar(&csvPath, "csv", "scenario.csv", "Scenario CSV path")

	cmd.AddCommand(newScenarioListCmd(&csvPath))
	cmd.AddCommand(newScenarioAddCmd(&csvPath))
	cmd.AddCommand(newScenarioDelCmd(&csvPath))
	return cmd
}

func openSync(csvPath string) (*scenario.Sync, error) {
	s, err := scenario.NewSync(csvPath, silentForm{})
	if err != nil {
		return nil, exitWithCode(err, ExitInternalError)
	}
	return s, nil
}

func newScenarioListCmd(csvPath *string) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the scenario rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSync(*csvPath)
			if err != nil {
				return err
			}
			if err := printRows(cmd, s); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			// Re-print whenever the file is edited externally.
			changed := make(chan struct{}, 1)
			stop, err := scenario.Watch(*csvPath, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
			if err != nil {
				return exitWithCode(err, ExitInternalError)
			}
			defer stop()

			for range changed {
				if err := s.Reload(); err != nil {
					return exitWithCode(err, ExitInternalError)
				}
				if err := printRows(cmd, s); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep watching the file and re-print on change")
	return cmd
}

func printRows(cmd *cobra.Command, s *scenario.Sync) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\t"+strings.Join(scenario.DefaultHeader, "\t"))
	for i, row := range s.Rows() {
		cells := make([]string, 0, len(scenario.DefaultHeader)+1)
		cells = append(cells, strconv.Itoa(i))
		for _, col := range scenario.DefaultHeader {
			cells = append(cells, row[col])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

type scenarioRowOptions struct {
	Band         string
	SSID         string
	WirelessMode string
	Channel      string
	Bandwidth    string
	SecurityMode string
	Password     string
	TX           string
	RX           string
}

func (o *scenarioRowOptions) row() scenario.Row {
	return scenario.Row{
		"band":          o.Band,
		"ssid":          o.SSID,
		"wireless_mode": o.WirelessMode,
		"channel":       o.Channel,
		"bandwidth":     o.Bandwidth,
		"security_mode": o.SecurityMode,
		"password":      o.Password,
		"tx":            o.TX,
		"rx":            o.RX,
	}
}

func newScenarioAddCmd(csvPath *string) *cobra.Command {
	opts := &scenarioRowOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a scenario row and save the file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSync(*csvPath)
			if err != nil {
				return err
			}
			if err := s.Add(opts.row()); err != nil {
				return exitWithCode(err, ExitValidation)
			}
			fmt.Printf("added row %d of %d\n", s.Selected(), s.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Band, "band", "", "Band (2.4G|5G)")
	cmd.Flags().StringVar(&opts.SSID, "ssid", "", "Network SSID")
	cmd.Flags().StringVar(&opts.WirelessMode, "wireless-mode", "", "Wireless mode (e.g. 11ax)")
	cmd.Flags().StringVar(&opts.Channel, "channel", "", "Channel number")
	cmd.Flags().StringVar(&opts.Bandwidth, "bandwidth", "", "Channel bandwidth (e.g. 80M)")
	cmd.Flags().StringVar(&opts.SecurityMode, "security-mode", "", "Security mode (e.g. wpa2)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Network password")
	cmd.Flags().StringVar(&opts.TX, "tx", "", "Run the TX direction (1|0)")
	cmd.Flags().StringVar(&opts.RX, "rx", "", "Run the RX direction (1|0)")
	_ = cmd.MarkFlagRequired("ssid")
	return cmd
}

func newScenarioDelCmd(csvPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "del INDEX",
		Short: "Delete a scenario row and save the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[0])
			if err != nil {
				return exitWithCode(fmt.Errorf("bad row index %q", args[0]), ExitValidation)
			}
			s, err := openSync(*csvPath)
			if err != nil {
				return err
			}
			if err := s.Delete(i); err != nil {
				return exitWithCode(err, ExitValidation)
			}
			fmt.Printf("deleted row %d, %d remaining\n", i, s.Len())
			return nil
		},
	}
}
