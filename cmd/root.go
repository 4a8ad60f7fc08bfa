package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"pscan/scan"
	"pscan/version"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool
var timeoutMS int = 250
var workerCap int
var protocolStr = "tcp"
var portRangeStr string
var ignoredStateStrs []string
var skipLiveness bool
var noProgress bool
var versionRequested bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&versionRequested, "version", "", versionRequested, "Output version information and exit")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", verbose, "Enable verbose logging")
	rootCmd.PersistentFlags().IntVarP(&timeoutMS, "timeout-ms", "t", timeoutMS, "Per-port probe timeout in MS")
	rootCmd.PersistentFlags().IntVarP(&workerCap, "workers", "w", workerCap, "Worker cap (defaults to available parallelism, at most 16)")
	rootCmd.PersistentFlags().StringVarP(&protocolStr, "protocol", "s", protocolStr, "Scan protocol. Must be one of tcp, udp")
	rootCmd.PersistentFlags().StringVarP(&portRangeStr, "ports", "p", portRangeStr, "Port range to scan, e.g. 1-1024. Defaults to 1-65535")
	rootCmd.PersistentFlags().StringSliceVarP(&ignoredStateStrs, "ignore-state", "i", ignoredStateStrs, "Port states omitted from the report, e.g. filtered")
	rootCmd.PersistentFlags().BoolVarP(&skipLiveness, "skip-liveness", "n", skipLiveness, "Skip the host liveness pre-check")
	rootCmd.PersistentFlags().BoolVarP(&noProgress, "no-progress", "q", noProgress, "Disable the progress bar")
}

var rootCmd = &cobra.Command{
	Use:   "pscan [flags] target",
	Short: "pscan is a TCP/UDP port scanner",
	Long:  `A concurrent port scanner that classifies ports as open, closed or filtered.`,
	Run: func(cmd *cobra.Command, args []string) {

		if versionRequested {
			v := version.Version
			if v == "" {
				v = "development version"
			}
			fmt.Printf("pscan %s\n", v)
			return
		}

		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		if len(args) != 1 {
			fmt.Println("Please specify a single target")
			os.Exit(1)
		}
		target := args[0]

		protocol, err := scan.ParseProtocol(protocolStr)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		portRange := scan.DefaultPortRange()
		if portRangeStr != "" {
			portRange, err = scan.ParsePortRange(portRangeStr)
			if err != nil {
				fmt.Println(err)
				os.Exit(1)
			}
		}

		ignored, err := parseIgnoredStates(ignoredStateStrs)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		addr, err := resolveTarget(target)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		log.Debugf("resolved %s to %s", target, addr)

		timeout := time.Millisecond * time.Duration(timeoutMS)

		if !skipLiveness {
			if latency, up := scan.HostUp(addr, time.Second); up {
				fmt.Printf("Host is up (%s latency).\n", latency)
			} else {
				log.Warnf("Host %s did not answer the liveness probe; scanning anyway", addr)
			}
		}

		opts := []scan.Option{}
		if workerCap > 0 {
			opts = append(opts, scan.WithWorkerCap(workerCap))
		}

		var bar *progressbar.ProgressBar
		if !noProgress {
			bar = progressbar.NewOptions(portRange.Size(),
				progressbar.OptionSetDescription("scanning"),
				progressbar.OptionSetWidth(30),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			opts = append(opts, scan.WithProgress(func(n int) {
				_ = bar.Add(n)
			}))
		}

		engine := scan.NewEngine(protocol, timeout, opts...)

		report, err := engine.Scan(context.Background(), addr, portRange)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if bar != nil {
			_ = bar.Finish()
		}

		printReport(target, addr, portRange, report, ignored)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func resolveTarget(target string) (net.IP, error) {
	if ip := net.ParseIP(target); ip != nil {
		return ip, nil
	}
	ips, err := net.LookupIP(target)
	if err != nil {
		return nil, fmt.Errorf("could not resolve '%s': %w", target, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("lookup returned no addresses for '%s'", target)
	}
	return ips[0], nil
}

func parseIgnoredStates(inputs []string) ([]scan.PortState, error) {
	states := make([]scan.PortState, 0, len(inputs))
	for _, input := range inputs {
		state, err := scan.ParsePortState(input)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

func printReport(target string, addr net.IP, portRange scan.PortRange, report *scan.Report, ignored []scan.PortState) {

	fmt.Printf("\npscan report for %s (%s): %s\n", target, addr, portRange)

	for _, state := range ignored {
		if n := report.Results.Count(state); n > 0 {
			fmt.Printf("Not shown: %d %s ports\n", n, state)
		}
	}

	shown := report.Results.Filter(ignored...)

	fmt.Printf("%s%s%s\n", pad("PORT", 12), pad("STATE", 10), "SERVICE")
	for _, result := range shown {
		service := scan.ServiceName(result.Protocol, result.Port)
		if service == "" {
			service = "unknown"
		}
		fmt.Printf(
			"%s%s%s\n",
			pad(fmt.Sprintf("%d/%s", result.Port, result.Protocol), 12),
			stateColour(result.State).Sprint(pad(result.State.String(), 10)),
			service,
		)
	}

	fmt.Printf("\npscan done: scanned in %.2f seconds\n", report.Elapsed.Seconds())
}

func stateColour(state scan.PortState) *color.Color {
	switch state {
	case scan.PortOpen:
		return color.New(color.FgGreen)
	case scan.PortClosed:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}

func pad(input string, length int) string {
	for len(input) < length {
		input += " "
	}
	return input
}
