// Command farscan is the CLI entrypoint: it turns flags and a config
// file into a scan.Plan, runs it, and prints results the way the core
// says to (spec.md §6).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/javadmehdiyev/farscan/pkg/config"
	"github.com/javadmehdiyev/farscan/pkg/followup"
	"github.com/javadmehdiyev/farscan/pkg/resolve"
	"github.com/javadmehdiyev/farscan/pkg/scan"
	"github.com/javadmehdiyev/farscan/pkg/ulimit"
)

const defaultUpperPort = 65535

var opts = config.Default()

var (
	configPath         string
	verbosity          int
	pingFilter         bool
	scriptsMode        string
	followupScreenshot bool
	benchmarkEnabled   bool
)

func main() {
	root := buildCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farscan",
		Short: "A fast, concurrent TCP/UDP port scanner",
		RunE:  run,
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.Addresses, "addresses", "a", nil, "comma-delimited hosts/CIDRs/paths")
	flags.StringSliceVarP(&opts.ExcludeAddresses, "exclude-addresses", "x", nil, "comma-delimited hosts/CIDRs to remove")
	flags.IntSliceVarP(&opts.Ports, "ports", "p", nil, "comma-delimited explicit port list")
	flags.StringVarP(&opts.Range, "range", "r", "", "inclusive port range start-end")
	flags.IntSliceVarP(&opts.ExcludePorts, "exclude-ports", "e", nil, "comma-delimited ports to remove")
	flags.IntVarP(&opts.BatchSize, "batch-size", "b", opts.BatchSize, "pool size")
	flags.IntVarP(&opts.Timeout, "timeout", "t", opts.Timeout, "per-attempt timeout, milliseconds")
	flags.IntVar(&opts.Tries, "tries", opts.Tries, "retry count, min 1")
	flags.IntVarP(&opts.Ulimit, "ulimit", "u", 0, "soft NOFILE to raise to, if permitted")
	flags.StringVar(&opts.ScanOrder, "scan-order", opts.ScanOrder, "serial|random")
	flags.BoolVar(&opts.Top, "top", false, "use the curated top-1000 port list")
	flags.StringVar(&opts.Resolver, "resolver", "", "comma-delimited resolver IPs or path to same")
	flags.BoolVar(&opts.UDP, "udp", false, "UDP mode")
	flags.BoolVarP(&opts.Greppable, "greppable", "g", false, "suppress progress output; emit only ip -> [ports]")
	flags.BoolVar(&opts.Accessible, "accessible", false, "plain text, no color")

	flags.StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	flags.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")
	flags.BoolVar(&pingFilter, "ping-filter", false, "drop hosts that don't answer ICMP/TCP liveness probes before scanning")
	flags.StringVar(&scriptsMode, "scripts", string(followup.ScriptsDefault), "default|none|custom")
	flags.BoolVar(&followupScreenshot, "followup-screenshot", false, "capture a screenshot for discovered HTTP(S) services")
	flags.BoolVar(&benchmarkEnabled, "benchmark", false, "print per-phase timing after the scan completes")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	mergeFlags(cfg, cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := buildLogger(verbosity)
	color.NoColor = color.NoColor || cfg.Accessible

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Ulimit > 0 {
		if got, err := ulimit.Raise(uint64(cfg.Ulimit)); err != nil {
			log.WithError(err).Warn("could not raise ulimit")
		} else {
			log.WithField("nofile", got).Debug("raised ulimit")
		}
	}

	bench := scan.Init()

	resolveTimer := scan.StartTimer("resolve")
	resolver := resolve.NewResolver(cfg.Resolver)
	ips := resolve.ParseAddresses(cfg.Addresses, cfg.ExcludeAddresses, resolve.Options{Resolver: resolver, Log: log})
	resolveTimer.End()
	bench.Push(resolveTimer)

	if pingFilter {
		livenessTimer := scan.StartTimer("ping-filter")
		filter := &resolve.LivenessFilter{Timeout: 2 * time.Second, Log: log}
		ips = filter.Filter(ctx, ips)
		livenessTimer.End()
		bench.Push(livenessTimer)
	}

	if len(ips) == 0 {
		fmt.Fprintln(os.Stderr, "no hosts resolved")
		os.Exit(1)
	}

	ports, err := resolvePorts(cfg)
	if err != nil {
		return err
	}

	soft, err := ulimit.SoftLimit()
	batchSize := cfg.BatchSize
	if err == nil {
		batchSize = scan.ClampBatchSize(cfg.BatchSize, soft)
	}

	proto := scan.TCP
	if cfg.UDP {
		proto = scan.UDP
	}

	plan := scan.NewPlan(ips, ports, batchSize, time.Duration(cfg.Timeout)*time.Millisecond, cfg.Tries, proto, scan.DefaultUDPPayloads)
	plan.Greppable = cfg.Greppable
	plan.Accessible = cfg.Accessible

	scripts, err := followup.NewShellRunner(followup.ScriptMode(scriptsMode), homeDir())
	if err != nil {
		log.WithError(err).Warn("could not load follow-up scripts")
		scripts = nil
	}
	dispatcher := buildDispatcher(scripts, log)

	scanner := scan.New(plan, log)

	perHostOpen := map[string][]uint16{}
	onOpen := func(s scan.Socket) {
		if !cfg.Greppable {
			fmt.Printf("Open %s\n", s.String())
		} else {
			perHostOpen[s.Addr.String()] = append(perHostOpen[s.Addr.String()], s.Port)
		}
		if dispatcher != nil {
			dispatcher.Dispatch(ctx, followup.Finding{
				Host:    s.Addr.String(),
				Port:    int(s.Port),
				Service: followup.ServiceHint(int(s.Port)),
			})
		}
	}

	scanTimer := scan.StartTimer("scan")
	summary, err := scanner.Run(ctx, onOpen)
	scanTimer.End()
	bench.Push(scanTimer)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.Greppable {
		printGreppable(perHostOpen)
	}

	for _, msg := range summary.Errors {
		log.Debug(msg)
	}

	if benchmarkEnabled {
		fmt.Println(bench.Summary())
	}

	return nil
}

func buildDispatcher(scripts *followup.ShellRunner, log logrus.FieldLogger) *followup.Dispatcher {
	runners := []followup.Runner{
		followup.NewHTTPTitleRunner(followupScreenshot, ""),
		followup.NewAnonymousFTPRunner(),
		followup.NewARPRunner(),
	}
	if scripts != nil {
		runners = append(runners, scripts)
	}
	return &followup.Dispatcher{Runners: runners, Log: log}
}

// mergeFlags overlays every explicitly-set CLI flag onto cfg; fields left
// at their CLI default inherit whatever the config file (or built-in
// defaults) already set, per spec.md §6's "CLI wins unless the field was
// left at its default" merge rule.
func mergeFlags(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("addresses") {
		cfg.Addresses = opts.Addresses
	}
	if flags.Changed("exclude-addresses") {
		cfg.ExcludeAddresses = opts.ExcludeAddresses
	}
	if flags.Changed("ports") {
		cfg.Ports = opts.Ports
	}
	if flags.Changed("range") {
		cfg.Range = opts.Range
	}
	if flags.Changed("exclude-ports") {
		cfg.ExcludePorts = opts.ExcludePorts
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = opts.BatchSize
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.Timeout
	}
	if flags.Changed("tries") {
		cfg.Tries = opts.Tries
	}
	if flags.Changed("ulimit") {
		cfg.Ulimit = opts.Ulimit
	}
	if flags.Changed("scan-order") {
		cfg.ScanOrder = opts.ScanOrder
	}
	if flags.Changed("top") {
		cfg.Top = opts.Top
	}
	if flags.Changed("resolver") {
		cfg.Resolver = opts.Resolver
	}
	if flags.Changed("udp") {
		cfg.UDP = opts.UDP
	}
	if flags.Changed("greppable") {
		cfg.Greppable = opts.Greppable
	}
	if flags.Changed("accessible") {
		cfg.Accessible = opts.Accessible
	}
}

// resolvePorts turns the merged config's port selection into the ordered
// port list a Plan consumes, applying --exclude-ports last.
func resolvePorts(cfg *config.Config) ([]uint16, error) {
	order := scan.Serial
	if cfg.ScanOrder == "random" {
		order = scan.Random
	}

	var strategy scan.Strategy
	switch {
	case cfg.Top:
		strategy = scan.Pick(0, 0, false, intsToUint16(config.TopPorts), order)
	case len(cfg.Ports) > 0:
		strategy = scan.Pick(0, 0, false, intsToUint16(cfg.Ports), order)
	case cfg.Range != "":
		start, end, err := parseRange(cfg.Range)
		if err != nil {
			return nil, err
		}
		strategy = scan.Pick(start, end, true, nil, order)
	default:
		strategy = scan.Pick(1, defaultUpperPort, true, nil, order)
	}

	ports := strategy.Order()
	if len(cfg.ExcludePorts) == 0 {
		return ports, nil
	}

	excluded := make(map[uint16]struct{}, len(cfg.ExcludePorts))
	for _, p := range cfg.ExcludePorts {
		excluded[uint16(p)] = struct{}{}
	}
	out := make([]uint16, 0, len(ports))
	for _, p := range ports {
		if _, skip := excluded[p]; skip {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func parseRange(spec string) (uint16, uint16, error) {
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid range %q, want start-end", spec)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range start %q: %w", parts[0], err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range end %q: %w", parts[1], err)
	}
	if start < 0 || end > 65535 || start > end {
		return 0, 0, fmt.Errorf("invalid range %q", spec)
	}
	return uint16(start), uint16(end), nil
}

func intsToUint16(in []int) []uint16 {
	out := make([]uint16, len(in))
	for i, v := range in {
		out[i] = uint16(v)
	}
	return out
}

func printGreppable(perHostOpen map[string][]uint16) {
	hosts := make([]string, 0, len(perHostOpen))
	for host := range perHostOpen {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)

	for _, host := range hosts {
		ports := perHostOpen[host]
		sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
		strs := make([]string, len(ports))
		for i, p := range ports {
			strs[i] = strconv.Itoa(int(p))
		}
		fmt.Printf("%s -> [%s]\n", host, strings.Join(strs, ","))
	}
}

func buildLogger(verbosity int) *logrus.Logger {
	log := logrus.New()
	switch {
	case verbosity >= 3:
		log.SetLevel(logrus.TraceLevel)
	case verbosity == 2:
		log.SetLevel(logrus.DebugLevel)
	case verbosity == 1:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

func homeDir() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return h
}
