package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/chatclient/pkg/cli"
	"mercator-hq/chatclient/pkg/exchangelog"
	"mercator-hq/chatclient/pkg/exchangelog/export"
	"mercator-hq/chatclient/pkg/transport"
)

var logFlags struct {
	timeRange string
	since     time.Duration
	requestID string
	operation string
	model     string
	outcome   string
	limit     int
	offset    int
	order     string
	format    string
	output    string
	pretty    bool
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect the exchange log",
	Long: `Inspect recorded exchanges: the raw request, its curl rendering and the
raw response of every call made while exchange_log.enabled was set.

Subcommands:
  list    - List records with filters
  show    - Print one record in full
  export  - Write records as JSON, JSON lines or CSV`,
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exchange records",
	Long: `List exchange records, newest first.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2023-03-01T00:00:00Z/2023-03-02T00:00:00Z"

Examples:
  chatclient log list --since 24h
  chatclient log list --outcome unauthorized --limit 10`,
	Args: cobra.NoArgs,
	RunE: runLogList,
}

var logShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one exchange record",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogShow,
}

var logExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export exchange records",
	Long: `Export exchange records matching the filters.

Examples:
  chatclient log export --format jsonl --since 168h -o week.jsonl
  chatclient log export --format csv --outcome api_error`,
	Args: cobra.NoArgs,
	RunE: runLogExport,
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logListCmd, logShowCmd, logExportCmd)

	for _, c := range []*cobra.Command{logListCmd, logExportCmd} {
		c.Flags().StringVar(&logFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
		c.Flags().DurationVar(&logFlags.since, "since", 0, "only records newer than this (e.g. 24h)")
		c.Flags().StringVar(&logFlags.requestID, "request-id", "", "filter by request ID")
		c.Flags().StringVar(&logFlags.operation, "operation", "", "filter by operation (perform, check_access)")
		c.Flags().StringVar(&logFlags.model, "model", "", "filter by model")
		c.Flags().StringVar(&logFlags.outcome, "outcome", "", "filter by outcome (ok, network, unauthorized, api_error, decode, error)")
		c.Flags().IntVar(&logFlags.limit, "limit", exchangelog.DefaultLimit, "max results")
		c.Flags().IntVar(&logFlags.offset, "offset", 0, "pagination offset")
		c.Flags().StringVar(&logFlags.order, "order", "desc", "sort order: asc, desc")
	}

	logExportCmd.Flags().StringVar(&logFlags.format, "format", "jsonl", "output format: json, jsonl, csv")
	logExportCmd.Flags().StringVarP(&logFlags.output, "output", "o", "", "output file (default: stdout)")
	logExportCmd.Flags().BoolVar(&logFlags.pretty, "pretty", false, "indent json output")
}

// buildLogQuery turns the filter flags into a query.
func buildLogQuery(now time.Time) (*exchangelog.Query, error) {
	query := &exchangelog.Query{
		RequestID: logFlags.requestID,
		Operation: logFlags.operation,
		Model:     logFlags.model,
		Outcome:   logFlags.outcome,
		Limit:     logFlags.limit,
		Offset:    logFlags.offset,
		SortOrder: logFlags.order,
	}

	if logFlags.timeRange != "" && logFlags.since > 0 {
		return nil, errors.New("--time-range and --since are mutually exclusive")
	}

	if logFlags.timeRange != "" {
		parts := strings.Split(logFlags.timeRange, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid time range format (expected: start/end)")
		}

		startTime, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		query.StartTime = &startTime

		endTime, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		query.EndTime = &endTime
	}

	if logFlags.since > 0 {
		start := now.Add(-logFlags.since)
		query.StartTime = &start
	}

	if err := exchangelog.ValidateQuery(query); err != nil {
		return nil, err
	}
	return query, nil
}

func runLogList(cmd *cobra.Command, args []string) error {
	query, err := buildLogQuery(time.Now())
	if err != nil {
		return cli.NewUsageError("invalid filters", err)
	}

	a, err := newApp(cmd, appOptions{exchangeLog: true})
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	records, err := a.store.List(ctx, query)
	if err != nil {
		return cli.NewCommandError("log list", err)
	}
	total, err := a.store.Count(ctx, query)
	if err != nil {
		return cli.NewCommandError("log list", err)
	}

	if len(records) == 0 {
		a.printer.Text("No records found.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tOPERATION\tMODEL\tSTATUS\tOUTCOME\tLATENCY\tTOKENS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			r.ID,
			r.StartTime.Local().Format(time.DateTime),
			r.Operation,
			orDash(r.Model),
			statusText(r.StatusCode),
			a.printer.Outcome(r.Outcome),
			r.Latency.Round(time.Millisecond),
			r.PromptTokens+r.CompletionTokens,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if shown := int64(query.Offset + len(records)); shown < total {
		a.printer.Dim("showing %d of %d records; use --limit and --offset for more", len(records), total)
	}
	return nil
}

func runLogShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, appOptions{exchangeLog: true})
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.store.Get(cmd.Context(), args[0])
	if errors.Is(err, exchangelog.ErrNotFound) {
		return cli.NewUsageError(fmt.Sprintf("no record with id %s", args[0]), nil)
	}
	if err != nil {
		return cli.NewCommandError("log show", err)
	}

	p := a.printer
	p.Field("ID", r.ID)
	p.Field("Request ID", r.RequestID)
	p.Field("Started", r.StartTime.Format(time.RFC3339Nano))
	p.Field("Latency", r.Latency.String())
	p.Field("Operation", r.Operation)
	if r.Model != "" {
		p.Field("Model", r.Model)
	}
	p.Field("Status", statusText(r.StatusCode))
	p.Field("Outcome", p.Outcome(r.Outcome))
	if r.Error != "" {
		p.Field("Error", r.Error)
	}
	if r.Operation == transport.OperationPerform {
		p.Field("Tokens", fmt.Sprintf("%d prompt, %d completion", r.PromptTokens, r.CompletionTokens))
	}
	p.Text("")
	p.Text("%s", r.Curl)
	if r.ResponseBody != "" {
		p.Text("")
		p.Text("%s", r.ResponseBody)
	}
	return nil
}

func runLogExport(cmd *cobra.Command, args []string) error {
	query, err := buildLogQuery(time.Now())
	if err != nil {
		return cli.NewUsageError("invalid filters", err)
	}

	var exporter exchangelog.Exporter
	switch logFlags.format {
	case "json":
		exporter = export.NewJSONExporter(logFlags.pretty)
	case "jsonl":
		exporter = export.NewJSONLinesExporter()
	case "csv":
		exporter = export.NewCSVExporter(true)
	default:
		return cli.NewUsageError(fmt.Sprintf("unsupported format %q (use json, jsonl or csv)", logFlags.format), nil)
	}

	a, err := newApp(cmd, appOptions{exchangeLog: true})
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.store.List(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("log export", err)
	}

	var out io.Writer = cmd.OutOrStdout()
	if logFlags.output != "" {
		f, err := os.Create(logFlags.output)
		if err != nil {
			return cli.NewCommandError("log export", err)
		}
		defer f.Close()
		out = f
	}

	if err := exporter.Export(cmd.Context(), records, out); err != nil {
		return cli.NewCommandError("log export", err)
	}
	if logFlags.output != "" {
		cli.NewPrinter(cmd.ErrOrStderr(), noColor).Success("exported %d records to %s", len(records), logFlags.output)
	}
	return nil
}

func statusText(code int) string {
	if code == 0 {
		return "-"
	}
	return fmt.Sprint(code)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
