// Command relieftrack is the intake and triage CLI for disaster relief
// requests.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"relieftrack/internal/auth"
	"relieftrack/internal/config"
	"relieftrack/internal/core"
	"relieftrack/internal/directory"
	"relieftrack/internal/logging"
	"relieftrack/internal/notify"
	"relieftrack/internal/report"
	"relieftrack/pkg/domain"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg     config.Config
	log     *logging.Logger
	service *core.Service
	users   *auth.CSVAuthenticator

	username string
	password string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "relieftrack",
		Short:         "Disaster relief request intake and tracking",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.username, "username", "", "account username")
	root.PersistentFlags().StringVar(&a.password, "password", "", "account password")

	root.AddCommand(
		newLoginCmd(a),
		newSubmitCmd(a),
		newSetStatusCmd(a),
		newListCmd(a),
		newReportCmd(a),
	)
	return root
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(logging.Level(strings.ToUpper(cfg.LogLevel)))

	dir, err := directory.Open(cfg.DirectoryPath)
	if err != nil {
		return fmt.Errorf("load employee directory: %w", err)
	}
	users, err := auth.OpenUsers(cfg.UsersPath)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	a.users = users

	store, err := core.OpenSnapshotStore(ctx)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	coord := core.NewCoordinator(store, core.NewDefaultEngine(),
		core.WithRetryBudget(cfg.RetryBudget),
		core.WithMetrics(core.NewExpvarMetricsRecorder("relieftrack")),
		core.WithLogger(a.log),
	)

	opts := []core.ServiceOption{core.WithServiceLogger(a.log)}
	if notifier := buildNotifier(cfg, a.log); notifier != nil && len(cfg.Recipients) > 0 {
		opts = append(opts, core.WithNotifier(notifier, cfg.Recipients))
	}
	a.service = core.NewService(coord, store, dir, opts...)
	return nil
}

// newTelegram is swappable for tests.
var newTelegram = notify.NewTelegram

func buildNotifier(cfg config.Config, log *logging.Logger) notify.Notifier {
	var targets notify.Multi
	if cfg.SMTPHost != "" && cfg.SMTPFrom != "" {
		targets = append(targets, notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPPassword))
	}
	if cfg.TelegramToken != "" {
		tg, err := newTelegram(cfg.TelegramToken)
		if err != nil {
			log.Warnf("telegram notifications disabled: %v", err)
		} else {
			targets = append(targets, tg)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	return targets
}

// session resolves the acting session, preferring a RELIEFTRACK_SESSION token
// over explicit credentials.
func (a *app) session() (auth.Session, error) {
	if token := os.Getenv("RELIEFTRACK_SESSION"); token != "" && a.cfg.JWTSecret != "" {
		return auth.VerifyToken(token, []byte(a.cfg.JWTSecret))
	}
	if a.username == "" || a.password == "" {
		return auth.Session{}, fmt.Errorf("no session: set RELIEFTRACK_SESSION or pass --username and --password")
	}
	role, err := a.users.Authenticate(a.username, a.password)
	if err != nil {
		return auth.Session{}, err
	}
	return auth.Session{Username: a.username, Role: role}, nil
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate and print a session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.username == "" || a.password == "" {
				return fmt.Errorf("login requires --username and --password")
			}
			role, err := a.users.Authenticate(a.username, a.password)
			if err != nil {
				return err
			}
			if a.cfg.JWTSecret == "" {
				return fmt.Errorf("RELIEFTRACK_JWT_SECRET must be set to issue session tokens")
			}
			token, err := auth.IssueToken(auth.Session{Username: a.username, Role: role}, []byte(a.cfg.JWTSecret), a.cfg.JWTTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func newSubmitCmd(a *app) *cobra.Command {
	var (
		employeeID string
		location   string
		status     string
		supplies   []string
		notes      string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a relief request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			kinds := make([]domain.SupplyKind, 0, len(supplies))
			for _, s := range supplies {
				kinds = append(kinds, domain.SupplyKind(s))
			}
			record, err := a.service.SubmitRequest(cmd.Context(), sess, core.SubmitInput{
				EmployeeID:   employeeID,
				Location:     location,
				SafetyStatus: domain.SafetyStatus(status),
				Supplies:     kinds,
				Notes:        notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "request %s submitted\n", record.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&employeeID, "employee", "", "employee ID (required)")
	cmd.Flags().StringVar(&location, "location", "", "current location (required)")
	cmd.Flags().StringVar(&status, "status", string(domain.SafetySafe), "safety status: Safe, Evacuated, In Need of Help")
	cmd.Flags().StringSliceVar(&supplies, "supply", nil, "needed supply, repeatable")
	cmd.Flags().StringVar(&notes, "notes", "", "additional notes")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func newSetStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-status <request-id> <status>",
		Short: "Set the fulfillment status of a request (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}
			record, err := a.service.SetRequestStatus(cmd.Context(), sess, args[0], domain.RequestStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "request %s is now %s\n", record.ID, record.RequestStatus)
			return nil
		},
	}
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all relief requests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.service.ListRequests(cmd.Context())
			if err != nil {
				a.log.Warnf("store unavailable, showing empty view: %v", err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIMESTAMP\tEMPLOYEE\tLOCATION\tSAFETY\tSUPPLIES\tSTATUS")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s (%s)\t%s\t%s\t%s\t%s\n",
					r.ID, r.Timestamp, r.Name, r.EmployeeID, r.Location, r.SafetyStatus,
					domain.JoinSupplies(r.Supplies), r.RequestStatus)
			}
			return w.Flush()
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print aggregate demand, budget, and progress figures",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rpt, err := a.service.Report(cmd.Context())
			if err != nil {
				a.log.Warnf("store unavailable, report covers an empty snapshot: %v", err)
			}
			printReport(cmd.OutOrStdout(), rpt)
			return nil
		},
	}
}

func printReport(out io.Writer, rpt report.Report) {
	fmt.Fprintf(out, "Total requests: %d\n", rpt.Total)

	fmt.Fprintln(out, "\nBy status:")
	statuses := make([]domain.RequestStatus, 0, len(rpt.StatusCounts))
	for s := range rpt.StatusCounts {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
	for _, s := range statuses {
		fmt.Fprintf(out, "  %-10s %d\n", s, rpt.StatusCounts[s])
	}

	fmt.Fprintln(out, "\nBudget:")
	for _, line := range rpt.BudgetLines {
		fmt.Fprintf(out, "  %-14s x%-4d $%d\n", line.Kind, line.Count, line.Cost)
	}
	fmt.Fprintf(out, "  total $%d\n", rpt.Budget)

	fmt.Fprintln(out, "\nKPIs:")
	fmt.Fprintf(out, "  completion %.1f%%  backlog %.1f%%  rejection %.1f%%\n",
		rpt.KPIs.CompletionRate*100, rpt.KPIs.BacklogRate*100, rpt.KPIs.RejectionRate*100)
	if rpt.KPIs.AvgResponseHours != nil {
		fmt.Fprintf(out, "  avg response %.1fh\n", *rpt.KPIs.AvgResponseHours)
	} else {
		fmt.Fprintln(out, "  avg response n/a")
	}
}
