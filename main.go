package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"vobject/src-server/icalendar"
	"vobject/src-server/metric"
	"vobject/src-server/route"
	"vobject/src-server/scheduler"
	"vobject/src-server/utils"
	"vobject/src-server/vcard"
	"vobject/src-server/vobject"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      utils.ParseLogLevel(os.Getenv("LOG_LEVEL")),
			TimeFormat: time.RFC1123Z,
		}),
	))
}

var rootCmd = &cobra.Command{
	Use:          "vobject",
	Short:        "Parse, normalize and store vCard and iCalendar data",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt [file...]",
	Short: "Normalize vCard or iCalendar files, reading stdin when no file is given",
	RunE:  runFmt,
}

var newEventCmd = &cobra.Command{
	Use:   "new-event",
	Short: "Print a calendar holding one new event",
	Args:  cobra.NoArgs,
	RunE:  runNewEvent,
}

var newCardCmd = &cobra.Command{
	Use:   "new-card",
	Short: "Print a new vCard",
	Args:  cobra.NoArgs,
	RunE:  runNewCard,
}

var (
	fmtWidth int
	fmtWrite bool

	eventSummary  string
	eventWhen     string
	eventDuration time.Duration
	eventLocation string
	eventRRule    string
	eventAlarm    time.Duration
	eventAllDay   bool

	cardFullName string
	cardEmails   []string
	cardTels     []string
	cardOrg      string
)

func init() {
	fmtCmd.Flags().IntVar(&fmtWidth, "width", 0, "fold width in octets (default FOLD_WIDTH or 75)")
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write the result back to the file instead of stdout")

	newEventCmd.Flags().StringVarP(&eventSummary, "summary", "s", "", "event summary (required)")
	newEventCmd.Flags().StringVar(&eventWhen, "when", "", `start date in plain English, e.g. "tomorrow at 5pm" (required)`)
	newEventCmd.Flags().DurationVarP(&eventDuration, "duration", "d", time.Hour, "event duration")
	newEventCmd.Flags().StringVarP(&eventLocation, "location", "l", "", "event location")
	newEventCmd.Flags().StringVar(&eventRRule, "rrule", "", "recurrence rule, e.g. FREQ=WEEKLY;COUNT=4")
	newEventCmd.Flags().DurationVar(&eventAlarm, "alarm", 0, "display an alarm this long before the start")
	newEventCmd.Flags().BoolVar(&eventAllDay, "all-day", false, "make it a whole day event")
	newEventCmd.MarkFlagRequired("summary")
	newEventCmd.MarkFlagRequired("when")

	newCardCmd.Flags().StringVar(&cardFullName, "fn", "", "formatted name (required)")
	newCardCmd.Flags().StringSliceVar(&cardEmails, "email", nil, "email address, repeatable")
	newCardCmd.Flags().StringSliceVar(&cardTels, "tel", nil, "phone number, repeatable")
	newCardCmd.Flags().StringVar(&cardOrg, "org", "", "organization name")
	newCardCmd.MarkFlagRequired("fn")

	rootCmd.AddCommand(serveCmd, fmtCmd, newEventCmd, newCardCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	as, err := utils.NewAppState(utils.NewConfig())
	if err != nil {
		return err
	}

	metric.Init(as)
	scheduler.SourceRefresh(as)

	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.Handler())
	route.Vobject(muxer, as)
	route.Documents(muxer, as)
	server := &http.Server{
		Addr:    ":" + as.Config.GetPort(),
		Handler: muxer,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit", "port", as.Config.GetPort())

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan

	slog.Info("Gracefully shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Warn("can't shutdown HTTP server", "error", err)
	}
	as.GracefulShutdown()
	return nil
}

func foldWidth() int {
	if fmtWidth > 0 {
		return fmtWidth
	}
	return utils.NewConfig().GetFoldWidth()
}

func normalize(r io.Reader, w io.Writer, width int) error {
	roots, err := vobject.ParseComponentsReader(r)
	if err != nil {
		return err
	}
	writer := vobject.NewWriter(w, width)
	for _, root := range roots {
		if err := writer.Write(root); err != nil {
			return err
		}
	}
	return nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	width := foldWidth()
	if len(args) == 0 {
		if fmtWrite {
			return fmt.Errorf("--write needs at least one file")
		}
		return normalize(cmd.InOrStdin(), cmd.OutOrStdout(), width)
	}

	for _, path := range args {
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		var sb strings.Builder
		err = normalize(file, &sb, width)
		file.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if !fmtWrite {
			if _, err := io.WriteString(cmd.OutOrStdout(), sb.String()); err != nil {
				return err
			}
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(sb.String()), info.Mode().Perm()); err != nil {
			return err
		}
		slog.Info("normalized", "file", path)
	}
	return nil
}

func runNewEvent(cmd *cobra.Command, args []string) error {
	start, err := utils.ParseNaturalTime(utils.NewWhenParser(), eventWhen, time.Now())
	if err != nil {
		return err
	}

	builder := icalendar.NewEventBuilder().
		SetSummary(utils.CleanupString(eventSummary)).
		SetStart(start).
		SetLocation(eventLocation).
		SetRRule(eventRRule).
		SetAllDay(eventAllDay)
	switch {
	case eventAllDay:
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		builder.SetStart(day).SetEnd(day.AddDate(0, 0, 1))
	case eventDuration > 0:
		builder.SetDuration(eventDuration)
	}
	if eventAlarm > 0 {
		builder.AddAlarm("DISPLAY", -eventAlarm)
	}
	event, err := builder.Build()
	if err != nil {
		return err
	}

	calendar := icalendar.NewCalendar("-//vobject//new-event//EN")
	if err := calendar.AddEvent(event); err != nil {
		return err
	}
	return vobject.WriteComponentTo(cmd.OutOrStdout(), calendar.Component())
}

func runNewCard(cmd *cobra.Command, args []string) error {
	fullName := strings.TrimSpace(cardFullName)
	if fullName == "" {
		return fmt.Errorf("--fn is blank")
	}
	builder := vcard.NewBuilder().WithFullName(fullName)
	for _, email := range cardEmails {
		builder.WithEmail(email)
	}
	for _, tel := range cardTels {
		builder.WithTel(tel)
	}
	if cardOrg != "" {
		builder.WithOrg(cardOrg)
	}
	return vobject.WriteComponentTo(cmd.OutOrStdout(), builder.Build().Component())
}
