// Command console renders opsboard screens in the terminal and drives
// create, edit and delete through the REST API.
//
//	console [-api URL] [-yes] dashboard
//	console users [add|edit <id>|rm <id>] [flags]
//	console analytics [-type T -from D -to D] | add [flags] | rm <id>
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/99minutos/opsboard/internal/console"
	"github.com/99minutos/opsboard/pkg/client"
	"github.com/99minutos/opsboard/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	log := logger.Init(logger.Options{Level: level, Pretty: true, Service: "opsboard-console", Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, log); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

type app struct {
	api    *client.Client
	in     *bufio.Reader
	out    io.Writer
	yes    bool
	render *console.Renderer
	log    zerolog.Logger
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer, log zerolog.Logger) error {
	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.SetOutput(out)
	apiURL := fs.String("api", envOr("OPSBOARD_API_URL", client.DefaultBaseURL), "API base URL")
	yes := fs.Bool("yes", false, "delete without asking for confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a := &app{
		api:    client.New(*apiURL, client.WithLogger(log)),
		in:     bufio.NewReader(in),
		out:    out,
		yes:    *yes,
		render: console.NewRenderer(language.English),
		log:    log,
	}

	rest := fs.Args()
	if len(rest) == 0 {
		rest = []string{"dashboard"}
	}
	switch rest[0] {
	case "dashboard":
		return a.dashboard(ctx)
	case "users":
		return a.users(ctx, rest[1:])
	case "analytics":
		return a.analytics(ctx, rest[1:])
	}
	return fmt.Errorf("unknown command %q", rest[0])
}

func (a *app) dashboard(ctx context.Context) error {
	d := console.NewDashboard(a.api, a.log)
	err := d.Load(ctx)
	if rerr := a.render.Dashboard(a.out, d.Snapshot()); rerr != nil {
		return rerr
	}
	return err
}

func (a *app) users(ctx context.Context, args []string) error {
	s := console.NewUsersScreen(a.api, a.log)
	show := func(err error) error {
		if rerr := a.render.Users(a.out, s.Snapshot()); rerr != nil {
			return rerr
		}
		return err
	}

	if len(args) == 0 {
		return show(s.Load(ctx))
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("users add", flag.ContinueOnError)
		fs.SetOutput(a.out)
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email address")
		role := fs.String("role", "user", "user, developer or admin")
		status := fs.String("status", "active", "active or inactive")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		s.OpenCreate()
		return show(s.Submit(ctx, console.UserForm{Name: *name, Email: *email, Role: *role, Status: *status}))

	case "edit":
		if len(args) < 2 {
			return errors.New("users edit: missing user id")
		}
		id := args[1]
		fs := flag.NewFlagSet("users edit", flag.ContinueOnError)
		fs.SetOutput(a.out)
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email address")
		role := fs.String("role", "", "user, developer or admin")
		status := fs.String("status", "", "active or inactive")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if err := s.Load(ctx); err != nil {
			return show(err)
		}
		if err := s.OpenEdit(id); err != nil {
			return fmt.Errorf("user %s: %w", id, err)
		}
		draft := s.Snapshot().Draft
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				draft.Name = *name
			case "email":
				draft.Email = *email
			case "role":
				draft.Role = *role
			case "status":
				draft.Status = *status
			}
		})
		return show(s.Submit(ctx, draft))

	case "rm":
		if len(args) < 2 {
			return errors.New("users rm: missing user id")
		}
		if err := s.Load(ctx); err != nil {
			return show(err)
		}
		if err := s.RequestDelete(args[1]); err != nil {
			return fmt.Errorf("user %s: %w", args[1], err)
		}
		ok, err := a.confirm("Are you sure you want to delete this user?")
		if err != nil {
			return err
		}
		if !ok {
			s.CancelDelete()
			return show(nil)
		}
		return show(s.ConfirmDelete(ctx))
	}
	return fmt.Errorf("users: unknown action %q", args[0])
}

func (a *app) analytics(ctx context.Context, args []string) error {
	s := console.NewAnalyticsScreen(a.api, a.log)
	show := func(err error) error {
		if rerr := a.render.Analytics(a.out, s.Snapshot()); rerr != nil {
			return rerr
		}
		return err
	}

	action := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		action = args[0]
	}

	switch action {
	case "":
		fs := flag.NewFlagSet("analytics", flag.ContinueOnError)
		fs.SetOutput(a.out)
		metricType := fs.String("type", "", "filter by metric type ("+strings.Join(console.MetricTypeNames(), ", ")+")")
		from := fs.String("from", "", "earliest timestamp, inclusive")
		to := fs.String("to", "", "latest timestamp, inclusive")
		if err := fs.Parse(args); err != nil {
			return err
		}
		s.SetFilter(client.MetricQuery{MetricType: *metricType, StartDate: *from, EndDate: *to})
		return show(s.Load(ctx))

	case "add":
		fs := flag.NewFlagSet("analytics add", flag.ContinueOnError)
		fs.SetOutput(a.out)
		name := fs.String("name", "", "metric name")
		value := fs.String("value", "", "numeric value")
		metricType := fs.String("type", "revenue", strings.Join(console.MetricTypeNames(), ", "))
		desc := fs.String("desc", "", "description, up to 200 characters")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		s.OpenCreate()
		return show(s.Submit(ctx, console.MetricForm{Name: *name, Value: *value, Type: *metricType, Description: *desc}))

	case "rm":
		if len(args) < 2 {
			return errors.New("analytics rm: missing entry id")
		}
		if err := s.Load(ctx); err != nil {
			return show(err)
		}
		if err := s.RequestDelete(args[1]); err != nil {
			return fmt.Errorf("analytics entry %s: %w", args[1], err)
		}
		ok, err := a.confirm("Are you sure you want to delete this analytics entry?")
		if err != nil {
			return err
		}
		if !ok {
			s.CancelDelete()
			return show(nil)
		}
		return show(s.ConfirmDelete(ctx))
	}
	return fmt.Errorf("analytics: unknown action %q", action)
}

// confirm asks a y/N question on the input stream. Anything but y or yes
// declines.
func (a *app) confirm(prompt string) (bool, error) {
	if a.yes {
		return true, nil
	}
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
