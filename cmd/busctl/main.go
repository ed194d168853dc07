// Command busctl is a terminal front-end for the bus ticket booking API.
// It keeps login state and the last booking in a small JSON file so
// consecutive invocations behave like one browser session.
//
//	busctl login --email demo@busticket.com --password demo123
//	busctl routes --from Mumbai
//	busctl book --route 1 --passenger "Asha,Rao,asha@example.com,9000000000"
//	busctl booking
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/iliyamo/bus-ticket-booking/internal/client"
	"github.com/iliyamo/bus-ticket-booking/internal/model"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		var shown reportedError
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		}
		os.Exit(1)
	}
}

// reportedError wraps a failure whose message already reached the user
// as an error notification.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

type command struct {
	summary string
	run     func(ctx context.Context, ctrl *client.Controller, flags *pflag.FlagSet, args []string) error
	flags   func(*pflag.FlagSet)
}

var commands = map[string]command{
	"login":    {summary: "log in and remember the session", run: runLogin, flags: credentialFlags(false)},
	"register": {summary: "create an account", run: runRegister, flags: credentialFlags(true)},
	"logout":   {summary: "end the session", run: runLogout},
	"cities":   {summary: "list served cities", run: runCities},
	"routes":   {summary: "search routes", run: runRoutes, flags: searchFlags},
	"book":     {summary: "book seats on a route", run: runBook, flags: bookFlags},
	"booking":  {summary: "show a booking (default: the last one)", run: runBooking},
}

func run(argv []string) error {
	global := pflag.NewFlagSet("busctl", pflag.ContinueOnError)
	global.SetInterspersed(false)
	server := global.String("server", envOr("BUSCTL_SERVER", "http://localhost:3000"), "API base URL")
	state := global.String("state", defaultStatePath(), "session state file")
	timeout := global.Duration("timeout", 15*time.Second, "per-command timeout")
	global.BoolP("help", "h", false, "show help")

	if err := global.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(global)
			return nil
		}
		return err
	}
	if help, _ := global.GetBool("help"); help || global.NArg() == 0 {
		printUsage(global)
		return nil
	}

	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		printUsage(global)
		return fmt.Errorf("unknown command %q", name)
	}
	fs := pflag.NewFlagSet("busctl "+name, pflag.ContinueOnError)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(global.Args()[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	api := client.NewAPIClient(*server)
	api.HTTP.Timeout = *timeout
	ctrl := client.NewController(api, client.NewFileStorage(*state))
	err := cmd.run(ctx, ctrl, fs, fs.Args())
	shown := printNotes(ctrl)
	if errors.Is(err, client.ErrLoginRequired) {
		return errors.New("not logged in; run: busctl login --email ... --password ...")
	}
	if err != nil && shown > 0 {
		return reportedError{err}
	}
	return err
}

func credentialFlags(withName bool) func(*pflag.FlagSet) {
	return func(fs *pflag.FlagSet) {
		if withName {
			fs.String("name", "", "full name")
		}
		fs.String("email", "", "account email")
		fs.String("password", "", "account password")
	}
}

func searchFlags(fs *pflag.FlagSet) {
	fs.String("from", "", "origin city (substring match)")
	fs.String("to", "", "destination city (substring match)")
	fs.String("date", "", "travel date, YYYY-MM-DD")
}

func bookFlags(fs *pflag.FlagSet) {
	fs.Int("route", 0, "route id")
	fs.String("date", "", "travel date, YYYY-MM-DD")
	fs.StringArray("passenger", nil, `passenger as "first,last,email,phone" (repeatable)`)
}

func runLogin(ctx context.Context, ctrl *client.Controller, fs *pflag.FlagSet, _ []string) error {
	email, _ := fs.GetString("email")
	password, _ := fs.GetString("password")
	res, err := ctrl.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Println(okStyle.Render(res.Message) + " " + dimStyle.Render("as "+res.User.Name))
	return nil
}

func runRegister(ctx context.Context, ctrl *client.Controller, fs *pflag.FlagSet, _ []string) error {
	name, _ := fs.GetString("name")
	email, _ := fs.GetString("email")
	password, _ := fs.GetString("password")
	_, err := ctrl.Register(ctx, name, email, password)
	return err
}

func runLogout(ctx context.Context, ctrl *client.Controller, _ *pflag.FlagSet, _ []string) error {
	return ctrl.Logout(ctx)
}

func runCities(ctx context.Context, ctrl *client.Controller, _ *pflag.FlagSet, _ []string) error {
	if err := ctrl.Init(ctx); err != nil {
		return err
	}
	for _, c := range ctrl.Cities() {
		fmt.Println(c)
	}
	return nil
}

func runRoutes(ctx context.Context, ctrl *client.Controller, fs *pflag.FlagSet, _ []string) error {
	if err := ctrl.Init(ctx); err != nil {
		return err
	}
	from, _ := fs.GetString("from")
	to, _ := fs.GetString("to")
	date, _ := fs.GetString("date")
	if _, err := ctrl.Search(ctx, from, to, date); err != nil {
		return err
	}
	cards := ctrl.Cards()
	if len(cards) == 0 {
		fmt.Println(dimStyle.Render(client.NoRoutesMessage))
		return nil
	}
	for _, c := range cards {
		fmt.Println(renderCard(c))
	}
	return nil
}

func runBook(ctx context.Context, ctrl *client.Controller, fs *pflag.FlagSet, _ []string) error {
	routeID, _ := fs.GetInt("route")
	date, _ := fs.GetString("date")
	raw, _ := fs.GetStringArray("passenger")
	if len(raw) == 0 {
		return errors.New("at least one --passenger is required")
	}
	passengers := make([]model.Passenger, 0, len(raw))
	for _, r := range raw {
		p, err := parsePassenger(r)
		if err != nil {
			return err
		}
		passengers = append(passengers, p)
	}

	if err := ctrl.Init(ctx); err != nil {
		return err
	}
	if _, err := ctrl.Search(ctx, "", "", date); err != nil {
		return err
	}
	route, err := ctrl.SelectRoute(routeID)
	if err != nil {
		return fmt.Errorf("route %d: %w", routeID, err)
	}
	if err := ctrl.SetPassengerCount(len(passengers)); err != nil {
		return err
	}
	for i, p := range passengers {
		if err := ctrl.SetPassenger(i, p); err != nil {
			return err
		}
	}
	fmt.Printf("%s → %s, %s, total %d\n", route.From, route.To,
		client.PassengerLabel(len(passengers)), ctrl.Total())

	id, err := ctrl.Confirm(ctx)
	if err != nil {
		return err
	}
	if _, err := ctrl.OpenBookingDetails(id); err != nil {
		return err
	}
	fmt.Println(okStyle.Render("Booking confirmed!") + " Booking ID: " + strconv.Itoa(id))
	fmt.Println(dimStyle.Render("You will receive a confirmation email shortly."))
	return nil
}

func runBooking(ctx context.Context, ctrl *client.Controller, _ *pflag.FlagSet, args []string) error {
	if len(args) > 0 {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("booking id %q: %w", args[0], err)
		}
		if _, err := ctrl.OpenBookingDetails(id); err != nil {
			return err
		}
	}
	b, err := ctrl.BookingDetails(ctx)
	if err != nil {
		return err
	}
	fmt.Println(renderBooking(b))
	return nil
}

func parsePassenger(s string) (model.Passenger, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.Passenger{}, fmt.Errorf("passenger %q: want first,last,email,phone", s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return model.Passenger{FirstName: parts[0], LastName: parts[1], Email: parts[2], Phone: parts[3]}, nil
}

// printNotes shows pending notifications and reports how many were
// errors.
func printNotes(ctrl *client.Controller) int {
	errs := 0
	for _, n := range ctrl.Notes.Active() {
		if n.Kind == client.NotifyError {
			fmt.Fprintln(os.Stderr, errorStyle.Render(n.Message))
			errs++
			continue
		}
		fmt.Println(infoStyle.Render(n.Message))
	}
	return errs
}

func printUsage(fs *pflag.FlagSet) {
	fmt.Println("usage: busctl [flags] <command> [command flags]")
	fmt.Println()
	fmt.Println("commands:")
	for _, name := range []string{"login", "register", "logout", "cities", "routes", "book", "booking"} {
		fmt.Printf("  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Println()
	fmt.Println("flags:")
	fmt.Print(fs.FlagUsages())
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".busctl.json"
	}
	return filepath.Join(dir, "busctl", "state.json")
}
