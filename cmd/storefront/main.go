// Command storefront is a terminal front end for the gaming storefront. It
// runs one command per invocation, or an interactive shell when no command
// is given.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/cartsync"
	"gaming-storefront/internal/config"
	"gaming-storefront/internal/discovery"
	"gaming-storefront/internal/filter"
	"gaming-storefront/internal/i18n"
	"gaming-storefront/internal/notify"
	"gaming-storefront/internal/session"
	"gaming-storefront/internal/store"
	"gaming-storefront/internal/verification"
)

const defaultAppName = "Storefront"

// app wires the client components together for one process.
type app struct {
	out     io.Writer
	in      *bufio.Reader
	logger  *log.Logger
	cfg     *config.Config
	prefs   store.PreferenceStorer
	session *session.Holder
	locale  *i18n.Provider
	toaster *notify.Toaster
	api     *apiclient.Client
	view    *discovery.View
	cart    *cartsync.Sync
	// pending is the verification flow started by register or login of an
	// unverified account.
	pending *verification.Flow
	// query mirrors the address bar of a browser front end.
	query string
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found or failed to load, relying on system environment")
	}
	verbose := flag.Bool("v", false, "log diagnostics to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: storefront [-v] [command [args...]]\n\n%s", usage)
	}
	flag.Parse()

	logOut := io.Discard
	if *verbose {
		logOut = os.Stderr
	}
	logger := log.New(logOut, fmt.Sprintf("[%s] ", defaultAppName), log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Error loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer func() {
		if err := a.prefs.Close(); err != nil {
			logger.Printf("WARN: Error closing preference store: %v", err)
		}
	}()

	if args := flag.Args(); len(args) > 0 {
		if err := a.run(ctx, args); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	a.shell(ctx)
}

func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger, in io.Reader, out io.Writer) (*app, error) {
	prefs, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}

	a := &app{
		out:    out,
		in:     bufio.NewReader(in),
		logger: logger,
		cfg:    cfg,
		prefs:  prefs,
	}

	a.session = session.New(prefs, logger)
	if err := a.session.Hydrate(ctx); err != nil {
		logger.Printf("WARN: Restoring session failed: %v", err)
	}
	a.locale = i18n.New(prefs, cfg.Locale.DefaultLanguage)
	if err := a.locale.Hydrate(ctx); err != nil {
		logger.Printf("WARN: Restoring language failed: %v", err)
	}
	a.toaster = notify.NewToaster(a.locale, a.printToast)

	a.api, err = apiclient.New(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.RequestTimeout,
		Tokens:  a.session,
		Logger:  logger,
	})
	if err != nil {
		prefs.Close()
		return nil, err
	}

	a.view = discovery.New(a.api, a.toaster, filter.Default(),
		discovery.WithPageSize(cfg.API.PageSize),
		discovery.WithRecentStore(prefs),
		discovery.WithQuerySync(func(q string) { a.query = q }),
		discovery.WithLogger(logger),
	)
	a.cart = cartsync.New(a.api, a.session, a.toaster,
		cartsync.WithObserver(a.view),
		cartsync.WithConfirmer(cartsync.ConfirmFunc(a.confirm)),
		cartsync.WithLogger(logger),
	)
	if a.session.IsAuthenticated() {
		if err := a.cart.Refresh(ctx); err != nil {
			logger.Printf("WARN: Loading cart and wishlist failed: %v", err)
		}
	}
	return a, nil
}

func (a *app) printToast(t notify.Toast) {
	mark := "✓"
	if t.Level == notify.LevelError {
		mark = "✗"
	}
	fmt.Fprintf(a.out, "%s %s\n", mark, t.Text)
}

// confirm asks a yes/no question on the terminal.
func (a *app) confirm(ctx context.Context, prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", a.locale.T(prompt))
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "نعم":
		return true
	}
	return false
}

// shell reads commands until EOF, "quit" or an interrupt.
func (a *app) shell(ctx context.Context) {
	fmt.Fprintf(a.out, "storefront (%s). Type \"help\" for commands.\n", a.locale.Language())
	for {
		fmt.Fprint(a.out, "> ")
		line, err := a.in.ReadString('\n')
		args := strings.Fields(line)
		if len(args) > 0 {
			if args[0] == "quit" || args[0] == "exit" {
				return
			}
			if err := a.run(ctx, args); err != nil {
				a.logger.Printf("WARN: %s: %v", args[0], err)
			}
		}
		if err != nil || ctx.Err() != nil {
			fmt.Fprintln(a.out)
			return
		}
	}
}

// filterArgs turns key=value words into one parsed query.
func filterArgs(args []string) (url.Values, error) {
	return url.ParseQuery(strings.Join(args, "&"))
}
