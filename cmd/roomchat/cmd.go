package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"strings"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"github.com/shazow/roomchat"
	"github.com/shazow/roomchat/log"
	"github.com/shazow/roomchat/transport"

	_ "net/http/pprof"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options
type Options struct {
	Verbose  []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version  bool   `long:"version" description:"Print version and exit."`
	Bind     string `long:"bind" env:"ROOMCHAT_BIND" description:"Host and port to listen on for plain TCP clients." default:"0.0.0.0:12345"`
	SSHBind  string `long:"ssh-bind" env:"ROOMCHAT_SSH_BIND" description:"Host and port to listen on for SSH clients, used with --identity." default:"0.0.0.0:2022"`
	Identity string `short:"i" long:"identity" env:"ROOMCHAT_IDENTITY" description:"Private key to identify the SSH server with. SSH is disabled without one."`
	Motd     string `long:"motd" env:"ROOMCHAT_MOTD" description:"Optional Message of the Day file."`
	Pprof    int    `long:"pprof" description:"Enable pprof http server for profiling."`
}

// fail reports a startup error and returns the exit code for it.
func fail(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, format, args...)
	return code
}

func main() {
	os.Exit(run())
}

// run returns the process exit code. Deferred cleanup runs before main
// exits.
func run() int {
	options := Options{}
	parser := flags.NewParser(&options, flags.Default)
	p, err := parser.Parse()
	if err != nil {
		if p == nil {
			fmt.Print(err)
		}
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}

	if options.Pprof != 0 {
		go func() {
			fmt.Println(http.ListenAndServe(fmt.Sprintf("localhost:%d", options.Pprof), nil))
		}()
	}

	if options.Version {
		fmt.Println(Version)
		return 0
	}

	logger := log.Init(len(options.Verbose))

	host := roomchat.NewHost()
	defer host.Close()

	if options.Motd != "" {
		motd, err := os.ReadFile(options.Motd)
		if err != nil {
			return fail(2, "Failed to load MOTD file: %v\n", err)
		}
		// Transports take care of their own line endings.
		host.SetMotd(strings.ReplaceAll(string(motd), "\r\n", "\n"))
	}

	listeners := transport.MultiCloser{}
	serving := []transport.Listener{}

	l, err := transport.Listen(options.Bind)
	if err != nil {
		return fail(3, "Failed to listen on socket: %v\n", err)
	}
	listeners = append(listeners, l)
	serving = append(serving, l)
	fmt.Printf("Listening for connections on %v\n", l.Addr().String())

	if options.Identity != "" {
		s, err := listenSSH(options.SSHBind, expandHome(options.Identity))
		if err != nil {
			listeners.Close()
			return fail(4, "%v\n", err)
		}
		listeners = append(listeners, s)
		serving = append(serving, s)
		fmt.Printf("Listening for SSH connections on %v\n", s.Addr().String())
	}

	// Construct interrupt handler
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = host.Serve(ctx, serving...)
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "Interrupt signal detected, shutting down.")
	}
	if err != nil {
		logger.Errorf("Server stopped: %v", err)
		return fail(5, "Server stopped: %v\n", err)
	}
	return 0
}

func listenSSH(laddr, identity string) (*transport.SSHListener, error) {
	signer, err := ReadPrivateKey(identity)
	if err != nil {
		return nil, fmt.Errorf("couldn't read private key: %w", err)
	}

	config := transport.MakeNoAuth()
	config.AddHostKey(signer)
	config.ServerVersion = "SSH-2.0-Go roomchat"

	s, err := transport.ListenSSH(laddr, config)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on SSH socket: %w", err)
	}
	return s, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	user, err := user.Current()
	if err != nil {
		return path
	}
	return strings.Replace(path, "~", user.HomeDir, 1)
}
