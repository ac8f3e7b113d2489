package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/billed/internal/apiclient"
	"github.com/zombor/billed/internal/bill"
	"github.com/zombor/billed/internal/web"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A .env file is optional
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	fs := ff.NewFlagSet("billed-web")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		apiURL      = fs.StringLong("api-url", "http://localhost:5678", "Bills API base URL")
		apiUser     = fs.StringLong("api-user", "", "Bills API basic auth username (optional)")
		apiPass     = fs.StringLong("api-pass", "", "Bills API basic auth password (optional)")
		apiTimeout  = fs.DurationLong("api-timeout", apiclient.DefaultTimeout, "Bills API request timeout")
		defaultUser = fs.StringLong("default-user", "", "Employee email used when the request has no user cookie (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILLED_WEB"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	opts := []apiclient.Option{apiclient.WithHTTPClient(&http.Client{Timeout: *apiTimeout})}
	if *apiUser != "" || *apiPass != "" {
		opts = append(opts, apiclient.WithBasicAuth(*apiUser, *apiPass))
	}
	client := apiclient.New(*apiURL, opts...)

	server := web.NewServer(func(email string) bill.Store {
		return client.Bills(email)
	}, *defaultUser)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "api", *apiURL, "timeout", *apiTimeout, "version", version)
	if *defaultUser != "" {
		slog.Info("Default user enabled", "email", *defaultUser)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
