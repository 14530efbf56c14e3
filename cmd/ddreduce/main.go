/*
Ddreduce reduces a source file in a failing build to a minimal variant that
still triggers the same compiler diagnostic.

It invokes the project's build driver, fixes the first reported error as the
target signature, then repeatedly deletes syntax subtrees from the offending
file and re-invokes the driver, keeping only the deletions that preserve the
original diagnostic.

Usage:

	ddreduce [flags]

The flags are:

	-v, --version
		Give the current version of ddreduce and then exit.

	-p, --path DIR
		The project directory to reduce. Defaults to the current working
		directory.

	-c, --config FILE
		A TOML configuration file naming the build driver and optional
		history/server/signing settings. Defaults to "ddreduce.toml" in the
		project directory if present; otherwise built-in defaults are used.

	-i, --interactive
		Ask for confirmation on a terminal before taking each reduction.

	-H, --history FILE
		Record this run to the given sqlite history database, overriding
		any history.db_path set in the config file.

	-s, --serve ADDR
		After reducing, serve the run's report (and, if a trigger secret is
		configured, accept POST /trigger requests for further runs) on ADDR
		until interrupted.

	--sign
		Sign the run's report (HS512, using report.jwt_secret from the
		config file) and print the attestation token, overriding any
		report.sign set in the config file.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dekarrin/ddreduce/internal/dedupe"
	"github.com/dekarrin/ddreduce/internal/history"
	"github.com/dekarrin/ddreduce/internal/interactive"
	"github.com/dekarrin/ddreduce/internal/oracle"
	"github.com/dekarrin/ddreduce/internal/rdconfig"
	"github.com/dekarrin/ddreduce/internal/rderrors"
	"github.com/dekarrin/ddreduce/internal/rdserver"
	"github.com/dekarrin/ddreduce/internal/report"
	"github.com/dekarrin/ddreduce/internal/searcher"
	"github.com/dekarrin/ddreduce/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitConfigError indicates bad configuration or flags.
	ExitConfigError

	// ExitReductionError indicates an unsuccessful reduction run.
	ExitReductionError

	// ExitServerError indicates the status server failed.
	ExitServerError
)

var (
	returnCode int = ExitSuccess

	flagVersion     = pflag.BoolP("version", "v", false, "Gives the version info")
	flagPath        = pflag.StringP("path", "p", ".", "The project directory to reduce")
	flagConfig      = pflag.StringP("config", "c", "", "A TOML config file naming the build driver and other settings")
	flagInteractive = pflag.BoolP("interactive", "i", false, "Ask for confirmation before each reduction")
	flagHistory     = pflag.StringP("history", "H", "", "Record this run to the given sqlite history database")
	flagServe       = pflag.StringP("serve", "s", "", "Serve the run's report on ADDR after reducing")
	flagSign        = pflag.Bool("sign", false, "Sign the run's report and print the attestation")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg := rdconfig.Default()
	configPath := *flagConfig
	if configPath == "" {
		defaultPath := filepath.Join(*flagPath, "ddreduce.toml")
		if _, err := os.Stat(defaultPath); err == nil {
			configPath = defaultPath
		}
	}
	if configPath != "" {
		loaded, err := rdconfig.Load(configPath)
		if err != nil {
			log.Printf("ERROR %s", err.Error())
			returnCode = ExitConfigError
			return
		}
		cfg = loaded
	}

	if *flagHistory != "" {
		cfg.History.Enabled = true
		cfg.History.DBPath = *flagHistory
	}
	if *flagSign {
		cfg.Report.Sign = true
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	buildTimeout := time.Duration(cfg.Build.TimeoutSeconds) * time.Second

	searchCfg := searcher.Config{
		ProjectDir: *flagPath,
		Driver:     oracle.ExecDriver{Command: cfg.Build.Command, Args: cfg.Build.Args, Timeout: buildTimeout},
		Cache:      dedupe.New(),
	}

	if *flagInteractive {
		confirmer, err := interactive.NewConfirmer()
		if err != nil {
			log.Printf("ERROR could not start interactive prompt: %s", err.Error())
			returnCode = ExitConfigError
			return
		}
		defer confirmer.Close()
		searchCfg.Confirm = confirmer.Confirm
	}

	rpt, err := searcher.Run(ctx, searchCfg)
	if err != nil {
		if kind, ok := rderrors.KindOf(err); ok {
			log.Printf("ERROR %s: %s", kind, err.Error())
		} else {
			log.Printf("ERROR %s", err.Error())
		}
		returnCode = ExitReductionError
		return
	}

	if rpt == nil {
		fmt.Println("no errors to reduce")
		return
	}

	fmt.Print(rpt.Text())

	if cfg.Report.Sign {
		tok, err := rpt.Sign([]byte(cfg.Report.JWTSecret))
		if err != nil {
			log.Printf("ERROR could not sign report: %s", err.Error())
			returnCode = ExitReductionError
			return
		}
		fmt.Printf("attestation: %s\n", tok)
	}

	if cfg.History.Enabled {
		if err := recordHistory(ctx, cfg.History.DBPath, rpt); err != nil {
			log.Printf("ERROR could not record history: %s", err.Error())
			returnCode = ExitReductionError
			return
		}
	}

	if *flagServe != "" {
		if err := serveReport(ctx, cfg, searchCfg, rpt, *flagServe); err != nil {
			log.Printf("ERROR %s", err.Error())
			returnCode = ExitServerError
			return
		}
	}
}

func recordHistory(ctx context.Context, dbPath string, rpt *report.RunReport) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Record(ctx, history.RunRecord{
		RunID:           rpt.RunID,
		ProjectDir:      rpt.ProjectDir,
		ReducedFile:     rpt.ReducedFile,
		MasterErrorCode: rpt.MasterError.ErrorCode,
		MasterErrorSrc:  rpt.MasterError.ErrorSrc,
		Started:         rpt.Started,
		Finished:        rpt.Finished,
		Iterations:      rpt.Iterations,
		Accepted:        rpt.Accepted,
		Rejected:        rpt.Rejected,
		FinalSourceHash: rpt.FinalSourceHash,
	})
}

func serveReport(ctx context.Context, cfg rdconfig.Config, searchCfg searcher.Config, rpt *report.RunReport, addr string) error {
	var secretHash []byte
	if cfg.Server.TriggerSecretHash != "" {
		secretHash = []byte(cfg.Server.TriggerSecretHash)
	}

	var srv *rdserver.Server
	srv = rdserver.New(secretHash, func() error {
		runCfg := searchCfg
		runCfg.Cache = dedupe.New()
		next, err := searcher.Run(ctx, runCfg)
		if err != nil {
			return err
		}
		if next != nil {
			srv.SetLastReport(next)
		}
		return nil
	})
	srv.SetLastReport(rpt)

	httpSrv := &http.Server{Addr: addr, Handler: srv}
	go func() {
		<-ctx.Done()
		httpSrv.Close()
	}()

	fmt.Printf("serving report on %s (ctrl-C to stop)\n", addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
