package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pingcap/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/aura-studio/kudu-pbgen/codegen"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.Errorf("%v", err)
		logrus.Debugf("%s", errors.ErrorStack(err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "kudu-pbgen"
	app.Usage = "regenerate the Kudu protobuf bindings and fix the metadata module collision"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "optional config file (yaml, toml or json)",
		},
		cli.StringFlag{
			Name:  "log, l",
			Usage: "log level: debug,info,warning,error",
			Value: "info",
		},
		cli.StringFlag{
			Name:  "plan, p",
			Usage: "YAML plan replacing the built-in Kudu schema list",
		},
		cli.StringFlag{
			Name:  "protoc",
			Usage: "protoc executable (default $PROTOC, then protoc on PATH)",
		},
		cli.StringFlag{
			Name:  "proto-dir",
			Usage: "root of the Kudu schema tree (default $KUDU_PROTO_DIR)",
		},
		cli.StringSliceFlag{
			Name:  "include, I",
			Usage: "extra import root, repeatable (default $PROTOC_INCLUDE)",
		},
		cli.StringFlag{
			Name:  "plugin",
			Usage: "protoc-gen-<language> plugin path (default $PROTOC_GEN_RUST)",
		},
		cli.StringFlag{
			Name:  "out, o",
			Usage: "output directory (default $PBGEN_OUT_DIR, then src)",
		},
		cli.StringFlag{
			Name:  "language",
			Usage: "target language: rust, csharp (default $PBGEN_LANGUAGE, then rust)",
		},
		cli.BoolFlag{
			Name:  "dry-run, n",
			Usage: "print the steps without running them",
		},
	}

	app.Before = func(c *cli.Context) error {
		lv, err := logrus.ParseLevel(c.GlobalString("log"))
		if err != nil {
			return err
		}
		logrus.SetLevel(lv)
		return nil
	}

	app.Action = generate
	app.Commands = []cli.Command{
		{
			Name:   "generate",
			Usage:  "run protoc over every schema, then rename and patch the colliding modules",
			Action: generate,
		},
		{
			Name:   "plan",
			Usage:  "print the resolved plan and the ordered steps",
			Action: printPlan,
		},
		{
			Name:   "check",
			Usage:  "verify the plan against the schema tree without running protoc",
			Action: check,
		},
	}

	return app
}

// newDriver merges flags over the config file and environment.
func newDriver(c *cli.Context) (*codegen.Driver, error) {
	cfg, err := codegen.LoadConfig(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if v := c.GlobalString("protoc"); v != "" {
		cfg.Protoc = v
	}
	if v := c.GlobalString("proto-dir"); v != "" {
		cfg.ProtoDir = v
	}
	if v := c.GlobalStringSlice("include"); len(v) > 0 {
		cfg.Include = v
	}
	if v := c.GlobalString("plugin"); v != "" {
		cfg.Plugin = v
	}
	if v := c.GlobalString("out"); v != "" {
		cfg.OutDir = v
	}
	if v := c.GlobalString("language"); v != "" {
		cfg.Language = v
	}
	if c.GlobalBool("dry-run") {
		cfg.DryRun = true
	}

	d := codegen.NewDriver(cfg)
	if path := c.GlobalString("plan"); path != "" {
		p, err := codegen.LoadPlan(path)
		if err != nil {
			return nil, err
		}
		d.Plan = p
	}
	return d, nil
}

func generate(c *cli.Context) error {
	d, err := newDriver(c)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := d.Run(ctx)
	if err != nil {
		return err
	}
	logrus.Infof("wrote %d artifacts to %s (%d warnings)", len(res.Artifacts), d.Config.OutDir, len(res.Warnings))
	return nil
}

func printPlan(c *cli.Context) error {
	d, err := newDriver(c)
	if err != nil {
		return err
	}
	out, err := d.Plan.Dump()
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, string(out))

	steps, err := d.PreviewSteps()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "# steps")
	for i, s := range steps {
		fmt.Fprintf(c.App.Writer, "# %2d. %s\n", i+1, s.Name())
	}
	return nil
}

func check(c *cli.Context) error {
	d, err := newDriver(c)
	if err != nil {
		return err
	}
	findings, err := d.Check()
	if err != nil {
		return err
	}
	failed := 0
	for _, f := range findings {
		if f.Severity == codegen.SeverityError {
			failed++
			logrus.Error(f.String())
		} else {
			logrus.Warn(f.String())
		}
	}
	if failed > 0 {
		return errors.Errorf("check found %d error(s)", failed)
	}
	logrus.Infof("plan is consistent with %s", d.Config.ProtoDir)
	return nil
}
