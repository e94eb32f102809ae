package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"

	"github.com/portbound/protohackers/internal/config"
	"github.com/portbound/protohackers/internal/server"
)

type ServeConfig struct {
	Serve   *cli.Command
	Port    int    `cli:"name=port aliases=p desc='TCP port to listen on (default 5001)'"`
	Workers int    `cli:"name=workers aliases=w desc='number of connections served at once (default 5)'"`
	Config  string `cli:"name=config desc='YAML configuration file'"`
	Gops    bool   `cli:"name=gops desc='start the gops diagnostics agent'"`

	name    string
	handler server.Handler
}

// ServeCommand returns a command that runs handler behind the dispatcher.
func ServeCommand(name, synopsis, description string, handler server.Handler) *cli.Command {
	return newServeConfig(name, handler).command(synopsis, description)
}

func newServeConfig(name string, handler server.Handler) *ServeConfig {
	return &ServeConfig{
		Port:    config.DefaultPort,
		Workers: config.DefaultWorkers,
		name:    name,
		handler: handler,
	}
}

func (cfg *ServeConfig) command(synopsis, description string) *cli.Command {
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Serve, cfg.name).
		WithSynopsis(synopsis).
		WithDescription(description).
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *ServeConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Serve.Parse(cc, args)
	if err != nil {
		cfg.Serve.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: %s takes no arguments, got %v", cli.ErrUsage, cfg.name, args)
	}

	conf, err := cfg.resolve()
	if err != nil {
		return err
	}
	level, err := logLevel(conf)
	if err != nil {
		return err
	}
	log := newLogger(os.Stderr, level)
	slog.SetDefault(log)

	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Warn("gops agent failed", "error", err)
		}
	}

	srv := server.New(conf.Addr(), conf.Workers, cfg.handler,
		server.WithLogger(log.With("protocol", cfg.name)))
	return srv.ListenAndServe()
}

// resolve layers the config file, if any, under flags given on the command
// line.
func (cfg *ServeConfig) resolve() (config.Config, error) {
	conf := config.Default()
	if cfg.Config != "" {
		var err error
		if conf, err = config.Load(cfg.Config); err != nil {
			return conf, err
		}
	}
	if optSet(cfg.Serve, "port") {
		conf.Port = cfg.Port
	}
	if optSet(cfg.Serve, "workers") {
		conf.Workers = cfg.Workers
	}
	if err := conf.Validate(); err != nil {
		return conf, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return conf, nil
}

func optSet(cmd *cli.Command, name string) bool {
	if cmd == nil {
		return false
	}
	for _, opt := range cmd.Opts {
		if opt.Name == name {
			return opt.Value != nil
		}
	}
	return false
}
