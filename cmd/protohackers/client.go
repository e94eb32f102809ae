package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/portbound/protohackers/internal/smoketest"
)

type ClientConfig struct {
	Client  *cli.Command
	Timeout int `cli:"name=timeout aliases=t desc='seconds to wait for the reply (default 10)'"`
}

// ClientCommand returns the smoke-test client command.
func ClientCommand() *cli.Command {
	cfg := &ClientConfig{Timeout: 10}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Client, "client").
		WithSynopsis("client [-t seconds] [payload] [address]").
		WithDescription(fmt.Sprintf("send payload (default %q) to an echo server at address (default %s) and print the reply",
			smoketest.DefaultPayload, smoketest.DefaultAddr)).
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *ClientConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Client.Parse(cc, args)
	if err != nil {
		cfg.Client.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) > 2 {
		return fmt.Errorf("%w: client takes at most a payload and an address, got %v", cli.ErrUsage, args)
	}

	payload := []byte(smoketest.DefaultPayload)
	addr := smoketest.DefaultAddr
	if len(args) > 0 {
		payload = []byte(args[0])
	}
	if len(args) > 1 {
		addr = args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Timeout)*time.Second)
	defer cancel()

	reply, err := smoketest.Client(ctx, addr, payload)
	if err != nil {
		return err
	}

	if !bytes.Equal(reply, payload) {
		color.New(color.FgRed).Fprintf(cc.Out, "%s\n", reply)
		return fmt.Errorf("reply differs from payload: sent %d bytes, received %d", len(payload), len(reply))
	}
	color.New(color.FgGreen).Fprintf(cc.Out, "%s\n", reply)
	return nil
}
