package main

import (
	"github.com/scott-cotton/cli"

	"github.com/portbound/protohackers/internal/meansend"
	"github.com/portbound/protohackers/internal/primetime"
	"github.com/portbound/protohackers/internal/smoketest"
)

const usageText = `protohackers - servers for the protohackers problems

Usage:
  protohackers smoke-test server [-p port]             TCP echo server
  protohackers smoke-test client [payload] [address]   send payload to an echo server
  protohackers prime-time [-p port]                    JSON isPrime server
  protohackers means-to-an-end [-p port]               asset price mean server

Every server accepts -p/-port, -w/-workers, -config <file.yaml> and -gops.
Set DEBUG=1 for debug logging.`

// MainCommand returns the root command.
func MainCommand() *cli.Command {
	return cli.NewCommand("protohackers").
		WithSynopsis("protohackers <command> [opts]").
		WithDescription(usageText).
		WithSubs(
			SmokeTestCommand(),
			ServeCommand("prime-time",
				"prime-time [-p port] [-w workers] [-config file] [-gops]",
				"answer newline-delimited JSON isPrime requests",
				primetime.HandleConnection),
			ServeCommand("means-to-an-end",
				"means-to-an-end [-p port] [-w workers] [-config file] [-gops]",
				"store timestamped prices per connection and answer mean queries",
				meansend.HandleConnection),
		)
}

// SmokeTestCommand groups the echo server and its client.
func SmokeTestCommand() *cli.Command {
	return cli.NewCommand("smoke-test").
		WithSynopsis("smoke-test <client|server> [opts]").
		WithDescription("TCP echo service").
		WithSubs(
			ServeCommand("server",
				"server [-p port] [-w workers] [-config file] [-gops]",
				"echo every byte received back once the client shuts down its write side",
				smoketest.HandleConnection),
			ClientCommand(),
		)
}
