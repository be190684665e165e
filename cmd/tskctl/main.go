package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("tskctl")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp()
	app.Name = "tskctl"
	app.Usage = "run demo tasks and print how each one settled"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "log-level",
			Value: "warn",
			Usage: "log level for the tsk loggers (debug, info, warn, error)",
		},
	}
	app.Before = func(c *cli.Context) error {
		return logging.SetLogLevelRegex("^tsk", c.String("log-level"))
	}
	app.Commands = []*cli.Command{
		{
			Name:      "run",
			Usage:     "submit COUNT tasks and print one tagged result per task as JSON",
			ArgsUsage: "COUNT",
			Action:    cmdRun,
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "workers",
					Aliases: []string{"w"},
					Value:   3,
					Usage:   "number of task queue workers",
				},
				&cli.IntFlag{
					Name:  "queue-depth",
					Value: 16,
					Usage: "number of tasks that may wait for a worker",
				},
				&cli.DurationFlag{
					Name:  "rate",
					Usage: "if set, start at most one task per interval using the rate limiter",
				},
				&cli.IntFlag{
					Name:  "batch-size",
					Usage: "if greater than 1, run tasks in batches of this size",
				},
				&cli.DurationFlag{
					Name:  "linger",
					Value: 10 * time.Millisecond,
					Usage: "how long a partial batch waits for more tasks",
				},
				&cli.IntFlag{
					Name:  "fail-every",
					Usage: "every Nth task returns an error",
				},
				&cli.IntFlag{
					Name:  "panic-every",
					Usage: "every Nth task panics",
				},
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

func cmdRun(c *cli.Context) error {
	count, err := strconv.Atoi(c.Args().First())
	if err != nil || count < 0 {
		return fmt.Errorf("COUNT must be a non-negative integer, got %q", c.Args().First())
	}

	cfg := runConfig{
		Workers:    c.Int("workers"),
		QueueDepth: c.Int("queue-depth"),
		Rate:       c.Duration("rate"),
		BatchSize:  c.Int("batch-size"),
		Linger:     c.Duration("linger"),
		FailEvery:  c.Int("fail-every"),
		PanicEvery: c.Int("panic-every"),
	}

	return runTasks(c.Context, cfg, count, c.App.Writer)
}
