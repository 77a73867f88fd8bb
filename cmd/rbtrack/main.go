// Command rbtrack replays a recorded marker-cloud log through the tracker
// and prints, per frame, the pose of each rigid body whose update was
// accepted in that frame.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/IMRCLab/librigidbodytracker/cloudlog"
	"github.com/IMRCLab/librigidbodytracker/config"
	"github.com/IMRCLab/librigidbodytracker/internal/viz"
	"github.com/IMRCLab/librigidbodytracker/logging"
	"github.com/IMRCLab/librigidbodytracker/pointcloud"
	"github.com/IMRCLab/librigidbodytracker/tracker"
)

var app = &cli.App{
	Name:            "rbtrack",
	Usage:           "replay a recorded marker cloud through the rigid body tracker",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Required: true,
			Usage:    "load rigid body / marker / dynamics configuration from `FILE`",
		},
		&cli.StringFlag{
			Name:     "cloud",
			Aliases:  []string{"i"},
			Required: true,
			Usage:    "replay marker cloud log from `FILE`",
		},
		&cli.StringFlag{
			Name:  "plot-dir",
			Usage: "if set, write per-body trajectory plots to `DIR` after replay",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"vvv"},
			Usage:   "accepted but has no effect; logging is always at info level",
		},
	},
	Action: replayAction,
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func replayAction(c *cli.Context) error {
	runID := uuid.New().String()
	logger := logging.NewLogger("rbtrack")
	logger.Infow("starting replay", "runID", runID, "config", c.String("config"), "cloud", c.String("cloud"))

	doc, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	dynCfgs, markerCfgs, bodies, err := doc.Build()
	if err != nil {
		return err
	}

	t, err := tracker.New(dynCfgs, markerCfgs, bodies, logger)
	if err != nil {
		return err
	}
	t.SetLogWarningCallback(func(msg string) {
		fmt.Fprintln(os.Stderr, "warning:", msg)
	})

	f, err := os.Open(c.String("cloud"))
	if err != nil {
		return err
	}
	defer f.Close()

	var plotter *viz.TrajectoryPlotter
	if c.String("plot-dir") != "" {
		plotter = viz.NewTrajectoryPlotter()
	}

	reader := cloudlog.NewReader(f)
	ctx := context.Background()
	err = cloudlog.Play(ctx, reader, func(ctx context.Context, stamp time.Time, cloud pointcloud.Cloud) error {
		if uErr := t.UpdateAt(stamp, cloud); uErr != nil {
			return uErr
		}
		for _, b := range t.RigidBodies() {
			if !b.LastTransformationValid() {
				continue
			}
			fmt.Printf("%s\t%s\tvalid=%v\tpos=%v\n", stamp.Format(time.RFC3339Nano), b.Name(), b.LastTransformationValid(), b.Transformation().Point())
			if plotter != nil {
				plotter.Record(b.Name(), float64(stamp.UnixMilli())/1000.0, b.Transformation())
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if plotter != nil {
		if mkErr := os.MkdirAll(c.String("plot-dir"), 0o755); mkErr != nil {
			return mkErr
		}
		paths, pErr := plotter.Save(c.String("plot-dir"))
		if pErr != nil {
			return pErr
		}
		logger.Infow("wrote trajectory plots", "count", len(paths))
	}

	return nil
}
