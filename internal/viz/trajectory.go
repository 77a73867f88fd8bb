// Package viz renders per-body trajectories accumulated during a replay to
// PNG files, for visually inspecting a tracking run.
package viz

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/IMRCLab/librigidbodytracker/spatialmath"
)

// Sample is one accumulated (time, pose) observation for a single body.
type Sample struct {
	TimeSeconds float64
	Pose        spatialmath.Pose
}

// TrajectoryPlotter accumulates samples per rigid body across a replay and
// renders them on demand.
type TrajectoryPlotter struct {
	samples map[string][]Sample
}

// NewTrajectoryPlotter constructs an empty plotter.
func NewTrajectoryPlotter() *TrajectoryPlotter {
	return &TrajectoryPlotter{samples: make(map[string][]Sample)}
}

// Record appends one sample for the named body.
func (tp *TrajectoryPlotter) Record(bodyName string, t float64, pose spatialmath.Pose) {
	tp.samples[bodyName] = append(tp.samples[bodyName], Sample{TimeSeconds: t, Pose: pose})
}

// Save writes one PNG per tracked body into outputDir: position-over-time for
// X, Y, and Z. Orientation is not plotted.
func (tp *TrajectoryPlotter) Save(outputDir string) ([]string, error) {
	names := make([]string, 0, len(tp.samples))
	for name := range tp.samples {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		path, err := tp.savePositionPlot(outputDir, name, tp.samples[name])
		if err != nil {
			return written, errors.Wrapf(err, "plotting body %q", name)
		}
		written = append(written, path)
	}
	return written, nil
}

func (tp *TrajectoryPlotter) savePositionPlot(outputDir, bodyName string, samples []Sample) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s position", bodyName)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Position (m)"

	axes := []struct {
		label string
		get   func(spatialmath.Pose) float64
	}{
		{"x", func(pose spatialmath.Pose) float64 { return pose.Point().X }},
		{"y", func(pose spatialmath.Pose) float64 { return pose.Point().Y }},
		{"z", func(pose spatialmath.Pose) float64 { return pose.Point().Z }},
	}

	for _, axis := range axes {
		pts := make(plotter.XYs, len(samples))
		for i, s := range samples {
			pts[i] = plotter.XY{X: s.TimeSeconds, Y: axis.get(s.Pose)}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return "", err
		}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(axis.label, line)
	}
	p.Legend.Top = true

	path := filepath.Join(outputDir, fmt.Sprintf("%s_position.png", bodyName))
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return "", err
	}
	return path, nil
}
