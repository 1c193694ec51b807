package out

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"trafficwatch/internal/modules/monitor/domain"
	monitorout "trafficwatch/internal/modules/monitor/port/out"
	"trafficwatch/internal/platform/fsutil"
)

const (
	snapshotLayout = "2006010215"
	maxTickLabels  = 48
)

type ChartOptions struct {
	Dir    string
	Latest string
	// Width and Height are in inches.
	Width  float64
	Height float64
	DPI    int
}

// PlotVisualizer draws the whole history as an indexed line chart and
// writes traffic_duration_YYYYMMDDHH.png plus the overwritten latest file.
type PlotVisualizer struct {
	opts   ChartOptions
	logger hclog.Logger
}

func NewPlotVisualizer(opts ChartOptions, logger hclog.Logger) monitorout.Visualizer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PlotVisualizer{opts: opts, logger: logger}
}

func (v *PlotVisualizer) Render(ctx context.Context, samples []domain.Sample, at time.Time) (domain.Artifacts, error) {
	if len(samples) == 0 {
		v.logger.Warn("no data to visualize")
		return domain.Artifacts{}, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.Artifacts{}, err
	}
	img, err := v.draw(samples)
	if err != nil {
		return domain.Artifacts{}, err
	}
	if err := os.MkdirAll(v.opts.Dir, 0o755); err != nil {
		return domain.Artifacts{}, fmt.Errorf("create visualization dir: %w", err)
	}
	artifacts := domain.Artifacts{
		Snapshot: filepath.Join(v.opts.Dir, SnapshotName(at)),
		Latest:   filepath.Join(v.opts.Dir, v.opts.Latest),
	}
	if err := fsutil.WriteFileAtomic(artifacts.Snapshot, img, 0o644); err != nil {
		return domain.Artifacts{}, fmt.Errorf("write snapshot: %w", err)
	}
	if err := fsutil.WriteFileAtomic(artifacts.Latest, img, 0o644); err != nil {
		return domain.Artifacts{Snapshot: artifacts.Snapshot}, fmt.Errorf("write latest: %w", err)
	}
	v.logger.Info("visualization saved", "path", artifacts.Snapshot)
	return artifacts, nil
}

func SnapshotName(at time.Time) string {
	return "traffic_duration_" + at.Format(snapshotLayout) + ".png"
}

func (v *PlotVisualizer) draw(samples []domain.Sample) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Traffic Duration Over Time"
	p.X.Label.Text = "Date and Time"
	p.Y.Label.Text = "Duration (hours)"

	grid := plotter.NewGrid()
	dashes := []vg.Length{vg.Points(3), vg.Points(3)}
	gridColor := color.Gray{Y: 190}
	grid.Vertical.Dashes, grid.Horizontal.Dashes = dashes, dashes
	grid.Vertical.Color, grid.Horizontal.Color = gridColor, gridColor
	p.Add(grid)

	points := make(plotter.XYs, len(samples))
	for i, s := range samples {
		points[i].X = float64(i)
		points[i].Y = s.Duration
	}
	line, markers, err := plotter.NewLinePoints(points)
	if err != nil {
		return nil, fmt.Errorf("build chart series: %w", err)
	}
	line.LineStyle.Width = vg.Points(1)
	markers.GlyphStyle.Shape = draw.CircleGlyph{}
	markers.GlyphStyle.Radius = vg.Points(2.5)
	p.Add(line, markers)

	p.X.Tick.Marker = plot.ConstantTicks(indexTicks(samples))
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	p.X.Tick.Label.Font.Size = vg.Points(8)
	p.X.Min, p.X.Max = -0.5, float64(len(samples))-0.5
	p.Y.Min = 0

	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(v.opts.Width)*vg.Inch, vg.Length(v.opts.Height)*vg.Inch),
		vgimg.UseDPI(v.opts.DPI),
	)
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// indexTicks labels every sample while the history is short and an evenly
// spaced subset once labels would overlap.
func indexTicks(samples []domain.Sample) []plot.Tick {
	step := 1
	if len(samples) > maxTickLabels {
		step = int(math.Ceil(float64(len(samples)) / maxTickLabels))
	}
	ticks := make([]plot.Tick, 0, len(samples))
	for i, s := range samples {
		tick := plot.Tick{Value: float64(i)}
		if i%step == 0 || i == len(samples)-1 {
			tick.Label = s.Label()
		}
		ticks = append(ticks, tick)
	}
	return ticks
}
