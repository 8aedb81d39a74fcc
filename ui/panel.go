package ui

import (
	"fmt"
	"log/slog"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/jfet97/petri/config"
	"github.com/jfet97/petri/sim"
)

const panelWidth = 280

// Panel is the parameter panel on the right edge. Sliders write through the
// simulation's setters, so live tuning and the exported config stay in step.
// Population and world size trigger a full rebuild, so those two latch while
// the mouse is held and commit once on release.
type Panel struct {
	cfg *config.Config

	pendingCount float32
	pendingW     float32
	pendingH     float32
}

func NewPanel(cfg *config.Config) *Panel {
	return &Panel{
		cfg:          cfg,
		pendingCount: float32(cfg.Agents.Count),
		pendingW:     float32(cfg.World.Width),
		pendingH:     float32(cfg.World.Height),
	}
}

// Draw renders the panel and applies any slider movement to the simulation.
func (p *Panel) Draw(s *sim.Simulation) {
	x := float32(rl.GetScreenWidth()) - panelWidth - 20
	y := float32(14)

	rl.DrawRectangle(int32(x)-10, 4, panelWidth+20, 330, rl.Color{R: 20, G: 25, B: 30, A: 240})
	rl.DrawRectangleLines(int32(x)-10, 4, panelWidth+20, 330, rl.Color{R: 60, G: 70, B: 80, A: 255})

	rl.DrawText("Parameters", int32(x), int32(y), 16, rl.RayWhite)
	y += 26

	held := rl.IsMouseButtonDown(rl.MouseButtonLeft)
	released := rl.IsMouseButtonReleased(rl.MouseButtonLeft)
	if !held && !released {
		p.pendingCount = float32(p.cfg.Agents.Count)
		p.pendingW = float32(p.cfg.World.Width)
		p.pendingH = float32(p.cfg.World.Height)
	}

	p.pendingCount = sliderRow(x, &y, "Agents", fmt.Sprintf("%d", int(p.pendingCount)),
		p.pendingCount, 1, 2000)
	p.pendingW = sliderRow(x, &y, "World width", fmt.Sprintf("%.0f", p.pendingW),
		p.pendingW, 200, 2400)
	p.pendingH = sliderRow(x, &y, "World height", fmt.Sprintf("%.0f", p.pendingH),
		p.pendingH, 200, 1600)

	if released {
		if n := int(p.pendingCount); n != p.cfg.Agents.Count {
			if err := s.SetAgentCount(n); err != nil {
				slog.Error("agent count change rejected", "error", err)
			}
		}
		if float64(p.pendingW) != p.cfg.World.Width || float64(p.pendingH) != p.cfg.World.Height {
			if err := s.SetWorldSize(float64(p.pendingW), float64(p.pendingH), p.cfg.World.Depth); err != nil {
				slog.Error("world size change rejected", "error", err)
			}
		}
	}

	switch s.Mode() {
	case sim.ModeDiffusion:
		step := sliderRow(x, &y, "Step size", fmt.Sprintf("%.2f", p.cfg.Diffusion.StepSize),
			float32(p.cfg.Diffusion.StepSize), 0.2, 8)
		if float64(step) != p.cfg.Diffusion.StepSize {
			s.SetStepSize(float64(step))
		}
	case sim.ModeBath:
		temp := sliderRow(x, &y, "Temperature", fmt.Sprintf("%.2f", p.cfg.Bath.Temperature),
			float32(p.cfg.Bath.Temperature), 0, 16)
		if float64(temp) != p.cfg.Bath.Temperature {
			s.SetTemperature(float64(temp))
		}
	case sim.ModeFlock:
		noise := sliderRow(x, &y, "Noise", fmt.Sprintf("%.2f", p.cfg.Flock.Noise),
			float32(p.cfg.Flock.Noise), 0, 2)
		if float64(noise) != p.cfg.Flock.Noise {
			s.SetNoise(float64(noise))
		}
		speed := sliderRow(x, &y, "Speed", fmt.Sprintf("%.2f", p.cfg.Flock.Speed),
			float32(p.cfg.Flock.Speed), 0.5, 6)
		if float64(speed) != p.cfg.Flock.Speed {
			s.SetSpeed(float64(speed))
		}
	}

	y += 6
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 120, Height: 26}, "Reset run") {
		if err := s.Reset(); err != nil {
			slog.Error("reset failed", "error", err)
		}
	}
}

// sliderRow draws one labeled slider and returns its (possibly moved) value.
func sliderRow(x float32, y *float32, label, valueText string, value, min, max float32) float32 {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18

	got := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: panelWidth - 70, Height: 20},
		fmt.Sprintf("%g", min), fmt.Sprintf("%g", max),
		value, min, max,
	)
	rl.DrawText(valueText, int32(x+panelWidth-60), int32(*y+2), 16, rl.LightGray)
	*y += 32
	return got
}
