package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/jfet97/petri/sim"
)

// drawHUD renders the text overlay: the population line, per-mode diagnostics
// and the control legend along the bottom edge.
func (v *Viewer) drawHUD(snap *sim.Snapshot) {
	m := snap.Metrics

	rl.DrawText("Petri", 10, 10, 20, rl.RayWhite)
	rl.DrawText(
		fmt.Sprintf("%s | tick %d | agents %d | fps %d | x%d",
			v.sim.Mode(), m.Tick, m.Population, rl.GetFPS(), v.stepsPerUpdate),
		10, 35, 16, rl.LightGray,
	)

	y := int32(55)
	switch v.sim.Mode() {
	case sim.ModeDiffusion:
		rl.DrawText(fmt.Sprintf("MSD %.1f | slope %.3f | D %.3f", m.MSD, m.Slope, m.Diffusion), 10, y, 16, rl.LightGray)
		y += 20
		regime := "not brownian"
		if m.Brownian {
			regime = "brownian"
		}
		rl.DrawText(fmt.Sprintf("VACF(3) %.3f (%s) | bounces %d | stalls %d", m.VACF3, regime, m.Bounces, m.Stalls), 10, y, 16, rl.LightGray)
	case sim.ModeBath:
		rl.DrawText(fmt.Sprintf("MSD %.1f | D %.4f | VACF(1) %.3f | decay %.1f", m.MSD, m.Diffusion, m.VACF1, m.DecayTime), 10, y, 16, rl.LightGray)
		y += 20
		rl.DrawText(fmt.Sprintf("collisions %d (+%d) | KE %.1f | |p| %.2f", m.TotalCollisions, m.Collisions, m.KineticEnergy, m.MomentumMag), 10, y, 16, rl.LightGray)
	case sim.ModeFlock:
		rl.DrawText(fmt.Sprintf("order %.3f | mean speed %.2f | noise %.2f", m.OrderParam, m.MeanSpeed, v.cfg.Flock.Noise), 10, y, 16, rl.LightGray)
	}
	y += 20

	if v.paused {
		rl.DrawText("PAUSED", 10, y, 16, rl.Yellow)
	}

	rl.DrawText(
		"space pause | s step | , . speed | tab panel | r reset",
		10, int32(rl.GetScreenHeight())-25, 14, rl.Gray,
	)
}
