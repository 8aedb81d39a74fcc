// Package ui renders the simulation with raylib and routes user input to the
// simulation's live setters. The main loop calls Update then Draw once per
// frame; everything here stays on the main thread as raylib requires.
package ui

import (
	"log/slog"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/jfet97/petri/config"
	"github.com/jfet97/petri/physics"
	"github.com/jfet97/petri/sim"
)

// Viewer owns the window-side state: pause and speed controls, the 3D orbit
// camera and the parameter panel.
type Viewer struct {
	sim *sim.Simulation
	cfg *config.Config

	paused         bool
	stepsPerUpdate int
	showPanel      bool

	camera rl.Camera3D
	panel  *Panel
}

func NewViewer(cfg *config.Config, s *sim.Simulation) *Viewer {
	v := &Viewer{
		sim:            s,
		cfg:            cfg,
		stepsPerUpdate: 1,
		panel:          NewPanel(cfg),
	}
	v.resetCamera()
	return v
}

// resetCamera frames the whole world volume for the 3D modes.
func (v *Viewer) resetCamera() {
	box := v.sim.Bounds()
	center := box.Center()
	span := box.Span(0)
	if box.Span(1) > span {
		span = box.Span(1)
	}
	if box.Dims == 3 && box.Span(2) > span {
		span = box.Span(2)
	}

	v.camera = rl.Camera3D{
		Position: rl.Vector3{
			X: float32(center[0] + span*0.9),
			Y: float32(center[1] + span*0.6),
			Z: float32(center[2] + span*1.2),
		},
		Target:     rl.Vector3{X: float32(center[0]), Y: float32(center[1]), Z: float32(center[2])},
		Up:         rl.Vector3{Y: 1},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}

// Update processes input and advances the simulation. While paused, S steps a
// single tick so collision sequences can be walked through frame by frame.
func (v *Viewer) Update() {
	v.handleInput()

	if v.paused {
		if rl.IsKeyPressed(rl.KeyS) {
			v.sim.Tick()
		}
		return
	}
	for i := 0; i < v.stepsPerUpdate; i++ {
		v.sim.Tick()
	}
}

// handleInput processes keyboard input.
func (v *Viewer) handleInput() {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.stepsPerUpdate > 1 {
		v.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.stepsPerUpdate < 64 {
		v.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		v.showPanel = !v.showPanel
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := v.sim.Reset(); err != nil {
			slog.Error("reset failed", "error", err)
		}
	}

	if v.sim.Bounds().Dims == 3 {
		rl.UpdateCamera(&v.camera, rl.CameraOrbital)
	}
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	v.sim.MarkFrame()
	snap := v.sim.Snapshot()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 20, A: 255})

	if snap.Dims == 3 {
		v.draw3D(snap)
	} else {
		v.draw2D(snap)
	}

	v.drawHUD(snap)
	if v.showPanel {
		v.panel.Draw(v.sim)
	}

	rl.EndDrawing()
}

// worldTransform maps world coordinates onto the screen, letterboxed and
// centered so the aspect ratio survives window resizes.
func worldTransform(box physics.Box) (scale float32, off rl.Vector2) {
	sw := float32(rl.GetScreenWidth())
	sh := float32(rl.GetScreenHeight())
	w := float32(box.Span(0))
	h := float32(box.Span(1))

	scale = sw / w
	if s := sh / h; s < scale {
		scale = s
	}
	off = rl.Vector2{X: (sw - w*scale) / 2, Y: (sh - h*scale) / 2}
	return scale, off
}

func (v *Viewer) draw2D(snap *sim.Snapshot) {
	scale, off := worldTransform(snap.Bounds)
	w := float32(snap.Bounds.Span(0)) * scale
	h := float32(snap.Bounds.Span(1)) * scale
	rl.DrawRectangleLines(int32(off.X), int32(off.Y), int32(w), int32(h), rl.Color{R: 60, G: 70, B: 80, A: 255})

	for i := range snap.Agents {
		a := &snap.Agents[i]
		pos := rl.Vector2{
			X: off.X + float32(a.Pos[0]-snap.Bounds.Min[0])*scale,
			Y: off.Y + float32(a.Pos[1]-snap.Bounds.Min[1])*scale,
		}
		r := float32(a.Radius) * scale
		if r < 1 {
			r = 1
		}
		rl.DrawCircleV(pos, r, agentColor(a))
	}
}

func (v *Viewer) draw3D(snap *sim.Snapshot) {
	box := snap.Bounds
	center := box.Center()

	rl.BeginMode3D(v.camera)
	rl.DrawCubeWiresV(
		rl.Vector3{X: float32(center[0]), Y: float32(center[1]), Z: float32(center[2])},
		rl.Vector3{X: float32(box.Span(0)), Y: float32(box.Span(1)), Z: float32(box.Span(2))},
		rl.Color{R: 60, G: 70, B: 80, A: 255},
	)

	for i := range snap.Agents {
		a := &snap.Agents[i]
		pos := rl.Vector3{X: float32(a.Pos[0]), Y: float32(a.Pos[1]), Z: float32(a.Pos[2])}
		if a.Kind == physics.KindTracer {
			rl.DrawSphere(pos, float32(a.Radius), agentColor(a))
			continue
		}
		// Coarse spheres keep big populations cheap.
		rl.DrawSphereEx(pos, float32(a.Radius), 8, 8, agentColor(a))
	}
	rl.EndMode3D()
}

// agentColor picks the draw color per kind. Boids are hued by heading so
// aligned groups read as single-color patches; the tracer stands out gold.
func agentColor(a *sim.AgentView) rl.Color {
	switch a.Kind {
	case physics.KindTracer:
		return rl.Gold
	case physics.KindBath:
		return rl.Color{R: 170, G: 180, B: 190, A: 255}
	case physics.KindBoid:
		deg := float32(math.Atan2(a.Vel[1], a.Vel[0]) * 180 / math.Pi)
		if deg < 0 {
			deg += 360
		}
		return rl.ColorFromHSV(deg, 0.65, 0.95)
	}
	return rl.RayWhite
}
