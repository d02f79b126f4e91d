// Package viewer implements the objview main loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-obj/internal/config"
	"github.com/Faultbox/midgard-obj/internal/engine/camera"
	"github.com/Faultbox/midgard-obj/internal/engine/input"
	"github.com/Faultbox/midgard-obj/internal/engine/model"
	"github.com/Faultbox/midgard-obj/internal/engine/renderer"
	"github.com/Faultbox/midgard-obj/internal/engine/screenshot"
	"github.com/Faultbox/midgard-obj/internal/engine/window"
	"github.com/Faultbox/midgard-obj/internal/logger"
	"github.com/Faultbox/midgard-obj/pkg/math"
)

const fovY = math32.Pi / 4

// Viewer displays a single mesh with an orbit camera.
type Viewer struct {
	cfg      config.ViewerConfig
	log      *zap.Logger
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	shots    *screenshot.Capture
	mesh     *renderer.GPUMesh
	center   math.Vec3
	spin     float32
	autoSpin bool
	zUp      bool
}

// New opens a window and uploads the mesh.
func New(cfg config.ViewerConfig, title string, mesh *model.Mesh) (*Viewer, error) {
	v := &Viewer{
		cfg:    cfg,
		log:    logger.Named("viewer"),
		camera: camera.NewOrbitCamera(),
		input:  input.New(),
		shots:  screenshot.New(cfg.ScreenshotDir, "objview"),
		zUp:    cfg.ZUp,
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:  title,
		Width:  cfg.Width,
		Height: cfg.Height,
		VSync:  cfg.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer needs the GL context from the window.
	w, h := v.window.GetSize()
	v.renderer, err = renderer.New(renderer.Config{Width: w, Height: h})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.mesh, err = v.renderer.Upload(mesh)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to upload mesh: %w", err)
	}

	v.center = mesh.Bounds.Center()
	v.camera.FitToBounds(mesh.Bounds.Min, mesh.Bounds.Max, fovY)
	return v, nil
}

// Run starts the render loop. It returns when the window closes or ESC is pressed.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting render loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			break
		}
		v.handleEvents()

		if v.autoSpin {
			v.spin += dt * 0.5
		}

		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(event.Width, event.Height)
		case input.EventDrag:
			v.camera.HandleDrag(event.DX, event.DY)
		case input.EventWheel:
			v.camera.HandleZoom(event.DY)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_SPACE:
				v.autoSpin = !v.autoSpin
			case sdl.SCANCODE_Z:
				v.zUp = !v.zUp
			case sdl.SCANCODE_F12:
				v.screenshot()
			}
		}
	}
}

func (v *Viewer) render() {
	radius := v.camera.Distance
	proj := math.Perspective(fovY, v.renderer.Aspect(), radius*0.01, radius*10)

	v.renderer.Begin()
	// Spin about the vertical axis through the mesh center.
	orient := math.RotateY(v.spin)
	if v.zUp {
		orient = orient.Mul(math.RotateX(-math32.Pi / 2))
	}
	modelM := math.AroundPoint(orient, v.center)
	v.renderer.Draw(v.mesh, modelM, v.camera.ViewMatrix(), proj)
}

func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	name, err := v.shots.Save(pixels, w, h)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("file", name))
}

// Close releases GPU resources and the window.
func (v *Viewer) Close() {
	v.log.Debug("closing viewer")

	if v.renderer != nil {
		if v.mesh != nil {
			v.renderer.Release(v.mesh)
		}
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
