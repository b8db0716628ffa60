// Package opengl is the windowed viewer collaborator spec §1 treats as
// out of scope for the core: it draws whatever Simulation.BodyAt and
// Simulation.TreeSnapshot currently report, and nothing else touches
// simulation state.
//
// Grounded on jakecoffman-cp/examples/main.go's glfw window setup and
// fixed-function matrix stack usage, adapted from its 2D orthographic
// projection to an orbiting 3D perspective camera so bodies distributed
// in the --3d mode are visible from any angle.
package opengl

import (
	"fmt"
	"math"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"nbodysim/engine/simulation"
	"nbodysim/engine/vecmath"
)

// Renderer owns the window and the orbit camera used to view a
// Simulation. It never steps the simulation itself; the caller's main
// loop calls Simulation.Step and then Renderer.Draw.
type Renderer struct {
	window *glfw.Window

	azimuth   float64
	elevation float64
	distance  float64

	dragging   bool
	lastCursor [2]float64

	showTree bool
}

// NewRenderer opens a window of the given size and initializes a legacy
// fixed-function OpenGL context, matching the teacher's 2.1-core usage
// rather than adopting a shader pipeline this viewer doesn't need.
func NewRenderer(width, height int) (*Renderer, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("opengl: glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	window, err := glfw.CreateWindow(width, height, "N-Body Simulation", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("opengl: create window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl: gl init: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.POINT_SMOOTH)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.04, 0.04, 0.06, 1.0)

	r := &Renderer{
		window:    window,
		azimuth:   0,
		elevation: 0.5,
		distance:  4,
		showTree:  false,
	}
	r.installCallbacks()
	return r, nil
}

func (r *Renderer) installCallbacks() {
	r.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyT:
			r.showTree = !r.showTree
		}
	})

	r.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButton1 {
			return
		}
		r.dragging = action == glfw.Press
		r.lastCursor[0], r.lastCursor[1] = w.GetCursorPos()
	})

	r.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !r.dragging {
			return
		}
		dx := xpos - r.lastCursor[0]
		dy := ypos - r.lastCursor[1]
		r.lastCursor[0], r.lastCursor[1] = xpos, ypos

		r.azimuth += dx * 0.01
		r.elevation += dy * 0.01
		const limit = math.Pi/2 - 0.01
		if r.elevation > limit {
			r.elevation = limit
		}
		if r.elevation < -limit {
			r.elevation = -limit
		}
	})

	r.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		r.distance *= math.Pow(1.1, -yoff)
		if r.distance < 0.1 {
			r.distance = 0.1
		}
	})
}

// ShouldClose reports whether the user asked to close the window.
func (r *Renderer) ShouldClose() bool {
	return r.window.ShouldClose()
}

// PollEvents processes pending input events; call once per frame.
func (r *Renderer) PollEvents() {
	glfw.PollEvents()
}

// Terminate releases the window and the GLFW context.
func (r *Renderer) Terminate() {
	r.window.Destroy()
	glfw.Terminate()
}

// Draw renders the current state of sim: one fixed-size point per body,
// colored by mass, and, when the tree overlay is toggled on, a wireframe
// box per occupied tree region.
func (r *Renderer) Draw(sim *simulation.Simulation) {
	width, height := r.window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.setupCamera(float64(width) / float64(height))

	r.drawBodies(sim)
	if r.showTree {
		r.drawTree(sim)
	}

	r.window.SwapBuffers()
}

func (r *Renderer) setupCamera(aspect float64) {
	proj := mgl32.Perspective(mgl32.DegToRad(60), float32(aspect), 0.01, 1000)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.MultMatrixf(&proj[0])

	eye := mgl32.Vec3{
		float32(r.distance * math.Cos(r.elevation) * math.Sin(r.azimuth)),
		float32(r.distance * math.Sin(r.elevation)),
		float32(r.distance * math.Cos(r.elevation) * math.Cos(r.azimuth)),
	}
	view := mgl32.LookAtV(eye, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})

	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	gl.MultMatrixf(&view[0])
}

func (r *Renderer) drawBodies(sim *simulation.Simulation) {
	n := sim.BodyCount()
	gl.PointSize(3)
	gl.Begin(gl.POINTS)
	for i := 0; i < n; i++ {
		pos, _, mass := sim.BodyAt(i)
		c := massColor(mass)
		gl.Color3f(c[0], c[1], c[2])
		gl.Vertex3f(float32(pos.X()), float32(pos.Y()), float32(pos.Z()))
	}
	gl.End()
}

func (r *Renderer) drawTree(sim *simulation.Simulation) {
	gl.Color3f(0.2, 0.6, 0.3)
	gl.Begin(gl.LINES)
	for _, region := range sim.TreeSnapshot() {
		drawBoxEdges(region.Bounds.Center, region.Bounds.Half)
	}
	gl.End()
}

// massColor maps a body's mass onto a blue-to-white gradient so heavy
// bodies (a central mass, a merged cluster core) stand out visually.
func massColor(mass float64) [3]float32 {
	t := mass / (mass + 1)
	return [3]float32{float32(0.4 + 0.6*t), float32(0.5 + 0.4*t), 1.0}
}

// drawBoxEdges emits the 12 edges of an axis-aligned cube centered at c
// with half-width half, as a sequence of GL_LINES vertex pairs. Called
// only between Begin(LINES)/End.
func drawBoxEdges(c vecmath.Vector, half float64) {
	cx, cy, cz := float32(c.X()), float32(c.Y()), float32(c.Z())
	h := float32(half)

	corners := [8][3]float32{
		{cx - h, cy - h, cz - h}, {cx + h, cy - h, cz - h},
		{cx + h, cy + h, cz - h}, {cx - h, cy + h, cz - h},
		{cx - h, cy - h, cz + h}, {cx + h, cy - h, cz + h},
		{cx + h, cy + h, cz + h}, {cx - h, cy + h, cz + h},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		a, b := corners[e[0]], corners[e[1]]
		gl.Vertex3f(a[0], a[1], a[2])
		gl.Vertex3f(b[0], b[1], b[2])
	}
}
