// Package script runs per-entity Lua scripts during simulation.
//
// A script class is a Lua chunk returning a table with optional hooks:
//
//	local Mover = {}
//	function Mover.on_create(self) end
//	function Mover.on_update(self, dt)
//	  local x, y, z = self.entity:translation()
//	  self.entity:set_translation(x + dt, y, z)
//	end
//	function Mover.on_destroy(self) end
//	return Mover
//
// Every entity with a Script component gets its own instance table holding
// an `entity` handle. Scripts observe time only through the dt argument and
// the Time table, both backed by the simulation clock.
package script

import (
	"errors"
	"fmt"

	"github.com/Shopify/go-lua"
	"go.uber.org/zap"

	"github.com/younwookim/scenekit/internal/domain/scene"
	"github.com/younwookim/scenekit/internal/ecs"
)

var (
	// ErrScript wraps failures raised by Lua code
	ErrScript = errors.New("script error")
	// ErrNoScene is returned by Start when no scene has been set
	ErrNoScene = errors.New("no current scene")
)

const (
	entityTypeName = "Entity"
	classesTable   = "__classes"
	instancesTable = "__instances"
)

// TimeSource is the clock scripts may read
type TimeSource interface {
	Elapsed() float64
	Scale() float64
}

type instance struct {
	entity ecs.EntityID
	key    string // entity uuid, key into the instances table
	class  string
	tag    string
}

// entityHandle is the userdata behind `self.entity`
type entityHandle struct {
	id ecs.EntityID
}

// Runtime owns the Lua state and the script instances of the current scene
type Runtime struct {
	library *Library
	clock   TimeSource
	log     *zap.Logger

	scene     *scene.Scene
	state     *lua.State
	instances []instance
	running   bool
	paused    bool
}

// NewRuntime creates a stopped runtime
func NewRuntime(library *Library, clock TimeSource, logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		library: library,
		clock:   clock,
		log:     logger.Named("script"),
	}
}

// SetCurrentScene selects the scene whose entities get script instances on Start
func (r *Runtime) SetCurrentScene(s *scene.Scene) {
	r.scene = s
}

// Scene returns the current scene
func (r *Runtime) Scene() *scene.Scene {
	return r.scene
}

// Running reports whether instances are alive
func (r *Runtime) Running() bool {
	return r.running
}

// Paused reports whether on_update dispatch is suspended
func (r *Runtime) Paused() bool {
	return r.paused
}

// InstanceCount returns the number of live script instances
func (r *Runtime) InstanceCount() int {
	return len(r.instances)
}

// Pause suspends on_update dispatch
func (r *Runtime) Pause() {
	r.paused = true
}

// Resume restarts on_update dispatch
func (r *Runtime) Resume() {
	r.paused = false
}

// sandboxLibraries are the standard libraries scripts may use. os and io are
// left out so scripts see time only through the Time table.
var sandboxLibraries = []lua.RegistryFunction{
	{Name: "_G", Function: lua.BaseOpen},
	{Name: "table", Function: lua.TableOpen},
	{Name: "string", Function: lua.StringOpen},
	{Name: "math", Function: lua.MathOpen},
	{Name: "bit32", Function: lua.Bit32Open},
}

func openSandbox(l *lua.State) {
	for _, lib := range sandboxLibraries {
		lua.Require(l, lib.Name, lib.Function, true)
		l.Pop(1)
	}
	for _, name := range []string{"dofile", "loadfile"} {
		l.PushNil()
		l.SetGlobal(name)
	}
}

// Start opens a fresh Lua state, instantiates one script per Script component
// and calls every on_create. Starting a running runtime is a no-op.
func (r *Runtime) Start() error {
	if r.running {
		return nil
	}
	if r.scene == nil {
		return ErrNoScene
	}

	l := lua.NewState()
	openSandbox(l)
	r.state = l
	r.registerBindings()

	w := r.scene.World
	r.instances = r.instances[:0]
	for _, id := range w.Entities() {
		sc, ok := w.Script[id]
		if !ok {
			continue
		}
		if err := r.instantiate(id, sc.Class, w.Tag[id].Name); err != nil {
			r.reset()
			return err
		}
	}

	r.running = true
	r.paused = false

	for _, inst := range r.instances {
		if err := r.invoke(inst, "on_create"); err != nil {
			r.reset()
			return err
		}
	}

	r.log.Debug("scripts started", zap.Int("instances", len(r.instances)))
	return nil
}

// Stop calls every on_destroy and drops the Lua state.
// All instances are destroyed even if some hooks fail. Stopping a stopped
// runtime is a no-op.
func (r *Runtime) Stop() error {
	if !r.running {
		return nil
	}

	var errs []error
	for _, inst := range r.instances {
		if err := r.invoke(inst, "on_destroy"); err != nil {
			errs = append(errs, err)
		}
	}

	count := len(r.instances)
	r.reset()
	r.log.Debug("scripts stopped", zap.Int("instances", count))

	return errors.Join(errs...)
}

// Update calls on_update(self, dt) on every instance whose entity still exists.
// Nothing runs while stopped or paused.
func (r *Runtime) Update(dt float64) error {
	if !r.running || r.paused {
		return nil
	}

	var errs []error
	for _, inst := range r.instances {
		if !r.scene.World.Exists(inst.entity) {
			continue
		}
		if err := r.invoke(inst, "on_update", dt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Runtime) reset() {
	r.state = nil
	r.instances = nil
	r.running = false
	r.paused = false
}

func (r *Runtime) registerBindings() {
	l := r.state

	lua.NewMetaTable(l, entityTypeName)
	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "id", Function: r.entityID},
		{Name: "tag", Function: r.entityTag},
		{Name: "translation", Function: r.entityTranslation},
		{Name: "set_translation", Function: r.entitySetTranslation},
		{Name: "velocity", Function: r.entityVelocity},
		{Name: "set_velocity", Function: r.entitySetVelocity},
	}, 0)
	l.SetField(-2, "__index")
	l.Pop(1)

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "elapsed", Function: r.timeElapsed},
		{Name: "scale", Function: r.timeScale},
	}, 0)
	l.SetGlobal("Time")

	l.NewTable()
	lua.SetFunctions(l, []lua.RegistryFunction{
		{Name: "info", Function: r.logInfo},
		{Name: "warn", Function: r.logWarn},
	}, 0)
	l.SetGlobal("Log")

	l.NewTable()
	l.SetGlobal(classesTable)
	l.NewTable()
	l.SetGlobal(instancesTable)
}

// loadClass runs the class chunk once and caches the returned table
func (r *Runtime) loadClass(class string) error {
	l := r.state

	l.Global(classesTable)
	l.Field(-1, class)
	loaded := l.IsTable(-1)
	l.Pop(2)
	if loaded {
		return nil
	}

	src, err := r.library.Source(class)
	if err != nil {
		return err
	}
	if err := lua.LoadBuffer(l, src, "@"+class+".lua", ""); err != nil {
		return fmt.Errorf("%w: load %s: %v", ErrScript, class, err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return fmt.Errorf("%w: run %s: %v", ErrScript, class, err)
	}
	if !l.IsTable(-1) {
		l.Pop(1)
		return fmt.Errorf("%w: %s must return a table", ErrScript, class)
	}

	l.Global(classesTable)
	l.PushValue(-2)
	l.SetField(-2, class)
	l.Pop(2)
	return nil
}

func (r *Runtime) instantiate(id ecs.EntityID, class, tag string) error {
	if err := r.loadClass(class); err != nil {
		return fmt.Errorf("entity %q: %w", tag, err)
	}

	inst := instance{
		entity: id,
		key:    r.scene.World.UUID(id).String(),
		class:  class,
		tag:    tag,
	}

	l := r.state
	l.Global(instancesTable)
	l.NewTable()
	l.PushUserData(&entityHandle{id: id})
	lua.SetMetaTableNamed(l, entityTypeName)
	l.SetField(-2, "entity")
	l.SetField(-2, inst.key)
	l.Pop(1)

	r.instances = append(r.instances, inst)
	return nil
}

// invoke calls class.method(instance, args...) if the class defines it
func (r *Runtime) invoke(inst instance, method string, args ...float64) error {
	l := r.state
	top := l.Top()
	defer l.SetTop(top)

	l.Global(classesTable)
	l.Field(-1, inst.class)
	l.Field(-1, method)
	if !l.IsFunction(-1) {
		return nil
	}

	l.Global(instancesTable)
	l.Field(-1, inst.key)
	l.Remove(-2)
	for _, a := range args {
		l.PushNumber(a)
	}

	if err := l.ProtectedCall(1+len(args), 0, 0); err != nil {
		return fmt.Errorf("%w: %s.%s on %q: %v", ErrScript, inst.class, method, inst.tag, err)
	}
	return nil
}

// checkEntity resolves the entity handle passed as self
func (r *Runtime) checkEntity(l *lua.State) ecs.EntityID {
	h, _ := lua.CheckUserData(l, 1, entityTypeName).(*entityHandle)
	if h == nil || !r.scene.World.Exists(h.id) {
		lua.Errorf(l, "entity no longer exists")
		return 0
	}
	return h.id
}

func (r *Runtime) entityID(l *lua.State) int {
	id := r.checkEntity(l)
	l.PushString(r.scene.World.UUID(id).String())
	return 1
}

func (r *Runtime) entityTag(l *lua.State) int {
	id := r.checkEntity(l)
	l.PushString(r.scene.World.Tag[id].Name)
	return 1
}

func (r *Runtime) entityTranslation(l *lua.State) int {
	id := r.checkEntity(l)
	t := r.scene.World.Transform[id].Translation
	l.PushNumber(t.X)
	l.PushNumber(t.Y)
	l.PushNumber(t.Z)
	return 3
}

func (r *Runtime) entitySetTranslation(l *lua.State) int {
	id := r.checkEntity(l)
	w := r.scene.World

	tr := w.Transform[id]
	tr.Translation = ecs.Vec3{
		X: lua.CheckNumber(l, 2),
		Y: lua.CheckNumber(l, 3),
		Z: lua.OptNumber(l, 4, tr.Translation.Z),
	}
	w.Transform[id] = tr

	r.scene.Physics().SetTransform(id, tr.Translation.XY(), tr.Rotation.Z)
	return 0
}

func (r *Runtime) entityVelocity(l *lua.State) int {
	id := r.checkEntity(l)
	v := r.scene.World.Rigidbody2D[id].LinearVelocity
	l.PushNumber(v.X)
	l.PushNumber(v.Y)
	return 2
}

func (r *Runtime) entitySetVelocity(l *lua.State) int {
	id := r.checkEntity(l)
	w := r.scene.World

	rb, ok := w.Rigidbody2D[id]
	if !ok {
		lua.Errorf(l, "entity %s has no Rigidbody2D", w.Tag[id].Name)
		return 0
	}
	rb.LinearVelocity = ecs.Vec2{X: lua.CheckNumber(l, 2), Y: lua.CheckNumber(l, 3)}
	w.Rigidbody2D[id] = rb

	r.scene.Physics().SetLinearVelocity(id, rb.LinearVelocity)
	return 0
}

func (r *Runtime) timeElapsed(l *lua.State) int {
	l.PushNumber(r.clock.Elapsed())
	return 1
}

func (r *Runtime) timeScale(l *lua.State) int {
	l.PushNumber(r.clock.Scale())
	return 1
}

func (r *Runtime) logInfo(l *lua.State) int {
	r.log.Info(lua.CheckString(l, 1))
	return 0
}

func (r *Runtime) logWarn(l *lua.State) int {
	r.log.Warn(lua.CheckString(l, 1))
	return 0
}
