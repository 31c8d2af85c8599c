package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/world"
)

const (
	palTypeName    = "pal"
	playerTypeName = "player"
)

// Engine wraps a single gopher-lua VM that runs batch edit scripts against a
// loaded save. Single-goroutine access only.
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	state *world.State
}

// NewEngine creates a Lua VM with the edit API registered. Scripts run only
// after Bind has attached a save.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	e.registerTypes()
	return e
}

func (e *Engine) Close() {
	e.vm.Close()
}

// Bind attaches a loaded save and publishes the edit table.
func (e *Engine) Bind(st *world.State) {
	e.state = st
	e.vm.SetGlobal("edit", e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"pals":      e.luaPals,
		"ownerless": e.luaOwnerless,
		"pal":       e.luaPal,
		"players":   e.luaPlayers,
		"player":    e.luaPlayer,
		"log":       e.luaLog,
	}))
}

// RunFile executes one script. A Lua error aborts the script and is
// returned; edits already applied stay applied.
func (e *Engine) RunFile(path string) error {
	if e.state == nil {
		return fmt.Errorf("run %s: no save bound", path)
	}
	if err := e.vm.DoFile(path); err != nil {
		e.log.Error("Lua 腳本錯誤", zap.String("file", path), zap.Error(err))
		return fmt.Errorf("run %s: %w", path, err)
	}
	e.log.Debug("已執行 Lua 腳本", zap.String("file", path))
	return nil
}

// RunString executes src under the chunk name name.
func (e *Engine) RunString(name, src string) error {
	if e.state == nil {
		return fmt.Errorf("run %s: no save bound", name)
	}
	fn, err := e.vm.LoadString(src)
	if err != nil {
		e.log.Error("Lua 腳本錯誤", zap.String("chunk", name), zap.Error(err))
		return fmt.Errorf("load %s: %w", name, err)
	}
	e.vm.Push(fn)
	if err := e.vm.PCall(0, lua.MultRet, nil); err != nil {
		e.log.Error("Lua 腳本錯誤", zap.String("chunk", name), zap.Error(err))
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// RunDir executes every .lua file in dir in name order. A missing dir is
// not an error. Returns the number of scripts run.
func (e *Engine) RunDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil // skip missing dirs
		}
		return 0, err
	}
	n := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		if err := e.RunFile(filepath.Join(dir, entry.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// CallPalHook calls the global Lua function name once per pal, if the
// scripts defined it. Returns how many pals the hook returned true for.
func (e *Engine) CallPalHook(name string) (int, error) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return 0, nil
	}
	if e.state == nil {
		return 0, fmt.Errorf("hook %s: no save bound", name)
	}
	hits := 0
	for _, p := range e.state.Pals() {
		if err := e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, e.palValue(p)); err != nil {
			e.log.Error("Lua 鉤子錯誤", zap.String("hook", name), zap.String("pal", p.ID()), zap.Error(err))
			return hits, fmt.Errorf("hook %s: %w", name, err)
		}
		result := e.vm.Get(-1)
		e.vm.Pop(1)
		if lua.LVAsBool(result) {
			hits++
		}
	}
	return hits, nil
}

func (e *Engine) registerTypes() {
	mt := e.vm.NewTypeMetatable(palTypeName)
	e.vm.SetField(mt, "__index", e.vm.SetFuncs(e.vm.NewTable(), e.palMethods()))
	e.vm.SetField(mt, "__tostring", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkPal(L).String()))
		return 1
	}))

	mt = e.vm.NewTypeMetatable(playerTypeName)
	e.vm.SetField(mt, "__index", e.vm.SetFuncs(e.vm.NewTable(), e.playerMethods()))
	e.vm.SetField(mt, "__tostring", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkPlayer(L).String()))
		return 1
	}))
}

func (e *Engine) palValue(p *world.Pal) lua.LValue {
	ud := e.vm.NewUserData()
	ud.Value = p
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(palTypeName))
	return ud
}

func (e *Engine) playerValue(pl *world.Player) lua.LValue {
	ud := e.vm.NewUserData()
	ud.Value = pl
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(playerTypeName))
	return ud
}

func (e *Engine) palList(pals []*world.Pal) *lua.LTable {
	t := e.vm.NewTable()
	for _, p := range pals {
		t.Append(e.palValue(p))
	}
	return t
}

// edit.pals()
func (e *Engine) luaPals(L *lua.LState) int {
	L.Push(e.palList(e.state.Pals()))
	return 1
}

// edit.ownerless()
func (e *Engine) luaOwnerless(L *lua.LState) int {
	L.Push(e.palList(e.state.OwnerlessPals()))
	return 1
}

// edit.pal(id) returns nil for an unknown id.
func (e *Engine) luaPal(L *lua.LState) int {
	p := e.state.PalByID(L.CheckString(1))
	if p == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(e.palValue(p))
	return 1
}

// edit.players()
func (e *Engine) luaPlayers(L *lua.LState) int {
	t := L.NewTable()
	for _, pl := range e.state.Players() {
		t.Append(e.playerValue(pl))
	}
	L.Push(t)
	return 1
}

// edit.player(uid) returns nil for an unknown id.
func (e *Engine) luaPlayer(L *lua.LState) int {
	pl := e.state.PlayerByID(L.CheckString(1))
	if pl == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(e.playerValue(pl))
	return 1
}

// edit.log(msg)
func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("腳本訊息", zap.String("msg", L.CheckString(1)))
	return 0
}
