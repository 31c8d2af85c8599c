package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/paledit/paledit/internal/world"
)

var statusByName = map[string]world.StatusName{
	"hp":           world.StatusMaxHP,
	"sp":           world.StatusMaxSP,
	"attack":       world.StatusAttack,
	"weight":       world.StatusCarryWeight,
	"capture_rate": world.StatusCaptureRate,
	"work_speed":   world.StatusWorkSpeed,
}

func checkPlayer(L *lua.LState) *world.Player {
	ud := L.CheckUserData(1)
	if pl, ok := ud.Value.(*world.Player); ok {
		return pl
	}
	L.ArgError(1, "player expected")
	return nil
}

func checkStatus(L *lua.LState, n int) world.StatusName {
	name, ok := statusByName[L.CheckString(n)]
	if !ok {
		L.ArgError(n, "unknown status")
	}
	return name
}

func (e *Engine) playerMethods() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"id": func(L *lua.LState) int {
			L.Push(lua.LString(checkPlayer(L).ID()))
			return 1
		},
		"name": func(L *lua.LState) int {
			n, _ := checkPlayer(L).NickName()
			L.Push(lua.LString(n))
			return 1
		},
		"set_nickname": func(L *lua.LState) int {
			checkPlayer(L).SetNickName(L.CheckString(2))
			return 0
		},
		"level": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkPlayer(L).Level()))
			return 1
		},
		"set_level": func(L *lua.LState) int {
			L.Push(lua.LBool(checkPlayer(L).SetLevel(L.CheckInt(2))))
			return 1
		},
		"unused_status_point": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkPlayer(L).UnusedStatusPoint()))
			return 1
		},
		"set_status": func(L *lua.LState) int {
			pl := checkPlayer(L)
			L.Push(lua.LBool(pl.SetStatusPoint(checkStatus(L, 2), L.CheckInt(3))))
			return 1
		},
		"set_ex_status": func(L *lua.LState) int {
			pl := checkPlayer(L)
			L.Push(lua.LBool(pl.SetExStatusPoint(checkStatus(L, 2), L.CheckInt(3))))
			return 1
		},
		"pals": func(L *lua.LState) int {
			L.Push(e.palList(checkPlayer(L).SortedPals()))
			return 1
		},
		"technologies": func(L *lua.LState) int {
			L.Push(stringList(L, checkPlayer(L).UnlockedTechnologies()))
			return 1
		},
		"unlock_technology": func(L *lua.LState) int {
			L.Push(lua.LBool(checkPlayer(L).ToggleTechnology(L.CheckString(2), true)))
			return 1
		},
		"lock_technology": func(L *lua.LState) int {
			L.Push(lua.LBool(checkPlayer(L).ToggleTechnology(L.CheckString(2), false)))
			return 1
		},
		"tech_points": func(L *lua.LState) int {
			v, _ := checkPlayer(L).TechnologyPoint()
			L.Push(lua.LNumber(v))
			return 1
		},
		"set_tech_points": func(L *lua.LState) int {
			L.Push(lua.LBool(checkPlayer(L).SetTechnologyPoint(L.CheckInt(2))))
			return 1
		},
		"set_boss_tech_points": func(L *lua.LState) int {
			L.Push(lua.LBool(checkPlayer(L).SetBossTechnologyPoint(L.CheckInt(2))))
			return 1
		},
		"unlock_viewing_cage": func(L *lua.LState) int {
			L.Push(lua.LBool(checkPlayer(L).UnlockViewingCage()))
			return 1
		},
	}
}
