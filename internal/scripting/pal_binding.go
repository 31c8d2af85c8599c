package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/gvas/wire"
	"github.com/paledit/paledit/internal/world"
)

var talentNames = map[string]world.Talent{
	"hp":      world.TalentHP,
	"melee":   world.TalentMelee,
	"shot":    world.TalentShot,
	"defense": world.TalentDefense,
}

var soulNames = map[string]world.SoulRank{
	"hp":          world.RankHP,
	"attack":      world.RankAttack,
	"defence":     world.RankDefence,
	"craft_speed": world.RankCraftSpeed,
}

func checkPal(L *lua.LState) *world.Pal {
	ud := L.CheckUserData(1)
	if p, ok := ud.Value.(*world.Pal); ok {
		return p
	}
	L.ArgError(1, "pal expected")
	return nil
}

func pushStats(L *lua.LState, v int64, ok bool) int {
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(v))
	return 1
}

func stringList(L *lua.LState, ss []string) *lua.LTable {
	t := L.NewTable()
	for _, s := range ss {
		t.Append(lua.LString(s))
	}
	return t
}

// palMethods are called with colon syntax: p:set_level(30).
func (e *Engine) palMethods() map[string]lua.LGFunction {
	boolSetter := func(set func(*world.Pal, bool)) lua.LGFunction {
		return func(L *lua.LState) int {
			set(checkPal(L), L.CheckBool(2))
			return 0
		}
	}
	stringPred := func(do func(*world.Pal, string) bool) lua.LGFunction {
		return func(L *lua.LState) int {
			L.Push(lua.LBool(do(checkPal(L), L.CheckString(2))))
			return 1
		}
	}
	boolGetter := func(get func(*world.Pal) bool) lua.LGFunction {
		return func(L *lua.LState) int {
			L.Push(lua.LBool(get(checkPal(L))))
			return 1
		}
	}

	return map[string]lua.LGFunction{
		"id": func(L *lua.LState) int {
			L.Push(lua.LString(checkPal(L).ID()))
			return 1
		},
		"name": func(L *lua.LState) int {
			L.Push(lua.LString(checkPal(L).DisplayName()))
			return 1
		},
		"character_id": func(L *lua.LState) int {
			L.Push(lua.LString(checkPal(L).CharacterID()))
			return 1
		},
		"data_key": func(L *lua.LState) int {
			L.Push(lua.LString(checkPal(L).DataKey()))
			return 1
		},
		"owner": func(L *lua.LState) int {
			uid, ok := checkPal(L).Owner()
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LString(uid.String()))
			return 1
		},
		"level": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkPal(L).Level()))
			return 1
		},
		"set_level": func(L *lua.LState) int {
			checkPal(L).ApplyLevel(L.CheckInt(2))
			return 0
		},
		"rank": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkPal(L).Rank()))
			return 1
		},
		"set_rank": func(L *lua.LState) int {
			p := checkPal(L)
			p.SetRank(L.CheckInt(2))
			p.RefreshHP()
			return 0
		},
		"talent": func(L *lua.LState) int {
			p := checkPal(L)
			t, ok := talentNames[L.CheckString(2)]
			if !ok {
				L.ArgError(2, "unknown talent")
			}
			L.Push(lua.LNumber(p.Talent(t)))
			return 1
		},
		"set_talent": func(L *lua.LState) int {
			p := checkPal(L)
			t, ok := talentNames[L.CheckString(2)]
			if !ok {
				L.ArgError(2, "unknown talent")
			}
			p.SetTalent(t, L.CheckInt(3))
			p.RefreshHP()
			return 0
		},
		"set_soul": func(L *lua.LState) int {
			p := checkPal(L)
			r, ok := soulNames[L.CheckString(2)]
			if !ok {
				L.ArgError(2, "unknown soul rank")
			}
			p.SetSoulRank(r, L.CheckInt(3))
			p.RefreshHP()
			return 0
		},
		"set_species":    stringPred((*world.Pal).SetSpecies),
		"is_boss":        boolGetter((*world.Pal).IsBoss),
		"is_rare":        boolGetter((*world.Pal).IsRare),
		"is_tower":       boolGetter((*world.Pal).IsTower),
		"is_human":       boolGetter((*world.Pal).IsHuman),
		"is_fainted":     boolGetter((*world.Pal).IsFainted),
		"set_boss":       boolSetter((*world.Pal).SetBoss),
		"set_rare":       boolSetter((*world.Pal).SetRare),
		"set_tower":      boolSetter((*world.Pal).SetTower),
		"set_favorite":   boolSetter((*world.Pal).SetFavorite),
		"set_gender":     stringPred((*world.Pal).SetGender),
		"add_passive":    stringPred((*world.Pal).AddPassive),
		"remove_passive": stringPred((*world.Pal).RemovePassive),
		"master_move":    stringPred((*world.Pal).MasterMove),
		"forget_move":    stringPred((*world.Pal).ForgetMove),
		"equip_move":     stringPred((*world.Pal).EquipMove),
		"unequip_move":   stringPred((*world.Pal).UnequipMove),
		"gender": func(L *lua.LState) int {
			g, ok := checkPal(L).Gender()
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(lua.LString(g))
			return 1
		},
		"nickname": func(L *lua.LState) int {
			n, _ := checkPal(L).NickName()
			L.Push(lua.LString(n))
			return 1
		},
		"set_nickname": func(L *lua.LState) int {
			checkPal(L).SetNickName(L.CheckString(2))
			return 0
		},
		"passives": func(L *lua.LState) int {
			L.Push(stringList(L, checkPal(L).Passives()))
			return 1
		},
		"moves": func(L *lua.LState) int {
			L.Push(stringList(L, checkPal(L).EquippedMoves()))
			return 1
		},
		"mastered_moves": func(L *lua.LState) int {
			L.Push(stringList(L, checkPal(L).MasteredMoves()))
			return 1
		},
		"heal": func(L *lua.LState) int {
			checkPal(L).Heal()
			return 0
		},
		"suitability": func(L *lua.LState) int {
			L.Push(lua.LNumber(checkPal(L).WorkSuitability(L.CheckString(2))))
			return 1
		},
		"set_suitability": func(L *lua.LState) int {
			ok := checkPal(L).SetWorkSuitability(L.CheckString(2), L.CheckInt(3))
			L.Push(lua.LBool(ok))
			return 1
		},
		"max_hp": func(L *lua.LState) int {
			v, ok := checkPal(L).MaxHP()
			return pushStats(L, v, ok)
		},
		"attack": func(L *lua.LState) int {
			v, ok := checkPal(L).Attack()
			return pushStats(L, v, ok)
		},
		"defense": func(L *lua.LState) int {
			v, ok := checkPal(L).Defense()
			return pushStats(L, v, ok)
		},
		"craft_speed": func(L *lua.LState) int {
			v, ok := checkPal(L).CraftSpeed()
			return pushStats(L, v, ok)
		},
		"clone": func(L *lua.LState) int {
			c, err := e.state.ClonePal(checkPal(L))
			if err != nil {
				L.RaiseError("clone: %v", err)
			}
			L.Push(e.palValue(c))
			return 1
		},
		"transfer": func(L *lua.LState) int {
			var uid gvas.GUID
			if id := L.OptString(2, ""); id != "" {
				g, err := wire.ParseGUID(id)
				if err != nil {
					L.ArgError(2, "bad player id")
				}
				uid = g
			}
			L.Push(lua.LBool(e.state.TransferPal(checkPal(L), uid)))
			return 1
		},
		"delete": func(L *lua.LState) int {
			L.Push(lua.LBool(e.state.DeletePal(checkPal(L).InstanceID())))
			return 1
		},
	}
}
