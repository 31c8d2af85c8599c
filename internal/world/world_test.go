package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/paledit/paledit/internal/core/event"
	"github.com/paledit/paledit/internal/data"
	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/props"
	"github.com/paledit/paledit/internal/world"
	"github.com/paledit/paledit/internal/world/worldtest"
)

var (
	playerUID  = worldtest.GUID(0xA0, 1)
	playerIID  = worldtest.GUID(0xB0, 1)
	otomoID    = worldtest.GUID(0xC0, 1)
	storageID  = worldtest.GUID(0xC0, 2)
	guildID    = worldtest.GUID(0xD0, 1)
	handcraft  = data.SuitabilityPrefix + "Handcraft"
	transport  = data.SuitabilityPrefix + "Transport"
	electric   = data.SuitabilityPrefix + "GenerateElectricity"
	thunder    = "EPalWazaID::ThunderBall"
	airCanon   = "EPalWazaID::AirCanon"
	powerShot  = "EPalWazaID::PowerShot"
	sheepRoll  = "EPalWazaID::Unique_SheepBall_Roll"
	chickPeck  = "EPalWazaID::Unique_ChickenPal_ChickenPeck"
	anubisKick = "EPalWazaID::Unique_Anubis_LowKick"
)

func palID(n byte) gvas.GUID { return worldtest.GUID(0x10, n) }

type fixture struct {
	state *world.State
	logs  *observer.ObservedLogs
	bus   *event.Bus
}

// load builds a save with one player and whatever pals add registers.
func load(t *testing.T, add func(b *worldtest.Builder)) fixture {
	t.Helper()
	b := worldtest.New()
	b.AddPlayer(playerUID, playerIID, "Tester", 1)
	if add != nil {
		add(b)
	}
	core, logs := observer.New(zapcore.InfoLevel)
	bus := event.NewBus()
	st, err := world.Load(b.Document(), world.Options{
		Lookup: worldtest.Tables(t),
		Log:    zap.New(core),
		Bus:    bus,
		PlayerSaves: map[gvas.GUID]*gvas.Properties{
			playerUID: worldtest.PlayerSave(playerUID, playerIID, otomoID, storageID),
		},
	})
	require.NoError(t, err)
	return fixture{state: st, logs: logs, bus: bus}
}

func onePal(t *testing.T, characterID string, level int32) (fixture, *world.Pal) {
	t.Helper()
	f := load(t, func(b *worldtest.Builder) {
		b.AddPal(palID(1), playerUID, characterID, level)
	})
	p := f.state.Pal(palID(1))
	require.NotNil(t, p)
	return f, p
}

func warnings(f fixture) int {
	return f.logs.FilterLevelExact(zapcore.WarnLevel).Len()
}

// warnErrors returns the error field of every warning.
func warnErrors(f fixture) []error {
	var out []error
	for _, e := range f.logs.FilterLevelExact(zapcore.WarnLevel).All() {
		for _, fld := range e.Context {
			if err, ok := fld.Interface.(error); ok && fld.Key == "error" {
				out = append(out, err)
			}
		}
	}
	return out
}

// --- classifier ---

func TestClassifySplitsRecords(t *testing.T) {
	b := worldtest.New()
	b.AddPlayer(playerUID, playerIID, "Tester", 1)
	b.AddPal(palID(1), playerUID, "SheepBall", 1)
	b.AddPal(palID(2), gvas.GUID{}, "PinkCat", 1)

	// IsPlayer fallback without CharacterType
	legacy := gvas.NewProperties()
	legacy.Set("IsPlayer", gvas.Bool(true))
	b.AddEntry("legacy", worldtest.Entry(worldtest.GUID(0xA0, 2), worldtest.GUID(0xB0, 2), legacy))

	// CharacterType wins over a stale IsPlayer flag
	stale := gvas.NewProperties()
	stale.Set("CharacterType", gvas.NewEnum("EPalCharacterType::Player"))
	stale.Set("IsPlayer", gvas.Bool(false))
	b.AddEntry("stale", worldtest.Entry(worldtest.GUID(0xA0, 3), worldtest.GUID(0xB0, 3), stale))

	// missing InstanceId
	broken := worldtest.Entry(gvas.GUID{}, palID(9), gvas.NewProperties())
	key, _ := props.GetStruct(broken, "Key")
	key.Delete("InstanceId")
	b.AddEntry("broken", broken)

	// duplicate InstanceId
	b.AddPal(palID(1), playerUID, "Anubis", 1)

	core, logs := observer.New(zapcore.WarnLevel)
	cls, err := world.Classify(b.Root(), zap.New(core))
	require.NoError(t, err)

	require.Len(t, cls.Players, 3)
	assert.Equal(t, playerUID, cls.Players[0].PlayerUId)
	assert.Equal(t, worldtest.GUID(0xA0, 2), cls.Players[1].PlayerUId)
	assert.Equal(t, worldtest.GUID(0xA0, 3), cls.Players[2].PlayerUId)

	require.Len(t, cls.Owned, 1)
	assert.Equal(t, palID(1), cls.Owned[0].InstanceId)
	assert.Equal(t, playerUID, cls.Owned[0].Owner)

	require.Len(t, cls.Ownerless, 1)
	assert.Equal(t, palID(2), cls.Ownerless[0].InstanceId)

	assert.Equal(t, 2, cls.Dropped)
	assert.Equal(t, 2, logs.Len())
}

func TestClassifyZeroOwnerIsOwnerless(t *testing.T) {
	b := worldtest.New()
	param := b.AddPal(palID(1), gvas.GUID{}, "SheepBall", 1)
	param.Set("OwnerPlayerUId", props.GUID(gvas.GUID{}))

	cls, err := world.Classify(b.Root(), nil)
	require.NoError(t, err)
	assert.Len(t, cls.Ownerless, 1)
	assert.Empty(t, cls.Owned)
}

func TestClassifyWithoutCharacterMap(t *testing.T) {
	_, err := world.Classify(gvas.NewProperties(), nil)
	assert.True(t, perr.IsNotFound(err))
}

func TestConstructorsRejectWrongKind(t *testing.T) {
	b := worldtest.New()
	b.AddPlayer(playerUID, playerIID, "Tester", 1)
	b.AddPal(palID(1), playerUID, "SheepBall", 1)
	cls, err := world.Classify(b.Root(), nil)
	require.NoError(t, err)

	opts := world.Options{Lookup: worldtest.Tables(t)}
	_, err = world.NewPal(cls.Players[0], opts)
	assert.True(t, perr.IsValidation(err))

	_, err = world.NewPlayer(cls.Owned[0], nil, opts)
	assert.True(t, perr.IsValidation(err))

	mismatched := worldtest.PlayerSave(playerUID, worldtest.GUID(0xEE, 1), otomoID, storageID)
	_, err = world.NewPlayer(cls.Players[0], mismatched, opts)
	assert.True(t, perr.IsValidation(err))

	_, err = world.ResolveRecord("empty", gvas.NewProperties())
	assert.True(t, perr.IsValidation(err))
}

// --- load / state ---

func TestLoadIndexesPalsAndGuilds(t *testing.T) {
	b := worldtest.New()
	b.AddPlayer(playerUID, playerIID, "Tester", 1)
	b.AddPal(palID(1), playerUID, "SheepBall", 1)
	b.AddPal(palID(2), gvas.GUID{}, "PinkCat", 1)
	b.AddGuild(guildID, "Night Shift", worldtest.Member{UID: playerUID, Name: "Tester", LastOnline: 42})

	st, err := world.Load(b.Document(), world.Options{Lookup: worldtest.Tables(t)})
	require.NoError(t, err)

	pl := st.Player(playerUID)
	require.NotNil(t, pl)
	assert.False(t, pl.HasSaveData())
	require.Len(t, pl.Pals(), 1)
	assert.Equal(t, palID(1), pl.Pals()[0].InstanceID())

	require.Len(t, st.OwnerlessPals(), 1)
	assert.Len(t, st.Pals(), 2)
	assert.Same(t, st.Pal(palID(2)), st.PalByID(palID(2).String()))

	g := st.Guilds().OfPlayer(playerUID)
	require.NotNil(t, g)
	assert.Equal(t, "Night Shift", g.Name)
	require.Equal(t, 1, g.MemberCount())
	assert.Equal(t, uint64(42), g.Members[0].LastOnline)
}

func TestLoadRequiresLookup(t *testing.T) {
	_, err := world.Load(worldtest.New().Document(), world.Options{})
	assert.Error(t, err)
}

func TestClonePal(t *testing.T) {
	f, src := onePal(t, "SheepBall", 5)
	clone, err := f.state.ClonePal(src)
	require.NoError(t, err)

	assert.NotEqual(t, src.InstanceID(), clone.InstanceID())
	assert.True(t, clone.IsNew())
	assert.Equal(t, "SheepBall", clone.CharacterID())
	assert.Same(t, clone, f.state.Pal(clone.InstanceID()))
	assert.Len(t, f.state.Player(playerUID).Pals(), 2)
	assert.Len(t, f.state.Pals(), 2)

	clone.SetNickName("Copy")
	_, ok := src.NickName()
	assert.False(t, ok, "clone shares no nodes with its source")

	var cloned []event.PalCloned
	event.Subscribe(f.bus, func(e event.PalCloned) { cloned = append(cloned, e) })
	f.bus.Flush()
	require.Len(t, cloned, 1)
	assert.Equal(t, src.ID(), cloned[0].Source)
}

func TestDeletePal(t *testing.T) {
	f, p := onePal(t, "SheepBall", 5)
	id := p.InstanceID()

	assert.True(t, f.state.DeletePal(id))
	assert.Nil(t, f.state.Pal(id))
	assert.Empty(t, f.state.Player(playerUID).Pals())
	assert.Empty(t, f.state.Pals())

	assert.False(t, f.state.DeletePal(id))
	assert.Equal(t, 1, warnings(f))
}

func TestTransferPal(t *testing.T) {
	otherUID := worldtest.GUID(0xA0, 2)
	f := load(t, func(b *worldtest.Builder) {
		b.AddPlayer(otherUID, worldtest.GUID(0xB0, 2), "Other", 1)
		b.AddPal(palID(1), playerUID, "SheepBall", 5)
	})
	p := f.state.Pal(palID(1))
	from, to := f.state.Player(playerUID), f.state.Player(otherUID)
	require.NotNil(t, p)
	require.NotNil(t, to)

	require.True(t, f.state.TransferPal(p, otherUID))
	owner, ok := p.Owner()
	require.True(t, ok)
	assert.Equal(t, otherUID, owner)
	assert.Nil(t, from.Pal(palID(1)))
	assert.Same(t, p, to.Pal(palID(1)))
	assert.Empty(t, f.state.OwnerlessPals())

	require.True(t, f.state.TransferPal(p, gvas.GUID{}))
	_, ok = p.Owner()
	assert.False(t, ok)
	assert.Empty(t, to.Pals())
	require.Len(t, f.state.OwnerlessPals(), 1)
	assert.Same(t, p, f.state.OwnerlessPals()[0])

	require.True(t, f.state.TransferPal(p, playerUID))
	assert.Empty(t, f.state.OwnerlessPals())
	assert.Same(t, p, from.Pal(palID(1)))

	assert.False(t, f.state.TransferPal(p, worldtest.GUID(0xA0, 9)), "unknown player")
	assert.Same(t, p, from.Pal(palID(1)))
	assert.Equal(t, 1, warnings(f))

	// delete after transfer leaves no stale index entry
	require.True(t, f.state.TransferPal(p, otherUID))
	require.True(t, f.state.DeletePal(palID(1)))
	assert.Empty(t, from.Pals())
	assert.Empty(t, to.Pals())
	assert.Empty(t, f.state.OwnerlessPals())
}

// --- species, boss and rare ---

func TestBossAndRareAreExclusive(t *testing.T) {
	_, p := onePal(t, "SheepBall", 1)

	p.SetBoss(true)
	assert.Equal(t, "BOSS_SheepBall", p.CharacterID())
	assert.True(t, p.IsBoss())
	assert.False(t, p.IsRare())

	p.SetRare(true)
	assert.True(t, p.IsRare())
	assert.False(t, p.IsBoss())
	assert.True(t, p.IsRawBoss())

	p.SetBoss(true)
	assert.True(t, p.IsBoss())
	assert.False(t, p.IsRare())

	// clearing rare on a displayed boss changes nothing
	p.SetRare(false)
	assert.True(t, p.IsBoss())

	p.SetBoss(false)
	assert.Equal(t, "SheepBall", p.CharacterID())
	assert.False(t, p.IsBoss())
	assert.False(t, p.IsRare())
}

func TestRareImpliesBossMarker(t *testing.T) {
	_, p := onePal(t, "PinkCat", 1)
	p.SetRare(true)
	assert.Equal(t, "BOSS_PinkCat", p.CharacterID())
	assert.Equal(t, "PinkCat", p.DataKey())

	// clearing boss on a rare pal is a no-op
	p.SetBoss(false)
	assert.True(t, p.IsRare())

	p.SetRare(false)
	assert.Equal(t, "PinkCat", p.CharacterID())
	assert.False(t, p.IsRare())
}

func TestSpeciesChangeCascade(t *testing.T) {
	_, p := onePal(t, "PinkCat", 1)
	for _, m := range []string{sheepRoll, chickPeck, anubisKick} {
		require.True(t, p.MasterMove(m))
	}
	require.Len(t, p.EquippedMoves(), 3)
	p.SetHP(1)

	require.True(t, p.SetSpecies("ElecPanda"))

	tables := worldtest.Tables(t)
	info, _ := tables.Pal("ElecPanda")
	for _, m := range append(p.MasteredMoves(), p.EquippedMoves()...) {
		skill, ok := tables.ActiveSkill(m)
		require.True(t, ok)
		assert.True(t, !skill.Unique || info.Learns(m), "invalid move %s kept", m)
	}
	assert.Equal(t, []string{thunder}, p.MasteredMoves())
	assert.Equal(t, []string{thunder}, p.EquippedMoves())

	maxHP, ok := p.MaxHP()
	require.True(t, ok)
	assert.Equal(t, int64(557000), maxHP)
	hp, _ := p.HP()
	assert.Equal(t, uint64(maxHP), hp)

	stomach, _ := p.FullStomach()
	assert.Equal(t, float32(475), stomach)
	sanity, _ := p.Sanity()
	assert.Equal(t, float32(100), sanity)
}

func TestSpeciesChangeReclampsSuitability(t *testing.T) {
	_, p := onePal(t, "ElecPanda", 1)
	require.True(t, p.SetWorkSuitability(handcraft, 4))
	require.True(t, p.SetWorkSuitability(electric, 4))
	assert.Equal(t, map[string]int{handcraft: 2, electric: 1}, p.AddedSuitabilities())

	require.True(t, p.SetSpecies("Anubis"))
	// Anubis has no electricity; handcraft base 4 caps the bonus at 1
	assert.Equal(t, map[string]int{handcraft: 1}, p.AddedSuitabilities())
	assert.Equal(t, 5, p.WorkSuitability(handcraft))
}

func TestSpeciesChangeGender(t *testing.T) {
	_, p := onePal(t, "ElecPanda", 20)
	p.SetTower(true)
	assert.Equal(t, "GYM_ElecPanda", p.CharacterID())
	g, _ := p.Gender()
	assert.Equal(t, data.GenderFemale, g)
	assert.Equal(t, []string{thunder, "EPalWazaID::Unique_ElecPanda_ElecScratch", powerShot}, p.EquippedMoves())

	require.True(t, p.SetSpecies("Male_Soldier01"))
	_, ok := p.Gender()
	assert.False(t, ok)
	assert.Equal(t, []string{"EPalWazaID::Human_Punch"}, p.MasteredMoves())

	require.True(t, p.SetSpecies("SheepBall"))
	g, _ = p.Gender()
	assert.Equal(t, data.GenderFemale, g)
}

func TestSetSpeciesRejectsUnknown(t *testing.T) {
	f, p := onePal(t, "SheepBall", 1)
	assert.False(t, p.SetSpecies("NoSuchPal"))
	assert.False(t, p.SetSpecies(""))
	assert.False(t, p.SetSpecies("PlayerDummy"))
	assert.Equal(t, "SheepBall", p.CharacterID())
	assert.Equal(t, 3, warnings(f))
}

// --- stats ---

func TestDerivedStatsAtLevelOne(t *testing.T) {
	_, p := onePal(t, "SheepBall", 1)

	hp, _ := p.MaxHP()
	assert.Equal(t, int64(540000), hp)
	atk, _ := p.Attack()
	assert.Equal(t, int64(105), atk)
	def, _ := p.Defense()
	assert.Equal(t, int64(56), def)
	cs, _ := p.CraftSpeed()
	assert.Equal(t, int64(100), cs)

	require.True(t, p.AddPassive("CraftSpeed_up2"))
	cs, _ = p.CraftSpeed()
	assert.Equal(t, int64(150), cs)

	require.True(t, p.AddPassive("PAL_ALLAttack_up2"))
	boosted, _ := p.Attack()
	assert.Greater(t, boosted, atk)

	p.SetBoss(true)
	bossHP, _ := p.MaxHP()
	assert.Greater(t, bossHP, hp)
}

func TestStatsAbsentForUnknownSpecies(t *testing.T) {
	_, p := onePal(t, "NoSuchPal", 1)
	_, ok := p.MaxHP()
	assert.False(t, ok)
	_, ok = p.Attack()
	assert.False(t, ok)
	_, ok = p.Defense()
	assert.False(t, ok)
	_, ok = p.CraftSpeed()
	assert.False(t, ok)
}

func TestMaxHPMonotonic(t *testing.T) {
	_, p := onePal(t, "ElecPanda", 1)

	prev := int64(-1)
	for level := 1; level <= world.MaxInvalidLevel; level++ {
		p.SetLevel(level)
		hp, _ := p.MaxHP()
		assert.GreaterOrEqual(t, hp, prev, "level %d", level)
		prev = hp
	}

	prev = -1
	for v := 0; v <= 255; v += 5 {
		p.SetTalent(world.TalentHP, v)
		hp, _ := p.MaxHP()
		assert.GreaterOrEqual(t, hp, prev, "talent %d", v)
		prev = hp
	}

	prev = -1
	for r := 0; r <= 40; r++ {
		p.SetSoulRank(world.RankHP, r)
		hp, _ := p.MaxHP()
		assert.GreaterOrEqual(t, hp, prev, "rank_hp %d", r)
		prev = hp
	}

	prev = -1
	for r := 1; r <= 20; r++ {
		p.SetRank(r)
		hp, _ := p.MaxHP()
		assert.GreaterOrEqual(t, hp, prev, "rank %d", r)
		prev = hp
	}
}

func TestClamps(t *testing.T) {
	_, p := onePal(t, "SheepBall", 1)
	tables := worldtest.Tables(t)

	p.SetLevel(500)
	assert.Equal(t, world.MaxInvalidLevel, p.Level())
	assert.Equal(t, tables.PalLevelExp(world.MaxInvalidLevel), p.Exp())
	p.SetLevel(0)
	assert.Equal(t, 1, p.Level())

	p.SetRank(300)
	assert.Equal(t, world.MaxRank, p.Rank())
	p.SetRank(1)
	assert.False(t, p.Record().Param.Has("Rank"))
	assert.Equal(t, 1, p.Rank())

	p.SetSoulRank(world.RankAttack, 7)
	assert.Equal(t, 7, p.SoulRank(world.RankAttack))
	p.SetSoulRank(world.RankAttack, -3)
	assert.False(t, p.Record().Param.Has("Rank_Attack"))

	p.SetTalent(world.TalentShot, 999)
	assert.Equal(t, 255, p.Talent(world.TalentShot))
	p.SetTalent(world.TalentShot, -1)
	assert.Equal(t, 0, p.Talent(world.TalentShot))
}

func TestApplyLevelLearnsMoves(t *testing.T) {
	_, p := onePal(t, "SheepBall", 1)
	p.ApplyLevel(15)
	assert.ElementsMatch(t, []string{sheepRoll, airCanon, "EPalWazaID::SandTornado"}, p.MasteredMoves())
	hp, _ := p.HP()
	maxHP, _ := p.MaxHP()
	assert.Equal(t, uint64(maxHP), hp)
}

// --- moves and passives ---

func TestMoveSlots(t *testing.T) {
	f, p := onePal(t, "SheepBall", 1)

	assert.False(t, p.MasterMove("EPalWazaID::Nope"))
	assert.False(t, p.EquipMove(airCanon), "equipping requires mastery")

	for _, m := range []string{airCanon, powerShot, thunder} {
		require.True(t, p.MasterMove(m))
	}
	require.True(t, p.MasterMove(sheepRoll))
	assert.Len(t, p.EquippedMoves(), world.MaxEquippedMoves)
	assert.NotContains(t, p.EquippedMoves(), sheepRoll)
	assert.False(t, p.EquipMove(sheepRoll))
	assert.False(t, p.MasterMove(airCanon), "already mastered")

	require.True(t, p.ForgetMove(airCanon))
	assert.NotContains(t, p.MasteredMoves(), airCanon)
	assert.NotContains(t, p.EquippedMoves(), airCanon)
	assert.True(t, p.EquipMove(sheepRoll))

	assert.Equal(t, 3, warnings(f))
}

func TestPassiveLimits(t *testing.T) {
	f, p := onePal(t, "SheepBall", 1)
	assert.False(t, p.AddPassive("NotAPassive"))
	for _, id := range []string{"Rare", "Legend", "PAL_ALLAttack_up1", "Deffence_up2"} {
		require.True(t, p.AddPassive(id))
	}
	assert.False(t, p.AddPassive("CraftSpeed_up2"))
	assert.False(t, p.AddPassive("Rare"))
	assert.Len(t, p.Passives(), world.MaxPassives)

	assert.True(t, p.RemovePassive("Rare"))
	assert.False(t, p.RemovePassive("Rare"))
	assert.Equal(t, 4, warnings(f))
}

func TestRemovalsOfAbsentEntriesWarn(t *testing.T) {
	f, p := onePal(t, "SheepBall", 1)
	require.True(t, p.MasterMove(airCanon))

	assert.False(t, p.RemovePassive("Rare"))
	assert.False(t, p.ForgetMove(thunder))
	assert.False(t, p.UnequipMove(thunder))
	assert.Equal(t, 3, warnings(f))

	// forgetting an equipped move unequips it without an extra warning
	require.True(t, p.ForgetMove(airCanon))
	assert.NotContains(t, p.EquippedMoves(), airCanon)
	assert.Equal(t, 3, warnings(f))
}

func TestRejectedMutationsCarryInvariantErrors(t *testing.T) {
	f, p := onePal(t, "SheepBall", 1)
	assert.False(t, p.AddPassive("NotAPassive"))
	assert.False(t, f.state.Player(playerUID).SetStatusPoint("Nope", 1))

	errs := warnErrors(f)
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.True(t, perr.IsInvariant(err), err.Error())
	}
	assert.Contains(t, errs[0].Error(), p.ID())
}

// --- work suitability ---

func TestWorkSuitability(t *testing.T) {
	f, p := onePal(t, "ElecPanda", 1)
	assert.Equal(t, 2, p.WorkSuitability(handcraft))
	assert.Zero(t, p.WorkSuitability(data.SuitabilityPrefix+"Mining"))

	require.True(t, p.SetWorkSuitability(handcraft, 4))
	assert.Equal(t, 4, p.WorkSuitability(handcraft))

	p.SetRank(5)
	assert.Equal(t, 5, p.WorkSuitability(handcraft))
	assert.Equal(t, 4, p.WorkSuitability(electric))
	assert.Equal(t, 4, p.WorkSuitability(transport))

	require.True(t, p.SetWorkSuitability(handcraft, 2))
	assert.False(t, p.Record().Param.Has("GotWorkSuitabilityAddRankList"))

	assert.False(t, p.SetWorkSuitability("EPalWorkSuitability::Dancing", 3))
	assert.Equal(t, 1, warnings(f))
}

// --- misc pal fields ---

func TestHealClearsAilments(t *testing.T) {
	_, p := onePal(t, "SheepBall", 3)
	param := p.Record().Param
	param.Set("PalReviveTimer", gvas.Float(30))
	param.Set("WorkerSick", gvas.NewEnum("EPalBaseCampWorkerSickType::Cold"))
	param.Set("HungerType", gvas.NewEnum("EPalStatusHungerType::Starvation"))
	require.True(t, p.IsFainted())

	p.Heal()
	assert.False(t, p.IsFainted())
	_, sick := p.Sickness()
	assert.False(t, sick)
	_, hungry := p.Hunger()
	assert.False(t, hungry)
	stomach, _ := p.FullStomach()
	assert.Equal(t, float32(150), stomach)

	param.Set("PhysicalHealth", gvas.NewEnum("EPalStatusPhysicalHealthType::Dying"))
	assert.True(t, p.IsFainted())
}

func TestDisplayNameCache(t *testing.T) {
	_, p := onePal(t, "SheepBall", 1)
	require.True(t, p.SetGender(data.GenderFemale))
	assert.Equal(t, "Lamball♀", p.DisplayName())

	p.SetNickName("Lamby")
	assert.Equal(t, "Lamball (Lamby)♀", p.DisplayName())

	p.SetRare(true)
	assert.Equal(t, "✨Lamball (Lamby)♀", p.DisplayName())

	p.SetNickName("")
	_, ok := p.NickName()
	assert.False(t, ok)
	assert.Equal(t, "✨Lamball♀", p.DisplayName())
}

func TestSlotAndExpedition(t *testing.T) {
	f, p := onePal(t, "SheepBall", 1)
	param := p.Record().Param
	param.Set("SlotID", props.SlotID(otomoID, 2))

	c, idx, ok := p.SlotID()
	require.True(t, ok)
	assert.Equal(t, otomoID, c)
	assert.Equal(t, int32(2), idx)
	assert.True(t, f.state.Player(playerUID).InPalbox(p))

	assert.False(t, p.IsExpedition())
	param.Set("MapObjectConcreteInstanceIdAssignedToExpedition", props.GUID(worldtest.GUID(1, 1)))
	assert.True(t, p.IsExpedition())

	owner, ok := p.Owner()
	require.True(t, ok)
	assert.Equal(t, playerUID, owner)
}

func TestMutatorsEmitEvents(t *testing.T) {
	f, p := onePal(t, "SheepBall", 1)
	var changes []event.FieldChanged
	event.Subscribe(f.bus, func(e event.FieldChanged) { changes = append(changes, e) })

	p.SetNickName("Lamby")
	p.SetFavorite(true)
	f.bus.Flush()

	require.Len(t, changes, 2)
	assert.Equal(t, event.EntityPal, changes[0].Entity)
	assert.Equal(t, "NickName", changes[0].Field)
	assert.Equal(t, "Lamby", changes[0].New)
	assert.Equal(t, p.ID(), changes[1].ID)
}

// --- player ---

func TestPlayerLevelAccounting(t *testing.T) {
	f := load(t, nil)
	pl := f.state.Player(playerUID)
	tables := worldtest.Tables(t)

	require.True(t, pl.SetLevel(10))
	assert.Equal(t, 10, pl.Level())
	assert.Equal(t, 9, pl.UnusedStatusPoint())
	assert.Equal(t, tables.PlayerLevelExp(10), pl.Exp())

	pl.SetUnusedStatusPoint(2)
	assert.False(t, pl.SetLevel(5))
	assert.Equal(t, 10, pl.Level())
	assert.Equal(t, 1, warnings(f))

	require.True(t, pl.SetLevel(8))
	assert.Equal(t, 0, pl.UnusedStatusPoint())

	pl.SetUnusedStatusPoint(100000)
	assert.Equal(t, 65535, pl.UnusedStatusPoint())
}

func TestPlayerStatusPoints(t *testing.T) {
	f := load(t, nil)
	pl := f.state.Player(playerUID)

	v, ok := pl.StatusPoint(world.StatusAttack)
	require.True(t, ok)
	assert.Zero(t, v)

	require.True(t, pl.SetStatusPoint(world.StatusAttack, 12))
	v, _ = pl.StatusPoint(world.StatusAttack)
	assert.Equal(t, 12, v)

	_, ok = pl.ExStatusPoint(world.StatusCaptureRate)
	assert.False(t, ok)
	assert.False(t, pl.SetExStatusPoint(world.StatusCaptureRate, 1))
	require.True(t, pl.SetExStatusPoint(world.StatusWorkSpeed, 3))
	v, _ = pl.ExStatusPoint(world.StatusWorkSpeed)
	assert.Equal(t, 3, v)
}

func TestPlayerTechnologies(t *testing.T) {
	f := load(t, nil)
	pl := f.state.Player(playerUID)
	require.True(t, pl.HasSaveData())

	assert.False(t, pl.HasViewingCage())
	require.True(t, pl.UnlockViewingCage())
	assert.True(t, pl.HasViewingCage())
	assert.False(t, pl.UnlockViewingCage())
	require.True(t, pl.ToggleTechnology("DisplayCharacter", false))
	assert.False(t, pl.ToggleTechnology("DisplayCharacter", false))

	tp, ok := pl.TechnologyPoint()
	require.True(t, ok)
	assert.Equal(t, 3, tp)
	require.True(t, pl.SetBossTechnologyPoint(2))
	btp, _ := pl.BossTechnologyPoint()
	assert.Equal(t, 2, btp)
	assert.False(t, pl.SetTechnologyPoint(-1))
}

func TestSaveNewPalRecords(t *testing.T) {
	f, src := onePal(t, "SheepBall", 1)
	pl := f.state.Player(playerUID)
	_, err := f.state.ClonePal(src)
	require.NoError(t, err)

	f.state.SaveNewPalRecords()
	assert.True(t, pl.PaldeckUnlocked("Sheepball"))
	assert.Equal(t, 1, pl.CaptureCount("sheepball"))
	assert.Contains(t, pl.UnlockedTechnologies(), "SkillUnlock_Sheepball")

	f.state.SaveNewPalRecords()
	assert.Equal(t, 1, pl.CaptureCount("Sheepball"))
}

func TestSortedPals(t *testing.T) {
	f := load(t, func(b *worldtest.Builder) {
		b.AddPal(palID(1), playerUID, "Anubis", 10)
		b.AddPal(palID(2), playerUID, "Male_Soldier01", 10)
		b.AddPal(palID(3), playerUID, "BOSS_PinkCat", 3)
		b.AddPal(palID(4), playerUID, "PinkCat", 7)
		b.AddPal(palID(5), playerUID, "SheepBall", 1)
		b.AddPal(palID(6), playerUID, "PinkCat", 2)
	})
	var got []gvas.GUID
	for _, p := range f.state.Player(playerUID).SortedPals() {
		got = append(got, p.InstanceID())
	}
	assert.Equal(t, []gvas.GUID{palID(5), palID(6), palID(4), palID(3), palID(1), palID(2)}, got)
}
