package world

// Character map location.
const (
	keyWorldSaveData = "worldSaveData"
	keyCharacterMap  = "CharacterSaveParameterMap"
	keyGroupMap      = "GroupSaveDataMap"
)

// Character record layout.
const (
	keyRecordKey      = "Key"
	keyRawData        = "RawData"
	keySaveParameter  = "SaveParameter"
	keyGroupID        = "GroupId"
	keyPlayerUID      = "PlayerUId"
	keyInstanceID     = "InstanceId"
	keyDebugName      = "DebugName"
	structInstanceID  = "PalInstanceID"
	structSaveParam   = "PalIndividualCharacterSaveParameter"
	enumCharacterType = "EPalCharacterType::Player"
)

// SaveParameter fields.
const (
	fieldCharacterType    = "CharacterType"
	fieldIsPlayer         = "IsPlayer"
	fieldCharacterID      = "CharacterID"
	fieldOwnerPlayerUID   = "OwnerPlayerUId"
	fieldOldOwners        = "OldOwnerPlayerUIds"
	fieldNickName         = "NickName"
	fieldGender           = "Gender"
	fieldLevel            = "Level"
	fieldExp              = "Exp"
	fieldRank             = "Rank"
	fieldRankHP           = "Rank_HP"
	fieldRankAttack       = "Rank_Attack"
	fieldRankDefence      = "Rank_Defence"
	fieldRankCraftSpeed   = "Rank_CraftSpeed"
	fieldTalentHP         = "Talent_HP"
	fieldTalentMelee      = "Talent_Melee"
	fieldTalentShot       = "Talent_Shot"
	fieldTalentDefense    = "Talent_Defense"
	fieldHP               = "Hp"
	fieldIsRare           = "IsRarePal"
	fieldIsFavorite       = "IsFavoritePal"
	fieldPassives         = "PassiveSkillList"
	fieldEquipWaza        = "EquipWaza"
	fieldMasteredWaza     = "MasteredWaza"
	fieldAddedSuitability = "GotWorkSuitabilityAddRankList"
	fieldSanity           = "SanityValue"
	fieldFullStomach      = "FullStomach"
	fieldPhysicalHealth   = "PhysicalHealth"
	fieldWorkerSick       = "WorkerSick"
	fieldHungerType       = "HungerType"
	fieldReviveTimer      = "PalReviveTimer"
	fieldSlotID           = "SlotID"
	fieldExpedition       = "MapObjectConcreteInstanceIdAssignedToExpedition"
	fieldUnusedStatus     = "UnusedStatusPoint"
	fieldStatusPoints     = "GotStatusPointList"
	fieldExStatusPoints   = "GotExStatusPointList"
)

// Players/<uid>.sav SaveData fields.
const (
	keySaveData          = "SaveData"
	keyIndividualID      = "IndividualId"
	fieldOtomoContainer  = "OtomoCharacterContainerId"
	fieldPalStorage      = "PalStorageContainerId"
	fieldUnlockedRecipes = "UnlockedRecipeTechnologyNames"
	fieldTechPoint       = "TechnologPoint"
	fieldBossTechPoint   = "bossTechPoint"
	fieldRecordData      = "RecordData"
	fieldCaptureCount    = "PalCaptureCount"
	fieldPaldeckUnlock   = "PaldeckUnlockFlag"
	structRecordData     = "PalLoggedinPlayerSaveDataRecordData"
)

const physicalHealthDying = "EPalStatusPhysicalHealthType::Dying"
