package data

// SuitabilityPrefix is the enum type of work suitability values.
const SuitabilityPrefix = "EPalWorkSuitability::"

// Suitabilities lists every work suitability in in-game order.
var Suitabilities = []string{
	SuitabilityPrefix + "EmitFlame",
	SuitabilityPrefix + "Watering",
	SuitabilityPrefix + "Seeding",
	SuitabilityPrefix + "GenerateElectricity",
	SuitabilityPrefix + "Handcraft",
	SuitabilityPrefix + "Collection",
	SuitabilityPrefix + "Deforest",
	SuitabilityPrefix + "Mining",
	SuitabilityPrefix + "OilExtraction",
	SuitabilityPrefix + "ProductMedicine",
	SuitabilityPrefix + "Cool",
	SuitabilityPrefix + "Transport",
	SuitabilityPrefix + "MonsterFarm",
}

// IsSuitability reports whether v is a known work suitability value.
func IsSuitability(v string) bool {
	for _, s := range Suitabilities {
		if s == v {
			return true
		}
	}
	return false
}
