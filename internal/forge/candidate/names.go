package candidate

// Adjectives shared by all archetypes.
var adjectives = []string{
	"Wise", "Vigilant", "Silent", "Ancient", "Eternal", "Mystic", "Shadow",
	"Golden", "Crimson", "Azure", "Frost", "Flame", "Storm", "Thunder",
	"Divine", "Infernal", "Celestial", "Abyssal", "Primal", "Arcane",
}

// Epithets by archetype key.
var epithets = map[string][]string{
	"warrior": {
		"Blademaster", "Vanguard", "Warlord", "Champion", "Sentinel",
		"Gladiator", "Berserker", "Crusader",
	},
	"priest": {
		"Oracle", "Lightbringer", "Confessor", "Hierophant", "Chaplain",
		"Exorcist", "Seraph",
	},
	"mage": {
		"Archon", "Spellweaver", "Magus", "Conjurer", "Loremaster",
		"Runekeeper", "Thaumaturge",
	},
	"thief": {
		"Nightblade", "Phantom", "Trickster", "Shadowdancer", "Infiltrator",
		"Cutpurse", "Duelist",
	},
	"wanderer": {
		"Pathfinder", "Nomad", "Drifter", "Pilgrim", "Voyager",
		"Freelancer", "Strider",
	},
}

// genericEpithets backs archetypes loaded from configuration that have
// no dedicated epithet list.
var genericEpithets = []string{
	"Adept", "Ascendant", "Exemplar", "Harbinger", "Paragon", "Warden",
}
