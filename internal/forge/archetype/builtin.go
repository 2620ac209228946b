package archetype

// Builtin returns the default catalog: the five starting archetypes and
// their skill theme pools.
func Builtin() *Catalog {
	c, err := NewCatalog(builtinArchetypes, builtinThemes)
	if err != nil {
		// The builtin data is validated by tests; a failure here is a
		// programming error in this file.
		panic(err)
	}
	return c
}

var builtinArchetypes = []Archetype{
	{
		Key:         "warrior",
		Name:        "Warrior",
		Description: "Master of combat and strength",
		BaseStats:   Stats{HP: 120, MP: 50, STR: 18, INT: 5, DEX: 10},
		Growth:      Stats{HP: 25, MP: 5, STR: 5, INT: 1, DEX: 2},
		Themes:      []string{"combat", "damage", "berserker"},
	},
	{
		Key:         "priest",
		Name:        "Priest",
		Description: "Healer and protector of the light",
		BaseStats:   Stats{HP: 80, MP: 150, STR: 6, INT: 16, DEX: 8},
		Growth:      Stats{HP: 12, MP: 25, STR: 1, INT: 4, DEX: 1},
		Themes:      []string{"wisdom", "magic"},
	},
	{
		Key:         "mage",
		Name:        "Mage",
		Description: "Wielder of arcane magic",
		BaseStats:   Stats{HP: 70, MP: 180, STR: 4, INT: 20, DEX: 6},
		Growth:      Stats{HP: 10, MP: 30, STR: 1, INT: 4, DEX: 1},
		Themes:      []string{"magic", "knowledge"},
	},
	{
		Key:         "thief",
		Name:        "Thief",
		Description: "Shadow and stealth expert",
		BaseStats:   Stats{HP: 90, MP: 80, STR: 10, INT: 8, DEX: 18},
		Growth:      Stats{HP: 15, MP: 10, STR: 2, INT: 2, DEX: 4},
		Themes:      []string{"damage", "innovation"},
	},
	{
		Key:         "wanderer",
		Name:        "Wanderer",
		Description: "Free from class restrictions",
		BaseStats:   Stats{HP: 100, MP: 100, STR: 10, INT: 10, DEX: 10},
		Growth:      Stats{HP: 15, MP: 15, STR: 2, INT: 2, DEX: 2},
		Themes:      []string{"knowledge", "crafting", "wisdom"},
	},
}

var builtinThemes = map[string][]SkillTemplate{
	"knowledge": {
		{Name: "Omniscience", Kind: "active", Effect: "Reveals entire map and buffs INT by 50% for 60s"},
		{Name: "Memorize", Kind: "passive", Effect: "+10% XP from reading activities"},
		{Name: "Eidetic Memory", Kind: "passive", Effect: "Never forgets learned recipes or patterns"},
	},
	"magic": {
		{Name: "Arcane Mastery", Kind: "passive", Effect: "+25% spell damage and +15% MP regeneration"},
		{Name: "Mana Surge", Kind: "active", Effect: "Instantly restores 50% MP, 2min cooldown"},
		{Name: "Spell Weaving", Kind: "active", Effect: "Combines two spells into a more powerful effect"},
	},
	"wisdom": {
		{Name: "Ancient Knowledge", Kind: "passive", Effect: "+20% experience gain from all sources"},
		{Name: "Meditation", Kind: "active", Effect: "Restores HP and MP over 30s, can move while active"},
	},
	"combat": {
		{Name: "Bloodlust", Kind: "passive", Effect: "Each kill increases damage by 2% (stacks up to 10x)"},
		{Name: "Execute", Kind: "active", Effect: "Deals 300% damage to enemies below 30% HP"},
		{Name: "Battle Frenzy", Kind: "active", Effect: "Doubles attack speed for 15s, 1min cooldown"},
	},
	"damage": {
		{Name: "Critical Strike", Kind: "passive", Effect: "+15% critical hit chance and +50% critical damage"},
		{Name: "Sundering Blow", Kind: "active", Effect: "Ignores 50% of enemy armor, 30s cooldown"},
	},
	"berserker": {
		{Name: "Rage", Kind: "active", Effect: "Takes 20% more damage but deals 50% more damage for 20s"},
		{Name: "Last Stand", Kind: "passive", Effect: "When HP drops below 25%, gain 100% damage boost"},
	},
	"crafting": {
		{Name: "Master Craftsman", Kind: "passive", Effect: "All crafted items have +20% quality and durability"},
		{Name: "Rapid Assembly", Kind: "active", Effect: "Crafting speed increased by 300% for 5 minutes"},
		{Name: "Innovation", Kind: "passive", Effect: "10% chance to create an improved version of any recipe"},
	},
	"engineering": {
		{Name: "Precision Tools", Kind: "passive", Effect: "Reduces material cost by 15% and failure rate by 25%"},
		{Name: "Blueprint Mastery", Kind: "passive", Effect: "Can craft items 5 levels above current skill"},
	},
	"innovation": {
		{Name: "Reverse Engineering", Kind: "active", Effect: "Analyze any item to learn its recipe, 1hr cooldown"},
		{Name: "Experimental Design", Kind: "passive", Effect: "Can combine materials in new ways to create unique items"},
	},
}
