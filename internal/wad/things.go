package wad

import "bsprender/internal/level"

// thingInfo is the renderer's view of a map thing type.
type thingInfo struct {
	sprite string
	flags  level.ThingFlags
}

// PlayerStart is the editor number of the player 1 start.
const PlayerStart = 1

// thingTypes covers the monsters, pickups and decorations of the shareware
// and registered episodes. Unknown types are skipped.
var thingTypes = map[int]thingInfo{
	// monsters
	3004: {sprite: "POSS"},
	9:    {sprite: "SPOS"},
	3001: {sprite: "TROO"},
	3002: {sprite: "SARG"},
	58:   {sprite: "SARG", flags: level.ThingShadow},
	3006: {sprite: "SKUL", flags: level.ThingFullBright},
	3005: {sprite: "HEAD"},
	3003: {sprite: "BOSS"},
	16:   {sprite: "CYBR"},
	7:    {sprite: "SPID"},

	// weapons and ammo
	2001: {sprite: "SHOT"},
	2002: {sprite: "MGUN"},
	2003: {sprite: "LAUN"},
	2004: {sprite: "PLAS"},
	2005: {sprite: "CSAW"},
	2006: {sprite: "BFUG"},
	2007: {sprite: "CLIP"},
	2008: {sprite: "SHEL"},
	2010: {sprite: "ROCK"},
	2046: {sprite: "BROK"},
	2047: {sprite: "CELL"},
	2048: {sprite: "AMMO"},
	2049: {sprite: "SBOX"},
	17:   {sprite: "CELP"},
	8:    {sprite: "BPAK"},

	// health, armor and powerups
	2011: {sprite: "STIM"},
	2012: {sprite: "MEDI"},
	2014: {sprite: "BON1"},
	2015: {sprite: "BON2"},
	2018: {sprite: "ARM1"},
	2019: {sprite: "ARM2"},
	2013: {sprite: "SOUL", flags: level.ThingFullBright},
	2022: {sprite: "PINV", flags: level.ThingFullBright},
	2023: {sprite: "PSTR", flags: level.ThingFullBright},
	2024: {sprite: "PINS", flags: level.ThingFullBright},
	2025: {sprite: "SUIT", flags: level.ThingFullBright},
	2026: {sprite: "PMAP", flags: level.ThingFullBright},
	2045: {sprite: "PVIS", flags: level.ThingFullBright},

	// keys
	5:  {sprite: "BKEY"},
	6:  {sprite: "YKEY"},
	13: {sprite: "RKEY"},
	40: {sprite: "BSKU"},
	39: {sprite: "YSKU"},
	38: {sprite: "RSKU"},

	// decorations
	2035: {sprite: "BAR1"},
	2028: {sprite: "COLU", flags: level.ThingFullBright},
	34:   {sprite: "CAND", flags: level.ThingFullBright},
	35:   {sprite: "CBRA", flags: level.ThingFullBright},
	44:   {sprite: "TBLU", flags: level.ThingFullBright},
	45:   {sprite: "TGRN", flags: level.ThingFullBright},
	46:   {sprite: "TRED", flags: level.ThingFullBright},
	48:   {sprite: "ELEC"},
	30:   {sprite: "COL1"},
	31:   {sprite: "COL2"},
	32:   {sprite: "COL3"},
	33:   {sprite: "COL4"},
	43:   {sprite: "TRE1"},
	47:   {sprite: "SMIT"},
	54:   {sprite: "TRE2"},
	10:   {sprite: "PLAY"},
	12:   {sprite: "PLAY"},
	15:   {sprite: "PLAY"},
	24:   {sprite: "POL5"},
}

// Thing option bits.
const (
	optSkillHard   = 0x04
	optMultiplayer = 0x10
)
