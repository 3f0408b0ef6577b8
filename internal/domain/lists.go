package domain

// Heuristic reference data. Entries are upper-case and matched against upper-cased input.

// militaryCallsignPrefixes are operator call words used by air forces and allied transports.
var militaryCallsignPrefixes = []string{
	"RRR", "RCH", "DUKE", "REACH", "EVAC", "JAKE", "KING", "TEAL", "DARK", "DOOM",
	"VIPER", "HAWK", "EAGLE", "COBRA", "MAGIC", "NATO", "GAF", "BAF", "FAF", "IAM",
	"AMI", "RFR", "CTM", "MMF", "HRZ", "PLF", "SWF", "NOR", "DAF", "USAF",
	"USN", "USMC", "ARMY", "NAVY", "MARS", "GUARD", "AF",
}

// militaryTypeDesignators are ICAO type codes (or fragments) of military airframes.
var militaryTypeDesignators = []string{
	"F16", "F15", "F18", "F35", "F22", "A10", "B52", "B1", "B2", "C17",
	"C130", "C5", "KC135", "KC10", "KC46", "E3", "E8", "P8", "P3", "RC135",
	"U2", "RQ4", "MQ9", "MQ1", "EUFI", "TYPHOON", "RAFALE", "TORNADO", "GRIPEN", "NH90",
	"CH47", "CH53", "UH60", "AH64", "V22", "HAWK", "A400", "A330MRTT", "A310MRTT", "E7",
	"GLOBALHAWK", "BLACKHAWK", "APACHE", "CHINOOK",
}

// militaryDescriptionKeywords appear in free-text aircraft descriptions.
var militaryDescriptionKeywords = []string{"MILITARY", "TANKER", "FIGHTER", "BOMBER"}

// militaryCategory is the ADS-B emitter category for high-performance aircraft.
const militaryCategory = "A5"

// natoCallWords are matched as <word><digits> at the start of a callsign.
var natoCallWords = []string{
	"RCH", "RRR", "ASCOT", "QID", "LAGR", "NATO", "MAGIC", "FORTE", "SHELL",
	"MOOSE", "CNV", "KING", "ROMA", "OLIVE", "DUKE", "VIPER", "HAWK",
}

// loiterMaxKnots is the exclusive upper ground speed bound for loitering.
const loiterMaxKnots = 150
