package catalog

import "sort"

// Protocol codes
const (
	CodePower           = "Pow"
	CodeMode            = "Mod"
	CodeTemperature     = "SetTem"
	CodeTemperatureUnit = "TemUn"
	CodeCurrentTemp     = "TemSen"
	CodeFanSpeed        = "WdSpd"
	CodeAir             = "Air"
	CodeBlow            = "Blo"
	CodeHealth          = "Health"
	CodeSleep           = "SwhSlp"
	CodeLights          = "Lig"
	CodeSwingHorizontal = "SwingLfRig"
	CodeSwingVertical   = "SwUpDn"
	CodeQuiet           = "Quiet"
	CodeTurbo           = "Tur"
	CodeHeat8           = "StHt"
	CodeHeatCoolType    = "HeatCoolType"
	CodeTempRecord      = "TemRec"
	CodePowerSave       = "SvSt"
)

// Entry is one row of the catalog.
type Entry struct {
	Name string // logical control name, e.g. "power"
	Code string // protocol code, e.g. "Pow"
}

// entries is ordered as the codes are requested in a status poll.
var entries = []Entry{
	{"power", CodePower},
	{"mode", CodeMode},
	{"temperatureUnit", CodeTemperatureUnit},
	{"temperature", CodeTemperature},
	{"currentTemperature", CodeCurrentTemp},
	{"fanSpeed", CodeFanSpeed},
	{"air", CodeAir},
	{"blow", CodeBlow},
	{"health", CodeHealth},
	{"sleep", CodeSleep},
	{"lights", CodeLights},
	{"swingHor", CodeSwingHorizontal},
	{"swingVert", CodeSwingVertical},
	{"quiet", CodeQuiet},
	{"turbo", CodeTurbo},
	{"heat8", CodeHeat8},
	{"heatCoolType", CodeHeatCoolType},
	{"tempRecord", CodeTempRecord},
	{"powerSave", CodePowerSave},
}

var (
	byName = make(map[string]string, len(entries))
	byCode = make(map[string]string, len(entries))
)

func init() {
	for _, e := range entries {
		byName[e.Name] = e.Code
		byCode[e.Code] = e.Name
	}
}

// Entries returns a copy of the catalog in poll order.
func Entries() []Entry {
	return append([]Entry(nil), entries...)
}

// Codes returns every known protocol code in poll order.
func Codes() []string {
	codes := make([]string, len(entries))
	for i, e := range entries {
		codes[i] = e.Code
	}
	return codes
}

// Names returns the logical names sorted alphabetically.
func Names() []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a logical name to its protocol code.
func Lookup(name string) (string, bool) {
	code, ok := byName[name]
	return code, ok
}

// NameOf returns the logical name for a protocol code, or the code itself when it
// is not in the catalog.
func NameOf(code string) string {
	if name, ok := byCode[code]; ok {
		return name
	}
	return code
}
