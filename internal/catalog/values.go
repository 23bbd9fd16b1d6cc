package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode values for CodeMode.
type Mode int

const (
	ModeAuto Mode = iota
	ModeCool
	ModeDry
	ModeFan
	ModeHeat
)

// FanSpeed values for CodeFanSpeed.
type FanSpeed int

const (
	FanAuto FanSpeed = iota
	FanLow
	FanMediumLow
	FanMedium
	FanMediumHigh
	FanHigh
)

// SwingHorizontal values for CodeSwingHorizontal.
type SwingHorizontal int

const (
	SwingHorDefault SwingHorizontal = iota
	SwingHorFull
	SwingHorFixedLeft
	SwingHorFixedMidLeft
	SwingHorFixedMid
	SwingHorFixedMidRight
	SwingHorFixedRight
	SwingHorFullAlt
)

// SwingVertical values for CodeSwingVertical.
type SwingVertical int

const (
	SwingVertDefault SwingVertical = iota
	SwingVertFull
	SwingVertFixedTop
	SwingVertFixedMidTop
	SwingVertFixedMid
	SwingVertFixedMidBottom
	SwingVertFixedBottom
	SwingVertSwingBottom
	SwingVertSwingMidBottom
	SwingVertSwingMid
	SwingVertSwingMidTop
	SwingVertSwingTop
)

// Air values for CodeAir (fresh air valve).
type Air int

const (
	AirOff Air = iota
	AirInside
	AirOutside
	AirMode3
)

// Quiet values for CodeQuiet.
type Quiet int

const (
	QuietOff Quiet = iota
	QuietMode1
	QuietMode2
	QuietMode3
)

// TemperatureUnit values for CodeTemperatureUnit.
type TemperatureUnit int

const (
	Celsius TemperatureUnit = iota
	Fahrenheit
)

// OnOff converts a switch state to its wire value.
func OnOff(on bool) int {
	if on {
		return 1
	}
	return 0
}

// valueNames holds the textual aliases accepted by ParseValue, per logical name.
var valueNames = map[string]map[string]int{
	"mode": {
		"auto": int(ModeAuto), "cool": int(ModeCool), "dry": int(ModeDry),
		"fan": int(ModeFan), "heat": int(ModeHeat),
	},
	"fanSpeed": {
		"auto": int(FanAuto), "low": int(FanLow), "mediumLow": int(FanMediumLow),
		"medium": int(FanMedium), "mediumHigh": int(FanMediumHigh), "high": int(FanHigh),
	},
	"swingHor": {
		"default": int(SwingHorDefault), "full": int(SwingHorFull),
		"fixedLeft": int(SwingHorFixedLeft), "fixedMidLeft": int(SwingHorFixedMidLeft),
		"fixedMid": int(SwingHorFixedMid), "fixedMidRight": int(SwingHorFixedMidRight),
		"fixedRight": int(SwingHorFixedRight), "fullAlt": int(SwingHorFullAlt),
	},
	"swingVert": {
		"default": int(SwingVertDefault), "full": int(SwingVertFull),
		"fixedTop": int(SwingVertFixedTop), "fixedMidTop": int(SwingVertFixedMidTop),
		"fixedMid": int(SwingVertFixedMid), "fixedMidBottom": int(SwingVertFixedMidBottom),
		"fixedBottom": int(SwingVertFixedBottom), "swingBottom": int(SwingVertSwingBottom),
		"swingMidBottom": int(SwingVertSwingMidBottom), "swingMid": int(SwingVertSwingMid),
		"swingMidTop": int(SwingVertSwingMidTop), "swingTop": int(SwingVertSwingTop),
	},
	"air": {
		"off": int(AirOff), "inside": int(AirInside), "outside": int(AirOutside), "mode3": int(AirMode3),
	},
	"quiet": {
		"off": int(QuietOff), "mode1": int(QuietMode1), "mode2": int(QuietMode2), "mode3": int(QuietMode3),
	},
	"temperatureUnit": {
		"celsius": int(Celsius), "fahrenheit": int(Fahrenheit),
	},
}

// ParseValue converts user text into a wire value for the named control.
// It accepts integers, on/off style booleans, and the enum aliases above.
func ParseValue(name, text string) (int, error) {
	if _, ok := byName[name]; !ok {
		return 0, fmt.Errorf("unknown control %q", name)
	}

	if aliases, ok := valueNames[name]; ok {
		for alias, v := range aliases {
			if strings.EqualFold(alias, text) {
				return v, nil
			}
		}
	}

	switch strings.ToLower(text) {
	case "on", "true", "yes":
		return 1, nil
	case "off", "false", "no":
		return 0, nil
	}

	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q for %s", text, name)
	}
	return v, nil
}

var switches = map[string]bool{
	"power": true, "blow": true, "health": true, "sleep": true,
	"lights": true, "turbo": true, "heat8": true, "powerSave": true,
}

// ValueName returns the display form of v for the named control: its alias,
// on/off for switches, or the number itself.
func ValueName(name string, v int) string {
	for alias, av := range valueNames[name] {
		if av == v {
			return alias
		}
	}
	if switches[name] && (v == 0 || v == 1) {
		if v == 1 {
			return "on"
		}
		return "off"
	}
	return strconv.Itoa(v)
}
