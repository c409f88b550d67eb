package weather

// Meteomatics weather_symbol_1h:idx codes. Night symbols are offset by 100.
var conditions = map[int]string{
	1:  "Sonnig",
	2:  "Leicht bewölkt",
	3:  "Teilweise bewölkt",
	4:  "Bewölkt",
	5:  "Regen",
	6:  "Schneeregen",
	7:  "Schnee",
	8:  "Regenschauer",
	9:  "Schneeschauer",
	10: "Schneeregenschauer",
	11: "Leichter Nebel",
	12: "Dichter Nebel",
	13: "Eisregen",
	14: "Gewitter",
	15: "Nieselregen",
	16: "Sandsturm",
}

// Condition translates a weather symbol into the German description.
func Condition(symbol int) string {
	night := symbol > 100
	if night {
		symbol -= 100
	}
	if symbol == 1 && night {
		return "Klar"
	}
	if c, ok := conditions[symbol]; ok {
		return c
	}
	return FallbackCondition
}
