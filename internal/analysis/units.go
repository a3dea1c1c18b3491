package analysis

import "strings"

// YAxisName guesses the unit caption of a field from its name.
func YAxisName(field string) string {
	lower := strings.ToLower(field)
	switch {
	case strings.Contains(field, "nm"):
		return "Wavelength(nm)"
	case strings.Contains(field, "µm"):
		return "Wavelength(µm)"
	case strings.Contains(field, "cm"):
		return "Wavelength(cm)"
	case strings.Contains(field, "hPa"):
		return "Pressure(hPa)"
	case strings.Contains(lower, "degrees_c"):
		return "Celsius(°C)"
	case strings.Contains(lower, "angle"):
		return "Angle(°)"
	case strings.Contains(lower, "longitude"):
		return "Longitude(λ)"
	case strings.Contains(lower, "latitude"):
		return "Latitude(Φ)"
	case strings.Contains(lower, "wavelength"):
		return "Wavelength"
	default:
		return ""
	}
}
