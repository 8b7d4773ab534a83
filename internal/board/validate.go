package board

import "math"

// ValidID reports whether s may be used as the board identifier:
// at most MaxIDLen ASCII letters or digits. The empty string is allowed.
// Non-ASCII letters are rejected because frames are plain ASCII.
func ValidID(s string) bool {
	if len(s) > MaxIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}

// ValidTemperature reports whether v is within MinTemperature..MaxTemperature.
func ValidTemperature(v float64) bool {
	return inRange(v, MinTemperature, MaxTemperature)
}

// ValidHumidity reports whether v is within MinHumidity..MaxHumidity.
func ValidHumidity(v float64) bool {
	return inRange(v, MinHumidity, MaxHumidity)
}

func inRange(v, lo, hi float64) bool {
	if math.IsNaN(v) {
		return false
	}
	return v >= lo && v <= hi
}
