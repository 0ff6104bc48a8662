package reactions

// Types is the fixed set of reaction types a vent accepts.
var Types = []string{"like", "hug", "support"}

// ValidType reports whether t is a known reaction type.
func ValidType(t string) bool {
	for _, known := range Types {
		if known == t {
			return true
		}
	}
	return false
}
