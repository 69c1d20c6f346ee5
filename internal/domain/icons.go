package domain

import "strings"

// Icon keys accepted for services. Unknown keys fall back to IconDefault.
const IconDefault = "wrench"

var icons = map[string]string{
	"wrench":  "🔧",
	"oil":     "🛢️",
	"battery": "🔋",
	"tire":    "🛞",
	"wash":    "🫧",
	"brake":   "🛑",
	"ac":      "❄️",
	"engine":  "⚙️",
	"paint":   "🎨",
}

// IconGlyph resolves an icon key to its glyph, defaulting for unknown keys.
func IconGlyph(key string) string {
	if g, ok := icons[key]; ok {
		return g
	}
	return icons[IconDefault]
}

// IconKeys lists the valid keys for admin forms, default first.
func IconKeys() []string {
	return []string{"wrench", "oil", "battery", "tire", "wash", "brake", "ac", "engine", "paint"}
}

// NormalizeIcon lowercases key and returns it if known, else the default key.
func NormalizeIcon(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, ok := icons[key]; ok {
		return key
	}
	return IconDefault
}
