package extract

import (
	"regexp"
	"strings"
)

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Anillos", []string{"anillo", "ring"}},
	{"Collares", []string{"collar", "necklace"}},
	{"Aretes", []string{"arete", "pendiente", "earring"}},
	{"Pulseras", []string{"pulsera", "brazalete", "bracelet"}},
	{"Cadenas", []string{"cadena", "chain"}},
	{"Relojes", []string{"reloj", "watch"}},
	{"Dijes", []string{"dije", "charm"}},
	{"Piercings", []string{"piercing"}},
}

// InferCategory guesses the category from keywords in the product name.
func InferCategory(name string) string {
	lower := strings.ToLower(name)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category
			}
		}
	}
	return defaultCategory
}

var (
	karatPattern    = regexp.MustCompile(`(\d+)\s*k\b|(\d+)\s*quilates?`)
	finenessPattern = regexp.MustCompile(`\b(925|950|999)\b`)
)

// materials lists the materials named in a product name, in Spanish.
func materials(name string) []string {
	lower := strings.ToLower(name)
	var out []string

	if strings.Contains(lower, "oro") || strings.Contains(lower, "gold") {
		out = append(out, "oro")
		if m := karatPattern.FindStringSubmatch(lower); m != nil {
			k := m[1]
			if k == "" {
				k = m[2]
			}
			out = append(out, k+" quilates")
		}
	}
	if strings.Contains(lower, "plata") || strings.Contains(lower, "silver") {
		out = append(out, "plata")
		if m := finenessPattern.FindStringSubmatch(lower); m != nil {
			out = append(out, m[1]+" de ley")
		}
	}
	if strings.Contains(lower, "diamante") || strings.Contains(lower, "diamond") {
		out = append(out, "con diamantes")
	}
	if strings.Contains(lower, "piedra") || strings.Contains(lower, "gem") {
		out = append(out, "con piedras preciosas")
	}
	return out
}

type template struct {
	match   []string
	opening string
	joiner  string
	body    string
}

var templates = []template{
	{[]string{"anillo"}, "Hermoso anillo", " de ", "diseño elegante y sofisticado. Ideal para ocasiones especiales o uso diario. Talla estándar, puede ajustarse según necesidad."},
	{[]string{"collar"}, "Elegante collar", " de ", "perfecto para complementar cualquier atuendo. Largo ajustable, diseño versátil que se adapta a diferentes estilos. Presentación en estuche original."},
	{[]string{"arete", "pendiente"}, "Deslumbrantes aretes", " de ", "diseño llamativo y moderno. Cómodos para uso prolongado, cierre seguro. Ideales para destacar en cualquier ocasión."},
	{[]string{"pulsera"}, "Hermosa pulsera", " de ", "diseño único y exclusivo. Ajustable a diferentes tamaños de muñeca. Perfecta para combinar con otras piezas de joyería."},
	{[]string{"reloj"}, "Reloj", " de ", "diseño clásico y funcional. Resistente al agua, garantía incluida. Correa ajustable, mecanismo de precisión."},
}

var fallbackTemplate = template{
	opening: "Pieza de joyería",
	joiner:  " en ",
	body:    "diseño excepcional y calidad premium. Artesanía cuidadosa que garantiza durabilidad y elegancia. Ideal como regalo o adquisición personal.",
}

// Describe writes a catalog description from the materials in the name
// and the category.
func Describe(name, category string) string {
	lowerCategory := strings.ToLower(category)
	tpl := fallbackTemplate
	for _, t := range templates {
		if containsAny(lowerCategory, t.match) {
			tpl = t
			break
		}
	}

	var b strings.Builder
	b.WriteString(tpl.opening)
	if m := materials(name); len(m) > 0 {
		b.WriteString(tpl.joiner)
		b.WriteString(strings.Join(m, " y "))
	}
	b.WriteString(", ")
	b.WriteString(tpl.body)
	b.WriteString(" Mantiene su brillo y belleza con el cuidado adecuado.")
	return b.String()
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
