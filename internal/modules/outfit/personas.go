package outfit

var substitutions = map[Persona]map[string]string{
	PersonaOutdoorsy: {
		"comfortable shoes": "trail shoes",
		"closed-toe shoes":  "hiking boots",
		"jeans":             "hiking pants",
		"chinos":            "convertible hiking pants",
		"light jacket":      "fleece jacket",
		"insulated coat":    "insulated parka",
	},
	PersonaStreet: {
		"comfortable shoes": "clean sneakers",
		"light jacket":      "bomber jacket",
		"chinos":            "cargo pants",
		"midweight jacket":  "denim jacket",
	},
	PersonaBusiness: {
		"comfortable shoes":  "leather loafers",
		"chinos":             "tailored trousers",
		"jeans":              "dress trousers",
		"light jacket":       "blazer",
		"breathable t-shirt": "linen button-down",
		"long-sleeve shirt":  "oxford shirt",
		"midweight jacket":   "wool overcoat",
	},
	PersonaMinimal: {
		"long-sleeve shirt":  "plain long-sleeve tee",
		"breathable t-shirt": "plain tee",
		"comfortable shoes":  "white sneakers",
	},
}

// applyPersona swaps items in place. A swap that collides with an existing
// item is left as a duplicate.
func applyPersona(items []string, persona Persona) {
	table, ok := substitutions[persona]
	if !ok {
		return
	}
	for i, item := range items {
		if swap, ok := table[item]; ok {
			items[i] = swap
		}
	}
}
