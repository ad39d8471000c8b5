package semantics

// ColorFamily describes an expected band of colors in HSL space. Hue ranges
// may wrap past 360 (HueMin > HueMax), e.g. reds spanning 340-60.
type ColorFamily struct {
	Name     string
	HueMin   float64
	HueMax   float64
	SatMin   float64
	SatMax   float64
	LightMin float64
	LightMax float64
}

// ContainsHue reports whether h (degrees) falls inside the family's hue
// band, honoring wraparound.
func (f ColorFamily) ContainsHue(h float64) bool {
	if f.HueMin <= f.HueMax {
		return h >= f.HueMin && h <= f.HueMax
	}
	return h >= f.HueMin || h <= f.HueMax
}

// Context is one entry of the static semantic table: prompt keywords mapped
// to expected color families, animation vocabulary, and mood descriptors.
type Context struct {
	Name                    string
	Keywords                []string
	ColorFamilies           []ColorFamily
	AppropriateAnimations   []string
	InappropriateAnimations []string
	Moods                   []string
}

// contexts is the fixed table, in declaration order. Resolution ties break
// to the earliest entry, so more specific contexts come first.
var contexts = []Context{
	{
		Name:     "ocean",
		Keywords: []string{"ocean", "sea", "wave", "waves", "beach", "underwater", "marine", "coral", "tide", "aquatic"},
		ColorFamilies: []ColorFamily{
			{Name: "deep blue", HueMin: 190, HueMax: 250, SatMin: 40, SatMax: 100, LightMin: 20, LightMax: 65},
			{Name: "aqua", HueMin: 160, HueMax: 200, SatMin: 30, SatMax: 100, LightMin: 35, LightMax: 80},
			{Name: "sea foam", HueMin: 140, HueMax: 180, SatMin: 15, SatMax: 60, LightMin: 60, LightMax: 95},
		},
		AppropriateAnimations:   []string{"wave", "flowing", "flow", "ripple", "float", "drift", "swim", "bubble"},
		InappropriateAnimations: []string{"flicker", "flame", "burn", "strobe", "explosion", "bounce"},
		Moods:                   []string{"calm", "fluid", "serene"},
	},
	{
		Name:     "winter",
		Keywords: []string{"winter", "snow", "ice", "frost", "arctic", "frozen", "glacier", "blizzard", "snowflake"},
		ColorFamilies: []ColorFamily{
			{Name: "ice blue", HueMin: 180, HueMax: 240, SatMin: 10, SatMax: 60, LightMin: 55, LightMax: 95},
			{Name: "snow white", HueMin: 180, HueMax: 250, SatMin: 0, SatMax: 20, LightMin: 85, LightMax: 100},
			{Name: "cold slate", HueMin: 200, HueMax: 260, SatMin: 10, SatMax: 40, LightMin: 30, LightMax: 60},
		},
		AppropriateAnimations:   []string{"fall", "falling", "drift", "sparkle", "crystallize", "float", "shimmer"},
		InappropriateAnimations: []string{"flicker", "intensity", "flame", "burn", "heat", "blaze"},
		Moods:                   []string{"crisp", "quiet", "still"},
	},
	{
		Name:     "forest",
		Keywords: []string{"forest", "tree", "trees", "woods", "woodland", "jungle", "leaf", "leaves", "moss", "nature"},
		ColorFamilies: []ColorFamily{
			{Name: "canopy green", HueMin: 90, HueMax: 160, SatMin: 25, SatMax: 100, LightMin: 15, LightMax: 60},
			{Name: "sage", HueMin: 70, HueMax: 140, SatMin: 10, SatMax: 45, LightMin: 50, LightMax: 85},
			{Name: "bark brown", HueMin: 20, HueMax: 45, SatMin: 20, SatMax: 70, LightMin: 15, LightMax: 50},
		},
		AppropriateAnimations:   []string{"sway", "rustle", "grow", "drift", "float", "fall"},
		InappropriateAnimations: []string{"flicker", "strobe", "flash", "explosion"},
		Moods:                   []string{"grounded", "fresh", "organic"},
	},
	{
		Name:     "fire",
		Keywords: []string{"fire", "flame", "flames", "ember", "lava", "volcano", "burning", "campfire", "inferno"},
		ColorFamilies: []ColorFamily{
			{Name: "flame red", HueMin: 340, HueMax: 20, SatMin: 55, SatMax: 100, LightMin: 30, LightMax: 65},
			{Name: "ember orange", HueMin: 15, HueMax: 45, SatMin: 60, SatMax: 100, LightMin: 35, LightMax: 70},
			{Name: "coal", HueMin: 0, HueMax: 40, SatMin: 10, SatMax: 50, LightMin: 5, LightMax: 30},
		},
		AppropriateAnimations:   []string{"flicker", "intensity", "blaze", "glow", "pulse", "rise"},
		InappropriateAnimations: []string{"freeze", "frost", "snowfall", "drip", "splash"},
		Moods:                   []string{"warm", "energetic", "intense"},
	},
	{
		Name:     "sunset",
		Keywords: []string{"sunset", "sunrise", "dusk", "dawn", "twilight", "golden hour", "horizon"},
		ColorFamilies: []ColorFamily{
			{Name: "golden", HueMin: 25, HueMax: 55, SatMin: 50, SatMax: 100, LightMin: 45, LightMax: 75},
			{Name: "rose", HueMin: 330, HueMax: 15, SatMin: 40, SatMax: 90, LightMin: 45, LightMax: 80},
			{Name: "dusk purple", HueMin: 260, HueMax: 310, SatMin: 25, SatMax: 70, LightMin: 25, LightMax: 60},
		},
		AppropriateAnimations:   []string{"glow", "fade", "shimmer", "drift", "gradient"},
		InappropriateAnimations: []string{"strobe", "flash", "bounce"},
		Moods:                   []string{"mellow", "warm", "winding-down"},
	},
	{
		Name:     "space",
		Keywords: []string{"space", "galaxy", "cosmos", "cosmic", "stars", "starry", "nebula", "universe", "astronaut"},
		ColorFamilies: []ColorFamily{
			{Name: "void", HueMin: 220, HueMax: 280, SatMin: 20, SatMax: 80, LightMin: 5, LightMax: 35},
			{Name: "nebula violet", HueMin: 260, HueMax: 320, SatMin: 30, SatMax: 90, LightMin: 25, LightMax: 65},
			{Name: "starlight", HueMin: 200, HueMax: 280, SatMin: 0, SatMax: 25, LightMin: 75, LightMax: 100},
		},
		AppropriateAnimations:   []string{"twinkle", "orbit", "drift", "pulse", "float"},
		InappropriateAnimations: []string{"bounce", "splash", "rustle"},
		Moods:                   []string{"vast", "mysterious", "focused"},
	},
	{
		Name:     "blossom",
		Keywords: []string{"spring", "blossom", "sakura", "cherry", "flower", "flowers", "bloom", "petal", "garden"},
		ColorFamilies: []ColorFamily{
			{Name: "petal pink", HueMin: 320, HueMax: 355, SatMin: 25, SatMax: 85, LightMin: 55, LightMax: 90},
			{Name: "blush", HueMin: 340, HueMax: 20, SatMin: 15, SatMax: 55, LightMin: 70, LightMax: 95},
			{Name: "spring green", HueMin: 85, HueMax: 140, SatMin: 20, SatMax: 70, LightMin: 45, LightMax: 80},
		},
		AppropriateAnimations:   []string{"fall", "falling", "drift", "bloom", "sway", "float"},
		InappropriateAnimations: []string{"flicker", "strobe", "blaze"},
		Moods:                   []string{"gentle", "light", "renewing"},
	},
	{
		Name:     "night",
		Keywords: []string{"night", "midnight", "moonlight", "moon", "nocturnal", "dark mode"},
		ColorFamilies: []ColorFamily{
			{Name: "midnight blue", HueMin: 210, HueMax: 250, SatMin: 25, SatMax: 80, LightMin: 5, LightMax: 30},
			{Name: "moon silver", HueMin: 200, HueMax: 260, SatMin: 0, SatMax: 20, LightMin: 60, LightMax: 90},
			{Name: "deep indigo", HueMin: 240, HueMax: 280, SatMin: 30, SatMax: 75, LightMin: 15, LightMax: 45},
		},
		AppropriateAnimations:   []string{"twinkle", "fade", "glow", "drift"},
		InappropriateAnimations: []string{"flash", "strobe", "bounce"},
		Moods:                   []string{"quiet", "dim", "restful"},
	},
}

// Contexts returns the full declared table, for tests and documentation.
func Contexts() []Context {
	return contexts
}
