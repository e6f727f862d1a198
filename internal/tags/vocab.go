package tags

import "regexp"

// ============================================================================
// Curated tag vocabulary (booru-style, category-0 scenery tags)
// ============================================================================

// LocationTags are place and structure tags.
var LocationTags = []string{
	"indoors", "outdoors", "bedroom", "bathroom", "kitchen", "living_room",
	"classroom", "hallway", "rooftop", "balcony", "office", "library",
	"hospital", "church", "temple", "shrine", "castle", "dungeon",
	"cave", "ruins", "alley", "street", "city", "town",
	"village", "park", "garden", "forest", "jungle", "mountain",
	"hill", "cliff", "beach", "ocean", "lake", "river",
	"waterfall", "pool", "desert", "field", "meadow", "farm",
	"bridge", "train", "bus", "car_interior", "space", "underwater",
	"cafe", "restaurant", "bar_(place)", "shop", "market", "stadium",
	"arena", "stage", "gym", "dojo", "laboratory", "prison",
	"throne_room", "tent", "campfire", "locker_room", "greenhouse",
	"garage", "warehouse", "factory", "studio", "theater", "museum",
	"hotel_room", "elevator", "infirmary", "cockpit", "sauna", "onsen",
	"highway", "parking_lot", "pier", "dock", "harbor", "airport",
	"train_station", "bus_stop", "graveyard", "amusement_park", "zoo",
	"aquarium", "lighthouse", "canal", "volcano", "canyon", "valley",
	"island", "shore", "riverbank", "fountain", "overpass", "tunnel",
	"construction_site", "wheat_field", "playground", "crosswalk",
	"sidewalk", "road", "path", "flower_field", "bamboo_forest",
	"cherry_blossoms", "pagoda", "cathedral", "tower", "skyscraper",
	"apartment", "building", "house", "hut", "cabin", "treehouse",
	"gazebo", "veranda", "porch", "conservatory", "courtyard", "plaza",
	"monastery", "corridor", "lobby", "basement", "attic",
}

// AtmosphereTags are weather, lighting, and atmospheric effect tags.
var AtmosphereTags = []string{
	"rain", "snowing", "fog", "storm", "wind", "blizzard", "thunder",
	"lightning", "overcast", "clear_sky", "dust", "sandstorm", "rainbow",
	"aurora", "cloudy_sky", "cloudy", "snowflakes", "tornado",
	"meteor", "shooting_star", "comet", "eclipse",
	"candlelight", "lantern", "neon_lights", "spotlight", "backlighting",
	"lens_flare", "dim_lighting", "light_rays", "light_particles",
	"shadow", "silhouette", "reflection", "glowing", "fire", "bonfire",
	"torch", "lamp", "chandelier", "light_bulb", "fireflies",
	"bioluminescence", "dappled_sunlight", "sunbeam", "sun_glare",
	"hanging_light", "stage_lights", "depth_of_field", "dark_clouds",
	"petals", "falling_petals", "falling_leaves", "autumn_leaves",
	"cherry_blossom_petals", "snow", "dark", "bright", "shade",
	"moonlight", "sunlight", "heavy_rain", "drizzle", "mist", "haze",
}

// TimeTags are time-of-day and sky-state tags.
var TimeTags = []string{
	"sunset", "sunrise", "night", "day", "evening", "morning",
	"twilight", "dusk", "dawn", "midnight", "noon", "afternoon",
	"starry_sky", "night_sky", "blue_sky", "orange_sky", "red_sky",
	"purple_sky", "pink_sky", "gradient_sky",
	"crescent_moon", "full_moon", "half_moon", "sun", "moon",
	"constellation", "golden_hour",
}

// SceneryTags are general composition, nature, and furniture tags that are
// valid scene content but belong to no persistence category.
var SceneryTags = []string{
	"scenery", "landscape", "cityscape", "horizon", "nature", "wilderness",
	"sky", "cloud", "stars", "hot_spring", "sea", "snow_on_ground",
	"tree", "trees", "bush", "grass", "moss", "ivy",
	"flower", "flowers", "rose", "sunflower", "lily", "lotus",
	"mushroom", "coral", "seaweed", "rock", "boulder", "sand",
	"dirt", "mud", "ice", "icicle", "glacier", "iceberg",
	"lava", "geyser", "pond", "stream", "creek", "tide_pool",
	"wave", "waves", "splash", "ripple", "stalactite", "stalagmite",
	"fireplace", "bookshelf", "counter", "sink", "bathtub", "shower",
	"mirror", "curtains", "rug", "carpet", "sofa", "armchair",
	"bench", "stool", "throne", "altar", "podium", "blackboard",
	"chalkboard", "television", "computer", "monitor", "piano", "organ",
	"statue", "pillar", "column", "arch", "gate", "fence",
	"wall", "ceiling", "floor", "tile_floor", "wooden_floor", "tatami",
	"futon", "clock", "vase", "painting_(object)", "picture_frame",
	"shelf", "drawer", "cabinet", "wardrobe", "chest", "barrel",
	"crate", "box", "basket", "bed", "couch", "chair",
	"desk", "table", "window", "door", "stairs", "staircase",
	"streetlight", "street_lamp",
}

// TagAliases maps common model idiosyncrasies and synonyms to the one
// canonical spelling used in the vocabulary.
var TagAliases = map[string]string{
	"night_time":      "night",
	"nighttime":       "night",
	"daytime":         "day",
	"day_time":        "day",
	"sun_set":         "sunset",
	"sun_rise":        "sunrise",
	"raining":         "rain",
	"rainy":           "rain",
	"snowy":           "snowing",
	"snowfall":        "snowing",
	"foggy":           "fog",
	"misty":           "mist",
	"stormy":          "storm",
	"thunderstorm":    "storm",
	"windy":           "wind",
	"sunny":           "sunlight",
	"clear":           "clear_sky",
	"clear_weather":   "clear_sky",
	"starry":          "starry_sky",
	"star_sky":        "starry_sky",
	"blue_skies":      "blue_sky",
	"woods":           "forest",
	"woodland":        "forest",
	"seaside":         "beach",
	"seashore":        "shore",
	"oceanside":       "beach",
	"riverside":       "riverbank",
	"lakeside":        "lake",
	"mountains":       "mountain",
	"hills":           "hill",
	"cliffside":       "cliff",
	"bar":             "bar_(place)",
	"pub":             "bar_(place)",
	"tavern":          "bar_(place)",
	"coffee_shop":     "cafe",
	"coffeehouse":     "cafe",
	"school_room":     "classroom",
	"inside":          "indoors",
	"interior":        "indoors",
	"outside":         "outdoors",
	"exterior":        "outdoors",
	"exterior_scene":  "outdoors",
	"living_quarters": "bedroom",
	"cemetery":        "graveyard",
	"painting":        "painting_(object)",
	"sakura":          "cherry_blossoms",
	"cherry_blossom":  "cherry_blossoms",
	"street_light":    "streetlight",
	"lamppost":        "street_lamp",
	"lamp_post":       "street_lamp",
	"curtain":         "curtains",
	"stair":           "stairs",
	"stairway":        "staircase",
	"book_shelf":      "bookshelf",
	"moonlit":         "moonlight",
	"moon_light":      "moonlight",
	"sun_light":       "sunlight",
	"golden_hour_light": "golden_hour",
	"back_lighting":   "backlighting",
	"backlight":       "backlighting",
	"god_rays":        "light_rays",
	"crepuscular_rays": "light_rays",
	"hotspring":       "hot_spring",
	"hot_springs":     "hot_spring",
}

// blacklistPatterns reject tokens that either leak character appearance
// into a scenery-only prompt or duplicate the fixed quality block.
var blacklistPatterns = []*regexp.Regexp{
	// Body and appearance descriptors.
	regexp.MustCompile(`_(hair|eyes|skin|breasts|body|face|mouth|lips|chest)$`),
	regexp.MustCompile(`^(hair|eye|skin)_`),
	regexp.MustCompile(`^\d*(girl|boy|girls|boys|people|person|man|woman|men|women)s?$`),
	regexp.MustCompile(`^(solo|portrait|selfie|cosplay|pov)$`),
	regexp.MustCompile(`(uniform|dress|skirt|shirt|clothes|clothing|outfit|costume)$`),
	// Abstract emotional or conceptual words the model likes to emit.
	regexp.MustCompile(`^(happy|sad|angry|lonely|peaceful|melancholy|melancholic|nostalgic|nostalgia|romantic|romance|tension|dramatic|mysterious|mystery|cozy|comfy|serene|serenity|tranquil|tranquility|calm|moody|mood|atmosphere|atmospheric|ambiance|ambience|emotion|emotional|feeling|vibes?)$`),
	// Meta quality markers, already covered by the quality suffix.
	regexp.MustCompile(`^(masterpiece|best_quality|high_quality|highres|absurdres|ultra_detailed|highly_detailed|detailed|4k|8k|hd|uhd|realistic|photorealistic)$`),
}

// validTags is the closed vocabulary: the union of every curated list.
var validTags = buildValidTags()

func buildValidTags() map[string]struct{} {
	set := make(map[string]struct{}, 512)
	for _, group := range [][]string{LocationTags, AtmosphereTags, TimeTags, SceneryTags} {
		for _, t := range group {
			set[t] = struct{}{}
		}
	}
	return set
}

// IsValidTag reports whether the tag belongs to the closed vocabulary.
func IsValidTag(tag string) bool {
	_, ok := validTags[tag]
	return ok
}

// ResolveAlias rewrites a tag through the alias table. Unknown tags come
// back unchanged.
func ResolveAlias(tag string) string {
	if canonical, ok := TagAliases[tag]; ok {
		return canonical
	}
	return tag
}

// IsBlacklisted reports whether the tag matches any disallowed pattern.
func IsBlacklisted(tag string) bool {
	for _, re := range blacklistPatterns {
		if re.MatchString(tag) {
			return true
		}
	}
	return false
}

// Category identifies which persistence bucket a canonical tag falls in.
type Category int

const (
	CategoryNone Category = iota
	CategoryLocation
	CategoryTime
	CategoryAtmosphere
)

var tagCategories = buildTagCategories()

func buildTagCategories() map[string]Category {
	m := make(map[string]Category, 256)
	for _, t := range LocationTags {
		m[t] = CategoryLocation
	}
	for _, t := range TimeTags {
		m[t] = CategoryTime
	}
	for _, t := range AtmosphereTags {
		m[t] = CategoryAtmosphere
	}
	return m
}

// CategoryOf returns the persistence category for a canonical tag, or
// CategoryNone for general scenery tags.
func CategoryOf(tag string) Category {
	return tagCategories[tag]
}
