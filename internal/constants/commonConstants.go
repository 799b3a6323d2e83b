package constants

type CachePrefix string

const (
	CachePrefixSettings CachePrefix = "SETTINGS_"
	CachePrefixRender   CachePrefix = "RENDER_"
)

// Options table keys
const (
	OptionShortcodeImportMap = "shortcode_import_map"
)

// Shortcode tag served by this service
const ShortcodeTag = "formbridge"
