package model

// CutSettings holds the CNC parameters used when cutting a fitted
// rectangle out of its slab.
type CutSettings struct {
	ToolDiameter float64 `json:"tool_diameter" mapstructure:"tool_diameter"` // End mill diameter in mm
	FeedRate     float64 `json:"feed_rate" mapstructure:"feed_rate"`         // Cutting feed rate mm/min
	PlungeRate   float64 `json:"plunge_rate" mapstructure:"plunge_rate"`     // Plunge feed rate mm/min
	SpindleSpeed int     `json:"spindle_speed" mapstructure:"spindle_speed"` // RPM
	SafeZ        float64 `json:"safe_z" mapstructure:"safe_z"`               // Safe retract height mm
	CutDepth     float64 `json:"cut_depth" mapstructure:"cut_depth"`         // Total material thickness mm
	PassDepth    float64 `json:"pass_depth" mapstructure:"pass_depth"`       // Depth per pass mm
	GCodeProfile string  `json:"gcode_profile" mapstructure:"gcode_profile"` // Name of the GCode profile to use
}

func DefaultCutSettings() CutSettings {
	return CutSettings{
		ToolDiameter: 6.0,
		FeedRate:     1500.0,
		PlungeRate:   500.0,
		SpindleSpeed: 18000,
		SafeZ:        5.0,
		CutDepth:     18.0,
		PassDepth:    6.0,
		GCodeProfile: "Generic",
	}
}

// GCodeProfile defines a post-processor configuration for different CNC controllers.
type GCodeProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	StartCode    []string `json:"start_code"`    // Commands at start of file
	SpindleStart string   `json:"spindle_start"` // Spindle on command (e.g., "M3 S%d")
	SpindleStop  string   `json:"spindle_stop"`  // Spindle off command

	RapidMove string `json:"rapid_move"` // G0 or equivalent
	FeedMove  string `json:"feed_move"`  // G1 or equivalent

	EndCode []string `json:"end_code"` // Commands at end of file, [SafeZ] is substituted

	CommentPrefix string `json:"comment_prefix"`
	CommentSuffix string `json:"comment_suffix"` // e.g. ")" for parenthesised comments

	DecimalPlaces int `json:"decimal_places"`
}

// Built-in GCode profiles
var GCodeProfiles = []GCodeProfile{
	{
		Name:          "Grbl",
		Description:   "Standard Grbl configuration (Arduino CNC shields)",
		StartCode:     []string{"G90", "G21", "G17"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 CNC control software",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G28 X0 Y0", "M30"},
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		StartCode:     []string{"G90", "G21", "G17", "G94"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 4,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode",
		StartCode:     []string{"G90", "G21"},
		SpindleStart:  "M3 S%d",
		SpindleStop:   "M5",
		RapidMove:     "G0",
		FeedMove:      "G1",
		EndCode:       []string{"G0 Z[SafeZ]", "G0 X0 Y0", "M2"},
		CommentPrefix: ";",
		DecimalPlaces: 3,
	},
}

// GetProfile returns a GCode profile by name, or the Generic profile if not found.
func GetProfile(name string) GCodeProfile {
	for _, p := range GCodeProfiles {
		if p.Name == name {
			return p
		}
	}
	return GCodeProfiles[len(GCodeProfiles)-1]
}

// GetProfileNames returns a list of all available profile names.
func GetProfileNames() []string {
	var names []string
	for _, p := range GCodeProfiles {
		names = append(names, p.Name)
	}
	return names
}
