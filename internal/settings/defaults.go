package settings

// Defaults returns the record created on first install. Dark mode itself
// ships disabled (the enabled flag lives beside the record in the store);
// these are the values styling starts from once the user opts in.
func Defaults() *Settings {
	return &Settings{
		BackgroundColor: "#0a0a0b",
		SurfaceColor:    "#1a1a1b",
		TextColor:       "#e8e6e3",
		AccentColor:     "#4ade80",

		TextShadow:             false,
		HighContrast:           false,
		FocusOutline:           true,
		ReducedMotion:          false,
		ResourceMonitorEnabled: false,
		DebugMode:              false,

		FontSize:   FontSizeDefault,
		LineHeight: LineHeightDefault,

		ColorBlindMode: ColorBlindNone,

		Blacklist:        []string{},
		PerSiteOverrides: NewSiteOverrides(),

		Schedule: Schedule{
			Enabled: false,
			Start:   "20:00",
			End:     "06:00",
		},
	}
}
