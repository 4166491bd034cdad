// Package domain models the signals and results of a Flood Vulnerability Index
// (FVI) assessment.
//
// # Signal Groups
//
// An assessment gathers five groups of raw signals for a point:
//
//	weather        24h and weekly precipitation, soil moisture, humidity,
//	               temperature, precipitation probability (Open-Meteo)
//	terrain        elevation (Open-Elevation) and a slope derived from
//	               four neighbouring elevation samples
//	hydrology      planar distance to the nearest mapped water feature
//	               (OpenStreetMap via Overpass) and a drainage-density proxy
//	socioeconomic  population density, urbanization, development pressure
//	               and the imperviousness estimate derived from them
//
// Every upstream signal has a documented static fallback (see the Default*
// values) so a single upstream failure degrades fidelity instead of aborting
// the assessment.
//
// # Input Vector
//
// Six of those signals feed the fuzzy model. Each is clamped to its universe
// before use:
//
//	rainfall        mm / 24h   [0, 200]
//	slope           degrees    [0, 45]
//	imperviousness  percent    [0, 100]
//	distance_water  meters     [0, 10000]
//	soil_moisture   fraction   [0, 1]
//	elevation       meters     [0, 3000]
//
// # Risk Levels
//
// Scores map to five ordered labels with inclusive upper bounds:
//
//	<=25 Very Low | <=45 Low | <=65 Moderate | <=85 High | else Very High
package domain
