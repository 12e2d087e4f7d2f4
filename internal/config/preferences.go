package config

// Preferences are the player's saved settings. They live outside the time
// loop: rewinding never changes them.
type Preferences struct {
	MasterVolume       float64 `json:"master_volume"`
	MusicVolume        float64 `json:"music_volume"`
	SFXVolume          float64 `json:"sfx_volume"`
	CameraSensitivityX float64 `json:"camera_sensitivity_x"`
	CameraSensitivityY float64 `json:"camera_sensitivity_y"`
	DidTimeStopEnding  bool    `json:"did_time_stop_ending"`
}

// DefaultPreferences returns first-run settings.
func DefaultPreferences() Preferences {
	return Preferences{
		MasterVolume:       1,
		MusicVolume:        1,
		SFXVolume:          1,
		CameraSensitivityX: 2,
		CameraSensitivityY: 2,
	}
}
