package models

// DropoffReport signals a possible loss of reliable connectivity/motion
// correlation. Built immediately before dispatch, never mutated after.
type DropoffReport struct {
	NetworkConnectivityState    int       `json:"network_connectivity_state"`
	AccVsLoc                    int       `json:"acc_vs_loc"`
	TimeSinceLastSuccessfulPing int       `json:"time_since_last_successful_ping"`
	GPSAccuracy                 []float64 `json:"gps_accuracy"`
	AreaRisk                    RiskLevel `json:"area_risk"`
}

// InactivityReport signals prolonged lack of user interaction or movement.
type InactivityReport struct {
	Hour                        int       `json:"hour"`
	MotionState                 int       `json:"motion_state"`
	DisplacementM               int       `json:"displacement_m"`
	TimeSinceLastInteractionMin int       `json:"time_since_last_interaction_min"`
	MissedPingCount             int       `json:"missed_ping_count"`
	AreaRisk                    RiskLevel `json:"area_risk"`
	BatteryLevelPercent         int       `json:"battery_level_percent"`
	IsExpectedActive            int       `json:"is_expected_active"`
}
