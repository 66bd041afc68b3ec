package domain

import "time"

type SensorType string

const (
	HydroponicManager SensorType = "hidroponic-manager"
	WaterLevelMeter   SensorType = "water-level-meter"
)

func (t SensorType) IsValid() bool {
	return t == HydroponicManager || t == WaterLevelMeter
}

// SensorResponse is a sensor as the upstream service sends it, with
// timestamps still in their string form.
type SensorResponse struct {
	ID             int        `json:"id"`
	FuseID         string     `json:"fuse_id"`
	Name           string     `json:"name"`
	Type           SensorType `json:"type"`
	Location       string     `json:"location"`
	WifiStrength   int        `json:"wifi_strength"`
	BatteryPercent int        `json:"battery_percent"`
	Description    string     `json:"description"`
	CreatedAt      string     `json:"created_at"`
	LastSeen       string     `json:"last_seen"`
}

type Sensor struct {
	ID             int        `json:"id"`
	FuseID         string     `json:"fuse_id"`
	Name           string     `json:"name"`
	Type           SensorType `json:"type"`
	Location       string     `json:"location"`
	WifiStrength   int        `json:"wifi_strength"`
	BatteryPercent int        `json:"battery_percent"`
	Description    string     `json:"description"`
	CreatedAt      time.Time  `json:"created_at"`
	LastSeen       time.Time  `json:"last_seen"`
}

type SeverityLevel int

const (
	SeverityNormal SeverityLevel = iota
	SeverityWarning
	SeverityCritical
)

type HydroponicManagerReading struct {
	PayloadVersion       int           `json:"payload_version"`
	Temperature          float64       `json:"temperature"`
	TemperatureSeverity  SeverityLevel `json:"temperature_severity"`
	Moisture             float64       `json:"moisture"`
	MoistureSeverity     SeverityLevel `json:"moisture_severity"`
	Ph                   float64       `json:"ph"`
	PhSeverity           SeverityLevel `json:"ph_severity"`
	Conductivity         float64       `json:"conductivity"`
	ConductivitySeverity SeverityLevel `json:"conductivity_severity"`
	Nitrogen             float64       `json:"nitrogen"`
	NitrogenSeverity     SeverityLevel `json:"nitrogen_severity"`
	Phosphorus           float64       `json:"phosphorus"`
	PhosphorusSeverity   SeverityLevel `json:"phosphorus_severity"`
	Potassium            float64       `json:"potassium"`
	PotassiumSeverity    SeverityLevel `json:"potassium_severity"`
	IsOn                 bool          `json:"isOn"`
	NextToggleInSeconds  int           `json:"next_toggle_in_seconds"`
}

type WaterLevelMeterReading struct {
	AverageWaterLevelCm float64 `json:"average_water_level_cm"`
}

// Reading is the set of reading shapes the upstream service can return for
// a sensor. The shapes share no fields.
type Reading interface {
	HydroponicManagerReading | WaterLevelMeterReading
}

const SensorDataNotFoundMessage string = "Sensor data not found"

type SensorDataNotFound struct {
	Error string `json:"error"`
}
