package models

// Farm is a monitored site with configured acceptable sensor ranges. Edits
// replace every field wholesale; the ranges are used for presentation and
// alerting only, never as an ingest gate.
type Farm struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`

	TemperatureMin float64 `json:"temperature_min"`
	TemperatureMax float64 `json:"temperature_max"`
	PhMin          float64 `json:"ph_min"`
	PhMax          float64 `json:"ph_max"`
	DoMin          float64 `json:"do_min"`
	DoMax          float64 `json:"do_max"`
	TurbidityMin   float64 `json:"turbidity_min"`
	TurbidityMax   float64 `json:"turbidity_max"`
}
