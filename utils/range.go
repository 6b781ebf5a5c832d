package utils

import "github.com/danssolutions/greenscale-server/models"

// OutOfRange reports which sensor dimensions of a reading fall outside the
// farm's configured acceptable ranges. Used for notifications only; readings
// outside the ranges are still persisted.
func OutOfRange(farm models.Farm, data models.TelemetryData) []string {
	var violations []string
	if data.TemperatureC < farm.TemperatureMin || data.TemperatureC > farm.TemperatureMax {
		violations = append(violations, "temperature_c")
	}
	if data.Ph < farm.PhMin || data.Ph > farm.PhMax {
		violations = append(violations, "ph")
	}
	if data.DoMgPerL < farm.DoMin || data.DoMgPerL > farm.DoMax {
		violations = append(violations, "do_mg_per_l")
	}
	if data.TurbidityIndex < farm.TurbidityMin || data.TurbidityIndex > farm.TurbidityMax {
		violations = append(violations, "turbidity_index")
	}
	return violations
}
