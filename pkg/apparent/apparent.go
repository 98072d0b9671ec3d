// Package apparent provides apparent-temperature calculations (heat index,
// wind chill, feels-like) following the National Weather Service formulas.
package apparent

import "math"

// Validity domains. Heat index applies to hot, humid conditions; wind chill
// to cold, windy conditions. The domains are disjoint.
const (
	heatIndexMinTempC = 26.7 // 80°F
	heatIndexMinRH    = 40.0
	windChillMaxTempC = 10.0 // 50°F
	windChillMinWind  = 1.34 // 3 mph
)

// HeatIndex calculates the NWS heat index (Rothfusz regression) for the given
// air temperature (°C) and relative humidity (%). The second return value is
// false when the formula does not apply (temperature < 26.7°C, humidity
// < 40%, or humidity outside [0,100]).
func HeatIndex(tempC, rh float64) (float64, bool) {
	if rh < 0 || rh > 100 {
		return 0, false
	}
	if tempC < heatIndexMinTempC || rh < heatIndexMinRH {
		return 0, false
	}

	tempF := celsiusToFahrenheit(tempC)

	// Steadman's simple formula first; the full regression only applies when
	// the approximation reaches 80°F.
	hiF := 0.5 * (tempF + 61.0 + ((tempF - 68.0) * 1.2) + (rh * 0.094))

	if hiF >= 80 {
		hiF = -42.379 +
			2.04901523*tempF +
			10.14333127*rh -
			0.22475541*tempF*rh -
			0.00683783*tempF*tempF -
			0.05481717*rh*rh +
			0.00122874*tempF*tempF*rh +
			0.00085282*tempF*rh*rh -
			0.00000199*tempF*tempF*rh*rh

		if rh < 13 && tempF >= 80 && tempF <= 112 {
			// Dry-air adjustment
			hiF -= ((13 - rh) / 4) * math.Sqrt((17-math.Abs(tempF-95))/17)
		} else if rh > 85 && tempF >= 80 && tempF <= 87 {
			// Humid adjustment
			hiF += ((rh - 85) / 10) * ((87 - tempF) / 5)
		}
	}

	return fahrenheitToCelsius(hiF), true
}

// WindChill calculates the NWS 2001 wind chill for the given air temperature
// (°C) and wind speed (m/s). The second return value is false when the
// formula does not apply (temperature > 10°C, wind < 1.34 m/s, or negative
// wind speed).
func WindChill(tempC, windMS float64) (float64, bool) {
	if windMS < 0 {
		return 0, false
	}
	if tempC > windChillMaxTempC || windMS < windChillMinWind {
		return 0, false
	}

	tempF := celsiusToFahrenheit(tempC)
	windMPH := msToMPH(windMS)

	wcF := 35.74 +
		0.6215*tempF -
		35.75*math.Pow(windMPH, 0.16) +
		0.4275*tempF*math.Pow(windMPH, 0.16)

	return fahrenheitToCelsius(wcF), true
}

// FeelsLike returns the apparent temperature: heat index when it applies,
// wind chill when it applies, otherwise the air temperature itself. The two
// domains cannot overlap, so the preference for heat index never triggers.
func FeelsLike(tempC, rh, windMS float64) float64 {
	if hi, ok := HeatIndex(tempC, rh); ok {
		return hi
	}
	if wc, ok := WindChill(tempC, windMS); ok {
		return wc
	}
	return tempC
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

func fahrenheitToCelsius(f float64) float64 {
	return (f - 32.0) * 5.0 / 9.0
}

func msToMPH(ms float64) float64 {
	return ms * 2.23694
}
