// Package forecast produces short-horizon hourly load forecasts from
// historical telemetry. The estimator is a transparent rule-based model:
// hour-of-day averages with weekend and temperature adjustments, and a
// variance-based confidence per hour.
package forecast
