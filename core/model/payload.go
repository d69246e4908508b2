package model

import "time"

// VehicleTypeShare is one entry of the vehicle type distribution.
type VehicleTypeShare struct {
	CarType    string  `json:"car_type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Completeness buckets vehicles by how much data backs their score.
type Completeness struct {
	Plenty    int     `json:"plenty"`
	Normal    int     `json:"normal"`
	Empty     int     `json:"empty"`
	PlentyPct float64 `json:"plenty_pct"`
	NormalPct float64 `json:"normal_pct"`
	EmptyPct  float64 `json:"empty_pct"`
}

// DatasetStats describes the raw telemetry backing the fleet snapshot.
type DatasetStats struct {
	TotalLines     int64     `json:"total_lines"`
	UniqueVehicles int       `json:"unique_vehicles"`
	FieldCount     int       `json:"field_count"`
	CSVCount       int       `json:"csv_count"`
	TotalSizeGB    float64   `json:"total_size_gb"`
	LastUpdate     time.Time `json:"last_update"`
}

// GradeSummary is the per-grade vehicle count.
type GradeSummary struct {
	Total     int `json:"total"`
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Normal    int `json:"normal"`
	Bad       int `json:"bad"`
}

// PerformanceStats carries the server side fleet aggregates.
type PerformanceStats struct {
	TotalMileage     float64 `json:"total_mileage"`
	AvgEfficiency    float64 `json:"avg_efficiency"`
	AvgBatteryHealth float64 `json:"avg_battery_health"`
}

// Performance is the vehicle_performance block of the stats payload.
type Performance struct {
	Vehicles []Vehicle        `json:"vehicles"`
	Summary  GradeSummary     `json:"summary"`
	Stats    PerformanceStats `json:"stats"`
}

// Stats is the payload of the fleet statistics endpoint.
type Stats struct {
	VehicleTypes []VehicleTypeShare `json:"vehicle_types"`
	Completeness Completeness       `json:"completeness"`
	BatteryScore *ScoreBreakdown    `json:"battery_score"`
	Dataset      DatasetStats       `json:"influxdb"`
	Performance  Performance        `json:"vehicle_performance"`
}

// Normalize fills empty lists and repairs nested payloads.
func (s Stats) Normalize() Stats {
	if s.VehicleTypes == nil {
		s.VehicleTypes = []VehicleTypeShare{}
	}
	s.Performance.Vehicles = NormalizeVehicles(s.Performance.Vehicles)
	if s.BatteryScore != nil {
		b := s.BatteryScore.Normalize()
		s.BatteryScore = &b
	}
	return s
}

// StatsQuery scopes the battery score block of the stats endpoint. Empty
// fields mean no restriction.
type StatsQuery struct {
	CarType string
	Grade   string
}

// IsZero reports whether the query carries no restriction.
func (q StatsQuery) IsZero() bool { return q.CarType == "" && q.Grade == "" }
