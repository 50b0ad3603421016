package entities

// VehicleRevenue is revenue attributed to one vehicle inside the report
// window.
type VehicleRevenue struct {
	VehicleID   string `json:"vehicle_id"`
	VehicleName string `json:"vehicle_name"`
	Revenue     int    `json:"revenue"`
	Bookings    int    `json:"bookings"`
}

// VehicleUtilization is the share of the report window a vehicle was booked,
// clamped to [0, 100].
type VehicleUtilization struct {
	VehicleID   string  `json:"vehicle_id"`
	VehicleName string  `json:"vehicle_name"`
	Percentage  float64 `json:"percentage"`
}

type StatsResponse struct {
	TotalBookings      int                  `json:"total_bookings"`
	ActiveBookings     int                  `json:"active_bookings"`
	TotalRevenue       int                  `json:"total_revenue"`
	WindowRevenue      int                  `json:"window_revenue"`
	AverageDuration    float64              `json:"average_duration_hours"`
	AverageLeadTime    float64              `json:"average_lead_time_days"`
	CancellationRate   float64              `json:"cancellation_rate"`
	RevenuePerVehicle  []VehicleRevenue     `json:"revenue_per_vehicle"`
	VehicleUtilization []VehicleUtilization `json:"vehicle_utilization"`
}
