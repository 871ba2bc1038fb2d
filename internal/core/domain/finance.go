package domain

// AnnouncementDate is a financial results announcement date extracted
// from an ingested document. Date is an ISO-8601 calendar date.
type AnnouncementDate struct {
	Date   string
	Source string
}

// VehicleSales records the number of vehicles sold in one calendar year.
type VehicleSales struct {
	Year         int
	VehiclesSold int
}
