package store

import "autocare/internal/domain"

// fallbackCatalog is the built-in service list shown when the backend
// cannot be reached before any catalog has been loaded.
func fallbackCatalog() []domain.Service {
	return []domain.Service{
		{ID: "SV-OIL", Name: "Oil Change", Description: "Engine oil and filter replacement with a 20-point check.", Price: 49.99, Category: "Maintenance", Duration: "45 min", Active: true, Icon: "oil", Sync: domain.SyncLocal},
		{ID: "SV-WASH", Name: "Premium Wash", Description: "Exterior hand wash, interior vacuum and dashboard polish.", Price: 24.99, Category: "Cleaning", Duration: "30 min", Active: true, Icon: "wash", Sync: domain.SyncLocal},
		{ID: "SV-BRAKE", Name: "Brake Inspection", Description: "Pads, discs and fluid inspection with report.", Price: 39.99, Category: "Safety", Duration: "40 min", Active: true, Icon: "brake", Sync: domain.SyncLocal},
		{ID: "SV-BATT", Name: "Battery Service", Description: "Battery health test and terminal cleaning.", Price: 29.99, Category: "Electrical", Duration: "25 min", Active: true, Icon: "battery", Sync: domain.SyncLocal},
		{ID: "SV-TIRE", Name: "Tire Rotation", Description: "Rotation, balancing and pressure check for all four wheels.", Price: 34.99, Category: "Maintenance", Duration: "35 min", Featured: true, Active: true, Icon: "tire", Sync: domain.SyncLocal},
		{ID: "SV-AC", Name: "AC Recharge", Description: "Refrigerant top-up and cabin filter check.", Price: 79.99, Category: "Comfort", Discount: 10, Duration: "60 min", Featured: true, Active: true, Icon: "ac", Sync: domain.SyncLocal},
	}
}
