package stores

import (
	"context"

	"github.com/kosarica/insight-service/internal/chains"
)

// SeedSource serves the built-in Delhi NCR catalogue. It is used when no
// database or import file is configured.
type SeedSource struct{}

// LoadStores returns a fresh copy of the seed catalogue.
func (SeedSource) LoadStores(ctx context.Context) ([]Store, error) {
	return SeedStores(), nil
}

func home(id, name string, lat, lon float64, address, city, pincode string, sqft int) Store {
	return Store{
		StoreID:      id,
		Name:         name,
		Chain:        chains.Home,
		Location:     GeoLocation{Latitude: lat, Longitude: lon, Address: address, City: city, State: "Delhi", Pincode: pincode},
		SizeSqft:     sqft,
		OpeningHours: "10:00-22:00",
		IsActive:     true,
	}
}

func rival(id, chain string, lat, lon float64, address, city string, active bool) Store {
	return Store{
		StoreID:      id,
		Name:         chain + " " + address,
		Chain:        chain,
		Location:     GeoLocation{Latitude: lat, Longitude: lon, Address: address, City: city, State: "Delhi"},
		SizeSqft:     8000,
		OpeningHours: "10:30-21:30",
		IsActive:     active,
	}
}

// SeedStores returns the built-in catalogue.
func SeedStores() []Store {
	return []Store{
		home("HS-ROH-01", "Rohini Sector 10", 28.7372, 77.1188, "Sector 10, Rohini", "New Delhi", "110085", 12000),
		home("HS-CP-01", "Connaught Place", 28.6315, 77.2167, "Inner Circle, Connaught Place", "New Delhi", "110001", 9500),
		home("HS-LJN-01", "Lajpat Nagar", 28.5677, 77.2433, "Central Market, Lajpat Nagar II", "New Delhi", "110024", 8000),
		home("HS-DWK-01", "Dwarka Sector 12", 28.5921, 77.0460, "Sector 12, Dwarka", "New Delhi", "110075", 11000),
		home("HS-PTM-01", "Pitampura", 28.6990, 77.1384, "Netaji Subhash Place", "New Delhi", "110034", 10000),

		rival("CP-ZUD-ROH", "Zudio", 28.7450, 77.1200, "Sector 11, Rohini", "New Delhi", true),
		rival("CP-WST-ROH", "Westside", 28.7306, 77.1120, "Sector 7, Rohini", "New Delhi", true),
		rival("CP-MAX-ROH", "Max Fashion", 28.7195, 77.1075, "Unity One Mall, Rohini", "New Delhi", true),
		rival("CP-PNT-ROH", "Pantaloons", 28.7389, 77.1302, "Sector 9, Rohini", "New Delhi", false),
		rival("CP-TRD-PTM", "Trends", 28.6935, 77.1520, "Pitampura Main Road", "New Delhi", true),
		rival("CP-ZUD-PTM", "Zudio", 28.6952, 77.1398, "NSP Commercial Complex", "New Delhi", true),
		rival("CP-ZUD-CP", "Zudio", 28.6330, 77.2195, "Outer Circle, Connaught Place", "New Delhi", true),
		rival("CP-WST-CP", "Westside", 28.6289, 77.2210, "Janpath", "New Delhi", true),
		rival("CP-MAX-CP", "Max Fashion", 28.6402, 77.2090, "Paharganj", "New Delhi", true),
		rival("CP-PNT-CP", "Pantaloons", 28.6280, 77.2080, "Baba Kharak Singh Marg", "New Delhi", true),
		rival("CP-VMT-CP", "V-Mart", 28.6455, 77.2260, "Chandni Chowk", "New Delhi", true),
		rival("CP-TRD-LJN", "Trends", 28.5690, 77.2400, "Lajpat Nagar IV", "New Delhi", true),
		rival("CP-WST-LJN", "Westside", 28.5628, 77.2380, "Amar Colony", "New Delhi", true),
		rival("CP-MAX-DWK", "Max Fashion", 28.5850, 77.0500, "Vegas Mall, Dwarka", "New Delhi", true),
		rival("CP-ZUD-DWK", "Zudio", 28.5995, 77.0412, "Sector 10, Dwarka", "New Delhi", true),
		rival("CP-PNT-GGN", "Pantaloons", 28.4595, 77.0266, "MG Road", "Gurugram", true),
	}
}
