package gazetteer

// CityUnits holds the curated administrative units of one supported city.
type CityUnits struct {
	// Aliases are the recognized spellings and abbreviations of the city
	// name, lowercase. Matching is substring-based against address parts.
	Aliases []string

	// Districts are urban districts. Numbered entries use the canonical
	// "Quận N" form; named entries use the bare name ("Đống Đa").
	Districts []string

	// Counties are rural districts (huyện). Matches are reported with a
	// "Huyện " prefix.
	Counties []string

	// Towns are district-level towns (thị xã), recognized for the capital
	// only. Matches are reported with a "Thị xã " prefix.
	Towns []string

	// SpecialCities are municipal cities (thành phố thuộc thành phố),
	// recognized for Hồ Chí Minh City only. Matches are reported with a
	// "TP " prefix.
	SpecialCities []string
}

// Gazetteer maps canonical city names to their administrative units.
type Gazetteer struct {
	// order fixes the city scan order so the first match is deterministic.
	order  []string
	cities map[string]CityUnits
}

const (
	CityHanoi = "Hà Nội"
	CityHCMC  = "Hồ Chí Minh"
)

// Default returns the gazetteer for the two supported metropolitan areas.
func Default() *Gazetteer {
	return &Gazetteer{
		order: []string{CityHanoi, CityHCMC},
		cities: map[string]CityUnits{
			CityHanoi: {
				Aliases: []string{"hà nội", "ha noi", "hanoi"},
				Districts: []string{
					"Ba Đình", "Hoàn Kiếm", "Tây Hồ", "Long Biên",
					"Cầu Giấy", "Đống Đa", "Hai Bà Trưng", "Hoàng Mai",
					"Thanh Xuân", "Bắc Từ Liêm", "Nam Từ Liêm", "Hà Đông",
				},
				Counties: []string{
					"Ba Vì", "Chương Mỹ", "Đan Phượng", "Đông Anh",
					"Gia Lâm", "Hoài Đức", "Mê Linh", "Mỹ Đức",
					"Phú Xuyên", "Phúc Thọ", "Quốc Oai", "Sóc Sơn",
					"Thạch Thất", "Thanh Oai", "Thanh Trì", "Thường Tín",
					"Ứng Hòa",
				},
				Towns: []string{"Sơn Tây"},
			},
			CityHCMC: {
				Aliases: []string{
					"hồ chí minh", "ho chi minh", "tp. hcm", "tp.hcm",
					"tphcm", "hcmc", "sài gòn", "saigon",
				},
				Districts: []string{
					"Quận 1", "Quận 3", "Quận 4", "Quận 5", "Quận 6",
					"Quận 7", "Quận 8", "Quận 10", "Quận 11", "Quận 12",
					"Bình Thạnh", "Gò Vấp", "Phú Nhuận", "Tân Bình",
					"Tân Phú", "Bình Tân",
				},
				Counties: []string{
					"Bình Chánh", "Cần Giờ", "Củ Chi", "Hóc Môn", "Nhà Bè",
				},
				SpecialCities: []string{"Thủ Đức"},
			},
		},
	}
}

// Cities returns the canonical city names in scan order.
func (g *Gazetteer) Cities() []string {
	return g.order
}

// Units returns the administrative units of a canonical city name.
func (g *Gazetteer) Units(city string) (CityUnits, bool) {
	u, ok := g.cities[city]
	return u, ok
}
