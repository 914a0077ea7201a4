package billing

import "streamscout/models"

// tokenPackages are the purchasable bundles, in display order.
var tokenPackages = []models.TokenPackage{
	{ID: "starter", Label: "Starter pack", Tokens: 25, Price: 4.99, Currency: "USD"},
	{ID: "binge", Label: "Binge pack", Tokens: 60, Price: 9.99, Currency: "USD"},
	{ID: "pro", Label: "Pro pack", Tokens: 150, Price: 19.99, Currency: "USD"},
}

// Packages returns the purchasable token bundles in display order.
func Packages() []models.TokenPackage {
	out := make([]models.TokenPackage, len(tokenPackages))
	copy(out, tokenPackages)
	return out
}

// PackageByID returns the bundle with the given ID, if any.
func PackageByID(id string) (models.TokenPackage, bool) {
	for _, pack := range tokenPackages {
		if pack.ID == id {
			return pack, true
		}
	}
	return models.TokenPackage{}, false
}
