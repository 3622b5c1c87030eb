package normalize

import "github.com/amishk599/cadre/internal/model"

// Investors normalizes investor records. CompanyCount is the number of
// companies listing the investor by name.
func (n *Normalizer) Investors(records []model.Record, companies []model.CompanyListing) []model.InvestorListing {
	portfolio := make(map[string]int)
	for _, c := range companies {
		for _, inv := range c.Investors {
			portfolio[inv]++
		}
	}

	investors := make([]model.InvestorListing, 0, len(records))
	for _, r := range records {
		f := r.Fields
		if f == nil {
			f = map[string]any{}
		}
		name := String(f, InvestorName)
		inv := model.InvestorListing{
			ID:      r.ID,
			Name:    name,
			Slug:    Slug(name),
			Website: String(f, InvestorWebsite),
			Logo:    String(f, InvestorLogo),
			Type:    String(f, InvestorType),
		}
		if name != "" {
			inv.CompanyCount = portfolio[name]
		}
		investors = append(investors, inv)
	}
	return investors
}
