package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/identity"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

// money formats an amount with two decimal places.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// parseMoney reads a decimal amount such as "12.50".
func parseMoney(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errs.Validation("%s is required", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errs.Validation("%s %q is not a number", field, s)
	}
	return d, nil
}

func parseCustomAmounts(in map[string]string) (map[string]decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]decimal.Decimal, len(in))
	for userID, s := range in {
		d, err := parseMoney("custom amount for "+userID, s)
		if err != nil {
			return nil, err
		}
		out[userID] = d
	}
	return out, nil
}

func parsePolicy(s string) (models.SplitPolicy, error) {
	if s == "" {
		return models.PolicyEven, nil
	}
	p := models.SplitPolicy(strings.ToLower(s))
	if !p.Valid() {
		return "", errs.Validation("unknown split policy %q", s)
	}
	return p, nil
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Email:       u.Email,
		Handle:      u.Handle,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIProfile(p models.Profile) api.Profile {
	return api.Profile{ID: p.ID, Handle: p.Handle, DisplayName: p.DisplayName}
}

func toAPIProfiles(profiles []models.Profile) []api.Profile {
	out := make([]api.Profile, len(profiles))
	for i, p := range profiles {
		out[i] = toAPIProfile(p)
	}
	return out
}

// presenter turns models into API messages, resolving display names in batches.
type presenter struct {
	directory *identity.Directory
}

func (p presenter) groups(ctx context.Context, groups []*models.Group) ([]api.Group, error) {
	var ids []string
	for _, g := range groups {
		ids = append(ids, g.Members...)
	}
	profiles, err := p.directory.Profiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]api.Group, len(groups))
	for i, g := range groups {
		members := make([]api.Profile, 0, len(g.Members))
		for _, id := range g.Members {
			members = append(members, toAPIProfile(profileOrID(profiles, id)))
		}
		out[i] = api.Group{
			ID:        g.ID,
			Name:      g.Name,
			CreatorID: g.CreatorID,
			Members:   members,
			CreatedAt: g.CreatedAt,
		}
	}
	return out, nil
}

func (p presenter) group(ctx context.Context, g *models.Group) (api.Group, error) {
	out, err := p.groups(ctx, []*models.Group{g})
	if err != nil {
		return api.Group{}, err
	}
	return out[0], nil
}

func (p presenter) bills(ctx context.Context, bills []models.Bill) ([]api.Bill, error) {
	var ids []string
	for _, b := range bills {
		ids = append(ids, b.CreatedBy)
		for _, s := range b.Splits {
			ids = append(ids, s.UserID)
		}
	}
	profiles, err := p.directory.Profiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]api.Bill, len(bills))
	for i, b := range bills {
		out[i] = toAPIBill(b, profiles)
	}
	return out, nil
}

func (p presenter) bill(ctx context.Context, b *models.Bill) (api.Bill, error) {
	out, err := p.bills(ctx, []models.Bill{*b})
	if err != nil {
		return api.Bill{}, err
	}
	return out[0], nil
}

func toAPIBill(b models.Bill, profiles map[string]models.Profile) api.Bill {
	paid, _ := calculator.BillProgress(b)
	out := api.Bill{
		ID:           b.ID,
		Title:        b.Title,
		Description:  b.Description,
		Total:        money(b.Total),
		CreatorID:    b.CreatedBy,
		CreatorName:  profiles[b.CreatedBy].DisplayName,
		CreatorShare: money(b.CreatorShare()),
		GroupID:      b.GroupID,
		BillDate:     b.BillDate,
		CreatedAt:    b.CreatedAt,
		Splits:       make([]api.Split, len(b.Splits)),
		PaidCount:    paid,
	}
	for _, item := range b.Items {
		out.Items = append(out.Items, api.Item{ID: item.ID, Label: item.Label, Cost: money(item.Cost)})
	}
	for i, s := range b.Splits {
		out.Splits[i] = toAPISplit(s, profiles)
	}
	return out
}

func toAPISplit(s models.Split, profiles map[string]models.Profile) api.Split {
	return api.Split{
		UserID:      s.UserID,
		DisplayName: profiles[s.UserID].DisplayName,
		Amount:      money(s.Amount),
		Paid:        s.Paid,
		PaidAt:      s.PaidAt,
		PaidBy:      s.PaidBy,
	}
}

func toAPIBalances(b models.BalanceSummary) api.Balances {
	return api.Balances{
		TotalOwed:  money(b.TotalOwed),
		TotalOwing: money(b.TotalOwing),
		OwedBy:     toAPICounterparties(b.OwedBy),
		OwingTo:    toAPICounterparties(b.OwingTo),
	}
}

func toAPICounterparties(in []models.CounterpartyBalance) []api.Counterparty {
	out := make([]api.Counterparty, len(in))
	for i, c := range in {
		out[i] = api.Counterparty{UserID: c.UserID, DisplayName: c.DisplayName, Amount: money(c.Amount)}
	}
	return out
}

// profileOrID falls back to a bare ID for users the directory no longer knows.
func profileOrID(profiles map[string]models.Profile, id string) models.Profile {
	if p, ok := profiles[id]; ok {
		return p
	}
	return models.Profile{ID: id}
}
