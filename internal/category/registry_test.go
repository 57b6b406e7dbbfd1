package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLoads(t *testing.T) {
	all := All()
	require.Len(t, all, 12)
	assert.Equal(t, Count(), len(all))

	// Order is load-bearing for rotation; pin the ends.
	assert.Equal(t, "financial_advisor", all[0].Code)
	assert.Equal(t, "pet_shop", all[len(all)-1].Code)

	for _, c := range all {
		assert.NotEmpty(t, c.Code)
		assert.NotEmpty(t, c.Label)
		assert.NotEmpty(t, c.Query)
		assert.NotEmpty(t, c.Intent)
		assert.Greater(t, c.CostPerContact, 0.0)

		_, ok := StrategyFor(c)
		assert.True(t, ok, "category %s has no strategy", c.Code)
	}
}

func TestByIndexWraps(t *testing.T) {
	n := Count()
	assert.Equal(t, ByIndex(0), ByIndex(n))
	assert.Equal(t, ByIndex(3), ByIndex(n+3))
	assert.Equal(t, All()[n-1], ByIndex(n-1))
}

func TestByCode(t *testing.T) {
	c, ok := ByCode("real_estate_agent")
	require.True(t, ok)
	assert.Equal(t, "Immobilienmakler", c.Label)
	assert.True(t, c.PortalSearch())

	c, ok = ByCode("veterinary")
	require.True(t, ok)
	assert.False(t, c.PortalSearch())

	_, ok = ByCode("nope")
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	a := All()
	a[0].Code = "mutated"
	assert.Equal(t, "financial_advisor", All()[0].Code)
}

func TestStrategyPendingSteps(t *testing.T) {
	c, ok := ByCode("property_management")
	require.True(t, ok)
	s, ok := StrategyFor(c)
	require.True(t, ok)

	// Nothing known yet: both steps pending.
	pending := s.PendingSteps(ContactFacts{}, nil)
	require.Len(t, pending, 2)
	assert.Equal(t, "google_search", pending[0].ID)

	// Email already present: the scrape step is skipped.
	pending = s.PendingSteps(ContactFacts{Email: "a@b.de"}, nil)
	require.Len(t, pending, 1)
	assert.Equal(t, "google_search", pending[0].ID)

	// Discovery already completed.
	pending = s.PendingSteps(ContactFacts{}, []string{"google_search"})
	require.Len(t, pending, 1)
	assert.Equal(t, "web_scrape", pending[0].ID)
}

func TestStrategySkipConditions(t *testing.T) {
	c, ok := ByCode("insurance_broker_34d")
	require.True(t, ok)
	s, ok := StrategyFor(c)
	require.True(t, ok)

	// no_website skips the verification scrape when the contact has no site.
	pending := s.PendingSteps(ContactFacts{Phone: "+4930123456"}, []string{"ihk_scrape", "google_verify"})
	assert.Empty(t, pending)

	pending = s.PendingSteps(ContactFacts{Website: "https://acme.de"}, []string{"ihk_scrape", "google_verify"})
	require.Len(t, pending, 1)
	assert.Equal(t, "web_scrape", pending[0].ID)
}

func TestRemainingCostEUR(t *testing.T) {
	c, _ := ByCode("family_office")
	s, _ := StrategyFor(c)
	assert.InDelta(t, 0.023, RemainingCostEUR(s.PendingSteps(ContactFacts{}, nil)), 0.0001)
	assert.Zero(t, RemainingCostEUR(nil))
}

func TestDataGaps(t *testing.T) {
	gaps := DataGaps(ContactFacts{})
	assert.ElementsMatch(t, []string{"email", "phone", "website", "contact_person"}, gaps)

	gaps = DataGaps(ContactFacts{Email: "a@b.de", LastName: "Schmidt"})
	assert.ElementsMatch(t, []string{"phone", "website"}, gaps)

	assert.Empty(t, DataGaps(ContactFacts{
		Email: "a@b.de", Phone: "+4930123456", Website: "acme.de", FirstName: "Max",
	}))
}
