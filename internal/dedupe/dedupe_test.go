package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystal-maps/venue-cli/internal/model"
)

func strp(s string) *string   { return &s }
func f64p(f float64) *float64 { return &f }

func venue(brand string, mutate func(*model.Venue)) model.Venue {
	v := model.Venue{Brand: brand}
	if mutate != nil {
		mutate(&v)
	}
	return v
}

func TestKey_BranchTierNeverCollidesWithBranchless(t *testing.T) {
	withBranch := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.Branch = strp("Kadıköy")
		v.Address = strp("Moda Cad. No:5")
	})
	without := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.Address = strp("Moda Cad. No:5")
	})

	assert.NotEqual(t, Key(&withBranch), Key(&without))

	kept := Deduplicate([]model.Venue{withBranch, without})
	assert.Len(t, kept, 2)
}

func TestKey_SameRoundedCoordinatesCollapse(t *testing.T) {
	a := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.Latitude = f64p(40.9876543)
		v.Longitude = f64p(29.0301234)
	})
	// Differs only past the sixth decimal.
	b := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.Latitude = f64p(40.9876545)
		v.Longitude = f64p(29.0301236)
	})

	assert.Equal(t, Key(&a), Key(&b))
	assert.Len(t, Deduplicate([]model.Venue{a, b}), 1)
}

func TestKey_CoordinateTierUsesPhoneNotAddress(t *testing.T) {
	a := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.Latitude = f64p(40.1)
		v.Longitude = f64p(29.1)
		v.Phone = strp("0216 111 11 11")
	})
	b := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.Latitude = f64p(40.1)
		v.Longitude = f64p(29.1)
		v.Phone = strp("0216 222 22 22")
	})

	assert.NotEqual(t, Key(&a), Key(&b))
}

func TestKey_TextNormalization(t *testing.T) {
	a := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.Address = strp("  Moda   Cad. No:5 ")
	})
	b := venue("ali ocakbaşı", func(v *model.Venue) {
		v.Address = strp("MODA CAD. NO:5")
	})

	assert.Equal(t, Key(&a), Key(&b))
}

func TestKey_TurkishCaseFolding(t *testing.T) {
	a := venue("Çiya Sofrası", func(v *model.Venue) {
		v.Branch = strp("KADIKÖY")
	})
	b := venue("çiya sofrası", func(v *model.Venue) {
		v.Branch = strp("kadıköy")
	})

	assert.Equal(t, Key(&a), Key(&b))
}

func TestDeduplicate_MapsURLWinsRegardlessOfOrder(t *testing.T) {
	plain := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.Address = strp("Moda Cad. No:5")
	})
	withMaps := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.Address = strp("Moda Cad. No:5")
		v.GeocodeMapsURL = strp("https://maps.google.com/?cid=1")
	})

	for _, input := range [][]model.Venue{
		{plain, withMaps},
		{withMaps, plain},
	} {
		kept := Deduplicate(input)
		require.Len(t, kept, 1)
		require.NotNil(t, kept[0].GeocodeMapsURL)
	}
}

func TestDeduplicate_TieKeepsFirstSeen(t *testing.T) {
	first := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.ID = 1
		v.Address = strp("Moda Cad. No:5")
	})
	second := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.ID = 2
		v.Address = strp("Moda Cad. No:5")
	})

	kept := Deduplicate([]model.Venue{first, second})
	require.Len(t, kept, 1)
	assert.Equal(t, int64(1), kept[0].ID)
}

func TestDeduplicate_PreservesFirstSeenOrder(t *testing.T) {
	venues := []model.Venue{
		venue("Zeta", nil),
		venue("Alpha", nil),
		venue("Mid", nil),
	}
	kept := Deduplicate(venues)
	require.Len(t, kept, 3)
	assert.Equal(t, "Zeta", kept[0].Brand)
	assert.Equal(t, "Alpha", kept[1].Brand)
	assert.Equal(t, "Mid", kept[2].Brand)
}

func TestQuality_Weights(t *testing.T) {
	v := venue("Ali Ocakbaşı", func(v *model.Venue) {
		v.GeocodeMapsURL = strp("https://maps.google.com/?cid=1")
		v.ResolvedAddress = strp("Caferağa Mah.")
		v.ResolvedPhone = strp("+90 216 111 11 11")
		v.ResolvedWebsite = strp("https://example.com")
		v.ExtraInfo = strp("%10 indirim")
		v.GeocodeProvider = strp("google")
	})
	assert.InDelta(t, 10.5, Quality(&v), 1e-9)

	empty := venue("Ali Ocakbaşı", nil)
	assert.Zero(t, Quality(&empty))
}
