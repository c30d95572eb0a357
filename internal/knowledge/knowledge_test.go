package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextTicketQueries(t *testing.T) {
	for _, q := range []string{
		"quanto costano i biglietti?",
		"BIGLIETTI tribuna",
		"ticket price please",
	} {
		ctx := Context(q)
		assert.Contains(t, ctx, "BIGLIETTI:", "query %q must include the ticketing block", q)
	}
}

func TestContextFallback(t *testing.T) {
	ctx := Context("xyzzy qwerty")
	assert.Equal(t, fallbackBlock, ctx, "unrecognized query returns exactly the fallback block")
	assert.Contains(t, ctx, EventDates)
	assert.Contains(t, ctx, Email)
}

func TestContextNonExclusiveMatching(t *testing.T) {
	ctx := Context("programma e biglietti del rally")
	assert.Contains(t, ctx, "PROGRAMMA")
	assert.Contains(t, ctx, "BIGLIETTI:")
	assert.Contains(t, ctx, "INFO GENERALI:")
	assert.Equal(t, 2, strings.Count(ctx, blockSeparator), "three blocks, two separators")
}

func TestContextScheduleFirst(t *testing.T) {
	ctx := Context("programma biglietti")
	require.Less(t, strings.Index(ctx, "PROGRAMMA"), strings.Index(ctx, "BIGLIETTI:"),
		"blocks appear in section order")
}

func TestFindLocation(t *testing.T) {
	loc, ok := FindLocation("Dove si trova il Colosseo?")
	require.True(t, ok)
	assert.Equal(t, "Colosseo", loc.Name)
	assert.InDelta(t, 41.8902, loc.Lat, 1e-9)
	assert.InDelta(t, 12.4922, loc.Lon, 1e-9)

	_, ok = FindLocation("dove si mangia bene a roma")
	assert.False(t, ok)
}

func TestLocationsComplete(t *testing.T) {
	require.Len(t, Locations, 5)
	block := locationsBlock()
	for _, l := range Locations {
		assert.Contains(t, block, l.Name)
		assert.Contains(t, l.MapsURL(), "google.com/maps")
	}
}
