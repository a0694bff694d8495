package listings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 509000.0, parsePrice("509 000 €"))
	assert.Equal(t, 1250000.0, parsePrice("1 250 000 €"))
	assert.Equal(t, 320000.0, parsePrice("320000"))
	assert.True(t, math.IsNaN(parsePrice("Prix non disponible")))
	assert.True(t, math.IsNaN(parsePrice("")))
}

func TestParseSurface(t *testing.T) {
	assert.Equal(t, 71.0, parseSurface("71 m²"))
	assert.Equal(t, 45.5, parseSurface("45,5 m2"))
	assert.True(t, math.IsNaN(parseSurface("aucune")))
}

func TestParsePricePerM2(t *testing.T) {
	assert.Equal(t, 7200.0, parsePricePerM2("soit 7 200 €/m²"))
	assert.Equal(t, 9850.0, parsePricePerM2("9 850 € / m²"))
	assert.True(t, math.IsNaN(parsePricePerM2("non disponible")))
}

func TestParseType(t *testing.T) {
	assert.Equal(t, "Appartement", parseType("Appartement", ""))
	assert.Equal(t, "Appartement", parseType("Duplex", ""))
	assert.Equal(t, "Appartement", parseType("Loft", ""))
	assert.Equal(t, "Maison", parseType("Maison de ville", ""))
	assert.Equal(t, "Locaux", parseType("Local commercial", ""))
	assert.Equal(t, "Garage", parseType("Parking", ""))

	// Blank or headline types fall back to details.
	assert.Equal(t, "Appartement", parseType("À vendre", "Bel appartement 3 pièces"))
	assert.Equal(t, "", parseType("", "Maison avec jardin"))

	// Excluded kinds.
	assert.Equal(t, "", parseType("Péniche", ""))
	assert.Equal(t, "", parseType("Viager occupé", ""))
	assert.Equal(t, "", parseType("Hôtel particulier", ""))
	assert.Equal(t, "", parseType("Immeuble de rapport", ""))
	assert.Equal(t, "", parseType("Propriété", ""))

	// Unrecognized types keep the text before "à", capitalized.
	assert.Equal(t, "Studio", parseType("studio à rénover", ""))
	assert.Equal(t, "", parseType("studio à vendre", ""), "headline types need a details fallback")
}

func TestParseRooms(t *testing.T) {
	assert.Equal(t, 3, parseRooms("3 pièces"))
	assert.Equal(t, 1, parseRooms("T1"))
	assert.Equal(t, 0, parseRooms("non précisé"))
}

func TestParseLocation(t *testing.T) {
	assert.Equal(t, "75003", parseLocation("Paris 75003"))
	assert.Equal(t, "75116", parseLocation("rue de Passy, 75116 Paris"))
	assert.Equal(t, "75003", parseLocation("3ème arrondissement"))
	assert.Equal(t, "75001", parseLocation("1er"))
	assert.Equal(t, "75020", parseLocation("20e"))
	assert.Equal(t, "", parseLocation("21ème"))
	assert.Equal(t, "", parseLocation("Boulogne-Billancourt 92100"))
	assert.Equal(t, "", parseLocation(""))
}

func TestDetectSource(t *testing.T) {
	assert.Equal(t, "orpi", DetectSource("annonces_orpi_paris.csv"))
	assert.Equal(t, "stephane_plaza", DetectSource("annonces_stephane_plaza_paris.csv"))
	assert.Equal(t, "lefigaro", DetectSource("annonces_lefigaro_paris_2.csv"))
	assert.Equal(t, "autre", DetectSource("annonces_pap_paris.csv"))
}
