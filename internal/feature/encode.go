// Package feature turns cleaned transactions into the numeric design matrix
// the models train on, and persists the train/test tables together with the
// scaler and manifest artifacts the prediction path reloads.
package feature

import "fmt"

// districtCategories is the fixed arrondissement list used for one-hot
// encoding. Codes outside the list fall into the explicit "other" bucket so
// the encoded width never depends on the rows that happen to be present.
var districtCategories = []int{
	1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
	11, 12, 13, 14, 15, 16, 17, 18, 19, 20,
}

// typeCategories is the fixed property-type list for the optional type
// one-hot, used when the type restriction is off.
var typeCategories = []string{
	"Appartement",
	"Maison",
	"Dépendance",
	"Local industriel. commercial ou assimilé",
}

// natureCategories is the fixed mutation-nature list for the optional
// nature one-hot.
var natureCategories = []string{
	"Vente",
	"Vente en l'état futur d'achèvement",
	"Vente terrain à bâtir",
	"Adjudication",
	"Echange",
	"Expropriation",
}

func districtColumnNames() []string {
	names := make([]string, 0, len(districtCategories)+1)
	for _, c := range districtCategories {
		names = append(names, fmt.Sprintf("arr_%d", c))
	}
	return append(names, "arr_autre")
}

func categoryColumnNames(prefix string, categories []string) []string {
	names := make([]string, 0, len(categories)+1)
	for i := range categories {
		names = append(names, fmt.Sprintf("%s_%d", prefix, i))
	}
	return append(names, prefix+"_autre")
}
