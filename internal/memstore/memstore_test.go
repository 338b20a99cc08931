package memstore

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/RichardKnop/docplan/internal/planner"
)

var gen = newDataGen(time.Now().UnixNano())

type dataGen struct {
	*gofakeit.Faker
	seed int64
}

func newDataGen(seed int64) *dataGen {
	return &dataGen{
		Faker: gofakeit.New(seed),
		seed:  seed,
	}
}

var testCities = []string{"Berlin", "London", "Paris"}

// Users returns documents with a unique id. About one in eight documents
// lacks each of age, score, city and meta.
func (g *dataGen) Users(n int) []planner.Document {
	docs := make([]planner.Document, 0, n)
	for i := 0; i < n; i++ {
		aDoc := planner.Document{
			"id":        i,
			"age":       g.Number(18, 22),
			"score":     g.Number(0, 4),
			"city":      g.RandomString(testCities),
			"verified":  g.Bool(),
			"last_name": g.LastName(),
			"meta": map[string]any{
				"rank": g.Number(0, 3),
			},
		}
		for _, aField := range []string{"age", "score", "city", "meta"} {
			if g.Number(0, 7) == 0 {
				delete(aDoc, aField)
			}
		}
		docs = append(docs, aDoc)
	}
	return docs
}

func docIDs(docs []planner.Document) []int {
	ids := make([]int, 0, len(docs))
	for _, aDoc := range docs {
		ids = append(ids, aDoc["id"].(int))
	}
	return ids
}

func testUsers() []planner.Document {
	return []planner.Document{
		{"id": 0, "age": 30, "city": "London", "last_name": "Knop"},
		{"id": 1, "age": 25, "city": "Paris", "last_name": "Smith"},
		{"id": 2, "age": 35, "city": "London", "last_name": "Jones"},
		{"id": 3, "age": 25, "city": "Berlin", "last_name": "Knop"},
		{"id": 4, "city": "London", "last_name": "Brown"},
		{"id": 5, "age": 40, "city": "Paris", "last_name": "Knop"},
	}
}
