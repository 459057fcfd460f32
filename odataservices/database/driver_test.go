package database_test

import (
	"log/slog"
	"testing"

	"github.com/lunagic/odata/odata"
	"github.com/lunagic/odata/odataservices/database"
	"gotest.tools/v3/assert"
)

type person struct {
	ID    int64
	Name  string
	Age   int64
	City  string
	Score float64
}

var people = []person{
	{ID: 1, Name: "alice", Age: 30, City: "paris", Score: 1.5},
	{ID: 2, Name: "bob", Age: 25, City: "london", Score: 2.5},
	{ID: 3, Name: "carol", Age: 35, City: "paris", Score: 3.5},
	{ID: 4, Name: "dave", Age: 40, City: "berlin", Score: 4.5},
	{ID: 5, Name: "o'neil", Age: 28, City: "dublin", Score: 5.5},
}

var peopleCollection = database.Collection{
	Name:    "people",
	Columns: []string{"id", "name", "age", "city", "score"},
	DefaultOrderBy: []odata.OrderBy{
		{Property: "id", Direction: odata.Ascending},
	},
}

type findTestCase struct {
	QueryString   string
	ExpectedNames []string
	ExpectedCount *int64
}

func count(n int64) *int64 {
	return &n
}

func names(page database.Page) []string {
	result := []string{}
	for _, row := range page.Rows {
		name, _ := row["name"].(string)
		result = append(result, name)
	}

	return result
}

func testSuite(t *testing.T, driver database.Driver, configFuncs ...database.ServiceConfigFunc) {
	configFuncs = append(configFuncs, database.WithLogger(slog.Default()))
	service, err := database.New(driver, configFuncs...)
	assert.NilError(t, err)
	t.Cleanup(func() {
		_ = service.Close()
	})

	assert.NilError(t, service.Ping())

	{ // Seed the people table
		_, err := service.Exec(t.Context(), `
			CREATE TABLE people (
				id INTEGER NOT NULL PRIMARY KEY,
				name VARCHAR(64) NOT NULL,
				age INTEGER NOT NULL,
				city VARCHAR(64) NOT NULL,
				score DOUBLE PRECISION NOT NULL
			)
		`, nil)
		assert.NilError(t, err)

		for _, p := range people {
			_, err := service.Exec(
				t.Context(),
				"INSERT INTO people (id, name, age, city, score) VALUES (:id, :name, :age, :city, :score)",
				map[string]any{
					":id":    p.ID,
					":name":  p.Name,
					":age":   p.Age,
					":city":  p.City,
					":score": p.Score,
				},
			)
			assert.NilError(t, err)
		}
	}

	testCases := map[string]findTestCase{
		"everything in default order": {
			QueryString:   "",
			ExpectedNames: []string{"alice", "bob", "carol", "dave", "o'neil"},
		},
		"equal with explicit order": {
			QueryString:   "$filter=city eq 'paris'&$orderby=name desc",
			ExpectedNames: []string{"carol", "alice"},
		},
		"range conjunction": {
			QueryString:   "$filter=age gt 28 and age le 35",
			ExpectedNames: []string{"alice", "carol"},
		},
		"in list": {
			QueryString:   "$filter=city in ('paris','london')&$orderby=age asc",
			ExpectedNames: []string{"bob", "alice", "carol"},
		},
		"in with single value": {
			QueryString:   "$filter=id in (4)",
			ExpectedNames: []string{"dave"},
		},
		"escaped quote": {
			QueryString:   "$filter=name eq 'o''neil'",
			ExpectedNames: []string{"o'neil"},
		},
		"not equal with count": {
			QueryString:   "$filter=city ne 'paris'&$count=true",
			ExpectedNames: []string{"bob", "dave", "o'neil"},
			ExpectedCount: count(3),
		},
		"float comparison": {
			QueryString:   "$filter=score ge 3.5",
			ExpectedNames: []string{"carol", "dave", "o'neil"},
		},
		"lower than": {
			QueryString:   "$filter=age lt 30",
			ExpectedNames: []string{"bob", "o'neil"},
		},
		"paging keeps the total count": {
			QueryString:   "$top=2&$skip=1&$count=true",
			ExpectedNames: []string{"bob", "carol"},
			ExpectedCount: count(5),
		},
		"skip without top": {
			QueryString:   "$skip=3",
			ExpectedNames: []string{"dave", "o'neil"},
		},
		"top zero": {
			QueryString:   "$top=0&$count=true",
			ExpectedNames: []string{},
			ExpectedCount: count(5),
		},
		"nothing matches": {
			QueryString:   "$filter=city eq 'rome'",
			ExpectedNames: []string{},
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			query, err := odata.Decode(testCase.QueryString)
			assert.NilError(t, err)

			page, err := peopleCollection.Find(t.Context(), service, query)
			assert.NilError(t, err)
			assert.DeepEqual(t, testCase.ExpectedNames, names(page))
			if testCase.ExpectedCount == nil {
				assert.Assert(t, page.Count == nil)
			} else {
				assert.Assert(t, page.Count != nil)
				assert.Equal(t, *testCase.ExpectedCount, *page.Count)
			}
		})
	}

	t.Run("select limits the columns", func(t *testing.T) {
		query, err := odata.Decode("$select=name&$top=1")
		assert.NilError(t, err)

		page, err := peopleCollection.Find(t.Context(), service, query)
		assert.NilError(t, err)
		assert.DeepEqual(t, []database.Row{{"name": "alice"}}, page.Rows)
	})

	t.Run("max top caps the page", func(t *testing.T) {
		capped := peopleCollection
		capped.MaxTop = 2

		query, err := odata.Decode("$top=4")
		assert.NilError(t, err)

		page, err := capped.Find(t.Context(), service, query)
		assert.NilError(t, err)
		assert.DeepEqual(t, []string{"alice", "bob"}, names(page))
	})

	t.Run("unknown column", func(t *testing.T) {
		query, err := odata.Decode("$filter=password eq 'hunter2'")
		assert.NilError(t, err)

		_, err = peopleCollection.Find(t.Context(), service, query)
		assert.ErrorIs(t, err, database.ErrUnknownColumn)
	})

	t.Run("count on raw query", func(t *testing.T) {
		total, err := service.Count(t.Context(), database.Query{
			From:  "people",
			Where: database.And(database.GreaterThanOrEqual("age", int64(30))),
		})
		assert.NilError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("blank query", func(t *testing.T) {
		_, err := service.Exec(t.Context(), "   ", nil)
		assert.ErrorIs(t, err, database.ErrBlankQuery)
	})
}
