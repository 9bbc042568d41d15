package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/basketprune/internal/apriori"
)

const groceryMatrix = `Eggs,Milk,Bread,Butter,Cheese,Diaper,Beer
1,1,0,1,0,1,0
0,1,1,0,1,0,1
1,1,1,1,0,0,0
1,0,1,0,1,1,0
0,1,0,1,1,0,1
1,1,0,0,0,1,0
0,0,1,1,1,1,1
1,0,1,0,1,0,1
`

func TestReadMatrixCSV(t *testing.T) {
	data, err := ReadMatrixCSV(strings.NewReader(groceryMatrix))
	require.NoError(t, err)

	assert.Equal(t, FormatMatrix, data.Format)
	assert.Equal(t, 8, data.Len())
	assert.Equal(t, []string{"Eggs", "Milk", "Bread", "Butter", "Cheese", "Diaper", "Beer"}, data.Items)
	assert.Equal(t, []int{1, 1, 0, 1, 0, 1, 0}, data.Rows[0])

	ds, err := data.Dataset()
	require.NoError(t, err)
	s, err := ds.Support("Eggs", "Milk")
	require.NoError(t, err)
	assert.InDelta(t, 0.375, s, 1e-12)
}

func TestReadMatrixCSV_IDColumnAndBooleans(t *testing.T) {
	in := "tid, a, b\n" +
		"t1, true, FALSE\n" +
		"# comment\n" +
		"t2, 0, 1\n"
	data, err := ReadMatrixCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, data.Items)
	assert.Equal(t, [][]int{{1, 0}, {0, 1}}, data.Rows)
}

func TestReadMatrixCSV_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "empty"},
		{"ragged", "a,b\n1,0\n1\n", "line 3"},
		{"bad cell", "a,b\n1,0\n1,yes\n", `line 3, column "b"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMatrixCSV(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, apriori.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadBasketCSV(t *testing.T) {
	in := "Milk, Eggs\n" +
		"Bread,,Milk\n" +
		"# skipped\n" +
		"Beer\n"
	data, err := ReadBasketCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, FormatBasket, data.Format)
	assert.Nil(t, data.Items)
	assert.Equal(t, [][]string{{"Milk", "Eggs"}, {"Bread", "Milk"}, {"Beer"}}, data.Baskets)
	assert.Equal(t, data.Baskets, data.AsBaskets())
}

func TestReadBasketCSV_EmptyTransaction(t *testing.T) {
	in := "Milk\n" +
		",\n" +
		"\n" +
		"Milk, Eggs\n"
	data, err := ReadBasketCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Milk"}, {}, {"Milk", "Eggs"}}, data.Baskets)

	ds, err := data.Dataset()
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	supp, err := ds.Support("Eggs")
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, supp, 1e-9)
}

func TestReadBasketCSV_RepeatedItemRejectedByDataset(t *testing.T) {
	data, err := ReadBasketCSV(strings.NewReader("a,a\n"))
	require.NoError(t, err)

	_, err = data.Dataset()
	assert.ErrorIs(t, err, apriori.ErrInvalidInput)
}

func TestReadJSON(t *testing.T) {
	t.Run("matrix", func(t *testing.T) {
		data, err := ReadJSON(strings.NewReader(`{"items":["a","b"],"rows":[[1,0],[1,1]]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, data.Items)
		assert.Equal(t, [][]int{{1, 0}, {1, 1}}, data.Rows)
	})

	t.Run("transactions", func(t *testing.T) {
		data, err := ReadJSON(strings.NewReader(`{"transactions":[["a"],[],["a","b"]]}`))
		require.NoError(t, err)
		assert.Equal(t, 3, data.Len())
		assert.Equal(t, [][]string{{"a"}, {}, {"a", "b"}}, data.Baskets)
	})

	for name, in := range map[string]string{
		"malformed": `{"items":`,
		"both":      `{"items":["a"],"rows":[[1]],"transactions":[["a"]]}`,
		"neither":   `{}`,
		"unknown":   `{"baskets":[["a"]]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(in))
			assert.ErrorIs(t, err, apriori.ErrInvalidInput)
		})
	}
}

func TestAsBaskets_FromMatrix(t *testing.T) {
	data := &Data{
		Items: []string{"a", "b", "c"},
		Rows:  [][]int{{1, 0, 1}, {0, 0, 0}},
	}
	assert.Equal(t, [][]string{{"a", "c"}, {}}, data.AsBaskets())
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":        FormatAuto,
		"auto":    FormatAuto,
		" Matrix": FormatMatrix,
		"basket":  FormatBasket,
		"JSON":    FormatJSON,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"data.json":    FormatJSON,
		"DATA.CSV":     FormatMatrix,
		"orders.txt":   FormatBasket,
		"x.baskets":    FormatBasket,
		"dir/y.basket": FormatBasket,
	}
	for path, want := range tests {
		got, err := DetectFormat(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := DetectFormat("data.parquet")
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	matrix := filepath.Join(dir, "groceries.csv")
	require.NoError(t, os.WriteFile(matrix, []byte(groceryMatrix), 0o644))
	data, err := ReadFile(matrix, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, FormatMatrix, data.Format)
	assert.Equal(t, 8, data.Len())

	// An explicit format overrides the extension.
	baskets := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(baskets, []byte("a,b\nb\n"), 0o644))
	data, err = ReadFile(baskets, FormatBasket)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"b"}}, data.Baskets)

	_, err = ReadFile(filepath.Join(dir, "missing.csv"), FormatAuto)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = ReadFile(bad, FormatAuto)
	assert.ErrorIs(t, err, apriori.ErrInvalidInput)
	assert.Contains(t, err.Error(), bad)
}

func TestRename(t *testing.T) {
	aliases := map[string]string{"lager": "Beer", "ale": "Beer"}
	resolve := func(s string) string {
		if c, ok := aliases[s]; ok {
			return c
		}
		return s
	}

	t.Run("baskets", func(t *testing.T) {
		data := &Data{Format: FormatBasket, Baskets: [][]string{{"lager", "ale", "Chips"}, {"Milk"}}}
		got := data.Rename(resolve)
		assert.Equal(t, [][]string{{"Beer", "Chips"}, {"Milk"}}, got.Baskets)
		assert.Equal(t, FormatBasket, got.Format)
	})

	t.Run("matrix", func(t *testing.T) {
		data := &Data{
			Format: FormatMatrix,
			Items:  []string{"lager", "Chips", "ale"},
			Rows:   [][]int{{1, 0, 0}, {0, 1, 1}, {1, 0, 1}, {0, 0, 0}},
		}
		got := data.Rename(resolve)
		assert.Equal(t, []string{"Beer", "Chips"}, got.Items)
		assert.Equal(t, [][]int{{1, 0}, {1, 1}, {1, 0}, {0, 0}}, got.Rows)

		_, err := got.Dataset()
		require.NoError(t, err)
	})
}
