package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPage_PlainArray(t *testing.T) {
	t.Parallel()

	var page Page
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1},{"id":2}]`), &page))

	require.Len(t, page.Items, 2)
	require.Equal(t, int64(2), page.Count)
}

func TestPage_ResultsCount(t *testing.T) {
	t.Parallel()

	var page Page
	require.NoError(t, json.Unmarshal([]byte(`{"results":[{"id":1}],"count":41}`), &page))

	require.Len(t, page.Items, 1)
	// Счётчик сервера важнее длины страницы: листинг многостраничный.
	require.Equal(t, int64(41), page.Count)
}

func TestPage_ResultsWithoutCount(t *testing.T) {
	t.Parallel()

	var page Page
	require.NoError(t, json.Unmarshal([]byte(`{"results":[{"id":1},{"id":2}]}`), &page))

	require.Len(t, page.Items, 2)
	require.Equal(t, int64(2), page.Count)
}

func TestPage_DataTotal(t *testing.T) {
	t.Parallel()

	var page Page
	require.NoError(t, json.Unmarshal([]byte(`{"data":[{"id":1}],"total":7}`), &page))

	require.Len(t, page.Items, 1)
	require.Equal(t, int64(7), page.Count)
}

func TestPage_UnrecognizedShape(t *testing.T) {
	t.Parallel()

	var page Page
	err := json.Unmarshal([]byte(`{"items":[{"id":1}]}`), &page)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unrecognized paged response shape")
}

func TestPage_Decode(t *testing.T) {
	t.Parallel()

	var page Page
	require.NoError(t, json.Unmarshal([]byte(`{"results":[{"id":1,"name":"Catan"}],"count":1}`), &page))

	var items []Product
	require.NoError(t, page.Decode(&items))

	require.Len(t, items, 1)
	require.Equal(t, int64(1), items[0].ID)
	require.Equal(t, "Catan", items[0].Name)
}
