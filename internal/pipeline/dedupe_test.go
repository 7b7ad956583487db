package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDropJunkRows(t *testing.T) {
	table := mkTable([]string{"product_name"}, []*string{s("XXX ")}, []*string{s("Tea")}, []*string{nil})
	out, entries := DropJunkRows("product_name", []string{"xxx"})(table)
	require.Equal(t, 2, out.Len())
	require.Equal(t, 1, entries[0].RowsDropped)
}

func TestDropDuplicates(t *testing.T) {
	table := mkTable([]string{"product_name", "brands"},
		[]*string{s("Tea"), s("Lipton")},
		[]*string{s("Tea"), s("Lipton")},
		[]*string{s("Tea"), nil},
		[]*string{s("Tea"), s("")},
	)
	out, entries := DropDuplicates()(table)
	// null and empty string are different cells
	require.Equal(t, 3, out.Len())
	require.Equal(t, 1, entries[0].RowsDropped)
	require.Empty(t, entries[0].Column)
}
