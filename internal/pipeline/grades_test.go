package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeGrades(t *testing.T) {
	table := mkTable([]string{"nutriscore_grade", "nova_group"},
		[]*string{s("A"), s("4")},
		[]*string{s(" e "), s("3.0")},
		[]*string{s("not-applicable"), s("7")},
		[]*string{s("z"), s("two")},
		[]*string{nil, s("unknown")},
	)
	out, entries := NormalizeGrades("nutriscore_grade", "nova_group")(table)
	require.Len(t, entries, 2)

	var gotScore, gotNova []string
	for _, row := range out.Rows {
		gotScore = append(gotScore, row["nutriscore_grade"].Text())
		gotNova = append(gotNova, row["nova_group"].Text())
	}
	require.Equal(t, []string{"a", "e", "", "", ""}, gotScore)
	require.Equal(t, []string{"4", "3", "", "", ""}, gotNova)

	// placeholders are nulled without counting as invalid
	require.Equal(t, 1, entries[0].InvalidValues)
	require.Equal(t, 2, entries[0].ValuesNulled)
	require.Equal(t, 2, entries[1].InvalidValues)
	require.Equal(t, 3, entries[1].ValuesNulled)
}
