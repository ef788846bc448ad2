package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Empty(t *testing.T) {
	expr, err := Parse("")
	require.NoError(t, err)
	assert.Nil(t, expr)

	expr, err = Parse("   ")
	require.NoError(t, err)
	assert.Nil(t, expr)
}

func TestParse_Precedence(t *testing.T) {
	// && binds tighter than ||.
	expr, err := Parse("@a || @b && @c")
	require.NoError(t, err)

	or, ok := expr.(*OrExpr)
	require.True(t, ok)
	assert.IsType(t, &AtomExpr{}, or.X)
	assert.IsType(t, &AndExpr{}, or.Y)
}

func TestParse_Parentheses(t *testing.T) {
	expr, err := Parse("(@a || @b) && @c")
	require.NoError(t, err)

	and, ok := expr.(*AndExpr)
	require.True(t, ok)
	assert.IsType(t, &OrExpr{}, and.X)
	assert.IsType(t, &AtomExpr{}, and.Y)
}

func TestParse_NotBindsTightest(t *testing.T) {
	expr, err := Parse("!@a && @b")
	require.NoError(t, err)

	and, ok := expr.(*AndExpr)
	require.True(t, ok)
	assert.IsType(t, &NotExpr{}, and.X)

	double, err := Parse("!!@a")
	require.NoError(t, err)
	outer, ok := double.(*NotExpr)
	require.True(t, ok)
	assert.IsType(t, &NotExpr{}, outer.X)
}

func TestParse_QuotedAtomsKeepOperatorsAndSpaces(t *testing.T) {
	expr, err := Parse(`"with space.go":10`)
	require.NoError(t, err)

	atom, ok := expr.(*AtomExpr)
	require.True(t, ok)
	assert.Equal(t, `"with space.go":10`, atom.Text)
}

func TestParse_ErrorsCarryOffsets(t *testing.T) {
	_, err := Parse("@a && (@b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offset")
}
