package env

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Variables(t *testing.T) {
	r := NewResolver()
	r.SetVariable("season", "2017")

	assert.Equal(t, "http://ergast.com/api/f1/2017/circuits.json",
		r.Resolve("http://ergast.com/api/f1/{{season}}/circuits.json"))
}

func TestResolver_CapturesWinOverVariables(t *testing.T) {
	r := NewResolver()
	r.SetVariable("id", "from-vars")
	r.SetCapture("get circuits", "id", "from-capture")

	assert.Equal(t, "from-capture", r.Resolve("{{id}}"))

	v, ok := r.GetCapture("get circuits.id")
	require.True(t, ok)
	assert.Equal(t, "from-capture", v)
}

func TestResolver_UnresolvedKeepsLiteral(t *testing.T) {
	r := NewResolver()

	var warned string
	r.SetWarnFunc(func(format string, args ...any) {
		warned = format
	})

	assert.Equal(t, "{{missing}}", r.Resolve("{{missing}}"))
	assert.Contains(t, warned, "unresolved variable")
}

func TestResolver_EnvironmentVariable(t *testing.T) {
	t.Setenv("RESTCHECK_TEST_TOKEN", "sekret")

	r := NewResolver()
	assert.Equal(t, "Bearer sekret", r.Resolve("Bearer {{$RESTCHECK_TEST_TOKEN}}"))
}

func TestResolver_ResolveAll(t *testing.T) {
	r := NewResolver()
	r.SetVariable("season", "2017")

	out := r.ResolveAll(map[string]string{
		"season": "{{season}}",
		"limit":  "30",
	})

	assert.Equal(t, "2017", out["season"])
	assert.Equal(t, "30", out["limit"])
}

func TestResolver_Clone(t *testing.T) {
	r := NewResolver()
	r.SetVariable("a", "1")
	r.SetCapture("", "b", "2")

	clone := r.Clone()
	clone.SetVariable("a", "changed")

	assert.Equal(t, "1", r.Resolve("{{a}}"))
	assert.Equal(t, "changed", clone.Resolve("{{a}}"))
	assert.Equal(t, "2", clone.Resolve("{{b}}"))
}

func TestBuiltin_UUID(t *testing.T) {
	r := NewResolver()
	out := r.Resolve("{{uuid()}}")

	assert.Len(t, out, 36)
	assert.Equal(t, 4, strings.Count(out, "-"))
}

func TestBuiltin_RandomInt(t *testing.T) {
	r := NewResolver()

	for i := 0; i < 20; i++ {
		out := r.Resolve("{{randomInt(1, 5)}}")
		n, err := strconv.Atoi(out)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 5)
	}
}

func TestBuiltin_UnknownFunctionKeepsLiteral(t *testing.T) {
	r := NewResolver()
	assert.Equal(t, "{{nope()}}", r.Resolve("{{nope()}}"))
}
