package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalString(t *testing.T, src string, ctx *Context) string {
	t.Helper()
	if ctx == nil {
		ctx = NewContext(nil, nil, nil, nil)
	}
	out, err := Evaluate(src, ctx, Options{})
	require.NoError(t, err)
	return out
}

func TestEvaluateIdempotentWithoutSubstitutions(t *testing.T) {
	assert.Equal(t, "plain text", evalString(t, "plain text", nil))
}

func TestEvaluateUnknownReferenceIsVerbatim(t *testing.T) {
	assert.Equal(t, "${nosuch}", evalString(t, "${nosuch}", nil))
}

func TestEvaluateResolvesPointerVar(t *testing.T) {
	ctx := NewContext(Vars{"name": "weechat"}, nil, nil, nil)
	assert.Equal(t, "hello weechat", evalString(t, "hello ${name}", ctx))
}

func TestEvaluateUpperLowerTransforms(t *testing.T) {
	assert.Equal(t, "ABC", evalString(t, "${upper:abc}", nil))
	assert.Equal(t, "abc", evalString(t, "${lower:ABC}", nil))
}

func TestEvaluateRecursionGuardTerminates(t *testing.T) {
	ctx := NewContext(Vars{"a": "${a}"}, nil, nil, nil)
	out, err := Evaluate("${a}", ctx, Options{})
	require.NoError(t, err)
	assert.Equal(t, "${a}", out)
}

func TestEvaluateNestedSubstitution(t *testing.T) {
	ctx := NewContext(Vars{"inner": "bc"}, nil, nil, nil)
	assert.Equal(t, "ABC", evalString(t, "${upper:a${inner}}", ctx))
}

func TestEvaluateIfTransform(t *testing.T) {
	assert.Equal(t, "yes", evalString(t, "${if:1==1?yes:no}", nil))
	assert.Equal(t, "no", evalString(t, "${if:1==2?yes:no}", nil))
}

func TestEvaluateIfShortCircuitsDefine(t *testing.T) {
	ctx := NewContext(nil, nil, nil, nil)
	_ = evalString(t, "${if:0?${define:x,set}yes:no}", ctx)
	_, ok := ctx.lookupVar("x")
	assert.False(t, ok, "define inside the untaken branch must not run")
}

func TestEvaluateDefineThenReference(t *testing.T) {
	ctx := NewContext(nil, nil, nil, nil)
	out := evalString(t, "${define:greeting,hi}${greeting}", ctx)
	assert.Equal(t, "hi", out)
}

func TestEvaluateHideTransform(t *testing.T) {
	assert.Equal(t, "****", evalString(t, "${hide:*,pass}", nil))
}

func TestEvaluateCutTransform(t *testing.T) {
	assert.Equal(t, "ab+", evalString(t, "${cut:2,+,abcdef}", nil))
}

func TestEvaluateCalcTransform(t *testing.T) {
	assert.Equal(t, "7", evalString(t, "${calc:3+4}", nil))
	assert.Equal(t, "8", evalString(t, "${calc:2**3}", nil))
}

func TestEvaluateBaseEncodeDecodeRoundTrip(t *testing.T) {
	enc := evalString(t, "${base_encode:64,hello}", nil)
	dec := evalString(t, "${base_decode:64,"+enc+"}", nil)
	assert.Equal(t, "hello", dec)
}

func TestEvalConditionMode(t *testing.T) {
	ctx := NewContext(Vars{"a": "1"}, nil, nil, nil)
	out, err := Evaluate("${a} == 1", ctx, Options{Condition: true})
	require.NoError(t, err)
	assert.Equal(t, "1", out)
}

func TestEvalConditionOperators(t *testing.T) {
	e := &Evaluator{}
	ctx := NewContext(nil, nil, nil, nil)
	ok, err := e.evalCondition("foo =~ ^f", ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.evalCondition("abc =- b", ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.evalCondition("5 > 3 && 2 < 1", ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.evalCondition("5 > 3 || 2 < 1", ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegexReplace(t *testing.T) {
	ctx := NewContext(nil, nil, nil, nil)
	out, err := Evaluate("hello world", ctx, Options{
		Regex:        `(\w+)`,
		RegexReplace: "[${re:1}]",
	})
	require.NoError(t, err)
	assert.Equal(t, "[hello] [world]", out)
}

func TestCustomPrefixSuffix(t *testing.T) {
	ctx := NewContext(Vars{"x": "y"}, nil, nil, nil)
	out, err := Evaluate("<<x>>", ctx, Options{Prefix: "<<", Suffix: ">>"})
	require.NoError(t, err)
	assert.Equal(t, "y", out)
}
