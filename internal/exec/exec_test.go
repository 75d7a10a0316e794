package exec_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egg/internal/coroutine"
	"egg/internal/exec"
	"egg/internal/lexer"
	"egg/internal/parser"
	"egg/internal/source"
	"egg/internal/types"
	"egg/internal/value"
)

// rawRun executes src and returns whatever value escaped the module,
// exceptions included, for tests that assert on failure.
func rawRun(t *testing.T, src string) (string, value.Value, *exec.Context) {
	t.Helper()
	var out bytes.Buffer
	ctx := exec.NewContext(&out)
	ctx.SetGeneratorFactory(coroutine.NewGeneratorValue)
	toks := lexer.NewScanner("<test>", src).ScanTokens()
	p := parser.NewParser("<test>", toks)
	module := p.Parse()
	require.Empty(t, p.Errors, "parse errors in test source")
	result := ctx.Run(module)
	return out.String(), result, ctx
}

// run executes src and fails the test on any escaped exception. Each print
// call produces one output line.
func run(t *testing.T, src string) (string, *exec.Context) {
	t.Helper()
	out, result, ctx := rawRun(t, src)
	require.False(t, result.Has(types.Exception), "unexpected exception: %s", result.ToString())
	return out, ctx
}

func runRaises(t *testing.T, src string) string {
	t.Helper()
	_, result, _ := rawRun(t, src)
	require.True(t, result.Has(types.Exception), "expected an exception, got %s", result.ToString())
	return result.ToString()
}

func TestPrintConcatenatesArgumentsIntoOneLine(t *testing.T) {
	out, _ := run(t, `print("Hello, ", "world!");`)
	assert.Equal(t, "Hello, world!\n", out)
}

func TestForeachOverArrayLiteral(t *testing.T) {
	out, _ := run(t, `for (var x in [10, 20, 30]) { print(x); }`)
	assert.Equal(t, "10\n20\n30\n", out)
}

func TestStringRepeat(t *testing.T) {
	out, _ := run(t, `var s = "abc"; print(s.repeat(3));`)
	assert.Equal(t, "abcabcabc\n", out)
}

func TestArrayGrowsAndPadsWithNullOnSparseAssign(t *testing.T) {
	out, _ := run(t, `var a = []; a[0] = "x"; a[2] = "z"; print(a.length, ":", a[1]);`)
	assert.Equal(t, "3:null\n", out)
}

func TestTryCatchFinally(t *testing.T) {
	out, _ := run(t, `try { throw "boom"; } catch (string e) { print(e); } finally { print("done"); }`)
	assert.Equal(t, "boom\ndone\n", out)
}

func TestGeneratorYieldsInOrderThenTerminates(t *testing.T) {
	out, _ := run(t, `
		generator counter() { yield 1; yield 2; }
		for (var i in counter()) { print(i); }
	`)
	assert.Equal(t, "1\n2\n", out)
}

func TestGeneratorExceptionPropagatesToConsumer(t *testing.T) {
	out, _ := run(t, `
		generator boom() { yield 1; throw "bang"; }
		try {
			for (var i in boom()) { print(i); }
		} catch (string e) {
			print(e);
		}
	`)
	assert.Equal(t, "1\nbang\n", out)
}

func TestGeneratorAbandonedByBreakIsDisposed(t *testing.T) {
	out, _ := run(t, `
		generator nums() { yield 1; yield 2; yield 3; }
		for (var i in nums()) { print(i); break; }
		print("after");
	`)
	assert.Equal(t, "1\nafter\n", out)
}

func TestForeachOverStringYieldsCodepoints(t *testing.T) {
	out, _ := run(t, `for (var ch in "ab") { print(ch); }`)
	assert.Equal(t, "a\nb\n", out)
}

func TestStringIndexingYieldsSingleCodepoint(t *testing.T) {
	out, _ := run(t, `var s = "hello"; print(s[1]);`)
	assert.Equal(t, "e\n", out)
}

func TestWhileBreakAndContinue(t *testing.T) {
	out, _ := run(t, `
		var i = 0;
		while (i < 5) {
			i = i + 1;
			if (i == 2) { continue; }
			if (i == 4) { break; }
			print(i);
		}
	`)
	assert.Equal(t, "1\n3\n", out)
}

func TestDoRunsBodyBeforeCondition(t *testing.T) {
	out, _ := run(t, `var i = 0; do { print(i); i++; } while (i < 2);`)
	assert.Equal(t, "0\n1\n", out)
}

func TestForLoopWithPreCondPost(t *testing.T) {
	out, _ := run(t, `for (var i = 0; i < 3; i++) { print(i); }`)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestSwitchFallthroughViaContinue(t *testing.T) {
	out, _ := run(t, `
		var x = 1;
		switch (x) {
			case 1:
				print("one");
				continue;
			case 2:
				print("two");
				break;
			default:
				print("other");
		}
	`)
	assert.Equal(t, "one\ntwo\n", out)
}

func TestSwitchFallsBackToDefault(t *testing.T) {
	out, _ := run(t, `
		switch (9) {
			case 1:
				print("a");
				break;
			default:
				print("d");
		}
	`)
	assert.Equal(t, "d\n", out)
}

func TestCompoundAssignUnsignedRightShiftEq(t *testing.T) {
	out, _ := run(t, `var x = -1; x >>>= 60; print(x);`)
	assert.Equal(t, "15\n", out)
}

func TestCompoundAssignsPreserveIntType(t *testing.T) {
	out, _ := run(t, `var x = 10; x -= 3; x *= 2; print(x);`)
	assert.Equal(t, "14\n", out)
}

func TestIntDivisionAndRemainderTruncateTowardZero(t *testing.T) {
	out, _ := run(t, `print(-7 / 2, ",", -7 % 2);`)
	assert.Equal(t, "-3,-1\n", out)
}

func TestFloatPromotionInArithmeticAndPrinting(t *testing.T) {
	out, _ := run(t, `print(1 + 2.5); var f: float = 1; print(f);`)
	assert.Equal(t, "3.5\n1.0\n", out)
}

func TestAssignmentEvaluatesLvalueBeforeRvalue(t *testing.T) {
	out, _ := run(t, `
		function f(): int { print("L"); return 0; }
		function g(): int { print("R"); return 5; }
		var a = [0];
		a[f()] = g();
		print(a[0]);
	`)
	assert.Equal(t, "L\nR\n5\n", out)
}

func TestAssignedValueReadsBackEqual(t *testing.T) {
	out, _ := run(t, `var x = 2; var y = x; assert(x == y); assert(1 == 1.0); print("ok");`)
	assert.Equal(t, "ok\n", out)
}

func TestAssignmentTypeMismatchRaises(t *testing.T) {
	msg := runRaises(t, `var x = 1; x = "s";`)
	assert.Contains(t, msg, "cannot assign")
}

func TestDeclareInitTypeMismatchRaises(t *testing.T) {
	msg := runRaises(t, `var x: int = "s";`)
	assert.Contains(t, msg, "cannot initialise")
}

func TestNonBoolConditionRaises(t *testing.T) {
	msg := runRaises(t, `if (1) { print("no"); }`)
	assert.Contains(t, msg, "condition is not a bool")
}

func TestMutateOnNonIntRaises(t *testing.T) {
	msg := runRaises(t, `var f = 1.5; f++;`)
	assert.Contains(t, msg, "operand must be an int")
}

func TestExpressionStatementDiscardingValueRaises(t *testing.T) {
	msg := runRaises(t, `1 + 2;`)
	assert.Contains(t, msg, "is not used")
}

func TestThrowVoidRaises(t *testing.T) {
	msg := runRaises(t, `
		function nothing() { return; }
		throw nothing();
	`)
	assert.Contains(t, msg, "void")
}

func TestTernarySelectsSingleBranch(t *testing.T) {
	out, _ := run(t, `print(true ? "a" : "b"); print(false ? "a" : "b");`)
	assert.Equal(t, "a\nb\n", out)
}

func TestNullCoalescingEvaluatesRightOnlyOnNull(t *testing.T) {
	out, _ := run(t, `var x: int? = null; print(x ?? 5); var y: int? = 7; print(y ?? 5);`)
	assert.Equal(t, "5\n7\n", out)
}

func TestLogicalShortCircuitSkipsRight(t *testing.T) {
	out, _ := run(t, `
		function loud(): bool { print("evaluated"); return true; }
		if (false && loud()) { print("no"); }
		if (true || loud()) { print("yes"); }
	`)
	assert.Equal(t, "yes\n", out)
}

func TestLogicalNonBoolOperandRaises(t *testing.T) {
	msg := runRaises(t, `if (1 && true) { print("no"); }`)
	assert.Contains(t, msg, "operand is not a bool")
}

func TestGuardBindsInsideDependentBlockOnly(t *testing.T) {
	out, _ := run(t, `if (var g = 5) { print(g); }`)
	assert.Equal(t, "5\n", out)
}

func TestAssertPredicateAnnotatesException(t *testing.T) {
	out, _ := run(t, `
		try {
			assert(1 >= 2);
		} catch (object e) {
			print(e.left, ",", e.operator, ",", e.right);
		}
	`)
	assert.Equal(t, "1,>=,2\n", out)
}

func TestReadingUnassignedVariableRaises(t *testing.T) {
	msg := runRaises(t, `var x: int; print(x);`)
	assert.Contains(t, msg, "before being assigned")
}

func TestFunctionCallReturnsValue(t *testing.T) {
	out, _ := run(t, `
		function add(a: int, b: int): int {
			return a + b;
		}
		print(add(2, 3));
	`)
	assert.Equal(t, "5\n", out)
}

func TestFunctionArityIsChecked(t *testing.T) {
	msg := runRaises(t, `
		function add(a: int, b: int): int { return a + b; }
		print(add(2));
	`)
	assert.Contains(t, msg, "expected at least 2")
}

func TestFunctionArgumentTypeIsChecked(t *testing.T) {
	msg := runRaises(t, `
		function twice(a: int): int { return a * 2; }
		print(twice("s"));
	`)
	assert.Contains(t, msg, "cannot pass")
}

func TestIntArgumentPromotesIntoFloatParameter(t *testing.T) {
	out, _ := run(t, `
		function half(x: float): float { return x / 2.0; }
		print(half(5));
	`)
	assert.Equal(t, "2.5\n", out)
}

func TestVariadicFunctionParams(t *testing.T) {
	out, _ := run(t, `
		function sum(...nums) {
			var total = 0;
			for (var n in nums) { total = total + n; }
			return total;
		}
		print(sum(1, 2, 3));
	`)
	assert.Equal(t, "6\n", out)
}

func TestClosureCapturesDefiningScope(t *testing.T) {
	out, _ := run(t, `
		var n = 10;
		function get(): int { return n; }
		print(get());
	`)
	assert.Equal(t, "10\n", out)
}

func TestRethrowInsideCatchReraisesOriginal(t *testing.T) {
	out, _ := run(t, `
		try {
			try { throw "x"; } catch (string e) { throw; }
		} catch (string e2) {
			print("outer:", e2);
		}
	`)
	assert.Equal(t, "outer:x\n", out)
}

func TestFinallySupersedesPriorReturn(t *testing.T) {
	out, _ := run(t, `
		function f(): int {
			try { return 1; } finally { return 2; }
		}
		print(f());
	`)
	assert.Equal(t, "2\n", out)
}

func TestRuntimeExceptionExposesMessageAndLocation(t *testing.T) {
	out, _ := run(t, `
		try { var y = nope; } catch (object e) { print(e.message); }
	`)
	assert.Equal(t, "undefined reference: nope\n", out)
}

func TestStringFromConvertsSingleValue(t *testing.T) {
	out, _ := run(t, `print(string.from(42));`)
	assert.Equal(t, "42\n", out)
}

func TestStringConstructorConcatenates(t *testing.T) {
	out, _ := run(t, `print(string("a", 1, true));`)
	assert.Equal(t, "a1true\n", out)
}

func TestTypeOfReturnsStringForm(t *testing.T) {
	out, _ := run(t, `print(type.of(42), "/", type.of("s"), "/", type.of(1.5));`)
	assert.Equal(t, "int/string/float\n", out)
}

func TestTypeConstructionRaises(t *testing.T) {
	out, _ := run(t, `
		try { type(42); } catch (object e) { print(e.message); }
	`)
	assert.Contains(t, out, "construction is not supported")
}

func TestObjectLiteralAndDotAccess(t *testing.T) {
	out, _ := run(t, `
		var o = { name: "egg", version: 1 };
		print(o.name, ":", o.version);
	`)
	assert.Equal(t, "egg:1\n", out)
}

func TestObjectIterationYieldsPairsInInsertionOrder(t *testing.T) {
	out, _ := run(t, `
		var o = { b: 1, a: 2 };
		for (var kv in o) { print(kv.key, "=", kv.value); }
	`)
	assert.Equal(t, "b=1\na=2\n", out)
}

func TestStringSplitAndJoinRoundTrip(t *testing.T) {
	out, _ := run(t, `
		var s = "a,b,c";
		var parts = s.split(",");
		print(parts.length);
		print(",".join(parts));
	`)
	assert.Equal(t, "3\na,b,c\n", out)
}

func TestStringPadAndSearchMethods(t *testing.T) {
	out, _ := run(t, `
		print("7".padLeft(3, "0"));
		print("abc".contains("b"), "/", "abc".startsWith("ab"), "/", "abc".endsWith("bc"));
		print("abcabc".indexOf("c"), "/", "abcabc".lastIndexOf("c"));
	`)
	assert.Equal(t, "007\ntrue/true/true\n2/5\n", out)
}

func TestShadowingDeclarationEmitsWarning(t *testing.T) {
	_, ctx := run(t, `var x = 1; { var x = 2; print(x); }`)
	assert.GreaterOrEqual(t, int(ctx.MaxSeverity()), int(source.Warning))
}

func TestMaxSeverityIsInformationForPlainPrint(t *testing.T) {
	_, ctx := run(t, `print("hi");`)
	assert.Equal(t, source.Information, ctx.MaxSeverity())
}

func TestBuiltinSymbolsAreReadOnly(t *testing.T) {
	msg := runRaises(t, `print = 1;`)
	assert.Contains(t, msg, "read-only")
}

func TestPointerOperationsRaise(t *testing.T) {
	msg := runRaises(t, `var x = 1; var p = &x;`)
	assert.Contains(t, msg, "not supported")
}

func TestStepHookFiresPerStatement(t *testing.T) {
	var out bytes.Buffer
	ctx := exec.NewContext(&out)
	ctx.SetGeneratorFactory(coroutine.NewGeneratorValue)
	var steps int
	ctx.SetStepHook(func(loc source.Location) { steps++ })
	toks := lexer.NewScanner("<test>", `var x = 1; x = 2; print(x);`).ScanTokens()
	module := parser.NewParser("<test>", toks).Parse()
	result := ctx.Run(module)
	require.False(t, result.Has(types.Exception))
	// the module block plus its three statements
	assert.Equal(t, 4, steps)
}
