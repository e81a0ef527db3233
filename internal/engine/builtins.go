package engine

import (
	"fmt"
	"strconv"
	"strings"

	"calc/internal/config"
	"calc/internal/cplx"
	"calc/internal/lexer"
	"calc/internal/magnitude"
	"calc/internal/rational"
	"calc/internal/resource"
	"calc/internal/transcend"
	"calc/internal/value"
	"calc/internal/vm"
)

func argQ(args []value.Value, i int) (rational.Q, bool) {
	if i >= len(args) || args[i].Kind != value.KindNumber {
		return rational.Q{}, false
	}
	return args[i].Num, true
}

func argMag(args []value.Value, i int) (magnitude.Mag, bool) {
	q, ok := argQ(args, i)
	if !ok || !q.IsInt() || q.IsNeg() {
		return magnitude.Mag{}, false
	}
	return q.Num(), true
}

func argInt(args []value.Value, i int) (int, bool) {
	q, ok := argQ(args, i)
	if !ok || !q.IsInt() {
		return 0, false
	}
	n, ok2 := q.Num().Uint64()
	if !ok2 {
		return 0, false
	}
	v := int(n)
	if q.IsNeg() {
		v = -v
	}
	return v, true
}

func asComplex(v value.Value) cplx.C {
	if v.Kind == value.KindComplex {
		return v.Cx
	}
	return cplx.New(v.Num, rational.Zero())
}

func badArgs(name string) value.Value {
	return value.NewError(value.ErrType, 0, "bad arguments to "+name)
}

// registerBuiltins wires spec.md §4.A/§4.C's operation list, the
// factor/ptest/error()/print supplements of SPEC_FULL.md §3, and the
// Randstate/container helpers §4.F and §5 describe, as VM builtins. Every
// domain error (bad argument type, out-of-domain value) is returned as a
// first-class Error value rather than a Go error, matching the "most
// opcodes propagate an Error operand" convention a TRY region expects to
// catch — a Go `error` return is reserved for this engine's own plumbing
// mistakes, which should never actually happen here.
func (e *Engine) registerBuiltins() {
	reg := e.VM.RegisterBuiltin

	reg("sqrt", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return badArgs("sqrt"), nil
		}
		eps, ok := argQ(args, 1)
		if !ok {
			return badArgs("sqrt"), nil
		}
		x := args[0]
		if x.Kind == value.KindComplex {
			return value.Complex(cplx.Sqrt(x.Cx, eps)), nil
		}
		q, ok := argQ(args, 0)
		if !ok {
			return badArgs("sqrt"), nil
		}
		if q.IsNeg() {
			return value.Complex(cplx.Sqrt(cplx.New(q, rational.Zero()), eps)), nil
		}
		return value.Number(transcend.Sqrt(q, eps)), nil
	})

	reg("root", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		x, ok1 := argQ(args, 0)
		n, ok2 := argInt(args, 1)
		eps, ok3 := argQ(args, 2)
		if !ok1 || !ok2 || !ok3 {
			return badArgs("root"), nil
		}
		return value.Number(transcend.Root(x, n, eps)), nil
	})

	reg("exp", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return badArgs("exp"), nil
		}
		eps, ok := argQ(args, 1)
		if !ok {
			return badArgs("exp"), nil
		}
		if args[0].Kind == value.KindComplex {
			return value.Complex(cplx.Exp(args[0].Cx, eps)), nil
		}
		x, ok := argQ(args, 0)
		if !ok {
			return badArgs("exp"), nil
		}
		return value.Number(transcend.Exp(x, eps)), nil
	})

	reg("ln", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return badArgs("ln"), nil
		}
		eps, ok := argQ(args, 1)
		if !ok {
			return badArgs("ln"), nil
		}
		if args[0].Kind == value.KindComplex {
			return value.Complex(cplx.Ln(args[0].Cx, eps)), nil
		}
		x, ok := argQ(args, 0)
		if !ok {
			return badArgs("ln"), nil
		}
		if x.IsZero() || x.IsNeg() {
			return value.NewError(value.ErrNumeric, 1, "ln domain error"), nil
		}
		return value.Number(transcend.Ln(x, eps)), nil
	})

	reg("sin", trig(transcend.Sin, cplx.Sin))
	reg("cos", trig(transcend.Cos, cplx.Cos))

	reg("atan", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		x, ok1 := argQ(args, 0)
		eps, ok2 := argQ(args, 1)
		if !ok1 || !ok2 {
			return badArgs("atan"), nil
		}
		return value.Number(transcend.Atan(x, eps)), nil
	})

	reg("pi", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		eps, ok := argQ(args, 0)
		if !ok {
			return badArgs("pi"), nil
		}
		return value.Number(transcend.Pi(eps)), nil
	})

	reg("bernoulli", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		n, ok := argInt(args, 0)
		if !ok {
			return badArgs("bernoulli"), nil
		}
		return value.Number(transcend.Bernoulli(n)), nil
	})

	reg("euler", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		n, ok := argInt(args, 0)
		if !ok {
			return badArgs("euler"), nil
		}
		return value.Number(transcend.Euler(n)), nil
	})

	reg("gcd", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		a, ok1 := argMag(args, 0)
		b, ok2 := argMag(args, 1)
		if !ok1 || !ok2 {
			return badArgs("gcd"), nil
		}
		return value.Number(rational.FromMag(magnitude.GCD(a, b), false)), nil
	})

	reg("powmod", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		a, ok1 := argMag(args, 0)
		exp, ok2 := argMag(args, 1)
		m, ok3 := argMag(args, 2)
		if !ok1 || !ok2 || !ok3 {
			return badArgs("powmod"), nil
		}
		return value.Number(rational.FromMag(magnitude.PowMod(a, exp, m), false)), nil
	})

	reg("ptest", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		n, ok1 := argMag(args, 0)
		k, ok2 := argInt(args, 1)
		if !ok1 || !ok2 {
			return badArgs("ptest"), nil
		}
		if magnitude.PTest(n, k) {
			return value.Number(rational.FromInt64(1)), nil
		}
		return value.Number(rational.FromInt64(0)), nil
	})

	reg("factor", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		n, ok := argMag(args, 0)
		if !ok {
			return badArgs("factor"), nil
		}
		return value.Number(rational.FromMag(magnitude.Factor(n), false)), nil
	})

	reg("nextcand", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		n, ok1 := argMag(args, 0)
		count, ok2 := argInt(args, 1)
		skip, ok3 := argInt(args, 2)
		if !ok1 || !ok2 || !ok3 {
			return badArgs("nextcand"), nil
		}
		return value.Number(rational.FromMag(magnitude.NextCand(n, count, uint64(skip)), false)), nil
	})

	reg("prevcand", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		n, ok1 := argMag(args, 0)
		count, ok2 := argInt(args, 1)
		skip, ok3 := argInt(args, 2)
		if !ok1 || !ok2 || !ok3 {
			return badArgs("prevcand"), nil
		}
		return value.Number(rational.FromMag(magnitude.PrevCand(n, count, uint64(skip)), false)), nil
	})

	reg("jacobi", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		a, ok1 := argMag(args, 0)
		n, ok2 := argMag(args, 1)
		if !ok1 || !ok2 {
			return badArgs("jacobi"), nil
		}
		return value.Number(rational.FromInt64(int64(magnitude.Jacobi(a, n)))), nil
	})

	reg("is_square", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		n, ok := argMag(args, 0)
		if !ok {
			return badArgs("is_square"), nil
		}
		root, isSq := n.IsSquare()
		if !isSq {
			return value.Number(rational.FromInt64(0)), nil
		}
		return value.Number(rational.FromMag(root, false)), nil
	})

	reg("config", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		key, ok := stringArg(args, 0)
		if !ok {
			return badArgs("config"), nil
		}
		if len(args) == 1 {
			v, ok := readConfigField(e.Cfg, key)
			if !ok {
				return value.NewError(value.ErrLookup, 2, "unrecognized config option "+key), nil
			}
			return v, nil
		}
		old, ok := readConfigField(e.Cfg, key)
		if !ok {
			if strings.ToLower(key) != "quomod" {
				return value.NewError(value.ErrLookup, 2, "unrecognized config option "+key), nil
			}
			old = value.Null // quomod is write-only: there is no single previous value
		}
		if !writeConfigField(e.Cfg, key, args[1]) {
			return badArgs("config"), nil
		}
		return old, nil
	})

	reg("appr", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		x, ok1 := argQ(args, 0)
		eps, ok2 := argQ(args, 1)
		if !ok1 || !ok2 {
			return badArgs("appr"), nil
		}
		return value.Number(x.Approx(eps, e.Cfg.Appr)), nil
	})

	reg("cfappr", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		x, ok1 := argQ(args, 0)
		eps, ok2 := argQ(args, 1)
		if !ok1 || !ok2 {
			return badArgs("cfappr"), nil
		}
		return value.Number(x.Approx(eps, e.Cfg.CfAppr)), nil
	})

	reg("print", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Null, nil
		}
		mode := value.ModeNormal
		if m, ok := argInt(args, 1); ok {
			mode = value.PrintMode(m)
		}
		fmt.Println(value.Print(args[0], mode, e.Cfg))
		return args[0], nil
	})

	reg("type", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return badArgs("type"), nil
		}
		return value.NewString(args[0].Kind.String()), nil
	})

	reg("len", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return badArgs("len"), nil
		}
		switch args[0].Kind {
		case value.KindList:
			l, _ := args[0].AsList()
			return value.Number(rational.FromInt64(int64(l.Len()))), nil
		case value.KindAssoc:
			a, _ := args[0].AsAssoc()
			return value.Number(rational.FromInt64(int64(a.Len()))), nil
		case value.KindString:
			s, _ := args[0].AsString()
			return value.Number(rational.FromInt64(int64(len(s.Bytes)))), nil
		default:
			return badArgs("len"), nil
		}
	})

	reg("error", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		code, _ := argInt(args, 0)
		message := ""
		if len(args) > 1 {
			if s, ok := args[1].AsString(); ok {
				message = s.String()
			}
		}
		return value.NewError(value.ErrUser, code, message), nil
	})

	reg("append", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return badArgs("append"), nil
		}
		l, ok := args[0].AsList()
		if !ok {
			return badArgs("append"), nil
		}
		l.PushBack(args[1])
		return args[0], nil
	})

	reg("delete", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return badArgs("delete"), nil
		}
		switch args[0].Kind {
		case value.KindList:
			l, _ := args[0].AsList()
			i, ok := argInt(args, 1)
			if !ok || !l.Delete(i) {
				return value.NewError(value.ErrShape, 1, "list index out of range"), nil
			}
			return args[0], nil
		case value.KindAssoc:
			a, _ := args[0].AsAssoc()
			a.Delete([]value.Value{args[1]})
			return args[0], nil
		default:
			return badArgs("delete"), nil
		}
	})

	reg("rand", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		return value.Number(rational.FromInt64(e.Rand.Next())), nil
	})

	reg("seed", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		n, ok := argInt(args, 0)
		if !ok {
			return badArgs("seed"), nil
		}
		e.Rand = value.NewRandstate(int64(n))
		return value.Null, nil
	})

	reg("newrand", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		n, ok := argInt(args, 0)
		if !ok {
			return badArgs("newrand"), nil
		}
		return value.NewRandstateValue(int64(n)), nil
	})

	reg("next", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		r, ok := args[0].AsRandstate()
		if len(args) == 0 || !ok {
			return badArgs("next"), nil
		}
		return value.Number(rational.FromInt64(r.Next())), nil
	})

	reg("tostring", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return badArgs("tostring"), nil
		}
		return value.NewString(value.Print(args[0], value.ModeNormal, e.Cfg)), nil
	})

	reg("tonumber", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return badArgs("tonumber"), nil
		}
		s, ok := args[0].AsString()
		if !ok {
			return badArgs("tonumber"), nil
		}
		if q, err := parseDecimal(s.String()); err == nil {
			return value.Number(q), nil
		}
		return value.NewError(value.ErrNumeric, 1, "not a number: "+s.String()), nil
	})

	reg("fopen", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		s, ok := stringArg(args, 0)
		if !ok {
			return badArgs("fopen"), nil
		}
		fv, err := resource.Open(s)
		if err != nil {
			return value.NewError(value.ErrResource, 1, err.Error()), nil
		}
		return fv, nil
	})

	reg("fclose", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return badArgs("fclose"), nil
		}
		f, ok := args[0].AsFile()
		if !ok {
			return badArgs("fclose"), nil
		}
		if err := f.Resource.Close(); err != nil {
			return value.NewError(value.ErrResource, 2, err.Error()), nil
		}
		return value.Null, nil
	})

	reg("fgetline", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return badArgs("fgetline"), nil
		}
		f, ok := args[0].AsFile()
		if !ok {
			return badArgs("fgetline"), nil
		}
		sock, ok := f.Resource.(*resource.SocketFile)
		if !ok {
			return value.NewError(value.ErrType, 3, "fgetline requires a socket File"), nil
		}
		line, err := sock.ReadLine()
		if err != nil {
			return value.NewError(value.ErrResource, 3, err.Error()), nil
		}
		return value.NewString(line), nil
	})

	reg("fputline", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return badArgs("fputline"), nil
		}
		f, ok := args[0].AsFile()
		line, ok2 := stringArg(args, 1)
		if !ok || !ok2 {
			return badArgs("fputline"), nil
		}
		sock, ok := f.Resource.(*resource.SocketFile)
		if !ok {
			return value.NewError(value.ErrType, 4, "fputline requires a socket File"), nil
		}
		if err := sock.WriteLine(line); err != nil {
			return value.NewError(value.ErrResource, 4, err.Error()), nil
		}
		return value.Null, nil
	})

	reg("query", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return badArgs("query"), nil
		}
		f, ok := args[0].AsFile()
		stmt, ok2 := stringArg(args, 1)
		if !ok || !ok2 {
			return badArgs("query"), nil
		}
		db, ok := f.Resource.(*resource.DBFile)
		if !ok {
			return value.NewError(value.ErrType, 5, "query requires a database File"), nil
		}
		rows, err := db.Query(stmt)
		if err != nil {
			return value.NewError(value.ErrResource, 5, err.Error()), nil
		}
		return rows, nil
	})

	reg("exec", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return badArgs("exec"), nil
		}
		f, ok := args[0].AsFile()
		stmt, ok2 := stringArg(args, 1)
		if !ok || !ok2 {
			return badArgs("exec"), nil
		}
		db, ok := f.Resource.(*resource.DBFile)
		if !ok {
			return value.NewError(value.ErrType, 6, "exec requires a database File"), nil
		}
		n, err := db.Exec(stmt)
		if err != nil {
			return value.NewError(value.ErrResource, 6, err.Error()), nil
		}
		return value.Number(rational.FromInt64(n)), nil
	})

	reg("matrix", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		rows, ok1 := argInt(args, 0)
		cols, ok2 := argInt(args, 1)
		if !ok1 || !ok2 || len(args) < 3 {
			return badArgs("matrix"), nil
		}
		data, ok3 := args[2].AsList()
		if !ok3 || data.Len() != rows*cols {
			return badArgs("matrix"), nil
		}
		m := value.NewMatrixValue([]int{0, 0}, []int{rows - 1, cols - 1})
		ma, _ := m.AsMatrix()
		i := 0
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				elem, _ := data.Get(i)
				ma.Set([]int{r, c}, elem)
				i++
			}
		}
		return m, nil
	})

	reg("det", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return badArgs("det"), nil
		}
		return value.Det(args[0]), nil
	})

	reg("inverse", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return badArgs("inverse"), nil
		}
		return value.Inverse(args[0]), nil
	})

	reg("transpose", func(vm *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return badArgs("transpose"), nil
		}
		ma, ok := args[0].AsMatrix()
		if !ok {
			return badArgs("transpose"), nil
		}
		out := ma.Transpose()
		return value.FromMatrixPtr(out), nil
	})
}

// readConfigField and writeConfigField implement the `config` builtin's
// by-name access to spec.md §6's configuration record: every option in
// that table's leftmost column is a case here. Numeric/bitmask/bool
// fields round-trip as Number values (bools as 0/1); prompt/more as
// String. quomod is a write-only alias that sets both quo and mod in one
// call, per the table's "`quomod`, `quo`, `mod`" grouping.
func readConfigField(cfg *config.Config, key string) (value.Value, bool) {
	switch strings.ToLower(key) {
	case "mode":
		return intValue(int(cfg.Mode)), true
	case "display":
		return intValue(cfg.Display), true
	case "epsilon":
		return value.Number(cfg.Epsilon), true
	case "tilde":
		return boolValue(cfg.Tilde), true
	case "tab":
		return intValue(cfg.Tab), true
	case "quo":
		return intValue(int(cfg.Quo)), true
	case "mod":
		return intValue(int(cfg.Mod)), true
	case "sqrt":
		return intValue(int(cfg.Sqrt)), true
	case "appr":
		return intValue(int(cfg.Appr)), true
	case "cfappr":
		return intValue(int(cfg.CfAppr)), true
	case "outround":
		return intValue(int(cfg.OutRound)), true
	case "leadzero":
		return boolValue(cfg.LeadZero), true
	case "fullzero":
		return boolValue(cfg.FullZero), true
	case "maxprint":
		return intValue(cfg.MaxPrint), true
	case "grouping":
		return boolValue(cfg.Grouping), true
	case "prompt":
		return value.NewString(cfg.Prompt), true
	case "more":
		return value.NewString(cfg.More), true
	case "calc_debug":
		return intValue(cfg.CalcDebug), true
	case "stoponerror":
		return intValue(cfg.StopOnError), true
	case "lib_debug":
		return intValue(cfg.LibDebug), true
	case "resource_debug":
		return intValue(cfg.ResourceDebug), true
	case "user_debug":
		return intValue(cfg.UserDebug), true
	default:
		return value.Value{}, false
	}
}

func writeConfigField(cfg *config.Config, key string, v value.Value) bool {
	asInt := func() (int, bool) { return toIntValue(v) }
	asBool := func() (bool, bool) {
		n, ok := toIntValue(v)
		return n != 0, ok
	}
	switch strings.ToLower(key) {
	case "mode":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.Mode = config.DisplayMode(n)
	case "display":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.Display = n
	case "epsilon":
		if v.Kind != value.KindNumber {
			return false
		}
		cfg.Epsilon = v.Num
	case "tilde":
		b, ok := asBool()
		if !ok {
			return false
		}
		cfg.Tilde = b
	case "tab":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.Tab = n
	case "quo":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.Quo = rational.RoundMode(n)
	case "mod":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.Mod = rational.RoundMode(n)
	case "quomod":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.Quo = rational.RoundMode(n)
		cfg.Mod = rational.RoundMode(n)
	case "sqrt":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.Sqrt = rational.RoundMode(n)
	case "appr":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.Appr = rational.RoundMode(n)
	case "cfappr":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.CfAppr = rational.RoundMode(n)
	case "outround":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.OutRound = rational.RoundMode(n)
	case "leadzero":
		b, ok := asBool()
		if !ok {
			return false
		}
		cfg.LeadZero = b
	case "fullzero":
		b, ok := asBool()
		if !ok {
			return false
		}
		cfg.FullZero = b
	case "maxprint":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.MaxPrint = n
	case "grouping":
		b, ok := asBool()
		if !ok {
			return false
		}
		cfg.Grouping = b
	case "prompt":
		s, ok := v.AsString()
		if !ok {
			return false
		}
		cfg.Prompt = s.String()
	case "more":
		s, ok := v.AsString()
		if !ok {
			return false
		}
		cfg.More = s.String()
	case "calc_debug":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.CalcDebug = n
	case "stoponerror":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.StopOnError = n
	case "lib_debug":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.LibDebug = n
	case "resource_debug":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.ResourceDebug = n
	case "user_debug":
		n, ok := asInt()
		if !ok {
			return false
		}
		cfg.UserDebug = n
	default:
		return false
	}
	return true
}

func intValue(n int) value.Value { return value.Number(rational.FromInt64(int64(n))) }

func boolValue(b bool) value.Value {
	if b {
		return value.Number(rational.FromInt64(1))
	}
	return value.Number(rational.FromInt64(0))
}

func toIntValue(v value.Value) (int, bool) {
	if v.Kind != value.KindNumber || !v.Num.IsInt() {
		return 0, false
	}
	u, ok := v.Num.Num().Uint64()
	if !ok {
		return 0, false
	}
	n := int(u)
	if v.Num.IsNeg() {
		n = -n
	}
	return n, true
}

func stringArg(args []value.Value, i int) (string, bool) {
	if i >= len(args) || args[i].Kind != value.KindString {
		return "", false
	}
	s, _ := args[i].AsString()
	return s.String(), true
}

// trig builds a sin/cos-style builtin dispatching real arguments to
// realFn and Complex arguments to cplxFn, both contracted by spec.md §4.C
// to take (x, eps) and return a result within 0.75*eps.
func trig(realFn func(rational.Q, rational.Q) rational.Q, cplxFn func(cplx.C, rational.Q) cplx.C) vm.BuiltinFunc {
	return func(m *vm.VM, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return value.NewError(value.ErrType, 0, "bad arguments"), nil
		}
		eps, ok := argQ(args, 1)
		if !ok {
			return value.NewError(value.ErrType, 0, "bad arguments"), nil
		}
		if args[0].Kind == value.KindComplex {
			return value.Complex(cplxFn(args[0].Cx, eps)), nil
		}
		x, ok := argQ(args, 0)
		if !ok {
			return value.NewError(value.ErrType, 0, "bad arguments"), nil
		}
		return value.Number(realFn(x, eps)), nil
	}
}

// parseDecimal parses a signed base-10 decimal string (an optional
// exponent is accepted; base prefixes are not) into an exact rational for
// the tonumber() builtin.
func parseDecimal(s string) (rational.Q, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return rational.FromInt64(i), nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return rational.Q{}, err
	}
	lit, ok := lexer.ParseNumber(strings.TrimLeft(s, "+-"))
	if !ok {
		return rational.Q{}, fmt.Errorf("not a number: %s", s)
	}
	if strings.HasPrefix(s, "-") {
		return lit.Value.Neg(), nil
	}
	return lit.Value, nil
}
