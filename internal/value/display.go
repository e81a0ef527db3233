package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/kr/pretty"
	"github.com/kr/text"

	"calc/internal/config"
	"calc/internal/rational"
)

// PrintMode mirrors spec.md §4.E's print(v, mode) modes.
type PrintMode int

const (
	ModeNormal PrintMode = iota
	ModeDebug
	ModeRepr
)

// ObjectPrinter lets the object system register a print/repr override,
// per spec.md §4.G's mention of `print` among overridable operators.
var ObjectPrinter func(o *Object, mode PrintMode, cfg *config.Config) (string, bool)

// Print renders v according to mode and the configuration record.
func Print(v Value, mode PrintMode, cfg *config.Config) string {
	if mode == ModeDebug {
		return debugDump(v)
	}
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindNumber:
		return formatNumber(v.Num, cfg)
	case KindComplex:
		re := formatNumber(v.Cx.Re, cfg)
		im := formatNumber(v.Cx.Im.Abs(), cfg)
		sign := "+"
		if v.Cx.Im.IsNeg() {
			sign = "-"
		}
		return re + sign + im + "i"
	case KindString:
		s, _ := v.AsString()
		if mode == ModeRepr {
			return strconv.Quote(s.String())
		}
		return s.String()
	case KindList:
		return formatList(v, mode, cfg)
	case KindMatrix:
		return formatMatrix(v, mode, cfg)
	case KindAssoc:
		return formatAssoc(v, mode, cfg)
	case KindObject:
		o, _ := v.AsObject()
		if ObjectPrinter != nil {
			if s, ok := ObjectPrinter(o, mode, cfg); ok {
				return s
			}
		}
		return fmt.Sprintf("%s{...}", o.TypeID)
	case KindFile:
		f, _ := v.AsFile()
		return "<file " + f.Resource.Describe() + ">"
	case KindBlock:
		b, _ := v.AsBlock()
		return fmt.Sprintf("<block %s>", humanize.Bytes(uint64(len(b.Data))))
	case KindRandstate:
		return "<randstate>"
	case KindError:
		e, _ := v.AsError()
		if e.Message != "" {
			return fmt.Sprintf("Error(%s:%d, %q)", e.Kind, e.Code, e.Message)
		}
		return fmt.Sprintf("Error(%s:%d)", e.Kind, e.Code)
	default:
		return "?"
	}
}

func debugDump(v Value) string {
	switch v.Kind {
	case KindNumber:
		return pretty.Sprintf("Number{%# v}", v.Num)
	case KindComplex:
		return pretty.Sprintf("Complex{%# v}", v.Cx)
	case KindList:
		l, _ := v.AsList()
		elems := make([]string, 0, l.Len())
		l.Each(func(e Value) { elems = append(elems, debugDump(e)) })
		return "List" + text.Indent("[\n"+strings.Join(elems, ",\n")+"\n]", "  ")
	case KindObject:
		o, _ := v.AsObject()
		return pretty.Sprintf("%s%# v", o.TypeID, o.Fields)
	default:
		return fmt.Sprintf("%s(%s)", v.Kind, Print(v, ModeNormal, config.Default()))
	}
}

func pow10(n int) rational.Q {
	r := rational.FromInt64(1)
	ten := rational.FromInt64(10)
	for i := 0; i < n; i++ {
		r = r.Mul(ten)
	}
	return r
}

// formatNumber renders a rational per the configuration's Mode, Display
// precision, OutRound rounding policy, and Tilde/Grouping flags.
func formatNumber(q rational.Q, cfg *config.Config) string {
	if cfg == nil {
		cfg = config.Default()
	}
	switch cfg.Mode {
	case config.ModeFraction:
		return q.String()
	case config.ModeInteger:
		ip := q.IntPart()
		s := ip.String()
		if cfg.Tilde && !q.FracPart().IsZero() {
			s = "~" + s
		}
		return s
	case config.ModeHex, config.ModeOctal, config.ModeBinary:
		return formatIntBase(q, cfg)
	case config.ModeExponential:
		return formatExponential(q, cfg)
	default: // ModeDecimal, ModeReal, ModeString
		return formatDecimal(q, cfg)
	}
}

func formatIntBase(q rational.Q, cfg *config.Config) string {
	if !q.IsInt() {
		return formatDecimal(q, cfg)
	}
	base := 16
	prefix := "0x"
	switch cfg.Mode {
	case config.ModeOctal:
		base, prefix = 8, "0"
	case config.ModeBinary:
		base, prefix = 2, "0b"
	}
	sign := ""
	if q.IsNeg() {
		sign = "-"
	}
	n, ok := q.Num().Uint64()
	var digits string
	if ok {
		digits = strconv.FormatUint(n, base)
	} else {
		digits = q.Num().String() // astronomically large; base-10 fallback
	}
	return sign + prefix + digits
}

func formatExponential(q rational.Q, cfg *config.Config) string {
	if q.IsZero() {
		return "0e+00"
	}
	sign := ""
	abs := q
	if q.IsNeg() {
		sign = "-"
		abs = q.Abs()
	}
	exp := 0
	for abs.Cmp(rational.FromInt64(10)) >= 0 {
		abs = abs.Quo(rational.FromInt64(10))
		exp++
	}
	for abs.Cmp(rational.FromInt64(1)) < 0 {
		abs = abs.Mul(rational.FromInt64(10))
		exp--
	}
	mantissa := formatDecimal(abs, cfg)
	return fmt.Sprintf("%s%se%+03d", sign, mantissa, exp)
}

// formatDecimal renders |q| to cfg.Display fractional digits, rounding the
// scaled value per cfg.OutRound and marking the tilde prefix when the
// rendering is not exact (spec.md §6 `tilde`, §9's open question on tilde
// semantics under non-standard rounding).
func formatDecimal(q rational.Q, cfg *config.Config) string {
	neg := q.IsNeg()
	abs := q.Abs()
	scale := pow10(cfg.Display)
	scaled := abs.Mul(scale)
	rounded, _ := scaled.QuoMod(rational.FromInt64(1), cfg.OutRound)
	inexact := !scaled.Sub(rounded).IsZero()

	digits := rounded.Num().String()
	for len(digits) <= cfg.Display {
		digits = "0" + digits
	}
	intPart := digits[:len(digits)-cfg.Display]
	fracPart := digits[len(digits)-cfg.Display:]

	if !cfg.FullZero {
		fracPart = strings.TrimRight(fracPart, "0")
	}
	if !cfg.LeadZero {
		trimmed := strings.TrimLeft(intPart, "0")
		if trimmed == "" && fracPart == "" {
			trimmed = "0"
		}
		intPart = trimmed
	}
	if cfg.Grouping {
		intPart = groupThousands(intPart)
	}

	var sb strings.Builder
	if cfg.Tilde && inexact {
		sb.WriteByte('~')
	}
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(intPart)
	if fracPart != "" {
		sb.WriteByte('.')
		sb.WriteString(fracPart)
	}
	return sb.String()
}

func groupThousands(s string) string {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return s // astronomically large integer part; skip grouping
	}
	return humanize.Comma(int64(n))
}

func formatList(v Value, mode PrintMode, cfg *config.Config) string {
	l, _ := v.AsList()
	parts := make([]string, 0, l.Len())
	n := 0
	l.Each(func(e Value) {
		if cfg.MaxPrint > 0 && n >= cfg.MaxPrint {
			return
		}
		parts = append(parts, Print(e, mode, cfg))
		n++
	})
	body := strings.Join(parts, ", ")
	if cfg.MaxPrint > 0 && l.Len() > cfg.MaxPrint {
		body += ", ..."
	}
	return text.Indent("{"+body+"}", strings.Repeat(" ", 0))
}

func formatMatrix(v Value, mode PrintMode, cfg *config.Config) string {
	m, _ := v.AsMatrix()
	if len(m.Lo) != 2 {
		parts := make([]string, len(m.Data))
		for i, e := range m.Data {
			parts[i] = Print(e, mode, cfg)
		}
		return "mat[" + strings.Join(parts, ", ") + "]"
	}
	rows := m.Hi[0] - m.Lo[0] + 1
	cols := m.Hi[1] - m.Lo[1] + 1
	tab := cfg.Tab
	if tab <= 0 {
		tab = 1
	}
	indent := strings.Repeat(" ", tab)
	var sb strings.Builder
	sb.WriteString("mat[\n")
	for r := 0; r < rows; r++ {
		sb.WriteString(indent)
		rowParts := make([]string, cols)
		for c := 0; c < cols; c++ {
			val, _ := m.Get([]int{m.Lo[0] + r, m.Lo[1] + c})
			rowParts[c] = Print(val, mode, cfg)
		}
		sb.WriteString(strings.Join(rowParts, ", "))
		sb.WriteString("\n")
	}
	sb.WriteString("]")
	return sb.String()
}

func formatAssoc(v Value, mode PrintMode, cfg *config.Config) string {
	a, _ := v.AsAssoc()
	parts := make([]string, 0, a.Len())
	a.Each(func(key []Value, val Value) {
		ks := make([]string, len(key))
		for i, k := range key {
			ks[i] = Print(k, mode, cfg)
		}
		parts = append(parts, "["+strings.Join(ks, ",")+"] = "+Print(val, mode, cfg))
	})
	return "assoc{" + strings.Join(parts, "; ") + "}"
}
