package workbook

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-invoice/sheet"
)

const (
	placeholderBegin = "${"
	placeholderEnd   = "}"
)

// TextReplacer substitutes `${...}` placeholders in template text cells with
// values evaluated against the document metadata (invoice number, consignee,
// dates). Compiled programs are cached, the same recipe renders many
// documents.
type TextReplacer struct {
	cache sync.Map // expression -> *vm.Program
}

func NewTextReplacer() *TextReplacer { return &TextReplacer{} }

func (t *TextReplacer) compile(expression string, env map[string]any) (*vm.Program, error) {
	if cached, ok := t.cache.Load(expression); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(expression, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	t.cache.Store(expression, program)
	return program, nil
}

func (t *TextReplacer) eval(expression string, env map[string]any) (any, *util.Result) {
	program, err := t.compile(expression, env)
	if err != nil {
		return nil, util.Error("Compile", err)
	}
	v, err := expr.Run(program, env)
	if err != nil {
		return nil, util.Error("Run", err)
	}
	return v, nil
}

// Render substitutes every placeholder in one string. Expressions evaluating
// to nil render as empty text.
func (t *TextReplacer) Render(s string, env map[string]any) (string, *util.Result) {
	if !strings.Contains(s, placeholderBegin) {
		return s, nil
	}

	var out strings.Builder
	remaining := s
	for {
		start := strings.Index(remaining, placeholderBegin)
		if start < 0 {
			break
		}
		end := strings.Index(remaining[start:], placeholderEnd)
		if end < 0 {
			break
		}
		end += start

		out.WriteString(remaining[:start])
		expression := remaining[start+len(placeholderBegin) : end]
		v, res := t.eval(expression, env)
		if res != nil {
			return "", res.With("eval")
		}
		if v != nil {
			out.WriteString(fmt.Sprint(v))
		}
		remaining = remaining[end+len(placeholderEnd):]
	}
	out.WriteString(remaining)
	return out.String(), nil
}

// ReplaceSheet rewrites placeholder cells within rows [1, maxRow] of the
// sheet (all populated rows when maxRow < 1) and returns how many cells
// changed.
func (t *TextReplacer) ReplaceSheet(ws *sheet.Sheet, maxRow int, env map[string]any, logger *zerolog.Logger) (int, *util.Result) {
	rows, res := ws.Rows()
	if res != nil {
		return 0, res.With("Rows")
	}

	replaced := 0
	for r, row := range rows {
		rowNum := r + 1
		if maxRow > 0 && rowNum > maxRow {
			break
		}
		for c, v := range row {
			if !strings.Contains(v, placeholderBegin) {
				continue
			}
			rendered, res := t.Render(v, env)
			if res != nil {
				return replaced, res.With("Render")
			}
			if rendered == v {
				continue
			}
			if res := ws.SetValue(rowNum, c+1, rendered); res != nil {
				return replaced, res.With("SetValue")
			}
			replaced++
		}
	}
	if replaced > 0 {
		logger.Debug().Msgf("sheet `%s`: replaced %d placeholder cells", ws.Name(), replaced)
	}
	return replaced, nil
}
