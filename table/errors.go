package table

import (
	"fmt"

	"github.com/soderasen-au/go-common/util"
)

// The three fatal error kinds keep a fixed context tag so callers (and log
// readers) can tell a bad recipe from a bad template from a failed write.
// Messages always carry the sheet name and, where known, row/column/field.

func ConfigError(sheet, msg string) *util.Result {
	return util.MsgError("ConfigError", fmt.Sprintf("sheet `%s`: %s", sheet, msg))
}

func LayoutError(sheet, msg string) *util.Result {
	return util.MsgError("LayoutError", fmt.Sprintf("sheet `%s`: %s", sheet, msg))
}

func WriteError(sheet string, row, col int, field, msg string) *util.Result {
	loc := fmt.Sprintf("sheet `%s` (%d, %d)", sheet, row, col)
	if field != "" {
		loc += fmt.Sprintf(" field `%s`", field)
	}
	return util.MsgError("WriteError", loc+": "+msg)
}
