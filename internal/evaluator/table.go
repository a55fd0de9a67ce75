package evaluator

import (
	"fmt"

	"github.com/funvibe/jessie/internal/ast"
)

// tables holds the dispatch table of each layer. Every table extends the
// one below it.
var tables = map[ast.Layer]map[ast.Tag]Handler{}

func init() {
	data := map[ast.Tag]Handler{
		ast.Data:   evalData,
		ast.Array:  evalArray,
		ast.Record: evalRecord,
		ast.Prop:   evalProp,
	}

	expression := extend(data, map[ast.Tag]Handler{
		ast.Use:       evalUse,
		ast.Get:       evalGet,
		ast.Index:     evalNumericIndex,
		ast.Call:      evalCall,
		ast.TagCall:   evalTaggedTemplate,
		ast.Quasi:     evalQuasi,
		ast.Cond:      evalCond,
		ast.Spread:    evalSpread,
		ast.SpreadObj: evalSpread,
		ast.TypeOf:    evalTypeOf,
		ast.Void:      evalVoid,
		ast.PrePlus:   evalPrefix,
		ast.PreMinus:  evalPrefix,
		ast.PreBNot:   evalPrefix,
		ast.PreNot:    evalPrefix,
		ast.And:       evalAnd,
		ast.Or:        evalOr,
	})
	for _, op := range []ast.Tag{
		ast.Pow, ast.Mul, ast.Div, ast.Mod, ast.Add, ast.Sub,
		ast.Shl, ast.Shr, ast.UShr, ast.Lt, ast.Le, ast.Gt, ast.Ge,
		ast.StrEq, ast.StrNe, ast.BAnd, ast.BXor, ast.BOr,
	} {
		expression[op] = evalBinary
	}

	statement := extend(expression, map[ast.Tag]Handler{
		// Unlike the expression layer, any value may be used as an index.
		ast.Index: evalIndex,

		ast.Module:        evalModule,
		ast.ExportDefault: evalExportDefault,
		ast.Import:        evalImport,
		ast.Let:           evalLet,
		ast.Const:         evalConst,
		ast.Bind:          evalBind,
		ast.Def:           evalDef,
		ast.Block:         evalBlock,
		ast.If:            evalIf,
		ast.For:           evalFor,
		ast.ForOf:         evalForOf,
		ast.While:         evalWhile,
		ast.Switch:        evalSwitch,
		ast.Clause:        evalClause,
		ast.Case:          evalCase,
		ast.Default:       evalDefault,
		ast.Label:         evalLabel,
		ast.Break:         evalBreak,
		ast.Continue:      evalContinue,
		ast.Return:        evalReturn,
		ast.Throw:         evalThrow,
		ast.Try:           evalTry,
		ast.Catch:         evalCatch,
		ast.Finally:       evalFinally,
		ast.Lambda:        evalLambda,
		ast.Arrow:         evalLambda,
		ast.FunctionDecl:  evalFunctionDecl,
		ast.FunctionExpr:  evalFunctionExpr,
		ast.Assign:        evalAssign,
	})
	for tag := range ast.CompoundAssignments {
		statement[tag] = evalCompoundAssign
	}
	for _, tag := range []ast.Tag{
		ast.MatchData, ast.MatchArray, ast.MatchRecord, ast.MatchProp,
		ast.OptionalProp, ast.RestObj, ast.Optional, ast.Rest,
	} {
		statement[tag] = evalPatternOutOfPlace
	}

	tables[ast.LayerData] = data
	tables[ast.LayerExpression] = expression
	tables[ast.LayerStatement] = statement

	for layer, table := range tables {
		if err := verifyTable(layer, table); err != nil {
			panic(err)
		}
	}
}

func extend(base, add map[ast.Tag]Handler) map[ast.Tag]Handler {
	out := make(map[ast.Tag]Handler, len(base)+len(add))
	for tag, h := range base {
		out[tag] = h
	}
	for tag, h := range add {
		out[tag] = h
	}
	return out
}

// verifyTable checks that table handles every tag of layer and of the layers
// below it, and nothing from a higher layer.
func verifyTable(layer ast.Layer, table map[ast.Tag]Handler) error {
	for tag := range table {
		l, ok := ast.LayerOf(tag)
		if !ok {
			return fmt.Errorf("%s table: unknown tag %q", layer, tag)
		}
		if l > layer {
			return fmt.Errorf("%s table: tag %q belongs to the %s layer", layer, tag, l)
		}
	}
	for l := ast.LayerData; l <= layer; l++ {
		for _, tag := range ast.TagsOf(l) {
			if _, ok := table[tag]; !ok {
				return fmt.Errorf("%s table: no handler for %q", layer, tag)
			}
		}
	}
	return nil
}

// Handles reports whether the dispatch table of layer has a handler for tag.
func Handles(layer ast.Layer, tag ast.Tag) bool {
	_, ok := tables[layer][tag]
	return ok
}
