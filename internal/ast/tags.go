package ast

// Tag names a node kind.
type Tag string

// Layer is one of the nested language subsets. Each layer's tag set is a
// strict superset of the previous layer's. The zero Layer is unset.
type Layer int

const (
	LayerData Layer = iota + 1
	LayerExpression
	LayerStatement
)

func (l Layer) String() string {
	switch l {
	case LayerData:
		return "data"
	case LayerExpression:
		return "expression"
	case LayerStatement:
		return "statement"
	}
	return "unknown"
}

// OperandKind describes the shape of a single operand.
type OperandKind int

const (
	OpNode OperandKind = iota
	OpOptNode
	OpNodes
	OpString
	OpOptString
	OpLiteral
	OpParts
)

// Data layer.
const (
	Data   Tag = "data"
	Array  Tag = "array"
	Record Tag = "record"
	Prop   Tag = "prop"
)

// Expression layer.
const (
	Use       Tag = "use"
	Get       Tag = "get"
	Index     Tag = "index"
	Call      Tag = "call"
	TagCall   Tag = "tag"
	Quasi     Tag = "quasi"
	Cond      Tag = "cond"
	Spread    Tag = "spread"
	SpreadObj Tag = "spreadObj"
	TypeOf    Tag = "typeof"
	Void      Tag = "void"

	PrePlus  Tag = "pre:+"
	PreMinus Tag = "pre:-"
	PreBNot  Tag = "pre:~"
	PreNot   Tag = "pre:!"

	Pow   Tag = "**"
	Mul   Tag = "*"
	Div   Tag = "/"
	Mod   Tag = "%"
	Add   Tag = "+"
	Sub   Tag = "-"
	Shl   Tag = "<<"
	Shr   Tag = ">>"
	UShr  Tag = ">>>"
	Lt    Tag = "<"
	Le    Tag = "<="
	Gt    Tag = ">"
	Ge    Tag = ">="
	StrEq Tag = "==="
	StrNe Tag = "!=="
	BAnd  Tag = "&"
	BXor  Tag = "^"
	BOr   Tag = "|"
	And   Tag = "&&"
	Or    Tag = "||"
)

// Statement layer.
const (
	Module        Tag = "module"
	ExportDefault Tag = "exportDefault"
	Import        Tag = "import"
	Let           Tag = "let"
	Const         Tag = "const"
	Bind          Tag = "bind"
	Def           Tag = "def"
	Block         Tag = "block"
	If            Tag = "if"
	For           Tag = "for"
	ForOf         Tag = "forOf"
	While         Tag = "while"
	Switch        Tag = "switch"
	Clause        Tag = "clause"
	Case          Tag = "case"
	Default       Tag = "default"
	Label         Tag = "label"
	Break         Tag = "break"
	Continue      Tag = "continue"
	Return        Tag = "return"
	Throw         Tag = "throw"
	Try           Tag = "try"
	Catch         Tag = "catch"
	Finally       Tag = "finally"
	Lambda        Tag = "lambda"
	Arrow         Tag = "arrow"
	FunctionDecl  Tag = "functionDecl"
	FunctionExpr  Tag = "functionExpr"

	Assign     Tag = "="
	MulAssign  Tag = "*="
	DivAssign  Tag = "/="
	ModAssign  Tag = "%="
	AddAssign  Tag = "+="
	SubAssign  Tag = "-="
	ShlAssign  Tag = "<<="
	ShrAssign  Tag = ">>="
	UShrAssign Tag = ">>>="
	AndAssign  Tag = "&="
	XorAssign  Tag = "^="
	OrAssign   Tag = "|="
	PowAssign  Tag = "**="

	// Patterns.
	MatchData    Tag = "matchData"
	MatchArray   Tag = "matchArray"
	MatchRecord  Tag = "matchRecord"
	MatchProp    Tag = "matchProp"
	OptionalProp Tag = "optionalProp"
	RestObj      Tag = "restObj"
	Optional     Tag = "optional"
	Rest         Tag = "rest"
)

type kindInfo struct {
	layer  Layer
	schema []OperandKind
}

var (
	unary  = []OperandKind{OpNode}
	binary = []OperandKind{OpNode, OpNode}
)

var kinds = map[Tag]kindInfo{
	Data:   {LayerData, []OperandKind{OpLiteral}},
	Array:  {LayerData, []OperandKind{OpNodes}},
	Record: {LayerData, []OperandKind{OpNodes}},
	Prop:   {LayerData, []OperandKind{OpString, OpNode}},

	Use:       {LayerExpression, []OperandKind{OpString}},
	Get:       {LayerExpression, []OperandKind{OpNode, OpString}},
	Index:     {LayerExpression, binary},
	Call:      {LayerExpression, []OperandKind{OpNode, OpNodes}},
	TagCall:   {LayerExpression, binary},
	Quasi:     {LayerExpression, []OperandKind{OpParts}},
	Cond:      {LayerExpression, []OperandKind{OpNode, OpNode, OpNode}},
	Spread:    {LayerExpression, unary},
	SpreadObj: {LayerExpression, unary},
	TypeOf:    {LayerExpression, unary},
	Void:      {LayerExpression, unary},
	PrePlus:   {LayerExpression, unary},
	PreMinus:  {LayerExpression, unary},
	PreBNot:   {LayerExpression, unary},
	PreNot:    {LayerExpression, unary},
	Pow:       {LayerExpression, binary},
	Mul:       {LayerExpression, binary},
	Div:       {LayerExpression, binary},
	Mod:       {LayerExpression, binary},
	Add:       {LayerExpression, binary},
	Sub:       {LayerExpression, binary},
	Shl:       {LayerExpression, binary},
	Shr:       {LayerExpression, binary},
	UShr:      {LayerExpression, binary},
	Lt:        {LayerExpression, binary},
	Le:        {LayerExpression, binary},
	Gt:        {LayerExpression, binary},
	Ge:        {LayerExpression, binary},
	StrEq:     {LayerExpression, binary},
	StrNe:     {LayerExpression, binary},
	BAnd:      {LayerExpression, binary},
	BXor:      {LayerExpression, binary},
	BOr:       {LayerExpression, binary},
	And:       {LayerExpression, binary},
	Or:        {LayerExpression, binary},

	Module:        {LayerStatement, []OperandKind{OpNodes}},
	ExportDefault: {LayerStatement, unary},
	Import:        {LayerStatement, []OperandKind{OpNode, OpString}},
	Let:           {LayerStatement, []OperandKind{OpNodes}},
	Const:         {LayerStatement, []OperandKind{OpNodes}},
	Bind:          {LayerStatement, binary},
	Def:           {LayerStatement, []OperandKind{OpString}},
	Block:         {LayerStatement, []OperandKind{OpNodes}},
	If:            {LayerStatement, []OperandKind{OpNode, OpNode, OpOptNode}},
	For:           {LayerStatement, []OperandKind{OpOptNode, OpOptNode, OpOptNode, OpNode}},
	ForOf:         {LayerStatement, []OperandKind{OpString, OpNode, OpNode, OpNode}},
	While:         {LayerStatement, binary},
	Switch:        {LayerStatement, []OperandKind{OpNode, OpNodes}},
	Clause:        {LayerStatement, []OperandKind{OpNodes, OpNode}},
	Case:          {LayerStatement, unary},
	Default:       {LayerStatement, nil},
	Label:         {LayerStatement, []OperandKind{OpString, OpNode}},
	Break:         {LayerStatement, []OperandKind{OpOptString}},
	Continue:      {LayerStatement, []OperandKind{OpOptString}},
	Return:        {LayerStatement, []OperandKind{OpOptNode}},
	Throw:         {LayerStatement, unary},
	Try:           {LayerStatement, []OperandKind{OpNode, OpOptNode, OpOptNode}},
	Catch:         {LayerStatement, []OperandKind{OpOptNode, OpNode}},
	Finally:       {LayerStatement, unary},
	Lambda:        {LayerStatement, []OperandKind{OpNodes, OpNode}},
	Arrow:         {LayerStatement, []OperandKind{OpNodes, OpNode}},
	FunctionDecl:  {LayerStatement, []OperandKind{OpNode, OpNodes, OpNode}},
	FunctionExpr:  {LayerStatement, []OperandKind{OpOptNode, OpNodes, OpNode}},

	Assign:     {LayerStatement, binary},
	MulAssign:  {LayerStatement, binary},
	DivAssign:  {LayerStatement, binary},
	ModAssign:  {LayerStatement, binary},
	AddAssign:  {LayerStatement, binary},
	SubAssign:  {LayerStatement, binary},
	ShlAssign:  {LayerStatement, binary},
	ShrAssign:  {LayerStatement, binary},
	UShrAssign: {LayerStatement, binary},
	AndAssign:  {LayerStatement, binary},
	XorAssign:  {LayerStatement, binary},
	OrAssign:   {LayerStatement, binary},
	PowAssign:  {LayerStatement, binary},

	MatchData:    {LayerStatement, []OperandKind{OpLiteral}},
	MatchArray:   {LayerStatement, []OperandKind{OpNodes}},
	MatchRecord:  {LayerStatement, []OperandKind{OpNodes}},
	MatchProp:    {LayerStatement, []OperandKind{OpString, OpNode}},
	OptionalProp: {LayerStatement, []OperandKind{OpString, OpNode, OpNode}},
	RestObj:      {LayerStatement, unary},
	Optional:     {LayerStatement, binary},
	Rest:         {LayerStatement, unary},
}

// Known reports whether tag is part of the closed tag set.
func Known(tag Tag) bool {
	_, ok := kinds[tag]
	return ok
}

// LayerOf returns the lowest layer that contains tag.
func LayerOf(tag Tag) (Layer, bool) {
	info, ok := kinds[tag]
	return info.layer, ok
}

// Schema returns the operand shape of tag.
func Schema(tag Tag) ([]OperandKind, bool) {
	info, ok := kinds[tag]
	return info.schema, ok
}

// TagsOf returns every tag whose lowest layer is exactly l.
func TagsOf(l Layer) []Tag {
	var tags []Tag
	for tag, info := range kinds {
		if info.layer == l {
			tags = append(tags, tag)
		}
	}
	return tags
}

// CompoundAssignments maps each compound assignment tag to its binary operator.
var CompoundAssignments = map[Tag]Tag{
	MulAssign:  Mul,
	DivAssign:  Div,
	ModAssign:  Mod,
	AddAssign:  Add,
	SubAssign:  Sub,
	ShlAssign:  Shl,
	ShrAssign:  Shr,
	UShrAssign: UShr,
	AndAssign:  BAnd,
	XorAssign:  BXor,
	OrAssign:   BOr,
	PowAssign:  Pow,
}
