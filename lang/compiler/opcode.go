// Package compiler lowers a parsed program into a Chunk of bytecode that the
// machine package can execute.
package compiler

// OpCode identifies a single bytecode instruction.
type OpCode uint8

//nolint:revive
const (
	// constants
	LOAD_CONSTANT OpCode = iota
	LOAD_TRUE
	LOAD_FALSE
	LOAD_NIL

	// equality and comparison
	NOT_EQUAL
	EQUAL
	GREATER
	GREATER_EQUAL
	LESS
	LESS_EQUAL

	// arithmetic and unary
	NOT
	NEGATE
	INC
	DEC
	ADD
	SUBTRACT
	MULTIPLY
	DIVIDE
	MODULO
	POWER

	// bitwise
	BITWISE_NOT
	BITWISE_AND
	BITWISE_OR
	BITWISE_XOR
	LEFT_SHIFT
	RIGHT_SHIFT

	// control flow
	JUMP
	JUMP_IF_FALSE
	POP_JUMP_IF_FALSE
	POP_JUMP_IF_EQUAL
	JUMP_IF_NOT_NIL
	LOOP

	// iterators
	ITER_INIT
	ITER_NEXT

	// variables
	GET_GLOBAL
	SET_GLOBAL
	DEFINE_GLOBAL
	GET_LOCAL
	SET_LOCAL

	// functions
	CALL
	RETURN
	CLOSURE
	CLOSE_UPVALUE
	LOAD_UPVALUE
	STORE_UPVALUE

	// classes
	CLASS
	INHERIT
	LOAD_PROPERTY
	LOAD_PROPERTY_SAFE
	STORE_PROPERTY
	STORE_PROPERTY_SAFE
	METHOD
	STATIC_METHOD
	INVOKE
	INVOKE_SAFE
	GET_SUPER
	SUPER_INVOKE

	// collections
	LOAD_SUBSCRIPT
	LOAD_SUBSCRIPT_SAFE
	STORE_SUBSCRIPT
	STORE_SUBSCRIPT_SAFE
	LIST
	MAP
	ARRAY

	// stack manipulation. DUP_TWO duplicates the top two values as a pair:
	// [a b] -> [a b a b]. SWAP_THREE and SWAP_FOUR keep the top value fixed
	// and reorder what's beneath it, used by compound property/subscript
	// increment-decrement to keep the pre-increment value reachable under
	// the store operands: SWAP_THREE is [a b c] -> [b a c] (swap the pair
	// below top); SWAP_FOUR is [a b c d] -> [c a b d] (rotate the triple
	// below top, c to the bottom).
	POP
	DUP
	DUP_TWO
	SWAP
	SWAP_THREE
	SWAP_FOUR

	// miscellaneous
	PRINT
	BUILD_STRING
	IMPORT

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	LOAD_CONSTANT:       "load_constant",
	LOAD_TRUE:           "load_true",
	LOAD_FALSE:          "load_false",
	LOAD_NIL:            "load_nil",
	NOT_EQUAL:           "not_equal",
	EQUAL:               "equal",
	GREATER:             "greater",
	GREATER_EQUAL:       "greater_equal",
	LESS:                "less",
	LESS_EQUAL:          "less_equal",
	NOT:                 "not",
	NEGATE:              "negate",
	INC:                 "inc",
	DEC:                 "dec",
	ADD:                 "add",
	SUBTRACT:            "subtract",
	MULTIPLY:            "multiply",
	DIVIDE:              "divide",
	MODULO:              "modulo",
	POWER:               "power",
	BITWISE_NOT:         "bitwise_not",
	BITWISE_AND:         "bitwise_and",
	BITWISE_OR:          "bitwise_or",
	BITWISE_XOR:         "bitwise_xor",
	LEFT_SHIFT:          "left_shift",
	RIGHT_SHIFT:         "right_shift",
	JUMP:                "jump",
	JUMP_IF_FALSE:       "jump_if_false",
	POP_JUMP_IF_FALSE:   "pop_jump_if_false",
	POP_JUMP_IF_EQUAL:   "pop_jump_if_equal",
	JUMP_IF_NOT_NIL:     "jump_if_not_nil",
	LOOP:                "loop",
	ITER_INIT:           "iter_init",
	ITER_NEXT:           "iter_next",
	GET_GLOBAL:          "get_global",
	SET_GLOBAL:          "set_global",
	DEFINE_GLOBAL:       "define_global",
	GET_LOCAL:           "get_local",
	SET_LOCAL:           "set_local",
	CALL:                "call",
	RETURN:              "return",
	CLOSURE:             "closure",
	CLOSE_UPVALUE:       "close_upvalue",
	LOAD_UPVALUE:        "load_upvalue",
	STORE_UPVALUE:       "store_upvalue",
	CLASS:               "class",
	INHERIT:             "inherit",
	LOAD_PROPERTY:       "load_property",
	LOAD_PROPERTY_SAFE:  "load_property_safe",
	STORE_PROPERTY:      "store_property",
	STORE_PROPERTY_SAFE: "store_property_safe",
	METHOD:              "method",
	STATIC_METHOD:       "static_method",
	INVOKE:              "invoke",
	INVOKE_SAFE:         "invoke_safe",
	GET_SUPER:           "get_super",
	SUPER_INVOKE:        "super_invoke",
	LOAD_SUBSCRIPT:       "load_subscript",
	LOAD_SUBSCRIPT_SAFE:  "load_subscript_safe",
	STORE_SUBSCRIPT:      "store_subscript",
	STORE_SUBSCRIPT_SAFE: "store_subscript_safe",
	LIST:                 "list",
	MAP:                 "map",
	ARRAY:               "array",
	POP:                 "pop",
	DUP:                 "dup",
	DUP_TWO:             "dup_two",
	SWAP:                "swap",
	SWAP_THREE:          "swap_three",
	SWAP_FOUR:           "swap_four",
	PRINT:               "print",
	BUILD_STRING:        "build_string",
	IMPORT:              "import",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "unknown"
}

// operandBytes reports how many bytes of operand follow this opcode in the
// instruction stream. -1 marks an opcode whose operand shape needs special
// handling in the disassembler (CLOSURE's trailing upvalue table, the
// paired name/argc operands of INVOKE and SUPER_INVOKE).
func (op OpCode) operandBytes() int {
	switch op {
	case LOAD_CONSTANT, GET_GLOBAL, SET_GLOBAL, DEFINE_GLOBAL, GET_LOCAL, SET_LOCAL,
		CALL, LOAD_UPVALUE, STORE_UPVALUE, CLASS, LOAD_PROPERTY,
		LOAD_PROPERTY_SAFE, STORE_PROPERTY, STORE_PROPERTY_SAFE, METHOD,
		STATIC_METHOD, GET_SUPER, LIST, MAP, ARRAY,
		BUILD_STRING, IMPORT:
		return 1
	case JUMP, JUMP_IF_FALSE, POP_JUMP_IF_FALSE, POP_JUMP_IF_EQUAL,
		JUMP_IF_NOT_NIL, LOOP, ITER_NEXT:
		return 2
	case CLOSURE, INVOKE, INVOKE_SAFE, SUPER_INVOKE:
		return -1
	default:
		return 0
	}
}
