package parser

import "minivm/pkg/lexer"

type Production struct {
	LHS string
	RHS []string
}

type ParsingTable map[string]map[lexer.TokenType]Production

var grammar = []Production{
	{}, // 0 - empty
	{LHS: "Program", RHS: []string{"StmtList", "@program"}}, // 1

	{LHS: "StmtList", RHS: []string{"Stmt", "StmtList"}}, // 2
	{LHS: "StmtList", RHS: []string{"ε"}},                // 3

	{LHS: "Stmt", RHS: []string{"VarDecl"}},   // 4
	{LHS: "Stmt", RHS: []string{"Assign"}},    // 5
	{LHS: "Stmt", RHS: []string{"IfStmt"}},    // 6
	{LHS: "Stmt", RHS: []string{"WhileStmt"}}, // 7
	{LHS: "Stmt", RHS: []string{"ForStmt"}},   // 8
	{LHS: "Stmt", RHS: []string{"Block"}},     // 9

	{LHS: "VarDecl", RHS: []string{"var", "id", "@name", "VarInit", ";", "@var_decl"}}, // 10

	{LHS: "VarInit", RHS: []string{"=", "Expr"}}, // 11
	{LHS: "VarInit", RHS: []string{"@no_init"}},  // 12

	{LHS: "Assign", RHS: []string{"id", "@name", "=", "Expr", ";", "@assign"}}, // 13

	{LHS: "Block", RHS: []string{"{", "@block_start", "StmtList", "}", "@block_end"}}, // 14

	{LHS: "IfStmt", RHS: []string{"if", "(", "Expr", ")", "Block", "ElsePart", "@if"}}, // 15

	{LHS: "ElsePart", RHS: []string{"else", "Block"}}, // 16
	{LHS: "ElsePart", RHS: []string{"@no_else"}},      // 17

	{LHS: "WhileStmt", RHS: []string{"while", "(", "Expr", ")", "Block", "@while"}}, // 18

	{LHS: "ForStmt", RHS: []string{"for", "(", "ForInit", ";", "Expr", ";", "ForStep", ")", "Block", "@for"}}, // 19

	{LHS: "ForInit", RHS: []string{"var", "id", "@name", "VarInit", "@var_decl"}}, // 20
	{LHS: "ForInit", RHS: []string{"id", "@name", "=", "Expr", "@assign"}},        // 21
	{LHS: "ForInit", RHS: []string{"@no_init"}},                                   // 22

	{LHS: "ForStep", RHS: []string{"id", "@name", "=", "Expr", "@assign"}}, // 23
	{LHS: "ForStep", RHS: []string{"@no_init"}},                            // 24

	{LHS: "Expr", RHS: []string{"Sum", "Rel"}}, // 25

	{LHS: "Rel", RHS: []string{"RelOp", "Sum", "@binop"}}, // 26
	{LHS: "Rel", RHS: []string{"ε"}},                      // 27

	{LHS: "RelOp", RHS: []string{"<", "@op"}},  // 28
	{LHS: "RelOp", RHS: []string{">", "@op"}},  // 29
	{LHS: "RelOp", RHS: []string{"<=", "@op"}}, // 30
	{LHS: "RelOp", RHS: []string{">=", "@op"}}, // 31
	{LHS: "RelOp", RHS: []string{"==", "@op"}}, // 32
	{LHS: "RelOp", RHS: []string{"!=", "@op"}}, // 33

	{LHS: "Sum", RHS: []string{"Term", "Sum'"}}, // 34

	{LHS: "Sum'", RHS: []string{"+", "Term", "@add", "Sum'"}}, // 35
	{LHS: "Sum'", RHS: []string{"-", "Term", "@sub", "Sum'"}}, // 36
	{LHS: "Sum'", RHS: []string{"ε"}},                         // 37

	{LHS: "Term", RHS: []string{"Factor", "Term'"}}, // 38

	{LHS: "Term'", RHS: []string{"*", "Factor", "@mul", "Term'"}}, // 39
	{LHS: "Term'", RHS: []string{"/", "Factor", "@div", "Term'"}}, // 40
	{LHS: "Term'", RHS: []string{"ε"}},                            // 41

	{LHS: "Factor", RHS: []string{"num", "@int"}},        // 42
	{LHS: "Factor", RHS: []string{"id", "@ident"}},       // 43
	{LHS: "Factor", RHS: []string{"(", "Expr", ")"}},     // 44
	{LHS: "Factor", RHS: []string{"-", "Factor", "@neg"}}, // 45
}

// NewParsingTable creates and returns a new LL(1) parsing table
func NewParsingTable() ParsingTable {
	stmtStart := []lexer.TokenType{lexer.VAR, lexer.ID, lexer.IF, lexer.WHILE, lexer.FOR, lexer.LBRACE}
	exprStart := []lexer.TokenType{lexer.NUM, lexer.ID, lexer.LPAREN, lexer.MINUS}
	relOps := []lexer.TokenType{lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.EQ, lexer.NE}
	exprEnd := []lexer.TokenType{lexer.SEMICOLON, lexer.RPAREN}

	t := ParsingTable{
		"Program": {
			lexer.EOF: grammar[1],
		},

		"StmtList": {
			lexer.EOF:    grammar[3],
			lexer.RBRACE: grammar[3],
		},

		"Stmt": {
			lexer.VAR:    grammar[4],
			lexer.ID:     grammar[5],
			lexer.IF:     grammar[6],
			lexer.WHILE:  grammar[7],
			lexer.FOR:    grammar[8],
			lexer.LBRACE: grammar[9],
		},

		"VarDecl": {
			lexer.VAR: grammar[10],
		},

		"VarInit": {
			lexer.ASSIGN:    grammar[11],
			lexer.SEMICOLON: grammar[12],
		},

		"Assign": {
			lexer.ID: grammar[13],
		},

		"Block": {
			lexer.LBRACE: grammar[14],
		},

		"IfStmt": {
			lexer.IF: grammar[15],
		},

		"ElsePart": {
			lexer.ELSE: grammar[16],
		},

		"WhileStmt": {
			lexer.WHILE: grammar[18],
		},

		"ForStmt": {
			lexer.FOR: grammar[19],
		},

		"ForInit": {
			lexer.VAR:       grammar[20],
			lexer.ID:        grammar[21],
			lexer.SEMICOLON: grammar[22],
		},

		"ForStep": {
			lexer.ID:     grammar[23],
			lexer.RPAREN: grammar[24],
		},

		"Expr":  {},
		"Rel":   {},
		"Sum":   {},
		"Term":  {},
		"Sum'":  {lexer.PLUS: grammar[35], lexer.MINUS: grammar[36]},
		"Term'": {lexer.MULT: grammar[39], lexer.DIV: grammar[40]},

		"RelOp": {
			lexer.LT: grammar[28],
			lexer.GT: grammar[29],
			lexer.LE: grammar[30],
			lexer.GE: grammar[31],
			lexer.EQ: grammar[32],
			lexer.NE: grammar[33],
		},

		"Factor": {
			lexer.NUM:    grammar[42],
			lexer.ID:     grammar[43],
			lexer.LPAREN: grammar[44],
			lexer.MINUS:  grammar[45],
		},
	}

	for _, tok := range stmtStart {
		t["Program"][tok] = grammar[1]
		t["StmtList"][tok] = grammar[2]
		// else is optional: anything that may follow an if statement selects the empty branch
		t["ElsePart"][tok] = grammar[17]
	}
	t["ElsePart"][lexer.RBRACE] = grammar[17]
	t["ElsePart"][lexer.EOF] = grammar[17]

	for _, tok := range exprStart {
		t["Expr"][tok] = grammar[25]
		t["Sum"][tok] = grammar[34]
		t["Term"][tok] = grammar[38]
	}

	for _, tok := range relOps {
		t["Rel"][tok] = grammar[26]
		t["Sum'"][tok] = grammar[37]
		t["Term'"][tok] = grammar[41]
	}

	for _, tok := range exprEnd {
		t["Rel"][tok] = grammar[27]
		t["Sum'"][tok] = grammar[37]
		t["Term'"][tok] = grammar[41]
	}
	t["Term'"][lexer.PLUS] = grammar[41]
	t["Term'"][lexer.MINUS] = grammar[41]

	return t
}
