package ast

// Walk traverses the AST starting from node, calling fn for each node.
// If fn returns false, Walk stops traversing that branch.
func Walk(node Node, fn func(Node) bool) {
	if !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Statements {
			Walk(stmt, fn)
		}

	case *VarDeclaration:
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *ProcedureDecl:
		for _, param := range n.Params {
			if param.DefaultValue != nil {
				Walk(param.DefaultValue, fn)
			}
		}
		walkStmts(n.Body, fn)

	case *FunctionDecl:
		for _, param := range n.Params {
			if param.DefaultValue != nil {
				Walk(param.DefaultValue, fn)
			}
		}
		walkStmts(n.Body, fn)

	case *Assignment:
		if n.Target != nil {
			Walk(n.Target, fn)
		}
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *ProcedureCall:
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *If:
		if n.Condition != nil {
			Walk(n.Condition, fn)
		}
		walkStmts(n.ThenBranch, fn)
		for _, branch := range n.ElseIfBranches {
			if branch.Condition != nil {
				Walk(branch.Condition, fn)
			}
			walkStmts(branch.Body, fn)
		}
		walkStmts(n.ElseBranch, fn)

	case *For:
		if n.From != nil {
			Walk(n.From, fn)
		}
		if n.To != nil {
			Walk(n.To, fn)
		}
		if n.Step != nil {
			Walk(n.Step, fn)
		}
		walkStmts(n.Body, fn)

	case *ForEach:
		if n.Collection != nil {
			Walk(n.Collection, fn)
		}
		walkStmts(n.Body, fn)

	case *While:
		if n.Condition != nil {
			Walk(n.Condition, fn)
		}
		walkStmts(n.Body, fn)

	case *Return:
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *Break, *Continue, *Raise:
		// No children to traverse

	case *Try:
		walkStmts(n.TryBlock, fn)
		walkStmts(n.CatchBlock, fn)

	case *MemberAccess:
		if n.Object != nil {
			Walk(n.Object, fn)
		}

	case *Index:
		if n.Object != nil {
			Walk(n.Object, fn)
		}
		if n.Key != nil {
			Walk(n.Key, fn)
		}

	case *Call:
		if n.Function != nil {
			Walk(n.Function, fn)
		}
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *New:
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *Binary:
		if n.Left != nil {
			Walk(n.Left, fn)
		}
		if n.Right != nil {
			Walk(n.Right, fn)
		}

	case *Unary:
		if n.Operand != nil {
			Walk(n.Operand, fn)
		}

	case *Ternary:
		if n.Condition != nil {
			Walk(n.Condition, fn)
		}
		if n.Then != nil {
			Walk(n.Then, fn)
		}
		if n.Else != nil {
			Walk(n.Else, fn)
		}

	case *ArrayLit:
		for _, elem := range n.Elements {
			Walk(elem, fn)
		}

	case *StructureLit:
		for _, field := range n.Fields {
			if field.Value != nil {
				Walk(field.Value, fn)
			}
		}

	// Leaf nodes (Identifier, literals) don't need traversal
	case *Identifier, *NumberLit, *StringLit, *BoolLit, *DateLit, *UndefinedLit, *NullLit:
		// No children to traverse
	}
}

func walkStmts(stmts []Stmt, fn func(Node) bool) {
	for _, stmt := range stmts {
		Walk(stmt, fn)
	}
}
