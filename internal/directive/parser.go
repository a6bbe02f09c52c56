package directive

// parser builds the node tree from lexer tokens. It knows nothing about
// flags: every branch of every block is parsed.
type parser struct {
	lex   *lexer
	depth int
}

func parse(src string, sentinel byte) ([]Node, error) {
	p := &parser{lex: newLexer(src, sentinel)}
	nodes, _, err := p.parseNodes()
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// parseNodes parses until EOF or, inside a block, until the elif/else/end
// token that ends the current body. That token is returned to the caller.
func (p *parser) parseNodes() ([]Node, token, error) {
	var nodes []Node
	for {
		tok, err := p.lex.next()
		if err != nil {
			return nil, token{}, err
		}
		switch tok.kind {
		case tokEOF:
			return nodes, tok, nil
		case tokText:
			nodes = append(nodes, &Text{Content: tok.val})
		case tokFence:
			nodes = append(nodes, &CodeFence{Content: tok.val})
		case tokSnippet:
			nodes = append(nodes, &CodeSnippet{Content: tok.val})
		case tokFile:
			nodes = append(nodes, &FileGuard{Flag: tok.flag, Pos: p.lex.position(tok.pos)})
		case tokIf:
			block, err := p.parseConditional(tok)
			if err != nil {
				return nil, token{}, err
			}
			nodes = append(nodes, block)
		case tokElif, tokElse, tokEnd:
			if p.depth == 0 {
				return nil, token{}, p.lex.errorf(tok.pos, "%s without matching if", tok.val)
			}
			return nodes, tok, nil
		}
	}
}

func (p *parser) parseConditional(head token) (*Conditional, error) {
	p.depth++
	defer func() { p.depth-- }()

	block := &Conditional{}
	guard := Guard{Kind: GuardIf, Flag: head.flag}
	var elseTok *token
	for {
		body, term, err := p.parseNodes()
		if err != nil {
			return nil, err
		}
		block.Branches = append(block.Branches, Branch{Guard: guard, Body: body})

		switch term.kind {
		case tokEOF:
			return nil, p.lex.errorf(head.pos, "unterminated block %s: missing %cend", head.val, p.lex.sentinel)
		case tokEnd:
			return block, nil
		case tokElif:
			if elseTok != nil {
				return nil, p.lex.errorf(term.pos, "%s after %s", term.val, elseTok.val)
			}
			guard = Guard{Kind: GuardElif, Flag: term.flag}
		case tokElse:
			if elseTok != nil {
				return nil, p.lex.errorf(term.pos, "duplicate %s in block %s", term.val, head.val)
			}
			t := term
			elseTok = &t
			guard = Guard{Kind: GuardElse}
		}
	}
}
