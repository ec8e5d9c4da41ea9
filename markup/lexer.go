package markup

import "strings"

type lexState int

const (
	stateData lexState = iota
	stateTagOpen
	stateEndTagOpen
	stateTagName
	stateBeforeAttributeName
	stateAttributeName
	stateAfterAttributeName
	stateBeforeAttributeValue
	stateAttributeValueDoubleQuoted
	stateAttributeValueSingleQuoted
	stateAttributeValueUnquoted
	stateAfterAttributeValueQuoted
	stateSelfClosingStartTag
	stateBogusComment
	stateMarkupDeclarationOpen
	stateMarkupDeclarationHyphen
	stateDoctypeMatch
	stateCDATAMatch
	stateCommentStart
	stateCommentStartDash
	stateComment
	stateCommentEndDash
	stateCommentEnd
	stateCommentEndBang
	stateDoctype
	stateCDATASection
	stateCDATARSQB
	stateCDATARSQBRSQB
	stateRawText
	stateRawTextLessThan
	stateRawTextEndTagOpen
	stateRawTextEndTagName
	stateRawTextEscapeStart
	stateRawTextEscapeStartDash
	stateRawTextEscaped
	stateRawTextEscapedDash
	stateRawTextEscapedDashDash
	stateRawTextEscapedLessThan
	stateRawTextEscapedEndTagOpen
	stateRawTextEscapedEndTagName
	stateRawTextDoubleEscapeStart
	stateRawTextDoubleEscaped
	stateRawTextDoubleEscapedDash
	stateRawTextDoubleEscapedDashDash
	stateRawTextDoubleEscapedLessThan
	stateRawTextDoubleEscapeEnd
	stateEscapableRawText
	stateEscapableRawTextLessThan
	stateEscapableRawTextEndTagOpen
	stateEscapableRawTextEndTagName
)

var lexStateNames = map[lexState]string{
	stateData:                         "Data",
	stateTagOpen:                      "TagOpen",
	stateEndTagOpen:                   "EndTagOpen",
	stateTagName:                      "TagName",
	stateBeforeAttributeName:          "BeforeAttributeName",
	stateAttributeName:                "AttributeName",
	stateAfterAttributeName:           "AfterAttributeName",
	stateBeforeAttributeValue:         "BeforeAttributeValue",
	stateAttributeValueDoubleQuoted:   "AttributeValueDoubleQuoted",
	stateAttributeValueSingleQuoted:   "AttributeValueSingleQuoted",
	stateAttributeValueUnquoted:       "AttributeValueUnquoted",
	stateAfterAttributeValueQuoted:    "AfterAttributeValueQuoted",
	stateSelfClosingStartTag:          "SelfClosingStartTag",
	stateBogusComment:                 "BogusComment",
	stateMarkupDeclarationOpen:        "MarkupDeclarationOpen",
	stateMarkupDeclarationHyphen:      "MarkupDeclarationHyphen",
	stateDoctypeMatch:                 "DoctypeMatch",
	stateCDATAMatch:                   "CDATAMatch",
	stateCommentStart:                 "CommentStart",
	stateCommentStartDash:             "CommentStartDash",
	stateComment:                      "Comment",
	stateCommentEndDash:               "CommentEndDash",
	stateCommentEnd:                   "CommentEnd",
	stateCommentEndBang:               "CommentEndBang",
	stateDoctype:                      "Doctype",
	stateCDATASection:                 "CDATASection",
	stateCDATARSQB:                    "CDATARSQB",
	stateCDATARSQBRSQB:                "CDATARSQBRSQB",
	stateRawText:                      "RawText",
	stateRawTextLessThan:              "RawTextLessThan",
	stateRawTextEndTagOpen:            "RawTextEndTagOpen",
	stateRawTextEndTagName:            "RawTextEndTagName",
	stateRawTextEscapeStart:           "RawTextEscapeStart",
	stateRawTextEscapeStartDash:       "RawTextEscapeStartDash",
	stateRawTextEscaped:               "RawTextEscaped",
	stateRawTextEscapedDash:           "RawTextEscapedDash",
	stateRawTextEscapedDashDash:       "RawTextEscapedDashDash",
	stateRawTextEscapedLessThan:       "RawTextEscapedLessThan",
	stateRawTextEscapedEndTagOpen:     "RawTextEscapedEndTagOpen",
	stateRawTextEscapedEndTagName:     "RawTextEscapedEndTagName",
	stateRawTextDoubleEscapeStart:     "RawTextDoubleEscapeStart",
	stateRawTextDoubleEscaped:         "RawTextDoubleEscaped",
	stateRawTextDoubleEscapedDash:     "RawTextDoubleEscapedDash",
	stateRawTextDoubleEscapedDashDash: "RawTextDoubleEscapedDashDash",
	stateRawTextDoubleEscapedLessThan: "RawTextDoubleEscapedLessThan",
	stateRawTextDoubleEscapeEnd:       "RawTextDoubleEscapeEnd",
	stateEscapableRawText:             "EscapableRawText",
	stateEscapableRawTextLessThan:     "EscapableRawTextLessThan",
	stateEscapableRawTextEndTagOpen:   "EscapableRawTextEndTagOpen",
	stateEscapableRawTextEndTagName:   "EscapableRawTextEndTagName",
}

func (s lexState) String() string {
	if name, ok := lexStateNames[s]; ok {
		return name
	}
	return "Unknown"
}

const (
	doctypeKeyword = "DOCTYPE"
	cdataKeyword   = "[CDATA["
)

// effect is either a token or a diagnostic produced by a step.
type effect struct {
	token Token
	diag  *Diagnostic
}

// lexer holds the whole tokenizer state. step advances it by one
// character and queues what the character produced; nothing is called
// out from inside a transition.
type lexer struct {
	state lexState

	allowComments bool
	allowCDATA    bool
	lowerCase     bool

	effects []effect

	text      strings.Builder
	textStart Position
	textEnd   Position
	hasText   bool

	// ltPos is the '<' that opened the tag, comment or declaration being
	// scanned.
	ltPos Position

	tagName      strings.Builder
	endTag       bool
	selfClosing  bool
	attrs        []Attribute
	endTagAttrs  bool
	inAttr       bool
	attrName     strings.Builder
	attrValue    strings.Builder
	attrHasValue bool
	attrStart    Position
	attrEnd      Position

	// buf collects comment, doctype and CDATA content.
	buf     strings.Builder
	matched int

	// expected is the end tag that leaves RawText or EscapableRawText.
	expected   string
	temp       strings.Builder
	pendingEnd Position
}

func newLexer(o options) *lexer {
	return &lexer{
		allowComments: o.allowComments,
		allowCDATA:    o.allowCDATA,
		lowerCase:     o.lowerCase,
	}
}

func (l *lexer) reset() {
	l.state = stateData
	l.effects = nil
	l.text.Reset()
	l.hasText = false
	l.beginTag(false)
	l.buf.Reset()
	l.temp.Reset()
	l.expected = ""
}

func (l *lexer) setContentModel(model ContentModel, expected string) {
	switch model {
	case RawText:
		l.state = stateRawText
		l.expected = expected
	case EscapableRawText:
		l.state = stateEscapableRawText
		l.expected = expected
	default:
		l.state = stateData
		l.expected = ""
	}
}

// takeEffects returns and clears the queued effects.
func (l *lexer) takeEffects() []effect {
	effects := l.effects
	l.effects = nil
	return effects
}

// step consumes c at pos. It returns true when c must be presented
// again to the new state.
func (l *lexer) step(c rune, pos Position) bool {
	if c == EOF {
		l.finish(pos)
		return false
	}
	switch l.state {
	case stateData:
		if c == '<' {
			l.flushText()
			l.ltPos = pos
			l.state = stateTagOpen
			return false
		}
		l.appendChar(c, pos)
		return false
	case stateTagOpen:
		return l.tagOpen(c, pos)
	case stateEndTagOpen:
		return l.endTagOpen(c, pos)
	case stateTagName, stateBeforeAttributeName, stateAttributeName,
		stateAfterAttributeName, stateBeforeAttributeValue,
		stateAttributeValueDoubleQuoted, stateAttributeValueSingleQuoted,
		stateAttributeValueUnquoted, stateAfterAttributeValueQuoted,
		stateSelfClosingStartTag:
		return l.inTag(c, pos)
	case stateBogusComment:
		if c == '>' {
			l.emitComment(pos.After())
			l.state = stateData
			return false
		}
		l.buf.WriteRune(c)
		return false
	case stateMarkupDeclarationOpen, stateMarkupDeclarationHyphen,
		stateDoctypeMatch, stateCDATAMatch:
		return l.markupDeclaration(c, pos)
	case stateCommentStart, stateCommentStartDash, stateComment,
		stateCommentEndDash, stateCommentEnd, stateCommentEndBang:
		return l.comment(c, pos)
	case stateDoctype:
		if c == '>' {
			l.emit(Token{Kind: TokenDoctype, Data: strings.TrimSpace(l.buf.String()), Span: Span{l.ltPos, pos.After()}})
			l.state = stateData
			return false
		}
		l.buf.WriteRune(c)
		return false
	case stateCDATASection, stateCDATARSQB, stateCDATARSQBRSQB:
		return l.cdata(c, pos)
	case stateEscapableRawText, stateEscapableRawTextLessThan,
		stateEscapableRawTextEndTagOpen, stateEscapableRawTextEndTagName:
		return l.escapableRawText(c, pos)
	default:
		return l.rawText(c, pos)
	}
}

func (l *lexer) tagOpen(c rune, pos Position) bool {
	switch {
	case c == '!':
		l.buf.Reset()
		l.state = stateMarkupDeclarationOpen
		return false
	case c == '/':
		l.state = stateEndTagOpen
		return false
	case c == '?':
		l.report(ErrQuestionMarkInTag, Span{l.ltPos, pos.After()}, "")
		l.buf.Reset()
		l.state = stateBogusComment
		return true
	case isASCIIAlpha(c):
		l.beginTag(false)
		l.state = stateTagName
		return true
	}
	l.report(ErrBadCharAfterLessThan, Span{l.ltPos, pos.After()}, "")
	l.appendText("<", l.ltPos, l.ltPos.After())
	l.state = stateData
	return true
}

func (l *lexer) endTagOpen(c rune, pos Position) bool {
	switch {
	case isASCIIAlpha(c):
		l.beginTag(true)
		l.state = stateTagName
		return true
	case c == '>':
		l.report(ErrLtSlashGt, Span{l.ltPos, pos.After()}, "")
		l.state = stateData
		return false
	}
	l.report(ErrBadCharAfterLtSlash, Span{l.ltPos, pos.After()}, "")
	l.buf.Reset()
	l.state = stateBogusComment
	return true
}

func (l *lexer) inTag(c rune, pos Position) bool {
	switch l.state {
	case stateTagName:
		switch {
		case isSpace(c):
			l.state = stateBeforeAttributeName
		case c == '/':
			l.state = stateSelfClosingStartTag
		case c == '>':
			l.emitTag(pos)
		default:
			if l.lowerCase {
				c = lowerASCII(c)
			}
			l.tagName.WriteRune(c)
		}
		return false

	case stateBeforeAttributeName:
		switch {
		case isSpace(c):
		case c == '/':
			l.state = stateSelfClosingStartTag
		case c == '>':
			l.emitTag(pos)
		case c == '=':
			l.report(ErrEqualsSignBeforeAttributeName, Span{pos, pos.After()}, "")
			l.beginAttr(pos)
			l.attrName.WriteRune(c)
			l.state = stateAttributeName
		default:
			l.beginAttr(pos)
			l.state = stateAttributeName
			return true
		}
		return false

	case stateAttributeName:
		switch {
		case isSpace(c):
			l.state = stateAfterAttributeName
		case c == '/' || c == '>':
			l.state = stateAfterAttributeName
			return true
		case c == '=':
			l.state = stateBeforeAttributeValue
		default:
			if c == '"' || c == '\'' || c == '<' {
				l.report(ErrBadCharInAttributeName, Span{pos, pos.After()}, l.attrName.String())
			}
			l.attrName.WriteRune(c)
			l.attrEnd = pos.After()
		}
		return false

	case stateAfterAttributeName:
		switch {
		case isSpace(c):
		case c == '/':
			l.commitAttr()
			l.state = stateSelfClosingStartTag
		case c == '=':
			l.state = stateBeforeAttributeValue
		case c == '>':
			l.commitAttr()
			l.emitTag(pos)
		default:
			l.commitAttr()
			l.beginAttr(pos)
			l.state = stateAttributeName
			return true
		}
		return false

	case stateBeforeAttributeValue:
		switch {
		case isSpace(c):
		case c == '"':
			l.attrHasValue = true
			l.state = stateAttributeValueDoubleQuoted
		case c == '\'':
			l.attrHasValue = true
			l.state = stateAttributeValueSingleQuoted
		case c == '>':
			l.report(ErrAttributeValueMissing, Span{pos, pos.After()}, l.attrName.String())
			l.attrHasValue = true
			l.commitAttr()
			l.emitTag(pos)
		default:
			l.attrHasValue = true
			l.state = stateAttributeValueUnquoted
			return true
		}
		return false

	case stateAttributeValueDoubleQuoted, stateAttributeValueSingleQuoted:
		quote := '"'
		if l.state == stateAttributeValueSingleQuoted {
			quote = '\''
		}
		if c == quote {
			l.attrEnd = pos.After()
			l.commitAttr()
			l.state = stateAfterAttributeValueQuoted
			return false
		}
		l.attrValue.WriteRune(c)
		return false

	case stateAttributeValueUnquoted:
		switch {
		case isSpace(c):
			l.commitAttr()
			l.state = stateBeforeAttributeName
		case c == '>':
			l.commitAttr()
			l.emitTag(pos)
		default:
			if strings.ContainsRune("\"'<=`", c) {
				l.report(ErrBadCharInUnquotedAttributeValue, Span{pos, pos.After()}, l.attrName.String())
			}
			l.attrValue.WriteRune(c)
			l.attrEnd = pos.After()
		}
		return false

	case stateAfterAttributeValueQuoted:
		switch {
		case isSpace(c):
			l.state = stateBeforeAttributeName
		case c == '/':
			l.state = stateSelfClosingStartTag
		case c == '>':
			l.emitTag(pos)
		default:
			l.report(ErrNoSpaceBetweenAttributes, Span{pos, pos.After()}, "")
			l.state = stateBeforeAttributeName
			return true
		}
		return false

	default: // stateSelfClosingStartTag
		if c == '>' {
			l.selfClosing = true
			l.emitTag(pos)
			return false
		}
		l.report(ErrSlashNotFollowedByGt, Span{pos, pos.After()}, l.tagName.String())
		l.state = stateBeforeAttributeName
		return true
	}
}

func (l *lexer) markupDeclaration(c rune, pos Position) bool {
	switch l.state {
	case stateMarkupDeclarationOpen:
		switch {
		case c == '-':
			l.state = stateMarkupDeclarationHyphen
			return false
		case c == 'D' || c == 'd':
			l.buf.WriteRune(c)
			l.matched = 1
			l.state = stateDoctypeMatch
			return false
		case c == '[' && l.allowCDATA:
			l.buf.WriteRune(c)
			l.matched = 1
			l.state = stateCDATAMatch
			return false
		}
	case stateMarkupDeclarationHyphen:
		if c == '-' {
			l.buf.Reset()
			l.state = stateCommentStart
			return false
		}
		l.buf.WriteRune('-')
	case stateDoctypeMatch:
		if lowerASCII(c) == lowerASCII(rune(doctypeKeyword[l.matched])) {
			l.buf.WriteRune(c)
			l.matched++
			if l.matched == len(doctypeKeyword) {
				l.buf.Reset()
				l.state = stateDoctype
			}
			return false
		}
	case stateCDATAMatch:
		if c == rune(cdataKeyword[l.matched]) {
			l.buf.WriteRune(c)
			l.matched++
			if l.matched == len(cdataKeyword) {
				l.buf.Reset()
				l.state = stateCDATASection
			}
			return false
		}
	}
	l.report(ErrBogusComment, Span{l.ltPos, pos.After()}, "")
	l.state = stateBogusComment
	return true
}

func (l *lexer) comment(c rune, pos Position) bool {
	switch l.state {
	case stateCommentStart:
		switch c {
		case '-':
			l.state = stateCommentStartDash
		case '>':
			l.report(ErrPrematureEndOfComment, Span{l.ltPos, pos.After()}, "")
			l.emitComment(pos.After())
			l.state = stateData
		default:
			l.state = stateComment
			return true
		}
	case stateCommentStartDash:
		switch c {
		case '-':
			l.state = stateCommentEnd
		case '>':
			l.report(ErrPrematureEndOfComment, Span{l.ltPos, pos.After()}, "")
			l.emitComment(pos.After())
			l.state = stateData
		default:
			l.buf.WriteRune('-')
			l.state = stateComment
			return true
		}
	case stateComment:
		if c == '-' {
			l.state = stateCommentEndDash
			return false
		}
		l.buf.WriteRune(c)
	case stateCommentEndDash:
		if c == '-' {
			l.state = stateCommentEnd
			return false
		}
		l.buf.WriteRune('-')
		l.state = stateComment
		return true
	case stateCommentEnd:
		switch c {
		case '>':
			l.emitComment(pos.After())
			l.state = stateData
		case '!':
			l.state = stateCommentEndBang
		case '-':
			l.buf.WriteRune('-')
		default:
			l.buf.WriteString("--")
			l.state = stateComment
			return true
		}
	case stateCommentEndBang:
		switch c {
		case '-':
			l.buf.WriteString("--!")
			l.state = stateCommentEndDash
		case '>':
			l.emitComment(pos.After())
			l.state = stateData
		default:
			l.buf.WriteString("--!")
			l.state = stateComment
			return true
		}
	}
	return false
}

func (l *lexer) cdata(c rune, pos Position) bool {
	switch l.state {
	case stateCDATASection:
		if c == ']' {
			l.state = stateCDATARSQB
			return false
		}
		l.buf.WriteRune(c)
	case stateCDATARSQB:
		if c == ']' {
			l.state = stateCDATARSQBRSQB
			return false
		}
		l.buf.WriteRune(']')
		l.state = stateCDATASection
		return true
	case stateCDATARSQBRSQB:
		switch c {
		case '>':
			l.emit(Token{Kind: TokenCDATA, Data: l.buf.String(), Span: Span{l.ltPos, pos.After()}})
			l.state = stateData
		case ']':
			l.buf.WriteRune(']')
		default:
			l.buf.WriteString("]]")
			l.state = stateCDATASection
			return true
		}
	}
	return false
}

func (l *lexer) rawText(c rune, pos Position) bool {
	switch l.state {
	case stateRawText:
		if c == '<' {
			l.flushText()
			l.ltPos = pos
			l.pendingEnd = pos.After()
			l.state = stateRawTextLessThan
			return false
		}
		l.appendChar(c, pos)

	case stateRawTextLessThan:
		switch c {
		case '/':
			l.temp.Reset()
			l.pendingEnd = pos.After()
			l.state = stateRawTextEndTagOpen
		case '!':
			l.appendText("<!", l.ltPos, pos.After())
			l.state = stateRawTextEscapeStart
		default:
			l.appendText("<", l.ltPos, l.ltPos.After())
			l.state = stateRawText
			return true
		}

	case stateRawTextEndTagOpen, stateRawTextEscapedEndTagOpen:
		text, name := stateRawText, stateRawTextEndTagName
		if l.state == stateRawTextEscapedEndTagOpen {
			text, name = stateRawTextEscaped, stateRawTextEscapedEndTagName
		}
		if isASCIIAlpha(c) {
			l.state = name
			return true
		}
		l.appendText("</", l.ltPos, l.pendingEnd)
		l.state = text
		return true

	case stateRawTextEndTagName:
		return l.endTagName(c, pos, stateRawText)

	case stateRawTextEscapeStart:
		if c == '-' {
			l.appendChar(c, pos)
			l.state = stateRawTextEscapeStartDash
			return false
		}
		l.state = stateRawText
		return true

	case stateRawTextEscapeStartDash:
		if c == '-' {
			l.appendChar(c, pos)
			l.state = stateRawTextEscapedDashDash
			return false
		}
		l.state = stateRawText
		return true

	case stateRawTextEscaped, stateRawTextEscapedDash, stateRawTextEscapedDashDash:
		switch {
		case c == '-':
			l.appendChar(c, pos)
			if l.state == stateRawTextEscaped {
				l.state = stateRawTextEscapedDash
			} else {
				l.state = stateRawTextEscapedDashDash
			}
		case c == '<':
			l.ltPos = pos
			l.pendingEnd = pos.After()
			l.state = stateRawTextEscapedLessThan
		case c == '>' && l.state == stateRawTextEscapedDashDash:
			l.appendChar(c, pos)
			l.state = stateRawText
		default:
			l.appendChar(c, pos)
			l.state = stateRawTextEscaped
		}

	case stateRawTextEscapedLessThan:
		switch {
		case c == '/':
			l.temp.Reset()
			l.pendingEnd = pos.After()
			l.state = stateRawTextEscapedEndTagOpen
		case isASCIIAlpha(c):
			l.temp.Reset()
			l.appendText("<", l.ltPos, l.ltPos.After())
			l.state = stateRawTextDoubleEscapeStart
			return true
		default:
			l.appendText("<", l.ltPos, l.ltPos.After())
			l.state = stateRawTextEscaped
			return true
		}

	case stateRawTextEscapedEndTagName:
		return l.endTagName(c, pos, stateRawTextEscaped)

	case stateRawTextDoubleEscapeStart, stateRawTextDoubleEscapeEnd:
		inside, outside := stateRawTextDoubleEscaped, stateRawTextEscaped
		if l.state == stateRawTextDoubleEscapeEnd {
			inside, outside = stateRawTextEscaped, stateRawTextDoubleEscaped
		}
		switch {
		case isSpace(c) || c == '/' || c == '>':
			l.appendChar(c, pos)
			if strings.EqualFold(l.temp.String(), l.expected) {
				l.state = inside
			} else {
				l.state = outside
			}
		case isNameChar(c):
			l.temp.WriteRune(c)
			l.appendChar(c, pos)
		default:
			l.state = outside
			return true
		}

	case stateRawTextDoubleEscaped, stateRawTextDoubleEscapedDash, stateRawTextDoubleEscapedDashDash:
		l.appendChar(c, pos)
		switch {
		case c == '-':
			if l.state == stateRawTextDoubleEscaped {
				l.state = stateRawTextDoubleEscapedDash
			} else {
				l.state = stateRawTextDoubleEscapedDashDash
			}
		case c == '<':
			l.state = stateRawTextDoubleEscapedLessThan
		case c == '>' && l.state == stateRawTextDoubleEscapedDashDash:
			l.state = stateRawText
		default:
			l.state = stateRawTextDoubleEscaped
		}

	case stateRawTextDoubleEscapedLessThan:
		if c == '/' {
			l.temp.Reset()
			l.appendChar(c, pos)
			l.state = stateRawTextDoubleEscapeEnd
			return false
		}
		l.state = stateRawTextDoubleEscaped
		return true
	}
	return false
}

func (l *lexer) escapableRawText(c rune, pos Position) bool {
	switch l.state {
	case stateEscapableRawText:
		if c == '<' {
			l.ltPos = pos
			l.pendingEnd = pos.After()
			l.state = stateEscapableRawTextLessThan
			return false
		}
		l.appendChar(c, pos)

	case stateEscapableRawTextLessThan:
		if c == '/' {
			l.temp.Reset()
			l.pendingEnd = pos.After()
			l.state = stateEscapableRawTextEndTagOpen
			return false
		}
		l.appendText("<", l.ltPos, l.ltPos.After())
		l.state = stateEscapableRawText
		return true

	case stateEscapableRawTextEndTagOpen:
		if isASCIIAlpha(c) {
			l.state = stateEscapableRawTextEndTagName
			return true
		}
		l.appendText("</", l.ltPos, l.pendingEnd)
		l.state = stateEscapableRawText
		return true

	case stateEscapableRawTextEndTagName:
		if isNameChar(c) {
			l.temp.WriteRune(c)
			l.pendingEnd = pos.After()
			if !hasPrefixFold(l.expected, l.temp.String()) {
				l.appendText("</"+l.temp.String(), l.ltPos, l.pendingEnd)
				l.state = stateEscapableRawText
			}
			return false
		}
		return l.endTagName(c, pos, stateEscapableRawText)
	}
	return false
}

// endTagName scans the name of a candidate end tag inside raw text. A
// name that is not the expected one goes back into the text and
// scanning resumes in fallback.
func (l *lexer) endTagName(c rune, pos Position, fallback lexState) bool {
	switch {
	case isNameChar(c):
		l.temp.WriteRune(c)
		l.pendingEnd = pos.After()
		return false
	case (isSpace(c) || c == '/' || c == '>') && strings.EqualFold(l.temp.String(), l.expected):
		l.flushText()
		l.beginTag(true)
		l.tagName.WriteString(l.expected)
		switch c {
		case '>':
			l.emitTag(pos)
		case '/':
			l.state = stateSelfClosingStartTag
		default:
			l.state = stateBeforeAttributeName
		}
		return false
	}
	l.appendText("</"+l.temp.String(), l.ltPos, l.pendingEnd)
	l.state = fallback
	return true
}

// finish closes whatever construct is open at end of input and queues
// the EOF token.
func (l *lexer) finish(pos Position) {
	switch l.state {
	case stateTagOpen:
		l.report(ErrEofBeforeTagName, Span{l.ltPos, pos}, "")
		l.appendText("<", l.ltPos, l.ltPos.After())
	case stateEndTagOpen:
		l.report(ErrEofBeforeTagName, Span{l.ltPos, pos}, "")
		l.appendText("</", l.ltPos, pos)
	case stateTagName, stateBeforeAttributeName, stateAttributeName,
		stateAfterAttributeName, stateBeforeAttributeValue,
		stateAttributeValueDoubleQuoted, stateAttributeValueSingleQuoted,
		stateAttributeValueUnquoted, stateAfterAttributeValueQuoted,
		stateSelfClosingStartTag:
		l.report(ErrEofInTag, Span{l.ltPos, pos}, l.tagName.String())
	case stateBogusComment:
		l.emitComment(pos)
	case stateMarkupDeclarationOpen, stateMarkupDeclarationHyphen,
		stateDoctypeMatch, stateCDATAMatch:
		if l.state == stateMarkupDeclarationHyphen {
			l.buf.WriteRune('-')
		}
		l.report(ErrBogusComment, Span{l.ltPos, pos}, "")
		l.emitComment(pos)
	case stateCommentStart, stateCommentStartDash, stateComment,
		stateCommentEndDash, stateCommentEnd, stateCommentEndBang:
		l.report(ErrEofInComment, Span{l.ltPos, pos}, "")
		l.emitComment(pos)
	case stateDoctype:
		l.report(ErrEofInDoctype, Span{l.ltPos, pos}, "")
		l.emit(Token{Kind: TokenDoctype, Data: strings.TrimSpace(l.buf.String()), Span: Span{l.ltPos, pos}})
	case stateCDATASection, stateCDATARSQB, stateCDATARSQBRSQB:
		switch l.state {
		case stateCDATARSQB:
			l.buf.WriteString("]")
		case stateCDATARSQBRSQB:
			l.buf.WriteString("]]")
		}
		l.report(ErrEofInCdata, Span{l.ltPos, pos}, "")
		l.emit(Token{Kind: TokenCDATA, Data: l.buf.String(), Span: Span{l.ltPos, pos}})
	case stateRawTextLessThan, stateRawTextEscapedLessThan, stateEscapableRawTextLessThan:
		l.appendText("<", l.ltPos, l.ltPos.After())
	case stateRawTextEndTagOpen, stateRawTextEndTagName,
		stateRawTextEscapedEndTagOpen, stateRawTextEscapedEndTagName,
		stateEscapableRawTextEndTagOpen, stateEscapableRawTextEndTagName:
		l.appendText("</"+l.temp.String(), l.ltPos, l.pendingEnd)
	}
	l.flushText()
	l.state = stateData
	l.expected = ""
	l.effects = append(l.effects, effect{token: Token{Kind: TokenEOF, Span: Span{pos, pos}}})
}

func (l *lexer) beginTag(end bool) {
	l.tagName.Reset()
	l.endTag = end
	l.selfClosing = false
	l.attrs = nil
	l.endTagAttrs = false
	l.inAttr = false
}

func (l *lexer) beginAttr(pos Position) {
	l.inAttr = true
	l.attrName.Reset()
	l.attrValue.Reset()
	l.attrHasValue = false
	l.attrStart = pos
	l.attrEnd = pos.After()
}

func (l *lexer) commitAttr() {
	if !l.inAttr {
		return
	}
	l.inAttr = false
	attr := Attribute{Name: l.attrName.String(), Span: Span{l.attrStart, l.attrEnd}}
	if l.attrHasValue {
		v := l.attrValue.String()
		attr.Value = &v
	}
	if l.endTag {
		l.endTagAttrs = true
		return
	}
	for _, a := range l.attrs {
		if a.Name == attr.Name {
			l.report(ErrDuplicateAttribute, attr.Span, attr.Name)
			return
		}
	}
	l.attrs = append(l.attrs, attr)
}

func (l *lexer) emitTag(gt Position) {
	l.flushText()
	span := Span{l.ltPos, gt.After()}
	name := l.tagName.String()
	if l.endTag {
		if l.endTagAttrs {
			l.report(ErrEndTagWithAttributes, span, name)
		}
		if l.selfClosing {
			l.report(ErrEndTagWithTrailingSolidus, span, name)
		}
		l.emit(Token{Kind: TokenCloseTag, Name: name, Span: span})
	} else {
		l.emit(Token{Kind: TokenOpenTag, Name: name, Attributes: l.attrs, SelfClosing: l.selfClosing, Span: span})
	}
	l.attrs = nil
	l.state = stateData
	l.expected = ""
}

func (l *lexer) emitComment(end Position) {
	data := l.buf.String()
	l.buf.Reset()
	if !l.allowComments {
		return
	}
	l.emit(Token{Kind: TokenComment, Data: data, Span: Span{l.ltPos, end}})
}

func (l *lexer) emit(tok Token) {
	if tok.Kind != TokenText {
		l.flushText()
	}
	l.effects = append(l.effects, effect{token: tok})
}

func (l *lexer) report(code string, span Span, subject string) {
	l.effects = append(l.effects, effect{diag: &Diagnostic{
		Severity: codeSeverity(code),
		Code:     code,
		Span:     span,
		Subject:  subject,
	}})
}

func (l *lexer) appendChar(c rune, pos Position) {
	if !l.hasText {
		l.hasText = true
		l.textStart = pos
	}
	l.text.WriteRune(c)
	l.textEnd = pos.After()
}

func (l *lexer) appendText(s string, start, end Position) {
	if !l.hasText {
		l.hasText = true
		l.textStart = start
	}
	l.text.WriteString(s)
	l.textEnd = end
}

func (l *lexer) flushText() {
	if !l.hasText {
		return
	}
	data := l.text.String()
	l.text.Reset()
	l.hasText = false
	l.effects = append(l.effects, effect{token: Token{Kind: TokenText, Data: data, Span: Span{l.textStart, l.textEnd}}})
}

func codeSeverity(code string) Severity {
	switch code {
	case ErrBadCharAfterLessThan, ErrUnclosedElement:
		return SeverityWarn
	}
	return SeverityError
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\f' || c == '\r'
}

func isASCIIAlpha(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isNameChar accepts the characters of custom element names such as
// my-widget or svg:rect.
func isNameChar(c rune) bool {
	return isASCIIAlpha(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':' || c == '.'
}

func lowerASCII(c rune) rune {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func hasPrefixFold(s, prefix string) bool {
	return len(prefix) <= len(s) && strings.EqualFold(s[:len(prefix)], prefix)
}
