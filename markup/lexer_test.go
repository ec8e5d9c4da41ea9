package markup

import (
	"testing"
)

func TestLexerStepTransitions(t *testing.T) {
	tests := []struct {
		name      string
		from      lexState
		char      rune
		want      lexState
		reconsume bool
	}{
		{"data lt", stateData, '<', stateTagOpen, false},
		{"data char", stateData, 'x', stateData, false},
		{"tag open letter", stateTagOpen, 'a', stateTagName, true},
		{"tag open slash", stateTagOpen, '/', stateEndTagOpen, false},
		{"tag open bang", stateTagOpen, '!', stateMarkupDeclarationOpen, false},
		{"tag open question", stateTagOpen, '?', stateBogusComment, true},
		{"tag open space", stateTagOpen, ' ', stateData, true},
		{"end tag open gt", stateEndTagOpen, '>', stateData, false},
		{"end tag open digit", stateEndTagOpen, '1', stateBogusComment, true},
		{"tag name space", stateTagName, ' ', stateBeforeAttributeName, false},
		{"tag name slash", stateTagName, '/', stateSelfClosingStartTag, false},
		{"attribute name gt", stateAttributeName, '>', stateAfterAttributeName, true},
		{"attribute name eq", stateAttributeName, '=', stateBeforeAttributeValue, false},
		{"before value dquote", stateBeforeAttributeValue, '"', stateAttributeValueDoubleQuoted, false},
		{"before value squote", stateBeforeAttributeValue, '\'', stateAttributeValueSingleQuoted, false},
		{"before value char", stateBeforeAttributeValue, 'v', stateAttributeValueUnquoted, true},
		{"after quoted char", stateAfterAttributeValueQuoted, 'x', stateBeforeAttributeName, true},
		{"self closing other", stateSelfClosingStartTag, 'x', stateBeforeAttributeName, true},
		{"declaration hyphen", stateMarkupDeclarationOpen, '-', stateMarkupDeclarationHyphen, false},
		{"declaration doctype", stateMarkupDeclarationOpen, 'D', stateDoctypeMatch, false},
		{"declaration cdata disabled", stateMarkupDeclarationOpen, '[', stateBogusComment, true},
		{"comment start other", stateCommentStart, 'x', stateComment, true},
		{"comment end dash other", stateCommentEndDash, 'x', stateComment, true},
		{"comment end bang", stateCommentEnd, '!', stateCommentEndBang, false},
		{"cdata rsqb other", stateCDATARSQB, 'x', stateCDATASection, true},
		{"raw text lt", stateRawText, '<', stateRawTextLessThan, false},
		{"raw text lt slash", stateRawTextLessThan, '/', stateRawTextEndTagOpen, false},
		{"raw text lt bang", stateRawTextLessThan, '!', stateRawTextEscapeStart, false},
		{"raw text lt other", stateRawTextLessThan, '0', stateRawText, true},
		{"raw text end tag open letter", stateRawTextEndTagOpen, 's', stateRawTextEndTagName, true},
		{"escape start dash", stateRawTextEscapeStart, '-', stateRawTextEscapeStartDash, false},
		{"escaped lt", stateRawTextEscaped, '<', stateRawTextEscapedLessThan, false},
		{"escaped dash dash gt", stateRawTextEscapedDashDash, '>', stateRawText, false},
		{"escaped lt letter", stateRawTextEscapedLessThan, 's', stateRawTextDoubleEscapeStart, true},
		{"double escaped lt", stateRawTextDoubleEscaped, '<', stateRawTextDoubleEscapedLessThan, false},
		{"double escaped lt slash", stateRawTextDoubleEscapedLessThan, '/', stateRawTextDoubleEscapeEnd, false},
		{"escapable lt other", stateEscapableRawTextLessThan, 'b', stateEscapableRawText, true},
		{"escapable lt slash", stateEscapableRawTextLessThan, '/', stateEscapableRawTextEndTagOpen, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLexer(defaultOptions())
			l.reset()
			l.state = tt.from
			l.expected = "script"
			again := l.step(tt.char, Position{Line: 0, Column: 1})
			if l.state != tt.want {
				t.Errorf("state = %v, want %v", l.state, tt.want)
			}
			if again != tt.reconsume {
				t.Errorf("reconsume = %v, want %v", again, tt.reconsume)
			}
		})
	}
}

func TestLexerQueuesEffects(t *testing.T) {
	l := newLexer(defaultOptions())
	l.reset()
	for i, c := range "<b>" {
		for l.step(c, Position{Column: i}) {
		}
	}
	effects := l.takeEffects()
	if len(effects) != 1 {
		t.Fatalf("len(effects) = %d, want 1", len(effects))
	}
	tok := effects[0].token
	if tok.Kind != TokenOpenTag || tok.Name != "b" {
		t.Errorf("token = %v, want open tag b", tok)
	}
	if want := (Span{Start: Position{Column: 0}, End: Position{Column: 3}}); tok.Span != want {
		t.Errorf("Span = %v, want %v", tok.Span, want)
	}
	if len(l.takeEffects()) != 0 {
		t.Error("takeEffects should clear the queue")
	}
}

func TestLexerReportsThroughQueue(t *testing.T) {
	l := newLexer(defaultOptions())
	l.reset()
	l.step('<', Position{Column: 0})
	l.step(' ', Position{Column: 1})
	effects := l.takeEffects()
	if len(effects) != 1 || effects[0].diag == nil {
		t.Fatalf("effects = %+v, want one diagnostic", effects)
	}
	d := effects[0].diag
	if d.Code != ErrBadCharAfterLessThan {
		t.Errorf("Code = %q, want %q", d.Code, ErrBadCharAfterLessThan)
	}
	if d.Severity != SeverityWarn {
		t.Errorf("Severity = %v, want %v", d.Severity, SeverityWarn)
	}
}

func TestLexStateString(t *testing.T) {
	if got := stateRawTextDoubleEscapeEnd.String(); got != "RawTextDoubleEscapeEnd" {
		t.Errorf("String() = %q", got)
	}
	if got := lexState(999).String(); got != "Unknown" {
		t.Errorf("String() = %q, want Unknown", got)
	}
}
