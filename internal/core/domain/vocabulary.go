package domain

import "strings"

// Canonical command names. Every surface form in the vocabulary resolves to one of these.
const (
	CommandStart  = "/start"
	CommandInline = "/inline"
	CommandReply  = "/reply"
	CommandHide   = "/hide"
	CommandHelp   = "/help"
	CommandHello  = "/hello"
	CommandLookup = "/inn"
	CommandRepeat = "/last"
)

// Reply keyboard labels, also accepted as typed text.
const (
	LabelLookup = "Find company by INN"
	LabelHelp   = "Help"
	LabelHello  = "About the creator"
	LabelRepeat = "Repeat last command"
	LabelHide   = "Hide keyboard"
)

var vocabulary = map[string][]string{
	CommandStart:  {"start", "hi", "hello bot", "привет"},
	CommandInline: {"inline", "inline keyboard", "show inline keyboard"},
	CommandReply:  {"reply", "reply keyboard", "buttons", "show buttons"},
	CommandHide:   {LabelHide, "hide", "remove keyboard", "hide buttons"},
	CommandHelp:   {LabelHelp, "help", "commands", "what can you do", "помощь"},
	CommandHello:  {LabelHello, "hello", "about", "creator", "who made you", "о создателе"},
	CommandLookup: {LabelLookup, "inn", "lookup", "find company", "search", "найти компанию", "инн"},
	CommandRepeat: {LabelRepeat, "last", "repeat", "again", "повтори"},
}

var aliases = buildAliases()

func buildAliases() map[string]string {
	out := make(map[string]string)
	for name, forms := range vocabulary {
		out[name] = name
		for _, form := range forms {
			out[NormalizeCommand(form)] = name
		}
	}
	return out
}

// NormalizeCommand lower-cases text, collapses whitespace, drops trailing punctuation and
// strips the @botname suffix Telegram appends to slash commands in group chats.
func NormalizeCommand(text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	normalized = strings.TrimRight(normalized, "!?.")

	if strings.HasPrefix(normalized, "/") {
		word, rest, hasRest := strings.Cut(normalized, " ")
		if at := strings.Index(word, "@"); at > 0 {
			word = word[:at]
		}
		if hasRest {
			return word + " " + rest
		}
		return word
	}

	return normalized
}

// ResolveCommand maps any accepted surface form to its canonical command name.
func ResolveCommand(text string) (string, bool) {
	name, ok := aliases[NormalizeCommand(text)]
	return name, ok
}
